package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"ffg-go/internal/config"
	"ffg-go/internal/snapshot"
)

// S3Vault stores each slot as one object under a key prefix:
//
//	s3://<bucket>/<prefix>/snapshots/<slot>.snap
//
// Uploads go through the multipart manager so large trees do not have to fit
// in a single PutObject call.
type S3Vault struct {
	name       string
	bucket     string
	prefix     string
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
}

// NewS3Vault loads AWS configuration and creates a vault for cfg.S3Bucket.
// Static credentials are used when cfg.S3AccessKey is set; otherwise the
// default credential chain applies. cfg.S3Endpoint points the client at an
// S3-compatible service and switches to path-style addressing.
func NewS3Vault(ctx context.Context, name string, cfg config.StoreConfig) (*S3Vault, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Vault{
		name:       name,
		bucket:     cfg.S3Bucket,
		prefix:     cfg.S3Prefix,
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
	}, nil
}

// Put uploads r as the object for slot.
func (v *S3Vault) Put(ctx context.Context, slot string, r io.Reader, size int64) error {
	counter := &countingReader{r: r}
	_, err := v.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(v.objectKey(slot)),
		Body:   counter,
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot: %w", err)
	}
	if counter.n != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, counter.n)
	}
	return nil
}

// Get downloads the object for slot and writes it to w.
func (v *S3Vault) Get(ctx context.Context, slot string, w io.Writer) error {
	buf := manager.NewWriteAtBuffer(nil)
	_, err := v.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(v.objectKey(slot)),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", snapshot.ErrSlotEmpty, slot)
		}
		return fmt.Errorf("downloading snapshot: %w", err)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// ValidateSetup checks that the bucket exists and the credentials can reach it.
func (v *S3Vault) ValidateSetup(ctx context.Context) error {
	_, err := v.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(v.bucket)})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", v.bucket, err)
	}
	return nil
}

func (v *S3Vault) objectKey(slot string) string {
	return objectKey(v.prefix, slot)
}

func objectKey(prefix, slot string) string {
	return path.Join(prefix, "snapshots", slot+snapshotExt)
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

var _ snapshot.Vault = (*S3Vault)(nil)

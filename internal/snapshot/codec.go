package snapshot

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"

	"ffg-go/internal/ffg"
	"ffg-go/internal/model"
)

// SchemaVersion is written into every document. Documents with a higher
// version are refused.
const SchemaVersion = 1

// zstdMagic is the frame header every zstd stream starts with.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var jsonAPI = sonic.ConfigStd

type document struct {
	SchemaVersion int        `json:"schema_version"`
	Version       int64      `json:"version"`
	SavedAt       time.Time  `json:"saved_at"`
	Files         []fileJSON `json:"files"`
}

// fileJSON is the on-disk shape of a record. Field names follow the browser
// storage format so that old exports still load.
type fileJSON struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Type           model.Kind `json:"type"`
	Size           int64      `json:"size"`
	Modified       time.Time  `json:"modified"`
	Content        *string    `json:"content,omitempty"`
	Parent         *string    `json:"parent"`
	IsEncrypted    bool       `json:"isEncrypted,omitempty"`
	Permissions    string     `json:"permissions,omitempty"`
	Owner          string     `json:"owner,omitempty"`
	LastAccessedBy string     `json:"lastAccessedBy,omitempty"`
	Version        int        `json:"version,omitempty"`
	OriginalID     string     `json:"originalId,omitempty"`
}

func toJSON(r *model.FileRecord) fileJSON {
	f := fileJSON{
		ID:             r.ID,
		Name:           r.Name,
		Type:           r.Kind,
		Size:           r.Size,
		Modified:       r.ModifiedAt.UTC(),
		Content:        r.Content,
		IsEncrypted:    r.IsEncrypted,
		Permissions:    r.Permissions,
		Owner:          r.Owner,
		LastAccessedBy: r.LastAccessedBy,
		Version:        r.Version,
		OriginalID:     r.OriginalID,
	}
	if r.ParentID != model.NoParent {
		parent := r.ParentID
		f.Parent = &parent
	}
	return f
}

func (f fileJSON) record() *model.FileRecord {
	r := &model.FileRecord{
		ID:             f.ID,
		Name:           f.Name,
		Kind:           f.Type,
		Size:           f.Size,
		ModifiedAt:     f.Modified,
		Content:        f.Content,
		ParentID:       model.NoParent,
		IsEncrypted:    f.IsEncrypted,
		Permissions:    f.Permissions,
		Owner:          f.Owner,
		LastAccessedBy: f.LastAccessedBy,
		Version:        f.Version,
		OriginalID:     f.OriginalID,
	}
	if f.Parent != nil {
		r.ParentID = *f.Parent
	}
	return r
}

// Encode serializes tree into a versioned JSON document.
func Encode(tree *ffg.Tree, savedAt time.Time) ([]byte, error) {
	records := tree.Records()
	doc := document{
		SchemaVersion: SchemaVersion,
		Version:       tree.Version(),
		SavedAt:       savedAt.UTC(),
		Files:         make([]fileJSON, len(records)),
	}
	for i, r := range records {
		doc.Files[i] = toJSON(r)
	}

	data, err := jsonAPI.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a document produced by Encode. A bare JSON array of records,
// as written by the browser version, is accepted and restored at version 0.
func Decode(data []byte) (*ffg.Tree, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decoding snapshot: empty document")
	}

	var doc document
	if trimmed[0] == '[' {
		if err := jsonAPI.Unmarshal(trimmed, &doc.Files); err != nil {
			return nil, fmt.Errorf("decoding legacy snapshot: %w", err)
		}
	} else {
		if err := jsonAPI.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decoding snapshot: %w", err)
		}
		if doc.SchemaVersion > SchemaVersion {
			return nil, fmt.Errorf("%w: version %d", ErrUnsupportedSchema, doc.SchemaVersion)
		}
	}

	records := make([]*model.FileRecord, len(doc.Files))
	for i, f := range doc.Files {
		if !f.Type.Valid() {
			return nil, fmt.Errorf("decoding snapshot: record %q has unknown type %q", f.ID, f.Type)
		}
		records[i] = f.record()
	}

	tree, err := ffg.NewVersionedTree(records, doc.Version)
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return tree, nil
}

// Compress wraps data in a single zstd frame.
func Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// IsCompressed reports whether data starts with a zstd frame header.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// Decompress reverses Compress. Data without a zstd header is returned as is,
// so a reader does not need to know how the snapshot was written.
func Decompress(data []byte) ([]byte, error) {
	if !IsCompressed(data) {
		return data, nil
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot: %w", err)
	}
	return out, nil
}

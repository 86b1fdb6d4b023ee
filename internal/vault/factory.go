package vault

import (
	"context"
	"fmt"

	"ffg-go/internal/config"
	"ffg-go/internal/snapshot"
)

// NewVaultFromConfig creates a snapshot.Vault based on the store config type.
// The sqlite store has no vault; it is handled by the database package.
func NewVaultFromConfig(ctx context.Context, cfg config.StoreConfig) (snapshot.Vault, error) {
	name := cfg.Slot
	switch cfg.Type {
	case "memory":
		return NewMemoryVault(name), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 store requires s3_bucket to be set")
		}
		v, err := NewS3Vault(ctx, name, cfg)
		if err != nil {
			return nil, err
		}
		return v, nil
	case "file":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("file store requires fs_root to be set")
		}
		v, err := NewFileSystemVault(name, cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("store type %q has no vault", cfg.Type)
	}
}

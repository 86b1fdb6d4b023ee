package encryption

import (
	"fmt"

	"ffg-go/internal/config"
	"ffg-go/internal/snapshot"
)

// NewEncryptorFromConfig creates a snapshot.Encryptor based on the
// configuration type. It returns nil, nil for "none": snapshots are then
// stored in the clear.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (snapshot.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}

package snapshot

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrSlotEmpty is returned by Vault.Get when nothing was ever put in the slot.
	ErrSlotEmpty = errors.New("snapshot slot is empty")

	// ErrLocked is returned when an encrypted snapshot is loaded without an
	// unlocked Decrypter.
	ErrLocked = errors.New("snapshot is encrypted and no passphrase was given")

	// ErrUnsupportedSchema is returned for documents written by a newer version.
	ErrUnsupportedSchema = errors.New("unsupported snapshot schema")
)

// Vault stores whole snapshot blobs in named slots.
// All operations stream through io.Reader/io.Writer.
type Vault interface {
	// Put replaces the content of slot. size is the number of bytes in r.
	Put(ctx context.Context, slot string, r io.Reader, size int64) error

	// Get writes the content of slot to w, or returns ErrSlotEmpty.
	Get(ctx context.Context, slot string, w io.Writer) error

	// ValidateSetup verifies that the vault is reachable and writable.
	ValidateSetup(ctx context.Context) error
}

// Encryptor seals snapshots at rest.
// Encryption needs only the public half of the key. Decryption needs a
// passphrase to unlock the private half, producing a Decrypter.
type Encryptor interface {
	// Setup generates and stores a key pair protected by passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock returns a Decrypter, or an error if the passphrase is wrong.
	Unlock(passphrase string) (Decrypter, error)

	// IsConfigured reports whether Setup has been run.
	IsConfigured() bool
}

// Decrypter holds an unlocked private key for the life of a session.
type Decrypter interface {
	Decrypt(r io.Reader, w io.Writer) error
}

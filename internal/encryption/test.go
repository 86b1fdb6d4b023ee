package encryption

import (
	"bytes"
	"fmt"
	"io"

	"ffg-go/internal/snapshot"
)

// testHeader marks sealed output so it never parses as a plain snapshot.
var testHeader = []byte("FFGSEAL\x00")

// TestEncryptor is a deterministic stand-in for AgeEncryptor. Encrypt
// prepends testHeader and Decrypt strips it. When Setup has been called,
// Unlock only accepts the same passphrase, so locked-snapshot paths can be
// exercised without real keys.
type TestEncryptor struct {
	passphrase  string
	setupCalled bool
}

var _ snapshot.Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor creates a new TestEncryptor.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Setup(passphrase string) error {
	e.setupCalled = true
	e.passphrase = passphrase
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(passphrase string) (snapshot.Decrypter, error) {
	if e.setupCalled && passphrase != e.passphrase {
		return nil, ErrWrongPassphrase
	}
	return &TestDecrypter{}, nil
}

func (e *TestEncryptor) IsConfigured() bool {
	return true
}

// TestDecrypter strips the header added by TestEncryptor.
type TestDecrypter struct{}

var _ snapshot.Decrypter = (*TestDecrypter)(nil)

func (d *TestDecrypter) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("invalid test encryption header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

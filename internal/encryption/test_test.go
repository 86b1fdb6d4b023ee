package encryption

import (
	"bytes"
	"errors"
	"testing"

	"ffg-go/internal/config"
)

func TestTestEncryptor_EncryptDecrypt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "simple text", input: []byte("hello world")},
		{name: "empty", input: []byte{}},
		{name: "large data", input: bytes.Repeat([]byte("abcdef"), 10000)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := NewTestEncryptor()

			var sealed bytes.Buffer
			if err := e.Encrypt(bytes.NewReader(tt.input), &sealed); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if !bytes.HasPrefix(sealed.Bytes(), testHeader) {
				t.Error("sealed output does not start with test header")
			}

			dec, err := e.Unlock("any-passphrase")
			if err != nil {
				t.Fatalf("Unlock() error = %v", err)
			}

			var plain bytes.Buffer
			if err := dec.Decrypt(bytes.NewReader(sealed.Bytes()), &plain); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(plain.Bytes(), tt.input) {
				t.Errorf("round-trip failed: got %q, want %q", plain.Bytes(), tt.input)
			}
		})
	}
}

func TestTestEncryptor_UnlockAfterSetup(t *testing.T) {
	t.Parallel()

	e := NewTestEncryptor()
	if err := e.Setup("secret"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if _, err := e.Unlock("secret"); err != nil {
		t.Errorf("Unlock(correct) error = %v", err)
	}
	if _, err := e.Unlock("nope"); !errors.Is(err, ErrWrongPassphrase) {
		t.Errorf("Unlock(wrong) error = %v, want ErrWrongPassphrase", err)
	}
}

func TestTestDecrypter_BadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "invalid header", data: []byte("NOT_VALID_HEADER_data")},
		{name: "truncated header", data: []byte("FFG")},
		{name: "empty", data: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := (&TestDecrypter{}).Decrypt(bytes.NewReader(tt.data), &out); err == nil {
				t.Error("Decrypt() should return error")
			}
		})
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	tests := []struct {
		typ     string
		wantNil bool
		wantErr bool
	}{
		{typ: "none", wantNil: true},
		{typ: "", wantNil: true},
		{typ: "age"},
		{typ: "test"},
		{typ: "rot13", wantNil: true, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.typ, func(t *testing.T) {
			got, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: tt.typ})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEncryptorFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (got == nil) != tt.wantNil {
				t.Errorf("NewEncryptorFromConfig() = %v, wantNil %v", got, tt.wantNil)
			}
		})
	}
}

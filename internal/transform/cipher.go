package transform

import (
	"encoding/base64"
	"errors"
	"unicode/utf8"
)

var (
	// ErrEmptyPassphrase is returned when a cipher key is empty.
	ErrEmptyPassphrase = errors.New("passphrase must not be empty")

	// ErrDecryptFailed is returned when ciphertext does not decode back to valid text.
	ErrDecryptFailed = errors.New("decryption failed: incorrect passphrase or corrupted content")
)

// Encrypt obfuscates content by XOR-ing it against the repeated passphrase
// and encoding the result as standard Base64. Empty content encrypts to "".
func Encrypt(content, passphrase string) (string, error) {
	if content == "" {
		return "", nil
	}
	if passphrase == "" {
		return "", ErrEmptyPassphrase
	}
	return base64.StdEncoding.EncodeToString(xorKey([]byte(content), passphrase)), nil
}

// Decrypt reverses Encrypt. It fails with ErrDecryptFailed when the input is
// not Base64 or the recovered bytes are not valid UTF-8.
func Decrypt(encrypted, passphrase string) (string, error) {
	if encrypted == "" {
		return "", nil
	}
	if passphrase == "" {
		return "", ErrEmptyPassphrase
	}

	decoded, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", ErrDecryptFailed
	}

	plain := xorKey(decoded, passphrase)
	if !utf8.Valid(plain) {
		return "", ErrDecryptFailed
	}
	return string(plain), nil
}

// xorKey XORs data against passphrase repeated to data's length.
func xorKey(data []byte, passphrase string) []byte {
	key := []byte(passphrase)
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}

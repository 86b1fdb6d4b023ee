package ffg

import (
	"context"
	"errors"
	"fmt"

	"ffg-go/internal/model"
	"ffg-go/internal/transform"
)

// EncryptFile ciphers a file's content with passphrase and marks it
// encrypted. The file must hold content and must not already be encrypted.
func (s *FFGService) EncryptFile(ctx context.Context, id, passphrase string) error {
	const op = "encrypt"

	if _, err := s.requireAccess(id, model.ActionEncrypt); err != nil {
		return s.fail(op, id, "", err)
	}
	if err := validatePassphrase(passphrase); err != nil {
		return s.fail(op, id, "Encryption Failed", err)
	}

	var name string
	return s.mutate(ctx, op, id, "Encryption Failed",
		func(t *Tree) (*Tree, error) {
			f, ok := t.Get(id)
			if !ok {
				return nil, ErrNotFound
			}
			if f.IsFolder() || !f.HasContent() {
				return nil, invalidState("cannot encrypt a file without content")
			}
			if f.IsEncrypted {
				return nil, invalidState("%s is already encrypted", f.Name)
			}
			cipher, err := transform.Encrypt(f.Text(), passphrase)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrTransformFailure, err)
			}
			name = f.Name
			f.Content = model.StringPtr(cipher)
			f.IsEncrypted = true
			f.ModifiedAt = s.clock.Now()
			return t.withReplaced(f)
		},
		func() (string, string) {
			return "File Encrypted", fmt.Sprintf("%s has been encrypted successfully.", name)
		},
	)
}

// DecryptFile reverses EncryptFile. A passphrase that does not recover valid
// text fails with ErrTransformFailure and leaves the file untouched.
func (s *FFGService) DecryptFile(ctx context.Context, id, passphrase string) error {
	const op = "decrypt"

	if _, err := s.requireAccess(id, model.ActionEncrypt); err != nil {
		return s.fail(op, id, "", err)
	}
	if err := validatePassphrase(passphrase); err != nil {
		return s.fail(op, id, "Decryption Failed", err)
	}

	var name string
	return s.mutate(ctx, op, id, "Decryption Failed",
		func(t *Tree) (*Tree, error) {
			f, ok := t.Get(id)
			if !ok {
				return nil, ErrNotFound
			}
			if !f.IsEncrypted || !f.HasContent() {
				return nil, invalidState("%s is not encrypted", f.Name)
			}
			plain, err := transform.Decrypt(f.Text(), passphrase)
			if err != nil {
				if errors.Is(err, transform.ErrDecryptFailed) {
					return nil, fmt.Errorf("%w: incorrect passphrase or corrupted file", ErrTransformFailure)
				}
				return nil, fmt.Errorf("%w: %w", ErrTransformFailure, err)
			}
			name = f.Name
			f.Content = model.StringPtr(plain)
			f.IsEncrypted = false
			f.ModifiedAt = s.clock.Now()
			return t.withReplaced(f)
		},
		func() (string, string) {
			return "File Decrypted", fmt.Sprintf("%s has been decrypted successfully.", name)
		},
	)
}

// ChangePermissions replaces a record's permission token. It requires write
// access and accepts octal ("644") or symbolic ("rw-r--r--") modes.
func (s *FFGService) ChangePermissions(ctx context.Context, id, permissions string) error {
	const op = "chmod"

	if _, err := s.requireAccess(id, model.ActionWrite); err != nil {
		return s.fail(op, id, "", err)
	}
	if err := validatePermissions(permissions); err != nil {
		return s.fail(op, id, "Permissions Not Changed", err)
	}

	var name string
	return s.mutate(ctx, op, id, "Permissions Not Changed",
		func(t *Tree) (*Tree, error) {
			f, ok := t.Get(id)
			if !ok {
				return nil, ErrNotFound
			}
			name = f.Name
			f.Permissions = permissions
			f.ModifiedAt = s.clock.Now()
			return t.withReplaced(f)
		},
		func() (string, string) {
			return "Permissions Changed", fmt.Sprintf("%s permissions set to %s.", name, permissions)
		},
	)
}

// BackupFile creates a sibling copy named "<name>.bak" and returns it.
func (s *FFGService) BackupFile(ctx context.Context, id string) (*model.FileRecord, error) {
	const op = "backup"

	if _, err := s.requireAccess(id, model.ActionRead); err != nil {
		return nil, s.fail(op, id, "", err)
	}

	var backup *model.FileRecord
	err := s.mutate(ctx, op, id, "Backup Failed",
		func(t *Tree) (*Tree, error) {
			f, ok := t.Get(id)
			if !ok {
				return nil, ErrNotFound
			}
			if f.IsRoot() {
				return nil, invalidState("cannot back up the root folder")
			}
			backup = s.newRecordFrom(f)
			backup.Name = f.Name + ".bak"
			return t.withAppended(backup.Clone())
		},
		func() (string, string) {
			return "File Backed Up", fmt.Sprintf("Backup created as %s.", backup.Name)
		},
	)
	if err != nil && !isPersist(err) {
		return nil, err
	}
	return backup, err
}

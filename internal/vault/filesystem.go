package vault

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ffg-go/internal/snapshot"
)

// snapshotExt is appended to a slot name to form its file name.
const snapshotExt = ".snap"

// FileSystemVault is a filesystem-based implementation of snapshot.Vault.
// Each slot is a single file:
//
//	<root>/
//	  snapshots/
//	    <slot>.snap
type FileSystemVault struct {
	name         string
	root         string
	snapshotsDir string
}

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	snapshotsDir := filepath.Join(root, "snapshots")

	if err := os.MkdirAll(snapshotsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshots directory: %w", err)
	}

	return &FileSystemVault{
		name:         name,
		root:         root,
		snapshotsDir: snapshotsDir,
	}, nil
}

// Put replaces the content of slot. The write is atomic: readers see either
// the old snapshot or the new one, never a partial file.
func (v *FileSystemVault) Put(ctx context.Context, slot string, r io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return v.writeFile(v.slotPath(slot), r, size)
}

// Get writes the content of slot to w.
func (v *FileSystemVault) Get(ctx context.Context, slot string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(v.slotPath(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", snapshot.ErrSlotEmpty, slot)
		}
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup(ctx context.Context) error {
	for _, dir := range []string{v.root, v.snapshotsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", dir)
		}
	}

	// Prove the directory is writable the same way Put will use it.
	probe, err := os.CreateTemp(v.snapshotsDir, ".probe-*")
	if err != nil {
		return fmt.Errorf("vault directory not writable: %w", err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

func (v *FileSystemVault) slotPath(slot string) string {
	return filepath.Join(v.snapshotsDir, slot+snapshotExt)
}

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func (v *FileSystemVault) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	// Create temp file in the same directory to ensure atomic rename works
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemVault implements snapshot.Vault interface
var _ snapshot.Vault = (*FileSystemVault)(nil)

package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"ffg-go/internal/snapshot"
)

// MemoryVault is an in-memory implementation of snapshot.Vault.
// Contents are lost when the process exits, which makes it useful for tests
// and throwaway sessions. It is safe for concurrent use.
type MemoryVault struct {
	name  string
	slots map[string][]byte
	puts  map[string]int
	mu    sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:  name,
		slots: make(map[string][]byte),
		puts:  make(map[string]int),
	}
}

// Put replaces the content of slot.
func (m *MemoryVault) Put(ctx context.Context, slot string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.slots[slot] = data
	m.puts[slot]++
	return nil
}

// Get writes the content of slot to w.
func (m *MemoryVault) Get(ctx context.Context, slot string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.slots[slot]
	if !ok {
		return fmt.Errorf("%w: %s", snapshot.ErrSlotEmpty, slot)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

// Puts returns how many times slot has been written.
func (m *MemoryVault) Puts(slot string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts[slot]
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup(ctx context.Context) error {
	return nil
}

// Compile-time check that MemoryVault implements snapshot.Vault interface
var _ snapshot.Vault = (*MemoryVault)(nil)

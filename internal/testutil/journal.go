package testutil

import (
	"context"
	"sync"

	"ffg-go/internal/ffg"
)

var _ ffg.Journal = (*MemoryJournal)(nil)

// MemoryJournal is an in-memory ffg.Journal.
type MemoryJournal struct {
	mu      sync.Mutex
	entries []ffg.JournalEntry
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Record(ctx context.Context, entry ffg.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	entry.ID = int64(len(j.entries) + 1)
	j.entries = append(j.entries, entry)
	return nil
}

func (j *MemoryJournal) List(ctx context.Context, limit int) ([]ffg.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]ffg.JournalEntry, 0, len(j.entries))
	for i := len(j.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, j.entries[i])
	}
	return out, nil
}

// Operations returns the recorded operation names, oldest first.
func (j *MemoryJournal) Operations() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	ops := make([]string, len(j.entries))
	for i, e := range j.entries {
		ops[i] = e.Operation
	}
	return ops
}

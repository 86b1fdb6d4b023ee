package ffg

import (
	"context"
	"time"
)

// Persister snapshots the whole tree to durable storage and reads it back.
// Every committed replacement is followed by one Save of the full tree.
type Persister interface {
	// Load returns the last saved tree, or ErrNoSnapshot if none exists.
	Load(ctx context.Context) (*Tree, error)

	// Save writes the full tree, replacing whatever was stored before.
	Save(ctx context.Context, tree *Tree) error
}

// JournalEntry is one line of the operation log.
type JournalEntry struct {
	ID        int64
	At        time.Time
	Operation string // e.g. "Rename"
	Detail    string // e.g. "a.txt to b.txt"
}

// Journal records successful operations for later review.
type Journal interface {
	// Record appends an entry. The entry's ID is assigned by the journal.
	Record(ctx context.Context, entry JournalEntry) error

	// List returns up to limit entries, newest first.
	List(ctx context.Context, limit int) ([]JournalEntry, error)
}

// NopJournal discards every entry.
type NopJournal struct{}

func (NopJournal) Record(context.Context, JournalEntry) error {
	return nil
}

func (NopJournal) List(context.Context, int) ([]JournalEntry, error) {
	return nil, nil
}

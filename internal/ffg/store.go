package ffg

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// TreeStore is the single source of truth for the tree.
// Writers are serialized: Update runs read, compute and replace under one
// lock, so two concurrent mutations can never silently discard each other.
// Readers take the current snapshot without locking.
type TreeStore struct {
	mu        sync.Mutex // serializes writers
	current   atomic.Pointer[Tree]
	persister Persister
	logger    Logger
}

// NewTreeStore creates a store holding an empty tree.
// persister may be nil, in which case nothing is saved.
func NewTreeStore(persister Persister, logger Logger) *TreeStore {
	s := &TreeStore{persister: persister, logger: logger}
	empty, _ := build(nil, 0)
	s.current.Store(empty)
	return s
}

// Open loads the persisted tree. When nothing was saved yet, the tree built by
// seed is installed and saved.
func (s *TreeStore) Open(ctx context.Context, seed func() *Tree) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persister == nil {
		s.current.Store(seed())
		return nil
	}

	loaded, err := s.persister.Load(ctx)
	switch {
	case errors.Is(err, ErrNoSnapshot):
		tree := seed()
		s.current.Store(tree)
		s.logger.Info("seeded new tree", "records", tree.Len())
		if err := s.persister.Save(ctx, tree); err != nil {
			return fmt.Errorf("%w: %w", ErrPersist, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("loading tree: %w", err)
	}

	for _, problem := range loaded.Validate() {
		s.logger.Warn("tree invariant violated", "problem", problem.Error())
	}
	s.current.Store(loaded)
	s.logger.Debug("tree loaded", "records", loaded.Len(), "version", loaded.Version())
	return nil
}

// Snapshot returns the current tree.
func (s *TreeStore) Snapshot() *Tree {
	return s.current.Load()
}

// Update applies fn to the current tree and commits the tree it returns.
// If fn fails nothing changes. If saving fails the new tree stays committed
// in memory and the returned error wraps ErrPersist.
func (s *TreeStore) Update(ctx context.Context, fn func(*Tree) (*Tree, error)) (*Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cur := s.current.Load()
	next, err := fn(cur)
	if err != nil {
		return nil, err
	}
	if next == cur {
		return cur, nil
	}
	return next, s.commit(ctx, cur, next)
}

// CompareAndSwap installs next only if the current tree still has version
// expected. It returns ErrConflict otherwise.
func (s *TreeStore) CompareAndSwap(ctx context.Context, expected int64, next *Tree) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if cur.Version() != expected {
		return fmt.Errorf("%w: tree is at version %d, expected %d", ErrConflict, cur.Version(), expected)
	}
	// Re-index so the caller's tree is never shared with the store.
	owned, err := build(next.records, next.version)
	if err != nil {
		return err
	}
	return s.commit(ctx, cur, owned)
}

// commit stamps next with the following version, publishes it and saves it.
// Callers hold s.mu.
func (s *TreeStore) commit(ctx context.Context, cur, next *Tree) error {
	next.version = cur.Version() + 1
	s.current.Store(next)

	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(ctx, next); err != nil {
		s.logger.Error("saving tree failed", "version", next.Version(), "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

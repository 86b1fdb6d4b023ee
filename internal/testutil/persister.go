package testutil

import (
	"context"
	"sync"

	"ffg-go/internal/ffg"
)

var _ ffg.Persister = (*MemoryPersister)(nil)

// MemoryPersister keeps the last saved tree in memory. Set SaveErr or
// LoadErr to simulate storage failures.
type MemoryPersister struct {
	mu      sync.Mutex
	tree    *ffg.Tree
	saves   int
	SaveErr error
	LoadErr error
}

// NewMemoryPersister creates a persister with nothing saved.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (p *MemoryPersister) Load(ctx context.Context) (*ffg.Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.LoadErr != nil {
		return nil, p.LoadErr
	}
	if p.tree == nil {
		return nil, ffg.ErrNoSnapshot
	}
	return p.tree, nil
}

func (p *MemoryPersister) Save(ctx context.Context, tree *ffg.Tree) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SaveErr != nil {
		return p.SaveErr
	}
	p.tree = tree
	p.saves++
	return nil
}

// Saved returns the last saved tree, or nil.
func (p *MemoryPersister) Saved() *ffg.Tree {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree
}

// Saves returns how many saves succeeded.
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

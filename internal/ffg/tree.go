package ffg

import (
	"fmt"
	"strings"

	"ffg-go/internal/model"
)

// Tree is an immutable snapshot of every record in the store.
// Records keep insertion order. Every mutation builds a new Tree; readers may
// hold on to an old one safely.
type Tree struct {
	records  []*model.FileRecord
	index    map[string]int
	children map[string][]string
	version  int64
}

// NewTree builds a tree from records, rejecting duplicate ids.
// The records are cloned; the caller keeps ownership of its slice.
func NewTree(records []*model.FileRecord) (*Tree, error) {
	return NewVersionedTree(records, 0)
}

// NewVersionedTree is NewTree for persisters restoring a saved version.
func NewVersionedTree(records []*model.FileRecord, version int64) (*Tree, error) {
	cloned := make([]*model.FileRecord, len(records))
	for i, r := range records {
		cloned[i] = r.Clone()
	}
	return build(cloned, version)
}

// build indexes records without cloning them.
func build(records []*model.FileRecord, version int64) (*Tree, error) {
	t := &Tree{
		records:  records,
		index:    make(map[string]int, len(records)),
		children: make(map[string][]string),
		version:  version,
	}
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: record at position %d has no id", ErrInvalidInput, i)
		}
		if _, dup := t.index[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrConflict, r.ID)
		}
		t.index[r.ID] = i
		t.children[r.ParentID] = append(t.children[r.ParentID], r.ID)
	}
	return t, nil
}

// Version is incremented by the store on every committed replacement.
func (t *Tree) Version() int64 { return t.version }

// Len returns the number of records.
func (t *Tree) Len() int { return len(t.records) }

// Has reports whether id is present.
func (t *Tree) Has(id string) bool {
	_, ok := t.index[id]
	return ok
}

// Get returns a copy of the record with the given id.
func (t *Tree) Get(id string) (*model.FileRecord, bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return t.records[i].Clone(), true
}

// Records returns copies of every record in insertion order.
func (t *Tree) Records() []*model.FileRecord {
	out := make([]*model.FileRecord, len(t.records))
	for i, r := range t.records {
		out[i] = r.Clone()
	}
	return out
}

// ChildrenOf returns copies of the records whose parent is parentID, in
// insertion order.
func (t *Tree) ChildrenOf(parentID string) []*model.FileRecord {
	ids := t.children[parentID]
	out := make([]*model.FileRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.records[t.index[id]].Clone())
	}
	return out
}

// DescendantIDs returns every id whose parent chain reaches id, not
// including id itself. The walk keeps a visited set so a malformed, cyclic
// tree still terminates.
func (t *Tree) DescendantIDs(id string) map[string]struct{} {
	out := make(map[string]struct{})
	stack := []string{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range t.children[n] {
			if child == id {
				continue
			}
			if _, seen := out[child]; seen {
				continue
			}
			out[child] = struct{}{}
			stack = append(stack, child)
		}
	}
	return out
}

// Search returns every record whose name or content contains term,
// case-insensitively. An empty term matches nothing.
func (t *Tree) Search(term string) []*model.FileRecord {
	out := []*model.FileRecord{}
	if term == "" {
		return out
	}
	needle := strings.ToLower(term)
	for _, r := range t.records {
		if strings.Contains(strings.ToLower(r.Name), needle) ||
			(r.Content != nil && strings.Contains(strings.ToLower(*r.Content), needle)) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Validate checks structural invariants: exactly one root, every parent
// exists and is a folder, folders carry no content, and no record is its own
// ancestor. It returns every problem found.
func (t *Tree) Validate() []error {
	var problems []error
	roots := 0
	for _, r := range t.records {
		if r.ParentID == model.NoParent {
			roots++
		} else if i, ok := t.index[r.ParentID]; !ok {
			problems = append(problems, fmt.Errorf("%s: parent %q does not exist", r.ID, r.ParentID))
		} else if !t.records[i].IsFolder() {
			problems = append(problems, fmt.Errorf("%s: parent %q is not a folder", r.ID, r.ParentID))
		}
		if r.IsFolder() && r.Content != nil {
			problems = append(problems, fmt.Errorf("%s: folder carries content", r.ID))
		}
		if t.isOwnAncestor(r.ID) {
			problems = append(problems, fmt.Errorf("%s: record is its own ancestor", r.ID))
		}
	}
	if roots != 1 {
		problems = append(problems, fmt.Errorf("expected exactly one root, found %d", roots))
	}
	return problems
}

// isOwnAncestor walks the parent chain from id looking for id.
func (t *Tree) isOwnAncestor(id string) bool {
	seen := map[string]struct{}{}
	cur := id
	for {
		i, ok := t.index[cur]
		if !ok {
			return false
		}
		parent := t.records[i].ParentID
		if parent == model.NoParent {
			return false
		}
		if parent == id {
			return true
		}
		if _, loop := seen[parent]; loop {
			return false
		}
		seen[parent] = struct{}{}
		cur = parent
	}
}

// withAppended returns a new tree with recs added at the end.
func (t *Tree) withAppended(recs ...*model.FileRecord) (*Tree, error) {
	records := make([]*model.FileRecord, 0, len(t.records)+len(recs))
	records = append(records, t.records...)
	records = append(records, recs...)
	return build(records, t.version)
}

// withReplaced returns a new tree in which each of recs replaces the record
// with the same id, keeping its position.
func (t *Tree) withReplaced(recs ...*model.FileRecord) (*Tree, error) {
	records := make([]*model.FileRecord, len(t.records))
	copy(records, t.records)
	for _, r := range recs {
		i, ok := t.index[r.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, r.ID)
		}
		records[i] = r
	}
	return build(records, t.version)
}

// withoutIDs returns a new tree with every id in ids removed in one pass.
func (t *Tree) withoutIDs(ids map[string]struct{}) (*Tree, error) {
	records := make([]*model.FileRecord, 0, len(t.records))
	for _, r := range t.records {
		if _, drop := ids[r.ID]; !drop {
			records = append(records, r)
		}
	}
	return build(records, t.version)
}

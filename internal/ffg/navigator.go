package ffg

import (
	"slices"
	"sync"

	"ffg-go/internal/model"
)

// TreeSource provides the current tree.
type TreeSource interface {
	Snapshot() *Tree
}

// Crumb is one step of a breadcrumb path.
type Crumb struct {
	ID   string
	Name string
}

// Navigator tracks the current directory, the multi-selection and the search
// term, and derives filtered views of the tree without mutating it.
type Navigator struct {
	mu         sync.Mutex
	source     TreeSource
	current    string
	selected   []string
	searchTerm string
}

// NewNavigator creates a navigator positioned at the root.
func NewNavigator(source TreeSource) *Navigator {
	return &Navigator{source: source, current: model.RootID}
}

// CurrentDirectory returns the id of the folder being listed.
func (n *Navigator) CurrentDirectory() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate changes the current directory and clears the selection.
// The id is not validated; an unknown id lists nothing.
func (n *Navigator) Navigate(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = id
	n.selected = nil
}

// ToggleSelect adds id to the selection, or removes it if already selected.
func (n *Navigator) ToggleSelect(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if i := slices.Index(n.selected, id); i >= 0 {
		n.selected = slices.Delete(n.selected, i, i+1)
		return
	}
	n.selected = append(n.selected, id)
}

// IsSelected reports whether id is selected.
func (n *Navigator) IsSelected(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Contains(n.selected, id)
}

// Selection returns the selected ids in selection order.
func (n *Navigator) Selection() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.selected)
}

// ClearSelection empties the selection.
func (n *Navigator) ClearSelection() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.selected = nil
}

// SelectAll selects every child of the current directory.
func (n *Navigator) SelectAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	children := n.source.Snapshot().ChildrenOf(n.current)
	n.selected = make([]string, 0, len(children))
	for _, c := range children {
		n.selected = append(n.selected, c.ID)
	}
}

// SetSearchTerm sets the global search term; "" returns to directory listing.
func (n *Navigator) SetSearchTerm(term string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.searchTerm = term
}

// SearchTerm returns the current search term.
func (n *Navigator) SearchTerm() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.searchTerm
}

// CurrentFiles returns the children of the current directory.
func (n *Navigator) CurrentFiles() []*model.FileRecord {
	return n.source.Snapshot().ChildrenOf(n.CurrentDirectory())
}

// Search returns every record in the tree whose name or content matches the
// search term. It is not scoped to the current directory.
func (n *Navigator) Search() []*model.FileRecord {
	return n.source.Snapshot().Search(n.SearchTerm())
}

// Visible returns what the listing shows: search results while a term is
// set, otherwise the current directory's children.
func (n *Navigator) Visible() []*model.FileRecord {
	if n.SearchTerm() != "" {
		return n.Search()
	}
	return n.CurrentFiles()
}

// Breadcrumb returns the path from the root to id. An empty id or the root id
// yields just the root; an unknown id yields nil.
func (n *Navigator) Breadcrumb(id string) []Crumb {
	root := Crumb{ID: model.RootID, Name: "Root"}
	if id == "" || id == model.RootID {
		return []Crumb{root}
	}

	tree := n.source.Snapshot()
	var path []Crumb
	seen := map[string]struct{}{}
	for cur := id; cur != model.NoParent && cur != model.RootID; {
		if _, loop := seen[cur]; loop {
			break
		}
		seen[cur] = struct{}{}
		rec, ok := tree.Get(cur)
		if !ok {
			if cur == id {
				return nil
			}
			break
		}
		path = append(path, Crumb{ID: rec.ID, Name: rec.Name})
		cur = rec.ParentID
	}
	path = append(path, root)
	slices.Reverse(path)
	return path
}

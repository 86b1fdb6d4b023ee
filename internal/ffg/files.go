package ffg

import (
	"context"
	"fmt"

	"ffg-go/internal/model"
	"ffg-go/internal/transform"
)

// NewFile describes a record to create.
type NewFile struct {
	Name     string
	Kind     model.Kind // Derived from Name when empty
	ParentID string     // Defaults to the root
	Content  *string    // Must be nil for folders
	Size     int64      // Defaults to len(*Content)

	Permissions string
	Owner       string
}

// Create appends a new record under nf.ParentID and returns a copy of it.
func (s *FFGService) Create(ctx context.Context, nf NewFile) (*model.FileRecord, error) {
	const op = "create"

	if nf.ParentID == "" {
		nf.ParentID = model.RootID
	}
	if nf.Kind == "" {
		nf.Kind = transform.KindFromName(nf.Name)
	}

	if err := s.validateNewFile(nf); err != nil {
		return nil, s.fail(op, nf.ParentID, "Create Failed", err)
	}
	if !s.gate.CheckAccess(nf.ParentID, model.ActionWrite) {
		return nil, s.fail(op, nf.ParentID, "", fmt.Errorf("%w: cannot create files in this directory", ErrPermissionDenied))
	}

	size := nf.Size
	if size == 0 && nf.Content != nil {
		size = int64(len(*nf.Content))
	}
	rec := &model.FileRecord{
		ID:          s.idgen.New(),
		Name:        nf.Name,
		Kind:        nf.Kind,
		Size:        size,
		ModifiedAt:  s.clock.Now(),
		ParentID:    nf.ParentID,
		Permissions: nf.Permissions,
		Owner:       nf.Owner,
	}
	if nf.Content != nil {
		rec.Content = model.StringPtr(*nf.Content)
	}

	err := s.mutate(ctx, op, nf.ParentID, "Create Failed",
		func(t *Tree) (*Tree, error) {
			if err := requireFolder(t, nf.ParentID); err != nil {
				return nil, err
			}
			if t.Has(rec.ID) {
				return nil, fmt.Errorf("%w: id %q already in use", ErrConflict, rec.ID)
			}
			return t.withAppended(rec.Clone())
		},
		func() (string, string) {
			return "File Created", fmt.Sprintf("%s has been created successfully.", rec.Name)
		},
	)
	if err != nil && !isPersist(err) {
		return nil, err
	}
	return rec.Clone(), err
}

func (s *FFGService) validateNewFile(nf NewFile) error {
	if err := validateName(nf.Name); err != nil {
		return err
	}
	if !nf.Kind.Valid() {
		return invalidInput("unknown kind %q", nf.Kind)
	}
	if nf.Kind == model.KindFolder && nf.Content != nil {
		return invalidInput("folders cannot carry content")
	}
	if nf.Size < 0 {
		return invalidInput("size must not be negative")
	}
	if nf.Permissions != "" {
		if err := validatePermissions(nf.Permissions); err != nil {
			return err
		}
	}
	return nil
}

// Rename replaces the name of a record.
func (s *FFGService) Rename(ctx context.Context, id, name string) error {
	const op = "rename"

	if err := validateName(name); err != nil {
		return s.fail(op, id, "Rename Failed", err)
	}
	if _, err := s.requireAccess(id, model.ActionWrite); err != nil {
		return s.fail(op, id, "", err)
	}

	var oldName string
	return s.mutate(ctx, op, id, "Rename Failed",
		func(t *Tree) (*Tree, error) {
			f, ok := t.Get(id)
			if !ok {
				return nil, ErrNotFound
			}
			oldName = f.Name
			f.Name = name
			return t.withReplaced(f)
		},
		func() (string, string) {
			return "File Renamed", fmt.Sprintf("%s renamed to %s.", oldName, name)
		},
	)
}

// EditContent replaces the content of a file. The result is plaintext.
func (s *FFGService) EditContent(ctx context.Context, id, content string) error {
	const op = "edit"

	if _, err := s.requireAccess(id, model.ActionWrite); err != nil {
		return s.fail(op, id, "", err)
	}

	var name string
	return s.mutate(ctx, op, id, "Edit Failed",
		func(t *Tree) (*Tree, error) {
			f, ok := t.Get(id)
			if !ok {
				return nil, ErrNotFound
			}
			if f.IsFolder() {
				return nil, invalidState("cannot edit the content of a folder")
			}
			name = f.Name
			f.Content = model.StringPtr(content)
			f.IsEncrypted = false
			f.ModifiedAt = s.clock.Now()
			return t.withReplaced(f)
		},
		func() (string, string) {
			return "File Edited", fmt.Sprintf("%s content has been updated.", name)
		},
	)
}

// Delete removes ids and every record beneath them in a single replacement.
// The batch is refused as a whole if any id fails the gate. Ids that are no
// longer present are skipped; the call fails only when none remain.
func (s *FFGService) Delete(ctx context.Context, ids []string) error {
	const op = "delete"

	if err := s.requireBatchAccess(ids, model.ActionDelete); err != nil {
		return s.fail(op, "", "Delete Failed", err)
	}

	var deleted int
	err := s.mutate(ctx, op, "", "Delete Failed",
		func(t *Tree) (*Tree, error) {
			drop := make(map[string]struct{})
			deleted = 0
			for _, id := range ids {
				if !t.Has(id) {
					continue
				}
				if id == model.RootID {
					return nil, invalidState("cannot delete the root folder")
				}
				if _, dup := drop[id]; !dup {
					deleted++
				}
				drop[id] = struct{}{}
				for d := range t.DescendantIDs(id) {
					drop[d] = struct{}{}
				}
			}
			if len(drop) == 0 {
				return nil, ErrNotFound
			}
			return t.withoutIDs(drop)
		},
		func() (string, string) {
			return "Files Deleted", fmt.Sprintf("%s deleted successfully.", plural(deleted))
		},
	)
	if err == nil || isPersist(err) {
		s.nav.ClearSelection()
	}
	return err
}

// Move reparents ids under target. An empty target means the root. The
// batch is refused if any id fails the gate, is the root, or would end up
// inside its own subtree.
func (s *FFGService) Move(ctx context.Context, ids []string, target string) error {
	const op = "move"
	if target == "" {
		target = model.RootID
	}

	if err := s.requireBatchAccess(ids, model.ActionWrite); err != nil {
		return s.fail(op, target, "Move Failed", err)
	}

	err := s.mutate(ctx, op, target, "Move Failed",
		func(t *Tree) (*Tree, error) {
			if err := requireFolder(t, target); err != nil {
				return nil, err
			}
			moved := make([]*model.FileRecord, 0, len(ids))
			for _, id := range ids {
				f, ok := t.Get(id)
				if !ok {
					return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
				}
				if f.IsRoot() {
					return nil, invalidState("cannot move the root folder")
				}
				if id == target {
					return nil, fmt.Errorf("%w: %s into itself", ErrCycle, f.Name)
				}
				if _, inside := t.DescendantIDs(id)[target]; inside {
					return nil, fmt.Errorf("%w: %s into its own subfolder", ErrCycle, f.Name)
				}
				f.ParentID = target
				moved = append(moved, f)
			}
			return t.withReplaced(moved...)
		},
		func() (string, string) {
			return "Files Moved", fmt.Sprintf("%s moved successfully.", plural(len(ids)))
		},
	)
	if err == nil || isPersist(err) {
		s.nav.ClearSelection()
	}
	return err
}

// Copy creates a sibling copy of each id under target, named "<name> (copy)".
// Copies are shallow: a folder's children are not copied.
func (s *FFGService) Copy(ctx context.Context, ids []string, target string) error {
	const op = "copy"
	if target == "" {
		target = model.RootID
	}

	if err := s.requireBatchAccess(ids, model.ActionRead); err != nil {
		return s.fail(op, target, "Copy Failed", err)
	}

	return s.mutate(ctx, op, target, "Copy Failed",
		func(t *Tree) (*Tree, error) {
			if err := requireFolder(t, target); err != nil {
				return nil, err
			}
			copies := make([]*model.FileRecord, 0, len(ids))
			for _, id := range ids {
				f, ok := t.Get(id)
				if !ok {
					return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
				}
				c := s.newRecordFrom(f)
				c.Name = f.Name + " (copy)"
				c.ParentID = target
				copies = append(copies, c)
			}
			return t.withAppended(copies...)
		},
		func() (string, string) {
			return "Files Copied", fmt.Sprintf("%s copied successfully.", plural(len(ids)))
		},
	)
}

// requireFolder checks that id exists in t and is a folder.
func requireFolder(t *Tree, id string) error {
	f, ok := t.Get(id)
	if !ok {
		return fmt.Errorf("%w: folder %s", ErrNotFound, id)
	}
	if !f.IsFolder() {
		return invalidState("%s is not a folder", f.Name)
	}
	return nil
}

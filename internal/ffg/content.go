package ffg

import (
	"context"
	"fmt"

	"ffg-go/internal/model"
	"ffg-go/internal/transform"
)

// CompressFile creates a sibling archive "<name>.gz" whose size is 70% of
// the source, rounded up, and returns it. The archive keeps a back-reference
// to its source for DecompressFile.
func (s *FFGService) CompressFile(ctx context.Context, id string) (*model.FileRecord, error) {
	const op = "compress"

	if _, err := s.requireAccess(id, model.ActionWrite); err != nil {
		return nil, s.fail(op, id, "", err)
	}

	var src, archive *model.FileRecord
	err := s.mutate(ctx, op, id, "Compression Failed",
		func(t *Tree) (*Tree, error) {
			f, ok := t.Get(id)
			if !ok {
				return nil, ErrNotFound
			}
			if f.IsFolder() || !f.HasContent() {
				return nil, invalidState("cannot compress this type of file")
			}
			src = f
			archive = s.newRecordFrom(f)
			archive.Name = transform.ArchiveName(f.Name)
			archive.Kind = model.KindArchive
			archive.Size = transform.CompressedSize(f.Size)
			archive.Content = model.StringPtr(transform.CompressedPlaceholder(f.Name))
			archive.IsEncrypted = false
			archive.OriginalID = f.ID
			return t.withAppended(archive.Clone())
		},
		func() (string, string) {
			return "File Compressed", fmt.Sprintf("%s has been compressed as %s.", src.Name, archive.Name)
		},
	)
	if err != nil && !isPersist(err) {
		return nil, err
	}
	return archive, err
}

// DecompressFile creates a sibling extracted from an archive and returns it.
// Its kind comes from the archive's source record when that still exists,
// otherwise it is a document. Its size is 130% of the archive, rounded up.
func (s *FFGService) DecompressFile(ctx context.Context, id string) (*model.FileRecord, error) {
	const op = "decompress"

	if _, err := s.requireAccess(id, model.ActionWrite); err != nil {
		return nil, s.fail(op, id, "", err)
	}

	var archive, extracted *model.FileRecord
	err := s.mutate(ctx, op, id, "Decompression Failed",
		func(t *Tree) (*Tree, error) {
			f, ok := t.Get(id)
			if !ok {
				return nil, ErrNotFound
			}
			if f.Kind != model.KindArchive {
				return nil, invalidState("%s is not an archive", f.Name)
			}

			kind := model.KindDocument
			if orig, ok := t.Get(f.OriginalID); ok && !orig.IsFolder() {
				kind = orig.Kind
			}

			archive = f
			extracted = s.newRecordFrom(f)
			extracted.Name = transform.ExtractedName(f.Name)
			extracted.Kind = kind
			extracted.Size = transform.DecompressedSize(f.Size)
			extracted.Content = model.StringPtr(transform.DecompressedPlaceholder(f.Name))
			extracted.IsEncrypted = false
			extracted.OriginalID = ""
			return t.withAppended(extracted.Clone())
		},
		func() (string, string) {
			return "File Decompressed", fmt.Sprintf("%s has been decompressed as %s.", archive.Name, extracted.Name)
		},
	)
	if err != nil && !isPersist(err) {
		return nil, err
	}
	return extracted, err
}

// ClearContent empties a file's content. The result is plaintext.
func (s *FFGService) ClearContent(ctx context.Context, id string) error {
	const op = "clear"

	if _, err := s.requireAccess(id, model.ActionWrite); err != nil {
		return s.fail(op, id, "", err)
	}

	var name string
	return s.mutate(ctx, op, id, "Operation Failed",
		func(t *Tree) (*Tree, error) {
			f, ok := t.Get(id)
			if !ok {
				return nil, ErrNotFound
			}
			if f.IsFolder() {
				return nil, invalidState("cannot clear the content of a folder")
			}
			name = f.Name
			f.Content = model.StringPtr("")
			f.IsEncrypted = false
			f.ModifiedAt = s.clock.Now()
			return t.withReplaced(f)
		},
		func() (string, string) {
			return "File Cleared", fmt.Sprintf("%s content has been cleared.", name)
		},
	)
}

// SortContent sorts a file's lines lexically.
func (s *FFGService) SortContent(ctx context.Context, id string) error {
	const op = "sort"

	if _, err := s.requireAccess(id, model.ActionWrite); err != nil {
		return s.fail(op, id, "", err)
	}

	var name string
	return s.mutate(ctx, op, id, "Sort Failed",
		func(t *Tree) (*Tree, error) {
			f, ok := t.Get(id)
			if !ok {
				return nil, ErrNotFound
			}
			if f.IsFolder() || !f.HasContent() {
				return nil, invalidState("cannot sort this type of file")
			}
			if f.IsEncrypted {
				return nil, invalidState("cannot sort encrypted content")
			}
			name = f.Name
			f.Content = model.StringPtr(transform.SortLines(f.Text()))
			f.ModifiedAt = s.clock.Now()
			return t.withReplaced(f)
		},
		func() (string, string) {
			return "File Sorted", fmt.Sprintf("%s content has been sorted alphabetically.", name)
		},
	)
}

// SearchContent returns the lines of a file containing term, formatted as
// "Line N: <line>". It never fails: a denied, missing or empty file yields
// an empty result, and a denial is still notified.
func (s *FFGService) SearchContent(id, term string) []string {
	f, err := s.requireAccess(id, model.ActionRead)
	if err != nil {
		_ = s.fail("search", id, "", err)
		return []string{}
	}
	return transform.SearchLines(f.Text(), term)
}

package app

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"unicode/utf8"

	"ffg-go/internal/ffg"
	"ffg-go/internal/fs"
	"ffg-go/internal/model"
	"ffg-go/internal/transform"
)

// MaxImportContent is the largest host file whose text is copied into the
// tree. Larger files are imported with their size only.
const MaxImportContent = 1 << 20

// ImportResult counts what an import created.
type ImportResult struct {
	Folders int
	Files   int
	Skipped int // unreadable files
}

// Import copies the directory structure under hostPath into the folder
// parentID, going through the normal create operation for every entry.
// Patterns from the import config and from hostPath/.ffgignore are skipped.
// Text files (documents and code) that are valid UTF-8 keep their content.
//
// A failed save does not stop the import; the last such error is returned
// once every entry was created.
func (a *FFGApp) Import(ctx context.Context, hostPath, parentID string) (*ImportResult, error) {
	if parentID == "" {
		parentID = model.RootID
	}

	patterns := append([]string{}, a.cfg.Import.Ignore...)
	filePatterns, err := fs.ParseIgnoreFile(filepath.Join(hostPath, fs.IgnoreFileName))
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, filePatterns...)

	entries, err := fs.NewWalker(fs.NewIgnoreMatcher(patterns)).Walk(ctx, hostPath)
	if err != nil {
		return nil, err
	}
	a.logger.Info("importing", "path", hostPath, "parent", parentID, "entries", len(entries))

	// Maps a slash-separated host directory to the record created for it.
	folderIDs := map[string]string{"": parentID}
	result := &ImportResult{}
	var persistErr error

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		dir := path.Dir(e.RelPath)
		if dir == "." {
			dir = ""
		}
		parent, ok := folderIDs[dir]
		if !ok {
			result.Skipped++
			continue
		}

		nf := ffg.NewFile{
			Name:        path.Base(e.RelPath),
			ParentID:    parent,
			Permissions: e.Permissions,
			Owner:       e.Owner,
		}
		if e.IsDir {
			nf.Kind = model.KindFolder
		} else if !a.describeFile(e, &nf) {
			result.Skipped++
			continue
		}

		rec, err := a.service.Create(ctx, nf)
		if err != nil {
			if !errors.Is(err, ffg.ErrPersist) {
				return result, fmt.Errorf("importing %s: %w", e.RelPath, err)
			}
			persistErr = err
		}

		if e.IsDir {
			folderIDs[e.RelPath] = rec.ID
			result.Folders++
		} else {
			result.Files++
		}
	}

	a.logger.Info("import finished", "folders", result.Folders, "files", result.Files, "skipped", result.Skipped)
	return result, persistErr
}

// describeFile fills kind, size and content for a host file. It returns false
// when the file cannot be read.
func (a *FFGApp) describeFile(e fs.Entry, nf *ffg.NewFile) bool {
	head, truncated, err := fs.ReadHead(e.Path, MaxImportContent)
	if err != nil {
		a.logger.Warn("skipping unreadable file", "path", e.Path, "error", err)
		return false
	}

	nf.Kind = transform.KindFromName(nf.Name)
	if nf.Kind == model.KindUnknown && len(head) > 0 {
		nf.Kind = transform.KindFromContent(head)
	}
	nf.Size = e.Size

	isText := nf.Kind == model.KindDocument || nf.Kind == model.KindCode
	if isText && !truncated && utf8.Valid(head) {
		nf.Content = model.StringPtr(string(head))
	}
	return true
}

package fs

import (
	"context"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
)

// Entry is one regular file or directory found under an import root.
type Entry struct {
	Path        string // absolute host path
	RelPath     string // slash-separated, relative to the root
	IsDir       bool
	Size        int64
	ModTime     time.Time
	Permissions string // octal, e.g. "644"
	Owner       string // host user name, or "" when unknown
}

// Depth is the number of path elements in RelPath.
func (e Entry) Depth() int {
	return strings.Count(e.RelPath, "/") + 1
}

// Walker lists host directories for import.
type Walker struct {
	ignore *IgnoreMatcher
}

// NewWalker creates a walker that skips anything ignore matches. A directory
// that matches is skipped with its whole subtree.
func NewWalker(ignore *IgnoreMatcher) *Walker {
	if ignore == nil {
		ignore = NewIgnoreMatcher(nil)
	}
	return &Walker{ignore: ignore}
}

// Walk returns every regular file and directory below root, excluding root
// itself. Symlinks, devices, pipes and sockets are skipped. Entries are
// sorted by RelPath, so a directory always precedes its contents.
func (w *Walker) Walk(ctx context.Context, root string) ([]Entry, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absRoot)
	}

	var (
		mu      sync.Mutex
		entries []Entry
	)

	// fastwalk calls the func from several goroutines.
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, absRoot, func(p string, d os.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return err
		}
		if p == absRoot {
			return nil
		}

		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		if w.ignore.Match(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		e := entryFromInfo(p, rel, info)

		mu.Lock()
		entries = append(entries, e)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].RelPath < entries[j].RelPath })
	return entries, nil
}

func entryFromInfo(path, rel string, info iofs.FileInfo) Entry {
	e := Entry{
		Path:        path,
		RelPath:     filepath.ToSlash(rel),
		IsDir:       info.IsDir(),
		ModTime:     info.ModTime(),
		Permissions: fmt.Sprintf("%03o", info.Mode().Perm()),
		Owner:       ownerName(info),
	}
	if !e.IsDir {
		e.Size = info.Size()
	}
	return e
}

// ReadHead returns up to limit bytes from the start of the file at path and
// whether the file was longer than that.
func ReadHead(path string, limit int64) ([]byte, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, false, fmt.Errorf("reading file: %w", err)
	}
	if int64(len(data)) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}

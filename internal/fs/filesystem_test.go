package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0640); err != nil {
			t.Fatal(err)
		}
	}
}

func relPaths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.RelPath
	}
	return out
}

func TestWalker_Walk(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"notes.txt":                 "hello",
		"src/main.py":               "print(1)",
		"src/lib/util.py":           "x = 1",
		"web/node_modules/pkg/a.js": "ignored",
		"debug.log":                 "ignored",
		IgnoreFileName:              "*.log\n",
	})

	w := NewWalker(NewIgnoreMatcher([]string{"*.log", "**/node_modules"}))
	entries, err := w.Walk(context.Background(), root)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	want := []string{"notes.txt", "src", "src/lib", "src/lib/util.py", "src/main.py", "web"}
	if got := relPaths(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}

	notes := entries[0]
	if notes.IsDir || notes.Size != 5 {
		t.Errorf("notes.txt entry = %+v", notes)
	}
	if notes.Permissions != "640" {
		t.Errorf("Permissions = %q, want %q", notes.Permissions, "640")
	}
	if notes.Path != filepath.Join(root, "notes.txt") {
		t.Errorf("Path = %q", notes.Path)
	}
	if entries[1].Size != 0 || !entries[1].IsDir {
		t.Errorf("src entry = %+v", entries[1])
	}
	if d := entries[3].Depth(); d != 3 {
		t.Errorf("Depth(src/lib/util.py) = %d, want 3", d)
	}
}

func TestWalker_Walk_Errors(t *testing.T) {
	w := NewWalker(nil)

	t.Run("missing root", func(t *testing.T) {
		if _, err := w.Walk(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("Walk() expected error for missing root")
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"a.txt": "a"})
		if _, err := w.Walk(context.Background(), filepath.Join(root, "a.txt")); err == nil {
			t.Error("Walk() expected error for file root")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"a.txt": "a"})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := w.Walk(ctx, root); !errors.Is(err, context.Canceled) {
			t.Errorf("Walk() error = %v, want context.Canceled", err)
		}
	})
}

func TestWalker_SkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real.txt": "data"})
	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	entries, err := NewWalker(nil).Walk(context.Background(), root)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if got := relPaths(entries); !reflect.DeepEqual(got, []string{"real.txt"}) {
		t.Errorf("Walk() = %v, want [real.txt]", got)
	}
}

func TestReadHead(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "0123456789"})
	path := filepath.Join(root, "a.txt")

	tests := []struct {
		limit     int64
		want      string
		truncated bool
	}{
		{limit: 100, want: "0123456789"},
		{limit: 10, want: "0123456789"},
		{limit: 4, want: "0123", truncated: true},
	}
	for _, tt := range tests {
		data, truncated, err := ReadHead(path, tt.limit)
		if err != nil {
			t.Fatalf("ReadHead(%d) error = %v", tt.limit, err)
		}
		if string(data) != tt.want || truncated != tt.truncated {
			t.Errorf("ReadHead(%d) = %q, %v; want %q, %v", tt.limit, data, truncated, tt.want, tt.truncated)
		}
	}
}

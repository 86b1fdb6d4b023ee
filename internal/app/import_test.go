package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ffg-go/internal/config"
	"ffg-go/internal/ffg"
	"ffg-go/internal/fs"
	"ffg-go/internal/model"
	"ffg-go/internal/testutil"
)

func writeHostTree(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for rel, data := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, data, 0644))
	}
}

func childByName(t *testing.T, tree *ffg.Tree, parentID, name string) *model.FileRecord {
	t.Helper()
	for _, c := range tree.ChildrenOf(parentID) {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no child %q under %s", name, parentID)
	return nil
}

func TestFFGApp_Import(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t)
	cfg.Store = config.StoreConfig{Type: "memory", Slot: config.DefaultSlot}

	host := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")
	writeHostTree(t, host, map[string][]byte{
		"notes.txt":                 []byte("line b\nline a\n"),
		"src/main.py":               []byte("print('hi')\n"),
		"src/assets/logo":           png,
		"node_modules/pkg/index.js": []byte("ignored"),
		"build/out.bin":             []byte("ignored by .ffgignore"),
		fs.IgnoreFileName:           []byte("build\n"),
	})

	a := openApp(t, cfg, Options{IDs: testutil.NewStubIDGenerator()})
	defer a.Close()

	res, err := a.Import(ctx, host, "documents")
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Folders: 2, Files: 3}, res)

	tree := a.Service().Tree()
	assert.Equal(t, 6+5, tree.Len())

	notes := childByName(t, tree, "documents", "notes.txt")
	assert.Equal(t, model.KindDocument, notes.Kind)
	assert.Equal(t, int64(14), notes.Size)
	require.NotNil(t, notes.Content)
	assert.Equal(t, "line b\nline a\n", *notes.Content)
	assert.Equal(t, "644", notes.Permissions)

	src := childByName(t, tree, "documents", "src")
	assert.Equal(t, model.KindFolder, src.Kind)
	assert.Nil(t, src.Content)

	mainPy := childByName(t, tree, src.ID, "main.py")
	assert.Equal(t, model.KindCode, mainPy.Kind)

	assets := childByName(t, tree, src.ID, "assets")
	logo := childByName(t, tree, assets.ID, "logo")
	assert.Equal(t, model.KindImage, logo.Kind, "kind sniffed from content")
	assert.Nil(t, logo.Content, "binary files carry no content")
	assert.Equal(t, int64(len(png)), logo.Size)

	for _, r := range tree.Records() {
		assert.NotEqual(t, "node_modules", r.Name)
		assert.NotEqual(t, "build", r.Name)
	}
}

func TestFFGApp_Import_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing host path", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.Store = config.StoreConfig{Type: "memory", Slot: config.DefaultSlot}
		a := openApp(t, cfg, Options{})
		defer a.Close()

		_, err := a.Import(ctx, filepath.Join(t.TempDir(), "missing"), "")
		assert.Error(t, err)
	})

	t.Run("target is not a folder", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.Store = config.StoreConfig{Type: "memory", Slot: config.DefaultSlot}
		a := openApp(t, cfg, Options{})
		defer a.Close()

		host := t.TempDir()
		writeHostTree(t, host, map[string][]byte{"a.txt": []byte("a")})

		res, err := a.Import(ctx, host, "readme")
		require.ErrorIs(t, err, ffg.ErrInvalidState)
		assert.Equal(t, 0, res.Files)
	})

	t.Run("viewer cannot import", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.Store = config.StoreConfig{Type: "memory", Slot: config.DefaultSlot}
		cfg.Access.Role = "viewer"
		a := openApp(t, cfg, Options{})
		defer a.Close()

		host := t.TempDir()
		writeHostTree(t, host, map[string][]byte{"a.txt": []byte("a")})

		_, err := a.Import(ctx, host, "")
		require.ErrorIs(t, err, ffg.ErrPermissionDenied)
		assert.Equal(t, 6, a.Service().Tree().Len())
	})
}

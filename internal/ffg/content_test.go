package ffg_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ffg-go/internal/ffg"
	"ffg-go/internal/model"
	"ffg-go/internal/testutil"
)

func TestFFGService_CompressDecompress(t *testing.T) {
	ctx := context.Background()
	h := testutil.NewHarness(t, ffg.RoleEditor)
	before := h.Store.Snapshot().Len()

	archive, err := h.Service.CompressFile(ctx, "readme")
	require.NoError(t, err)
	assert.Equal(t, "README.md.gz", archive.Name)
	assert.Equal(t, model.KindArchive, archive.Kind)
	assert.Equal(t, int64(717), archive.Size)
	assert.Equal(t, "readme", archive.OriginalID)
	assert.Equal(t, model.RootID, archive.ParentID)
	assert.Equal(t, "[Compressed content of README.md]", archive.Text())

	extracted, err := h.Service.DecompressFile(ctx, archive.ID)
	require.NoError(t, err)
	assert.Equal(t, "README.md", extracted.Name)
	assert.Equal(t, model.KindDocument, extracted.Kind)
	assert.Equal(t, int64(933), extracted.Size)
	assert.Empty(t, extracted.OriginalID)

	// Source and archive both survive.
	assert.Equal(t, before+2, h.Store.Snapshot().Len())
	assert.Equal(t, []string{"compress", "decompress"}, h.Journal.Operations())
}

func TestFFGService_DecompressFile_KindFallback(t *testing.T) {
	ctx := context.Background()
	h := testutil.NewHarness(t, ffg.RoleAdmin)

	nf := ffg.NewFile{Name: "main.py", ParentID: "documents", Content: model.StringPtr("print(1)")}
	code, err := h.Service.Create(ctx, nf)
	require.NoError(t, err)

	archive, err := h.Service.CompressFile(ctx, code.ID)
	require.NoError(t, err)

	extracted, err := h.Service.DecompressFile(ctx, archive.ID)
	require.NoError(t, err)
	assert.Equal(t, model.KindCode, extracted.Kind)

	// Once the source is gone the extracted copy is a document.
	require.NoError(t, h.Service.Delete(ctx, []string{code.ID}))
	extracted, err = h.Service.DecompressFile(ctx, archive.ID)
	require.NoError(t, err)
	assert.Equal(t, model.KindDocument, extracted.Kind)
}

func TestFFGService_CompressFile_Rejects(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		role string
		id   string
		want error
	}{
		{name: "no content", role: ffg.RoleAdmin, id: "profile", want: ffg.ErrInvalidState},
		{name: "folder", role: ffg.RoleAdmin, id: "documents", want: ffg.ErrInvalidState},
		{name: "missing", role: ffg.RoleAdmin, id: "ghost", want: ffg.ErrNotFound},
		{name: "viewer", role: ffg.RoleViewer, id: "readme", want: ffg.ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testutil.NewHarness(t, tt.role)

			archive, err := h.Service.CompressFile(ctx, tt.id)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, archive)
			assert.Equal(t, 6, h.Store.Snapshot().Len())
			assert.Equal(t, 1, h.Notifier.Count(ffg.LevelError))
		})
	}

	t.Run("decompress non-archive", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		_, err := h.Service.DecompressFile(ctx, "readme")
		require.ErrorIs(t, err, ffg.ErrInvalidState)

		note, _ := h.Notifier.Last()
		assert.Equal(t, "Decompression Failed", note.Title)
	})
}

func TestFFGService_ClearContent(t *testing.T) {
	ctx := context.Background()

	t.Run("empties content and drops encryption", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		require.NoError(t, h.Service.EncryptFile(ctx, "readme", "pw"))

		require.NoError(t, h.Service.ClearContent(ctx, "readme"))

		f := h.Get(t, "readme")
		require.NotNil(t, f.Content)
		assert.Equal(t, "", *f.Content)
		assert.False(t, f.IsEncrypted)
	})

	t.Run("folder", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		require.ErrorIs(t, h.Service.ClearContent(ctx, "images"), ffg.ErrInvalidState)

		note, _ := h.Notifier.Last()
		assert.Equal(t, "Operation Failed", note.Title)
	})
}

func TestFFGService_SortContent(t *testing.T) {
	ctx := context.Background()

	t.Run("sorts lines and is idempotent", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleEditor)
		require.NoError(t, h.Service.EditContent(ctx, "readme", "pear\napple\nfig"))

		require.NoError(t, h.Service.SortContent(ctx, "readme"))
		assert.Equal(t, "apple\nfig\npear", h.Get(t, "readme").Text())

		require.NoError(t, h.Service.SortContent(ctx, "readme"))
		assert.Equal(t, "apple\nfig\npear", h.Get(t, "readme").Text())
	})

	t.Run("encrypted content", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		require.NoError(t, h.Service.EncryptFile(ctx, "readme", "pw"))
		require.ErrorIs(t, h.Service.SortContent(ctx, "readme"), ffg.ErrInvalidState)
	})

	t.Run("no content", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		require.ErrorIs(t, h.Service.SortContent(ctx, "report"), ffg.ErrInvalidState)

		note, _ := h.Notifier.Last()
		assert.Equal(t, "Sort Failed", note.Title)
	})
}

func TestFFGService_SearchContent(t *testing.T) {
	t.Run("matches case-insensitively", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleViewer)
		got := h.Service.SearchContent("readme", "SECURE")
		assert.Equal(t, []string{"Line 3: A secure file management system"}, got)
		assert.Zero(t, h.Notifier.Count(ffg.LevelError))
	})

	t.Run("no content", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleViewer)
		got := h.Service.SearchContent("profile", "x")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("missing file", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleViewer)
		got := h.Service.SearchContent("ghost", "x")
		assert.NotNil(t, got)
		assert.Empty(t, got)
		assert.Equal(t, 1, h.Notifier.Count(ffg.LevelError))
	})
}

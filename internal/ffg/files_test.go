package ffg_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ffg-go/internal/ffg"
	"ffg-go/internal/model"
	"ffg-go/internal/testutil"
)

func TestFFGService_Scenario(t *testing.T) {
	h := testutil.NewHarness(t, ffg.RoleAdmin)
	svc := h.Service
	ctx := context.Background()

	photos, err := svc.Create(ctx, ffg.NewFile{Name: "Photos", Kind: model.KindFolder})
	require.NoError(t, err)
	assert.Equal(t, model.RootID, photos.ParentID)

	a, err := svc.Create(ctx, ffg.NewFile{Name: "a.txt", ParentID: photos.ID, Content: model.StringPtr("b\na\nc")})
	require.NoError(t, err)
	assert.Equal(t, model.KindDocument, a.Kind)
	assert.Equal(t, int64(5), a.Size)

	require.NoError(t, svc.SortContent(ctx, a.ID))
	assert.Equal(t, "a\nb\nc", h.Get(t, a.ID).Text())

	require.NoError(t, svc.EncryptFile(ctx, a.ID, "pw"))
	enc := h.Get(t, a.ID)
	assert.True(t, enc.IsEncrypted)
	assert.NotEqual(t, "a\nb\nc", enc.Text())

	require.NoError(t, svc.DecryptFile(ctx, a.ID, "pw"))
	dec := h.Get(t, a.ID)
	assert.False(t, dec.IsEncrypted)
	assert.Equal(t, "a\nb\nc", dec.Text())

	require.NoError(t, svc.Delete(ctx, []string{photos.ID}))
	tree := h.Store.Snapshot()
	assert.False(t, tree.Has(photos.ID))
	assert.False(t, tree.Has(a.ID))
	assert.Equal(t, 6, tree.Len())

	assert.Equal(t, []string{"create", "create", "sort", "encrypt", "decrypt", "delete"}, h.Journal.Operations())
}

func TestFFGService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns fresh ids and timestamps", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		h.Clock.Advance(time.Hour)

		f, err := h.Service.Create(ctx, ffg.NewFile{Name: "main.py", ParentID: "documents", Content: model.StringPtr("print(1)")})
		require.NoError(t, err)

		assert.Equal(t, "file-1", f.ID)
		assert.Equal(t, model.KindCode, f.Kind)
		assert.Equal(t, h.Clock.Now(), f.ModifiedAt)
		assert.Equal(t, "documents", f.ParentID)
		assert.Equal(t, 7, h.Store.Snapshot().Len())

		note, ok := h.Notifier.Last()
		require.True(t, ok)
		assert.Equal(t, ffg.LevelSuccess, note.Level)
		assert.Equal(t, "File Created", note.Title)
	})

	t.Run("ids stay unique under concurrent creates", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		const n = 25

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := h.Service.Create(ctx, ffg.NewFile{Name: "f.txt", Content: model.StringPtr("x")})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		tree := h.Store.Snapshot()
		assert.Equal(t, 6+n, tree.Len(), "no create may be lost")
		seen := map[string]bool{}
		for _, r := range tree.Records() {
			assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
			seen[r.ID] = true
		}
		assert.Empty(t, tree.Validate())
	})

	tests := []struct {
		name string
		nf   ffg.NewFile
		want error
	}{
		{name: "empty name", nf: ffg.NewFile{Name: ""}, want: ffg.ErrInvalidInput},
		{name: "blank name", nf: ffg.NewFile{Name: "   "}, want: ffg.ErrInvalidInput},
		{name: "slash in name", nf: ffg.NewFile{Name: "a/b"}, want: ffg.ErrInvalidInput},
		{name: "unknown kind", nf: ffg.NewFile{Name: "x", Kind: "spreadsheet"}, want: ffg.ErrInvalidInput},
		{name: "folder with content", nf: ffg.NewFile{Name: "x", Kind: model.KindFolder, Content: model.StringPtr("")}, want: ffg.ErrInvalidInput},
		{name: "bad permissions", nf: ffg.NewFile{Name: "x.txt", Permissions: "999"}, want: ffg.ErrInvalidInput},
		{name: "missing parent", nf: ffg.NewFile{Name: "x.txt", ParentID: "ghost"}, want: ffg.ErrNotFound},
		{name: "parent is a file", nf: ffg.NewFile{Name: "x.txt", ParentID: "readme"}, want: ffg.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testutil.NewHarness(t, ffg.RoleAdmin)

			_, err := h.Service.Create(ctx, tt.nf)
			require.ErrorIs(t, err, tt.want)

			var opErr *ffg.OpError
			require.ErrorAs(t, err, &opErr)
			assert.Equal(t, "create", opErr.Op)
			assert.Equal(t, 6, h.Store.Snapshot().Len())
			assert.Equal(t, 1, h.Notifier.Count(ffg.LevelError))
		})
	}

	t.Run("viewer is denied", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleViewer)

		_, err := h.Service.Create(ctx, ffg.NewFile{Name: "x.txt"})
		require.ErrorIs(t, err, ffg.ErrPermissionDenied)

		note, _ := h.Notifier.Last()
		assert.Equal(t, "Permission Denied", note.Title)
		assert.Equal(t, 6, h.Store.Snapshot().Len())
		assert.Empty(t, h.Journal.Operations())
	})
}

func TestFFGService_Rename(t *testing.T) {
	ctx := context.Background()

	t.Run("renames", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleEditor)
		require.NoError(t, h.Service.Rename(ctx, "readme", "READ.md"))
		assert.Equal(t, "READ.md", h.Get(t, "readme").Name)
	})

	t.Run("missing file", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		err := h.Service.Rename(ctx, "ghost", "x")
		require.ErrorIs(t, err, ffg.ErrNotFound)
		note, _ := h.Notifier.Last()
		assert.Equal(t, "File Not Found", note.Title)
	})

	t.Run("blank name", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		require.ErrorIs(t, h.Service.Rename(ctx, "readme", " \t "), ffg.ErrInvalidInput)
		assert.Equal(t, "README.md", h.Get(t, "readme").Name)
	})

	t.Run("viewer is denied", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleViewer)
		require.ErrorIs(t, h.Service.Rename(ctx, "readme", "x"), ffg.ErrPermissionDenied)
		assert.Equal(t, "README.md", h.Get(t, "readme").Name)
	})
}

func TestFFGService_EditContent(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces content and bumps modified time", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		later := h.Clock.Advance(time.Minute)

		require.NoError(t, h.Service.EditContent(ctx, "readme", "new"))
		f := h.Get(t, "readme")
		assert.Equal(t, "new", f.Text())
		assert.Equal(t, later, f.ModifiedAt)
	})

	t.Run("folder", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		require.ErrorIs(t, h.Service.EditContent(ctx, "documents", "x"), ffg.ErrInvalidState)
	})
}

func TestFFGService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades and clears selection", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		sub, err := h.Service.Create(ctx, ffg.NewFile{Name: "sub", Kind: model.KindFolder, ParentID: "documents"})
		require.NoError(t, err)
		deep, err := h.Service.Create(ctx, ffg.NewFile{Name: "deep.txt", ParentID: sub.ID})
		require.NoError(t, err)

		h.Service.Navigator().ToggleSelect("documents")
		require.NoError(t, h.Service.Delete(ctx, []string{"documents"}))

		tree := h.Store.Snapshot()
		for _, id := range []string{"documents", "report", sub.ID, deep.ID} {
			assert.False(t, tree.Has(id), id)
		}
		assert.True(t, tree.Has("readme"))
		assert.Empty(t, h.Service.Navigator().Selection())

		note, _ := h.Notifier.Last()
		assert.Equal(t, "1 file deleted successfully.", note.Message)
	})

	t.Run("skips ids already gone", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		require.NoError(t, h.Service.Delete(ctx, []string{"ghost", "readme"}))
		assert.False(t, h.Store.Snapshot().Has("readme"))
	})

	t.Run("nothing left to delete", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		require.ErrorIs(t, h.Service.Delete(ctx, []string{"ghost"}), ffg.ErrNotFound)
	})

	t.Run("root is protected", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		require.ErrorIs(t, h.Service.Delete(ctx, []string{"readme", model.RootID}), ffg.ErrInvalidState)
		assert.True(t, h.Store.Snapshot().Has("readme"), "batch is all-or-nothing")
	})

	t.Run("editor is denied the whole batch", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleEditor)
		h.Service.Navigator().ToggleSelect("readme")

		require.ErrorIs(t, h.Service.Delete(ctx, []string{"readme", "profile"}), ffg.ErrPermissionDenied)
		assert.Equal(t, 6, h.Store.Snapshot().Len())
		assert.Equal(t, []string{"readme"}, h.Service.Navigator().Selection())
	})

	t.Run("empty batch", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		require.ErrorIs(t, h.Service.Delete(ctx, nil), ffg.ErrInvalidInput)
	})
}

func TestFFGService_Move(t *testing.T) {
	ctx := context.Background()

	t.Run("reparents and clears selection", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleEditor)
		h.Service.Navigator().ToggleSelect("readme")

		require.NoError(t, h.Service.Move(ctx, []string{"readme", "profile"}, "documents"))
		assert.Equal(t, "documents", h.Get(t, "readme").ParentID)
		assert.Equal(t, "documents", h.Get(t, "profile").ParentID)
		assert.Empty(t, h.Service.Navigator().Selection())
		assert.Empty(t, h.Store.Snapshot().Validate())
	})

	t.Run("empty target means root", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		require.NoError(t, h.Service.Move(ctx, []string{"report"}, ""))
		assert.Equal(t, model.RootID, h.Get(t, "report").ParentID)
	})

	t.Run("into its own subtree", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		a, err := h.Service.Create(ctx, ffg.NewFile{Name: "A", Kind: model.KindFolder})
		require.NoError(t, err)
		b, err := h.Service.Create(ctx, ffg.NewFile{Name: "B", Kind: model.KindFolder, ParentID: a.ID})
		require.NoError(t, err)

		require.ErrorIs(t, h.Service.Move(ctx, []string{a.ID}, b.ID), ffg.ErrCycle)
		require.ErrorIs(t, h.Service.Move(ctx, []string{a.ID}, a.ID), ffg.ErrCycle)
		assert.Equal(t, model.RootID, h.Get(t, a.ID).ParentID)
		assert.Empty(t, h.Store.Snapshot().Validate())
	})

	tests := []struct {
		name   string
		ids    []string
		target string
		want   error
	}{
		{name: "target missing", ids: []string{"readme"}, target: "ghost", want: ffg.ErrNotFound},
		{name: "target is a file", ids: []string{"profile"}, target: "readme", want: ffg.ErrInvalidState},
		{name: "source missing", ids: []string{"readme", "ghost"}, target: "documents", want: ffg.ErrNotFound},
		{name: "root", ids: []string{model.RootID}, target: "documents", want: ffg.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testutil.NewHarness(t, ffg.RoleAdmin)
			require.ErrorIs(t, h.Service.Move(ctx, tt.ids, tt.target), tt.want)
			assert.Equal(t, model.RootID, h.Get(t, "readme").ParentID)
		})
	}

	t.Run("viewer is denied", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleViewer)
		require.ErrorIs(t, h.Service.Move(ctx, []string{"readme"}, "documents"), ffg.ErrPermissionDenied)
	})
}

func TestFFGService_Copy(t *testing.T) {
	ctx := context.Background()

	t.Run("creates suffixed siblings under target", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleViewer)
		later := h.Clock.Advance(time.Hour)

		// Viewers may copy: copy needs read only.
		require.NoError(t, h.Service.Copy(ctx, []string{"readme", "images"}, "documents"))

		kids := h.Store.Snapshot().ChildrenOf("documents")
		require.Len(t, kids, 3)
		assert.Equal(t, "README.md (copy)", kids[1].Name)
		assert.Equal(t, "Images (copy)", kids[2].Name)
		assert.Equal(t, later, kids[1].ModifiedAt)
		assert.Equal(t, h.Get(t, "readme").Text(), kids[1].Text())
		assert.Empty(t, h.Store.Snapshot().ChildrenOf(kids[2].ID), "copies are shallow")
		assert.Equal(t, "README.md", h.Get(t, "readme").Name)
	})

	t.Run("missing source aborts the batch", func(t *testing.T) {
		h := testutil.NewHarness(t, ffg.RoleAdmin)
		require.ErrorIs(t, h.Service.Copy(ctx, []string{"readme", "ghost"}, ""), ffg.ErrNotFound)
		assert.Equal(t, 6, h.Store.Snapshot().Len())
	})

	t.Run("unknown role is denied", func(t *testing.T) {
		h := testutil.NewHarness(t, "guest")
		require.ErrorIs(t, h.Service.Copy(ctx, []string{"readme"}, ""), ffg.ErrPermissionDenied)
	})
}

func TestFFGService_PersistFailure(t *testing.T) {
	h := testutil.NewHarness(t, ffg.RoleAdmin)
	h.Persister.SaveErr = errors.New("quota exceeded")

	err := h.Service.Rename(context.Background(), "readme", "kept.md")
	require.ErrorIs(t, err, ffg.ErrPersist)

	assert.Equal(t, "kept.md", h.Get(t, "readme").Name, "the change stays applied in memory")
	assert.Equal(t, 1, h.Notifier.Count(ffg.LevelSuccess))
	assert.Equal(t, 1, h.Notifier.Count(ffg.LevelWarning))
	assert.Equal(t, []string{"rename"}, h.Journal.Operations())
}

func TestFFGService_Latency(t *testing.T) {
	newSlow := func(t *testing.T, latency time.Duration) (*ffg.FFGService, *ffg.TreeStore) {
		store := ffg.NewTreeStore(nil, ffg.NewNopLogger())
		require.NoError(t, store.Open(context.Background(), seed))
		gate := ffg.NewAccessGate(ffg.DefaultRoles(), ffg.DefaultActor)
		svc := ffg.NewFFGService(store, gate, ffg.NopNotifier{}, ffg.NopJournal{}, ffg.NewNopLogger(),
			testutil.FixedClock(), testutil.NewStubIDGenerator(), latency)
		return svc, store
	}

	t.Run("busy while in flight", func(t *testing.T) {
		svc, store := newSlow(t, 200*time.Millisecond)
		assert.False(t, svc.Busy())

		done := make(chan error, 1)
		go func() { done <- svc.Rename(context.Background(), "readme", "slow.md") }()

		assert.Eventually(t, svc.Busy, time.Second, 5*time.Millisecond)
		require.NoError(t, <-done)
		assert.False(t, svc.Busy())

		f, _ := store.Snapshot().Get("readme")
		assert.Equal(t, "slow.md", f.Name)
	})

	t.Run("cancellation during latency", func(t *testing.T) {
		svc, store := newSlow(t, time.Hour)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := svc.Rename(ctx, "readme", "never.md")
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, svc.Busy())

		f, _ := store.Snapshot().Get("readme")
		assert.Equal(t, "README.md", f.Name)
	})
}

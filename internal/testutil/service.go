package testutil

import (
	"context"
	"testing"

	"ffg-go/internal/ffg"
	"ffg-go/internal/model"
)

// Harness bundles an FFGService with the test doubles behind it.
type Harness struct {
	Service   *ffg.FFGService
	Store     *ffg.TreeStore
	Persister *MemoryPersister
	Notifier  *RecordingNotifier
	Journal   *MemoryJournal
	Clock     *StubClock
	IDs       *StubIDGenerator
}

// NewHarness creates a service over the seed tree for an actor holding
// roleID, with no latency.
func NewHarness(t testing.TB, roleID string) *Harness {
	t.Helper()

	h := &Harness{
		Persister: NewMemoryPersister(),
		Notifier:  NewRecordingNotifier(),
		Journal:   NewMemoryJournal(),
		Clock:     FixedClock(),
		IDs:       NewStubIDGenerator(),
	}
	h.Store = ffg.NewTreeStore(h.Persister, ffg.NewNopLogger())
	err := h.Store.Open(context.Background(), func() *ffg.Tree { return ffg.SeedTree(h.Clock) })
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}

	gate := ffg.NewAccessGate(ffg.DefaultRoles(), ffg.Actor{Name: "tester", RoleID: roleID})
	h.Service = ffg.NewFFGService(h.Store, gate, h.Notifier, h.Journal, ffg.NewNopLogger(), h.Clock, h.IDs, 0)
	return h
}

// Get returns the current record for id, failing the test if it is absent.
func (h *Harness) Get(t testing.TB, id string) *model.FileRecord {
	t.Helper()
	f, ok := h.Store.Snapshot().Get(id)
	if !ok {
		t.Fatalf("record %s not found", id)
	}
	return f
}

package ffg

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"ffg-go/internal/model"
)

// FFGService is the operation layer over the tree store. Every operation
// checks the access gate, waits out the configured latency, then computes
// and commits a new tree in a single store update. Outcomes are
// returned as errors and also reported through the notifier.
type FFGService struct {
	store    *TreeStore
	gate     Gate
	nav      *Navigator
	notifier Notifier
	journal  Journal
	logger   Logger
	clock    Clock
	idgen    IDGenerator
	latency  time.Duration
	inflight atomic.Int32
}

// NewFFGService creates a new FFGService with the provided dependencies.
// latency simulates the round trip of an out-of-process storage call; zero
// disables it.
func NewFFGService(store *TreeStore, gate Gate, notifier Notifier, journal Journal, logger Logger, clock Clock, idgen IDGenerator, latency time.Duration) *FFGService {
	return &FFGService{
		store:    store,
		gate:     gate,
		nav:      NewNavigator(store),
		notifier: notifier,
		journal:  journal,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
		latency:  latency,
	}
}

// Navigator returns the navigation and selection state.
func (s *FFGService) Navigator() *Navigator { return s.nav }

// Busy reports whether any operation is in flight.
func (s *FFGService) Busy() bool { return s.inflight.Load() > 0 }

// Tree returns the current tree snapshot.
func (s *FFGService) Tree() *Tree { return s.store.Snapshot() }

// GetFile returns a copy of the record with the given id.
func (s *FFGService) GetFile(id string) (*model.FileRecord, bool) {
	return s.store.Snapshot().Get(id)
}

// CheckAccess exposes the gate to the front end, e.g. to disable controls.
func (s *FFGService) CheckAccess(fileID string, action model.Action) bool {
	return s.gate.CheckAccess(fileID, action)
}

// begin marks an operation in flight and waits out the latency.
// The returned function must be called when the operation ends.
func (s *FFGService) begin(ctx context.Context) (func(), error) {
	s.inflight.Add(1)
	done := func() { s.inflight.Add(-1) }

	if s.latency <= 0 {
		return done, nil
	}

	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return done, nil
	case <-ctx.Done():
		done()
		return nil, ctx.Err()
	}
}

// mutate waits out the latency, applies fn in one store update and reports
// the outcome. report is called only after a commit and returns the success
// notification; its message doubles as the journal detail. A persistence
// failure still counts as a committed change: it is journaled, notified as a
// warning and returned.
func (s *FFGService) mutate(ctx context.Context, op, id, failTitle string, fn func(*Tree) (*Tree, error), report func() (title, message string)) error {
	done, err := s.begin(ctx)
	if err != nil {
		return s.fail(op, id, failTitle, err)
	}
	defer done()

	_, err = s.store.Update(ctx, fn)
	if err != nil && !errors.Is(err, ErrPersist) {
		return s.fail(op, id, failTitle, err)
	}

	title, message := report()
	s.record(ctx, op, message)
	s.succeed(title, message)

	if err != nil {
		s.notifier.Notify(Notification{
			Level:   LevelWarning,
			Title:   "Changes Not Saved",
			Message: "The change was applied but could not be saved to storage.",
		})
		return &OpError{Op: op, ID: id, Err: err}
	}
	return nil
}

// requireAccess fetches id from the current tree and checks action on it.
func (s *FFGService) requireAccess(id string, action model.Action) (*model.FileRecord, error) {
	file, ok := s.store.Snapshot().Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if !s.gate.CheckAccess(id, action) {
		return nil, ErrPermissionDenied
	}
	return file, nil
}

// requireBatchAccess checks action on every id before anything is mutated.
func (s *FFGService) requireBatchAccess(ids []string, action model.Action) error {
	if len(ids) == 0 {
		return invalidInput("no files selected")
	}
	for _, id := range ids {
		if !s.gate.CheckAccess(id, action) {
			return fmt.Errorf("%w: %s on %s", ErrPermissionDenied, action, id)
		}
	}
	return nil
}

// record logs a successful operation and appends it to the journal.
func (s *FFGService) record(ctx context.Context, operation, detail string) {
	s.logger.Info("operation applied", "operation", operation, "detail", detail)
	entry := JournalEntry{At: s.clock.Now(), Operation: operation, Detail: detail}
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.Warn("journal write failed", "operation", operation, "error", err)
	}
}

// succeed notifies a successful outcome.
func (s *FFGService) succeed(title, message string) {
	s.notifier.Notify(Notification{Level: LevelSuccess, Title: title, Message: message})
}

// fail wraps err in an OpError, logs it and notifies it. failTitle is used
// for errors other than denial and not-found.
func (s *FFGService) fail(op, id, failTitle string, err error) error {
	title := failTitle
	switch {
	case errors.Is(err, ErrPermissionDenied):
		title = "Permission Denied"
	case errors.Is(err, ErrNotFound):
		title = "File Not Found"
	}

	s.logger.Warn("operation failed", "operation", op, "id", id, "error", err)
	s.notifier.Notify(Notification{Level: LevelError, Title: title, Message: err.Error()})
	return &OpError{Op: op, ID: id, Err: err}
}

// newRecordFrom clones src as a fresh record with a new id and timestamp.
func (s *FFGService) newRecordFrom(src *model.FileRecord) *model.FileRecord {
	rec := src.Clone()
	rec.ID = s.idgen.New()
	rec.ModifiedAt = s.clock.Now()
	return rec
}

// plural renders "1 file" or "n files".
func plural(n int) string {
	if n == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", n)
}

// isPersist reports whether err is a save failure after a committed change.
func isPersist(err error) bool {
	return errors.Is(err, ErrPersist)
}

package testutil

import (
	"sync"

	"ffg-go/internal/ffg"
)

var _ ffg.Notifier = (*RecordingNotifier)(nil)

// RecordingNotifier captures every notification for assertions.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []ffg.Notification
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Notify(note ffg.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
}

// All returns every notification in the order sent.
func (n *RecordingNotifier) All() []ffg.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ffg.Notification(nil), n.sent...)
}

// Last returns the most recent notification and whether there was one.
func (n *RecordingNotifier) Last() (ffg.Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return ffg.Notification{}, false
	}
	return n.sent[len(n.sent)-1], true
}

// Count returns how many notifications of level were sent.
func (n *RecordingNotifier) Count(level ffg.Level) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, note := range n.sent {
		if note.Level == level {
			c++
		}
	}
	return c
}

// Reset forgets everything recorded so far.
func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
}

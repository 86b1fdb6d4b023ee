package testutil

import (
	"fmt"
	"sync"
	"time"

	"ffg-go/internal/ffg"
)

var (
	_ ffg.Clock       = (*StubClock)(nil)
	_ ffg.IDGenerator = (*StubIDGenerator)(nil)
)

// StubClock returns a fixed time until advanced. Safe for concurrent use.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewStubClock creates a StubClock set to the given time.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to 2024-01-15 10:30:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *StubClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// StubIDGenerator returns sequential ids: "file-1", "file-2", ...
type StubIDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter int
}

// NewStubIDGenerator creates a generator using the "file" prefix.
func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{prefix: "file"}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// Issued returns how many ids have been handed out.
func (g *StubIDGenerator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}

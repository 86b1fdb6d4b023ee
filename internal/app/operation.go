package app

import "time"

// Command tracks one CLI invocation so its outcome can be logged on Close.
// Its ID tags every log line written during the run.
type Command struct {
	ID      string
	Name    string
	Args    string
	Status  string // "success" or "error"
	Started time.Time
}

// NewCommand starts tracking a command. The ID is derived from start time.
func NewCommand(name, args string, started time.Time) *Command {
	return &Command{
		ID:      started.UTC().Format("20060102T150405.000Z"),
		Name:    name,
		Args:    args,
		Status:  "success",
		Started: started,
	}
}

// Fail marks the command as failed.
func (c *Command) Fail() {
	c.Status = "error"
}

// Failed reports whether Fail was called.
func (c *Command) Failed() bool {
	return c.Status == "error"
}

// Elapsed returns the time since the command started.
func (c *Command) Elapsed(now time.Time) time.Duration {
	return now.Sub(c.Started)
}

package app

import (
	"time"

	"drawer-go/internal/drawer"
)

// Run describes one CLI invocation. Its ID tags every log line written
// while the command runs.
type Run struct {
	ID        string
	Command   string
	StartedAt time.Time
	Status    string // "success" or "error"
	Err       error
}

// NewRun starts a run of command at the clock's current time.
func NewRun(command string, clock drawer.Clock) *Run {
	now := clock.Now()
	return &Run{
		ID:        now.UTC().Format("20060102T150405Z"),
		Command:   command,
		StartedAt: now,
		Status:    "success",
	}
}

// Fail marks the run as failed. The first error is kept.
func (r *Run) Fail(err error) {
	if err == nil {
		return
	}
	r.Status = "error"
	if r.Err == nil {
		r.Err = err
	}
}

// Elapsed returns the run's duration as of now.
func (r *Run) Elapsed(clock drawer.Clock) time.Duration {
	return clock.Now().Sub(r.StartedAt)
}

// Package progresstest provides helpers for testing code built on the
// progress package.
package progresstest

import (
	"sync"
	"time"
)

// Epoch is the instant a Clock created with NewClock starts at.
var Epoch = time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)

// Clock is a manually driven clock. It only moves when Advance or Set is
// called, which makes time-based firing deterministic in tests.
//
// It satisfies progress.Clock and is safe for concurrent use.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock positioned at Epoch.
func NewClock() *Clock {
	return &Clock{now: Epoch}
}

// NewClockAt returns a Clock positioned at t.
func NewClockAt(t time.Time) *Clock {
	return &Clock{now: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// AdvanceSeconds is Advance for whole seconds, which is how most progress
// scenarios are written.
func (c *Clock) AdvanceSeconds(s int) time.Time {
	return c.Advance(time.Duration(s) * time.Second)
}

// Set jumps the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Package testutil provides deterministic helpers shared by tests:
// a fixed clock for the trailing-window KPI and writers for CSV/XML
// fixture files.
package testutil

import (
	"sync"
	"time"
)

// FixedClock returns a configured instant from Now, making time-dependent
// results reproducible across runs. Unlike the system clock it can be
// advanced explicitly mid-test.
//
// Thread-safety: all methods are safe for concurrent use.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock pinned to t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// Now returns the pinned instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the pinned instant forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Package testutil holds shared test fixtures.
package testutil

import (
	"sync"
	"time"
)

// FixedClock provides a thread-safe, settable wall clock for tests.
//
// Engine tests pin it to a known instant so "today" is deterministic, then
// advance it to simulate days passing without sleeping.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock frozen at the given instant.
func NewFixedClock(at time.Time) *FixedClock {
	return &FixedClock{now: at}
}

// Now returns the frozen instant. Pass this method as the engine's clock.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set repositions the clock.
func (c *FixedClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// AdvanceDays moves the clock forward by whole days.
func (c *FixedClock) AdvanceDays(n int) {
	c.Advance(time.Duration(n) * 24 * time.Hour)
}

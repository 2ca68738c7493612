// Package clock provides a time abstraction so that price lookups relative to
// "now" can be tested deterministically.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// New returns a RealClock.
func New() Clock { return RealClock{} }

// Now returns time.Now().
func (RealClock) Now() time.Time { return time.Now() }

// MockClock is a Clock whose time is set manually.
type MockClock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewMock returns a MockClock set to t.
func NewMock(t time.Time) *MockClock {
	return &MockClock{current: t}
}

// Now returns the mock's current time.
func (c *MockClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Set moves the mock clock to t.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// Add advances the mock clock by d.
func (c *MockClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

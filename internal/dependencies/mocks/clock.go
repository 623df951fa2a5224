package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/rpsarena/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// It is safe for use from the per-connection goroutines of network tests.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
	timers      []mockTimer
}

type mockTimer struct {
	deadline time.Time
	ch       chan time.Time
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// After fires once the clock has been advanced by d
func (c *MockClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.currentTime
		return ch
	}
	c.timers = append(c.timers, mockTimer{deadline: c.currentTime.Add(d), ch: ch})
	return ch
}

// PendingTimers reports how many After channels have not fired yet
func (c *MockClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Advance moves the clock forward by the given duration and fires any
// timers that have come due
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = c.currentTime.Add(d)

	waiting := c.timers[:0]
	for _, t := range c.timers {
		if t.deadline.After(c.currentTime) {
			waiting = append(waiting, t)
			continue
		}
		t.ch <- c.currentTime
	}
	c.timers = waiting
}

package clock

import "time"

// Clock stamps match start and end times and paces house bots
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// RealClock reads the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time truncated to milliseconds, the precision
// match durations are reported in
func (c *RealClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// After waits for d to elapse
func (c *RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

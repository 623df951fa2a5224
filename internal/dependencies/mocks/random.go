package mocks

import (
	"sync"

	"github.com/mcoot/rpsarena/internal/dependencies/random"
)

// MockRandom replays queued values. Bots draw from it on their own
// goroutines, so it is safe for concurrent use.
type MockRandom struct {
	mu     sync.Mutex
	queued []int
	calls  int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn pops the next queued value modulo n; an empty queue yields 0
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if len(r.queued) == 0 || n <= 0 {
		return 0
	}
	v := r.queued[0]
	r.queued = r.queued[1:]
	return v % n
}

// QueueIntn appends values for later Intn calls
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queued = append(r.queued, values...)
}

// Calls reports how many times Intn has been called
func (r *MockRandom) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

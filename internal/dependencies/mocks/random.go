package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/leaderboard-go/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing. Queued strings
// are returned in order; once the queue is empty it returns "mock-1",
// "mock-2" and so on, so generated tokens stay distinct.
type MockRandom struct {
	mu      sync.Mutex
	queue   []string
	issued  int
	counter int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// String returns the next queued result
func (r *MockRandom) String(_ int, _ string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.issued < len(r.queue) {
		result := r.queue[r.issued]
		r.issued++
		return result
	}
	r.counter++
	return fmt.Sprintf("mock-%d", r.counter)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	r.queue = append(r.queue, values...)
	r.mu.Unlock()
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	r.queue = nil
	r.issued = 0
	r.counter = 0
	r.mu.Unlock()
}

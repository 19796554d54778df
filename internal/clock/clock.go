// Package clock abstracts time so services can run against the system clock
// in production and a hand-advanced clock in tests.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current Unix timestamp in seconds.
type Clock interface {
	Now() int64
}

// System reads the wall clock.
type System struct{}

// NewSystem returns a wall-clock backed Clock.
func NewSystem() System {
	return System{}
}

func (System) Now() int64 {
	return time.Now().Unix()
}

// Manual is a hand-advanced clock for tests.
type Manual struct {
	mu  sync.Mutex
	now int64
}

// NewManual returns a Manual clock starting at the given timestamp.
func NewManual(start int64) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d seconds.
func (m *Manual) Advance(d int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
}

// Set moves the clock to an absolute timestamp.
func (m *Manual) Set(now int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

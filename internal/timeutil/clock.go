// Package timeutil abstracts wall-clock time behind an interface so the
// debounce machinery in the form layer can be driven deterministically in
// tests.
package timeutil

import (
	"sync"
	"time"
)

// Clock provides the time operations the rest of the codebase uses. Only
// main wires the real one; tests inject a MockClock.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

// Timer fires once on its channel after its duration elapses. Stop prevents
// a pending fire and reports whether the timer was still pending. There is
// no Reset; callers arm a fresh timer instead.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

func NewRealClock() *RealClock { return &RealClock{} }

func (*RealClock) Now() time.Time { return time.Now() }

func (*RealClock) NewTimer(d time.Duration) Timer {
	return &realTimer{t: time.NewTimer(d)}
}

type realTimer struct {
	t *time.Timer
}

func (rt *realTimer) C() <-chan time.Time { return rt.t.C }
func (rt *realTimer) Stop() bool          { return rt.t.Stop() }

// MockClock is a manually advanced Clock for tests.
type MockClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*mockTimer
}

// NewMockClock creates a MockClock set to the given time.
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *MockClock) NewTimer(d time.Duration) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &mockTimer{
		clock:    c,
		deadline: c.now.Add(d),
		ch:       make(chan time.Time, 1),
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the mock clock forward by d and fires every timer whose
// deadline has been reached, in deadline order. Fires deliver into each
// timer's buffered channel, so Advance never blocks on a receiver.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()

	for {
		t := c.popDue(now)
		if t == nil {
			return
		}
		t.ch <- t.deadline
	}
}

func (c *MockClock) popDue(now time.Time) *mockTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	best := -1
	for i, t := range c.timers {
		if t.deadline.After(now) {
			continue
		}
		if best == -1 || t.deadline.Before(c.timers[best].deadline) {
			best = i
		}
	}
	if best == -1 {
		return nil
	}
	t := c.timers[best]
	c.timers = append(c.timers[:best], c.timers[best+1:]...)
	return t
}

type mockTimer struct {
	clock    *MockClock
	deadline time.Time
	ch       chan time.Time
}

func (t *mockTimer) C() <-chan time.Time { return t.ch }

// Stop removes the timer from its clock's pending set. It reports false
// when the timer already fired or was already stopped.
func (t *mockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	for i, other := range t.clock.timers {
		if other == t {
			t.clock.timers = append(t.clock.timers[:i], t.clock.timers[i+1:]...)
			return true
		}
	}
	return false
}

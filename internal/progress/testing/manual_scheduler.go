// Package testing provides test doubles for the progress package.
package testing

import (
	"sync"
	"time"
)

type timer struct {
	interval time.Duration
	next     time.Time
	fn       func(time.Time)
	stopped  bool
}

// ManualScheduler is a virtual clock. Frames fire synchronously, on the
// caller's goroutine, only when Advance moves time past them.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*timer
	fired  int
}

// NewManualScheduler creates a scheduler whose clock starts at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Now returns the virtual time.
func (m *ManualScheduler) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Every registers fn to fire every interval of virtual time.
func (m *ManualScheduler) Every(interval time.Duration, fn func(now time.Time)) func() {
	if interval <= 0 {
		interval = time.Millisecond
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &timer{interval: interval, next: m.now.Add(interval), fn: fn}
	m.timers = append(m.timers, t)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t.stopped = true
	}
}

// Advance moves the clock forward by d, firing every due frame in time order.
// Callbacks may register or stop timers.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	end := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		var due *timer
		for _, t := range m.timers {
			if t.stopped || t.next.After(end) {
				continue
			}
			if due == nil || t.next.Before(due.next) {
				due = t
			}
		}
		if due == nil {
			m.now = end
			m.pruneLocked()
			m.mu.Unlock()
			return
		}
		m.now = due.next
		due.next = due.next.Add(due.interval)
		m.fired++
		fn, now := due.fn, m.now
		m.mu.Unlock()

		fn(now)
	}
}

// Step advances by exactly one interval of the earliest active timer.
// It returns false if no timer is active.
func (m *ManualScheduler) Step() bool {
	m.mu.Lock()
	var due *timer
	for _, t := range m.timers {
		if !t.stopped && (due == nil || t.next.Before(due.next)) {
			due = t
		}
	}
	if due == nil {
		m.mu.Unlock()
		return false
	}
	d := due.next.Sub(m.now)
	m.mu.Unlock()

	m.Advance(d)
	return true
}

// Active returns the number of timers that have not been stopped.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Fired returns the total number of frames delivered.
func (m *ManualScheduler) Fired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fired
}

func (m *ManualScheduler) pruneLocked() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.timers = live
}

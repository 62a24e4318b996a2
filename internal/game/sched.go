package game

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

// TimerHandle identifies one scheduled callback.
type TimerHandle int64

// Scheduler owns every timer belonging to one table: idle timeouts,
// auto-start delays, reveal pacing, respawn loans. Table teardown cancels
// all of them atomically via StopAll. Built on quartz.Clock so tests can
// drive time with a mock.
type Scheduler struct {
	clock quartz.Clock

	mu      sync.Mutex
	next    TimerHandle
	timers  map[TimerHandle]*quartz.Timer
	stopped bool
}

// NewScheduler creates a scheduler on the given clock.
func NewScheduler(clock quartz.Clock) *Scheduler {
	return &Scheduler{
		clock:  clock,
		timers: make(map[TimerHandle]*quartz.Timer),
	}
}

// Schedule runs fn after delay and returns a handle that can cancel it.
// Delivery is at-most-once; a handle for a fired or cancelled timer is
// inert.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) TimerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return 0
	}
	s.next++
	h := s.next
	s.timers[h] = s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, h)
		stopped := s.stopped
		s.mu.Unlock()
		if !stopped {
			fn()
		}
	})
	return h
}

// Cancel stops the timer for h if it has not fired yet.
func (s *Scheduler) Cancel(h TimerHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[h]; ok {
		t.Stop()
		delete(s.timers, h)
	}
}

// StopAll cancels every pending timer and refuses new ones. Called on
// table teardown.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for h, t := range s.timers {
		t.Stop()
		delete(s.timers, h)
	}
}

// Pending returns the number of outstanding timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

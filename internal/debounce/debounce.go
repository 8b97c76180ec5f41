// Package debounce coalesces bursts of triggers into a single deferred call.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used by the calculator's auto-recalculation.
const DefaultDelay = 300 * time.Millisecond

// Scheduler holds at most one pending task. Scheduling a new task cancels
// the pending one; a task that has already started is not interrupted.
type Scheduler struct {
	delay time.Duration

	mu      sync.Mutex
	pending *time.Timer
	gen     uint64
}

// New returns a scheduler with the given quiet period; delay <= 0 uses DefaultDelay.
func New(delay time.Duration) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Scheduler{delay: delay}
}

// Delay returns the quiet period.
func (s *Scheduler) Delay() time.Duration {
	return s.delay
}

// Schedule cancels any pending task and runs fn once the quiet period elapses
// without another call to Schedule or Cancel.
func (s *Scheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	gen := s.gen
	s.pending = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if gen != s.gen {
			// Superseded after the timer fired but before we got the lock.
			s.mu.Unlock()
			return
		}
		s.pending = nil
		s.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending task, if any. It reports whether one was pending.
func (s *Scheduler) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.pending != nil
	s.stopLocked()
	s.gen++
	return pending
}

// Pending reports whether a task is waiting to run.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *Scheduler) stopLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

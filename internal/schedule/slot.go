package schedule

import (
	"sync"
	"time"
)

// Slot holds at most one pending task. Scheduling a new task cancels the
// previous one, and a task that fires after being replaced does nothing.
type Slot struct {
	name  string
	sched Scheduler

	mu      sync.Mutex
	gen     uint64
	pending bool
	timer   Timer
}

// NewSlot creates a slot drawing timers from s. A nil s runs tasks
// immediately.
func NewSlot(s Scheduler, name string) *Slot {
	if s == nil {
		s = Immediate{}
	}
	return &Slot{name: name, sched: s}
}

// Name returns the slot's purpose, such as "render".
func (s *Slot) Name() string {
	return s.name
}

// Schedule replaces any pending task with fn, due after d.
func (s *Slot) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	s.stopLocked()
	s.gen++
	gen := s.gen
	s.pending = true
	s.mu.Unlock()

	t := s.sched.AfterFunc(d, func() {
		s.mu.Lock()
		if s.gen != gen || !s.pending {
			s.mu.Unlock()
			return
		}
		s.pending = false
		s.timer = nil
		s.mu.Unlock()
		fn()
	})

	s.mu.Lock()
	if s.gen == gen && s.pending {
		s.timer = t
	}
	s.mu.Unlock()
}

// Cancel drops the pending task. It reports whether one was pending.
func (s *Slot) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.pending
	s.stopLocked()
	return was
}

// Pending reports whether a task is waiting to run.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Slot) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.pending {
		s.gen++
		s.pending = false
	}
}

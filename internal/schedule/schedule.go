// Package schedule runs deferred work for the grid and the data view.
//
// Every deferred job in the grid belongs to a named Slot ("render",
// "postrender", "editor", "refresh"). A slot holds at most one pending task:
// scheduling replaces whatever was pending. Slots draw their timers from a
// Scheduler, which is either Realtime (wall clock, callbacks posted back to
// the UI goroutine), Immediate (synchronous) or Manual (tests step the
// clock).
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Scheduler runs a callback after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Realtime schedules with the wall clock. Due callbacks are handed to post,
// which must run them on the goroutine that owns the grid.
type Realtime struct {
	post func(func())
}

// NewRealtime creates a wall-clock scheduler. A nil post runs callbacks on
// the timer goroutine.
func NewRealtime(post func(func())) *Realtime {
	if post == nil {
		post = func(fn func()) { fn() }
	}
	return &Realtime{post: post}
}

// AfterFunc implements Scheduler.
func (r *Realtime) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { r.post(fn) })
}

// Immediate runs callbacks synchronously, ignoring the delay.
type Immediate struct{}

type doneTimer struct{}

func (doneTimer) Stop() bool { return false }

// AfterFunc implements Scheduler.
func (Immediate) AfterFunc(_ time.Duration, fn func()) Timer {
	fn()
	return doneTimer{}
}

// Manual is a deterministic clock. Nothing runs until Advance or Flush.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	m   *Manual
	due time.Duration
	seq uint64
	fn  func()
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	for i, p := range t.m.pending {
		if p == t {
			t.m.pending = append(t.m.pending[:i], t.m.pending[i+1:]...)
			return true
		}
	}
	return false
}

// NewManual creates a manual clock at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, due: m.now + max(d, 0), seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

// Now returns the elapsed manual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of scheduled callbacks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Advance moves the clock forward by d, running every callback that falls
// due in order. Callbacks scheduled while advancing run too if they fall
// within the window. It returns the number of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	ran := 0
	for {
		t := m.next(target)
		if t == nil {
			break
		}
		t.fn()
		ran++
	}

	m.mu.Lock()
	m.now = max(m.now, target)
	m.mu.Unlock()
	return ran
}

// Flush runs callbacks until none are pending, advancing the clock to each
// due time. It returns the number of callbacks run.
func (m *Manual) Flush() int {
	ran := 0
	for {
		t := m.next(-1)
		if t == nil {
			return ran
		}
		t.fn()
		ran++
	}
}

// next removes and returns the earliest timer due at or before limit, or
// any timer when limit is negative.
func (m *Manual) next(limit time.Duration) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil
	}
	sort.SliceStable(m.pending, func(i, j int) bool {
		a, b := m.pending[i], m.pending[j]
		if a.due != b.due {
			return a.due < b.due
		}
		return a.seq < b.seq
	})
	t := m.pending[0]
	if limit >= 0 && t.due > limit {
		return nil
	}
	m.pending = m.pending[1:]
	m.now = max(m.now, t.due)
	return t
}

package app

import (
	"math"
	"sync/atomic"
	"time"
)

// Metrics tracks how long the application spends painting frames, handling
// input and running posted callbacks, and how much grid work that was.
type Metrics struct {
	frames    durationStat
	input     durationStat
	callbacks durationStat

	rowsPainted atomic.Uint64
	edits       atomic.Uint64

	start atomic.Int64
}

// durationStat accumulates timings lock-free.
type durationStat struct {
	count atomic.Uint64
	total atomic.Int64
	min   atomic.Int64
	max   atomic.Int64
	last  atomic.Int64
}

func (s *durationStat) reset() {
	s.count.Store(0)
	s.total.Store(0)
	s.min.Store(math.MaxInt64)
	s.max.Store(0)
	s.last.Store(0)
}

func (s *durationStat) record(d time.Duration) {
	ns := d.Nanoseconds()
	s.count.Add(1)
	s.total.Add(ns)
	s.last.Store(ns)
	for old := s.min.Load(); ns < old && !s.min.CompareAndSwap(old, ns); old = s.min.Load() {
	}
	for old := s.max.Load(); ns > old && !s.max.CompareAndSwap(old, ns); old = s.max.Load() {
	}
}

func (s *durationStat) snapshot() Stat {
	st := Stat{
		Count: s.count.Load(),
		Max:   time.Duration(s.max.Load()),
		Last:  time.Duration(s.last.Load()),
	}
	if st.Count == 0 {
		return st
	}
	st.Min = time.Duration(s.min.Load())
	st.Avg = time.Duration(s.total.Load() / int64(st.Count))
	return st
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.Reset()
	return m
}

// RecordFrame records a painted frame and the number of grid rows in it.
func (m *Metrics) RecordFrame(d time.Duration, rows int) {
	m.frames.record(d)
	m.rowsPainted.Add(uint64(max(rows, 0)))
}

// RecordInput records the time spent handling a key or mouse event.
func (m *Metrics) RecordInput(d time.Duration) { m.input.record(d) }

// RecordEvent records the time spent running a posted callback.
func (m *Metrics) RecordEvent(d time.Duration) { m.callbacks.record(d) }

// RecordEdit counts a committed cell edit.
func (m *Metrics) RecordEdit() { m.edits.Add(1) }

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.frames.reset()
	m.input.reset()
	m.callbacks.reset()
	m.rowsPainted.Store(0)
	m.edits.Store(0)
	m.start.Store(time.Now().UnixNano())
}

// Stat summarizes one kind of timed work. Min and Avg are zero until
// something was recorded.
type Stat struct {
	Count uint64
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime    time.Duration
	Frames    Stat
	Input     Stat
	Callbacks Stat

	RowsPainted uint64
	Edits       uint64
}

// RowsPerFrame returns the average number of grid rows painted per frame.
func (s MetricsSnapshot) RowsPerFrame() float64 {
	if s.Frames.Count == 0 {
		return 0
	}
	return float64(s.RowsPainted) / float64(s.Frames.Count)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Uptime:      time.Since(time.Unix(0, m.start.Load())),
		Frames:      m.frames.snapshot(),
		Input:       m.input.snapshot(),
		Callbacks:   m.callbacks.snapshot(),
		RowsPainted: m.rowsPainted.Load(),
		Edits:       m.edits.Load(),
	}
}

// Timer measures one piece of work.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Stop returns the elapsed time and restarts the timer.
func (t *Timer) Stop() time.Duration {
	elapsed := t.Elapsed()
	t.start = time.Now()
	return elapsed
}

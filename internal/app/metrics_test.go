package app

import (
	"testing"
	"time"
)

func TestMetricsEmpty(t *testing.T) {
	s := NewMetrics().Snapshot()
	if s.Frames != (Stat{}) || s.Input != (Stat{}) {
		t.Errorf("empty snapshot = %+v", s)
	}
	if s.RowsPerFrame() != 0 {
		t.Errorf("RowsPerFrame = %v", s.RowsPerFrame())
	}
}

func TestMetricsFrames(t *testing.T) {
	m := NewMetrics()
	m.RecordFrame(10*time.Millisecond, 20)
	m.RecordFrame(20*time.Millisecond, 20)
	m.RecordFrame(6*time.Millisecond, 5)

	s := m.Snapshot()
	want := Stat{
		Count: 3,
		Avg:   12 * time.Millisecond,
		Min:   6 * time.Millisecond,
		Max:   20 * time.Millisecond,
		Last:  6 * time.Millisecond,
	}
	if s.Frames != want {
		t.Errorf("frames = %+v, want %+v", s.Frames, want)
	}
	if s.RowsPainted != 45 || s.RowsPerFrame() != 15 {
		t.Errorf("rows = %d, per frame %v", s.RowsPainted, s.RowsPerFrame())
	}
}

func TestMetricsInputAndCallbacks(t *testing.T) {
	m := NewMetrics()
	m.RecordInput(1 * time.Millisecond)
	m.RecordInput(2 * time.Millisecond)
	m.RecordEvent(4 * time.Millisecond)
	m.RecordEdit()

	s := m.Snapshot()
	if s.Input.Count != 2 || s.Input.Avg != 1500*time.Microsecond {
		t.Errorf("input = %+v", s.Input)
	}
	if s.Callbacks.Count != 1 || s.Callbacks.Max != 4*time.Millisecond {
		t.Errorf("callbacks = %+v", s.Callbacks)
	}
	if s.Edits != 1 {
		t.Errorf("edits = %d", s.Edits)
	}
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()
	m.RecordFrame(10*time.Millisecond, 3)
	m.RecordInput(time.Millisecond)
	m.RecordEdit()
	m.Reset()

	s := m.Snapshot()
	if s.Frames.Count != 0 || s.Input.Count != 0 || s.RowsPainted != 0 || s.Edits != 0 {
		t.Errorf("after reset = %+v", s)
	}
	m.RecordFrame(time.Millisecond, 1)
	if got := m.Snapshot().Frames.Min; got != time.Millisecond {
		t.Errorf("min after reset = %v", got)
	}
}

func TestTimerStop(t *testing.T) {
	timer := StartTimer()
	time.Sleep(5 * time.Millisecond)

	elapsed := timer.Stop()
	if elapsed < 5*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 5ms", elapsed)
	}
	if timer.Elapsed() >= elapsed {
		t.Error("timer did not restart after Stop")
	}
}

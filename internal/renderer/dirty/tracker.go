package dirty

import (
	"slices"
	"sync"
)

// DefaultCoalesceThreshold is the dirty share of the screen above which
// the tracker switches to a full redraw.
const DefaultCoalesceThreshold = 0.6

// Tracker collects dirty lines between frames.
type Tracker struct {
	mu sync.Mutex

	// regions are sorted and never touch each other.
	regions    []Region
	fullRedraw bool
	height     int
	threshold  float64

	marks  int
	frames int
}

// NewTracker creates a tracker for a screen height lines tall. The first
// frame is a full redraw.
func NewTracker(height int) *Tracker {
	return &Tracker{
		height:     height,
		threshold:  DefaultCoalesceThreshold,
		fullRedraw: true,
	}
}

// SetScreenSize changes the height and forces a full redraw.
func (t *Tracker) SetScreenSize(height int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.height = height
	t.regions = nil
	t.fullRedraw = true
}

// SetCoalesceThreshold sets the dirty share, between 0 and 1, that turns
// the frame into a full redraw.
func (t *Tracker) SetCoalesceThreshold(threshold float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.threshold = min(max(threshold, 0), 1)
}

// MarkFullRedraw marks the whole screen dirty.
func (t *Tracker) MarkFullRedraw() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.fullRedraw = true
	t.regions = nil
}

// MarkLine marks one line dirty.
func (t *Tracker) MarkLine(line int) {
	t.MarkRegion(Line(line))
}

// MarkLines marks start through end dirty.
func (t *Tracker) MarkLines(start, end int) {
	t.MarkRegion(Lines(start, end))
}

// MarkRegion marks a region dirty, merging it with the regions it touches.
// Lines outside the screen are ignored.
func (t *Tracker) MarkRegion(r Region) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.marks++
	if t.fullRedraw {
		return
	}
	r, ok := r.Clip(t.height)
	if !ok {
		return
	}

	merged := make([]Region, 0, len(t.regions)+1)
	for _, existing := range t.regions {
		if existing.Touches(r) {
			r = r.Union(existing)
			continue
		}
		merged = append(merged, existing)
	}
	i, _ := slices.BinarySearchFunc(merged, r, func(a, b Region) int { return a.StartLine - b.StartLine })
	t.regions = slices.Insert(merged, i, r)

	if t.height > 0 && float64(t.dirtyLines())/float64(t.height) > t.threshold {
		t.fullRedraw = true
		t.regions = nil
	}
}

func (t *Tracker) dirtyLines() int {
	n := 0
	for _, r := range t.regions {
		n += r.Height()
	}
	return n
}

// IsDirty returns true if anything needs repainting.
func (t *Tracker) IsDirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fullRedraw || len(t.regions) > 0
}

// NeedsFullRedraw returns true if the whole screen is dirty.
func (t *Tracker) NeedsFullRedraw() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fullRedraw
}

// IsLineDirty returns true if line needs repainting.
func (t *Tracker) IsLineDirty(line int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fullRedraw {
		return line >= 0 && line < t.height
	}
	for _, r := range t.regions {
		if r.Contains(line) {
			return true
		}
	}
	return false
}

// Regions returns a copy of the dirty regions in screen order.
func (t *Tracker) Regions() []Region {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fullRedraw {
		if t.height == 0 {
			return nil
		}
		return []Region{Lines(0, t.height-1)}
	}
	return slices.Clone(t.regions)
}

// DirtyLines returns every dirty line in ascending order.
func (t *Tracker) DirtyLines() []int {
	var lines []int
	for _, r := range t.Regions() {
		for l := r.StartLine; l <= r.EndLine; l++ {
			lines = append(lines, l)
		}
	}
	return lines
}

// Clear resets the tracker after a frame is painted.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.regions = nil
	t.fullRedraw = false
	t.frames++
}

// Stats describes the tracker state.
type Stats struct {
	Regions    int
	DirtyLines int
	FullRedraw bool
	Marks      int
	Frames     int
}

// Stats returns the current counters.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Stats{
		Regions:    len(t.regions),
		DirtyLines: t.dirtyLines(),
		FullRedraw: t.fullRedraw,
		Marks:      t.marks,
		Frames:     t.frames,
	}
	if t.fullRedraw {
		s.DirtyLines = t.height
	}
	return s
}

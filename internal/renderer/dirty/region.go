// Package dirty tracks which screen lines need repainting and coalesces
// them into spans.
package dirty

// Region is an inclusive span of screen lines.
type Region struct {
	StartLine int
	EndLine   int
}

// Lines creates a region covering start through end in either order.
func Lines(start, end int) Region {
	if end < start {
		start, end = end, start
	}
	return Region{StartLine: start, EndLine: end}
}

// Line creates a region for one line.
func Line(line int) Region {
	return Region{StartLine: line, EndLine: line}
}

// Height returns the number of lines in the region.
func (r Region) Height() int {
	return r.EndLine - r.StartLine + 1
}

// Contains returns true if line falls inside the region.
func (r Region) Contains(line int) bool {
	return line >= r.StartLine && line <= r.EndLine
}

// Touches returns true if the regions overlap or are adjacent.
func (r Region) Touches(other Region) bool {
	return r.StartLine <= other.EndLine+1 && other.StartLine <= r.EndLine+1
}

// Union returns the smallest region covering both.
func (r Region) Union(other Region) Region {
	return Region{
		StartLine: min(r.StartLine, other.StartLine),
		EndLine:   max(r.EndLine, other.EndLine),
	}
}

// Clip limits the region to lines [0, height). The result is false if
// nothing remains.
func (r Region) Clip(height int) (Region, bool) {
	r.StartLine = max(r.StartLine, 0)
	r.EndLine = min(r.EndLine, height-1)
	return r, r.StartLine <= r.EndLine
}

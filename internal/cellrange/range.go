// Package cellrange provides the rectangular cell range used by selection
// models.
package cellrange

import (
	"fmt"
	"slices"
)

// Range is a normalized rectangle of cells. FromRow <= ToRow and
// FromCell <= ToCell always hold.
type Range struct {
	FromRow, FromCell int
	ToRow, ToCell     int
}

// New returns a normalized range spanning the two corners.
func New(fromRow, fromCell, toRow, toCell int) Range {
	return Range{
		FromRow:  min(fromRow, toRow),
		FromCell: min(fromCell, toCell),
		ToRow:    max(fromRow, toRow),
		ToCell:   max(fromCell, toCell),
	}
}

// Cell returns a range covering a single cell.
func Cell(row, cell int) Range {
	return Range{FromRow: row, FromCell: cell, ToRow: row, ToCell: cell}
}

// IsSingleRow reports whether the range covers exactly one row.
func (r Range) IsSingleRow() bool {
	return r.FromRow == r.ToRow
}

// IsSingleCell reports whether the range covers exactly one cell.
func (r Range) IsSingleCell() bool {
	return r.FromRow == r.ToRow && r.FromCell == r.ToCell
}

// Contains reports whether the cell lies within the range.
func (r Range) Contains(row, cell int) bool {
	return row >= r.FromRow && row <= r.ToRow &&
		cell >= r.FromCell && cell <= r.ToCell
}

// String formats the range as "(r:c)" or "(r:c - r:c)".
func (r Range) String() string {
	if r.IsSingleCell() {
		return fmt.Sprintf("(%d:%d)", r.FromRow, r.FromCell)
	}
	return fmt.Sprintf("(%d:%d - %d:%d)", r.FromRow, r.FromCell, r.ToRow, r.ToCell)
}

// FromRows returns one full-width range per row.
func FromRows(rows []int, lastCell int) []Range {
	out := make([]Range, 0, len(rows))
	for _, row := range rows {
		out = append(out, New(row, 0, row, lastCell))
	}
	return out
}

// Rows returns the sorted, de-duplicated rows covered by ranges.
func Rows(ranges []Range) []int {
	var rows []int
	for _, r := range ranges {
		for row := r.FromRow; row <= r.ToRow; row++ {
			rows = append(rows, row)
		}
	}
	slices.Sort(rows)
	return slices.Compact(rows)
}

package core

import (
	"github.com/dshills/gridstorm/internal/dom"
	"github.com/dshills/gridstorm/internal/item"
)

// Formatter renders a cell value as display text. r is the display row,
// which is a *Group or *Totals for non-data rows.
type Formatter func(row, cell int, value any, col *Column, r Row) string

// TotalsFormatter renders one column of a group totals row.
type TotalsFormatter func(t *Totals, col *Column) string

// Validator checks a value before it is committed.
type Validator func(value any) ValidationResult

// ValueExtractor reads a column's value from an item.
type ValueExtractor func(it item.Item, col *Column) any

// PostRenderFunc decorates a cell node after the rows are rendered.
type PostRenderFunc func(node *dom.Node, row int, r Row, col *Column)

// ValidationResult is the outcome of validating an editor value.
type ValidationResult struct {
	Valid bool
	Msg   string
}

// Valid is the passing validation result.
var Valid = ValidationResult{Valid: true}

// Column describes one grid column. Flags are phrased negatively so the zero
// value is a focusable, selectable column.
type Column struct {
	ID       string
	Name     string
	Field    string
	Width    int
	MinWidth int
	MaxWidth int

	CSSClass       string
	HeaderCSSClass string
	ToolTip        string

	Formatter            Formatter
	Editor               EditorFactory
	Validator            Validator
	GroupTotalsFormatter TotalsFormatter
	AsyncPostRender      PostRenderFunc

	Unfocusable         bool
	Unselectable        bool
	Sortable            bool
	DefaultSortDesc     bool
	CannotTriggerInsert bool

	// FixedWidth keeps the column out of automatic width fitting.
	FixedWidth bool

	// RerenderOnResize invalidates rendered rows when the width changes.
	RerenderOnResize bool
}

// ValueOf reads the column's field from it.
func (c *Column) ValueOf(it item.Item) any {
	if it == nil {
		return nil
	}
	return it.Get(c.Field)
}

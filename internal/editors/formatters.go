package editors

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/item"
)

// Default formats nil as empty and anything else with fmt.
func Default(_, _ int, value any, _ *core.Column, _ core.Row) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

// Checkmark shows a check mark for true values and nothing otherwise.
func Checkmark(_, _ int, value any, _ *core.Column, _ core.Row) string {
	if truthy(value) {
		return "✓"
	}
	return ""
}

// Numbers formats numeric values for one locale.
type Numbers struct {
	p        *message.Printer
	decimals int
}

// NewNumbers creates a number formatter for tag showing the given number of
// decimals.
func NewNumbers(tag language.Tag, decimals int) *Numbers {
	return &Numbers{p: message.NewPrinter(tag), decimals: max(0, decimals)}
}

// Format renders v with grouping separators. Values that are not numbers
// are shown as they are.
func (n *Numbers) Format(v any) string {
	f, ok := item.ToFloat(v)
	if !ok {
		return Default(0, 0, v, nil, nil)
	}
	return n.p.Sprint(number.Decimal(f,
		number.MinFractionDigits(n.decimals),
		number.MaxFractionDigits(n.decimals)))
}

// Cell is a core.Formatter for numeric columns.
func (n *Numbers) Cell(_, _ int, value any, _ *core.Column, _ core.Row) string {
	return n.Format(value)
}

// Totals is a core.TotalsFormatter listing every aggregate stored for the
// column's field, such as "sum: 1,204  avg: 40.13".
func (n *Numbers) Totals(t *core.Totals, col *core.Column) string {
	var parts []string
	for _, kind := range t.Kinds() {
		v, ok := t.Get(kind, col.Field)
		if !ok {
			continue
		}
		parts = append(parts, kind+": "+n.Format(v))
	}
	return strings.Join(parts, "  ")
}

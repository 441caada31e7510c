package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/dataview"
	"github.com/dshills/gridstorm/internal/item"
)

// ErrorText is shown by formatters whose script fails.
const ErrorText = "#ERR"

// CompileFilter compiles a data view filter. The expression is true for
// items to keep and sees the filter arguments as args. A failing run
// drops the item.
func (e *Engine) CompileFilter(src string) (dataview.FilterFunc, error) {
	p, err := e.Compile(src)
	if err != nil {
		return nil, err
	}
	return func(it item.Item, args any) bool {
		lv, err := p.run(it, map[string]any{"args": args})
		if err != nil {
			e.log.Debug("filter: %v", err)
			return false
		}
		return lua.LVAsBool(lv)
	}, nil
}

// CompileFormatter compiles a cell formatter. The expression sees value,
// row, cell and field besides the item's fields, and its result is shown
// as text. nil shows as an empty cell.
func (e *Engine) CompileFormatter(src string) (core.Formatter, error) {
	p, err := e.Compile(src)
	if err != nil {
		return nil, err
	}
	return func(row, cell int, value any, col *core.Column, r core.Row) string {
		vars := map[string]any{"value": value, "row": row, "cell": cell}
		if col != nil {
			vars["field"] = col.Field
		}
		lv, err := p.run(core.ItemOf(r), vars)
		if err != nil {
			e.log.Debug("formatter: %v", err)
			return ErrorText
		}
		if lv == lua.LNil {
			return ""
		}
		return lv.String()
	}, nil
}

package editors

import (
	"fmt"
	"slices"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/dom"
	"github.com/dshills/gridstorm/internal/item"
)

// line is a single-line input with a cursor, shared by the text editors.
type line struct {
	args   core.EditorArgs
	node   *dom.Node
	text   []rune
	cursor int
	loaded string
}

func newLine(args core.EditorArgs, class string) line {
	node := dom.NewNode("input", "editor", class)
	node.Width = args.Container.Width
	node.Height = args.Container.Height
	args.Container.AppendChild(node)
	return line{args: args, node: node}
}

func (l *line) set(s string) {
	l.text = []rune(s)
	l.cursor = len(l.text)
	l.node.Text = s
}

// Value returns the text being edited.
func (l *line) Value() string {
	return string(l.text)
}

// Cursor returns the cursor position in runes.
func (l *line) Cursor() int {
	return l.cursor
}

func (l *line) Destroy() {
	l.node.Remove()
}

func (l *line) Focus() {
	l.node.AddClass("focused")
}

func (l *line) load(it item.Item) {
	l.loaded = ""
	if v := l.args.Column.ValueOf(it); v != nil {
		l.loaded = fmt.Sprint(v)
	}
	l.set(l.loaded)
}

func (l *line) changed() bool {
	return string(l.text) != l.loaded
}

// edit applies a keystroke. Runes rejected by accept are swallowed so they
// do not reach the grid.
func (l *line) edit(k core.KeyEvent, accept func(rune) bool) bool {
	switch k.Key {
	case core.KeyRune:
		if accept == nil || accept(k.Rune) {
			l.text = slices.Insert(l.text, l.cursor, k.Rune)
			l.cursor++
		}
	case core.KeyBackspace:
		if l.cursor > 0 {
			l.text = slices.Delete(l.text, l.cursor-1, l.cursor)
			l.cursor--
		}
	case core.KeyDelete:
		if l.cursor < len(l.text) {
			l.text = slices.Delete(l.text, l.cursor, l.cursor+1)
		}
	case core.KeyLeft:
		l.cursor = max(0, l.cursor-1)
	case core.KeyRight:
		l.cursor = min(len(l.text), l.cursor+1)
	case core.KeyHome:
		l.cursor = 0
	case core.KeyEnd:
		l.cursor = len(l.text)
	default:
		return false
	}
	l.node.Text = string(l.text)
	return true
}

func apply(it item.Item, field string, v any) {
	if s, ok := it.(item.Setter); ok {
		_ = s.Set(field, v)
	}
}

func validate(col *core.Column, v any) core.ValidationResult {
	if col.Validator != nil {
		return col.Validator(v)
	}
	return core.Valid
}

package editors

import (
	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/dom"
	"github.com/dshills/gridstorm/internal/item"
)

// CheckboxEditor toggles a boolean with the space bar.
type CheckboxEditor struct {
	args   core.EditorArgs
	node   *dom.Node
	value  bool
	loaded bool
}

// Checkbox is the EditorFactory for CheckboxEditor.
func Checkbox(args core.EditorArgs) core.Editor {
	node := dom.NewNode("input", "editor", "editor-checkbox")
	node.Width = args.Container.Width
	node.Height = args.Container.Height
	args.Container.AppendChild(node)
	e := &CheckboxEditor{args: args, node: node}
	e.show()
	return e
}

func (e *CheckboxEditor) show() {
	if e.value {
		e.node.Text = "[x]"
	} else {
		e.node.Text = "[ ]"
	}
}

func (e *CheckboxEditor) Destroy() { e.node.Remove() }
func (e *CheckboxEditor) Focus()   { e.node.AddClass("focused") }

func (e *CheckboxEditor) LoadValue(it item.Item) {
	e.loaded = truthy(e.args.Column.ValueOf(it))
	e.value = e.loaded
	e.show()
}

func (e *CheckboxEditor) SerializeValue() any            { return e.value }
func (e *CheckboxEditor) ApplyValue(it item.Item, v any) { apply(it, e.args.Column.Field, v) }
func (e *CheckboxEditor) IsValueChanged() bool           { return e.value != e.loaded }

func (e *CheckboxEditor) Validate() core.ValidationResult {
	return validate(e.args.Column, e.value)
}

// Toggle flips the value.
func (e *CheckboxEditor) Toggle() {
	e.value = !e.value
	e.show()
}

func (e *CheckboxEditor) HandleKey(k core.KeyEvent) bool {
	if k.Key == core.KeyRune && k.Rune == ' ' {
		e.Toggle()
		return true
	}
	return false
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "false" && v != "0"
	}
	f, ok := item.ToFloat(v)
	return !ok || f != 0
}

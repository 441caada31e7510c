package editors

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/item"
)

// TextEditor edits a value as a string.
type TextEditor struct {
	line
}

// Text is the EditorFactory for TextEditor.
func Text(args core.EditorArgs) core.Editor {
	return &TextEditor{line: newLine(args, "editor-text")}
}

func (e *TextEditor) LoadValue(it item.Item)          { e.load(it) }
func (e *TextEditor) SerializeValue() any             { return e.Value() }
func (e *TextEditor) ApplyValue(it item.Item, v any)  { apply(it, e.args.Column.Field, v) }
func (e *TextEditor) IsValueChanged() bool            { return e.changed() }
func (e *TextEditor) HandleKey(k core.KeyEvent) bool  { return e.edit(k, nil) }
func (e *TextEditor) Validate() core.ValidationResult { return validate(e.args.Column, e.Value()) }

// IntegerEditor edits whole numbers. Only digits and a sign can be typed.
type IntegerEditor struct {
	line
}

// Integer is the EditorFactory for IntegerEditor.
func Integer(args core.EditorArgs) core.Editor {
	return &IntegerEditor{line: newLine(args, "editor-integer")}
}

func (e *IntegerEditor) LoadValue(it item.Item)         { e.load(it) }
func (e *IntegerEditor) ApplyValue(it item.Item, v any) { apply(it, e.args.Column.Field, v) }
func (e *IntegerEditor) IsValueChanged() bool           { return e.changed() }

// SerializeValue returns the parsed number, or 0 when the text is not one.
func (e *IntegerEditor) SerializeValue() any {
	n, err := strconv.Atoi(strings.TrimSpace(e.Value()))
	if err != nil {
		return 0
	}
	return n
}

func (e *IntegerEditor) HandleKey(k core.KeyEvent) bool {
	return e.edit(k, func(r rune) bool {
		return unicode.IsDigit(r) || r == '-' || r == '+'
	})
}

// Validate rejects text that is not an integer, then applies the column
// validator.
func (e *IntegerEditor) Validate() core.ValidationResult {
	s := strings.TrimSpace(e.Value())
	if s == "" {
		return validate(e.args.Column, nil)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return core.ValidationResult{Msg: "please enter a valid integer"}
	}
	return validate(e.args.Column, n)
}

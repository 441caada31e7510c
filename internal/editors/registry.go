package editors

import (
	"fmt"
	"maps"
	"slices"

	"golang.org/x/text/language"

	"github.com/dshills/gridstorm/internal/core"
)

// Registry maps names to editors and formatters.
type Registry struct {
	editors    map[string]core.EditorFactory
	formatters map[string]core.Formatter
	totals     map[string]core.TotalsFormatter
}

// NewRegistry creates a registry with the built-in editors ("text",
// "integer", "checkbox") and formatters ("default", "checkmark", "number",
// "decimal"). Numbers are formatted for tag.
func NewRegistry(tag language.Tag) *Registry {
	whole := NewNumbers(tag, 0)
	decimal := NewNumbers(tag, 2)
	return &Registry{
		editors: map[string]core.EditorFactory{
			"text":     Text,
			"integer":  Integer,
			"checkbox": Checkbox,
		},
		formatters: map[string]core.Formatter{
			"default":   Default,
			"checkmark": Checkmark,
			"number":    whole.Cell,
			"decimal":   decimal.Cell,
		},
		totals: map[string]core.TotalsFormatter{
			"number":  whole.Totals,
			"decimal": decimal.Totals,
		},
	}
}

// RegisterEditor adds or replaces an editor.
func (r *Registry) RegisterEditor(name string, f core.EditorFactory) {
	r.editors[name] = f
}

// RegisterFormatter adds or replaces a formatter.
func (r *Registry) RegisterFormatter(name string, f core.Formatter) {
	r.formatters[name] = f
}

// Editor looks up an editor by name.
func (r *Registry) Editor(name string) (core.EditorFactory, error) {
	if f, ok := r.editors[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("editor %q: %w", name, ErrUnknown)
}

// Formatter looks up a formatter by name.
func (r *Registry) Formatter(name string) (core.Formatter, error) {
	if f, ok := r.formatters[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("formatter %q: %w", name, ErrUnknown)
}

// TotalsFormatter looks up a group totals formatter by name. Only numeric
// formatters have one.
func (r *Registry) TotalsFormatter(name string) (core.TotalsFormatter, bool) {
	f, ok := r.totals[name]
	return f, ok
}

// Editors returns the registered editor names, sorted.
func (r *Registry) Editors() []string {
	return slices.Sorted(maps.Keys(r.editors))
}

// Formatters returns the registered formatter names, sorted.
func (r *Registry) Formatters() []string {
	return slices.Sorted(maps.Keys(r.formatters))
}

// Configure sets a column's editor, formatter and totals formatter by name.
// Empty names leave the column unchanged.
func (r *Registry) Configure(col *core.Column, editor, formatter string) error {
	if editor != "" {
		f, err := r.Editor(editor)
		if err != nil {
			return err
		}
		col.Editor = f
	}
	if formatter != "" {
		f, err := r.Formatter(formatter)
		if err != nil {
			return err
		}
		col.Formatter = f
		if t, ok := r.TotalsFormatter(formatter); ok {
			col.GroupTotalsFormatter = t
		}
	}
	return nil
}

// Package source loads grid items from JSON documents and SQLite queries.
package source

import (
	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/item"
)

// Table is a loaded item set with the fields found in it, in first-seen
// order.
type Table struct {
	Fields []string
	Items  []item.Item
}

// Len returns the number of items.
func (t *Table) Len() int {
	return len(t.Items)
}

// HasField reports whether any item carried field.
func (t *Table) HasField(field string) bool {
	for _, f := range t.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Columns builds one sortable column per field. width <= 0 leaves the
// grid's default width.
func (t *Table) Columns(width int) []core.Column {
	cols := make([]core.Column, 0, len(t.Fields))
	for _, f := range t.Fields {
		cols = append(cols, core.Column{
			ID:       f,
			Name:     f,
			Field:    f,
			Width:    width,
			Sortable: true,
		})
	}
	return cols
}

type fieldSet struct {
	seen   map[string]bool
	fields []string
}

func (s *fieldSet) add(f string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if !s.seen[f] {
		s.seen[f] = true
		s.fields = append(s.fields, f)
	}
}

package core

import "strings"

// ColumnMetadata overrides a single cell of a row.
type ColumnMetadata struct {
	// Colspan spans this many columns; 0 means 1.
	Colspan int

	// ColspanRest spans every column from this one to the last.
	ColspanRest bool

	Focusable  *bool
	Selectable *bool
	Formatter  Formatter
	Editor     EditorFactory

	// NoEditor disables editing even when the column has an editor.
	NoEditor bool
}

// RowMetadata describes per-row rendering and behavior.
type RowMetadata struct {
	// CSSClasses are added to the row node, separated by spaces.
	CSSClasses string

	Focusable  *bool
	Selectable *bool
	Formatter  Formatter
	Editor     EditorFactory
	NoEditor   bool

	// ColumnsByID overrides cells by column id; ColumnsByIndex by position.
	// An id override wins over an index override.
	ColumnsByID    map[string]ColumnMetadata
	ColumnsByIndex map[int]ColumnMetadata
}

// Bool returns a pointer to v, for metadata overrides.
func Bool(v bool) *bool {
	return &v
}

// ClassList splits CSSClasses into individual classes.
func (m *RowMetadata) ClassList() []string {
	if m == nil {
		return nil
	}
	return strings.Fields(m.CSSClasses)
}

// Cell is the effective configuration of one cell.
type Cell struct {
	Colspan    int
	Focusable  bool
	Selectable bool

	// Formatter and Editor are nil when neither metadata nor the column
	// provides one; the grid then falls back to its factories.
	Formatter Formatter
	Editor    EditorFactory
}

// ColumnOverride returns the cell override for col at index cell. An
// override keyed by column id wins over one keyed by index.
func ColumnOverride(meta *RowMetadata, col *Column, cell int) (ColumnMetadata, bool) {
	if meta == nil {
		return ColumnMetadata{}, false
	}
	if col != nil {
		if cm, ok := meta.ColumnsByID[col.ID]; ok {
			return cm, true
		}
	}
	cm, ok := meta.ColumnsByIndex[cell]
	return cm, ok
}

// Resolve computes the effective cell configuration. One column override is
// used, as picked by ColumnOverride, so an override keyed by column id hides
// every field of an index-keyed one. Attributes the override leaves unset
// fall back to the row metadata, then the column definition.
func Resolve(meta *RowMetadata, col *Column, cell, columnCount int) Cell {
	c := Cell{
		Colspan:    1,
		Focusable:  !col.Unfocusable,
		Selectable: !col.Unselectable,
		Formatter:  col.Formatter,
		Editor:     col.Editor,
	}
	if meta == nil {
		return c
	}

	if meta.Focusable != nil {
		c.Focusable = *meta.Focusable
	}
	if meta.Selectable != nil {
		c.Selectable = *meta.Selectable
	}
	if meta.Formatter != nil {
		c.Formatter = meta.Formatter
	}
	switch {
	case meta.NoEditor:
		c.Editor = nil
	case meta.Editor != nil:
		c.Editor = meta.Editor
	}

	cm, ok := ColumnOverride(meta, col, cell)
	if !ok {
		return c
	}
	switch {
	case cm.ColspanRest:
		c.Colspan = max(1, columnCount-cell)
	case cm.Colspan > 1:
		c.Colspan = cm.Colspan
	}
	if cm.Focusable != nil {
		c.Focusable = *cm.Focusable
	}
	if cm.Selectable != nil {
		c.Selectable = *cm.Selectable
	}
	if cm.Formatter != nil {
		c.Formatter = cm.Formatter
	}
	switch {
	case cm.NoEditor:
		c.Editor = nil
	case cm.Editor != nil:
		c.Editor = cm.Editor
	}
	return c
}

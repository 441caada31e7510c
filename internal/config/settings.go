package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/grid"
	"github.com/dshills/gridstorm/internal/renderer"
	rcore "github.com/dshills/gridstorm/internal/renderer/core"
)

// Settings is the complete gridstorm configuration.
type Settings struct {
	Grid    GridSettings     `yaml:"grid"`
	View    ViewSettings     `yaml:"view"`
	Columns []ColumnSettings `yaml:"columns"`
	Theme   ThemeSettings    `yaml:"theme"`
	Logging LoggingSettings  `yaml:"logging"`
}

// GridSettings mirror the grid options worth configuring.
type GridSettings struct {
	RowHeight            int           `yaml:"rowHeight"`
	DefaultColumnWidth   int           `yaml:"defaultColumnWidth"`
	Editable             bool          `yaml:"editable"`
	AutoEdit             bool          `yaml:"autoEdit"`
	EnableAddRow         bool          `yaml:"enableAddRow"`
	EnableCellNavigation bool          `yaml:"enableCellNavigation"`
	MultiSelect          bool          `yaml:"multiSelect"`
	ForceFitColumns      bool          `yaml:"forceFitColumns"`
	AsyncEditorLoading   bool          `yaml:"asyncEditorLoading"`
	EditorLoadDelay      time.Duration `yaml:"editorLoadDelay"`
	HistorySize          int           `yaml:"historySize"`
}

// ViewSettings configure the data view.
type ViewSettings struct {
	IDField   string   `yaml:"idField"`
	PageSize  int      `yaml:"pageSize"`
	GroupBy   string   `yaml:"groupBy"`
	Sum       []string `yaml:"sum"`
	SortField string   `yaml:"sortField"`
	SortDesc  bool     `yaml:"sortDesc"`

	// Filter is a Lua expression evaluated with the item's fields as
	// globals.
	Filter string `yaml:"filter"`
}

// ColumnSettings describe one column. Editor and Formatter name entries of
// the editors registry. Script is a Lua expression producing the cell text
// and takes precedence over Formatter.
type ColumnSettings struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Field     string `yaml:"field"`
	Width     int    `yaml:"width"`
	Editor    string `yaml:"editor"`
	Formatter string `yaml:"formatter"`
	Script    string `yaml:"script"`
	Totals    string `yaml:"totals"`
	Sortable  bool   `yaml:"sortable"`
	Align     string `yaml:"align"`
}

// ThemeSettings pick the renderer theme. Colours are hex strings; empty
// ones keep the default palette.
type ThemeSettings struct {
	Name       string `yaml:"name"`
	Foreground string `yaml:"foreground"`
	Background string `yaml:"background"`
	Accent     string `yaml:"accent"`
	Error      string `yaml:"error"`
}

// LoggingSettings configure the log file.
type LoggingSettings struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Grid: GridSettings{
			RowHeight:            1,
			DefaultColumnWidth:   12,
			Editable:             true,
			AutoEdit:             false,
			EnableCellNavigation: true,
			MultiSelect:          true,
			EditorLoadDelay:      100 * time.Millisecond,
			HistorySize:          500,
		},
		View: ViewSettings{
			IDField: "id",
		},
		Theme: ThemeSettings{
			Name: "default",
		},
		Logging: LoggingSettings{
			Level: "info",
		},
	}
}

// Apply copies the settings onto grid options.
func (g GridSettings) Apply(o *grid.Options) {
	o.RowHeight = g.RowHeight
	o.DefaultColumnWidth = g.DefaultColumnWidth
	o.Editable = g.Editable
	o.AutoEdit = g.AutoEdit
	o.EnableAddRow = g.EnableAddRow
	o.EnableCellNavigation = g.EnableCellNavigation
	o.MultiSelect = g.MultiSelect
	o.ForceFitColumns = g.ForceFitColumns
	o.AsyncEditorLoading = g.AsyncEditorLoading
	o.AsyncEditorLoadDelay = g.EditorLoadDelay
}

// Column builds the grid column without editor or formatter, which the
// caller resolves by name.
func (c ColumnSettings) Column() core.Column {
	col := core.Column{
		ID:       c.ID,
		Name:     c.Name,
		Field:    c.Field,
		Width:    c.Width,
		Sortable: c.Sortable,
	}
	if col.Field == "" {
		col.Field = col.ID
	}
	if col.Name == "" {
		col.Name = col.ID
	}
	if strings.EqualFold(c.Align, "right") {
		col.CSSClass = "align-right"
	}
	return col
}

// Theme builds the renderer theme.
func (t ThemeSettings) Theme() (renderer.Theme, error) {
	switch strings.ToLower(t.Name) {
	case "mono":
		return renderer.MonoTheme(), nil
	case "", "default":
	default:
		return renderer.Theme{}, &ValidationError{Path: "theme.name", Message: "unknown theme", Value: t.Name}
	}

	p := renderer.DefaultPalette()
	for _, c := range []struct {
		path string
		hex  string
		dst  *rcore.Color
	}{
		{"theme.foreground", t.Foreground, &p.Foreground},
		{"theme.background", t.Background, &p.Background},
		{"theme.accent", t.Accent, &p.Accent},
		{"theme.error", t.Error, &p.Error},
	} {
		if c.hex == "" {
			continue
		}
		color, err := rcore.ParseColor(c.hex)
		if err != nil {
			return renderer.Theme{}, &ValidationError{Path: c.path, Message: err.Error(), Value: c.hex}
		}
		*c.dst = color
	}
	return renderer.NewTheme(p), nil
}

// Validate checks ranges, names and colours. The result joins every
// problem found.
func (s Settings) Validate() error {
	var errs []error
	bad := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if s.Grid.RowHeight < 1 {
		bad("grid.rowHeight", "must be at least 1", s.Grid.RowHeight)
	}
	if s.Grid.DefaultColumnWidth < 1 {
		bad("grid.defaultColumnWidth", "must be at least 1", s.Grid.DefaultColumnWidth)
	}
	if s.Grid.EditorLoadDelay < 0 {
		bad("grid.editorLoadDelay", "must not be negative", s.Grid.EditorLoadDelay)
	}
	if s.Grid.HistorySize < 0 {
		bad("grid.historySize", "must not be negative", s.Grid.HistorySize)
	}
	if s.View.PageSize < 0 {
		bad("view.pageSize", "must not be negative", s.View.PageSize)
	}
	if len(s.View.Sum) > 0 && s.View.GroupBy == "" {
		bad("view.sum", "requires view.groupBy", s.View.Sum)
	}

	seen := make(map[string]bool)
	for i, c := range s.Columns {
		path := fmt.Sprintf("columns[%d]", i)
		switch {
		case c.ID == "":
			bad(path+".id", "is required", c.ID)
		case seen[c.ID]:
			bad(path+".id", "is duplicated", c.ID)
		}
		seen[c.ID] = true
		if c.Width < 0 {
			bad(path+".width", "must not be negative", c.Width)
		}
		if a := strings.ToLower(c.Align); a != "" && a != "left" && a != "right" {
			bad(path+".align", "must be left or right", c.Align)
		}
	}

	switch strings.ToLower(s.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		bad("logging.level", "must be debug, info, warn or error", s.Logging.Level)
	}

	if _, err := s.Theme.Theme(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

package renderer

import "github.com/dshills/gridstorm/internal/renderer/core"

// Palette holds the base colours a theme is derived from.
type Palette struct {
	Foreground core.Color
	Background core.Color
	Accent     core.Color
	Error      core.Color
}

// DefaultPalette is a dark palette with a blue accent.
func DefaultPalette() Palette {
	return Palette{
		Foreground: core.MustParseColor("#d0d0d0"),
		Background: core.MustParseColor("#1c1c1c"),
		Accent:     core.MustParseColor("#5f87d7"),
		Error:      core.MustParseColor("#d75f5f"),
	}
}

// Theme maps the grid's CSS classes to styles.
type Theme struct {
	Header   core.Style
	Sorted   core.Style
	Cell     core.Style
	OddRow   core.Style
	NewRow   core.Style
	Loading  core.Style
	Group    core.Style
	Totals   core.Style
	Selected core.Style
	Active   core.Style
	Editor   core.Style
	Invalid  core.Style
	Status   core.Style

	// Classes styles any other class, such as the classes of
	// per-cell style layers.
	Classes map[string]core.Style

	Separator rune
	SortAsc   string
	SortDesc  string
}

// NewTheme derives a theme from a palette.
func NewTheme(p Palette) Theme {
	base := core.DefaultStyle().WithForeground(p.Foreground).WithBackground(p.Background)
	header := base.WithBackground(p.Background.Blend(p.Accent, 0.35)).Bold()
	return Theme{
		Header:   header,
		Sorted:   header.WithForeground(p.Accent.Lighten(0.5)),
		Cell:     base,
		OddRow:   base.WithBackground(p.Background.Lighten(0.05)),
		NewRow:   base.WithForeground(p.Foreground.Blend(p.Background, 0.5)),
		Loading:  base.WithForeground(p.Foreground.Blend(p.Background, 0.6)),
		Group:    base.WithBackground(p.Background.Blend(p.Accent, 0.2)).Bold(),
		Totals:   base.WithForeground(p.Accent.Lighten(0.3)),
		Selected: core.DefaultStyle().WithBackground(p.Background.Blend(p.Accent, 0.45)),
		Active:   core.DefaultStyle().WithBackground(p.Accent).WithForeground(p.Background),
		Editor:   core.DefaultStyle().WithBackground(p.Foreground).WithForeground(p.Background),
		Invalid:  core.DefaultStyle().WithBackground(p.Error).WithForeground(p.Foreground.Lighten(0.8)),
		Status:   base.WithBackground(p.Background.Lighten(0.12)),

		Classes: map[string]core.Style{},

		Separator: '│',
		SortAsc:   " ▲",
		SortDesc:  " ▼",
	}
}

// DefaultTheme is NewTheme(DefaultPalette()).
func DefaultTheme() Theme {
	return NewTheme(DefaultPalette())
}

// MonoTheme uses only the terminal's default colours and attributes.
func MonoTheme() Theme {
	base := core.DefaultStyle()
	return Theme{
		Header:   base.Bold(),
		Sorted:   base.Bold(),
		Cell:     base,
		OddRow:   base,
		NewRow:   core.Style{Attributes: core.AttrDim},
		Loading:  core.Style{Attributes: core.AttrDim},
		Group:    base.Bold(),
		Totals:   core.Style{Attributes: core.AttrItalic},
		Selected: core.Style{Attributes: core.AttrUnderline},
		Active:   base.Reverse(),
		Editor:   base.Reverse(),
		Invalid:  base.Reverse().Bold(),
		Status:   base.Reverse(),

		Classes:   map[string]core.Style{},
		Separator: '|',
		SortAsc:   " ^",
		SortDesc:  " v",
	}
}

var rowClassOrder = []string{"odd", "new-row", "loading", "grid-group", "grid-group-totals"}

var cellClassOrder = []string{"selected", "active", "editable", "invalid"}

func (t Theme) classStyle(class string) (core.Style, bool) {
	switch class {
	case "odd":
		return t.OddRow, true
	case "new-row":
		return t.NewRow, true
	case "loading":
		return t.Loading, true
	case "grid-group":
		return t.Group, true
	case "grid-group-totals":
		return t.Totals, true
	case "selected":
		return t.Selected, true
	case "active":
		return t.Active, true
	case "editable":
		return t.Editor, true
	case "invalid":
		return t.Invalid, true
	}
	s, ok := t.Classes[class]
	return s, ok
}

// rowStyle resolves a row's classes in a fixed order.
func (t Theme) rowStyle(has func(string) bool) core.Style {
	s := t.Cell
	for _, class := range rowClassOrder {
		if has(class) {
			s = s.Merge(styleOf(t, class))
		}
	}
	return s
}

// cellStyle overlays the cell's custom classes in their order, then the
// state classes.
func (t Theme) cellStyle(row core.Style, classes []string, has func(string) bool) core.Style {
	s := row
	for _, class := range classes {
		if cs, ok := t.Classes[class]; ok {
			s = s.Merge(cs)
		}
	}
	for _, class := range cellClassOrder {
		if has(class) {
			s = s.Merge(styleOf(t, class))
		}
	}
	return s
}

func styleOf(t Theme, class string) core.Style {
	s, _ := t.classStyle(class)
	return s
}

// Package core provides the cell, style and colour types shared by the
// renderer and its backends.
package core

import (
	"errors"
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Attribute is a set of text attributes.
type Attribute uint8

// Text attribute flags.
const (
	AttrNone      Attribute = 0
	AttrBold      Attribute = 1 << iota
	AttrDim                 // faint
	AttrItalic              // italic
	AttrUnderline           // underlined
	AttrReverse             // swap foreground and background
)

// Has returns true if the set contains attr.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// ErrColorLength is returned for hex colours that are neither three nor six
// digits.
var ErrColorLength = errors.New("hex color must have 3 or 6 digits")

// Color is a 24-bit colour or the terminal default.
type Color struct {
	R, G, B uint8
	Default bool
}

// ColorDefault is the terminal's default colour.
var ColorDefault = Color{Default: true}

// RGB creates a colour from its components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ParseColor reads "#rrggbb", "#rgb" or "default". An empty string is the
// default colour.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "default") {
		return ColorDefault, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, ErrColorLength)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return fromColorful(c), nil
}

// MustParseColor is ParseColor for constants. It panics on error.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// IsDefault returns true for the terminal default colour.
func (c Color) IsDefault() bool {
	return c.Default
}

// Blend mixes c toward other by t in [0, 1], in Lab space. Blending with
// the default colour returns c unchanged.
func (c Color) Blend(other Color, t float64) Color {
	if c.Default || other.Default {
		return c
	}
	return fromColorful(c.colorful().BlendLab(other.colorful(), t))
}

// Lighten blends c toward white.
func (c Color) Lighten(t float64) Color {
	return c.Blend(RGB(255, 255, 255), t)
}

// Darken blends c toward black.
func (c Color) Darken(t float64) Color {
	return c.Blend(RGB(0, 0, 0), t)
}

func (c Color) String() string {
	if c.Default {
		return "default"
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Style is the visual style of a cell.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle uses the terminal's default colours.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// WithForeground returns s with fg as foreground.
func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

// WithBackground returns s with bg as background.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// Bold returns s with the bold attribute.
func (s Style) Bold() Style {
	s.Attributes |= AttrBold
	return s
}

// Reverse returns s with reverse video.
func (s Style) Reverse() Style {
	s.Attributes |= AttrReverse
	return s
}

// Merge overlays other on s. Default colours in other keep the colours of
// s; attributes accumulate.
func (s Style) Merge(other Style) Style {
	if !other.Foreground.IsDefault() {
		s.Foreground = other.Foreground
	}
	if !other.Background.IsDefault() {
		s.Background = other.Background
	}
	s.Attributes |= other.Attributes
	return s
}

// Cell is one terminal cell. A wide rune is followed by a continuation
// cell of width 0.
type Cell struct {
	Rune  rune
	Width int
	Style Style
}

// EmptyCell is a blank in the default style.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Width: 1, Style: DefaultStyle()}
}

// ContinuationCell fills the second column of a wide rune.
func ContinuationCell() Cell {
	return Cell{Style: DefaultStyle()}
}

// IsContinuation returns true for the second column of a wide rune.
func (c Cell) IsContinuation() bool {
	return c.Width == 0 && c.Rune == 0
}

// RuneWidth returns the number of columns r occupies.
func RuneWidth(r rune) int {
	if r < 32 || r == 0x7f {
		return 0
	}
	return uniseg.StringWidth(string(r))
}

// StringWidth returns the number of columns s occupies.
func StringWidth(s string) int {
	return uniseg.StringWidth(s)
}

// CellsFromString lays s out as cells, adding continuation cells after
// wide runes. Control runes are dropped.
func CellsFromString(s string, style Style) []Cell {
	cells := make([]Cell, 0, len(s))
	for _, r := range s {
		w := RuneWidth(r)
		if w == 0 {
			continue
		}
		cells = append(cells, Cell{Rune: r, Width: w, Style: style})
		if w == 2 {
			cont := ContinuationCell()
			cont.Style = style
			cells = append(cells, cont)
		}
	}
	return cells
}

// StringFromCells is the text of cells without continuation cells.
func StringFromCells(cells []Cell) string {
	var b strings.Builder
	for _, c := range cells {
		if !c.IsContinuation() {
			b.WriteRune(c.Rune)
		}
	}
	return b.String()
}

// ScreenRect is a rectangle of cells. Bottom and Right are exclusive.
type ScreenRect struct {
	Top, Left     int
	Bottom, Right int
}

// RectFromSize creates a rectangle from its corner and size.
func RectFromSize(top, left, height, width int) ScreenRect {
	return ScreenRect{Top: top, Left: left, Bottom: top + height, Right: left + width}
}

// Width returns the number of columns.
func (r ScreenRect) Width() int { return max(0, r.Right-r.Left) }

// Height returns the number of rows.
func (r ScreenRect) Height() int { return max(0, r.Bottom-r.Top) }

// IsEmpty returns true if r covers no cells.
func (r ScreenRect) IsEmpty() bool { return r.Width() == 0 || r.Height() == 0 }

// Contains reports whether the cell at (x, y) is inside r.
func (r ScreenRect) Contains(x, y int) bool {
	return y >= r.Top && y < r.Bottom && x >= r.Left && x < r.Right
}

// Intersection returns the overlap of r and other, which may be empty.
func (r ScreenRect) Intersection(other ScreenRect) ScreenRect {
	out := ScreenRect{
		Top:    max(r.Top, other.Top),
		Left:   max(r.Left, other.Left),
		Bottom: min(r.Bottom, other.Bottom),
		Right:  min(r.Right, other.Right),
	}
	if out.IsEmpty() {
		return ScreenRect{}
	}
	return out
}

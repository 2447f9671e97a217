// Package layout turns a formatted forecast into positioned drawing primitives for the
// temperature, precipitation and hour bands. It does no drawing itself.
package layout

import (
	"errors"
	"fmt"

	"github.com/kjstillabower/forecast-display/internal/models"
)

var (
	// ErrInvalidGeometry is returned for non-positive column counts, strides, widths or band heights.
	ErrInvalidGeometry = errors.New("invalid layout geometry")
	// ErrNotEnoughHours is returned when the last sampled column falls past the forecast.
	ErrNotEnoughHours = errors.New("not enough forecast hours for layout")
)

// ColumnMargin is the left inset of every column origin.
const ColumnMargin = 5

// Gray levels, 0 = black.
const (
	Black    uint8 = 0x00
	DarkGray uint8 = 0x22
	MidGray  uint8 = 0x99
	White    uint8 = 0xff
)

// Columns describes how the forecast is subsampled across the display width.
type Columns struct {
	Width  int // display width in pixels
	Count  int // number of visible columns
	Stride int // forecast hours between adjacent columns
}

// ColumnWidth is floor(Width / Count).
func (c Columns) ColumnWidth() int {
	return c.Width / c.Count
}

// X returns the horizontal origin of column col.
func (c Columns) X(col int) int {
	return col*c.ColumnWidth() + ColumnMargin
}

// SampleIndex returns the forecast index drawn in column col.
func (c Columns) SampleIndex(col int) int {
	return col * c.Stride
}

// check validates the column geometry against a forecast of n hours.
func (c Columns) check(n int) error {
	if c.Width <= 0 || c.Count <= 0 || c.Stride <= 0 {
		return fmt.Errorf("%w: width=%d columns=%d stride=%d", ErrInvalidGeometry, c.Width, c.Count, c.Stride)
	}
	if last := c.SampleIndex(c.Count - 1); last >= n {
		return fmt.Errorf("%w: need index %d, have %d hours", ErrNotEnoughHours, last, n)
	}
	return nil
}

// Band is the placement of one horizontal region of the screen.
type Band struct {
	X      int
	Y      int
	Height int
}

// Sprite is one 20x20 icon tile, top-left at (X, Y) relative to its group.
type Sprite struct {
	X, Y  int
	Index int // icons.Missing when the condition code is unmapped
	Code  string
}

// Label is a line of text anchored by its left edge and vertical middle at (X, Y).
type Label struct {
	X, Y  int
	Text  string
	Color uint8
}

// Rect is a filled rectangle, top-left at (X, Y).
type Rect struct {
	X, Y int
	W, H int
	Fill uint8
}

// Group is the set of primitives for one band, offset by (X, Y) on screen.
type Group struct {
	X, Y    int
	Sprites []Sprite
	Labels  []Label
	Rects   []Rect
}

// sample walks every visible column, handing the column origin and its forecast hour to fn.
func sample(hours []models.FormattedHour, cols Columns, fn func(x int, h models.FormattedHour)) error {
	if err := cols.check(len(hours)); err != nil {
		return err
	}
	for col := 0; col < cols.Count; col++ {
		fn(cols.X(col), hours[cols.SampleIndex(col)])
	}
	return nil
}

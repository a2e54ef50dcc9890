/*
Package vic models the video circuit of the Commodore VIC-20, as far
as a paint program needs to care about it.

The screen is a grid of 8 by 8 pixel character cells. Each cell shows
one of two modes. In high resolution mode every bitmap bit picks
between the shared background color and the cell's own character
color. In multicolor mode bits form pairs, each pair a double-width
pixel choosing between four colors: the shared background, border and
auxiliary registers and the cell's character color.

The three shared registers belong to the image as a whole; the
character color belongs to the cell. The hardware keeps the border
register to three bits, so only the first eight palette entries can
be a border color. An Image enforces that, and the per-pixel legality
that follows from a cell's mode, on every mutation.
*/
package vic

import "errors"

// Cell geometry. A multicolor pixel is two high resolution pixels
// wide, so a cell is MulticolorWidth wide pixels across.
const (
	CellWidth       = 8
	CellHeight      = 8
	MulticolorWidth = CellWidth / 2
)

// ScreenColumns and ScreenRows are the size of the stock text screen,
// which is what a new image defaults to.
const (
	ScreenColumns = 22
	ScreenRows    = 23
)

// PixelAspect is the width of a high resolution pixel relative to its
// height: the 176 by 184 pixel screen comes out at roughly 573 by 362
// mm on a real display. A multicolor pixel is twice as wide again.
const PixelAspect = 1.654822

// MaxBorder is the highest palette index the three bit border
// register can hold.
const MaxBorder = 7

var (
	// ErrIllegalColor is returned when a color cannot be used where
	// it was asked for: a palette index out of range, a border color
	// above MaxBorder, or a pixel value the cell's mode cannot show.
	ErrIllegalColor = errors.New("vic: illegal color")

	// ErrInvalidSize is returned for image dimensions that are not
	// positive or are beyond MaxColumns by MaxRows.
	ErrInvalidSize = errors.New("vic: invalid size")
)

// Mode tells how a cell's bitmap bits are interpreted.
type Mode int

const (
	// HighRes cells map each bit to background or character color.
	HighRes Mode = iota
	// Multicolor cells map bit pairs to one of four colors, at half
	// the horizontal resolution.
	Multicolor
)

func (m Mode) String() string {
	if m == Multicolor {
		return "multicolor"
	}
	return "high resolution"
}

// PixelColor is the value of one pixel: which of the four color
// sources it shows. The numeric values are the multicolor bit
// patterns.
type PixelColor uint8

const (
	Background PixelColor = 0b00
	Border     PixelColor = 0b01
	Char       PixelColor = 0b10
	Aux        PixelColor = 0b11
)

func (p PixelColor) String() string {
	switch p {
	case Background:
		return "background"
	case Border:
		return "border"
	case Char:
		return "character"
	case Aux:
		return "auxiliary"
	}
	return "invalid"
}

// Visible reports whether a pixel of color p can exist in mode m.
// High resolution cells only show the background and the character
// color.
func (m Mode) Visible(p PixelColor) bool {
	return m == Multicolor || p == Background || p == Char
}

// Register names one of the image-wide color registers.
type Register int

const (
	BackgroundRegister Register = iota
	BorderRegister
	AuxRegister
)

func (r Register) String() string {
	switch r {
	case BorderRegister:
		return "border"
	case AuxRegister:
		return "auxiliary"
	}
	return "background"
}

// PaintColor is what a painting operation paints with: the color slot
// to write, and for the Char slot the palette index the touched cells
// take as their character color.
type PaintColor struct {
	Slot  PixelColor
	Color uint8
}

// CharPaint returns a PaintColor that paints in the given palette
// color, through the character color slot.
func CharPaint(index uint8) PaintColor {
	return PaintColor{Slot: Char, Color: index}
}

// GlobalColors are the three color registers shared by every cell of
// an image.
type GlobalColors struct {
	Background uint8
	Border     uint8
	Aux        uint8
}

// DefaultColors is what a new image starts with: black background,
// white border, red auxiliary.
var DefaultColors = GlobalColors{Background: 0, Border: 1, Aux: 2}

// Color returns the palette index held by register r.
func (g GlobalColors) Color(r Register) uint8 {
	switch r {
	case BorderRegister:
		return g.Border
	case AuxRegister:
		return g.Aux
	}
	return g.Background
}

// Index resolves a pixel value to a palette index, using charColor
// for pixels set to the character color.
func (g GlobalColors) Index(p PixelColor, charColor uint8) uint8 {
	switch p {
	case Border:
		return g.Border
	case Char:
		return charColor
	case Aux:
		return g.Aux
	}
	return g.Background
}

// Validate checks the register restrictions: every register must hold
// a palette index and the border register only reaches MaxBorder.
func (g GlobalColors) Validate() error {
	if g.Background >= PaletteSize || g.Aux >= PaletteSize {
		return ErrIllegalColor
	}
	if g.Border > MaxBorder {
		return ErrIllegalColor
	}
	return nil
}

// View selects how an image is rendered to true color.
type View int

const (
	// ViewNormal renders with the image's palette colors.
	ViewNormal View = iota
	// ViewRaw renders with fixed diagnostic colors per color slot, so
	// the underlying bit patterns are visible no matter what the
	// registers hold.
	ViewRaw
)

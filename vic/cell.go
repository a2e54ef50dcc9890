package vic

import (
	"image"
	"image/color"
	"math/bits"
)

// Cell is a single character cell: eight bytes of bitmap bits, the
// cell's own character color and the mode that decides how the bits
// are read.
//
// The zero value is an empty high resolution cell with character
// color 0. Cells are values; copying one copies the pixels.
type Cell struct {
	bits  [CellHeight]uint8
	color uint8
	mode  Mode
}

// DefaultCell is what a new image is filled with: an empty multicolor
// cell with a white character color.
var DefaultCell = Cell{color: 1, mode: Multicolor}

// NewCell returns a cell with the given mode, bitmap and character
// color. ErrIllegalColor is returned when the color is not a palette
// index; any palette index is legal as a character color in either
// mode.
func NewCell(mode Mode, bits [CellHeight]uint8, color uint8) (Cell, error) {
	if color >= PaletteSize {
		return Cell{}, ErrIllegalColor
	}
	return Cell{bits: bits, color: color, mode: mode}, nil
}

// Mode returns how the cell's bits are interpreted.
func (c Cell) Mode() Mode {
	return c.mode
}

// Color returns the cell's character color.
func (c Cell) Color() uint8 {
	return c.color
}

// Bits returns the cell's raw bitmap, top row first.
func (c Cell) Bits() [CellHeight]uint8 {
	return c.bits
}

// Nibble returns the cell's color RAM value: the character color's
// low three bits, with bit 3 set when the cell is multicolor.
func (c Cell) Nibble() uint8 {
	n := c.color & 7
	if c.mode == Multicolor {
		n |= 8
	}
	return n
}

// Pixel returns the color slot shown at (x, y). In multicolor mode
// both halves of a double-width pixel report the same value.
//
// Pixel and SetPixel panic when x or y is outside the cell.
func (c Cell) Pixel(x, y int) PixelColor {
	checkPixel(x, y)
	if c.mode == Multicolor {
		return PixelColor(c.bits[y] >> (6 - x&^1) & 0b11)
	}
	if c.bits[y]&(0x80>>x) != 0 {
		return Char
	}
	return Background
}

// SetPixel sets the pixel at (x, y) to one of the color slots and
// returns the value it showed before. ErrIllegalColor is returned,
// and the cell left unchanged, when the slot is not visible in the
// cell's mode. In multicolor mode both halves of the double-width
// pixel change together.
func (c *Cell) SetPixel(x, y int, p PixelColor) (PixelColor, error) {
	prev := c.Pixel(x, y)
	if !c.mode.Visible(p) {
		return prev, ErrIllegalColor
	}
	switch {
	case c.mode == Multicolor:
		shift := 6 - x&^1
		c.bits[y] = c.bits[y]&^(0b11<<shift) | uint8(p)<<shift
	case p == Char:
		c.bits[y] |= 0x80 >> x
	default:
		c.bits[y] &^= 0x80 >> x
	}
	return prev, nil
}

// SetColor sets the character color. Any palette index is legal in
// any mode; the color only shows on pixels set to Char.
func (c *Cell) SetColor(color uint8) error {
	if color >= PaletteSize {
		return ErrIllegalColor
	}
	c.color = color
	return nil
}

// Fill sets every pixel to the given color slot. Like SetPixel it
// fails with ErrIllegalColor when the slot is not visible in the
// cell's mode.
func (c *Cell) Fill(p PixelColor) error {
	if !c.mode.Visible(p) {
		return ErrIllegalColor
	}
	var b uint8
	switch {
	case c.mode == Multicolor:
		b = uint8(p) * 0b01010101
	case p == Char:
		b = 0xff
	}
	for y := range c.bits {
		c.bits[y] = b
	}
	return nil
}

// SetMode switches the cell between the two modes, reinterpreting the
// bitmap deterministically. Narrowing to high resolution maps every
// double-width pixel to whichever of the background and the character
// color is nearer to what the pixel showed, background on a tie.
// Broadening to multicolor keeps the left half of each pixel pair: a
// set bit becomes the character color, a clear bit the background.
// The conversion always succeeds, but switching back does not restore
// the original bits.
//
// The shared registers decide what the multicolor slots look like, so
// the caller passes them in.
func (c *Cell) SetMode(mode Mode, colors GlobalColors) {
	if mode == c.mode {
		return
	}
	if mode == HighRes {
		c.narrowToHighRes(colors)
	} else {
		c.broadenToMulticolor()
	}
	c.mode = mode
}

func (c *Cell) narrowToHighRes(colors GlobalColors) {
	background := Color(colors.Background)
	char := Color(c.color)
	for y, b := range c.bits {
		var out uint8
		for wx := 0; wx < MulticolorWidth; wx++ {
			p := PixelColor(b >> (6 - 2*wx) & 0b11)
			shown := Color(colors.Index(p, c.color))
			if Distance(shown, char) < Distance(shown, background) {
				out |= 0b11 << (6 - 2*wx)
			}
		}
		c.bits[y] = out
	}
}

func (c *Cell) broadenToMulticolor() {
	for y, b := range c.bits {
		var out uint8
		for wx := 0; wx < MulticolorWidth; wx++ {
			if b&(0x80>>(2*wx)) != 0 {
				out |= uint8(Char) << (6 - 2*wx)
			}
		}
		c.bits[y] = out
	}
}

// MirrorX flips the cell horizontally. In multicolor mode the bit
// pairs move as units so every pixel keeps its color.
func (c *Cell) MirrorX() {
	for y, b := range c.bits {
		if c.mode == Multicolor {
			c.bits[y] = b>>6&0b11 | b>>2&0b1100 | b<<2&0b110000 | b<<6&0b11000000
		} else {
			c.bits[y] = bits.Reverse8(b)
		}
	}
}

// MirrorY flips the cell vertically.
func (c *Cell) MirrorY() {
	for i, j := 0, CellHeight-1; i < j; i, j = i+1, j-1 {
		c.bits[i], c.bits[j] = c.bits[j], c.bits[i]
	}
}

// Fixed colors for ViewRaw, chosen so the four slots stay readable
// whatever the registers hold.
var (
	rawHighResBackground = color.RGBA{0x55, 0x55, 0x55, 0xff}
	rawHighResChar       = color.RGBA{0xee, 0xee, 0xee, 0xff}
	rawBackground        = color.RGBA{0x00, 0x00, 0x00, 0xff}
	rawBorder            = color.RGBA{0x00, 0x44, 0xff, 0xff}
	rawChar              = color.RGBA{0xff, 0xff, 0xff, 0xff}
	rawAux               = color.RGBA{0xff, 0x00, 0x00, 0xff}
)

// viewColors returns the RGB value shown for each color slot, indexed
// by PixelColor.
func (c Cell) viewColors(colors GlobalColors, view View) [4]color.RGBA {
	if view == ViewRaw {
		if c.mode == Multicolor {
			return [4]color.RGBA{rawBackground, rawBorder, rawChar, rawAux}
		}
		return [4]color.RGBA{rawHighResBackground, {}, rawHighResChar, {}}
	}
	return [4]color.RGBA{
		Color(colors.Background),
		Color(colors.Border),
		Color(c.color),
		Color(colors.Aux),
	}
}

// draw renders the cell into dst with its top left corner at
// (left, top).
func (c Cell) draw(dst *image.RGBA, left, top int, colors GlobalColors, view View) {
	px := c.viewColors(colors, view)
	for y := 0; y < CellHeight; y++ {
		for x := 0; x < CellWidth; x++ {
			dst.SetRGBA(left+x, top+y, px[c.Pixel(x, y)])
		}
	}
}

func checkPixel(x, y int) {
	if uint(x) >= CellWidth || uint(y) >= CellHeight {
		panic("vic: pixel coordinates out of cell range")
	}
}

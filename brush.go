package pixelpen

import (
	"image"

	"github.com/vilcans/pixel-pen/vic"
)

// Brush is a rectangular block of cells grabbed from a canvas, ready
// to be stamped somewhere else. A brush is immutable once grabbed;
// grabbing again replaces it wholesale.
type Brush struct {
	cells         []vic.Cell
	width, height int
}

// GrabBrush copies the cells of r, clipped to the image, into a new
// brush. It returns nil when r does not overlap the image at all.
func GrabBrush(m *vic.Image, r image.Rectangle) *Brush {
	cells, w, h := m.GrabCells(r)
	if w == 0 {
		return nil
	}
	return &Brush{cells: cells, width: w, height: h}
}

// DefaultBrush returns the brush every document starts with: a single
// solid high resolution cell painted white.
func DefaultBrush() *Brush {
	c, _ := vic.NewCell(vic.HighRes,
		[vic.CellHeight]uint8{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, 1)
	return &Brush{cells: []vic.Cell{c}, width: 1, height: 1}
}

// Width returns the brush width in cells.
func (b *Brush) Width() int {
	return b.width
}

// Height returns the brush height in cells.
func (b *Brush) Height() int {
	return b.height
}

// Cell returns the cell that lands at (x, y) of the stamped area when
// the brush is stamped with the given mirroring: mirrored positions
// come from the opposite side of the brush, their bits flipped to
// match.
func (b *Brush) Cell(x, y int, mirrorX, mirrorY bool) vic.Cell {
	if mirrorX {
		x = b.width - 1 - x
	}
	if mirrorY {
		y = b.height - 1 - y
	}
	c := b.cells[y*b.width+x]
	if mirrorX {
		c.MirrorX()
	}
	if mirrorY {
		c.MirrorY()
	}
	return c
}

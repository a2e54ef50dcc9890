package vic

import (
	"fmt"
	"image"
)

// MaxColumns and MaxRows bound the size of an image. The hardware
// never reaches anywhere near them; they exist so corrupt files
// cannot ask for absurd allocations.
const (
	MaxColumns = 10000
	MaxRows    = 10000
)

// Image is the drawing surface: a dense grid of cells plus the three
// shared color registers.
//
// Addressing follows the conventions of the standard image packages:
// reads outside the image return the zero value and writes outside it
// do nothing. Methods taking column and row work in cells, methods
// taking x and y in high resolution pixels.
type Image struct {
	columns, rows int
	cells         []Cell
	colors        GlobalColors
}

// NewImage returns an image of the given size in cells, filled with
// DefaultCell and DefaultColors. ErrInvalidSize is returned when a
// dimension is not positive or exceeds MaxColumns by MaxRows.
func NewImage(columns, rows int) (*Image, error) {
	if columns < 1 || rows < 1 || columns > MaxColumns || rows > MaxRows {
		return nil, fmt.Errorf("%w: %d x %d cells", ErrInvalidSize, columns, rows)
	}
	cells := make([]Cell, columns*rows)
	for i := range cells {
		cells[i] = DefaultCell
	}
	return &Image{
		columns: columns,
		rows:    rows,
		cells:   cells,
		colors:  DefaultColors,
	}, nil
}

// NewScreen returns an empty image the size of the stock text screen.
func NewScreen() *Image {
	m, _ := NewImage(ScreenColumns, ScreenRows)
	return m
}

// Columns returns the width of the image in cells.
func (m *Image) Columns() int {
	return m.columns
}

// Rows returns the height of the image in cells.
func (m *Image) Rows() int {
	return m.rows
}

// Bounds returns the image extent in high resolution pixels.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.columns*CellWidth, m.rows*CellHeight)
}

// CellBounds returns the image extent in cells.
func (m *Image) CellBounds() image.Rectangle {
	return image.Rect(0, 0, m.columns, m.rows)
}

// Clone returns a deep copy of the image.
func (m *Image) Clone() *Image {
	dup := *m
	dup.cells = append([]Cell(nil), m.cells...)
	return &dup
}

// Cell returns the cell at (column, row), or the zero Cell outside
// the image.
func (m *Image) Cell(column, row int) Cell {
	if !m.inBounds(column, row) {
		return Cell{}
	}
	return m.cells[row*m.columns+column]
}

// SetCell replaces the cell at (column, row) wholesale.
func (m *Image) SetCell(column, row int, c Cell) {
	if m.inBounds(column, row) {
		m.cells[row*m.columns+column] = c
	}
}

func (m *Image) inBounds(column, row int) bool {
	return column >= 0 && column < m.columns && row >= 0 && row < m.rows
}

// GlobalColors returns the three shared color registers.
func (m *Image) GlobalColors() GlobalColors {
	return m.colors
}

// SetGlobalColors sets all three registers at once. ErrIllegalColor
// is returned, and nothing changed, when a register would hold a
// value it cannot.
func (m *Image) SetGlobalColors(g GlobalColors) error {
	if err := g.Validate(); err != nil {
		return err
	}
	m.colors = g
	return nil
}

// SetGlobalColor sets one register, subject to the same restrictions
// as SetGlobalColors.
func (m *Image) SetGlobalColor(r Register, value uint8) error {
	g := m.colors
	switch r {
	case BorderRegister:
		g.Border = value
	case AuxRegister:
		g.Aux = value
	default:
		g.Background = value
	}
	return m.SetGlobalColors(g)
}

// Pixel returns the color slot at pixel (x, y), or Background outside
// the image.
func (m *Image) Pixel(x, y int) PixelColor {
	if !image.Pt(x, y).In(m.Bounds()) {
		return Background
	}
	cell := m.cells[y/CellHeight*m.columns+x/CellWidth]
	return cell.Pixel(x%CellWidth, y%CellHeight)
}

// SetPixel sets the pixel at (x, y) and returns its previous value.
// Like Cell.SetPixel it fails with ErrIllegalColor when the cell's
// mode cannot show the slot.
func (m *Image) SetPixel(x, y int, p PixelColor) (PixelColor, error) {
	if !image.Pt(x, y).In(m.Bounds()) {
		return Background, nil
	}
	cell := &m.cells[y/CellHeight*m.columns+x/CellWidth]
	return cell.SetPixel(x%CellWidth, y%CellHeight, p)
}

// SetCellColor sets the character color of one cell.
func (m *Image) SetCellColor(column, row int, color uint8) error {
	if !m.inBounds(column, row) {
		return nil
	}
	return m.cells[row*m.columns+column].SetColor(color)
}

// SetCellMode switches one cell between the modes, converting its
// bits as described by Cell.SetMode.
func (m *Image) SetCellMode(column, row int, mode Mode) {
	if m.inBounds(column, row) {
		m.cells[row*m.columns+column].SetMode(mode, m.colors)
	}
}

// FillCell floods one cell with a color slot.
func (m *Image) FillCell(column, row int, p PixelColor) error {
	if !m.inBounds(column, row) {
		return nil
	}
	return m.cells[row*m.columns+column].Fill(p)
}

// ReplaceColor rewrites every occurrence of the palette index from to
// to: in the three shared registers and in each cell's character
// color. Bit patterns are untouched, so pixels change only through
// the colors they resolve to. ErrIllegalColor is returned, and
// nothing changed, when either index is out of range or the border
// register would end up above MaxBorder.
func (m *Image) ReplaceColor(from, to uint8) error {
	if from >= PaletteSize || to >= PaletteSize {
		return ErrIllegalColor
	}
	return m.rewriteColors(func(c uint8) uint8 {
		if c == from {
			return to
		}
		return c
	})
}

// SwapColors exchanges two palette indices everywhere in the image in
// one step, so applying the same swap again restores the image
// exactly. It fails like ReplaceColor when the border register would
// be left with a value above MaxBorder.
func (m *Image) SwapColors(a, b uint8) error {
	if a >= PaletteSize || b >= PaletteSize {
		return ErrIllegalColor
	}
	return m.rewriteColors(func(c uint8) uint8 {
		switch c {
		case a:
			return b
		case b:
			return a
		}
		return c
	})
}

func (m *Image) rewriteColors(f func(uint8) uint8) error {
	g := GlobalColors{
		Background: f(m.colors.Background),
		Border:     f(m.colors.Border),
		Aux:        f(m.colors.Aux),
	}
	if err := g.Validate(); err != nil {
		return err
	}
	m.colors = g
	for i := range m.cells {
		m.cells[i].color = f(m.cells[i].color)
	}
	return nil
}

// GrabCells copies the cells of r, clipped to the image, row by row.
// It returns the cells and the clipped width and height; all zero
// when r does not overlap the image.
func (m *Image) GrabCells(r image.Rectangle) ([]Cell, int, int) {
	r = r.Intersect(m.CellBounds())
	if r.Empty() {
		return nil, 0, 0
	}
	cells := make([]Cell, 0, r.Dx()*r.Dy())
	for row := r.Min.Y; row < r.Max.Y; row++ {
		cells = append(cells, m.cells[row*m.columns+r.Min.X:row*m.columns+r.Max.X]...)
	}
	return cells, r.Dx(), r.Dy()
}

// CharacterMap deduplicates the cell bitmaps the way a character
// mapped display would. It returns the distinct bitmaps in order of
// first use and, for each cell in row major order, the index of its
// bitmap.
func (m *Image) CharacterMap() ([][CellHeight]uint8, []int) {
	var bitmaps [][CellHeight]uint8
	seen := make(map[[CellHeight]uint8]int)
	indices := make([]int, len(m.cells))
	for i := range m.cells {
		n, ok := seen[m.cells[i].bits]
		if !ok {
			n = len(bitmaps)
			bitmaps = append(bitmaps, m.cells[i].bits)
			seen[m.cells[i].bits] = n
		}
		indices[i] = n
	}
	return bitmaps, indices
}

// Info returns a short human readable summary of the image.
func (m *Image) Info() string {
	bitmaps, _ := m.CharacterMap()
	return fmt.Sprintf("%d x %d cells, %d characters used", m.columns, m.rows, len(bitmaps))
}

// Render draws the image as true color pixels.
func (m *Image) Render(view View) *image.RGBA {
	dst := image.NewRGBA(m.Bounds())
	for row := 0; row < m.rows; row++ {
		for column := 0; column < m.columns; column++ {
			cell := m.cells[row*m.columns+column]
			cell.draw(dst, column*CellWidth, row*CellHeight, m.colors, view)
		}
	}
	return dst
}

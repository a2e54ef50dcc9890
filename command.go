package pixelpen

import (
	"fmt"
	"image"
	"math"

	"github.com/vilcans/pixel-pen/vic"
)

// Command is a single reversible edit of a document. Apply performs
// the edit and reports whether anything actually changed; Revert
// restores the state from before the last Apply.
//
// A failed Apply leaves the document exactly as it was. Commands only
// reach a document through History.Do, which owns the bookkeeping;
// Revert must only be called after a successful Apply.
type Command interface {
	Apply(doc *Document) (changed bool, err error)
	Revert(doc *Document)
}

// cellSnapshot remembers one cell so a command can put it back.
type cellSnapshot struct {
	column, row int
	cell        vic.Cell
}

func snapshotCells(m *vic.Image, cells []image.Point) []cellSnapshot {
	s := make([]cellSnapshot, len(cells))
	for i, p := range cells {
		s[i] = cellSnapshot{column: p.X, row: p.Y, cell: m.Cell(p.X, p.Y)}
	}
	return s
}

func restoreCells(m *vic.Image, s []cellSnapshot) {
	for _, c := range s {
		m.SetCell(c.column, c.row, c.cell)
	}
}

func cellsChanged(m *vic.Image, s []cellSnapshot) bool {
	for _, c := range s {
		if m.Cell(c.column, c.row) != c.cell {
			return true
		}
	}
	return false
}

// affectedCells returns the distinct cells the pixel points touch, in
// first-touch order, dropping points outside the image.
func affectedCells(m *vic.Image, points []image.Point) []image.Point {
	var cells []image.Point
	seen := make(map[image.Point]bool)
	bounds := m.Bounds()
	for _, p := range points {
		if !p.In(bounds) {
			continue
		}
		cell := image.Pt(p.X/vic.CellWidth, p.Y/vic.CellHeight)
		if !seen[cell] {
			seen[cell] = true
			cells = append(cells, cell)
		}
	}
	return cells
}

// clipCells returns the distinct in-bounds cell coordinates of cells,
// in first-appearance order.
func clipCells(m *vic.Image, cells []image.Point) []image.Point {
	var out []image.Point
	seen := make(map[image.Point]bool)
	bounds := m.CellBounds()
	for _, p := range cells {
		if !p.In(bounds) || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func validatePaint(m *vic.Image, cells []image.Point, paint vic.PaintColor) error {
	if paint.Slot == vic.Char && paint.Color >= vic.PaletteSize {
		return fmt.Errorf("paint color %d: %w", paint.Color, vic.ErrIllegalColor)
	}
	for _, p := range cells {
		if !m.Cell(p.X, p.Y).Mode().Visible(paint.Slot) {
			return fmt.Errorf("%v pixel in %v cell %d,%d: %w",
				paint.Slot, m.Cell(p.X, p.Y).Mode(), p.X, p.Y, vic.ErrIllegalColor)
		}
	}
	return nil
}

// SetPixels paints pixels, one gesture's worth of points in canvas
// pixel coordinates. Points outside the canvas are dropped. Painting
// the Char slot also sets the character color of every touched cell;
// the whole gesture fails, changing nothing, if any touched cell's
// mode cannot show the slot.
type SetPixels struct {
	Points []image.Point
	Paint  vic.PaintColor

	saved []cellSnapshot
}

func (c *SetPixels) Apply(doc *Document) (bool, error) {
	m := doc.img
	cells := affectedCells(m, c.Points)
	if err := validatePaint(m, cells, c.Paint); err != nil {
		return false, err
	}
	c.saved = snapshotCells(m, cells)
	for _, p := range c.Points {
		_, _ = m.SetPixel(p.X, p.Y, c.Paint.Slot)
	}
	if c.Paint.Slot == vic.Char {
		for _, p := range cells {
			_ = m.SetCellColor(p.X, p.Y, c.Paint.Color)
		}
	}
	if !cellsChanged(m, c.saved) {
		c.saved = nil
		return false, nil
	}
	return true, nil
}

func (c *SetPixels) Revert(doc *Document) {
	restoreCells(doc.img, c.saved)
	c.saved = nil
}

// FillCells floods whole cells, given in cell coordinates, with one
// color slot. It validates and paints like SetPixels.
type FillCells struct {
	Cells []image.Point
	Paint vic.PaintColor

	saved []cellSnapshot
}

func (c *FillCells) Apply(doc *Document) (bool, error) {
	m := doc.img
	cells := clipCells(m, c.Cells)
	if err := validatePaint(m, cells, c.Paint); err != nil {
		return false, err
	}
	c.saved = snapshotCells(m, cells)
	for _, p := range cells {
		_ = m.FillCell(p.X, p.Y, c.Paint.Slot)
		if c.Paint.Slot == vic.Char {
			_ = m.SetCellColor(p.X, p.Y, c.Paint.Color)
		}
	}
	if !cellsChanged(m, c.saved) {
		c.saved = nil
		return false, nil
	}
	return true, nil
}

func (c *FillCells) Revert(doc *Document) {
	restoreCells(doc.img, c.saved)
	c.saved = nil
}

// SetCellColor changes the character color of whole cells without
// touching their bits.
type SetCellColor struct {
	Cells []image.Point
	Color uint8

	saved []cellSnapshot
}

func (c *SetCellColor) Apply(doc *Document) (bool, error) {
	if c.Color >= vic.PaletteSize {
		return false, fmt.Errorf("character color %d: %w", c.Color, vic.ErrIllegalColor)
	}
	m := doc.img
	cells := clipCells(m, c.Cells)
	c.saved = snapshotCells(m, cells)
	for _, p := range cells {
		_ = m.SetCellColor(p.X, p.Y, c.Color)
	}
	if !cellsChanged(m, c.saved) {
		c.saved = nil
		return false, nil
	}
	return true, nil
}

func (c *SetCellColor) Revert(doc *Document) {
	restoreCells(doc.img, c.saved)
	c.saved = nil
}

// SetCellMode switches cells between high resolution and multicolor,
// converting their bits as described by vic.Cell.SetMode. The
// conversion is total, so this command cannot fail; it just reports
// no change when every cell already has the mode.
type SetCellMode struct {
	Cells []image.Point
	Mode  vic.Mode

	saved []cellSnapshot
}

func (c *SetCellMode) Apply(doc *Document) (bool, error) {
	m := doc.img
	cells := clipCells(m, c.Cells)
	c.saved = snapshotCells(m, cells)
	for _, p := range cells {
		m.SetCellMode(p.X, p.Y, c.Mode)
	}
	if !cellsChanged(m, c.saved) {
		c.saved = nil
		return false, nil
	}
	return true, nil
}

func (c *SetCellMode) Revert(doc *Document) {
	restoreCells(doc.img, c.saved)
	c.saved = nil
}

// SetGlobalColor changes one of the three shared color registers.
type SetGlobalColor struct {
	Register vic.Register
	Color    uint8

	prev uint8
}

func (c *SetGlobalColor) Apply(doc *Document) (bool, error) {
	c.prev = doc.img.GlobalColors().Color(c.Register)
	if err := doc.img.SetGlobalColor(c.Register, c.Color); err != nil {
		return false, fmt.Errorf("%v register: %w", c.Register, err)
	}
	return c.prev != c.Color, nil
}

func (c *SetGlobalColor) Revert(doc *Document) {
	_ = doc.img.SetGlobalColor(c.Register, c.prev)
}

// ReplaceColor rewrites one palette index to another across the whole
// image: the shared registers and every cell's character color, as
// vic.Image.ReplaceColor does.
type ReplaceColor struct {
	From, To uint8

	saved       []cellSnapshot
	savedColors vic.GlobalColors
}

func (c *ReplaceColor) Apply(doc *Document) (bool, error) {
	m := doc.img
	c.savedColors = m.GlobalColors()
	c.saved = snapshotColorCells(m, c.From)
	if err := m.ReplaceColor(c.From, c.To); err != nil {
		c.saved = nil
		return false, err
	}
	changed := c.savedColors != m.GlobalColors() || cellsChanged(m, c.saved)
	if !changed {
		c.saved = nil
	}
	return changed, nil
}

func (c *ReplaceColor) Revert(doc *Document) {
	restoreCells(doc.img, c.saved)
	_ = doc.img.SetGlobalColors(c.savedColors)
	c.saved = nil
}

// SwapColors exchanges two palette indices across the whole image in
// one step, as vic.Image.SwapColors does.
type SwapColors struct {
	A, B uint8

	saved       []cellSnapshot
	savedColors vic.GlobalColors
}

func (c *SwapColors) Apply(doc *Document) (bool, error) {
	m := doc.img
	c.savedColors = m.GlobalColors()
	c.saved = append(snapshotColorCells(m, c.A), snapshotColorCells(m, c.B)...)
	if err := m.SwapColors(c.A, c.B); err != nil {
		c.saved = nil
		return false, err
	}
	changed := c.savedColors != m.GlobalColors() || cellsChanged(m, c.saved)
	if !changed {
		c.saved = nil
	}
	return changed, nil
}

func (c *SwapColors) Revert(doc *Document) {
	restoreCells(doc.img, c.saved)
	_ = doc.img.SetGlobalColors(c.savedColors)
	c.saved = nil
}

// snapshotColorCells remembers every cell whose character color is
// the given index.
func snapshotColorCells(m *vic.Image, color uint8) []cellSnapshot {
	var s []cellSnapshot
	for row := 0; row < m.Rows(); row++ {
		for column := 0; column < m.Columns(); column++ {
			if cell := m.Cell(column, row); cell.Color() == color {
				s = append(s, cellSnapshot{column: column, row: row, cell: cell})
			}
		}
	}
	return s
}

// StampBrush pastes the document's brush with its top left cell at
// Origin, in cell coordinates, optionally mirrored. Brush cells that
// would land outside the canvas are dropped; the cells around the
// stamp are untouched.
type StampBrush struct {
	Origin  image.Point
	MirrorX bool
	MirrorY bool

	saved []cellSnapshot
}

func (c *StampBrush) Apply(doc *Document) (bool, error) {
	b := doc.brush
	if b == nil {
		return false, nil
	}
	m := doc.img
	var cells []image.Point
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			p := c.Origin.Add(image.Pt(x, y))
			if p.In(m.CellBounds()) {
				cells = append(cells, p)
			}
		}
	}
	c.saved = snapshotCells(m, cells)
	for _, p := range cells {
		cell := b.Cell(p.X-c.Origin.X, p.Y-c.Origin.Y, c.MirrorX, c.MirrorY)
		m.SetCell(p.X, p.Y, cell)
	}
	if !cellsChanged(m, c.saved) {
		c.saved = nil
		return false, nil
	}
	return true, nil
}

func (c *StampBrush) Revert(doc *Document) {
	restoreCells(doc.img, c.saved)
	c.saved = nil
}

// SetImage replaces the document's whole canvas, the way adopting an
// import result does. The previous canvas is kept for undo.
type SetImage struct {
	Image *vic.Image

	prev *vic.Image
}

func (c *SetImage) Apply(doc *Document) (bool, error) {
	c.prev = doc.img
	doc.img = c.Image
	return true, nil
}

func (c *SetImage) Revert(doc *Document) {
	doc.img = c.prev
	c.prev = nil
}

// Line returns the pixels of a line from p0 to p1, both inclusive,
// the way a painting drag interpolates between two mouse positions.
func Line(p0, p1 image.Point) []image.Point {
	steps := max(abs(p1.X-p0.X), abs(p1.Y-p0.Y))
	points := make([]image.Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		points = append(points, image.Pt(
			p0.X+roundStep(p1.X-p0.X, i, steps),
			p0.Y+roundStep(p1.Y-p0.Y, i, steps),
		))
	}
	return points
}

func roundStep(delta, i, steps int) int {
	if steps == 0 {
		return 0
	}
	return int(math.Round(float64(delta) * float64(i) / float64(steps)))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package vic

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImage(t *testing.T) {
	m, err := NewImage(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Columns())
	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, image.Rect(0, 0, 16, 24), m.Bounds())
	assert.Equal(t, image.Rect(0, 0, 2, 3), m.CellBounds())
	assert.Equal(t, DefaultColors, m.GlobalColors())
	assert.Equal(t, DefaultCell, m.Cell(1, 2))

	for _, tt := range []struct{ columns, rows int }{
		{0, 1},
		{1, 0},
		{-1, 5},
		{MaxColumns + 1, 1},
		{1, MaxRows + 1},
	} {
		_, err := NewImage(tt.columns, tt.rows)
		assert.ErrorIs(t, err, ErrInvalidSize, "%d x %d", tt.columns, tt.rows)
	}
}

func TestNewScreen(t *testing.T) {
	m := NewScreen()
	assert.Equal(t, ScreenColumns, m.Columns())
	assert.Equal(t, ScreenRows, m.Rows())
}

func TestImageCellOutside(t *testing.T) {
	m, err := NewImage(2, 2)
	require.NoError(t, err)

	assert.Equal(t, Cell{}, m.Cell(2, 0))
	assert.Equal(t, Cell{}, m.Cell(0, -1))

	c, err := NewCell(HighRes, [CellHeight]uint8{0xff}, 3)
	require.NoError(t, err)
	m.SetCell(5, 5, c)
	assert.Equal(t, DefaultCell, m.Cell(1, 1), "writes outside the image are dropped")
}

func TestImageGlobalColors(t *testing.T) {
	m, err := NewImage(1, 1)
	require.NoError(t, err)

	require.NoError(t, m.SetGlobalColor(BorderRegister, 7))
	assert.Equal(t, uint8(7), m.GlobalColors().Border)

	err = m.SetGlobalColor(BorderRegister, 9)
	assert.ErrorIs(t, err, ErrIllegalColor)
	assert.Equal(t, uint8(7), m.GlobalColors().Border, "failed write leaves the register alone")

	require.NoError(t, m.SetGlobalColor(AuxRegister, 15))
	require.NoError(t, m.SetGlobalColor(BackgroundRegister, 8))
	assert.ErrorIs(t, m.SetGlobalColor(BackgroundRegister, 16), ErrIllegalColor)
	assert.Equal(t, GlobalColors{Background: 8, Border: 7, Aux: 15}, m.GlobalColors())
}

func TestImagePixels(t *testing.T) {
	m, err := NewImage(2, 1)
	require.NoError(t, err)

	prev, err := m.SetPixel(9, 3, Aux)
	require.NoError(t, err)
	assert.Equal(t, Background, prev)
	assert.Equal(t, Aux, m.Pixel(9, 3))
	assert.Equal(t, Aux, m.Pixel(8, 3), "second cell, same double-width pixel")
	assert.Equal(t, Background, m.Pixel(0, 0))

	// Outside the canvas: reads are background, writes do nothing.
	assert.Equal(t, Background, m.Pixel(-1, 0))
	_, err = m.SetPixel(16, 0, Char)
	require.NoError(t, err)
	assert.Equal(t, Background, m.Pixel(16, 0))
}

func TestImageCellOps(t *testing.T) {
	m, err := NewImage(2, 1)
	require.NoError(t, err)

	require.NoError(t, m.SetCellColor(0, 0, 12))
	assert.Equal(t, uint8(12), m.Cell(0, 0).Color())
	assert.ErrorIs(t, m.SetCellColor(0, 0, 16), ErrIllegalColor)
	require.NoError(t, m.SetCellColor(9, 9, 3), "outside the image is a no-op")

	require.NoError(t, m.FillCell(1, 0, Border))
	assert.Equal(t, uint8(0x55), m.Cell(1, 0).Bits()[0])

	m.SetCellMode(1, 0, HighRes)
	assert.Equal(t, HighRes, m.Cell(1, 0).Mode())
	assert.ErrorIs(t, m.FillCell(1, 0, Border), ErrIllegalColor)
}

func TestImageReplaceColor(t *testing.T) {
	m, err := NewImage(2, 1)
	require.NoError(t, err)
	require.NoError(t, m.SetCellColor(0, 0, 5))
	require.NoError(t, m.SetCellColor(1, 0, 2))

	require.NoError(t, m.ReplaceColor(2, 9))
	assert.Equal(t, uint8(9), m.GlobalColors().Aux)
	assert.Equal(t, uint8(9), m.Cell(1, 0).Color())
	assert.Equal(t, uint8(5), m.Cell(0, 0).Color())

	// Border register cannot hold 9; nothing may change.
	before := m.Clone()
	assert.ErrorIs(t, m.ReplaceColor(1, 9), ErrIllegalColor)
	assert.Equal(t, before, m)

	assert.ErrorIs(t, m.ReplaceColor(16, 0), ErrIllegalColor)
	assert.ErrorIs(t, m.ReplaceColor(0, 16), ErrIllegalColor)
}

func TestImageSwapColors(t *testing.T) {
	m, err := NewImage(2, 1)
	require.NoError(t, err)
	require.NoError(t, m.SetCellColor(0, 0, 5))
	before := m.Clone()

	require.NoError(t, m.SwapColors(0, 5))
	assert.Equal(t, uint8(5), m.GlobalColors().Background)
	assert.Equal(t, uint8(0), m.Cell(0, 0).Color())

	require.NoError(t, m.SwapColors(0, 5))
	assert.Equal(t, before, m, "swapping twice restores the image exactly")

	assert.ErrorIs(t, m.SwapColors(1, 8), ErrIllegalColor, "would move 8 into the border register")
}

func TestImageGrabCells(t *testing.T) {
	m, err := NewImage(3, 2)
	require.NoError(t, err)
	for row := 0; row < 2; row++ {
		for column := 0; column < 3; column++ {
			require.NoError(t, m.SetCellColor(column, row, uint8(row*3+column)))
		}
	}

	cells, w, h := m.GrabCells(image.Rect(1, 0, 5, 5))
	require.Equal(t, 2, w)
	require.Equal(t, 2, h)
	require.Len(t, cells, 4)
	assert.Equal(t, uint8(1), cells[0].Color())
	assert.Equal(t, uint8(2), cells[1].Color())
	assert.Equal(t, uint8(4), cells[2].Color())
	assert.Equal(t, uint8(5), cells[3].Color())

	cells, w, h = m.GrabCells(image.Rect(10, 10, 20, 20))
	assert.Nil(t, cells)
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestImageCharacterMap(t *testing.T) {
	m, err := NewImage(2, 2)
	require.NoError(t, err)
	a, err := NewCell(Multicolor, [CellHeight]uint8{0x11}, 1)
	require.NoError(t, err)
	b, err := NewCell(Multicolor, [CellHeight]uint8{0x22}, 1)
	require.NoError(t, err)
	m.SetCell(0, 0, a)
	m.SetCell(1, 0, b)
	m.SetCell(0, 1, a)

	bitmaps, indices := m.CharacterMap()
	require.Len(t, bitmaps, 3)
	assert.Equal(t, [CellHeight]uint8{0x11}, bitmaps[0])
	assert.Equal(t, [CellHeight]uint8{0x22}, bitmaps[1])
	assert.Equal(t, [CellHeight]uint8{}, bitmaps[2])
	assert.Equal(t, []int{0, 1, 0, 2}, indices)

	assert.Equal(t, "2 x 2 cells, 3 characters used", m.Info())
}

func TestImageRender(t *testing.T) {
	m, err := NewImage(1, 1)
	require.NoError(t, err)
	c, err := NewCell(Multicolor, [CellHeight]uint8{0b00011011}, 7)
	require.NoError(t, err)
	m.SetCell(0, 0, c)

	normal := m.Render(ViewNormal)
	assert.Equal(t, image.Rect(0, 0, 8, 8), normal.Bounds())
	assert.Equal(t, Color(0), normal.RGBAAt(0, 0))
	assert.Equal(t, Color(1), normal.RGBAAt(2, 0))
	assert.Equal(t, Color(7), normal.RGBAAt(4, 0))
	assert.Equal(t, Color(2), normal.RGBAAt(6, 0))

	raw := m.Render(ViewRaw)
	assert.Equal(t, color.RGBA{0x00, 0x00, 0x00, 0xff}, raw.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{0x00, 0x44, 0xff, 0xff}, raw.RGBAAt(2, 0))
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, raw.RGBAAt(4, 0))
	assert.Equal(t, color.RGBA{0xff, 0x00, 0x00, 0xff}, raw.RGBAAt(6, 0))
}

func TestImageRenderRawHighRes(t *testing.T) {
	m, err := NewImage(1, 1)
	require.NoError(t, err)
	c, err := NewCell(HighRes, [CellHeight]uint8{0x80}, 7)
	require.NoError(t, err)
	m.SetCell(0, 0, c)

	raw := m.Render(ViewRaw)
	assert.Equal(t, color.RGBA{0xee, 0xee, 0xee, 0xff}, raw.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{0x55, 0x55, 0x55, 0xff}, raw.RGBAAt(1, 0))
}

func TestNearestColor(t *testing.T) {
	for i := uint8(0); i < PaletteSize; i++ {
		assert.Equal(t, i, NearestColor(Color(i)))
	}
	// Pure red sits between Red and Orange; Orange wins on distance.
	assert.Equal(t, uint8(8), NearestColor(color.RGBA{0xff, 0x00, 0x00, 0xff}))
}

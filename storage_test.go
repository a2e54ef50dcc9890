package pixelpen

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilcans/pixel-pen/fluff"
	"github.com/vilcans/pixel-pen/vic"
)

func writeTestFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func encodePNG(t *testing.T, m image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, m))
	return buf.Bytes()
}

// fluffFixture is a 1 x 1 cell Fluff64 file with background 3,
// border 2, auxiliary 4 and an empty cell of character color 5.
func fluffFixture() []byte {
	data := []byte(fluff.Magic)
	header := make([]byte, 13)
	header[0] = 1 // version
	header[6] = 3 // background
	header[7] = 3
	header[8] = 2 // border
	header[9] = 4 // auxiliary
	header[11] = 1
	header[12] = 1
	data = append(data, header...)
	cell := make([]byte, 12)
	cell[11] = 5
	return append(data, cell...)
}

func TestIdentify(t *testing.T) {
	dir := t.TempDir()
	flf := writeTestFile(t, dir, "a.flf", []byte(fluff.Magic))
	raster := writeTestFile(t, dir, "b.png", encodePNG(t, solid(4, 4, vic.Color(0))))
	nat := writeTestFile(t, dir, "c.pixelpen", []byte(`{"version":1}`))
	short := writeTestFile(t, dir, "d", []byte("xy"))

	for path, want := range map[string]Format{
		flf:    FormatFluff,
		raster: FormatImage,
		nat:    FormatNative,
		short:  FormatNative,
	} {
		format, err := Identify(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, format, path)
	}

	_, err := Identify(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestSaveLoadNative(t *testing.T) {
	m, err := vic.NewImage(2, 2)
	require.NoError(t, err)
	require.NoError(t, m.SetGlobalColors(vic.GlobalColors{Background: 8, Border: 7, Aux: 15}))
	c, err := vic.NewCell(vic.Multicolor, [vic.CellHeight]uint8{0xe4, 0x1b, 0, 0, 0, 0, 0, 0xff}, 14)
	require.NoError(t, err)
	m.SetCell(0, 0, c)
	c, err = vic.NewCell(vic.HighRes, [vic.CellHeight]uint8{0x81, 0x42}, 3)
	require.NoError(t, err)
	m.SetCell(1, 1, c)
	doc := FromImage(m)
	require.NoError(t, doc.SetPaintColor(14))

	path := filepath.Join(t.TempDir(), "art"+NativeExtension)
	require.NoError(t, Save(doc, path))
	// The package level Save leaves path bookkeeping to the caller.
	assert.Empty(t, doc.Path())

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Image(), got.Image())
	assert.Equal(t, uint8(14), got.PaintColor())
	assert.Equal(t, path, got.Path())
}

func TestExportRaw(t *testing.T) {
	m, err := vic.NewImage(1, 1)
	require.NoError(t, err)
	c, err := vic.NewCell(vic.Multicolor, [vic.CellHeight]uint8{1, 2, 3, 4, 5, 6, 7, 8}, 14)
	require.NoError(t, err)
	m.SetCell(0, 0, c)

	path := filepath.Join(t.TempDir(), "out"+RawExtension)
	require.NoError(t, Save(FromImage(m), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 14&7 | 8}, data)
}

func TestExportPNG(t *testing.T) {
	m, err := vic.NewImage(1, 1)
	require.NoError(t, err)
	c, err := vic.NewCell(vic.HighRes, [vic.CellHeight]uint8{0xff}, 1)
	require.NoError(t, err)
	m.SetCell(0, 0, c)
	doc := FromImage(m)
	dir := t.TempDir()

	decode := func(path string) image.Image {
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		decoded, err := png.Decode(f)
		require.NoError(t, err)
		return decoded
	}
	at := func(m image.Image, x, y int) color.RGBA {
		return color.RGBAModel.Convert(m.At(x, y)).(color.RGBA)
	}

	normal := filepath.Join(dir, "normal.png")
	require.NoError(t, Save(doc, normal))
	decoded := decode(normal)
	assert.Equal(t, image.Rect(0, 0, 8, 8), decoded.Bounds())
	assert.Equal(t, vic.Color(1), at(decoded, 0, 0))
	assert.Equal(t, vic.Color(0), at(decoded, 0, 7))

	// The raw view trades the palette for the diagnostic colors.
	raws := filepath.Join(dir, "raw.png")
	require.NoError(t, Export(doc, raws, vic.ViewRaw))
	decoded = decode(raws)
	assert.Equal(t, color.RGBA{0xee, 0xee, 0xee, 0xff}, at(decoded, 0, 0))
	assert.Equal(t, color.RGBA{0x55, 0x55, 0x55, 0xff}, at(decoded, 0, 7))
}

func TestExportRasterFormats(t *testing.T) {
	doc := NewDocument()
	dir := t.TempDir()
	for _, ext := range []string{".png", ".gif", ".bmp", ".jpg", ".jpeg"} {
		path := filepath.Join(dir, "out"+ext)
		require.NoError(t, Save(doc, path), ext)

		format, err := Identify(path)
		require.NoError(t, err, ext)
		assert.Equal(t, FormatImage, format, ext)

		got, err := Load(path)
		require.NoError(t, err, ext)
		assert.Equal(t, vic.ScreenColumns, got.Image().Columns(), ext)
		assert.Equal(t, vic.ScreenRows, got.Image().Rows(), ext)
	}
}

func TestExportRefused(t *testing.T) {
	doc := NewDocument()
	dir := t.TempDir()

	err := Save(doc, filepath.Join(dir, "out"+fluff.Extension))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = Save(doc, filepath.Join(dir, "out.xyz"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadFluff(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "pic.flf", fluffFixture())

	doc, err := Load(path)
	require.NoError(t, err)
	// Fluff64 cannot be saved back, so the document starts pathless.
	assert.Empty(t, doc.Path())

	m := doc.Image()
	assert.Equal(t, 1, m.Columns())
	assert.Equal(t, 1, m.Rows())
	assert.Equal(t, vic.GlobalColors{Background: 3, Border: 2, Aux: 4}, m.GlobalColors())
	c := m.Cell(0, 0)
	assert.Equal(t, vic.Multicolor, c.Mode())
	assert.Equal(t, uint8(5), c.Color())
}

func TestLoadImage(t *testing.T) {
	src := solid(16, 16, color.RGBA{R: 0xff, A: 0xff})
	path := writeTestFile(t, t.TempDir(), "photo.png", encodePNG(t, src))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, doc.Path())
	assert.Equal(t, 2, doc.Image().Columns())
	assert.Equal(t, 2, doc.Image().Rows())
	assert.Equal(t, vic.GlobalColors{Background: 8, Border: 1, Aux: 2}, doc.Image().GlobalColors())
}

func TestImportFileErrors(t *testing.T) {
	dir := t.TempDir()

	garbage := writeTestFile(t, dir, "noise", []byte("not an image at all"))
	_, err := ImportFile(garbage, ImportOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	full := encodePNG(t, solid(16, 16, vic.Color(0)))
	truncated := writeTestFile(t, dir, "cut.png", full[:40])
	_, err = ImportFile(truncated, ImportOptions{})
	assert.ErrorIs(t, err, ErrDecode)
}

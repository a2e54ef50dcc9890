/*
Package fluff reads the Fluff64 image container written by Turbo
Rascal Syntax Error. Only enough of the format to recover a VIC-20
multicolor image is implemented, and nothing here writes it; the
format belongs to another program.

A file is the 7 byte magic "FLUFF64" followed by a 13 byte header:
a little endian 32 bit version, then single bytes for image type,
palette type, background, a second copy of the background, border,
auxiliary, a pen color this reader ignores, and the width and height
in cells. After the header come width by height cell records of 12
bytes each in row major order: 8 bitmap bytes and the cell's
background, border, auxiliary and character color bytes, of which
only the character color means anything per cell.

The bitmap bytes store the pixel pairs mirrored within each byte and
with the character and auxiliary bit patterns exchanged relative to
the hardware; Decode normalizes both. Register values are masked to
the width of their hardware register, and a character color byte
above 7 (files written without one carry 255) decodes as color 1.
*/
package fluff

import (
	"errors"
	"fmt"
	"io"

	"github.com/vilcans/pixel-pen/vic"
)

// Magic identifies a Fluff64 file.
const Magic = "FLUFF64"

// Extension is the file name extension these files are saved under.
const Extension = ".flf"

var (
	// ErrUnrecognizedChunk is returned when the file does not start
	// with the Fluff64 magic.
	ErrUnrecognizedChunk = errors.New("fluff: unrecognized chunk")

	// ErrTruncated is returned when the file ends before the cells
	// its header declares.
	ErrTruncated = errors.New("fluff: truncated file")
)

const (
	headerSize = 13
	cellSize   = 12
)

// Config holds what a Fluff64 header declares about its image.
type Config struct {
	Columns, Rows int
	Colors        vic.GlobalColors
}

type decoder struct {
	r io.Reader

	config Config
	image  *vic.Image
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func (d *decoder) readHeader() error {
	var magic [len(Magic)]byte
	if err := readFull(d.r, magic[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return ErrTruncated
		}
		return err
	}
	if string(magic[:]) != Magic {
		return ErrUnrecognizedChunk
	}
	var h [headerSize]byte
	if err := readFull(d.r, h[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return ErrTruncated
		}
		return err
	}
	// h[0:4] is the version and h[4:6] the image and palette types.
	// The cell layout is the same for every file this reader meets,
	// so none of them are interpreted.
	d.config = Config{
		Columns: int(h[11]),
		Rows:    int(h[12]),
		Colors: vic.GlobalColors{
			Background: h[6] & 0x0f,
			Border:     h[8] & 0x07,
			Aux:        h[9] & 0x0f,
		},
	}
	if d.config.Columns == 0 || d.config.Rows == 0 {
		return fmt.Errorf("%w: %d x %d cells", vic.ErrInvalidSize, d.config.Columns, d.config.Rows)
	}
	return nil
}

func (d *decoder) readCells() error {
	m, err := vic.NewImage(d.config.Columns, d.config.Rows)
	if err != nil {
		return err
	}
	if err := m.SetGlobalColors(d.config.Colors); err != nil {
		return err
	}
	total := d.config.Columns * d.config.Rows
	buf := make([]byte, cellSize)
	for i := 0; i < total; i++ {
		if err := readFull(d.r, buf); err != nil {
			if err == io.ErrUnexpectedEOF {
				return fmt.Errorf("%w: %d of %d cells", ErrTruncated, i, total)
			}
			return err
		}
		var bits [vic.CellHeight]uint8
		for y := range bits {
			bits[y] = normalizeBits(buf[y])
		}
		color := buf[11]
		if color > 7 {
			color = 1
		}
		cell, err := vic.NewCell(vic.Multicolor, bits, color)
		if err != nil {
			return err
		}
		m.SetCell(i%d.config.Columns, i/d.config.Columns, cell)
	}
	d.image = m
	return nil
}

// normalizeBits converts one bitmap byte from file order to hardware
// order: mirror the pixel pairs within the byte and exchange the 0b10
// and 0b11 patterns.
func normalizeBits(b uint8) uint8 {
	var out uint8
	for shift := 0; shift <= 6; shift += 2 {
		pair := b >> (6 - shift) & 0b11
		switch pair {
		case 0b10:
			pair = 0b11
		case 0b11:
			pair = 0b10
		}
		out |= pair << shift
	}
	return out
}

// Decode reads a Fluff64 file and returns the image it contains.
// Every cell comes back in multicolor mode, which is all the format
// stores.
func Decode(r io.Reader) (*vic.Image, error) {
	d := decoder{r: r}
	if err := d.readHeader(); err != nil {
		return nil, err
	}
	if err := d.readCells(); err != nil {
		return nil, err
	}
	return d.image, nil
}

// DecodeConfig returns the size and shared colors a Fluff64 file
// declares without reading its cells.
func DecodeConfig(r io.Reader) (Config, error) {
	d := decoder{r: r}
	if err := d.readHeader(); err != nil {
		return Config{}, err
	}
	return d.config, nil
}

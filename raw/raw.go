/*
Package raw writes images in the bare memory layout the video chip
reads, ready to feed an assembler, an emulator or the machine itself.
The layout has no header and nothing identifies it, so nothing here
reads it back.

Encode writes two planes with no padding between them:

	bitmap plane  8 bytes per cell, top bitmap row first, cells in
	              row major order
	color plane   one byte per cell in the same order, holding the
	              cell's color RAM value: the character color's low
	              three bits, with bit 3 set for multicolor

EncodeCharmap writes the layout a character mapped screen wants, with
the bitmaps deduplicated:

	video matrix   one byte per cell in row major order: the cell's
	               index into the character set
	color plane    as above
	character set  the distinct 8 byte bitmaps in order of first use

The video matrix entries are single bytes, so EncodeCharmap refuses
images using more than 256 distinct bitmaps.
*/
package raw

import (
	"errors"
	"fmt"
	"io"

	"github.com/vilcans/pixel-pen/vic"
)

// ErrTooManyCharacters is returned by EncodeCharmap when the image
// uses more distinct bitmaps than a byte wide video matrix can
// reference.
var ErrTooManyCharacters = errors.New("raw: more than 256 distinct characters")

type encoder struct {
	w io.Writer
	m *vic.Image
}

// Encode writes the image's bitmap plane followed by its color
// plane.
func Encode(w io.Writer, m *vic.Image) error {
	e := encoder{w: w, m: m}
	if err := e.bitmaps(); err != nil {
		return err
	}
	return e.colors()
}

// EncodeCharmap writes the image's video matrix, its color plane and
// its deduplicated character set.
func EncodeCharmap(w io.Writer, m *vic.Image) error {
	bitmaps, indices := m.CharacterMap()
	if len(bitmaps) > 256 {
		return fmt.Errorf("%w: %d", ErrTooManyCharacters, len(bitmaps))
	}
	video := make([]byte, len(indices))
	for i, n := range indices {
		video[i] = byte(n)
	}
	if _, err := w.Write(video); err != nil {
		return err
	}
	e := encoder{w: w, m: m}
	if err := e.colors(); err != nil {
		return err
	}
	for i := range bitmaps {
		if _, err := w.Write(bitmaps[i][:]); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) bitmaps() error {
	for row := 0; row < e.m.Rows(); row++ {
		for column := 0; column < e.m.Columns(); column++ {
			bits := e.m.Cell(column, row).Bits()
			if _, err := e.w.Write(bits[:]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *encoder) colors() error {
	b := make([]byte, 0, e.m.Columns()*e.m.Rows())
	for row := 0; row < e.m.Rows(); row++ {
		for column := 0; column < e.m.Columns(); column++ {
			b = append(b, e.m.Cell(column, row).Nibble())
		}
	}
	_, err := e.w.Write(b)
	return err
}

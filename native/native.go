/*
Package native reads and writes the editor's own file format: a JSON
document carrying the image and a little editing state alongside it.

The image is stored the way a character mapped display would hold it,
with the bitmaps deduplicated. "characters" is the table of distinct
8 byte bitmaps as hex strings, "video-chars" gives each cell's table
index and "video-colors" each cell's color byte, both in row major
cell order.

Two shapes of the format exist. Version 1 stores the shared registers
as an object keyed "background", "border" and "aux", and a color byte
whose low four bits are the character color with the multicolor flag
in bit 4. Files without a "version" field are the older shape: the
registers as a three element array in that order, and the color byte
is the hardware color RAM value, a three bit color with the
multicolor flag in bit 3. Decode accepts both; Encode always writes
version 1.
*/
package native

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vilcans/pixel-pen/vic"
)

// Version is the newest format version this package understands.
const Version = 1

var (
	// ErrCorrupt is returned when a file is structurally broken: not
	// JSON, bad hex, mismatched lengths or out of range values.
	ErrCorrupt = errors.New("native: corrupt file")

	// ErrUnsupportedVersion is returned for files declaring a version
	// newer than Version.
	ErrUnsupportedVersion = errors.New("native: unsupported version")
)

// File is the content of a native format file: the image and the
// editing state saved with it.
type File struct {
	Image      *vic.Image
	PaintColor uint8
}

type fileJSON struct {
	Version    int       `json:"version,omitempty"`
	PaintColor uint8     `json:"paint-color"`
	Image      imageJSON `json:"image"`
}

// Note the video color slice is []int, not []uint8: encoding/json
// would treat []uint8 as base64 bytes rather than a number array.
type imageJSON struct {
	Columns     int             `json:"columns"`
	Rows        int             `json:"rows"`
	Colors      json.RawMessage `json:"colors"`
	VideoChars  []int           `json:"video-chars"`
	VideoColors []int           `json:"video-colors"`
	Characters  []*string       `json:"characters"`
}

type colorsJSON struct {
	Background uint8 `json:"background"`
	Border     uint8 `json:"border"`
	Aux        uint8 `json:"aux"`
}

// Decode reads a native format document from r.
func Decode(r io.Reader) (*File, error) {
	var f fileJSON
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if f.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Version)
	}
	if f.PaintColor >= vic.PaletteSize {
		return nil, fmt.Errorf("%w: paint color %d", ErrCorrupt, f.PaintColor)
	}
	img, err := decodeImage(&f.Image, f.Version)
	if err != nil {
		return nil, err
	}
	return &File{Image: img, PaintColor: f.PaintColor}, nil
}

func decodeImage(j *imageJSON, version int) (*vic.Image, error) {
	m, err := vic.NewImage(j.Columns, j.Rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %d x %d cells", ErrCorrupt, j.Columns, j.Rows)
	}
	colors, err := decodeColors(j.Colors)
	if err != nil {
		return nil, err
	}
	if err := m.SetGlobalColors(colors); err != nil {
		return nil, fmt.Errorf("%w: colors %+v", ErrCorrupt, colors)
	}
	area := j.Columns * j.Rows
	if len(j.VideoChars) != area || len(j.VideoColors) != area {
		return nil, fmt.Errorf("%w: %d cells but %d indices and %d colors",
			ErrCorrupt, area, len(j.VideoChars), len(j.VideoColors))
	}
	bitmaps := make([][vic.CellHeight]uint8, len(j.Characters))
	for i, s := range j.Characters {
		if s == nil {
			// Unreferenced table entries may be null.
			continue
		}
		if hex.DecodedLen(len(*s)) != vic.CellHeight {
			return nil, fmt.Errorf("%w: character %d is %d digits", ErrCorrupt, i, len(*s))
		}
		if _, err := hex.Decode(bitmaps[i][:], []byte(*s)); err != nil {
			return nil, fmt.Errorf("%w: character %d: %v", ErrCorrupt, i, err)
		}
	}
	for i := 0; i < area; i++ {
		n := j.VideoChars[i]
		if n < 0 || n >= len(bitmaps) {
			return nil, fmt.Errorf("%w: cell %d references character %d of %d",
				ErrCorrupt, i, n, len(bitmaps))
		}
		cell, err := decodeCell(bitmaps[n], j.VideoColors[i], version)
		if err != nil {
			return nil, fmt.Errorf("%w: cell %d: %v", ErrCorrupt, i, err)
		}
		m.SetCell(i%j.Columns, i/j.Columns, cell)
	}
	return m, nil
}

// decodeColors accepts both register shapes regardless of the file's
// version: the keyed object and the older three element array.
func decodeColors(raw json.RawMessage) (vic.GlobalColors, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return vic.GlobalColors{}, fmt.Errorf("%w: missing colors", ErrCorrupt)
	}
	if raw[0] == '[' {
		var list []int
		if err := json.Unmarshal(raw, &list); err != nil || len(list) != 3 {
			return vic.GlobalColors{}, fmt.Errorf("%w: colors %s", ErrCorrupt, raw)
		}
		for _, v := range list {
			if v < 0 || v > 0xff {
				return vic.GlobalColors{}, fmt.Errorf("%w: colors %s", ErrCorrupt, raw)
			}
		}
		return vic.GlobalColors{
			Background: uint8(list[0]),
			Border:     uint8(list[1]),
			Aux:        uint8(list[2]),
		}, nil
	}
	var keyed colorsJSON
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return vic.GlobalColors{}, fmt.Errorf("%w: colors: %v", ErrCorrupt, err)
	}
	return vic.GlobalColors{
		Background: keyed.Background,
		Border:     keyed.Border,
		Aux:        keyed.Aux,
	}, nil
}

func decodeCell(bits [vic.CellHeight]uint8, v, version int) (vic.Cell, error) {
	var color uint8
	mode := vic.HighRes
	if version == 0 {
		if v < 0 || v > 0x0f {
			return vic.Cell{}, fmt.Errorf("color byte %#02x out of range", v)
		}
		color = uint8(v) & 7
		if v&8 != 0 {
			mode = vic.Multicolor
		}
	} else {
		if v < 0 || v > 0x1f {
			return vic.Cell{}, fmt.Errorf("color byte %#02x out of range", v)
		}
		color = uint8(v) & 0x0f
		if v&0x10 != 0 {
			mode = vic.Multicolor
		}
	}
	return vic.NewCell(mode, bits, color)
}

func encodeCell(c vic.Cell) int {
	v := int(c.Color())
	if c.Mode() == vic.Multicolor {
		v |= 0x10
	}
	return v
}

// Encode writes f to w in the current version of the format.
func Encode(w io.Writer, f *File) error {
	m := f.Image
	bitmaps, indices := m.CharacterMap()
	characters := make([]*string, len(bitmaps))
	for i := range bitmaps {
		s := hex.EncodeToString(bitmaps[i][:])
		characters[i] = &s
	}
	videoColors := make([]int, 0, len(indices))
	for row := 0; row < m.Rows(); row++ {
		for column := 0; column < m.Columns(); column++ {
			videoColors = append(videoColors, encodeCell(m.Cell(column, row)))
		}
	}
	g := m.GlobalColors()
	colors, err := json.Marshal(colorsJSON{
		Background: g.Background,
		Border:     g.Border,
		Aux:        g.Aux,
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&fileJSON{
		Version:    Version,
		PaintColor: f.PaintColor,
		Image: imageJSON{
			Columns:     m.Columns(),
			Rows:        m.Rows(),
			Colors:      colors,
			VideoChars:  indices,
			VideoColors: videoColors,
			Characters:  characters,
		},
	})
}

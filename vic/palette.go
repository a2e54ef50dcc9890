package vic

import "image/color"

// PaletteSize is the number of colors the hardware can display.
// The character color generator only reaches the first half; the
// upper eight are available to the background and auxiliary
// registers.
const PaletteSize = 16

// The RGB values are the commonly used measurements of the chip's
// composite output.
var palette = [PaletteSize]color.RGBA{
	{0x00, 0x00, 0x00, 0xff},
	{0xff, 0xff, 0xff, 0xff},
	{0x6d, 0x23, 0x27, 0xff},
	{0xa0, 0xfe, 0xf8, 0xff},
	{0x8e, 0x3c, 0x97, 0xff},
	{0x7e, 0xda, 0x75, 0xff},
	{0x25, 0x23, 0x90, 0xff},
	{0xff, 0xff, 0x86, 0xff},
	{0xa4, 0x64, 0x3b, 0xff},
	{0xff, 0xc8, 0xa1, 0xff},
	{0xf2, 0xa7, 0xab, 0xff},
	{0xdb, 0xff, 0xff, 0xff},
	{0xff, 0xb4, 0xff, 0xff},
	{0xd7, 0xff, 0xce, 0xff},
	{0x9d, 0x9a, 0xff, 0xff},
	{0xff, 0xff, 0xc9, 0xff},
}

var colorNames = [PaletteSize]string{
	"Black",
	"White",
	"Red",
	"Cyan",
	"Purple",
	"Green",
	"Blue",
	"Yellow",
	"Orange",
	"Light Orange",
	"Pink",
	"Light Cyan",
	"Light Purple",
	"Light Green",
	"Light Blue",
	"Light Yellow",
}

// Color returns the RGB value of a palette index.
func Color(index uint8) color.RGBA {
	return palette[index]
}

// ColorName returns the conventional name of a palette index.
func ColorName(index uint8) string {
	return colorNames[index]
}

// Palette returns the hardware palette in index order, for use with
// the standard image packages.
func Palette() color.Palette {
	p := make(color.Palette, PaletteSize)
	for i := range palette {
		p[i] = palette[i]
	}
	return p
}

// Distance returns the squared distance between two colors in RGB
// space. Alpha is ignored, but as RGBA returns premultiplied values a
// transparent pixel compares as if composited on black.
func Distance(c1, c2 color.Color) uint32 {
	r1, g1, b1, _ := c1.RGBA()
	r2, g2, b2, _ := c2.RGBA()
	return sqDiff(r1>>8, r2>>8) + sqDiff(g1>>8, g2>>8) + sqDiff(b1>>8, b2>>8)
}

func sqDiff(x, y uint32) uint32 {
	d := int32(x) - int32(y)
	return uint32(d * d)
}

// NearestColor returns the palette index closest to c by Distance.
// Ties resolve to the lowest index.
func NearestColor(c color.Color) uint8 {
	bestSum := uint32(1<<32 - 1)
	var best uint8
	for i := range palette {
		if d := Distance(c, palette[i]); d < bestSum {
			bestSum, best = d, uint8(i)
		}
	}
	return best
}

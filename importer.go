package pixelpen

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	"github.com/disintegration/gift"
	"github.com/ericpauley/go-quantize/quantize"

	"github.com/vilcans/pixel-pen/vic"
)

// The color RAM keeps three bits of the character color, so the
// importer only hands out character colors a memory export can
// represent.
const maxImportColor = 7

// AspectMode says how the source image's pixels relate to the
// hardware's when the importer derives the canvas size.
type AspectMode int

const (
	// AspectNone maps source pixels straight onto hardware pixels.
	AspectNone AspectMode = iota
	// AspectMatch treats source pixels as square and stretches the
	// derived height so the image keeps its proportions on the
	// hardware's wide pixels.
	AspectMatch
	// AspectDouble treats the source as drawn with its pixels already
	// doubled, halving the derived height and sampling point by point
	// so pairs of source pixels collapse cleanly.
	AspectDouble
)

func (a AspectMode) String() string {
	switch a {
	case AspectMatch:
		return "match"
	case AspectDouble:
		return "double"
	}
	return "none"
}

// ParseAspectMode is the inverse of AspectMode.String.
func ParseAspectMode(s string) (AspectMode, error) {
	switch s {
	case "none":
		return AspectNone, nil
	case "match":
		return AspectMatch, nil
	case "double":
		return AspectDouble, nil
	}
	return 0, fmt.Errorf("unknown aspect mode %q", s)
}

// Filter selects the resampling kernel used to scale the source.
type Filter int

const (
	// FilterBox averages the covered area, the right default when
	// shrinking.
	FilterBox Filter = iota
	FilterNearest
	FilterLinear
	FilterCubic
	FilterLanczos
)

func (f Filter) String() string {
	switch f {
	case FilterNearest:
		return "nearest"
	case FilterLinear:
		return "linear"
	case FilterCubic:
		return "cubic"
	case FilterLanczos:
		return "lanczos"
	}
	return "box"
}

// ParseFilter is the inverse of Filter.String.
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "box":
		return FilterBox, nil
	case "nearest":
		return FilterNearest, nil
	case "linear":
		return FilterLinear, nil
	case "cubic":
		return FilterCubic, nil
	case "lanczos":
		return FilterLanczos, nil
	}
	return 0, fmt.Errorf("unknown scaling filter %q", s)
}

func (f Filter) resampling() gift.Resampling {
	switch f {
	case FilterNearest:
		return gift.NearestNeighborResampling
	case FilterLinear:
		return gift.LinearResampling
	case FilterCubic:
		return gift.CubicResampling
	case FilterLanczos:
		return gift.LanczosResampling
	}
	return gift.BoxResampling
}

// ModePolicy decides which mode imported cells get.
type ModePolicy int

const (
	// ModeAuto scores both modes per cell and keeps the better one.
	ModeAuto ModePolicy = iota
	// ModeHighRes forces every cell to high resolution.
	ModeHighRes
	// ModeMulticolor forces every cell to multicolor.
	ModeMulticolor
)

func (p ModePolicy) String() string {
	switch p {
	case ModeHighRes:
		return "highres"
	case ModeMulticolor:
		return "multicolor"
	}
	return "auto"
}

// ParseModePolicy is the inverse of ModePolicy.String.
func ParseModePolicy(s string) (ModePolicy, error) {
	switch s {
	case "auto":
		return ModeAuto, nil
	case "highres":
		return ModeHighRes, nil
	case "multicolor":
		return ModeMulticolor, nil
	}
	return 0, fmt.Errorf("unknown cell mode %q", s)
}

// ImportOptions configures the quantizing importer. The zero value
// derives the canvas size from the source at one source pixel per
// hardware pixel, scales with a box filter, picks the three shared
// registers from the image and chooses each cell's mode by error.
type ImportOptions struct {
	// Columns and Rows set the canvas size in cells; zero derives
	// them from the source size and the aspect mode.
	Columns int
	Rows    int

	Aspect AspectMode
	Filter Filter
	Mode   ModePolicy

	// Dither diffuses the quantization error against the full palette
	// before the cells are encoded.
	Dither bool

	// Colors fixes the three shared registers instead of choosing
	// them from the image.
	Colors *vic.GlobalColors
}

// Import converts an arbitrary image into a hardware constrained one:
// scale to the cell grid, choose the shared registers, then pick each
// cell's mode, character color and pixels by least squared RGB error.
// Ties go to the lowest palette index, and a mode tie to high
// resolution, so the same source and options always produce the same
// image.
func Import(src image.Image, o ImportOptions) (*vic.Image, error) {
	columns, rows := o.targetSize(src.Bounds())
	m, err := vic.NewImage(columns, rows)
	if err != nil {
		return nil, err
	}
	scaled := resample(src, columns*vic.CellWidth, rows*vic.CellHeight, o)
	if err := m.SetGlobalColors(o.globalColors(scaled)); err != nil {
		return nil, err
	}
	if o.Dither {
		ditherFloydSteinberg(scaled)
	}
	for row := 0; row < rows; row++ {
		for column := 0; column < columns; column++ {
			m.SetCell(column, row, encodeCell(scaled, column, row, m.GlobalColors(), o.Mode))
		}
	}
	return m, nil
}

// targetSize derives the canvas size in cells for dimensions the
// options leave at zero.
func (o ImportOptions) targetSize(b image.Rectangle) (columns, rows int) {
	columns, rows = o.Columns, o.Rows
	if columns > 0 && rows > 0 {
		return columns, rows
	}
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0, 0
	}
	if columns == 0 {
		columns = (w + vic.CellWidth - 1) / vic.CellWidth
	}
	if rows == 0 {
		height := float64(h) * float64(columns*vic.CellWidth) / float64(w)
		switch o.Aspect {
		case AspectMatch:
			height *= vic.PixelAspect
		case AspectDouble:
			height /= 2
		}
		rows = (int(math.Round(height)) + vic.CellHeight - 1) / vic.CellHeight
		if rows < 1 {
			rows = 1
		}
	}
	return columns, rows
}

// resample scales the source onto the exact pixel grid of the canvas.
// Point sampling overrides the configured filter when the source is
// declared pre-doubled or a dimension has to grow, so pixels are
// never smeared by interpolating upward.
func resample(src image.Image, width, height int, o ImportOptions) *image.RGBA {
	r := o.Filter.resampling()
	if o.Aspect == AspectDouble || width > src.Bounds().Dx() || height > src.Bounds().Dy() {
		r = gift.NearestNeighborResampling
	}
	g := gift.New(gift.Resize(width, height, r))
	dst := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

// globalColors picks the three shared registers: quantize the scaled
// image down to four dominant colors, snap them to the palette, and
// hand them out by pixel coverage. The most covering color becomes
// the background; the border register skips candidates its three bits
// cannot hold. Registers with no candidate left keep their defaults.
func (o ImportOptions) globalColors(m *image.RGBA) vic.GlobalColors {
	if o.Colors != nil {
		return *o.Colors
	}
	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, 4), m)
	if len(p) == 0 {
		return vic.DefaultColors
	}

	counts := make([]int, len(p))
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			counts[p.Index(m.RGBAAt(x, y))]++
		}
	}

	type candidate struct {
		index uint8
		count int
	}
	var candidates []candidate
	for i, c := range p {
		index := vic.NearestColor(c)
		merged := false
		for j := range candidates {
			if candidates[j].index == index {
				candidates[j].count += counts[i]
				merged = true
				break
			}
		}
		if !merged {
			candidates = append(candidates, candidate{index: index, count: counts[i]})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].index < candidates[j].index
	})

	colors := vic.DefaultColors
	colors.Background = candidates[0].index
	rest := candidates[1:]
	for i := range rest {
		if rest[i].index <= vic.MaxBorder {
			colors.Border = rest[i].index
			rest = append(rest[:i], rest[i+1:]...)
			break
		}
	}
	if len(rest) > 0 {
		colors.Aux = rest[0].index
	}
	return colors
}

// ditherFloydSteinberg diffuses the error of quantizing to the full
// palette over the image, in place.
func ditherFloydSteinberg(m *image.RGBA) {
	b := m.Bounds()
	p := image.NewPaletted(b, vic.Palette())
	draw.FloydSteinberg.Draw(p, b, m, b.Min)
	draw.Draw(m, b, p, b.Min, draw.Src)
}

// encodeCell picks the mode, character color and pixels for one cell
// by exhaustive scoring: every character color the color RAM can
// hold, over every pixel the cell covers, in both modes unless the
// policy forces one.
func encodeCell(m *image.RGBA, column, row int, colors vic.GlobalColors, policy ModePolicy) vic.Cell {
	left, top := column*vic.CellWidth, row*vic.CellHeight

	var multicolor bool
	var charColor uint8
	switch policy {
	case ModeHighRes:
		charColor, _ = bestHighRes(m, left, top, colors)
	case ModeMulticolor:
		multicolor = true
		charColor, _ = bestMulticolor(m, left, top, colors)
	default:
		hrColor, hrCost := bestHighRes(m, left, top, colors)
		mcColor, mcCost := bestMulticolor(m, left, top, colors)
		if mcCost < hrCost {
			multicolor, charColor = true, mcColor
		} else {
			charColor = hrColor
		}
	}
	if multicolor {
		return buildMulticolor(m, left, top, colors, charColor)
	}
	return buildHighRes(m, left, top, colors, charColor)
}

// bestHighRes returns the character color minimizing the high
// resolution rendering error for one cell, and that error.
func bestHighRes(m *image.RGBA, left, top int, colors vic.GlobalColors) (uint8, uint32) {
	background := vic.Color(colors.Background)
	bestCost := uint32(1<<32 - 1)
	var best uint8
	for c := uint8(0); c <= maxImportColor; c++ {
		char := vic.Color(c)
		var cost uint32
		for y := 0; y < vic.CellHeight; y++ {
			for x := 0; x < vic.CellWidth; x++ {
				px := m.RGBAAt(left+x, top+y)
				cost += min(vic.Distance(px, background), vic.Distance(px, char))
			}
		}
		if cost < bestCost {
			bestCost, best = cost, c
		}
	}
	return best, bestCost
}

// bestMulticolor is bestHighRes for multicolor cells: each
// double-width pixel costs the sum over the two source pixels it
// covers, against the best of the four colors it could show.
func bestMulticolor(m *image.RGBA, left, top int, colors vic.GlobalColors) (uint8, uint32) {
	shared := [3]color.RGBA{
		vic.Color(colors.Background),
		vic.Color(colors.Border),
		vic.Color(colors.Aux),
	}
	bestCost := uint32(1<<32 - 1)
	var best uint8
	for c := uint8(0); c <= maxImportColor; c++ {
		char := vic.Color(c)
		var cost uint32
		for y := 0; y < vic.CellHeight; y++ {
			for wx := 0; wx < vic.MulticolorWidth; wx++ {
				l := m.RGBAAt(left+2*wx, top+y)
				r := m.RGBAAt(left+2*wx+1, top+y)
				wide := vic.Distance(l, char) + vic.Distance(r, char)
				for _, s := range shared {
					if d := vic.Distance(l, s) + vic.Distance(r, s); d < wide {
						wide = d
					}
				}
				cost += wide
			}
		}
		if cost < bestCost {
			bestCost, best = cost, c
		}
	}
	return best, bestCost
}

func buildHighRes(m *image.RGBA, left, top int, colors vic.GlobalColors, charColor uint8) vic.Cell {
	background := vic.Color(colors.Background)
	char := vic.Color(charColor)
	var bits [vic.CellHeight]uint8
	for y := 0; y < vic.CellHeight; y++ {
		for x := 0; x < vic.CellWidth; x++ {
			px := m.RGBAAt(left+x, top+y)
			if vic.Distance(px, char) < vic.Distance(px, background) {
				bits[y] |= 0x80 >> x
			}
		}
	}
	cell, _ := vic.NewCell(vic.HighRes, bits, charColor)
	return cell
}

func buildMulticolor(m *image.RGBA, left, top int, colors vic.GlobalColors, charColor uint8) vic.Cell {
	// Indexed by PixelColor, so a distance tie picks the lowest slot.
	slots := [4]color.RGBA{
		vic.Color(colors.Background),
		vic.Color(colors.Border),
		vic.Color(charColor),
		vic.Color(colors.Aux),
	}
	var bits [vic.CellHeight]uint8
	for y := 0; y < vic.CellHeight; y++ {
		for wx := 0; wx < vic.MulticolorWidth; wx++ {
			l := m.RGBAAt(left+2*wx, top+y)
			r := m.RGBAAt(left+2*wx+1, top+y)
			bestCost := uint32(1<<32 - 1)
			var slot uint8
			for s := uint8(0); s < 4; s++ {
				if d := vic.Distance(l, slots[s]) + vic.Distance(r, slots[s]); d < bestCost {
					bestCost, slot = d, s
				}
			}
			bits[y] |= slot << (6 - 2*wx)
		}
	}
	cell, _ := vic.NewCell(vic.Multicolor, bits, charColor)
	return cell
}

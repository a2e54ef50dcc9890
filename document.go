package pixelpen

import (
	"image"

	"github.com/vilcans/pixel-pen/vic"
)

// Document is one image being edited: the canvas, its undo history,
// the active brush, the selected paint color and the file path the
// document came from or was last saved to.
//
// A document owns its state exclusively and is confined to a single
// goroutine; nothing here locks. Two documents never share anything.
type Document struct {
	img        *vic.Image
	history    History
	brush      *Brush
	paintColor uint8
	path       string
}

// NewDocument returns a document with an empty canvas the size of the
// stock text screen.
func NewDocument() *Document {
	return FromImage(vic.NewScreen())
}

// FromImage returns a document editing the given canvas.
func FromImage(img *vic.Image) *Document {
	return &Document{
		img:        img,
		brush:      DefaultBrush(),
		paintColor: 1,
	}
}

// Image returns the document's canvas. Callers must treat it as read
// only: edits go through Apply so they can be undone.
func (d *Document) Image() *vic.Image {
	return d.img
}

// Apply runs one command through the document's history.
func (d *Document) Apply(c Command) error {
	return d.history.Do(d, c)
}

// Undo reverts the most recent applied command and reports whether
// there was one.
func (d *Document) Undo() bool {
	return d.history.Undo(d)
}

// Redo reapplies the most recently undone command and reports whether
// there was one.
func (d *Document) Redo() bool {
	return d.history.Redo(d)
}

// CanUndo reports whether Undo would do anything.
func (d *Document) CanUndo() bool {
	return d.history.CanUndo()
}

// CanRedo reports whether Redo would do anything.
func (d *Document) CanRedo() bool {
	return d.history.CanRedo()
}

// Brush returns the document's active brush.
func (d *Document) Brush() *Brush {
	return d.brush
}

// Grab captures the cells of r, in cell coordinates and clipped to
// the canvas, as the document's new brush. Grabbing reads the canvas
// without changing it, so it is not an undoable command; a rectangle
// entirely outside the canvas leaves the previous brush in place. The
// new brush is returned.
func (d *Document) Grab(r image.Rectangle) *Brush {
	if b := GrabBrush(d.img, r); b != nil {
		d.brush = b
	}
	return d.brush
}

// PaintColor returns the palette index selected for painting. It is
// saved with the document but has no effect on the canvas.
func (d *Document) PaintColor() uint8 {
	return d.paintColor
}

// SetPaintColor selects the palette index for painting.
func (d *Document) SetPaintColor(color uint8) error {
	if color >= vic.PaletteSize {
		return vic.ErrIllegalColor
	}
	d.paintColor = color
	return nil
}

// Path returns where the document was loaded from or last saved to,
// or "" for a document that has never touched a file.
func (d *Document) Path() string {
	return d.path
}

// SetPath records the document's file path.
func (d *Document) SetPath(path string) {
	d.path = path
}

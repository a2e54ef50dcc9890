/*
Package pixelpen is the core of a paint program for the Commodore
VIC-20. It edits images under the real hardware's constraints: a grid
of 8 by 8 pixel cells, each either high resolution or multicolor,
sharing three image-wide color registers with a border register that
only reaches half the palette.

A Document pairs a canvas with an undo history, a cell brush and the
file path it lives at. Edits are Commands: reversible values applied
through the history, validated up front so a failed edit changes
nothing. Import converts arbitrary raster images onto the cell grid
by least squared error. The vic package holds the display model; the
native, fluff and raw packages the file formats.

Everything runs on the calling goroutine and each document owns its
state exclusively, so two documents never contend for anything.
*/
package pixelpen

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/vilcans/pixel-pen/vic"
)

// Editor is a set of open documents and the one currently being
// edited. A failed open or import leaves the existing documents
// untouched.
type Editor struct {
	docs   []*Document
	active int
	logger *zap.Logger
}

// New returns an editor with no open documents. A nil logger
// disables logging.
func New(logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{logger: logger}
}

// NewDocument opens an empty document and makes it active.
func (e *Editor) NewDocument() *Document {
	doc := NewDocument()
	e.add(doc)
	return doc
}

// Open loads a file in any supported format into a new document and
// makes it active.
func (e *Editor) Open(path string) (*Document, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	e.logger.Info("opened",
		zap.String("path", path),
		zap.String("image", doc.Image().Info()))
	e.add(doc)
	return doc, nil
}

// ImportFile quantizes a raster image file into a new active
// document.
func (e *Editor) ImportFile(path string, o ImportOptions) (*Document, error) {
	doc, err := ImportFile(path, o)
	if err != nil {
		return nil, err
	}
	g := doc.Image().GlobalColors()
	e.logger.Info("imported",
		zap.String("path", path),
		zap.String("image", doc.Image().Info()),
		zap.Uint8("background", g.Background),
		zap.Uint8("border", g.Border),
		zap.Uint8("aux", g.Aux))
	e.add(doc)
	return doc, nil
}

// Save writes a document in the format its file name extension picks
// and, for native saves, remembers the path on the document.
func (e *Editor) Save(doc *Document, path string) error {
	if err := Save(doc, path); err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), NativeExtension) {
		doc.SetPath(path)
	}
	e.logger.Info("saved", zap.String("path", path))
	return nil
}

// Export writes a document like Save but renders raster image
// targets with the given view. The document's path is never touched.
func (e *Editor) Export(doc *Document, path string, view vic.View) error {
	if err := Export(doc, path, view); err != nil {
		return err
	}
	e.logger.Info("exported", zap.String("path", path))
	return nil
}

// Active returns the document being edited, or nil when none is
// open.
func (e *Editor) Active() *Document {
	if len(e.docs) == 0 {
		return nil
	}
	return e.docs[e.active]
}

// Documents returns the open documents in opening order.
func (e *Editor) Documents() []*Document {
	return e.docs
}

// SetActive selects which document is being edited. Indices outside
// the document list are ignored.
func (e *Editor) SetActive(i int) {
	if i >= 0 && i < len(e.docs) {
		e.active = i
	}
}

// Close removes document i from the editor. When it was the active
// one, its nearest remaining neighbor becomes active.
func (e *Editor) Close(i int) {
	if i < 0 || i >= len(e.docs) {
		return
	}
	e.docs = append(e.docs[:i], e.docs[i+1:]...)
	if e.active > i || (e.active == i && e.active == len(e.docs)) {
		e.active--
		if e.active < 0 {
			e.active = 0
		}
	}
}

func (e *Editor) add(doc *Document) {
	e.docs = append(e.docs, doc)
	e.active = len(e.docs) - 1
}

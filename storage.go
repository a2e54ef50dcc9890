package pixelpen

// The raster codecs are imported for their encoders; importing them
// also registers their decoders with image.Decode, which is what
// Identify and ImportFile sniff with.
import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/vilcans/pixel-pen/fluff"
	"github.com/vilcans/pixel-pen/native"
	"github.com/vilcans/pixel-pen/raw"
	"github.com/vilcans/pixel-pen/vic"
)

// NativeExtension is the file name extension of the editor's own
// format.
const NativeExtension = ".pixelpen"

// RawExtension is the file name extension memory exports are saved
// under.
const RawExtension = ".bin"

var (
	// ErrUnsupportedFormat is returned for files in no format the
	// editor can read or write where it was asked to.
	ErrUnsupportedFormat = errors.New("pixelpen: unsupported file format")

	// ErrDecode is returned when a source image is recognized but its
	// pixel data cannot be decoded.
	ErrDecode = errors.New("pixelpen: broken image data")
)

// Format identifies how a file on disk is encoded.
type Format int

const (
	// FormatNative is the editor's own JSON format.
	FormatNative Format = iota
	// FormatFluff is the Fluff64 container, read only.
	FormatFluff
	// FormatImage is any standard raster image the decoders
	// registered here can read.
	FormatImage
)

// Identify sniffs the format of a file from its content. Fluff64
// files declare themselves with a magic string and raster images with
// their signatures; anything else is taken for the native format,
// which has no signature of its own.
func Identify(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	header := make([]byte, len(fluff.Magic))
	if _, err := io.ReadFull(f, header); err == nil && bytes.Equal(header, []byte(fluff.Magic)) {
		return FormatFluff, nil
	} else if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	if _, _, err := image.DecodeConfig(f); err == nil {
		return FormatImage, nil
	}
	return FormatNative, nil
}

// Load reads a file in any supported format into a new document.
// Raster images are imported with default options; use ImportFile
// for control over the conversion. Only a document loaded from the
// native format remembers its path, since only that format can be
// saved back.
func Load(path string) (*Document, error) {
	format, err := Identify(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatFluff:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		m, err := fluff.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return FromImage(m), nil
	case FormatImage:
		return ImportFile(path, ImportOptions{})
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	file, err := native.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc := FromImage(file.Image)
	doc.paintColor = file.PaintColor
	doc.path = path
	return doc, nil
}

// ImportFile decodes a raster image file and quantizes it into a new
// document.
func ImportFile(path string, o ImportOptions) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
		}
		return nil, fmt.Errorf("%s: %w: %v", path, ErrDecode, err)
	}
	m, err := Import(src, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return FromImage(m), nil
}

// Save writes the document to path, picking the codec from the file
// name extension: the native format, the raw memory layout for
// RawExtension, or a raster image encoder. Read only formats and
// unknown extensions fail with ErrUnsupportedFormat.
func Save(doc *Document, path string) error {
	return Export(doc, path, vic.ViewNormal)
}

// Export is Save with control over how raster image targets are
// rendered; the raw view draws the diagnostic colors instead of the
// palette. Formats that store cells rather than pixels ignore the
// view.
func Export(doc *Document, path string, view vic.View) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case NativeExtension:
		return writeFile(path, func(w io.Writer) error {
			return native.Encode(w, &native.File{
				Image:      doc.img,
				PaintColor: doc.paintColor,
			})
		})
	case RawExtension:
		return writeFile(path, func(w io.Writer) error {
			return raw.Encode(w, doc.img)
		})
	case fluff.Extension:
		return fmt.Errorf("%s: %w: fluff files are read only", path, ErrUnsupportedFormat)
	case ".png", ".gif", ".jpg", ".jpeg", ".bmp":
		rendered := doc.img.Render(view)
		return writeFile(path, func(w io.Writer) error {
			switch ext {
			case ".gif":
				return gif.Encode(w, rendered, &gif.Options{NumColors: 16})
			case ".jpg", ".jpeg":
				return jpeg.Encode(w, rendered, nil)
			case ".bmp":
				return bmp.Encode(w, rendered)
			}
			return png.Encode(w, rendered)
		})
	}
	return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

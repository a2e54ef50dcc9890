package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	pixelpen "github.com/vilcans/pixel-pen"
	"github.com/vilcans/pixel-pen/raw"
	"github.com/vilcans/pixel-pen/vic"
)

var version = "dev"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func importOptions(c *cli.Context) (pixelpen.ImportOptions, error) {
	var o pixelpen.ImportOptions
	var err error
	if o.Aspect, err = pixelpen.ParseAspectMode(c.String("aspect")); err != nil {
		return o, err
	}
	if o.Filter, err = pixelpen.ParseFilter(c.String("filter")); err != nil {
		return o, err
	}
	if o.Mode, err = pixelpen.ParseModePolicy(c.String("cell-mode")); err != nil {
		return o, err
	}
	o.Columns = c.Int("columns")
	o.Rows = c.Int("rows")
	o.Dither = c.Bool("dither")
	if c.IsSet("background") || c.IsSet("border") || c.IsSet("aux") {
		colors := vic.DefaultColors
		for _, r := range []struct {
			name  string
			value *uint8
		}{
			{"background", &colors.Background},
			{"border", &colors.Border},
			{"aux", &colors.Aux},
		} {
			if !c.IsSet(r.name) {
				continue
			}
			v := c.Int(r.name)
			if v < 0 || v >= vic.PaletteSize {
				return o, fmt.Errorf("%s color %d out of range", r.name, v)
			}
			*r.value = uint8(v)
		}
		o.Colors = &colors
	}
	return o, nil
}

func save(editor *pixelpen.Editor, c *cli.Context, path string) error {
	doc := editor.Active()
	if c.Bool("charmap") && strings.EqualFold(filepath.Ext(path), pixelpen.RawExtension) {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := raw.EncodeCharmap(f, doc.Image()); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	view := vic.ViewNormal
	if c.Bool("raw-view") {
		view = vic.ViewRaw
	}
	return editor.Export(doc, path, view)
}

func run(c *cli.Context) error {
	logger, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer logger.Sync() //nolint:errcheck

	editor := pixelpen.New(logger)

	for _, path := range c.Args().Slice() {
		if _, err := editor.Open(path); err != nil {
			return cli.Exit(fmt.Sprintf("could not load file %s: %v", path, err), 1)
		}
	}
	if path := c.String("import"); path != "" {
		o, err := importOptions(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		if _, err := editor.ImportFile(path, o); err != nil {
			return cli.Exit(fmt.Sprintf("could not import %s: %v", path, err), 1)
		}
	}
	if editor.Active() == nil {
		editor.NewDocument()
	}

	if path := c.String("save"); path != "" {
		if err := save(editor, c, path); err != nil {
			return cli.Exit(fmt.Sprintf("could not save %s: %v", path, err), 1)
		}
		return nil
	}

	for _, doc := range editor.Documents() {
		name := doc.Path()
		if name == "" {
			name = "untitled"
		}
		fmt.Printf("%s: %s\n", name, doc.Image().Info())
	}
	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "pixelpen"
	app.Usage = "actual 8 bit graphics"
	app.Version = version
	app.ArgsUsage = "[FILE...]"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "import",
			Aliases: []string{"i"},
			Usage:   "quantize image `FILE` into a new document",
		},
		&cli.StringFlag{
			Name:    "save",
			Aliases: []string{"s"},
			Usage:   "save the active document to `FILE` and exit",
		},
		&cli.IntFlag{
			Name:  "columns",
			Usage: "import canvas width in cells, 0 derives it from the source",
		},
		&cli.IntFlag{
			Name:  "rows",
			Usage: "import canvas height in cells, 0 derives it from the source",
		},
		&cli.StringFlag{
			Name:    "aspect",
			Value:   "none",
			Usage:   "source pixel aspect: none, match or double",
			EnvVars: []string{"PIXELPEN_ASPECT"},
		},
		&cli.StringFlag{
			Name:    "filter",
			Value:   "box",
			Usage:   "import scaling filter: box, nearest, linear, cubic or lanczos",
			EnvVars: []string{"PIXELPEN_FILTER"},
		},
		&cli.StringFlag{
			Name:    "cell-mode",
			Value:   "auto",
			Usage:   "imported cell mode: auto, highres or multicolor",
			EnvVars: []string{"PIXELPEN_CELL_MODE"},
		},
		&cli.BoolFlag{
			Name:  "dither",
			Usage: "diffuse the quantization error during import",
		},
		&cli.IntFlag{
			Name:  "background",
			Usage: "fix the background register for import instead of choosing it",
		},
		&cli.IntFlag{
			Name:  "border",
			Usage: "fix the border register for import instead of choosing it",
		},
		&cli.IntFlag{
			Name:  "aux",
			Usage: "fix the auxiliary register for import instead of choosing it",
		},
		&cli.BoolFlag{
			Name:  "raw-view",
			Usage: "render image exports in the diagnostic raw colors",
		},
		&cli.BoolFlag{
			Name:  "charmap",
			Usage: "write raw exports as video matrix, colors and character set",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
			EnvVars: []string{"PIXELPEN_VERBOSE"},
		},
	}

	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

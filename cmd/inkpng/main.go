package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bodgit/inkpng"
	"github.com/bodgit/inkpng/bundle"
	"github.com/bodgit/inkpng/png"
	"github.com/bodgit/inkpng/pnm"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const defaultDB = "inkpng.db"

var errMode = errors.New("unknown mode")

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) zerolog.Logger {
	level := zerolog.WarnLevel
	if c.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func pngOptions(c *cli.Context) []png.Option {
	return []png.Option{
		png.WithChecksum(!c.Bool("no-crc")),
		png.WithLogger(newLogger(c)),
	}
}

func newInkPNG(c *cli.Context) (*inkpng.InkPNG, *inkpng.Catalog, error) {
	catalog, err := inkpng.NewCatalog(c.String("db"))
	if err != nil {
		return nil, nil, err
	}

	return inkpng.New(catalog, newLogger(c),
		inkpng.WithPanel(c.Int("width"), c.Int("height")),
		inkpng.WithColors(c.Int("colors")),
		inkpng.WithChecksum(!c.Bool("no-crc")),
	), catalog, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

func create(file string) (io.WriteCloser, error) {
	if file == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(file)
}

// writeFile runs fn against file, or stdout if it is "-", and reports any
// error from closing it.
func writeFile(file string, fn func(io.Writer) error) (err error) {
	w, err := create(file)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	return fn(w)
}

func info(c *cli.Context) error {
	r, err := png.Open(c.Args().First(), pngOptions(c)...)
	if err != nil {
		return err
	}
	defer r.Close()

	h, err := r.Header()
	if err != nil {
		return err
	}

	fmt.Printf("Width:       %d\n", h.Width)
	fmt.Printf("Height:      %d\n", h.Height)
	fmt.Printf("Bit depth:   %d\n", h.BitDepth)
	fmt.Printf("Color type:  %d\n", h.ColorType)
	fmt.Printf("Interlace:   %d\n", h.InterlaceMethod)
	fmt.Printf("Planes:      %d\n", h.Planes())
	fmt.Printf("Greyscale:   %t\n", h.Greyscale())
	fmt.Printf("Alpha:       %t\n", h.Alpha())

	img, err := r.Read()
	if err != nil {
		return err
	}
	if img.Meta.Palette != nil {
		fmt.Printf("Palette:     %d entries\n", len(img.Meta.Palette))
	}

	var rows int
	for img.Rows.Next() {
		rows++
	}
	if err := img.Rows.Err(); err != nil {
		return err
	}
	fmt.Printf("Rows:        %d\n", rows)

	return nil
}

func chunks(c *cli.Context) error {
	r, err := png.Open(c.Args().First(), pngOptions(c)...)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		typ, data, err := r.Chunk("")
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%d\n", typ, len(data))
	}
}

func convert(c *cli.Context) error {
	r, err := png.Open(c.Args().Get(0), pngOptions(c)...)
	if err != nil {
		return err
	}
	defer r.Close()

	var read func() (*png.Image, error)
	switch c.String("mode") {
	case "direct":
		read = r.AsDirect
	case "rgb":
		read = r.AsRGB
	case "rgba":
		read = r.AsRGBA
	case "rgb8":
		read = r.AsRGB8
	case "rgba8":
		read = r.AsRGBA8
	default:
		return fmt.Errorf("%w: %s", errMode, c.String("mode"))
	}

	img, err := read()
	if err != nil {
		return err
	}

	return writeFile(c.Args().Get(1), func(w io.Writer) error {
		return pnm.Encode(w, img)
	})
}

func render(c *cli.Context) error {
	i, catalog, err := newInkPNG(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	return writeFile(c.Args().Get(1), func(w io.Writer) error {
		_, err := i.Show(c.Args().Get(0), w)
		return err
	})
}

func scan(c *cli.Context) error {
	i, catalog, err := newInkPNG(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	return i.Scan(c.Args().First(), c.Int("workers"))
}

func export(c *cli.Context) error {
	i, catalog, err := newInkPNG(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	file := c.Args().First()
	if file == "" {
		file = bundle.Filename
	}
	return writeFile(file, func(w io.Writer) error {
		_, err := i.Export(w)
		return err
	})
}

func list(c *cli.Context) error {
	catalog, err := inkpng.NewCatalog(c.String("db"))
	if err != nil {
		return err
	}
	defer catalog.Close()

	records, err := catalog.Records()
	if err != nil {
		return err
	}
	for _, rec := range records {
		fmt.Printf("%s\t%dx%d\t%s\n", rec.CRC, rec.Header.Width, rec.Header.Height, rec.Path)
	}

	return nil
}

// action wraps fn with the argument count check and exit code handling
// every command shares.
func action(args int, fn func(*cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() < args {
			cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
		}
		if err := fn(c); err != nil {
			return cli.NewExitError(err, 1)
		}
		return nil
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "inkpng"
	app.Usage = "PNG decoding and e-paper rendering utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"INKPNG_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
		&cli.BoolFlag{
			Name:    "no-crc",
			EnvVars: []string{"INKPNG_NO_CRC"},
			Usage:   "skip chunk checksum verification",
		},
	}

	panelFlags := []cli.Flag{
		&cli.IntFlag{
			Name:    "width",
			EnvVars: []string{"INKPNG_WIDTH"},
			Value:   inkpng.DefaultWidth,
			Usage:   "panel width in pixels",
		},
		&cli.IntFlag{
			Name:    "height",
			EnvVars: []string{"INKPNG_HEIGHT"},
			Value:   inkpng.DefaultHeight,
			Usage:   "panel height in pixels",
		},
		&cli.IntFlag{
			Name:    "colors",
			EnvVars: []string{"INKPNG_COLORS"},
			Usage:   "reduce to this many colors before thresholding",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Show the header and layout of a PNG file",
			ArgsUsage: "FILE",
			Action:    action(1, info),
		},
		{
			Name:      "chunks",
			Usage:     "List the chunks of a PNG file",
			ArgsUsage: "FILE",
			Action:    action(1, chunks),
		},
		{
			Name:      "convert",
			Usage:     "Convert a PNG file to PNM",
			ArgsUsage: "FILE OUTPUT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "mode",
					Value: "rgb8",
					Usage: "pixel format, one of direct, rgb, rgba, rgb8 or rgba8",
				},
			},
			Action: action(2, convert),
		},
		{
			Name:      "render",
			Usage:     "Render a PNG file as an e-paper frame",
			ArgsUsage: "FILE OUTPUT",
			Flags:     panelFlags,
			Action:    action(2, render),
		},
		{
			Name:      "scan",
			Usage:     "Scan filesystem and catalog rendered frames",
			ArgsUsage: "DIRECTORY",
			Flags: append([]cli.Flag{
				&cli.IntFlag{
					Name:    "workers",
					EnvVars: []string{"INKPNG_WORKERS"},
					Value:   inkpng.DefaultWorkers,
					Usage:   "number of files to render concurrently",
				},
			}, panelFlags...),
			Action: action(1, scan),
		},
		{
			Name:      "export",
			Usage:     "Write cataloged frames to a bundle for the panel",
			ArgsUsage: "[OUTPUT]",
			Flags:     panelFlags,
			Action:    action(0, export),
		},
		{
			Name:   "list",
			Usage:  "List cataloged files",
			Action: action(0, list),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

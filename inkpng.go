/*
Package inkpng renders PNG images as frames for a three colour e-paper
panel and keeps a catalog of what it has rendered, so that an image seen
before can be shown again without decoding it.
*/
package inkpng

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/bodgit/inkpng/png"
	"github.com/bodgit/inkpng/render"
	"github.com/rs/zerolog"
)

// Dimensions of the panel used unless overridden with WithPanel.
const (
	DefaultWidth  = 212
	DefaultHeight = 104
)

// InkPNG renders PNG images for a panel of a fixed size.
type InkPNG struct {
	catalog *Catalog
	logger  zerolog.Logger

	width    int
	height   int
	colors   int
	checksum bool
}

// An Option configures an InkPNG.
type Option func(*InkPNG)

// WithPanel sets the dimensions of the panel frames are rendered for.
func WithPanel(width, height int) Option {
	return func(i *InkPNG) {
		i.width, i.height = width, height
	}
}

// WithColors reduces images to at most n colours before thresholding,
// which cleans up anti-aliased edges. Zero disables the reduction.
func WithColors(n int) Option {
	return func(i *InkPNG) {
		i.colors = n
	}
}

// WithChecksum enables or disables verification of PNG chunk checksums.
func WithChecksum(verify bool) Option {
	return func(i *InkPNG) {
		i.checksum = verify
	}
}

// New returns an InkPNG. The catalog may be nil, in which case every
// image is rendered afresh and nothing is recorded.
func New(catalog *Catalog, logger zerolog.Logger, opts ...Option) *InkPNG {
	i := &InkPNG{
		catalog:  catalog,
		logger:   logger,
		width:    DefaultWidth,
		height:   DefaultHeight,
		checksum: true,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Panel returns the dimensions of the panel.
func (i *InkPNG) Panel() (int, int) {
	return i.width, i.height
}

func (i *InkPNG) pngOptions() []png.Option {
	return []png.Option{
		png.WithChecksum(i.checksum),
		png.WithLogger(i.logger),
	}
}

func (i *InkPNG) draw(r *png.Reader, h png.Header) (*image.Paletted, error) {
	// An image already the size of the panel is thresholded a row at a
	// time without holding the decoded image
	if int(h.Width) == i.width && int(h.Height) == i.height && i.colors == 0 {
		img, err := r.AsRGBA8()
		if err != nil {
			return nil, err
		}
		return render.Draw(img)
	}

	src, err := r.Image()
	if err != nil {
		return nil, err
	}
	m := render.Fit(src, i.width, i.height)
	if i.colors > 0 {
		m = render.Quantize(m, i.colors)
	}
	return render.ThresholdImage(m), nil
}

func (i *InkPNG) renderFile(file, crc string) (Record, []byte, error) {
	r, err := png.Open(file, i.pngOptions()...)
	if err != nil {
		return Record{}, nil, err
	}
	defer r.Close()

	h, err := r.Header()
	if err != nil {
		return Record{}, nil, fmt.Errorf("%s: %w", file, err)
	}

	m, err := i.draw(r, h)
	if err != nil {
		return Record{}, nil, fmt.Errorf("%s: %w", file, err)
	}

	b := new(bytes.Buffer)
	if err := render.Encode(b, m); err != nil {
		return Record{}, nil, err
	}

	i.logger.Debug().Str("file", file).Str("crc", crc).Uint32("width", h.Width).Uint32("height", h.Height).Msg("rendered")

	return Record{
		Path:   file,
		CRC:    crc,
		Header: h,
	}, b.Bytes(), nil
}

// RenderFile decodes the named PNG file and renders it as a frame,
// returning a record describing the file alongside the frame.
func (i *InkPNG) RenderFile(file string) (Record, []byte, error) {
	crc, err := crcFile(file)
	if err != nil {
		return Record{}, nil, err
	}
	return i.renderFile(file, crc)
}

// Show writes the frame for the named PNG file to w. If the catalog
// already holds a frame for a file with the same checksum that is
// written instead, otherwise the file is rendered and added to the
// catalog. It reports whether the file was rendered.
func (i *InkPNG) Show(file string, w io.Writer) (bool, error) {
	crc, err := crcFile(file)
	if err != nil {
		return false, err
	}

	if i.catalog != nil {
		frame, err := i.catalog.FindFrameByCRC(crc, i.width, i.height)
		if err != nil {
			return false, err
		}
		if frame != nil {
			i.logger.Debug().Str("file", file).Str("crc", crc).Msg("using cataloged frame")
			_, err := w.Write(frame)
			return false, err
		}
	}

	rec, frame, err := i.renderFile(file, crc)
	if err != nil {
		return false, err
	}

	if i.catalog != nil {
		if err := i.catalog.AddImage(rec, Frame{Width: i.width, Height: i.height, Data: frame}); err != nil {
			return false, err
		}
	}

	_, err = w.Write(frame)
	return true, err
}

package png

import (
	"bufio"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Metadata describes the pixels returned alongside it. After a conversion
// it reflects the converted representation rather than the source image,
// so for example Alpha is true for the result of AsRGBA even if the
// source had no alpha channel.
type Metadata struct {
	Greyscale bool
	Alpha     bool
	Planes    int
	BitDepth  int
	Interlace int
	Width     int
	Height    int

	// Palette is only set for indexed source images
	Palette [][]uint8
}

// Size returns the width and height of the image.
func (m Metadata) Size() (int, int) {
	return m.Width, m.Height
}

// Image is a decoded image: its dimensions, its rows of pixels and the
// metadata describing them.
type Image struct {
	Width  int
	Height int
	Rows   Rows
	Meta   Metadata
}

// Flat drains the remaining rows into a single slice of samples, row after
// row. It returns the first error met while decoding.
func (img *Image) Flat() ([]uint16, error) {
	pix := make([]uint16, 0, img.Width*img.Height*img.Meta.Planes)
	rows := 0
	for img.Rows.Next() {
		pix = append(pix, img.Rows.Row()...)
		rows++
	}
	if err := img.Rows.Err(); err != nil {
		return nil, err
	}
	if rows != img.Height {
		return nil, errNotEnough
	}

	return pix, nil
}

// Reader decodes a single PNG stream. Only one of Read, AsDirect, AsRGB,
// AsRGBA, AsRGB8 or AsRGBA8 may be called.
type Reader struct {
	cr     chunkReader
	closer io.Closer
	logger zerolog.Logger

	ready    bool
	hdr      *Header
	plte     []byte
	consumed bool
}

// An Option configures a Reader.
type Option func(*Reader)

// WithChecksum enables or disables verification of the CRC stored after
// each chunk. Verification is enabled by default.
func WithChecksum(verify bool) Option {
	return func(r *Reader) {
		r.cr.verify = verify
	}
}

// WithLogger sets the logger used to report skipped chunks and other
// decoding details.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// NewReader returns a Reader decoding the PNG stream read from r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	reader := &Reader{
		cr: chunkReader{
			r:      r,
			verify: true,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Open opens the named file for decoding. The file is closed as soon as
// all of its chunks have been read, or on the first error; Close should
// still be called if the Reader is abandoned before then.
func Open(file string, opts ...Option) (*Reader, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	r := NewReader(bufio.NewReader(f), opts...)
	r.closer = f
	return r, nil
}

// Close releases the underlying file, if any. It is safe to call more
// than once.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}

func (r *Reader) release() {
	if err := r.Close(); err != nil {
		r.logger.Warn().Err(err).Msg("closing input")
	}
}

// Chunk returns the type and data of the next chunk. If seek is not empty
// chunks of other types are skipped, which may skip chunks the caller
// cares about as PNG only loosely orders them. After IEND has been
// returned, Chunk returns io.EOF. Chunk should not be mixed with the read
// methods.
func (r *Reader) Chunk(seek string) (string, []byte, error) {
	typ, data, err := r.cr.seek(seek)
	if err != nil {
		r.release()
	}
	return typ, data, err
}

// preamble processes every chunk before the first IDAT chunk, leaving
// that chunk unread.
func (r *Reader) preamble() error {
	if r.ready {
		return nil
	}

	for {
		h, err := r.cr.peek()
		if err == io.EOF {
			return errNoImageData
		}
		if err != nil {
			return err
		}
		if kindOf(h.typ) == kindIDAT {
			if r.hdr == nil {
				return errNoIHDR
			}
			r.ready = true
			return nil
		}
		if err := r.processChunk(); err != nil {
			return err
		}
	}
}

func (r *Reader) processChunk() error {
	typ, data, err := r.cr.next()
	if err != nil {
		return err
	}

	kind := kindOf(typ)
	if r.hdr == nil && kind != kindIHDR {
		return errNoIHDR
	}

	switch kind {
	case kindIHDR:
		if r.hdr != nil {
			return errMultipleIHDR
		}
		h, err := parseIHDR(data)
		if err != nil {
			return err
		}
		r.hdr = &h
		r.logger.Debug().
			Uint32("width", h.Width).
			Uint32("height", h.Height).
			Uint8("bitdepth", h.BitDepth).
			Uint8("colortype", h.ColorType).
			Uint8("interlace", h.InterlaceMethod).
			Msg("read header")
	case kindPLTE:
		if r.plte != nil {
			return errMultiplePLTE
		}
		if err := checkPLTE(*r.hdr, data); err != nil {
			return err
		}
		r.plte = data
		r.logger.Debug().Int("entries", len(data)/3).Msg("read palette")
	case kindIEND:
		return errNoImageData
	default:
		r.logger.Debug().Str("type", typ).Int("length", len(data)).Msg("skipping chunk")
	}

	return nil
}

// Header reads the preamble, if not already done, and returns the image
// header.
func (r *Reader) Header() (Header, error) {
	if err := r.preamble(); err != nil {
		r.release()
		return Header{}, err
	}
	return *r.hdr, nil
}

// Palette returns the entries of the PLTE chunk as 3-tuples, or 4-tuples
// with an opaque alpha value when alpha is true.
func (r *Reader) Palette(alpha bool) ([][]uint8, error) {
	if _, err := r.Header(); err != nil {
		return nil, err
	}
	if r.plte == nil {
		return nil, errNoPalette
	}
	return paletteEntries(r.plte, alpha), nil
}

// Read decodes the image. Rows hold the samples as stored: palette
// indices for indexed images and the source bit depth throughout.
//
// Non-interlaced rows are reconstructed as they are pulled. Interlaced
// images are reconstructed in full before Read returns.
func (r *Reader) Read() (*Image, error) {
	if r.consumed {
		return nil, errConsumed
	}
	r.consumed = true

	h, err := r.Header()
	if err != nil {
		return nil, err
	}

	zr, err := r.inflate()
	// Every chunk up to IEND has been read by now
	r.release()
	if err != nil {
		return nil, err
	}

	img := &Image{
		Width:  int(h.Width),
		Height: int(h.Height),
		Meta: Metadata{
			Greyscale: h.Greyscale(),
			Alpha:     h.Alpha(),
			Planes:    h.Planes(),
			BitDepth:  int(h.BitDepth),
			Interlace: int(h.InterlaceMethod),
			Width:     int(h.Width),
			Height:    int(h.Height),
		},
	}
	if h.Indexed() {
		img.Meta.Palette = paletteEntries(r.plte, false)
	}

	if h.Interlaced() {
		raster, err := readInterlaced(h, zr)
		if err != nil {
			return nil, err
		}
		img.Rows = &rasterRows{
			raster: raster,
			vpr:    img.Width * h.Planes(),
			height: img.Height,
		}
	} else {
		img.Rows = newStraightRows(h, zr)
	}

	return img, nil
}

// AsDirect decodes the image with palette indices replaced by their RGB
// colour. Other images are returned as by Read.
func (r *Reader) AsDirect() (*Image, error) {
	img, err := r.Read()
	if err != nil {
		return nil, err
	}
	if !r.hdr.Indexed() {
		return img, nil
	}

	img.Meta.Greyscale = false
	img.Meta.Alpha = false
	img.Meta.BitDepth = 8
	img.Meta.Planes = 3
	img.Rows = &convertRows{
		src: img.Rows,
		fn:  expandPalette(paletteEntries(r.plte, false)),
	}

	return img, nil
}

// AsRGB decodes the image as RGB samples, expanding greyscale and indexed
// images. Images with an alpha channel are rejected rather than having
// it silently dropped.
func (r *Reader) AsRGB() (*Image, error) {
	h, err := r.Header()
	if err != nil {
		return nil, err
	}
	if h.Alpha() {
		r.release()
		return nil, errAlphaToRGB
	}

	img, err := r.AsDirect()
	if err != nil {
		return nil, err
	}
	if !img.Meta.Greyscale {
		return img, nil
	}

	img.Meta.Greyscale = false
	img.Meta.Planes = 3
	img.Rows = &convertRows{
		src: img.Rows,
		fn:  greyToRGB,
	}

	return img, nil
}

// AsRGBA decodes the image as RGBA samples, expanding greyscale and
// indexed images and adding a fully opaque alpha channel where the source
// has none.
func (r *Reader) AsRGBA() (*Image, error) {
	img, err := r.AsDirect()
	if err != nil {
		return nil, err
	}
	if img.Meta.Alpha && !img.Meta.Greyscale {
		return img, nil
	}

	img.Rows = &convertRows{
		src: img.Rows,
		fn:  addAlpha(img.Meta.Planes, img.Meta.Greyscale, img.Meta.Alpha, uint16(maxValue(img.Meta.BitDepth))),
	}
	img.Meta.Greyscale = false
	img.Meta.Alpha = true
	img.Meta.Planes = 4

	return img, nil
}

// AsRGB8 is AsRGB with samples rescaled to 8 bits.
func (r *Reader) AsRGB8() (*Image, error) {
	return asRescaled(r.AsRGB, 8)
}

// AsRGBA8 is AsRGBA with samples rescaled to 8 bits.
func (r *Reader) AsRGBA8() (*Image, error) {
	return asRescaled(r.AsRGBA, 8)
}

func asRescaled(get func() (*Image, error), bitDepth int) (*Image, error) {
	img, err := get()
	if err != nil {
		return nil, err
	}

	maxval, targetmaxval := maxValue(img.Meta.BitDepth), maxValue(bitDepth)
	img.Meta.BitDepth = bitDepth
	if maxval == targetmaxval {
		return img, nil
	}

	img.Rows = &convertRows{
		src: img.Rows,
		fn:  rescale(float64(targetmaxval) / float64(maxval)),
	}

	return img, nil
}

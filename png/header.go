package png

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Header holds the fields of the IHDR chunk. It is produced once while
// reading the preamble and never modified afterwards.
type Header struct {
	Width             uint32
	Height            uint32
	BitDepth          uint8
	ColorType         uint8
	CompressionMethod uint8
	FilterMethod      uint8
	InterlaceMethod   uint8
}

// Indexed reports whether pixels are palette indices.
func (h Header) Indexed() bool { return h.ColorType&1 != 0 }

// Greyscale reports whether the image has a single colour channel.
func (h Header) Greyscale() bool { return h.ColorType&2 == 0 }

// Alpha reports whether the image carries an alpha channel.
func (h Header) Alpha() bool { return h.ColorType&4 != 0 }

// Interlaced reports whether the image uses Adam7 interlacing.
func (h Header) Interlaced() bool { return h.InterlaceMethod == 1 }

// ColorPlanes returns the number of colour channels stored per pixel; a
// palette index counts as one.
func (h Header) ColorPlanes() int {
	if h.Greyscale() || h.Indexed() {
		return 1
	}
	return 3
}

// Planes returns the number of samples stored per pixel.
func (h Header) Planes() int {
	if h.Alpha() {
		return h.ColorPlanes() + 1
	}
	return h.ColorPlanes()
}

// PixelBits returns the size of one pixel in bits.
func (h Header) PixelBits() int { return int(h.BitDepth) * h.Planes() }

// RowBytes returns the size of one unfiltered row in bytes, excluding the
// filter type byte.
func (h Header) RowBytes() int { return h.rowBytes(int(h.Width)) }

func (h Header) rowBytes(width int) int {
	return (width*h.PixelBits() + 7) / 8
}

// filterUnit is the distance in bytes between a byte and the
// corresponding byte of the pixel to its left, never less than one.
func (h Header) filterUnit() int {
	return (h.PixelBits() + 7) / 8
}

func checkBitDepthColorType(bitDepth, colorType uint8) error {
	switch bitDepth {
	case 1, 2, 4, 8, 16:
	default:
		return FormatError(fmt.Sprintf("invalid bit depth %d", bitDepth))
	}
	switch colorType {
	case ctGreyscale, ctTrueColor, ctPaletted, ctGreyscaleAlpha, ctTrueColorAlpha:
	default:
		return FormatError(fmt.Sprintf("invalid colour type %d", colorType))
	}
	if colorType&1 != 0 && bitDepth > 8 {
		return FormatError(fmt.Sprintf("indexed images (colour type %d) cannot have bit depth > 8 (bit depth %d)", colorType, bitDepth))
	}
	if bitDepth < 8 && colorType != ctGreyscale && colorType != ctPaletted {
		return FormatError(fmt.Sprintf("illegal combination of bit depth %d and colour type %d", bitDepth, colorType))
	}
	return nil
}

func parseIHDR(data []byte) (Header, error) {
	if len(data) != ihdrLength {
		return Header{}, FormatError("IHDR chunk has incorrect length")
	}

	var h Header
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &h); err != nil {
		return Header{}, err
	}

	if err := checkBitDepthColorType(h.BitDepth, h.ColorType); err != nil {
		return Header{}, err
	}
	if h.CompressionMethod != 0 {
		return Header{}, FormatError(fmt.Sprintf("unknown compression method %d", h.CompressionMethod))
	}
	if h.FilterMethod != 0 {
		return Header{}, FormatError(fmt.Sprintf("unknown filter method %d", h.FilterMethod))
	}
	if h.InterlaceMethod > 1 {
		return Header{}, FormatError(fmt.Sprintf("unknown interlace method %d", h.InterlaceMethod))
	}
	if h.Width == 0 || h.Height == 0 {
		return Header{}, errBadDimensions
	}
	if h.Width > maxChunkLength || h.Height > maxChunkLength {
		return Header{}, FormatError(fmt.Sprintf("dimensions %dx%d too large", h.Width, h.Height))
	}
	if int64(h.Width)*int64(h.Height)*int64(h.Planes()) > maxSamples {
		return Header{}, FormatError(fmt.Sprintf("dimensions %dx%d too large", h.Width, h.Height))
	}

	return h, nil
}

func checkPLTE(h Header, data []byte) error {
	switch {
	case len(data) == 0:
		return errEmptyPLTE
	case len(data)%3 != 0:
		return errPLTELength
	case len(data) > 3<<h.BitDepth:
		return errPLTETooLong
	}
	return nil
}

// paletteEntries splits a PLTE payload into colour tuples. With alpha
// each tuple gains a fully opaque fourth value.
func paletteEntries(plte []byte, alpha bool) [][]uint8 {
	size := 3
	if alpha {
		size = 4
	}
	entries := make([][]uint8, len(plte)/3)
	for i := range entries {
		e := make([]uint8, size)
		copy(e, plte[i*3:i*3+3])
		if alpha {
			e[3] = 0xff
		}
		entries[i] = e
	}
	return entries
}

package png

import (
	"encoding/binary"
	"math"
)

// unpack turns a reconstructed scanline into one sample per channel for
// width pixels. Sub-byte samples are unpacked most significant bits
// first and any padding bits in the last byte are dropped; 16-bit
// samples are big-endian.
func unpack(h Header, line []byte, width int) []uint16 {
	out := make([]uint16, width*h.Planes())

	switch bd := int(h.BitDepth); bd {
	case 8:
		for i := range out {
			out[i] = uint16(line[i])
		}
	case 16:
		for i := range out {
			out[i] = binary.BigEndian.Uint16(line[i*2:])
		}
	default:
		spb := 8 / bd
		mask := byte(1<<bd - 1)
		for i := range out {
			shift := uint(8 - bd*(i%spb+1))
			out[i] = uint16(line[i/spb] >> shift & mask)
		}
	}

	return out
}

func expandPalette(plte [][]uint8) func([]uint16) ([]uint16, error) {
	return func(row []uint16) ([]uint16, error) {
		if len(plte) == 0 {
			return nil, errNoPalette
		}
		size := len(plte[0])
		out := make([]uint16, len(row)*size)
		for i, idx := range row {
			if int(idx) >= len(plte) {
				return nil, errPaletteIndex
			}
			for j, v := range plte[idx] {
				out[i*size+j] = uint16(v)
			}
		}
		return out, nil
	}
}

func greyToRGB(row []uint16) ([]uint16, error) {
	out := make([]uint16, len(row)*3)
	for i, v := range row {
		out[i*3+0] = v
		out[i*3+1] = v
		out[i*3+2] = v
	}
	return out, nil
}

// addAlpha returns a conversion from rows of planes samples per pixel
// into RGBA. Greyscale is replicated across the colour channels and a
// missing alpha channel is filled with maxval.
func addAlpha(planes int, greyscale, alpha bool, maxval uint16) func([]uint16) ([]uint16, error) {
	return func(row []uint16) ([]uint16, error) {
		pixels := len(row) / planes
		out := make([]uint16, pixels*4)
		for i := 0; i < pixels; i++ {
			src := row[i*planes : (i+1)*planes]
			dst := out[i*4 : i*4+4]
			if greyscale {
				dst[0], dst[1], dst[2] = src[0], src[0], src[0]
			} else {
				dst[0], dst[1], dst[2] = src[0], src[1], src[2]
			}
			if alpha {
				dst[3] = src[planes-1]
			} else {
				dst[3] = maxval
			}
		}
		return out, nil
	}
}

func rescale(factor float64) func([]uint16) ([]uint16, error) {
	return func(row []uint16) ([]uint16, error) {
		out := make([]uint16, len(row))
		for i, v := range row {
			out[i] = uint16(math.Round(float64(v) * factor))
		}
		return out, nil
	}
}

func maxValue(bitDepth int) int {
	return 1<<uint(bitDepth) - 1
}

package png

import (
	"bytes"
	"io"
)

type pass struct {
	xStart, yStart, xStep, yStep int
}

var adam7 = [...]pass{
	{0, 0, 8, 8},
	{4, 0, 8, 8},
	{0, 4, 4, 8},
	{2, 0, 4, 4},
	{0, 2, 2, 4},
	{1, 0, 2, 2},
	{0, 1, 1, 2},
}

// size returns the dimensions of the reduced image a pass covers, zero
// when the pass holds no pixels at all.
func (p pass) size(width, height int) (int, int) {
	if p.xStart >= width || p.yStart >= height {
		return 0, 0
	}
	return (width - p.xStart + p.xStep - 1) / p.xStep, (height - p.yStart + p.yStep - 1) / p.yStep
}

// interlacedSize returns the number of decompressed bytes, filter type
// bytes included, an interlaced image should inflate to.
func interlacedSize(h Header) int {
	var n int
	for _, p := range adam7 {
		ppr, rows := p.size(int(h.Width), int(h.Height))
		if ppr == 0 {
			continue
		}
		n += (1 + h.rowBytes(ppr)) * rows
	}
	return n
}

// readInterlaced inflates all of the image data and reassembles the
// passes. The whole raster has to be held in memory as each pass writes
// to every few pixels of many rows.
func readInterlaced(h Header, zr io.ReadCloser) ([]uint16, error) {
	defer zr.Close()

	// The buffer only grows as far as the stream really inflates
	size := interlacedSize(h)
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(io.LimitReader(zr, int64(size))); err != nil {
		return nil, inflateError(err)
	}
	if buf.Len() < size {
		return nil, errNotEnough
	}
	raw := buf.Bytes()
	if err := checkEOF(zr); err != nil {
		return nil, err
	}

	return deinterlace(h, raw)
}

func deinterlace(h Header, raw []byte) ([]uint16, error) {
	width, height := int(h.Width), int(h.Height)
	planes := h.Planes()
	vpr := width * planes
	fu := h.filterUnit()

	raster := make([]uint16, vpr*height)
	var offset int

	for _, p := range adam7 {
		ppr, _ := p.size(width, height)
		if ppr == 0 {
			continue
		}

		n := h.rowBytes(ppr)
		cur := make([]byte, n)
		// Each pass starts afresh with no previous scanline
		prev := make([]byte, n)

		for y := p.yStart; y < height; y += p.yStep {
			if offset+1+n > len(raw) {
				return nil, errNotEnough
			}
			filterType := raw[offset]
			copy(cur, raw[offset+1:offset+1+n])
			offset += 1 + n

			if err := undoFilter(filterType, cur, prev, fu); err != nil {
				return nil, err
			}

			samples := unpack(h, cur, ppr)
			if p.xStep == 1 {
				copy(raster[y*vpr:(y+1)*vpr], samples)
			} else {
				for col := 0; col < ppr; col++ {
					dst := y*vpr + (p.xStart+col*p.xStep)*planes
					copy(raster[dst:dst+planes], samples[col*planes:(col+1)*planes])
				}
			}

			prev, cur = cur, prev
		}
	}

	if offset != len(raw) {
		return nil, errTooMuch
	}

	return raster, nil
}

package png

import (
	"bytes"
	"encoding/binary"
	crc "hash/crc32"
	"math/rand"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

func chunk(typ string, data []byte) []byte {
	b := new(bytes.Buffer)
	binary.Write(b, binary.BigEndian, uint32(len(data)))
	b.WriteString(typ)
	b.Write(data)
	binary.Write(b, binary.BigEndian, crc.ChecksumIEEE(append([]byte(typ), data...)))
	return b.Bytes()
}

func buildPNG(chunks ...[]byte) []byte {
	b := bytes.NewBufferString(signature)
	for _, c := range chunks {
		b.Write(c)
	}
	return b.Bytes()
}

func ihdr(width, height uint32, bitDepth, colorType, interlace uint8) []byte {
	b := make([]byte, ihdrLength)
	binary.BigEndian.PutUint32(b[0:], width)
	binary.BigEndian.PutUint32(b[4:], height)
	b[8] = bitDepth
	b[9] = colorType
	b[12] = interlace
	return chunk("IHDR", b)
}

func iend() []byte {
	return chunk("IEND", nil)
}

func compress(t *testing.T, raw []byte) []byte {
	b := new(bytes.Buffer)
	w := zlib.NewWriter(b)
	_, err := w.Write(raw)
	require.Nil(t, err)
	require.Nil(t, w.Close())
	return b.Bytes()
}

func idat(t *testing.T, raw []byte) []byte {
	return chunk("IDAT", compress(t, raw))
}

// filterRow is the encoder side of undoFilter.
func filterRow(filterType byte, raw, prev []byte, fu int) []byte {
	out := make([]byte, len(raw))
	for i := range raw {
		var a, c byte
		if i >= fu {
			a, c = raw[i-fu], prev[i-fu]
		}
		b := prev[i]
		switch filterType {
		case ftNone:
			out[i] = raw[i]
		case ftSub:
			out[i] = raw[i] - a
		case ftUp:
			out[i] = raw[i] - b
		case ftAverage:
			out[i] = raw[i] - byte((int(a)+int(b))>>1)
		case ftPaeth:
			out[i] = raw[i] - byte(paeth(int(a), int(b), int(c)))
		}
	}
	return out
}

// filterLines prefixes and filters each scanline, cycling through every
// filter type.
func filterLines(lines [][]byte, fu int) []byte {
	var out []byte
	if len(lines) == 0 {
		return out
	}
	prev := make([]byte, len(lines[0]))
	for i, line := range lines {
		ft := byte(i % 5)
		out = append(out, ft)
		out = append(out, filterRow(ft, line, prev, fu)...)
		prev = line
	}
	return out
}

func packSamples(samples []uint16, bitDepth int) []byte {
	switch bitDepth {
	case 8:
		b := make([]byte, len(samples))
		for i, s := range samples {
			b[i] = byte(s)
		}
		return b
	case 16:
		b := make([]byte, len(samples)*2)
		for i, s := range samples {
			binary.BigEndian.PutUint16(b[i*2:], s)
		}
		return b
	}
	spb := 8 / bitDepth
	b := make([]byte, (len(samples)+spb-1)/spb)
	for i, s := range samples {
		b[i/spb] |= byte(s) << uint(8-bitDepth*(i%spb+1))
	}
	return b
}

type testRaster struct {
	width, height, planes, bitDepth int
	samples                         []uint16
}

func randomRaster(r *rand.Rand, width, height, planes, bitDepth int) testRaster {
	samples := make([]uint16, width*height*planes)
	max := 1 << uint(bitDepth)
	for i := range samples {
		samples[i] = uint16(r.Intn(max))
	}
	return testRaster{width, height, planes, bitDepth, samples}
}

func (tr testRaster) row(y int) []uint16 {
	vpr := tr.width * tr.planes
	return tr.samples[y*vpr : (y+1)*vpr]
}

func (tr testRaster) filterUnit() int {
	fu := (tr.planes*tr.bitDepth + 7) / 8
	return fu
}

// straight returns the filtered image data for a non-interlaced image.
func (tr testRaster) straight() []byte {
	lines := make([][]byte, tr.height)
	for y := range lines {
		lines[y] = packSamples(tr.row(y), tr.bitDepth)
	}
	return filterLines(lines, tr.filterUnit())
}

// interlaced returns the filtered image data for an Adam7 image.
func (tr testRaster) interlaced() []byte {
	var out []byte
	for _, p := range adam7 {
		ppr, _ := p.size(tr.width, tr.height)
		if ppr == 0 {
			continue
		}
		var lines [][]byte
		for y := p.yStart; y < tr.height; y += p.yStep {
			sub := make([]uint16, 0, ppr*tr.planes)
			for col := 0; col < ppr; col++ {
				x := p.xStart + col*p.xStep
				start := (y*tr.width + x) * tr.planes
				sub = append(sub, tr.samples[start:start+tr.planes]...)
			}
			lines = append(lines, packSamples(sub, tr.bitDepth))
		}
		out = append(out, filterLines(lines, tr.filterUnit())...)
	}
	return out
}

func readAll(t *testing.T, img *Image) [][]uint16 {
	var rows [][]uint16
	for img.Rows.Next() {
		rows = append(rows, img.Rows.Row())
	}
	require.Nil(t, img.Rows.Err())
	return rows
}

package png

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnpack(t *testing.T) {
	tables := []struct {
		name     string
		h        Header
		line     []byte
		width    int
		expected []uint16
	}{
		{
			"1-bit",
			Header{BitDepth: 1, ColorType: ctGreyscale},
			[]byte{0xb0},
			5,
			[]uint16{1, 0, 1, 1, 0},
		},
		{
			"1-bit two bytes",
			Header{BitDepth: 1, ColorType: ctPaletted},
			[]byte{0xff, 0x80},
			9,
			[]uint16{1, 1, 1, 1, 1, 1, 1, 1, 1},
		},
		{
			"2-bit",
			Header{BitDepth: 2, ColorType: ctGreyscale},
			[]byte{0x1b, 0xc0},
			5,
			[]uint16{0, 1, 2, 3, 3},
		},
		{
			"4-bit",
			Header{BitDepth: 4, ColorType: ctPaletted},
			[]byte{0x12, 0xf0},
			3,
			[]uint16{1, 2, 15},
		},
		{
			"8-bit rgb",
			Header{BitDepth: 8, ColorType: ctTrueColor},
			[]byte{1, 2, 3, 4, 5, 6},
			2,
			[]uint16{1, 2, 3, 4, 5, 6},
		},
		{
			"16-bit",
			Header{BitDepth: 16, ColorType: ctGreyscaleAlpha},
			[]byte{0x01, 0x02, 0xff, 0xfe},
			1,
			[]uint16{0x0102, 0xfffe},
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			assert.Equal(t, table.expected, unpack(table.h, table.line, table.width))
		})
	}
}

func TestExpandPalette(t *testing.T) {
	fn := expandPalette([][]uint8{{255, 0, 0}, {0, 255, 0}})

	out, err := fn([]uint16{0, 1, 1})
	assert.Nil(t, err)
	assert.Equal(t, []uint16{255, 0, 0, 0, 255, 0, 0, 255, 0}, out)

	_, err = fn([]uint16{2})
	assert.Equal(t, errPaletteIndex, err)

	_, err = expandPalette(nil)([]uint16{0})
	assert.Equal(t, errNoPalette, err)
}

func TestAddAlpha(t *testing.T) {
	tables := []struct {
		name      string
		planes    int
		greyscale bool
		alpha     bool
		maxval    uint16
		in        []uint16
		expected  []uint16
	}{
		{"grey", 1, true, false, 255, []uint16{7, 9}, []uint16{7, 7, 7, 255, 9, 9, 9, 255}},
		{"grey 1-bit", 1, true, false, 1, []uint16{0, 1}, []uint16{0, 0, 0, 1, 1, 1, 1, 1}},
		{"grey alpha", 2, true, true, 255, []uint16{7, 100}, []uint16{7, 7, 7, 100}},
		{"rgb 16-bit", 3, false, false, 65535, []uint16{1, 2, 3}, []uint16{1, 2, 3, 65535}},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			out, err := addAlpha(table.planes, table.greyscale, table.alpha, table.maxval)(table.in)
			assert.Nil(t, err)
			assert.Equal(t, table.expected, out)
		})
	}
}

func TestGreyToRGB(t *testing.T) {
	out, err := greyToRGB([]uint16{1, 2})
	assert.Nil(t, err)
	assert.Equal(t, []uint16{1, 1, 1, 2, 2, 2}, out)
}

func TestRescale(t *testing.T) {
	out, err := rescale(255.0 / 1.0)([]uint16{0, 1})
	assert.Nil(t, err)
	assert.Equal(t, []uint16{0, 255}, out)

	out, err = rescale(255.0 / 15.0)([]uint16{0, 7, 15})
	assert.Nil(t, err)
	assert.Equal(t, []uint16{0, 119, 255}, out)

	out, err = rescale(255.0 / 65535.0)([]uint16{0, 0x8080, 0xffff, 0x017f})
	assert.Nil(t, err)
	assert.Equal(t, []uint16{0, 128, 255, 1}, out)
}

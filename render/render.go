/*
Package render turns decoded PNG images into frames for a three colour
e-paper panel.

A frame is two bit planes the size of the panel, black followed by red.
Each plane holds one bit per pixel packed most significant bit first,
with every row padded to a whole byte. A pixel set in neither plane is
white. There is no header or compression so a frame is always exactly
FrameSize bytes.
*/
package render

import "image/color"

// Palette indices used by every image this package produces.
const (
	White uint8 = iota
	Black
	Red
)

const (
	// Blue and green must both be below this for a pixel to be inked
	inkCutoff = 100
	// Red at or above this turns an inked pixel red
	redCutoff = 120
)

// Palette is the colour palette of the panel, indexed by White, Black
// and Red.
var Palette = color.Palette{
	color.RGBA{0xff, 0xff, 0xff, 0xff},
	color.RGBA{0x00, 0x00, 0x00, 0xff},
	color.RGBA{0xff, 0x00, 0x00, 0xff},
}

func threshold(r, g, b uint8) uint8 {
	switch {
	case b >= inkCutoff || g >= inkCutoff:
		return White
	case r < redCutoff:
		return Black
	default:
		return Red
	}
}

// Threshold returns the palette index c is drawn with. Only dark pixels
// are inked; of those, ones with enough red are drawn red.
func Threshold(c color.Color) uint8 {
	r, g, b, _ := c.RGBA()
	return threshold(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// FrameSize returns the size in bytes of a frame for a panel of the
// given dimensions.
func FrameSize(width, height int) int {
	return 2 * planeSize(width, height)
}

func planeSize(width, height int) int {
	return (width + 7) >> 3 * height
}

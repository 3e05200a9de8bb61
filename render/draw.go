package render

import (
	"errors"
	"image"
	"image/color"

	"github.com/bodgit/inkpng/png"
	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"
)

var (
	errNotEnough = errors.New("render: not enough image data")
	errTooMuch   = errors.New("render: too much image data")
	errFormat    = errors.New("render: rows must be 8-bit RGB or RGBA")
)

// over composites an 8-bit sample with the given alpha onto white.
func over(v, a uint16) uint8 {
	return uint8((v*a + 0xff*(0xff-a) + 0x7f) / 0xff)
}

// Draw thresholds the rows of img a row at a time into a paletted image
// of the same size. The rows must be 8-bit RGB or RGBA, as returned by
// AsRGB8 or AsRGBA8; transparent pixels are treated as white.
func Draw(img *png.Image) (*image.Paletted, error) {
	planes := img.Meta.Planes
	if img.Meta.BitDepth != 8 || img.Meta.Greyscale || (planes != 3 && planes != 4) {
		return nil, errFormat
	}

	m := image.NewPaletted(image.Rect(0, 0, img.Width, img.Height), Palette)

	var y int
	for ; img.Rows.Next(); y++ {
		if y >= img.Height {
			return nil, errTooMuch
		}
		row := img.Rows.Row()
		if len(row) != img.Width*planes {
			return nil, errNotEnough
		}
		pix := m.Pix[y*m.Stride:]
		for x := 0; x < img.Width; x++ {
			p := row[x*planes : x*planes+planes]
			r, g, b := uint8(p[0]), uint8(p[1]), uint8(p[2])
			if planes == 4 {
				r, g, b = over(p[0], p[3]), over(p[1], p[3]), over(p[2], p[3])
			}
			pix[x] = threshold(r, g, b)
		}
	}
	if err := img.Rows.Err(); err != nil {
		return nil, err
	}
	if y != img.Height {
		return nil, errNotEnough
	}

	return m, nil
}

// Fit returns a width by height white image with m drawn centred on it.
// Images larger than that in either dimension are scaled down to fit,
// preserving their aspect ratio; smaller images are not enlarged.
func Fit(m image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(Palette[White]), image.Point{}, draw.Src)

	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return dst
	}

	if w > width || h > height {
		// Whichever side is the tighter fit decides the scale
		if w*height > h*width {
			w, h = width, h*width/w
		} else {
			w, h = w*height/h, height
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
	}

	r := image.Rect(0, 0, w, h).Add(image.Pt((width-w)/2, (height-h)/2))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, r, m, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, r, m, b, draw.Over, nil)
	}

	return dst
}

// Quantize reduces m to at most n colours using a median cut palette.
func Quantize(m image.Image, n int) *image.Paletted {
	b := m.Bounds()
	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, n), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)
	return pm
}

// ThresholdImage thresholds every pixel of m. The result is anchored at
// (0, 0) regardless of the bounds of m.
func ThresholdImage(m image.Image) *image.Paletted {
	b := m.Bounds()
	pm := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), Palette)

	// Paletted sources only need each palette entry thresholding once
	if src, ok := m.(*image.Paletted); ok {
		lut := make([]uint8, len(src.Palette))
		for i, c := range src.Palette {
			lut[i] = Threshold(c)
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				pm.SetColorIndex(x-b.Min.X, y-b.Min.Y, lut[src.ColorIndexAt(x, y)])
			}
		}
		return pm
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			pm.SetColorIndex(x-b.Min.X, y-b.Min.Y, Threshold(m.At(x, y)))
		}
	}
	return pm
}

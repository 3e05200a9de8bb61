package png

import (
	"image"
	"image/color"
	"io"
)

func paletteModel(entries [][]uint8) color.Palette {
	p := make(color.Palette, len(entries))
	for i, e := range entries {
		p[i] = color.RGBA{e[0], e[1], e[2], 0xff}
	}
	return p
}

// collect drains rows, calling fn with each row and its index. It fails
// if the rows end early.
func collect(img *Image, fn func(y int, row []uint16) error) error {
	var y int
	for ; img.Rows.Next(); y++ {
		if err := fn(y, img.Rows.Row()); err != nil {
			return err
		}
	}
	if err := img.Rows.Err(); err != nil {
		return err
	}
	if y != img.Height {
		return errNotEnough
	}
	return nil
}

// Image decodes the image as an image.Image, as Decode does, from a
// Reader whose header may already have been inspected.
func (r *Reader) Image() (image.Image, error) {
	h, err := r.Header()
	if err != nil {
		return nil, err
	}

	switch {
	case h.Indexed():
		img, err := r.Read()
		if err != nil {
			return nil, err
		}
		m := image.NewPaletted(image.Rect(0, 0, img.Width, img.Height), paletteModel(img.Meta.Palette))
		if err := collect(img, func(y int, row []uint16) error {
			for x, idx := range row {
				if int(idx) >= len(m.Palette) {
					return errPaletteIndex
				}
				m.Pix[y*m.Stride+x] = uint8(idx)
			}
			return nil
		}); err != nil {
			return nil, err
		}
		return m, nil
	case h.BitDepth == 16:
		img, err := r.AsRGBA()
		if err != nil {
			return nil, err
		}
		m := image.NewNRGBA64(image.Rect(0, 0, img.Width, img.Height))
		if err := collect(img, func(y int, row []uint16) error {
			pix := m.Pix[y*m.Stride:]
			for i, v := range row {
				pix[i*2+0] = uint8(v >> 8)
				pix[i*2+1] = uint8(v)
			}
			return nil
		}); err != nil {
			return nil, err
		}
		return m, nil
	default:
		img, err := r.AsRGBA8()
		if err != nil {
			return nil, err
		}
		m := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
		if err := collect(img, func(y int, row []uint16) error {
			pix := m.Pix[y*m.Stride:]
			for i, v := range row {
				pix[i] = uint8(v)
			}
			return nil
		}); err != nil {
			return nil, err
		}
		return m, nil
	}
}

// Decode reads a PNG image from r and returns it as an image.Image.
// Indexed images decode to *image.Paletted, 16-bit images to
// *image.NRGBA64 and everything else to *image.NRGBA.
func Decode(r io.Reader, opts ...Option) (image.Image, error) {
	return NewReader(r, opts...).Image()
}

// DecodeFile is Decode for the named file.
func DecodeFile(file string, opts ...Option) (image.Image, error) {
	r, err := Open(file, opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Image()
}

// DecodeConfig returns the color model and dimensions of a PNG image
// without decoding the entire image.
func DecodeConfig(r io.Reader, opts ...Option) (image.Config, error) {
	reader := NewReader(r, opts...)
	h, err := reader.Header()
	if err != nil {
		return image.Config{}, err
	}

	var model color.Model
	switch {
	case h.Indexed():
		p, err := reader.Palette(false)
		if err != nil {
			return image.Config{}, err
		}
		model = paletteModel(p)
	case h.BitDepth == 16:
		model = color.NRGBA64Model
	default:
		model = color.NRGBAModel
	}

	return image.Config{
		ColorModel: model,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}

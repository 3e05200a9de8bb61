package render

import (
	"image"
	"io"
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type encoder struct {
	w io.Writer
}

func (e *encoder) plane(m *image.Paletted, index uint8) error {
	b := m.Bounds()
	row := make([]byte, (b.Dx()+7)>>3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for i := range row {
			row[i] = 0
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			if m.ColorIndexAt(x, y) == index {
				dx := x - b.Min.X
				row[dx>>3] |= 0x80 >> uint(dx&7)
			}
		}
		if _, err := e.w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes m to w as a frame. Pixels are inked according to their
// palette index, so m should use Palette; any index other than Black or
// Red is left white.
func Encode(w io.Writer, m *image.Paletted) error {
	e := encoder{w: w}
	if err := e.plane(m, Black); err != nil {
		return err
	}
	return e.plane(m, Red)
}

// Decode reads a width by height frame from r. A pixel set in both
// planes is drawn black.
func Decode(r io.Reader, width, height int) (*image.Paletted, error) {
	tmp := make([]byte, FrameSize(width, height))
	if err := readFull(r, tmp); err != nil {
		if err != io.ErrUnexpectedEOF {
			return nil, err
		}
		return nil, errNotEnough
	}

	switch _, err := io.ReadFull(r, make([]byte, 1)); err {
	case io.EOF:
	case nil:
		return nil, errTooMuch
	default:
		return nil, err
	}

	m := image.NewPaletted(image.Rect(0, 0, width, height), Palette)
	stride := (width + 7) >> 3
	black, red := tmp[:planeSize(width, height)], tmp[planeSize(width, height):]
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i, bit := y*stride+x>>3, byte(0x80>>uint(x&7))
			switch {
			case black[i]&bit != 0:
				m.Pix[y*m.Stride+x] = Black
			case red[i]&bit != 0:
				m.Pix[y*m.Stride+x] = Red
			}
		}
	}

	return m, nil
}

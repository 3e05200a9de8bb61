/*
Package pnm writes decoded PNG rows as Netpbm images.

Single plane images are written as PGM (P5) and three plane images as PPM
(P6). Images with an alpha channel have no classic Netpbm form so they
are written as PAM (P7) with a GRAYSCALE_ALPHA or RGB_ALPHA tuple type.
Samples are one byte each unless the maximum value exceeds 255, in which
case they are two bytes, most significant byte first.
*/
package pnm

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/bodgit/inkpng/png"
)

var (
	errNotEnough = errors.New("pnm: not enough image data")
	errTooMuch   = errors.New("pnm: too much image data")
	errIndexed   = errors.New("pnm: palette indices must be expanded first")
	errBitDepth  = errors.New("pnm: unsupported bit depth")
	errPlanes    = errors.New("pnm: unsupported number of planes")
)

// Header returns the Netpbm header for an image described by meta.
func Header(meta png.Metadata) (string, error) {
	if meta.BitDepth < 1 || meta.BitDepth > 16 {
		return "", errBitDepth
	}
	maxval := 1<<uint(meta.BitDepth) - 1

	switch meta.Planes {
	case 1:
		return fmt.Sprintf("P5\n%d %d\n%d\n", meta.Width, meta.Height, maxval), nil
	case 3:
		return fmt.Sprintf("P6\n%d %d\n%d\n", meta.Width, meta.Height, maxval), nil
	case 2, 4:
		tupltype := "GRAYSCALE_ALPHA"
		if meta.Planes == 4 {
			tupltype = "RGB_ALPHA"
		}
		return fmt.Sprintf("P7\nWIDTH %d\nHEIGHT %d\nDEPTH %d\nMAXVAL %d\nTUPLTYPE %s\nENDHDR\n",
			meta.Width, meta.Height, meta.Planes, maxval, tupltype), nil
	default:
		return "", errPlanes
	}
}

// Encode writes img to w, consuming its rows.
func Encode(w io.Writer, img *png.Image) error {
	if img.Meta.Palette != nil && img.Meta.Planes == 1 {
		return errIndexed
	}

	header, err := Header(img.Meta)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(header); err != nil {
		return err
	}

	wide := img.Meta.BitDepth > 8
	vpr := img.Width * img.Meta.Planes

	var y int
	for ; img.Rows.Next(); y++ {
		if y >= img.Height {
			return errTooMuch
		}
		row := img.Rows.Row()
		if len(row) != vpr {
			return errNotEnough
		}
		for _, v := range row {
			if wide {
				if err := bw.WriteByte(byte(v >> 8)); err != nil {
					return err
				}
			}
			if err := bw.WriteByte(byte(v)); err != nil {
				return err
			}
		}
	}
	if err := img.Rows.Err(); err != nil {
		return err
	}
	if y != img.Height {
		return errNotEnough
	}

	return bw.Flush()
}

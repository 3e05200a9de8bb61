package inkpng

import (
	"io"
	"strconv"

	"github.com/bodgit/inkpng/bundle"
)

// Export writes a bundle of every cataloged frame for the panel to w and
// returns the number of entries written.
func (i *InkPNG) Export(w io.Writer) (int, error) {
	if i.catalog == nil {
		return 0, errNoCatalog
	}

	frames, err := i.catalog.Frames(i.width, i.height)
	if err != nil {
		return 0, err
	}

	b := bundle.New(i.width, i.height)
	for crc, frame := range frames {
		v, err := strconv.ParseUint(crc, 16, 32)
		if err != nil {
			return 0, err
		}
		if err := b.Set(uint32(v), frame); err != nil {
			return 0, err
		}
	}

	data, err := b.MarshalBinary()
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		return 0, err
	}

	i.logger.Info().Int("entries", b.Length()).Int("frames", b.Frames()).Msg("exported bundle")

	return b.Length(), nil
}

package png

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// inflate reads the remaining chunks up to and including IEND. The IDAT
// payloads are concatenated in order, as the compressed stream is not
// aligned to chunk boundaries, and the result is returned as a single
// zlib stream.
func (r *Reader) inflate() (io.ReadCloser, error) {
	idat := new(bytes.Buffer)
	var n int
	for {
		typ, data, err := r.cr.next()
		if err == io.EOF {
			return nil, errMissingIEND
		}
		if err != nil {
			return nil, err
		}

		switch kindOf(typ) {
		case kindIDAT:
			if r.hdr.Indexed() && r.plte == nil {
				return nil, errNeedPalette
			}
			idat.Write(data)
			n++
		case kindIEND:
			r.logger.Debug().Int("chunks", n).Int("bytes", idat.Len()).Msg("collected image data")
			zr, err := zlib.NewReader(idat)
			if err != nil {
				return nil, inflateError(err)
			}
			return zr, nil
		default:
			r.logger.Debug().Str("type", typ).Int("length", len(data)).Msg("ignoring chunk")
		}
	}
}

func inflateError(err error) error {
	switch err {
	case io.EOF, io.ErrUnexpectedEOF:
		return errNotEnough
	}
	if _, ok := err.(FormatError); ok {
		return err
	}
	return FormatError("decompression failed: " + err.Error())
}

// checkEOF confirms the decompressed stream holds nothing past the last
// row. Reading to the end also verifies the zlib checksum.
func checkEOF(zr io.Reader) error {
	var tmp [1]byte
	n, err := io.ReadFull(zr, tmp[:])
	switch {
	case n > 0:
		return errTooMuch
	case err == io.EOF:
		return nil
	default:
		return inflateError(err)
	}
}

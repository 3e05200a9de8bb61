package png

import "fmt"

// A FormatError reports that the input is not a valid PNG.
type FormatError string

func (e FormatError) Error() string { return "png: invalid format: " + string(e) }

// A ChunkError reports a failure framing an individual chunk, such as a
// truncated payload or a checksum mismatch.
type ChunkError struct {
	Type string
	Msg  string
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("png: chunk %s: %s", e.Type, e.Msg)
}

// An Error reports a request that cannot be satisfied for an otherwise
// valid image, such as asking for RGB pixels from an image with alpha.
type Error string

func (e Error) Error() string { return "png: " + string(e) }

var (
	errNoImageData   = FormatError("no image data")
	errNoIHDR        = FormatError("missing IHDR")
	errNotEnough     = FormatError("not enough pixel data")
	errTooMuch       = FormatError("too much pixel data")
	errNeedPalette   = FormatError("palette required before pixel data")
	errConsumed      = Error("reader already consumed")
	errAlphaToRGB    = Error("cannot convert image with alpha channel to RGB")
	errPaletteIndex  = FormatError("palette index out of range")
	errNoPalette     = FormatError("no PLTE in indexed image")
	errMissingIEND   = FormatError("missing IEND")
	errMultipleIHDR  = FormatError("multiple IHDR chunks present")
	errMultiplePLTE  = FormatError("multiple PLTE chunks present")
	errEmptyPLTE     = FormatError("empty PLTE")
	errPLTELength    = FormatError("PLTE chunk's length must be a multiple of 3")
	errPLTETooLong   = FormatError("PLTE chunk is too long")
	errBadDimensions = FormatError("non-positive dimension")
)

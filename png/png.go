/*
Package png implements a PNG image decoder.

A PNG stream is an eight byte signature followed by a sequence of chunks.
The decoder reads the IHDR and optional PLTE chunks up to the first IDAT
chunk, inflates the concatenated IDAT data as a single zlib stream, undoes
the per-scanline filtering and, for Adam7 interlaced images, reassembles
the seven passes into one raster.

Pixels are returned as a forward-only sequence of rows where each row is a
flat run of samples, one per channel per pixel, left to right. The
conversion methods on Reader normalise indexed and greyscale images into
direct RGB or RGBA samples and can rescale them to 8 bits.

Only the critical IHDR, PLTE, IDAT and IEND chunks are interpreted; any
other chunk is read, optionally checksummed and discarded.
*/
package png

const signature = "\x89PNG\r\n\x1a\n"

// Color types, as stored in IHDR.
const (
	ctGreyscale      = 0
	ctTrueColor      = 2
	ctPaletted       = 3
	ctGreyscaleAlpha = 4
	ctTrueColorAlpha = 6
)

// Filter types, as stored in the first byte of each scanline.
const (
	ftNone    = 0
	ftSub     = 1
	ftUp      = 2
	ftAverage = 3
	ftPaeth   = 4
)

const (
	ihdrLength     = 13
	maxChunkLength = 1<<31 - 1

	// Largest number of samples, every channel of every pixel, an image
	// may declare. Decoded samples take two bytes each.
	maxSamples = 1 << 28
)

type chunkKind int

const (
	kindOther chunkKind = iota
	kindIHDR
	kindPLTE
	kindIDAT
	kindIEND
)

func kindOf(typ string) chunkKind {
	switch typ {
	case "IHDR":
		return kindIHDR
	case "PLTE":
		return kindPLTE
	case "IDAT":
		return kindIDAT
	case "IEND":
		return kindIEND
	}
	return kindOther
}

func (k chunkKind) String() string {
	switch k {
	case kindIHDR:
		return "IHDR"
	case kindPLTE:
		return "PLTE"
	case kindIDAT:
		return "IDAT"
	case kindIEND:
		return "IEND"
	}
	return "other"
}

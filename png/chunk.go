package png

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bodgit/inkpng/crc32"
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type chunkHeader struct {
	length uint32
	typ    string
}

// chunkReader frames the chunk stream following the signature. The
// header of the next chunk can be peeked at without consuming its data,
// which lets the preamble stop in front of the first IDAT chunk.
type chunkReader struct {
	r      io.Reader
	verify bool

	// Signature validation happens once, the result is kept
	checked bool
	sigErr  error

	pending *chunkHeader
	end     bool

	tmp [8]byte
}

func (c *chunkReader) validateSignature() error {
	if c.checked {
		return c.sigErr
	}
	c.checked = true
	if err := readFull(c.r, c.tmp[:len(signature)]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = FormatError("invalid signature")
		}
		c.sigErr = err
		return err
	}
	if string(c.tmp[:len(signature)]) != signature {
		c.sigErr = FormatError("invalid signature")
	}
	return c.sigErr
}

// peek returns the length and type of the next chunk. It returns io.EOF
// once IEND has been consumed or if the stream ends cleanly between
// chunks.
func (c *chunkReader) peek() (chunkHeader, error) {
	if err := c.validateSignature(); err != nil {
		return chunkHeader{}, err
	}
	if c.pending != nil {
		return *c.pending, nil
	}
	if c.end {
		return chunkHeader{}, io.EOF
	}

	_, err := io.ReadFull(c.r, c.tmp[:8])
	switch err {
	case nil:
	case io.EOF:
		return chunkHeader{}, io.EOF
	case io.ErrUnexpectedEOF:
		return chunkHeader{}, FormatError("EOF reading chunk length and type")
	default:
		return chunkHeader{}, err
	}

	h := chunkHeader{
		length: binary.BigEndian.Uint32(c.tmp[:4]),
		typ:    string(c.tmp[4:8]),
	}
	if h.length > maxChunkLength {
		return chunkHeader{}, FormatError(fmt.Sprintf("chunk %s too large: %d", h.typ, h.length))
	}
	c.pending = &h
	return h, nil
}

// next reads the whole of the next chunk, returning its type and data.
func (c *chunkReader) next() (string, []byte, error) {
	h, err := c.peek()
	if err != nil {
		return "", nil, err
	}
	c.pending = nil

	// Grow the buffer as data arrives rather than trusting the length
	b := new(bytes.Buffer)
	if _, err := io.CopyN(b, c.r, int64(h.length)); err != nil {
		if err == io.EOF {
			return "", nil, &ChunkError{Type: h.typ, Msg: fmt.Sprintf("EOF reading chunk, %d of %d bytes", b.Len(), h.length)}
		}
		return "", nil, err
	}

	if err := readFull(c.r, c.tmp[:4]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return "", nil, &ChunkError{Type: h.typ, Msg: "EOF reading checksum"}
		}
		return "", nil, err
	}

	if c.verify {
		want := binary.BigEndian.Uint32(c.tmp[:4])
		if got := crc32.ChecksumChunk(h.typ, b.Bytes()); got != want {
			return "", nil, &ChunkError{Type: h.typ, Msg: fmt.Sprintf("checksum error: 0x%08X != 0x%08X", want, got)}
		}
	}

	if kindOf(h.typ) == kindIEND {
		c.end = true
	}

	return h.typ, b.Bytes(), nil
}

// seek reads chunks until one of the given type is found. PNG does not
// constrain the order of most chunks so seeking can skip past chunks the
// caller may have wanted.
func (c *chunkReader) seek(typ string) (string, []byte, error) {
	for {
		t, data, err := c.next()
		if err != nil {
			return "", nil, err
		}
		if typ == "" || t == typ {
			return t, data, nil
		}
	}
}

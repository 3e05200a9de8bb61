/*
Package bundle implements the frame bundle copied to a panel device so it
can show images it has seen before without decoding them.

The file starts with the magic "INKB", the panel width and height and the
number of entries, each a little-endian uint16. That is followed by the
image checksums in ascending order as little-endian uint32 values so the
device can binary search them, then for each checksum the little-endian
uint16 index of its frame. Finally the frames themselves are written
back to back; identical frames are only stored once.
*/
package bundle

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/bodgit/inkpng/render"
)

const (
	// Filename is the expected filename used when writing to disk
	Filename   = "frames.inkb"
	magic      = "INKB"
	maxEntries = 1<<16 - 1
	maxPanel   = 1<<16 - 1
)

var (
	errMagic     = errors.New("bundle: invalid magic")
	errFrameSize = errors.New("bundle: incorrect frame length")
	errNotEnough = errors.New("bundle: insufficient data")
	errTooMuch   = errors.New("bundle: trailing data")
	errBadIndex  = errors.New("bundle: frame index out of range")
	errPanelSize = errors.New("bundle: panel dimensions out of range")
)

type header struct {
	Magic   [4]byte
	Width   uint16
	Height  uint16
	Entries uint16
}

// Bundle maps image checksums to frames for a panel of a fixed size. It
// implements the encoding.BinaryMarshaler and encoding.BinaryUnmarshaler
// interfaces.
type Bundle struct {
	width, height int

	checksums map[uint32]uint16
	frames    [][]byte
	index     map[string]uint16
}

// New returns an empty bundle for a panel of the given dimensions.
func New(width, height int) *Bundle {
	return &Bundle{
		width:     width,
		height:    height,
		checksums: make(map[uint32]uint16),
		index:     make(map[string]uint16),
	}
}

// Panel returns the dimensions of the panel the frames are for.
func (b *Bundle) Panel() (int, int) {
	return b.width, b.height
}

// Length returns the number of checksums in the bundle.
func (b *Bundle) Length() int {
	return len(b.checksums)
}

// Set stores the frame for the given checksum. A checksum already
// present keeps its original frame.
func (b *Bundle) Set(crc uint32, frame []byte) error {
	if len(frame) != render.FrameSize(b.width, b.height) {
		return errFrameSize
	}
	if _, ok := b.checksums[crc]; ok {
		return nil
	}
	if len(b.checksums) == maxEntries {
		return fmt.Errorf("bundle: more than %d entries", maxEntries)
	}

	i, ok := b.index[string(frame)]
	if !ok {
		b.frames = append(b.frames, frame)
		i = uint16(len(b.frames) - 1)
		b.index[string(frame)] = i
	}
	b.checksums[crc] = i

	return nil
}

// Get returns the frame stored for the given checksum, if any.
func (b *Bundle) Get(crc uint32) ([]byte, bool) {
	i, ok := b.checksums[crc]
	if !ok {
		return nil, false
	}
	return b.frames[i], true
}

// Frames returns the number of distinct frames in the bundle.
func (b *Bundle) Frames() int {
	return len(b.frames)
}

// MarshalBinary encodes the bundle into binary form and returns the result.
func (b *Bundle) MarshalBinary() ([]byte, error) {
	if b.width < 0 || b.width > maxPanel || b.height < 0 || b.height > maxPanel {
		return nil, errPanelSize
	}

	keys := make([]uint32, 0, len(b.checksums))
	for k := range b.checksums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	buf := new(bytes.Buffer)

	h := header{
		Width:   uint16(b.width),
		Height:  uint16(b.height),
		Entries: uint16(len(keys)),
	}
	copy(h.Magic[:], magic)
	if err := binary.Write(buf, binary.LittleEndian, &h); err != nil {
		return nil, err
	}

	// Write out CRC values
	if err := binary.Write(buf, binary.LittleEndian, keys); err != nil {
		return nil, err
	}

	// Write out frame indices
	for _, k := range keys {
		v := b.checksums[k]
		if err := binary.Write(buf, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
	}

	// Write out frames
	for _, f := range b.frames {
		if _, err := buf.Write(f); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary decodes the bundle from binary form.
func (b *Bundle) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)

	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return errNotEnough
	}
	if string(h.Magic[:]) != magic {
		return errMagic
	}

	*b = *New(int(h.Width), int(h.Height))

	keys := make([]uint32, h.Entries)
	if err := binary.Read(r, binary.LittleEndian, keys); err != nil {
		return errNotEnough
	}
	indices := make([]uint16, h.Entries)
	if err := binary.Read(r, binary.LittleEndian, indices); err != nil {
		return errNotEnough
	}

	size := render.FrameSize(b.width, b.height)
	if size == 0 {
		if r.Len() != 0 {
			return errTooMuch
		}
		if h.Entries != 0 {
			return errBadIndex
		}
		return nil
	}
	if r.Len()%size != 0 {
		return errNotEnough
	}
	for r.Len() > 0 {
		frame := make([]byte, size)
		r.Read(frame)
		b.index[string(frame)] = uint16(len(b.frames))
		b.frames = append(b.frames, frame)
	}

	for i, k := range keys {
		if int(indices[i]) >= len(b.frames) {
			return errBadIndex
		}
		b.checksums[k] = indices[i]
	}

	return nil
}

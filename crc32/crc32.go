/*
Package crc32 implements the 32-bit cyclic redundancy check, or CRC-32,
checksum as used by PNG chunk trailers.

It uses the reflected form of the standard CRC-32 polynomial, so the
results match the CRC stored after every chunk of a PNG stream.
*/
package crc32

import (
	"hash"
	crc "hash/crc32"
)

var table = crc.IEEETable

type digest struct {
	crc uint32
	tab *crc.Table
}

// New creates a new hash.Hash32 computing the CRC-32 checksum. Its Sum
// method will lay the value out in big-endian byte order.
func New() hash.Hash32 {
	return &digest{0, table}
}

func (d *digest) Size() int { return crc.Size }

func (d *digest) BlockSize() int { return 1 }

func (d *digest) Reset() { d.crc = 0 }

// Update returns the result of adding the bytes in p to the checksum c.
func Update(c uint32, p []byte) uint32 {
	return crc.Update(c, table, p)
}

func (d *digest) Write(p []byte) (n int, err error) {
	d.crc = crc.Update(d.crc, d.tab, p)
	return len(p), nil
}

func (d *digest) Sum32() uint32 { return d.crc }

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum32()
	return append(in, byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
}

// Checksum returns the CRC-32 checksum of data.
func Checksum(data []byte) uint32 { return Update(0, data) }

// ChecksumChunk returns the CRC-32 of a chunk, which covers the four
// byte type followed by the chunk data but not the length.
func ChecksumChunk(typ string, data []byte) uint32 {
	return Update(Update(0, []byte(typ)), data)
}

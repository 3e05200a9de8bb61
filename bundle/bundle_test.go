package bundle

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	b := New(8, 2)
	assert.Equal(t, 0, b.Length())

	assert.Equal(t, errFrameSize, b.Set(1, []byte{0}))

	one := []byte{1, 1, 1, 1}
	two := []byte{2, 2, 2, 2}
	require.Nil(t, b.Set(1, one))
	require.Nil(t, b.Set(2, two))
	require.Nil(t, b.Set(3, one))
	// Existing entries are kept
	require.Nil(t, b.Set(1, two))

	assert.Equal(t, 3, b.Length())
	assert.Equal(t, 2, b.Frames())

	f, ok := b.Get(1)
	assert.True(t, ok)
	assert.Equal(t, one, f)

	_, ok = b.Get(4)
	assert.False(t, ok)
}

func TestMarshalBinary(t *testing.T) {
	b := New(8, 1)
	require.Nil(t, b.Set(0x02000000, []byte{0xaa, 0xbb}))
	require.Nil(t, b.Set(0x01000000, []byte{0xcc, 0xdd}))
	require.Nil(t, b.Set(0x03000000, []byte{0xaa, 0xbb}))

	data, err := b.MarshalBinary()
	require.Nil(t, err)
	assert.Equal(t, []byte{
		'I', 'N', 'K', 'B',
		0x08, 0x00, 0x01, 0x00, 0x03, 0x00,
		// Sorted checksums
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, 0x03,
		// Frame indices
		0x01, 0x00,
		0x00, 0x00,
		0x00, 0x00,
		// Frames
		0xaa, 0xbb,
		0xcc, 0xdd,
	}, data)
}

func TestMarshalBinaryPanelSize(t *testing.T) {
	tables := []struct {
		name          string
		width, height int
	}{
		{"wide", 70000, 1},
		{"tall", 1, 1 << 16},
		{"negative", -1, 8},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := New(table.width, table.height).MarshalBinary()
			assert.Equal(t, errPanelSize, err)
		})
	}

	data, err := New(maxPanel, maxPanel).MarshalBinary()
	require.Nil(t, err)
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, data[4:8])
}

func TestRoundTrip(t *testing.T) {
	b := New(13, 3)
	for i := 0; i < 10; i++ {
		frame := bytes.Repeat([]byte{byte(i % 4)}, 12)
		require.Nil(t, b.Set(uint32(i*1000), frame))
	}

	data, err := b.MarshalBinary()
	require.Nil(t, err)

	got := New(0, 0)
	require.Nil(t, got.UnmarshalBinary(data))

	w, h := got.Panel()
	assert.Equal(t, 13, w)
	assert.Equal(t, 3, h)
	assert.Equal(t, 10, got.Length())
	assert.Equal(t, 4, got.Frames())
	for i := 0; i < 10; i++ {
		f, ok := got.Get(uint32(i * 1000))
		require.True(t, ok)
		assert.Equal(t, bytes.Repeat([]byte{byte(i % 4)}, 12), f)
	}

	// Re-encoding gives the same bytes
	again, err := got.MarshalBinary()
	require.Nil(t, err)
	assert.Equal(t, data, again)
}

func TestUnmarshalBinaryErrors(t *testing.T) {
	b := New(8, 1)
	require.Nil(t, b.Set(1, []byte{0, 0}))
	data, err := b.MarshalBinary()
	require.Nil(t, err)

	tables := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, errNotEnough},
		{"short header", data[:5], errNotEnough},
		{"magic", append([]byte("PNG!"), data[4:]...), errMagic},
		{"short index", data[:12], errNotEnough},
		{"short frame", data[:len(data)-1], errNotEnough},
		{"bad index", append(append(append([]byte{}, data[:14]...), 0x01, 0x00), data[16:]...), errBadIndex},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			assert.Equal(t, table.err, New(0, 0).UnmarshalBinary(table.data))
		})
	}
}

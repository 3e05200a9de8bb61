package png

import "io"

// Rows is a forward-only sequence of pixel rows. Next must be called
// before each Row, including the first, and returns false once every row
// has been produced or decoding has failed; Err then reports the failure,
// if any. Each row is a flat run of samples, one per channel per pixel,
// and belongs to the caller.
type Rows interface {
	Next() bool
	Row() []uint16
	Err() error
}

// straightRows reconstructs a non-interlaced image one scanline at a time
// straight from the decompressed stream.
type straightRows struct {
	h  Header
	zr io.ReadCloser
	fu int

	y        int
	cur      []byte
	prev     []byte
	row      []uint16
	err      error
	finished bool
}

func newStraightRows(h Header, zr io.ReadCloser) *straightRows {
	// The +1 is for the per-row filter type, which is at cur[0].
	n := 1 + h.RowBytes()
	return &straightRows{
		h:    h,
		zr:   zr,
		fu:   h.filterUnit(),
		cur:  make([]byte, n),
		prev: make([]byte, n),
	}
}

func (s *straightRows) finish(err error) {
	if s.finished {
		return
	}
	s.finished = true
	if err == nil {
		err = checkEOF(s.zr)
	}
	s.err = err
	s.zr.Close()
	s.row = nil
}

func (s *straightRows) Next() bool {
	if s.finished {
		return false
	}
	if s.y >= int(s.h.Height) {
		s.finish(nil)
		return false
	}

	if _, err := io.ReadFull(s.zr, s.cur); err != nil {
		s.finish(inflateError(err))
		return false
	}
	if err := undoFilter(s.cur[0], s.cur[1:], s.prev[1:], s.fu); err != nil {
		s.finish(err)
		return false
	}

	s.row = unpack(s.h, s.cur[1:], int(s.h.Width))
	s.prev, s.cur = s.cur, s.prev
	s.y++

	return true
}

func (s *straightRows) Row() []uint16 { return s.row }

func (s *straightRows) Err() error { return s.err }

// rasterRows yields rows from a fully materialised raster.
type rasterRows struct {
	raster []uint16
	vpr    int
	height int

	y   int
	row []uint16
}

func (r *rasterRows) Next() bool {
	if r.y >= r.height {
		r.row = nil
		return false
	}
	start := r.y * r.vpr
	r.row = r.raster[start : start+r.vpr : start+r.vpr]
	r.y++
	return true
}

func (r *rasterRows) Row() []uint16 { return r.row }

func (r *rasterRows) Err() error { return nil }

// convertRows applies fn to each row of src.
type convertRows struct {
	src Rows
	fn  func([]uint16) ([]uint16, error)

	row []uint16
	err error
}

func (c *convertRows) Next() bool {
	if c.err != nil || !c.src.Next() {
		c.row = nil
		return false
	}
	row, err := c.fn(c.src.Row())
	if err != nil {
		c.err = err
		c.row = nil
		return false
	}
	c.row = row
	return true
}

func (c *convertRows) Row() []uint16 { return c.row }

func (c *convertRows) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.src.Err()
}

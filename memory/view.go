package memory

import "io"

// View is a bounded, positioned window over a segment. Reads and writes go
// directly to the backing storage (zero-copy). Position starts at the window
// start and Limit is start+length; two views over the same segment have
// independent cursors.
//
// A View does not extend the segment's lifetime: once the owning segment is
// freed, view access fails with ErrSegmentFreed.
type View struct {
	seg   *Segment
	start int
	limit int
	pos   int
}

// AsView returns a read/write view over [offset, offset+length).
func (s *Segment) AsView(offset, length int) (*View, error) {
	if err := s.check(offset, length); err != nil {
		return nil, err
	}
	return &View{seg: s, start: offset, limit: offset + length, pos: offset}, nil
}

// Position returns the current cursor as an absolute segment offset.
func (v *View) Position() int { return v.pos }

// Limit returns the absolute end offset of the window.
func (v *View) Limit() int { return v.limit }

// Remaining returns the number of bytes between the cursor and the limit.
func (v *View) Remaining() int { return v.limit - v.pos }

// SetPosition moves the cursor to the absolute offset p within the window.
func (v *View) SetPosition(p int) error {
	if v.seg.freed {
		return ErrSegmentFreed
	}
	if p < v.start || p > v.limit {
		return ErrOutOfBounds
	}
	v.pos = p
	return nil
}

// Read copies bytes from the window into p, advancing the cursor.
// It returns io.EOF once the cursor reaches the limit.
func (v *View) Read(p []byte) (int, error) {
	if v.seg.freed {
		return 0, ErrSegmentFreed
	}
	if v.pos >= v.limit {
		return 0, io.EOF
	}
	n := copy(p, v.seg.data[v.pos:v.limit])
	v.pos += n
	return n, nil
}

// Write copies p into the window, advancing the cursor. Writing past the
// limit fails with ErrOutOfBounds before any bytes are written.
func (v *View) Write(p []byte) (int, error) {
	if v.seg.freed {
		return 0, ErrSegmentFreed
	}
	if len(p) > v.limit-v.pos {
		return 0, ErrOutOfBounds
	}
	n := copy(v.seg.data[v.pos:], p)
	v.pos += n
	return n, nil
}

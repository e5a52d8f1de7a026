package memory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/tablekit/tablekit/internal/mmap"
	"github.com/tablekit/tablekit/resource"
)

var (
	// ErrOutOfBounds is returned when an access falls outside [0, size).
	ErrOutOfBounds = errors.New("memory: access out of bounds")
	// ErrSegmentFreed is returned when a freed segment is accessed.
	ErrSegmentFreed = errors.New("memory: segment already freed")
	// ErrInvalidSize is returned for non-positive allocation sizes.
	ErrInvalidSize = errors.New("memory: invalid segment size")
)

// Segment is a fixed-size, bounds-checked window over heap or off-heap
// memory. All multi-byte accessors use little-endian byte order.
//
// A Segment is owned by a single goroutine at a time; it performs no
// internal locking.
type Segment struct {
	data    []byte
	size    int
	offHeap bool
	mapping *mmap.Mapping
	ctrl    *resource.Controller
	freed   bool
}

// Allocate returns a new zero-initialized heap segment of the given size.
func Allocate(size int) (*Segment, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return &Segment{data: make([]byte, size), size: size}, nil
}

// AllocateOffHeap returns a new zero-initialized off-heap segment backed by
// an anonymous mapping. The bytes are reserved from ctrl (which may be nil)
// and returned by Free. The caller must pair every allocation with Free;
// off-heap memory is not garbage collected.
func AllocateOffHeap(size int, ctrl *resource.Controller) (*Segment, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if err := ctrl.AcquireMemory(int64(size)); err != nil {
		return nil, err
	}
	m, err := mmap.MapAnon(size)
	if err != nil {
		ctrl.ReleaseMemory(int64(size))
		return nil, fmt.Errorf("memory: off-heap allocation failed: %w", err)
	}
	return &Segment{data: m.Bytes(), size: size, offHeap: true, mapping: m, ctrl: ctrl}, nil
}

// Wrap returns a segment aliasing caller-owned memory. The segment does not
// take ownership; Free detaches the alias without releasing the buffer.
func Wrap(buf []byte) *Segment {
	return &Segment{data: buf, size: len(buf)}
}

// Size returns the fixed size of the segment in bytes.
func (s *Segment) Size() int { return s.size }

// IsOffHeap reports whether the segment is backed by off-heap memory.
func (s *Segment) IsOffHeap() bool { return s.offHeap }

// Freed reports whether Free has been called.
func (s *Segment) Freed() bool { return s.freed }

// Free releases the segment. For off-heap segments this unmaps the native
// memory and returns the reservation; for heap and wrapped segments it only
// detaches the buffer. Free is idempotent. All access after Free fails with
// ErrSegmentFreed.
func (s *Segment) Free() error {
	if s.freed {
		return nil
	}
	s.freed = true
	s.data = nil
	if s.mapping != nil {
		err := s.mapping.Close()
		s.mapping = nil
		s.ctrl.ReleaseMemory(int64(s.size))
		s.ctrl = nil
		if err != nil {
			return fmt.Errorf("memory: unmap failed: %w", err)
		}
	}
	return nil
}

// check validates an access of width w at offset off. The comparison avoids
// off+w, which wraps for offsets near the int maximum.
func (s *Segment) check(off, w int) error {
	if s.freed {
		return ErrSegmentFreed
	}
	if off < 0 || w < 0 || off > s.size || w > s.size-off {
		return fmt.Errorf("%w: offset %d width %d size %d", ErrOutOfBounds, off, w, s.size)
	}
	return nil
}

// Get reads the byte at off.
func (s *Segment) Get(off int) (byte, error) {
	if err := s.check(off, 1); err != nil {
		return 0, err
	}
	return s.data[off], nil
}

// Put writes the byte v at off.
func (s *Segment) Put(off int, v byte) error {
	if err := s.check(off, 1); err != nil {
		return err
	}
	s.data[off] = v
	return nil
}

// GetInt16 reads a little-endian int16 at off.
func (s *Segment) GetInt16(off int) (int16, error) {
	if err := s.check(off, 2); err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(s.data[off:])), nil
}

// PutInt16 writes a little-endian int16 at off.
func (s *Segment) PutInt16(off int, v int16) error {
	if err := s.check(off, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(s.data[off:], uint16(v))
	return nil
}

// GetInt32 reads a little-endian int32 at off.
func (s *Segment) GetInt32(off int) (int32, error) {
	if err := s.check(off, 4); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(s.data[off:])), nil
}

// PutInt32 writes a little-endian int32 at off.
func (s *Segment) PutInt32(off int, v int32) error {
	if err := s.check(off, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(s.data[off:], uint32(v))
	return nil
}

// GetInt64 reads a little-endian int64 at off.
func (s *Segment) GetInt64(off int) (int64, error) {
	if err := s.check(off, 8); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(s.data[off:])), nil
}

// PutInt64 writes a little-endian int64 at off.
func (s *Segment) PutInt64(off int, v int64) error {
	if err := s.check(off, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(s.data[off:], uint64(v))
	return nil
}

// GetFloat32 reads a little-endian float32 at off.
func (s *Segment) GetFloat32(off int) (float32, error) {
	bits, err := s.GetInt32(off)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(bits)), nil
}

// PutFloat32 writes a little-endian float32 at off.
func (s *Segment) PutFloat32(off int, v float32) error {
	return s.PutInt32(off, int32(math.Float32bits(v)))
}

// GetFloat64 reads a little-endian float64 at off.
func (s *Segment) GetFloat64(off int) (float64, error) {
	bits, err := s.GetInt64(off)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(bits)), nil
}

// PutFloat64 writes a little-endian float64 at off.
func (s *Segment) PutFloat64(off int, v float64) error {
	return s.PutInt64(off, int64(math.Float64bits(v)))
}

// GetBytes copies len(dst) bytes starting at off into dst.
func (s *Segment) GetBytes(off int, dst []byte) error {
	if err := s.check(off, len(dst)); err != nil {
		return err
	}
	copy(dst, s.data[off:])
	return nil
}

// PutBytes copies src into the segment starting at off.
func (s *Segment) PutBytes(off int, src []byte) error {
	if err := s.check(off, len(src)); err != nil {
		return err
	}
	copy(s.data[off:], src)
	return nil
}

// Slice returns a zero-copy window into the backing storage. Writes through
// the returned slice are visible to the segment. The slice is valid only
// until Free.
func (s *Segment) Slice(off, length int) ([]byte, error) {
	if err := s.check(off, length); err != nil {
		return nil, err
	}
	return s.data[off : off+length : off+length], nil
}

// CopyTo copies length bytes from this segment at srcOff into dst at dstOff.
// It behaves identically regardless of the heap/off-heap kind of either
// segment.
func (s *Segment) CopyTo(srcOff int, dst *Segment, dstOff, length int) error {
	if err := s.check(srcOff, length); err != nil {
		return err
	}
	if err := dst.check(dstOff, length); err != nil {
		return err
	}
	copy(dst.data[dstOff:dstOff+length], s.data[srcOff:srcOff+length])
	return nil
}

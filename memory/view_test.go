package memory

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsView_PositionAndLimit(t *testing.T) {
	seg := Wrap(make([]byte, 16))

	v1, err := seg.AsView(1, 2)
	require.NoError(t, err)
	v2, err := seg.AsView(3, 4)
	require.NoError(t, err)

	assert.Equal(t, 1, v1.Position())
	assert.Equal(t, 3, v1.Limit())
	assert.Equal(t, 3, v2.Position())
	assert.Equal(t, 7, v2.Limit())
}

func TestView_IndependentCursors(t *testing.T) {
	seg := Wrap(make([]byte, 16))

	v1, err := seg.AsView(0, 8)
	require.NoError(t, err)
	v2, err := seg.AsView(8, 8)
	require.NoError(t, err)

	n, err := v1.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, v1.Position())

	// v2's cursor is unaffected by v1's writes.
	assert.Equal(t, 8, v2.Position())

	// Views over disjoint ranges never observe each other's writes.
	buf := make([]byte, 8)
	_, err = v2.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8), buf)
}

func TestView_WritesVisibleOnSegment(t *testing.T) {
	seg := Wrap(make([]byte, 8))

	v, err := seg.AsView(2, 4)
	require.NoError(t, err)
	_, err = v.Write([]byte{0xDE, 0xAD})
	require.NoError(t, err)

	b, err := seg.Get(2)
	require.NoError(t, err)
	assert.Equal(t, byte(0xDE), b)
	b, err = seg.Get(3)
	require.NoError(t, err)
	assert.Equal(t, byte(0xAD), b)

	// The byte before and after the written range stay untouched.
	b, _ = seg.Get(1)
	assert.Equal(t, byte(0), b)
	b, _ = seg.Get(4)
	assert.Equal(t, byte(0), b)
}

func TestView_Bounds(t *testing.T) {
	seg := Wrap(make([]byte, 8))

	v, err := seg.AsView(0, 4)
	require.NoError(t, err)

	// Writing past the limit fails without partial writes.
	_, err = v.Write([]byte{1, 2, 3, 4, 5})
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, 0, v.Position())

	_, err = v.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 0, v.Remaining())

	// Reading at the limit reports EOF, not an error.
	_, err = v.Read(make([]byte, 1))
	assert.Equal(t, io.EOF, err)

	require.NoError(t, v.SetPosition(2))
	buf := make([]byte, 8)
	n, err := v.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{3, 4}, buf[:2])

	assert.ErrorIs(t, v.SetPosition(5), ErrOutOfBounds)

	// Out-of-range view construction fails.
	_, err = seg.AsView(6, 4)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = seg.AsView(-1, 2)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestView_UseAfterFree(t *testing.T) {
	seg, err := Allocate(8)
	require.NoError(t, err)

	v, err := seg.AsView(0, 8)
	require.NoError(t, err)
	require.NoError(t, seg.Free())

	_, err = v.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrSegmentFreed)
	_, err = v.Write([]byte{1})
	assert.ErrorIs(t, err, ErrSegmentFreed)
}

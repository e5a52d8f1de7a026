package iterate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablekit/tablekit/disk"
	"github.com/tablekit/tablekit/projection"
	"github.com/tablekit/tablekit/row"
)

func userType() row.RowType {
	return row.NewRowType(
		row.Field{Name: "id", Type: row.Int64()},
		row.Field{Name: "name", Type: row.String()},
	)
}

func encodeAll(t *testing.T, ty row.RowType, rows ...row.Row) []*row.BinaryRow {
	t.Helper()
	out := make([]*row.BinaryRow, len(rows))
	for i, r := range rows {
		br, err := row.Encode(ty, r)
		require.NoError(t, err)
		out[i] = br
	}
	return out
}

func drain(t *testing.T, it Iterator) []*row.BinaryRow {
	t.Helper()
	var out []*row.BinaryRow
	for {
		r, err := it.Next()
		require.NoError(t, err)
		if r == nil {
			return out
		}
		out = append(out, r)
	}
}

func spill(t *testing.T, m *disk.Manager, ty row.RowType, blockSize int, rows ...row.Row) disk.ID {
	t.Helper()
	id := m.NewID()
	w, err := m.NewWriter(id)
	require.NoError(t, err)
	cw, err := NewChannelWriter(w, blockSize)
	require.NoError(t, err)
	for _, br := range encodeAll(t, ty, rows...) {
		require.NoError(t, cw.Add(context.Background(), br))
	}
	require.NoError(t, cw.Close())
	return id
}

func TestFromRows(t *testing.T) {
	ty := userType()
	rows := encodeAll(t, ty, row.Row{int64(1), "a"}, row.Row{int64(2), "b"})

	it := FromRows(rows...)
	got := drain(t, it)
	require.Len(t, got, 2)
	assert.Same(t, rows[0], got[0])
	assert.Same(t, rows[1], got[1])

	// Exhausted iterators stay exhausted.
	r, err := it.Next()
	require.NoError(t, err)
	assert.Nil(t, r)
	require.NoError(t, it.Close())
}

func TestChannelRoundTrip(t *testing.T) {
	m, err := disk.NewManager([]string{t.TempDir()})
	require.NoError(t, err)

	ty := userType()
	id := spill(t, m, ty, 4096,
		row.Row{int64(1), "alice"},
		row.Row{int64(2), nil},
		row.Row{int64(3), "carol"},
	)

	r, err := m.NewReader(id)
	require.NoError(t, err)
	it, err := NewChannelIterator(r, ty, nil)
	require.NoError(t, err)
	defer it.Close()

	got := drain(t, it)
	require.Len(t, got, 3)

	id0, err := got[0].Int64At(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id0)

	null, err := got[1].IsNullAt(1)
	require.NoError(t, err)
	assert.True(t, null)

	name, err := got[2].StringAt(1)
	require.NoError(t, err)
	assert.Equal(t, "carol", name)
}

func TestChannelSpillsManyBlocks(t *testing.T) {
	m, err := disk.NewManager([]string{t.TempDir()})
	require.NoError(t, err)

	ty := userType()
	var rows []row.Row
	for i := 0; i < 500; i++ {
		rows = append(rows, row.Row{int64(i), "payload payload payload"})
	}
	// Small block size forces many blocks.
	id := spill(t, m, ty, 256, rows...)

	r, err := m.NewReader(id)
	require.NoError(t, err)
	it, err := NewChannelIterator(r, ty, nil)
	require.NoError(t, err)
	defer it.Close()

	got := drain(t, it)
	require.Len(t, got, 500)
	for i, br := range got {
		v, err := br.Int64At(0)
		require.NoError(t, err)
		assert.Equal(t, int64(i), v)
	}
}

func TestChannelOversizedRow(t *testing.T) {
	m, err := disk.NewManager([]string{t.TempDir()})
	require.NoError(t, err)

	big := make([]byte, 1024)
	for i := range big {
		big[i] = byte(i)
	}
	ty := row.NewRowType(row.Field{Name: "blob", Type: row.Bytes()})
	id := spill(t, m, ty, 128, row.Row{[]byte("small")}, row.Row{big}, row.Row{[]byte("tail")})

	r, err := m.NewReader(id)
	require.NoError(t, err)
	it, err := NewChannelIterator(r, ty, nil)
	require.NoError(t, err)
	defer it.Close()

	got := drain(t, it)
	require.Len(t, got, 3)

	b, err := got[1].BytesAt(0)
	require.NoError(t, err)
	assert.Equal(t, big, b)

	tail, err := got[2].BytesAt(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("tail"), tail)
}

func TestChannelSchemaEvolutionRead(t *testing.T) {
	m, err := disk.NewManager([]string{t.TempDir()})
	require.NoError(t, err)

	// Old files were written without the column at target position 1.
	oldTy := userType()
	id := spill(t, m, oldTy, 1024, row.Row{int64(9), "old"})

	r, err := m.NewReader(id)
	require.NoError(t, err)
	it, err := NewChannelIterator(r, oldTy, []int{0, projection.Absent, 1})
	require.NoError(t, err)
	defer it.Close()

	got := drain(t, it)
	require.Len(t, got, 1)
	require.Equal(t, 3, got[0].Arity())

	v, err := got[0].Int64At(0)
	require.NoError(t, err)
	assert.Equal(t, int64(9), v)

	null, err := got[0].IsNullAt(1)
	require.NoError(t, err)
	assert.True(t, null)

	name, err := got[0].StringAt(2)
	require.NoError(t, err)
	assert.Equal(t, "old", name)
}

func TestChannelIdentityMappingPassesThrough(t *testing.T) {
	m, err := disk.NewManager([]string{t.TempDir()})
	require.NoError(t, err)

	ty := userType()
	id := spill(t, m, ty, 1024, row.Row{int64(1), "x"})

	r, err := m.NewReader(id)
	require.NoError(t, err)
	it, err := NewChannelIterator(r, ty, projection.Identity(ty.Arity()))
	require.NoError(t, err)
	defer it.Close()

	got := drain(t, it)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Arity())
}

func TestMergeSortedRuns(t *testing.T) {
	ty := row.NewRowType(row.Field{Name: "k", Type: row.Int64()})
	mk := func(keys ...int64) Iterator {
		rows := make([]row.Row, len(keys))
		for i, k := range keys {
			rows[i] = row.Row{k}
		}
		return FromRows(encodeAll(t, ty, rows...)...)
	}

	cmp := func(a, b *row.BinaryRow) int {
		ka, _ := a.Int64At(0)
		kb, _ := b.Int64At(0)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	}

	it := Merge(cmp, mk(1, 4, 7), mk(2, 5, 8), mk(3, 6, 9), mk())
	got := drain(t, it)
	require.Len(t, got, 9)
	for i, br := range got {
		k, err := br.Int64At(0)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), k)
	}
	require.NoError(t, it.Close())
}

func TestMergeEmpty(t *testing.T) {
	it := Merge(func(a, b *row.BinaryRow) int { return 0 })
	r, err := it.Next()
	require.NoError(t, err)
	assert.Nil(t, r)
}

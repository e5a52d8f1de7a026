package iterate

import "github.com/tablekit/tablekit/row"

// Iterator is a lazy, forward-only record sequence. Next returns a nil row
// at end of stream; an error is a failure, never end-of-stream.
type Iterator interface {
	Next() (*row.BinaryRow, error)
	Close() error
}

// FromRows returns an iterator over an in-memory row slice.
func FromRows(rows ...*row.BinaryRow) Iterator {
	return &sliceIterator{rows: rows}
}

type sliceIterator struct {
	rows []*row.BinaryRow
	pos  int
}

func (it *sliceIterator) Next() (*row.BinaryRow, error) {
	if it.pos >= len(it.rows) {
		return nil, nil
	}
	r := it.rows[it.pos]
	it.pos++
	return r, nil
}

func (it *sliceIterator) Close() error { return nil }

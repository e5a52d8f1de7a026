package format

import "github.com/RoaringBitmap/roaring/v2"

// Selection is a set of row positions a reader should emit, used to push
// row-level filtering down into a format reader. A nil *Selection selects
// every row.
type Selection struct {
	bm *roaring.Bitmap
}

// NewSelection returns a selection containing the given row positions.
func NewSelection(positions ...uint32) *Selection {
	bm := roaring.New()
	bm.AddMany(positions)
	return &Selection{bm: bm}
}

// Add includes a row position.
func (s *Selection) Add(pos uint32) { s.bm.Add(pos) }

// Contains reports whether the row position is selected. Nil-safe: a nil
// selection contains every position.
func (s *Selection) Contains(pos uint32) bool {
	if s == nil {
		return true
	}
	return s.bm.Contains(pos)
}

// Count returns the number of selected positions (0 for nil).
func (s *Selection) Count() uint64 {
	if s == nil {
		return 0
	}
	return s.bm.GetCardinality()
}

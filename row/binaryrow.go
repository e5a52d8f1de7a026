package row

import (
	"errors"
	"fmt"

	"github.com/tablekit/tablekit/memory"
)

var (
	// ErrArityMismatch is returned when a value count or mapping length does
	// not match the schema arity.
	ErrArityMismatch = errors.New("row: arity mismatch")
	// ErrTypeMismatch is returned when a value does not match the declared
	// field type.
	ErrTypeMismatch = errors.New("row: type mismatch")
	// ErrNullField is returned by typed accessors when the field is null.
	ErrNullField = errors.New("row: field is null")
	// ErrFieldIndex is returned for field indexes outside the schema.
	ErrFieldIndex = errors.New("row: field index out of range")
)

// Row is a logical record: one value per schema field, nil meaning null.
// Supported value types are bool, int8, int16, int32, int64, float32,
// float64, string, []byte and Timestamp, matching the schema kind set.
type Row []any

// BinaryRow is the serialized, immutable view of one logical record inside
// a memory segment. See the package documentation for the byte layout.
type BinaryRow struct {
	seg    *memory.Segment
	offset int
	length int
	ty     RowType
}

// FromSegment wraps an already encoded row at [offset, offset+length) in
// seg. The bytes are aliased, not copied.
func FromSegment(ty RowType, seg *memory.Segment, offset, length int) *BinaryRow {
	return &BinaryRow{seg: seg, offset: offset, length: length, ty: ty}
}

// Type returns the schema this row was encoded under.
func (r *BinaryRow) Type() RowType { return r.ty }

// Arity returns the field count.
func (r *BinaryRow) Arity() int { return r.ty.Arity() }

// SizeInBytes returns the total encoded length, including padding.
func (r *BinaryRow) SizeInBytes() int { return r.length }

// Bytes returns the encoded bytes, zero-copy.
func (r *BinaryRow) Bytes() ([]byte, error) {
	return r.seg.Slice(r.offset, r.length)
}

func (r *BinaryRow) bitmapLen() int { return (r.ty.Arity() + 7) / 8 }

func (r *BinaryRow) slotOffset(i int) int { return r.offset + r.bitmapLen() + i*8 }

func (r *BinaryRow) checkIndex(i int) error {
	if i < 0 || i >= r.ty.Arity() {
		return fmt.Errorf("%w: %d (arity %d)", ErrFieldIndex, i, r.ty.Arity())
	}
	return nil
}

// IsNullAt reports whether field i is null, reading only the null bitmap.
func (r *BinaryRow) IsNullAt(i int) (bool, error) {
	if err := r.checkIndex(i); err != nil {
		return false, err
	}
	b, err := r.seg.Get(r.offset + i/8)
	if err != nil {
		return false, err
	}
	return b&(1<<(i%8)) != 0, nil
}

func (r *BinaryRow) checkField(i int, kind Kind) error {
	if err := r.checkIndex(i); err != nil {
		return err
	}
	if got := r.ty.Field(i).Type.Kind; got != kind {
		return fmt.Errorf("%w: field %d is %s, not %s", ErrTypeMismatch, i, got, kind)
	}
	null, err := r.IsNullAt(i)
	if err != nil {
		return err
	}
	if null {
		return fmt.Errorf("%w: field %d", ErrNullField, i)
	}
	return nil
}

// BoolAt returns field i as a bool.
func (r *BinaryRow) BoolAt(i int) (bool, error) {
	if err := r.checkField(i, KindBool); err != nil {
		return false, err
	}
	b, err := r.seg.Get(r.slotOffset(i))
	return b != 0, err
}

// Int8At returns field i as an int8.
func (r *BinaryRow) Int8At(i int) (int8, error) {
	if err := r.checkField(i, KindInt8); err != nil {
		return 0, err
	}
	b, err := r.seg.Get(r.slotOffset(i))
	return int8(b), err
}

// Int16At returns field i as an int16.
func (r *BinaryRow) Int16At(i int) (int16, error) {
	if err := r.checkField(i, KindInt16); err != nil {
		return 0, err
	}
	return r.seg.GetInt16(r.slotOffset(i))
}

// Int32At returns field i as an int32.
func (r *BinaryRow) Int32At(i int) (int32, error) {
	if err := r.checkField(i, KindInt32); err != nil {
		return 0, err
	}
	return r.seg.GetInt32(r.slotOffset(i))
}

// Int64At returns field i as an int64.
func (r *BinaryRow) Int64At(i int) (int64, error) {
	if err := r.checkField(i, KindInt64); err != nil {
		return 0, err
	}
	return r.seg.GetInt64(r.slotOffset(i))
}

// Float32At returns field i as a float32.
func (r *BinaryRow) Float32At(i int) (float32, error) {
	if err := r.checkField(i, KindFloat32); err != nil {
		return 0, err
	}
	return r.seg.GetFloat32(r.slotOffset(i))
}

// Float64At returns field i as a float64.
func (r *BinaryRow) Float64At(i int) (float64, error) {
	if err := r.checkField(i, KindFloat64); err != nil {
		return 0, err
	}
	return r.seg.GetFloat64(r.slotOffset(i))
}

// varAt dereferences the variable-region descriptor of field i.
func (r *BinaryRow) varAt(i int) ([]byte, error) {
	slot := r.slotOffset(i)
	off, err := r.seg.GetInt32(slot)
	if err != nil {
		return nil, err
	}
	length, err := r.seg.GetInt32(slot + 4)
	if err != nil {
		return nil, err
	}
	if off < 0 || length < 0 || int(off)+int(length) > r.length {
		return nil, fmt.Errorf("row: corrupt descriptor at field %d: offset %d length %d", i, off, length)
	}
	return r.seg.Slice(r.offset+int(off), int(length))
}

// StringAt returns field i as a string.
func (r *BinaryRow) StringAt(i int) (string, error) {
	if err := r.checkField(i, KindString); err != nil {
		return "", err
	}
	b, err := r.varAt(i)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// BytesAt returns a copy of field i's bytes.
func (r *BinaryRow) BytesAt(i int) ([]byte, error) {
	if err := r.checkField(i, KindBytes); err != nil {
		return nil, err
	}
	b, err := r.varAt(i)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// TimestampAt returns field i as a Timestamp, honoring the field's declared
// precision: compact values are read inline, others from the variable
// region.
func (r *BinaryRow) TimestampAt(i int) (Timestamp, error) {
	if err := r.checkField(i, KindTimestamp); err != nil {
		return Timestamp{}, err
	}
	if r.ty.Field(i).Type.inline() {
		millis, err := r.seg.GetInt64(r.slotOffset(i))
		if err != nil {
			return Timestamp{}, err
		}
		return FromEpochMillis(millis), nil
	}
	b, err := r.varAt(i)
	if err != nil {
		return Timestamp{}, err
	}
	if len(b) != 12 {
		return Timestamp{}, fmt.Errorf("row: corrupt timestamp at field %d: %d bytes", i, len(b))
	}
	tmp := memory.Wrap(b)
	millis, _ := tmp.GetInt64(0)
	nanos, _ := tmp.GetInt32(8)
	return FromEpochMillisNanos(millis, nanos), nil
}

// ValueAt decodes field i into its logical value, or nil if the field is
// null. The null bitmap is consulted before any slot or descriptor is read.
func (r *BinaryRow) ValueAt(i int) (any, error) {
	null, err := r.IsNullAt(i)
	if err != nil {
		return nil, err
	}
	if null {
		return nil, nil
	}

	switch r.ty.Field(i).Type.Kind {
	case KindBool:
		return r.BoolAt(i)
	case KindInt8:
		return r.Int8At(i)
	case KindInt16:
		return r.Int16At(i)
	case KindInt32:
		return r.Int32At(i)
	case KindInt64:
		return r.Int64At(i)
	case KindFloat32:
		return r.Float32At(i)
	case KindFloat64:
		return r.Float64At(i)
	case KindString:
		return r.StringAt(i)
	case KindBytes:
		return r.BytesAt(i)
	case KindTimestamp:
		return r.TimestampAt(i)
	default:
		return nil, fmt.Errorf("%w: field %d has unknown kind", ErrTypeMismatch, i)
	}
}

// Decode materializes the full logical row.
func (r *BinaryRow) Decode() (Row, error) {
	out := make(Row, r.ty.Arity())
	for i := range out {
		v, err := r.ValueAt(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

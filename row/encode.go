package row

import (
	"fmt"

	"github.com/tablekit/tablekit/memory"
)

// align8 rounds n up to the next multiple of 8.
func align8(n int) int { return (n + 7) &^ 7 }

// EncodedSize returns the exact byte length Encode will produce for values
// under ty, without encoding.
func EncodedSize(ty RowType, values Row) (int, error) {
	if len(values) != ty.Arity() {
		return 0, fmt.Errorf("%w: %d values for arity %d", ErrArityMismatch, len(values), ty.Arity())
	}
	n := ty.Arity()
	size := (n + 7) / 8
	size += n * 8
	for i, v := range values {
		if v == nil {
			continue
		}
		ft := ty.Field(i).Type
		switch ft.Kind {
		case KindString:
			s, ok := v.(string)
			if !ok {
				return 0, typeErr(i, ft, v)
			}
			size += len(s)
		case KindBytes:
			b, ok := v.([]byte)
			if !ok {
				return 0, typeErr(i, ft, v)
			}
			size += len(b)
		case KindTimestamp:
			if _, ok := v.(Timestamp); !ok {
				return 0, typeErr(i, ft, v)
			}
			if !ft.inline() {
				size += 12
			}
		}
	}
	return align8(size), nil
}

func typeErr(i int, ft DataType, v any) error {
	return fmt.Errorf("%w: field %d (%s) given %T", ErrTypeMismatch, i, ft.Kind, v)
}

// Encode serializes a logical row into a freshly allocated heap segment and
// returns the immutable binary view. Fields are walked in schema order:
// null fields only set their bitmap bit; fixed-size values are written
// inline; variable-size values go to the variable region with an
// offset+length descriptor in the fixed slot.
func Encode(ty RowType, values Row) (*BinaryRow, error) {
	total, err := EncodedSize(ty, values)
	if err != nil {
		return nil, err
	}

	seg, err := memory.Allocate(total)
	if err != nil {
		return nil, err
	}

	n := ty.Arity()
	bitmapLen := (n + 7) / 8
	varOff := bitmapLen + n*8

	for i, v := range values {
		slot := bitmapLen + i*8
		if v == nil {
			b, _ := seg.Get(i / 8)
			if err := seg.Put(i/8, b|1<<(i%8)); err != nil {
				return nil, err
			}
			continue
		}

		ft := ty.Field(i).Type
		switch ft.Kind {
		case KindBool:
			bv, ok := v.(bool)
			if !ok {
				return nil, typeErr(i, ft, v)
			}
			var raw byte
			if bv {
				raw = 1
			}
			err = seg.Put(slot, raw)
		case KindInt8:
			iv, ok := v.(int8)
			if !ok {
				return nil, typeErr(i, ft, v)
			}
			err = seg.Put(slot, byte(iv))
		case KindInt16:
			iv, ok := v.(int16)
			if !ok {
				return nil, typeErr(i, ft, v)
			}
			err = seg.PutInt16(slot, iv)
		case KindInt32:
			iv, ok := v.(int32)
			if !ok {
				return nil, typeErr(i, ft, v)
			}
			err = seg.PutInt32(slot, iv)
		case KindInt64:
			iv, ok := v.(int64)
			if !ok {
				return nil, typeErr(i, ft, v)
			}
			err = seg.PutInt64(slot, iv)
		case KindFloat32:
			fv, ok := v.(float32)
			if !ok {
				return nil, typeErr(i, ft, v)
			}
			err = seg.PutFloat32(slot, fv)
		case KindFloat64:
			fv, ok := v.(float64)
			if !ok {
				return nil, typeErr(i, ft, v)
			}
			err = seg.PutFloat64(slot, fv)
		case KindString:
			varOff, err = putVar(seg, slot, varOff, []byte(v.(string)))
		case KindBytes:
			varOff, err = putVar(seg, slot, varOff, v.([]byte))
		case KindTimestamp:
			ts := v.(Timestamp)
			if ft.inline() {
				// Compact timestamps never carry a nanosecond component.
				if ts.NanoOfMillisecond() != 0 {
					return nil, fmt.Errorf("%w: field %d: non-zero nanos with compact precision %d",
						ErrTypeMismatch, i, ft.Precision)
				}
				err = seg.PutInt64(slot, ts.Millisecond())
			} else {
				var buf [12]byte
				tmp := memory.Wrap(buf[:])
				_ = tmp.PutInt64(0, ts.Millisecond())
				_ = tmp.PutInt32(8, ts.NanoOfMillisecond())
				varOff, err = putVar(seg, slot, varOff, buf[:])
			}
		default:
			err = fmt.Errorf("%w: field %d has unknown kind %d", ErrTypeMismatch, i, ft.Kind)
		}
		if err != nil {
			return nil, err
		}
	}

	return FromSegment(ty, seg, 0, total), nil
}

// putVar appends payload to the variable region at varOff and writes the
// offset+length descriptor into the fixed slot. It returns the new variable
// offset.
func putVar(seg *memory.Segment, slot, varOff int, payload []byte) (int, error) {
	if err := seg.PutInt32(slot, int32(varOff)); err != nil {
		return 0, err
	}
	if err := seg.PutInt32(slot+4, int32(len(payload))); err != nil {
		return 0, err
	}
	if err := seg.PutBytes(varOff, payload); err != nil {
		return 0, err
	}
	return varOff + len(payload), nil
}

package row

import "fmt"

// Kind identifies a field's physical type. The set is closed: the codec
// supports exactly these kinds.
type Kind uint8

const (
	KindBool Kind = iota + 1
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// DataType describes one field type. Precision is meaningful only for
// timestamps.
type DataType struct {
	Kind      Kind
	Precision int
}

// Convenience constructors mirroring the supported kind set.
func Bool() DataType    { return DataType{Kind: KindBool} }
func Int8() DataType    { return DataType{Kind: KindInt8} }
func Int16() DataType   { return DataType{Kind: KindInt16} }
func Int32() DataType   { return DataType{Kind: KindInt32} }
func Int64() DataType   { return DataType{Kind: KindInt64} }
func Float32() DataType { return DataType{Kind: KindFloat32} }
func Float64() DataType { return DataType{Kind: KindFloat64} }
func String() DataType  { return DataType{Kind: KindString} }
func Bytes() DataType   { return DataType{Kind: KindBytes} }

// TimestampType returns a timestamp type with the given precision (0..9
// fractional-second digits).
func TimestampType(precision int) DataType {
	return DataType{Kind: KindTimestamp, Precision: precision}
}

// inline reports whether values of this type are stored inline in the
// 8-byte fixed slot rather than in the variable region.
func (d DataType) inline() bool {
	switch d.Kind {
	case KindString, KindBytes:
		return false
	case KindTimestamp:
		return IsCompact(d.Precision)
	default:
		return true
	}
}

// Field is a named, typed column of a row schema.
type Field struct {
	Name string
	Type DataType
}

// RowType is an ordered field list describing the logical schema of a row.
type RowType struct {
	fields []Field
}

// NewRowType builds a schema from the given fields.
func NewRowType(fields ...Field) RowType {
	return RowType{fields: fields}
}

// Arity returns the number of fields.
func (t RowType) Arity() int { return len(t.fields) }

// Field returns the i-th field.
func (t RowType) Field(i int) Field { return t.fields[i] }

// Fields returns the field list. Callers must not mutate it.
func (t RowType) Fields() []Field { return t.fields }

// Package projection compiles column-index mappings into functions that
// rewrite one binary row into another (subset/reorder of fields).
//
// A mapping holds one source-field index per target field, with Absent
// marking fields that do not exist in the source. The same mechanism serves
// column pruning during scans and schema-evolution reads, where Absent
// encodes "this target field did not exist when the source was written".
package projection

import (
	"errors"
	"fmt"

	"github.com/tablekit/tablekit/row"
)

// Absent is the mapping sentinel for a target field with no source column.
// Applying a projection emits null for such fields.
const Absent = -1

// ErrMappingArity is returned by Compile when the mapping length does not
// match the target schema arity.
var ErrMappingArity = errors.New("projection: mapping length does not match target arity")

// ErrSourceIndex is returned by Apply when a mapping entry falls outside
// the source row.
var ErrSourceIndex = errors.New("projection: source index out of range")

// Projection is a compiled mapping. It binds source indices at apply time,
// not compile time, so one compiled projection can be reused across
// compatible source schemas.
type Projection struct {
	target  row.RowType
	mapping []int
}

// Compile validates the mapping length against the target arity and returns
// the projection. Source indices are not validated here.
func Compile(target row.RowType, mapping []int) (*Projection, error) {
	if len(mapping) != target.Arity() {
		return nil, fmt.Errorf("%w: %d entries for arity %d",
			ErrMappingArity, len(mapping), target.Arity())
	}
	m := make([]int, len(mapping))
	copy(m, mapping)
	return &Projection{target: target, mapping: m}, nil
}

// TargetType derives the schema a mapping produces over src. In-range
// entries carry the source field through; Absent (or otherwise out-of-range)
// entries become nullable string placeholders, since they only ever carry
// nulls.
func TargetType(src row.RowType, mapping []int) row.RowType {
	fields := make([]row.Field, len(mapping))
	for i, m := range mapping {
		if m >= 0 && m < src.Arity() {
			fields[i] = src.Field(m)
		} else {
			fields[i] = row.Field{Name: fmt.Sprintf("_absent%d", i), Type: row.String()}
		}
	}
	return row.NewRowType(fields...)
}

// Identity returns the trivial mapping [0, 1, ..., n-1].
func Identity(n int) []int {
	m := make([]int, n)
	for i := range m {
		m[i] = i
	}
	return m
}

// Target returns the target schema.
func (p *Projection) Target() row.RowType { return p.target }

// IsIdentity reports whether applying p to a row of the given arity would
// be a no-op, letting callers skip the copy entirely.
func (p *Projection) IsIdentity(srcArity int) bool {
	if len(p.mapping) != srcArity {
		return false
	}
	for i, m := range p.mapping {
		if m != i {
			return false
		}
	}
	return true
}

// Apply rewrites src into a fully independent binary row under the target
// schema: Absent entries become null, everything else is copied (null bit
// included) from the mapped source field. The result shares no storage with
// src, which may be recycled by its reader.
func (p *Projection) Apply(src *row.BinaryRow) (*row.BinaryRow, error) {
	values := make(row.Row, len(p.mapping))
	for i, m := range p.mapping {
		if m == Absent {
			continue
		}
		if m < 0 || m >= src.Arity() {
			return nil, fmt.Errorf("%w: %d (source arity %d)", ErrSourceIndex, m, src.Arity())
		}
		v, err := src.ValueAt(m)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return row.Encode(p.target, values)
}

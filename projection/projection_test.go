package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablekit/tablekit/row"
)

func threeFieldType() row.RowType {
	return row.NewRowType(
		row.Field{Name: "a", Type: row.String()},
		row.Field{Name: "b", Type: row.Int32()},
		row.Field{Name: "c", Type: row.Float64()},
	)
}

func TestCompile_RejectsBadArity(t *testing.T) {
	_, err := Compile(threeFieldType(), []int{0, 1})
	assert.ErrorIs(t, err, ErrMappingArity)

	_, err = Compile(threeFieldType(), []int{0, 1, 2, 0})
	assert.ErrorIs(t, err, ErrMappingArity)

	// Source indices are deliberately not validated at compile time.
	_, err = Compile(threeFieldType(), []int{99, 98, 97})
	require.NoError(t, err)
}

func TestApply_Permutation(t *testing.T) {
	src, err := row.Encode(threeFieldType(), row.Row{"a", int32(1), 2.0})
	require.NoError(t, err)

	// Target (c, a, b) via mapping [2, 0, 1].
	target := row.NewRowType(
		row.Field{Name: "c", Type: row.Float64()},
		row.Field{Name: "a", Type: row.String()},
		row.Field{Name: "b", Type: row.Int32()},
	)
	p, err := Compile(target, []int{2, 0, 1})
	require.NoError(t, err)

	out, err := p.Apply(src)
	require.NoError(t, err)

	got, err := out.Decode()
	require.NoError(t, err)
	assert.Equal(t, row.Row{2.0, "a", int32(1)}, got)
}

func TestApply_AbsentFieldsAreNull(t *testing.T) {
	src, err := row.Encode(threeFieldType(), row.Row{"x", int32(5), 1.25})
	require.NoError(t, err)

	// Newer schema adds a column the source never had.
	target := row.NewRowType(
		row.Field{Name: "a", Type: row.String()},
		row.Field{Name: "added", Type: row.Int64()},
		row.Field{Name: "b", Type: row.Int32()},
	)
	p, err := Compile(target, []int{0, Absent, 1})
	require.NoError(t, err)

	out, err := p.Apply(src)
	require.NoError(t, err)

	null, err := out.IsNullAt(1)
	require.NoError(t, err)
	assert.True(t, null)

	a, err := out.StringAt(0)
	require.NoError(t, err)
	assert.Equal(t, "x", a)

	b, err := out.Int32At(2)
	require.NoError(t, err)
	assert.Equal(t, int32(5), b)
}

func TestApply_PreservesNullBits(t *testing.T) {
	src, err := row.Encode(threeFieldType(), row.Row{nil, int32(5), nil})
	require.NoError(t, err)

	target := row.NewRowType(
		row.Field{Name: "c", Type: row.Float64()},
		row.Field{Name: "a", Type: row.String()},
	)
	p, err := Compile(target, []int{2, 0})
	require.NoError(t, err)

	out, err := p.Apply(src)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		null, err := out.IsNullAt(i)
		require.NoError(t, err)
		assert.True(t, null, "field %d", i)
	}
}

func TestApply_IndependentOfSource(t *testing.T) {
	ty := row.NewRowType(row.Field{Name: "s", Type: row.String()})
	src, err := row.Encode(ty, row.Row{"original"})
	require.NoError(t, err)

	p, err := Compile(ty, []int{0})
	require.NoError(t, err)

	out, err := p.Apply(src)
	require.NoError(t, err)

	// Clobber the source record; the projected copy must not change.
	raw, err := src.Bytes()
	require.NoError(t, err)
	for i := range raw {
		raw[i] = 0xFF
	}

	s, err := out.StringAt(0)
	require.NoError(t, err)
	assert.Equal(t, "original", s)
}

func TestApply_SourceIndexBoundAtApplyTime(t *testing.T) {
	ty := row.NewRowType(row.Field{Name: "s", Type: row.String()})
	src, err := row.Encode(ty, row.Row{"v"})
	require.NoError(t, err)

	p, err := Compile(ty, []int{3})
	require.NoError(t, err)

	_, err = p.Apply(src)
	assert.ErrorIs(t, err, ErrSourceIndex)
}

func TestTargetType(t *testing.T) {
	src := threeFieldType()

	ty := TargetType(src, []int{2, Absent, 0})
	require.Equal(t, 3, ty.Arity())

	assert.Equal(t, src.Field(2), ty.Field(0))
	assert.Equal(t, src.Field(0), ty.Field(2))

	// The placeholder carries only nulls; its name marks the gap.
	assert.Equal(t, "_absent1", ty.Field(1).Name)
	assert.Equal(t, row.KindString, ty.Field(1).Type.Kind)

	// A derived target compiles against its own mapping.
	p, err := Compile(ty, []int{2, Absent, 0})
	require.NoError(t, err)
	r, err := row.Encode(src, row.Row{"a", int32(1), 2.0})
	require.NoError(t, err)
	out, err := p.Apply(r)
	require.NoError(t, err)
	got, err := out.Decode()
	require.NoError(t, err)
	assert.Equal(t, row.Row{2.0, nil, "a"}, got)
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, Identity(3))

	p, err := Compile(threeFieldType(), Identity(3))
	require.NoError(t, err)
	assert.True(t, p.IsIdentity(3))
	assert.False(t, p.IsIdentity(4))

	q, err := Compile(threeFieldType(), []int{0, 2, 1})
	require.NoError(t, err)
	assert.False(t, q.IsIdentity(3))
}

package format

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tablekit/tablekit/memory"
	"github.com/tablekit/tablekit/projection"
	"github.com/tablekit/tablekit/row"
)

// Rowbin is the built-in row-oriented format: a stream of length-prefixed
// binary rows. It has no footer, so readers detect the end of the stream
// by exhausting the input.
type Rowbin struct{}

func (Rowbin) Name() string { return "rowbin" }

// NewWriterFactory returns a factory producing rowbin writers for the
// given schema.
func (Rowbin) NewWriterFactory(ty row.RowType) (WriterFactory, error) {
	return func(w io.Writer) (Writer, error) {
		return &rowbinWriter{ty: ty, w: bufio.NewWriter(w)}, nil
	}, nil
}

// NewReaderFactory returns a factory producing rowbin readers that decode
// rows under ty, emit only rows whose position is selected, and remap each
// emitted row through the projection mapping. A nil selection emits every
// row; an identity mapping passes rows through unprojected.
func (Rowbin) NewReaderFactory(ty row.RowType, mapping []int, sel *Selection) (ReaderFactory, error) {
	var proj *projection.Projection
	if mapping != nil {
		p, err := projection.Compile(projection.TargetType(ty, mapping), mapping)
		if err != nil {
			return nil, err
		}
		if !p.IsIdentity(ty.Arity()) {
			proj = p
		}
	}
	return func(r io.Reader) (Reader, error) {
		return &rowbinReader{ty: ty, r: bufio.NewReader(r), proj: proj, sel: sel}, nil
	}, nil
}

type rowbinWriter struct {
	ty       row.RowType
	w        *bufio.Writer
	finished bool
}

func (w *rowbinWriter) AddElement(r *row.BinaryRow) error {
	if w.finished {
		return fmt.Errorf("format: add after finish")
	}
	raw, err := r.Bytes()
	if err != nil {
		return err
	}
	var lp [4]byte
	binary.LittleEndian.PutUint32(lp[:], uint32(len(raw)))
	if _, err := w.w.Write(lp[:]); err != nil {
		return err
	}
	_, err = w.w.Write(raw)
	return err
}

func (w *rowbinWriter) Flush() error { return w.w.Flush() }

func (w *rowbinWriter) Finish() error {
	if w.finished {
		return nil
	}
	w.finished = true
	return w.w.Flush()
}

type rowbinReader struct {
	ty   row.RowType
	r    *bufio.Reader
	proj *projection.Projection
	sel  *Selection
	pos  uint32
}

func (rd *rowbinReader) Next() (*row.BinaryRow, error) {
	for {
		var lp [4]byte
		if _, err := io.ReadFull(rd.r, lp[:]); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, err
		}
		n := int(binary.LittleEndian.Uint32(lp[:]))
		raw := make([]byte, n)
		if _, err := io.ReadFull(rd.r, raw); err != nil {
			return nil, err
		}

		pos := rd.pos
		rd.pos++
		if !rd.sel.Contains(pos) {
			continue
		}

		br := row.FromSegment(rd.ty, memory.Wrap(raw), 0, n)
		if rd.proj == nil {
			return br, nil
		}
		return rd.proj.Apply(br)
	}
}

func (rd *rowbinReader) Close() error { return nil }

package format

import (
	"io"

	"github.com/tablekit/tablekit/row"
)

// Flushing decorates a format so that every record added through its
// writers is flushed before the next one is accepted, making write
// visibility deterministic. It exists for correctness verification, not
// for the high-throughput write path.
func Flushing(f Format) Format {
	return flushingFormat{inner: f}
}

type flushingFormat struct {
	inner Format
}

func (f flushingFormat) Name() string { return f.inner.Name() + "+flushing" }

func (f flushingFormat) NewReaderFactory(ty row.RowType, projection []int, sel *Selection) (ReaderFactory, error) {
	return f.inner.NewReaderFactory(ty, projection, sel)
}

func (f flushingFormat) NewWriterFactory(ty row.RowType) (WriterFactory, error) {
	wf, err := f.inner.NewWriterFactory(ty)
	if err != nil {
		return nil, err
	}
	return func(w io.Writer) (Writer, error) {
		inner, err := wf(w)
		if err != nil {
			return nil, err
		}
		return &flushingWriter{inner: inner}, nil
	}, nil
}

// flushingWriter flushes after every add; Finish flushes and finalizes the
// inner writer exactly once, later calls replay the first result.
type flushingWriter struct {
	inner     Writer
	finished  bool
	finishErr error
}

func (w *flushingWriter) AddElement(r *row.BinaryRow) error {
	if err := w.inner.AddElement(r); err != nil {
		return err
	}
	return w.inner.Flush()
}

func (w *flushingWriter) Flush() error { return w.inner.Flush() }

func (w *flushingWriter) Finish() error {
	if w.finished {
		return w.finishErr
	}
	w.finished = true
	if err := w.inner.Flush(); err != nil {
		w.finishErr = err
		return err
	}
	w.finishErr = w.inner.Finish()
	return w.finishErr
}

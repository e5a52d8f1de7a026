// Package format defines the pluggable file-format adapter boundary: a
// Format produces reader and writer factories over byte streams, and the
// rest of the system depends only on those two contracts, never on a
// format's internals.
//
// Rowbin, the built-in format, stores length-prefixed binary rows. Real
// columnar formats plug in behind the same interface.
package format

import (
	"io"

	"github.com/tablekit/tablekit/row"
)

// Writer receives records for one output stream. Flush makes everything
// added so far visible to a subsequent reader of the stream; Finish
// flushes and finalizes the stream. No records may be added after Finish.
type Writer interface {
	AddElement(r *row.BinaryRow) error
	Flush() error
	Finish() error
}

// Reader yields the records of one input stream in order. Next returns a
// nil row at end of stream.
type Reader interface {
	Next() (*row.BinaryRow, error)
	Close() error
}

// WriterFactory binds a Writer to an output stream.
type WriterFactory func(w io.Writer) (Writer, error)

// ReaderFactory binds a Reader to an input stream.
type ReaderFactory func(r io.Reader) (Reader, error)

// Format is the adapter contract a file format implements. The reader
// factory carries the read schema, a projection mapping (see package
// projection) and an optional row selection pushed down into the scan.
type Format interface {
	Name() string
	NewReaderFactory(ty row.RowType, projection []int, sel *Selection) (ReaderFactory, error)
	NewWriterFactory(ty row.RowType) (WriterFactory, error)
}

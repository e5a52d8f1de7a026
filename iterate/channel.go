package iterate

import (
	"context"
	"io"

	"github.com/tablekit/tablekit/disk"
	"github.com/tablekit/tablekit/memory"
	"github.com/tablekit/tablekit/projection"
	"github.com/tablekit/tablekit/row"
)

const rowPrefixSize = 4

// ChannelWriter packs encoded rows into fixed-size memory segments and
// spills each full segment as one channel block. Rows inside a block are
// length-prefixed, so a ChannelIterator can walk them back out.
//
// A row larger than the block size gets a dedicated oversized block.
type ChannelWriter struct {
	w         *disk.Writer
	blockSize int
	seg       *memory.Segment
	used      int
	rows      int
}

// NewChannelWriter returns a writer spilling through w in blocks of
// blockSize bytes.
func NewChannelWriter(w *disk.Writer, blockSize int) (*ChannelWriter, error) {
	seg, err := memory.Allocate(blockSize)
	if err != nil {
		return nil, err
	}
	return &ChannelWriter{w: w, blockSize: blockSize, seg: seg}, nil
}

// Rows returns the number of rows added so far.
func (cw *ChannelWriter) Rows() int { return cw.rows }

// Add appends one row, spilling the current segment first when the row
// does not fit.
func (cw *ChannelWriter) Add(ctx context.Context, r *row.BinaryRow) error {
	raw, err := r.Bytes()
	if err != nil {
		return err
	}
	need := rowPrefixSize + len(raw)

	if need > cw.blockSize {
		// Oversized row: flush what we have, then spill it alone.
		if err := cw.Flush(ctx); err != nil {
			return err
		}
		return cw.spillOversized(ctx, raw)
	}

	if cw.used+need > cw.blockSize {
		if err := cw.Flush(ctx); err != nil {
			return err
		}
	}

	if err := cw.seg.PutInt32(cw.used, int32(len(raw))); err != nil {
		return err
	}
	if err := cw.seg.PutBytes(cw.used+rowPrefixSize, raw); err != nil {
		return err
	}
	cw.used += need
	cw.rows++
	return nil
}

func (cw *ChannelWriter) spillOversized(ctx context.Context, raw []byte) error {
	seg, err := memory.Allocate(rowPrefixSize + len(raw))
	if err != nil {
		return err
	}
	if err := seg.PutInt32(0, int32(len(raw))); err != nil {
		return err
	}
	if err := seg.PutBytes(rowPrefixSize, raw); err != nil {
		return err
	}
	if err := cw.w.WriteBlock(ctx, seg, rowPrefixSize+len(raw)); err != nil {
		return err
	}
	cw.rows++
	return nil
}

// Flush spills the current partial segment, if any.
func (cw *ChannelWriter) Flush(ctx context.Context) error {
	if cw.used == 0 {
		return nil
	}
	if err := cw.w.WriteBlock(ctx, cw.seg, cw.used); err != nil {
		return err
	}
	cw.used = 0
	return nil
}

// Close flushes the remaining rows and seals the channel.
func (cw *ChannelWriter) Close() error {
	if err := cw.Flush(context.Background()); err != nil {
		cw.w.Close()
		return err
	}
	return cw.w.Close()
}

// NewChannelIterator reads rows of ty back out of a spill channel in write
// order. A non-identity mapping compiles a projection applied to every
// yielded row (schema-evolution reads); an identity or nil mapping yields
// the stored rows unmodified.
func NewChannelIterator(r *disk.Reader, ty row.RowType, mapping []int) (Iterator, error) {
	it := &channelIterator{r: r, ty: ty}
	if mapping != nil {
		p, err := projection.Compile(projection.TargetType(ty, mapping), mapping)
		if err != nil {
			return nil, err
		}
		if !p.IsIdentity(ty.Arity()) {
			it.proj = p
		}
	}
	return it, nil
}

type channelIterator struct {
	r    *disk.Reader
	ty   row.RowType
	proj *projection.Projection

	seg     *memory.Segment
	segLen  int
	pos     int
	done    bool
	lastErr error
}

func (it *channelIterator) Next() (*row.BinaryRow, error) {
	if it.lastErr != nil {
		return nil, it.lastErr
	}
	if it.done {
		return nil, nil
	}

	for it.seg == nil || it.pos >= it.segLen {
		seg, n, err := it.r.ReadBlock(context.Background())
		if err == io.EOF {
			it.done = true
			return nil, nil
		}
		if err != nil {
			it.lastErr = err
			return nil, err
		}
		it.seg, it.segLen, it.pos = seg, n, 0
	}

	n, err := it.seg.GetInt32(it.pos)
	if err != nil {
		it.lastErr = err
		return nil, err
	}
	br := row.FromSegment(it.ty, it.seg, it.pos+rowPrefixSize, int(n))
	it.pos += rowPrefixSize + int(n)

	if it.proj == nil {
		return br, nil
	}
	out, err := it.proj.Apply(br)
	if err != nil {
		it.lastErr = err
	}
	return out, err
}

func (it *channelIterator) Close() error { return it.r.Close() }

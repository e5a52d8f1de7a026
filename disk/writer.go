package disk

import (
	"context"
	"encoding/binary"
	"os"

	"github.com/tablekit/tablekit/internal/fs"
	"github.com/tablekit/tablekit/memory"
)

// Writer appends blocks to one spill channel, blocking the caller until
// each block has reached the file. Blocks are readable back in write order.
//
// The first IO error is sticky: every later call reports it, so a spill
// can never silently continue past a bad write.
type Writer struct {
	mgr    *Manager
	id     ID
	file   fs.File
	codec  Codec
	blocks int
	bytes  int64
	err    error
	closed bool
}

// NewWriter creates the channel's spill file, writes the file header and
// returns a writer positioned at the first block.
func (m *Manager) NewWriter(id ID) (*Writer, error) {
	f, err := m.fsys.OpenFile(id.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, channelErr(id, "create", err)
	}

	var hdr [spillHeaderSize]byte
	copy(hdr[:8], spillMagic)
	binary.LittleEndian.PutUint32(hdr[8:12], spillVersion)
	if _, err := f.Write(hdr[:]); err != nil {
		f.Close()
		return nil, channelErr(id, "write header", err)
	}

	return &Writer{mgr: m, id: id, file: f, codec: m.codec, bytes: spillHeaderSize}, nil
}

// ID returns the channel identity the writer spills into.
func (w *Writer) ID() ID { return w.id }

// Blocks returns the number of blocks written so far.
func (w *Writer) Blocks() int { return w.blocks }

// BytesWritten returns the on-disk size so far, header included.
func (w *Writer) BytesWritten() int64 { return w.bytes }

// WriteBlock appends the first length bytes of seg as one block. The bytes
// are copied (and possibly compressed) before the call returns, so the
// caller may immediately reuse or free the segment.
func (w *Writer) WriteBlock(ctx context.Context, seg *memory.Segment, length int) error {
	if w.closed {
		return channelErr(w.id, "write block", ErrClosed)
	}
	if w.err != nil {
		return w.err
	}

	raw, err := seg.Slice(0, length)
	if err != nil {
		return channelErr(w.id, "write block", err)
	}

	stored, codec, err := compress(w.codec, raw)
	if err != nil {
		return w.fail("compress block", err)
	}

	if err := w.mgr.ctrl.WaitIO(ctx, blockHeaderSize+len(stored)); err != nil {
		return channelErr(w.id, "write block", err)
	}

	var hdr [blockHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(length))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(stored)))
	hdr[8] = byte(codec)

	if _, err := w.file.Write(hdr[:]); err != nil {
		return w.fail("write block header", err)
	}
	if _, err := w.file.Write(stored); err != nil {
		return w.fail("write block payload", err)
	}

	w.blocks++
	w.bytes += int64(blockHeaderSize + len(stored))
	return nil
}

// fail records the first fatal error; the channel is unusable afterwards.
func (w *Writer) fail(op string, err error) error {
	w.err = channelErr(w.id, op, err)
	return w.err
}

// Close syncs and closes the spill file. Closing an already-failed writer
// still closes the file but reports the earlier failure.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	syncErr := w.file.Sync()
	closeErr := w.file.Close()

	if w.err != nil {
		return w.err
	}
	if syncErr != nil {
		return channelErr(w.id, "sync", syncErr)
	}
	if closeErr != nil {
		return channelErr(w.id, "close", closeErr)
	}

	w.mgr.logger.Debug("spill channel sealed",
		"channel", w.id.String(), "blocks", w.blocks, "bytes", w.bytes)
	return nil
}

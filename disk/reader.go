package disk

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/tablekit/tablekit/internal/fs"
	"github.com/tablekit/tablekit/memory"
)

// Reader streams the blocks of a sealed spill channel back in write order.
// ReadBlock returns io.EOF once the last block has been consumed; that is
// end-of-stream, not a failure.
type Reader struct {
	mgr    *Manager
	id     ID
	file   fs.File
	br     *bufio.Reader
	closed bool
}

// NewReader opens the channel's spill file and validates its header.
func (m *Manager) NewReader(id ID) (*Reader, error) {
	f, err := m.fsys.OpenFile(id.path, os.O_RDONLY, 0)
	if err != nil {
		return nil, channelErr(id, "open", err)
	}

	br := bufio.NewReaderSize(f, 64<<10)
	var hdr [spillHeaderSize]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		f.Close()
		return nil, channelErr(id, "read header", fmt.Errorf("%w: %v", ErrInvalidHeader, err))
	}
	if !bytes.Equal(hdr[:8], []byte(spillMagic)) {
		f.Close()
		return nil, channelErr(id, "read header", fmt.Errorf("%w: bad magic %q", ErrInvalidHeader, hdr[:8]))
	}
	if v := binary.LittleEndian.Uint32(hdr[8:12]); v != spillVersion {
		f.Close()
		return nil, channelErr(id, "read header", fmt.Errorf("%w: unsupported version %d", ErrInvalidHeader, v))
	}

	return &Reader{mgr: m, id: id, file: f, br: br}, nil
}

// ID returns the channel identity the reader consumes.
func (r *Reader) ID() ID { return r.id }

// ReadBlock returns the next block as a fresh heap segment along with its
// original (uncompressed) length. The segment is owned by the caller.
func (r *Reader) ReadBlock(ctx context.Context) (*memory.Segment, int, error) {
	if r.closed {
		return nil, 0, channelErr(r.id, "read block", ErrClosed)
	}

	var hdr [blockHeaderSize]byte
	if _, err := io.ReadFull(r.br, hdr[:]); err != nil {
		if err == io.EOF {
			return nil, 0, io.EOF
		}
		return nil, 0, channelErr(r.id, "read block header", err)
	}
	rawLen := int(binary.LittleEndian.Uint32(hdr[0:4]))
	storedLen := int(binary.LittleEndian.Uint32(hdr[4:8]))
	codec := Codec(hdr[8])

	if err := r.mgr.ctrl.WaitIO(ctx, blockHeaderSize+storedLen); err != nil {
		return nil, 0, channelErr(r.id, "read block", err)
	}

	stored := make([]byte, storedLen)
	if _, err := io.ReadFull(r.br, stored); err != nil {
		return nil, 0, channelErr(r.id, "read block payload", err)
	}

	raw, err := decompress(codec, stored, rawLen)
	if err != nil {
		return nil, 0, channelErr(r.id, "decompress block", err)
	}

	return memory.Wrap(raw), rawLen, nil
}

// Close releases the file handle. Close is idempotent.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.file.Close(); err != nil {
		return channelErr(r.id, "close", err)
	}
	return nil
}

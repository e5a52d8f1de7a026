package disk

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablekit/tablekit/blobstore"
	"github.com/tablekit/tablekit/internal/fs"
	"github.com/tablekit/tablekit/memory"
)

func newTestManager(t *testing.T, opts ...ManagerOption) *Manager {
	t.Helper()
	m, err := NewManager([]string{t.TempDir()}, opts...)
	require.NoError(t, err)
	return m
}

func block(b byte, n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = b
	}
	return buf
}

func writeBlocks(t *testing.T, w *Writer, payloads ...[]byte) {
	t.Helper()
	for _, p := range payloads {
		seg := memory.Wrap(p)
		require.NoError(t, w.WriteBlock(context.Background(), seg, len(p)))
	}
}

func readAll(t *testing.T, r *Reader) [][]byte {
	t.Helper()
	var out [][]byte
	for {
		seg, n, err := r.ReadBlock(context.Background())
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		raw, err := seg.Slice(0, n)
		require.NoError(t, err)
		out = append(out, raw)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	m := newTestManager(t)
	id := m.NewID()

	w, err := m.NewWriter(id)
	require.NoError(t, err)

	b1 := []byte("first block")
	b2 := []byte("second, somewhat longer block of bytes")
	b3 := []byte("third")
	writeBlocks(t, w, b1, b2, b3)
	assert.Equal(t, 3, w.Blocks())
	require.NoError(t, w.Close())

	r, err := m.NewReader(id)
	require.NoError(t, err)
	defer r.Close()

	got := readAll(t, r)
	require.Len(t, got, 3)
	assert.Equal(t, b1, got[0])
	assert.Equal(t, b2, got[1])
	assert.Equal(t, b3, got[2])

	// End-of-stream is stable.
	_, _, err = r.ReadBlock(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestWritePartialSegment(t *testing.T) {
	m := newTestManager(t)
	id := m.NewID()

	w, err := m.NewWriter(id)
	require.NoError(t, err)

	seg, err := memory.Allocate(64)
	require.NoError(t, err)
	require.NoError(t, seg.PutBytes(0, []byte("useful prefix")))
	require.NoError(t, w.WriteBlock(context.Background(), seg, 13))
	require.NoError(t, w.Close())

	r, err := m.NewReader(id)
	require.NoError(t, err)
	defer r.Close()

	got := readAll(t, r)
	require.Len(t, got, 1)
	assert.Equal(t, []byte("useful prefix"), got[0])
}

func TestCompressedRoundTrip(t *testing.T) {
	for _, codec := range []Codec{CodecLZ4, CodecZstd} {
		t.Run(codec.String(), func(t *testing.T) {
			m := newTestManager(t, WithCodec(codec))
			id := m.NewID()

			w, err := m.NewWriter(id)
			require.NoError(t, err)

			compressible := bytes.Repeat([]byte("abcdefgh"), 1024)
			writeBlocks(t, w, compressible)
			require.NoError(t, w.Close())

			// Compressible data must actually shrink on disk.
			assert.Less(t, w.BytesWritten(), int64(len(compressible)))

			r, err := m.NewReader(id)
			require.NoError(t, err)
			defer r.Close()

			got := readAll(t, r)
			require.Len(t, got, 1)
			assert.Equal(t, compressible, got[0])
		})
	}
}

func TestIncompressibleFallsBackToRaw(t *testing.T) {
	m := newTestManager(t, WithCodec(CodecLZ4))
	id := m.NewID()

	w, err := m.NewWriter(id)
	require.NoError(t, err)

	// High-entropy payload that LZ4 cannot shrink.
	payload := make([]byte, 4096)
	state := uint32(0x9E3779B9)
	for i := range payload {
		state = state*1664525 + 1013904223
		payload[i] = byte(state >> 24)
	}
	writeBlocks(t, w, payload)
	require.NoError(t, w.Close())

	// Stored raw: header + block header + payload, nothing more.
	assert.Equal(t, int64(spillHeaderSize+blockHeaderSize+len(payload)), w.BytesWritten())

	r, err := m.NewReader(id)
	require.NoError(t, err)
	defer r.Close()

	got := readAll(t, r)
	require.Len(t, got, 1)
	assert.Equal(t, payload, got[0])
}

func TestAsyncCallbacksInSubmissionOrder(t *testing.T) {
	m := newTestManager(t)
	id := m.NewID()

	aw, err := m.NewAsyncWriter(id)
	require.NoError(t, err)

	const n = 32
	var (
		mu     sync.Mutex
		order  []int
		cbErrs []error
	)
	for i := 0; i < n; i++ {
		i := i
		p := block(byte(i), 128+i)
		err := aw.Submit(memory.Wrap(p), len(p), func(err error) {
			mu.Lock()
			order = append(order, i)
			cbErrs = append(cbErrs, err)
			mu.Unlock()
		})
		require.NoError(t, err)
	}

	// Close drains every in-flight block before sealing the file.
	require.NoError(t, aw.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, n)
	for _, err := range cbErrs {
		require.NoError(t, err)
	}
	for i := 0; i < n; i++ {
		assert.Equal(t, i, order[i])
	}

	r, err := m.NewReader(id)
	require.NoError(t, err)
	defer r.Close()

	got := readAll(t, r)
	require.Len(t, got, n)
	for i, raw := range got {
		assert.Equal(t, block(byte(i), 128+i), raw)
	}
}

func TestAsyncSubmitAfterClose(t *testing.T) {
	m := newTestManager(t)
	aw, err := m.NewAsyncWriter(m.NewID())
	require.NoError(t, err)
	require.NoError(t, aw.Close())

	err = aw.Submit(memory.Wrap([]byte("late")), 4, nil)
	assert.ErrorIs(t, err, ErrClosed)

	var ce *ChannelError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, "submit", ce.Op)
}

func TestWriteFailureIsStickyAndNamesChannel(t *testing.T) {
	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule(".ch", fs.Fault{FailAfterBytes: spillHeaderSize + 4})

	m := newTestManager(t, WithFS(faulty))
	id := m.NewID()

	w, err := m.NewWriter(id)
	require.NoError(t, err)

	err = w.WriteBlock(context.Background(), memory.Wrap(block(1, 256)), 256)
	require.Error(t, err)

	var ce *ChannelError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, id, ce.ID)
	assert.ErrorIs(t, err, fs.ErrInjected)

	// Sticky: later writes report the same failure without touching the file.
	err2 := w.WriteBlock(context.Background(), memory.Wrap(block(2, 8)), 8)
	assert.Equal(t, err, err2)

	// Close reports the failure too.
	assert.Equal(t, err, w.Close())
}

func TestAsyncWriteFailureReachesCallbackAndClose(t *testing.T) {
	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule(".ch", fs.Fault{FailAfterBytes: spillHeaderSize})

	m := newTestManager(t, WithFS(faulty))
	aw, err := m.NewAsyncWriter(m.NewID())
	require.NoError(t, err)

	var cbErr error
	require.NoError(t, aw.Submit(memory.Wrap(block(7, 64)), 64, func(err error) {
		cbErr = err
	}))

	err = aw.Close()
	require.Error(t, err)
	assert.ErrorIs(t, cbErr, fs.ErrInjected)
	assert.ErrorIs(t, err, fs.ErrInjected)
}

func TestDeleteFailureSurfaced(t *testing.T) {
	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule(".ch", fs.Fault{FailAfterBytes: -1, FailOnRemove: true})

	m := newTestManager(t, WithFS(faulty))
	id := m.NewID()

	w, err := m.NewWriter(id)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	err = m.Delete(id)
	require.Error(t, err)

	var ce *ChannelError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "delete", ce.Op)
	assert.ErrorIs(t, err, fs.ErrInjected)
}

func TestDeleteRemovesFile(t *testing.T) {
	m := newTestManager(t)
	id := m.NewID()

	w, err := m.NewWriter(id)
	require.NoError(t, err)
	writeBlocks(t, w, []byte("data"))
	require.NoError(t, w.Close())

	require.NoError(t, m.Delete(id))
	_, err = os.Stat(id.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestReaderRejectsBadHeader(t *testing.T) {
	m := newTestManager(t)
	id := m.NewID()

	require.NoError(t, os.WriteFile(id.Path(), []byte("not a spill file at all"), 0o644))

	_, err := m.NewReader(id)
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestReaderRejectsTruncatedHeader(t *testing.T) {
	m := newTestManager(t)
	id := m.NewID()

	require.NoError(t, os.WriteFile(id.Path(), []byte(spillMagic[:4]), 0o644))

	_, err := m.NewReader(id)
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestEmptyChannelIsImmediatelyEOF(t *testing.T) {
	m := newTestManager(t)
	id := m.NewID()

	w, err := m.NewWriter(id)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := m.NewReader(id)
	require.NoError(t, err)
	defer r.Close()

	_, _, err = r.ReadBlock(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestWriteAfterClose(t *testing.T) {
	m := newTestManager(t)
	w, err := m.NewWriter(m.NewID())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	err = w.WriteBlock(context.Background(), memory.Wrap([]byte("x")), 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOffloadToBlobStore(t *testing.T) {
	m := newTestManager(t)
	id := m.NewID()

	w, err := m.NewWriter(id)
	require.NoError(t, err)
	writeBlocks(t, w, []byte("archived block"))
	require.NoError(t, w.Close())

	store := blobstore.NewMemoryStore()
	require.NoError(t, m.Offload(context.Background(), id, store))

	blob, err := store.Open(context.Background(), id.String())
	require.NoError(t, err)
	defer blob.Close()

	local, err := os.ReadFile(id.Path())
	require.NoError(t, err)
	assert.Equal(t, int64(len(local)), blob.Size())

	remote := make([]byte, len(local))
	_, err = blob.ReadAt(remote, 0)
	require.NoError(t, err)
	assert.Equal(t, local, remote)
}

func TestIDsSpreadAcrossDirs(t *testing.T) {
	d1, d2 := t.TempDir(), t.TempDir()
	m, err := NewManager([]string{d1, d2})
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		id := m.NewID()
		if bytes.HasPrefix([]byte(id.Path()), []byte(d1)) {
			seen[d1] = true
		} else {
			seen[d2] = true
		}
	}
	assert.Len(t, seen, 2)
}

package disk

import (
	"context"
	"sync"

	"github.com/tablekit/tablekit/memory"
)

// asyncRequest is one queued block write.
type asyncRequest struct {
	seg    *memory.Segment
	length int
	done   func(error)
}

// AsyncWriter decouples block submission from disk IO: Submit queues a
// block to a single background goroutine and returns immediately. The
// completion callback of every block fires in submission order, on the
// writer goroutine, exactly once.
//
// Because submitted segments are read by the background goroutine, the
// caller must not reuse or free a segment until its callback has fired.
type AsyncWriter struct {
	w    *Writer
	reqs chan asyncRequest

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsyncWriter wraps a freshly created sync writer for the channel and
// starts its background goroutine.
func (m *Manager) NewAsyncWriter(id ID) (*AsyncWriter, error) {
	w, err := m.NewWriter(id)
	if err != nil {
		return nil, err
	}
	aw := &AsyncWriter{
		w:    w,
		reqs: make(chan asyncRequest, 64),
	}
	aw.wg.Add(1)
	go aw.run()
	return aw, nil
}

// ID returns the channel identity.
func (aw *AsyncWriter) ID() ID { return aw.w.id }

func (aw *AsyncWriter) run() {
	defer aw.wg.Done()
	for req := range aw.reqs {
		err := aw.w.WriteBlock(context.Background(), req.seg, req.length)
		if req.done != nil {
			req.done(err)
		}
	}
}

// Submit queues the first length bytes of seg for writing. done fires once
// the block has been written (or failed), after the callbacks of all
// earlier blocks. Submitting to a closed writer fails with ErrClosed and
// never invokes done.
func (aw *AsyncWriter) Submit(seg *memory.Segment, length int, done func(error)) error {
	aw.mu.Lock()
	defer aw.mu.Unlock()
	if aw.closed {
		return channelErr(aw.w.id, "submit", ErrClosed)
	}
	aw.reqs <- asyncRequest{seg: seg, length: length, done: done}
	return nil
}

// Close stops accepting blocks, drains everything already submitted and
// then seals the spill file. It returns the writer's sticky error if any
// queued block failed.
func (aw *AsyncWriter) Close() error {
	aw.mu.Lock()
	if aw.closed {
		aw.mu.Unlock()
		return nil
	}
	aw.closed = true
	close(aw.reqs)
	aw.mu.Unlock()

	aw.wg.Wait()
	return aw.w.Close()
}

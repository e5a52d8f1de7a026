package tablekit

import (
	"os"
	"path/filepath"

	"github.com/tablekit/tablekit/disk"
	"github.com/tablekit/tablekit/memory"
	"github.com/tablekit/tablekit/resource"
)

// Runtime wires the storage substrate together: a resource controller
// governing off-heap memory and spill IO, and a spill channel manager over
// the configured temp directories.
//
// A Runtime is safe for concurrent use; the segments, writers and readers
// it hands out are single-owner.
type Runtime struct {
	ctrl     *resource.Controller
	channels *disk.Manager
	logger   *Logger
}

// New creates a Runtime.
func New(opts ...Option) (*Runtime, error) {
	o := options{
		logger: NewLogger(nil),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.spillDirs) == 0 {
		o.spillDirs = []string{filepath.Join(os.TempDir(), "tablekit-spill")}
	}

	ctrl := resource.NewController(resource.Config{
		OffHeapLimitBytes:  o.offHeapLimit,
		SpillIOBytesPerSec: o.spillBytesPerSec,
	})

	mgrOpts := []disk.ManagerOption{
		disk.WithController(ctrl),
		disk.WithLogger(o.logger.Logger),
		disk.WithCodec(o.codec),
	}
	if o.fsys != nil {
		mgrOpts = append(mgrOpts, disk.WithFS(o.fsys))
	}
	channels, err := disk.NewManager(o.spillDirs, mgrOpts...)
	if err != nil {
		return nil, err
	}

	return &Runtime{ctrl: ctrl, channels: channels, logger: o.logger}, nil
}

// AllocateSegment allocates a zero-initialized heap segment.
func (rt *Runtime) AllocateSegment(size int) (*memory.Segment, error) {
	return memory.Allocate(size)
}

// AllocateOffHeapSegment allocates an off-heap segment charged against the
// runtime's memory budget. The caller must Free it.
func (rt *Runtime) AllocateOffHeapSegment(size int) (*memory.Segment, error) {
	return memory.AllocateOffHeap(size, rt.ctrl)
}

// Channels returns the spill channel manager.
func (rt *Runtime) Channels() *disk.Manager { return rt.channels }

// Resources returns the resource controller shared by the runtime.
func (rt *Runtime) Resources() *resource.Controller { return rt.ctrl }

// Close releases the runtime. Off-heap segments still alive at close are a
// caller bug; they are logged, not reclaimed, since their owners may still
// touch them.
func (rt *Runtime) Close() error {
	if leaked := rt.ctrl.MemoryUsage(); leaked > 0 {
		rt.logger.Warn("off-heap memory still allocated at close", "bytes", leaked)
	}
	return nil
}

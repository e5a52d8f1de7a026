package tablekit

import (
	"github.com/tablekit/tablekit/disk"
	"github.com/tablekit/tablekit/internal/fs"
)

type options struct {
	spillDirs        []string
	offHeapLimit     int64
	spillBytesPerSec int64
	codec            disk.Codec
	fsys             fs.FileSystem
	logger           *Logger
}

// Option configures a Runtime.
type Option func(*options)

// WithSpillDirs sets the directories spill channels are created in,
// round-robin. Defaults to a single directory under the OS temp dir.
func WithSpillDirs(dirs ...string) Option {
	return func(o *options) { o.spillDirs = dirs }
}

// WithOffHeapLimit caps total off-heap segment memory in bytes. Zero means
// tracked but unlimited.
func WithOffHeapLimit(bytes int64) Option {
	return func(o *options) { o.offHeapLimit = bytes }
}

// WithSpillRate caps spill read/write throughput in bytes per second.
// Zero means unlimited.
func WithSpillRate(bytesPerSec int64) Option {
	return func(o *options) { o.spillBytesPerSec = bytesPerSec }
}

// WithCompression sets the default block compression of new spill writers.
func WithCompression(c disk.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithLogger sets the structured logger.
func WithLogger(l *Logger) Option {
	return func(o *options) { o.logger = l }
}

// withFS overrides the file system. Used by tests to inject faults.
func withFS(fsys fs.FileSystem) Option {
	return func(o *options) { o.fsys = fsys }
}

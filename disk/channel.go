package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/tablekit/tablekit/blobstore"
	"github.com/tablekit/tablekit/internal/fs"
	"github.com/tablekit/tablekit/resource"
)

const (
	spillMagic      = "TKSPILL1" // 8 bytes
	spillVersion    = 1          // 4 bytes, little-endian
	spillHeaderSize = 12

	blockHeaderSize = 9 // rawLen u32 | storedLen u32 | codec u8
)

var (
	// ErrClosed is returned when a closed channel writer or reader is used.
	ErrClosed = errors.New("disk: channel is closed")
	// ErrInvalidHeader is returned when a spill file fails header validation.
	ErrInvalidHeader = errors.New("disk: invalid spill file header")
)

// ChannelError wraps a channel failure with the channel identity and the
// operation that failed.
type ChannelError struct {
	ID  ID
	Op  string
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("spill channel %s: %s: %v", e.ID, e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

func channelErr(id ID, op string, err error) error {
	return &ChannelError{ID: id, Op: op, Err: err}
}

// ID identifies one spill channel. It owns no data; it correlates the
// writes of a spill with the reads that later consume them.
type ID struct {
	path string
}

// Path returns the spill file path.
func (id ID) Path() string { return id.path }

func (id ID) String() string { return filepath.Base(id.path) }

// Manager creates, opens, deletes and offloads spill channels. Channel IDs
// are spread round-robin across the configured temp directories.
//
// Manager is safe for concurrent use; individual writers and readers are
// single-owner.
type Manager struct {
	dirs   []string
	fsys   fs.FileSystem
	ctrl   *resource.Controller
	logger *slog.Logger
	codec  Codec
	seq    atomic.Uint64
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithFS overrides the file system (used by tests to inject faults).
func WithFS(fsys fs.FileSystem) ManagerOption {
	return func(m *Manager) { m.fsys = fsys }
}

// WithController attaches a resource controller whose IO limiter paces
// spill writes and reads.
func WithController(ctrl *resource.Controller) ManagerOption {
	return func(m *Manager) { m.ctrl = ctrl }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithCodec sets the default block compression for new writers.
func WithCodec(c Codec) ManagerOption {
	return func(m *Manager) { m.codec = c }
}

// NewManager returns a manager spilling into the given directories, which
// are created if missing.
func NewManager(dirs []string, opts ...ManagerOption) (*Manager, error) {
	if len(dirs) == 0 {
		return nil, errors.New("disk: at least one spill directory required")
	}
	m := &Manager{
		dirs:   dirs,
		fsys:   fs.Default,
		logger: slog.Default(),
		codec:  CodecNone,
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, dir := range dirs {
		if err := m.fsys.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("disk: create spill dir %s: %w", dir, err)
		}
	}
	return m, nil
}

// NewID reserves a fresh channel identity. No file is created until a
// writer is opened.
func (m *Manager) NewID() ID {
	n := m.seq.Add(1)
	dir := m.dirs[int(n)%len(m.dirs)]
	return ID{path: filepath.Join(dir, fmt.Sprintf("spill-%06d.ch", n))}
}

// Delete removes the channel's spill file. Deletion is safe only once all
// readers have reached end-of-stream or been closed; a failed removal is
// reported, never swallowed, since leaked spill files are a resource leak.
func (m *Manager) Delete(id ID) error {
	if err := m.fsys.Remove(id.path); err != nil {
		return channelErr(id, "delete", err)
	}
	m.logger.Debug("spill channel deleted", "channel", id.String())
	return nil
}

// Offload uploads a sealed spill file to the given blob store under the
// channel's base name. The local file is left in place; callers typically
// Delete it once the upload is confirmed.
func (m *Manager) Offload(ctx context.Context, id ID, store blobstore.Store) error {
	f, err := m.fsys.OpenFile(id.path, os.O_RDONLY, 0)
	if err != nil {
		return channelErr(id, "offload open", err)
	}
	defer f.Close()

	blob, err := store.Create(ctx, id.String())
	if err != nil {
		return channelErr(id, "offload create", err)
	}
	if _, err := io.Copy(blob, f); err != nil {
		blob.Close()
		return channelErr(id, "offload copy", err)
	}
	if err := blob.Close(); err != nil {
		return channelErr(id, "offload close", err)
	}
	m.logger.Info("spill channel offloaded", "channel", id.String())
	return nil
}

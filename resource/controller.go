package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when an off-heap reservation would
// exceed the configured limit.
var ErrMemoryLimitExceeded = errors.New("off-heap memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// OffHeapLimitBytes is the hard limit for off-heap memory.
	// If 0, no hard limit is enforced (only tracking).
	OffHeapLimitBytes int64

	// SpillIOBytesPerSec is the maximum spill throughput.
	// If 0, unlimited.
	SpillIOBytesPerSec int64
}

// Controller manages off-heap memory reservations and spill IO bandwidth.
// A nil *Controller is valid and enforces nothing.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.OffHeapLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.OffHeapLimitBytes)
	}
	if cfg.SpillIOBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.SpillIOBytesPerSec), int(cfg.SpillIOBytesPerSec))
	}

	return c
}

// AcquireMemory attempts to reserve off-heap bytes.
// Returns ErrMemoryLimitExceeded if the limit would be exceeded.
// Non-blocking; callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory returns reserved off-heap bytes.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current off-heap usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured off-heap limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.OffHeapLimitBytes
}

// WaitIO blocks until the IO limit allows the specified number of bytes.
func (c *Controller) WaitIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	// rate.Limiter cannot wait for more than its burst in one call.
	for bytes > 0 {
		n := bytes
		if burst := c.ioLimiter.Burst(); n > burst {
			n = burst
		}
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// TryIO attempts to acquire IO tokens without blocking.
func (c *Controller) TryIO(bytes int) bool {
	if c == nil || c.ioLimiter == nil {
		return true
	}
	return c.ioLimiter.AllowN(time.Now(), bytes)
}

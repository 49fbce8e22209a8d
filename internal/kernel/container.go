package kernel

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/born-ml/kernels/internal/status"
)

// Container owns one constructed kernel for the lifetime of an algorithm instance.
type Container[K any] struct {
	name   string
	key    Key
	kernel K

	closeOnce sync.Once
	closeErr  error
	closed    bool
}

// Key returns the triple the kernel was selected for.
func (c *Container[K]) Key() Key {
	return c.key
}

// Kernel returns the bound kernel.
func (c *Container[K]) Kernel() K {
	return c.kernel
}

// Compute runs fn against the bound kernel. A panic inside the kernel is
// reported as KernelComputationFailure instead of crossing the dispatch boundary.
func (c *Container[K]) Compute(fn func(K) status.Status) (st status.Status) {
	if c.closed {
		return status.New(status.KernelComputationFailure, c.name, "kernel container is closed")
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("kernel panic", "algorithm", c.name, "key", c.key.String(), "panic", r, "stack", string(debug.Stack()))
			st = status.New(status.KernelComputationFailure, c.name, "%s", fmt.Sprint(r))
		}
	}()
	return fn(c.kernel)
}

// Close releases the kernel's resources if it holds any. It is safe to call
// more than once.
func (c *Container[K]) Close() error {
	c.closeOnce.Do(func() {
		c.closed = true
		if closer, ok := any(c.kernel).(io.Closer); ok {
			c.closeErr = closer.Close()
		}
	})
	return c.closeErr
}

// Package kernel binds numeric kernels to (precision, method, CPU variant)
// triples and owns their lifetime.
//
// Each algorithm keeps one Registry. The registry is filled by an explicit
// register function the first time it is used and can be torn down with
// Reset; nothing is registered at package load.
package kernel

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/born-ml/kernels/internal/cpuid"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
)

// ErrUnsupported is returned when no kernel is registered for a key.
var ErrUnsupported = errors.New("no kernel registered")

// Key identifies one kernel implementation.
type Key struct {
	Precision tensor.DataType
	Method    int
	Variant   cpuid.ISA
}

// String formats the key as precision/method/variant.
func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%s", k.Precision, k.Method, k.Variant)
}

// Factory constructs a kernel. It runs once per algorithm instance.
type Factory[K any] func() (K, error)

// Registry maps keys to kernel factories for one algorithm.
type Registry[K any] struct {
	name     string
	register func(*Registry[K])

	mu        sync.Mutex
	populated bool
	factories map[Key]Factory[K]
}

// NewRegistry returns an empty registry that calls register on first use.
func NewRegistry[K any](name string, register func(*Registry[K])) *Registry[K] {
	return &Registry[K]{
		name:      name,
		register:  register,
		factories: make(map[Key]Factory[K]),
	}
}

// Name returns the algorithm name the registry serves.
func (r *Registry[K]) Name() string {
	return r.name
}

// Register adds a factory for key. Registering the same key twice panics:
// every triple must resolve to exactly one kernel.
func (r *Registry[K]) Register(key Key, f Factory[K]) {
	if _, ok := r.factories[key]; ok {
		panic(fmt.Sprintf("kernel: %s: kernel already registered for %s", r.name, key))
	}
	r.factories[key] = f
}

// RegisterVariants registers one factory per CPU variant for a precision and method.
func (r *Registry[K]) RegisterVariants(precision tensor.DataType, method int, f func(cpuid.ISA) Factory[K]) {
	for _, isa := range cpuid.All {
		r.Register(Key{Precision: precision, Method: method, Variant: isa}, f(isa))
	}
}

func (r *Registry[K]) populate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.populated {
		return
	}
	if r.register != nil {
		r.register(r)
	}
	r.populated = true
}

// Select constructs the kernel registered for key and wraps it in a Container.
func (r *Registry[K]) Select(key Key) (*Container[K], error) {
	r.populate()

	r.mu.Lock()
	f, ok := r.factories[key]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w for %s", r.name, ErrUnsupported, key)
	}

	k, err := f()
	if err != nil {
		return nil, fmt.Errorf("%s: init kernel %s: %w", r.name, key, err)
	}

	slog.Debug("kernel selected", "algorithm", r.name, "precision", key.Precision, "method", key.Method, "cpu", key.Variant)
	return &Container[K]{name: r.name, key: key, kernel: k}, nil
}

// Keys returns every registered key in a stable order.
func (r *Registry[K]) Keys() []Key {
	r.populate()

	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]Key, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		if a.Precision != b.Precision {
			return int(a.Precision) - int(b.Precision)
		}
		if a.Method != b.Method {
			return a.Method - b.Method
		}
		return int(a.Variant) - int(b.Variant)
	})
	return keys
}

// Reset drops every registration. The next Select repopulates the registry.
func (r *Registry[K]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.factories)
	r.populated = false
}

// UnsupportedStatus converts a Select error into a status.
func UnsupportedStatus(err error) status.Status {
	return status.FromError(status.UnsupportedKernel, "", err)
}

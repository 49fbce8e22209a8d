package algorithm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/born-ml/kernels/internal/cpuid"
	"github.com/born-ml/kernels/internal/envconfig"
	"github.com/born-ml/kernels/internal/kernel"
	"github.com/born-ml/kernels/internal/logutil"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
)

// Option configures a Batch.
type Option func(*options)

type options struct {
	variant   cpuid.ISA
	hasISA    bool
	postCheck bool
	provider  tensor.Provider
}

// WithVariant selects kernels for isa instead of the active CPU variant.
func WithVariant(isa cpuid.ISA) Option {
	return func(o *options) {
		o.variant = isa
		o.hasISA = true
	}
}

// WithPostCheck re-validates the result after the kernel runs.
func WithPostCheck(enabled bool) Option {
	return func(o *options) {
		o.postCheck = enabled
	}
}

// WithProvider replaces the provider used to allocate outputs.
func WithProvider(p tensor.Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// Batch is an algorithm instance computing over a whole data set in one call.
//
// Batch is not safe for concurrent use. Distinct instances over disjoint
// operands may run concurrently.
type Batch[I Input[P], P any, R Result[I, P]] struct {
	Input     I
	Parameter P

	result    R
	method    Method
	dtype     tensor.DataType
	provider  tensor.Provider
	postCheck bool
	state     State
	container *kernel.Container[Kernel[I, P, R]]
}

// New constructs a Batch computing in precision F. The kernel for
// (F, method, CPU variant) is selected and constructed here; an unsupported
// triple fails construction.
func New[F tensor.Float, I Input[P], P any, R Result[I, P]](
	reg *kernel.Registry[Kernel[I, P, R]], method Method, in I, par P, res R, opts ...Option,
) (*Batch[I, P, R], error) {
	o := options{
		postCheck: envconfig.PostCheck(),
		provider:  tensor.HeapProvider{MaxBytes: int(envconfig.MaxAllocBytes())},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.hasISA {
		o.variant = cpuid.Active()
	}

	key := kernel.Key{Precision: tensor.DataTypeOf[F](), Method: int(method), Variant: o.variant}
	c, err := reg.Select(key)
	if err != nil {
		return nil, fmt.Errorf("algorithm: %w", err)
	}

	return &Batch[I, P, R]{
		Input:     in,
		Parameter: par,
		result:    res,
		method:    method,
		dtype:     key.Precision,
		provider:  o.provider,
		postCheck: o.postCheck,
		container: c,
	}, nil
}

// Method returns the computation method.
func (b *Batch[I, P, R]) Method() Method {
	return b.method
}

// DType returns the precision fixed at construction.
func (b *Batch[I, P, R]) DType() tensor.DataType {
	return b.dtype
}

// Key returns the selected kernel triple.
func (b *Batch[I, P, R]) Key() kernel.Key {
	return b.container.Key()
}

// State returns where the last Compute call ended.
func (b *Batch[I, P, R]) State() State {
	return b.state
}

// Result returns the result bound to the algorithm.
func (b *Batch[I, P, R]) Result() R {
	return b.result
}

// SetResult binds a caller-built result, typically with pre-allocated outputs.
func (b *Batch[I, P, R]) SetResult(res R) {
	b.result = res
}

// Compute validates the input, allocates missing outputs, runs the kernel and
// optionally re-validates the result. Any failure stops the remaining steps.
func (b *Batch[I, P, R]) Compute() error {
	return b.compute().Err()
}

func (b *Batch[I, P, R]) compute() status.Status {
	b.state = Validating
	st := b.checkParameter()
	st.Add(b.Input.Check(&b.Parameter, b.method))
	st.Add(checkPrecision(b.Input, b.dtype))
	if !st.OK() {
		return b.fail(st)
	}

	b.state = Allocating
	if st = b.result.Allocate(b.Input, &b.Parameter, b.method, b.dtype, b.provider); !st.OK() {
		return b.fail(st)
	}
	st = b.result.Check(b.Input, &b.Parameter, b.method)
	st.Add(checkPrecision(b.result, b.dtype))
	if !st.OK() {
		return b.fail(st)
	}

	b.state = Dispatching
	slog.Log(context.Background(), logutil.LevelTrace, "dispatch", "kernel", b.container.Key().String())
	st = b.container.Compute(func(k Kernel[I, P, R]) status.Status {
		return k.Compute(b.Input, &b.Parameter, b.result)
	})
	if b.postCheck && st.OK() {
		st = b.result.Check(b.Input, &b.Parameter, b.method)
	}
	if !st.OK() {
		return b.fail(st)
	}

	b.state = Validated
	return st
}

func (b *Batch[I, P, R]) checkParameter() status.Status {
	if pc, ok := any(&b.Parameter).(ParameterChecker); ok {
		return pc.Check()
	}
	return status.OK
}

func (b *Batch[I, P, R]) fail(st status.Status) status.Status {
	b.state = Failed
	slog.Debug("compute failed", "kernel", b.container.Key().String(), "status", st.String())
	return st
}

// Close releases the kernel. The algorithm must not be used afterwards.
func (b *Batch[I, P, R]) Close() error {
	return b.container.Close()
}

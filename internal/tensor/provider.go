package tensor

import (
	"errors"
	"fmt"
)

// ErrAllocationLimit is returned when a requested object exceeds the provider's budget.
var ErrAllocationLimit = errors.New("allocation exceeds configured limit")

// Provider creates the data objects a Result allocates for its outputs.
type Provider interface {
	NewTensor(shape Shape, dtype DataType) (*RawTensor, error)
	NewTable(rows, cols int, layout Layout, dtype DataType) (*Table, error)
}

// HeapProvider allocates zero-initialized objects on the Go heap.
// A MaxBytes of zero means no limit.
type HeapProvider struct {
	MaxBytes int
}

// NewTensor implements Provider.
func (p HeapProvider) NewTensor(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := p.admit(shape.NumElements(), dtype); err != nil {
		return nil, fmt.Errorf("tensor %v: %w", shape, err)
	}
	return NewRaw(shape, dtype)
}

// NewTable implements Provider.
func (p HeapProvider) NewTable(rows, cols int, layout Layout, dtype DataType) (*Table, error) {
	n, err := storageSize(rows, cols, layout)
	if err != nil {
		return nil, err
	}
	if err := p.admit(n, dtype); err != nil {
		return nil, fmt.Errorf("table %dx%d: %w", rows, cols, err)
	}
	return NewTable(rows, cols, layout, dtype)
}

func (p HeapProvider) admit(elements int, dtype DataType) error {
	if !dtype.Valid() {
		return fmt.Errorf("unsupported data type %d", dtype)
	}
	if p.MaxBytes > 0 && elements*dtype.Size() > p.MaxBytes {
		return fmt.Errorf("%w: %d bytes > %d", ErrAllocationLimit, elements*dtype.Size(), p.MaxBytes)
	}
	return nil
}

// Package argument implements the keyed container behind every Input, Result
// and partial result: a fixed set of identifier slots holding shared data objects.
package argument

import (
	"fmt"

	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
)

// Object is a data object stored in a Map: a table, a tensor or an
// algorithm-specific payload such as a trained model.
type Object interface {
	Shape() tensor.Shape
	DType() tensor.DataType
}

// Map maps small identifiers to shared data objects. Objects are held by
// pointer, so several maps may refer to the same object; the map never copies.
//
// Map is safe for concurrent reads but not for concurrent mutation.
type Map[ID ~int] struct {
	slots []Object
}

// NewMap creates a map with n identifier slots (ids 0..n-1).
func NewMap[ID ~int](n int) *Map[ID] {
	return &Map[ID]{slots: make([]Object, n)}
}

// Size returns the number of identifier slots declared by the map.
func (m *Map[ID]) Size() int {
	return len(m.slots)
}

// Len returns the number of non-empty slots.
func (m *Map[ID]) Len() int {
	n := 0
	for _, o := range m.slots {
		if !isNil(o) {
			n++
		}
	}
	return n
}

// Set stores obj under id, replacing any previous object. Storing nil empties the slot.
func (m *Map[ID]) Set(id ID, obj Object) {
	m.slots[m.index(id)] = obj
}

// Object returns the raw object stored under id, or nil.
func (m *Map[ID]) Object(id ID) Object {
	o := m.slots[m.index(id)]
	if isNil(o) {
		return nil
	}
	return o
}

// Has reports whether id holds a non-empty object.
func (m *Map[ID]) Has(id ID) bool {
	return m.Object(id) != nil
}

// CheckPrecision reports every stored object whose precision is not dtype.
func (m *Map[ID]) CheckPrecision(dtype tensor.DataType) status.Status {
	var st status.Status
	for i, o := range m.slots {
		if isNil(o) || o.DType() == dtype {
			continue
		}
		st.Add(status.New(status.ShapeMismatch, name(ID(i)), "expected %s data, got %s", dtype, o.DType()))
	}
	return st
}

func name[ID ~int](id ID) string {
	if s, ok := any(id).(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("argument %d", int(id))
}

func (m *Map[ID]) index(id ID) int {
	i := int(id)
	if i < 0 || i >= len(m.slots) {
		panic(fmt.Sprintf("argument: identifier %d out of range [0, %d)", i, len(m.slots)))
	}
	return i
}

// Get returns the object stored under id as T, or the zero T when the slot is
// empty. A stored object of another type is a programming error: it panics in
// builds tagged kernelsdebug and reads as empty otherwise.
func Get[T Object, ID ~int](m *Map[ID], id ID) T {
	var zero T
	o := m.Object(id)
	if o == nil {
		return zero
	}
	v, ok := o.(T)
	if !ok {
		if debugAssertions {
			panic(fmt.Sprintf("argument: identifier %d holds %T, not %T", int(id), o, zero))
		}
		return zero
	}
	return v
}

// isNil catches typed nil pointers stored through the interface.
func isNil(o Object) bool {
	if o == nil {
		return true
	}
	switch v := o.(type) {
	case *tensor.RawTensor:
		return v == nil
	case *tensor.Table:
		return v == nil
	}
	return false
}

// Package tensor provides the data objects shared by every algorithm: n-dimensional
// tensors, 2-D tables and the provider that allocates them.
package tensor

import "unsafe"

// Float is the constraint for the numeric precision of an algorithm.
// The precision is fixed when the algorithm is constructed and never mixed
// within one computation.
type Float interface {
	~float32 | ~float64
}

// DataType is the runtime tag of a precision.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// Valid reports whether dt is a supported precision.
func (dt DataType) Valid() bool {
	return dt == Float32 || dt == Float64
}

// DataTypeOf returns the runtime tag for the type parameter F.
func DataTypeOf[F Float]() DataType {
	var dummy F
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		// Named types with an underlying float fall back on size.
		if unsafe.Sizeof(dummy) == 4 {
			return Float32
		}
		return Float64
	}
}

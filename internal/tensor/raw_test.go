package tensor

import (
	"testing"
)

func TestNewRawZeroInitialized(t *testing.T) {
	raw, err := NewRaw(Shape{3, 2}, Float64)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	data := Data[float64](raw)
	if len(data) != 6 {
		t.Fatalf("Data length = %d, want 6", len(data))
	}
	for i, v := range data {
		if v != 0 {
			t.Errorf("data[%d] = %v, want 0", i, v)
		}
	}

	// Zero-copy view
	data[0] = 42
	if Data[float64](raw)[0] != 42 {
		t.Error("Data should return zero-copy slice")
	}
}

func TestNewRawByteSize(t *testing.T) {
	types := []struct {
		dtype       DataType
		elementSize int
	}{
		{Float32, 4},
		{Float64, 8},
	}

	shape := Shape{2, 3}
	for _, tt := range types {
		raw, err := NewRaw(shape, tt.dtype)
		if err != nil {
			t.Fatalf("NewRaw(%v, %v) failed: %v", shape, tt.dtype, err)
		}
		if raw.DType() != tt.dtype {
			t.Errorf("DType = %v, want %v", raw.DType(), tt.dtype)
		}
		if raw.ByteSize() != 6*tt.elementSize {
			t.Errorf("ByteSize = %d, want %d for type %v", raw.ByteSize(), 6*tt.elementSize, tt.dtype)
		}
	}
}

func TestNewRawInvalidShape(t *testing.T) {
	invalidShapes := []Shape{
		{},
		{0},
		{-1},
		{2, 0},
		{2, -3},
	}
	for _, shape := range invalidShapes {
		if _, err := NewRaw(shape, Float32); err == nil {
			t.Errorf("NewRaw(%v) should fail", shape)
		}
	}
}

func TestDataPrecisionMismatchPanics(t *testing.T) {
	raw, _ := NewRaw(Shape{2}, Float32)
	defer func() {
		if recover() == nil {
			t.Error("Data[float64] on a float32 tensor should panic")
		}
	}()
	_ = Data[float64](raw)
}

func TestRawTensorCloneIsShared(t *testing.T) {
	raw, _ := NewRaw(Shape{2, 2}, Float32)
	Data[float32](raw)[0] = 1.0

	clone := raw.Clone()
	if Data[float32](clone)[0] != 1.0 {
		t.Error("Clone should share data")
	}
	if raw.IsUnique() || clone.IsUnique() {
		t.Error("After Clone(), neither handle should be unique")
	}
	if !raw.SharesBuffer(clone) {
		t.Error("SharesBuffer should report shared storage")
	}

	clone.Release()
	if !raw.IsUnique() {
		t.Error("After releasing the clone, the original should be unique")
	}
}

func TestFromSlice(t *testing.T) {
	raw, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if raw.DType() != Float32 {
		t.Errorf("DType = %v, want float32", raw.DType())
	}
	if got := Data[float32](raw)[5]; got != 6 {
		t.Errorf("last element = %v, want 6", got)
	}

	if _, err := FromSlice([]float64{1, 2}, Shape{3}); err == nil {
		t.Error("FromSlice with mismatched length should fail")
	}
}

func TestDataTypeOf(t *testing.T) {
	type myFloat float32
	if DataTypeOf[float32]() != Float32 {
		t.Error("float32 should map to Float32")
	}
	if DataTypeOf[float64]() != Float64 {
		t.Error("float64 should map to Float64")
	}
	if DataTypeOf[myFloat]() != Float32 {
		t.Error("named float32 should map to Float32")
	}
}

package cpuid

import (
	"testing"

	"github.com/born-ml/kernels/internal/tensor"
	"github.com/stretchr/testify/assert"
)

func TestParseISARoundTrip(t *testing.T) {
	for _, isa := range All {
		got, ok := ParseISA(isa.String())
		assert.True(t, ok, isa.String())
		assert.Equal(t, isa, got)
	}
	_, ok := ParseISA("mmx")
	assert.False(t, ok)

	got, ok := ParseISA(" AVX2 ")
	assert.True(t, ok)
	assert.Equal(t, AVX2, got)
}

func TestGenericAlwaysAvailable(t *testing.T) {
	assert.True(t, Available(Generic))
	assert.Contains(t, Supported(), Generic)
	assert.True(t, Available(Detect()))
}

func TestActiveOverride(t *testing.T) {
	t.Setenv("BORN_KERNELS_CPU", "generic")
	assert.Equal(t, Generic, Active())
	assert.True(t, IsOverridden())

	t.Setenv("BORN_KERNELS_CPU", "not-a-cpu")
	assert.Equal(t, Detect(), Active())
	assert.False(t, IsOverridden())

	t.Setenv("BORN_KERNELS_CPU", "")
	assert.Equal(t, Detect(), Active())
}

func TestActiveIgnoresUnavailableOverride(t *testing.T) {
	for _, isa := range All {
		if Available(isa) {
			continue
		}
		t.Setenv("BORN_KERNELS_CPU", isa.String())
		assert.Equal(t, Detect(), Active(), isa.String())
	}
}

func TestLaneWidth(t *testing.T) {
	assert.Equal(t, 1, LaneWidth(Generic, tensor.Float32))
	assert.Equal(t, 4, LaneWidth(SSE42, tensor.Float32))
	assert.Equal(t, 8, LaneWidth(AVX2, tensor.Float32))
	assert.Equal(t, 4, LaneWidth(AVX2, tensor.Float64))
	assert.Equal(t, 16, LaneWidth(AVX512, tensor.Float32))
	assert.Equal(t, 2, LaneWidth(NEON, tensor.Float64))
}

package layers

import (
	"github.com/born-ml/kernels/internal/cpuid"
	"github.com/born-ml/kernels/internal/tensor"
)

// Lanes returns the number of independent accumulators kernels of precision F
// use on isa. Splitting a reduction across lanes lets the compiler keep them
// in separate registers.
func Lanes[F tensor.Float](isa cpuid.ISA) int {
	return max(cpuid.LaneWidth(isa, tensor.DataTypeOf[F]()), 1)
}

// Dot returns the dot product of a and b using lanes partial sums.
func Dot[F tensor.Float](a, b []F, lanes int) F {
	if lanes <= 1 || len(a) < 2*lanes {
		var sum F
		for i, v := range a {
			sum += v * b[i]
		}
		return sum
	}
	var acc [16]F
	lanes = min(lanes, len(acc))
	n := len(a) - len(a)%lanes
	b = b[:len(a)]
	for i := 0; i < n; i += lanes {
		for l := range lanes {
			acc[l] += a[i+l] * b[i+l]
		}
	}
	var sum F
	for l := range lanes {
		sum += acc[l]
	}
	for i := n; i < len(a); i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Sum returns the sum of a using lanes partial sums.
func Sum[F tensor.Float](a []F, lanes int) F {
	if lanes <= 1 || len(a) < 2*lanes {
		var sum F
		for _, v := range a {
			sum += v
		}
		return sum
	}
	var acc [16]F
	lanes = min(lanes, len(acc))
	n := len(a) - len(a)%lanes
	for i := 0; i < n; i += lanes {
		for l := range lanes {
			acc[l] += a[i+l]
		}
	}
	var sum F
	for l := range lanes {
		sum += acc[l]
	}
	for i := n; i < len(a); i++ {
		sum += a[i]
	}
	return sum
}

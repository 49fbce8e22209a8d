// Package cpuid detects the CPU instruction-set variant kernels are selected for.
package cpuid

import (
	"log/slog"
	"runtime"
	"strings"

	"github.com/born-ml/kernels/internal/envconfig"
	"github.com/born-ml/kernels/internal/tensor"
)

// ISA is a CPU instruction-set variant.
type ISA uint8

const (
	// Generic is the portable baseline.
	Generic ISA = iota
	// SSE42 is x86-64 SSE4.2 (128-bit).
	SSE42
	// AVX2 is x86-64 AVX2 with FMA (256-bit).
	AVX2
	// AVX512 is x86-64 AVX-512 F+BW (512-bit).
	AVX512
	// NEON is ARM64 Advanced SIMD (128-bit).
	NEON
	// SVE2 is ARM64 SVE2.
	SVE2
)

// All lists every variant kernels can be registered for.
var All = []ISA{Generic, SSE42, AVX2, AVX512, NEON, SVE2}

// String returns the variant name.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case SSE42:
		return "sse42"
	case AVX2:
		return "avx2"
	case AVX512:
		return "avx512"
	case NEON:
		return "neon"
	case SVE2:
		return "sve2"
	default:
		return "unknown"
	}
}

// ParseISA parses a variant name.
func ParseISA(s string) (ISA, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return Generic, true
	case "sse42":
		return SSE42, true
	case "avx2":
		return AVX2, true
	case "avx512":
		return AVX512, true
	case "neon":
		return NEON, true
	case "sve2":
		return SVE2, true
	default:
		return Generic, false
	}
}

// LaneWidth returns the number of dtype elements one vector register holds.
func LaneWidth(isa ISA, dtype tensor.DataType) int {
	var bits int
	switch isa {
	case SSE42, NEON, SVE2:
		bits = 128
	case AVX2:
		bits = 256
	case AVX512:
		bits = 512
	default:
		return 1
	}
	return bits / (8 * dtype.Size())
}

// CPU feature flags, set by the platform-specific init.
var (
	hasSSE42    bool
	hasAVX2     bool
	hasAVX512F  bool
	hasAVX512BW bool
	hasASIMD    bool
	hasSVE2     bool
)

// Available reports whether the running CPU supports isa.
func Available(isa ISA) bool {
	switch isa {
	case Generic:
		return true
	case SSE42:
		return hasSSE42
	case AVX2:
		return hasAVX2
	case AVX512:
		return hasAVX512F && hasAVX512BW
	case NEON:
		return hasASIMD
	case SVE2:
		return hasSVE2
	default:
		return false
	}
}

// Supported lists the variants usable on this CPU.
func Supported() []ISA {
	var out []ISA
	for _, isa := range All {
		if Available(isa) {
			out = append(out, isa)
		}
	}
	return out
}

// Detect returns the best variant for this CPU, ignoring overrides.
func Detect() ISA {
	switch runtime.GOARCH {
	case "amd64":
		switch {
		case Available(AVX512):
			return AVX512
		case hasAVX2:
			return AVX2
		case hasSSE42:
			return SSE42
		}
	case "arm64":
		// Apple cores run NEON faster than their SVE2 support.
		if hasSVE2 && runtime.GOOS != "darwin" {
			return SVE2
		}
		if hasASIMD {
			return NEON
		}
	}
	return Generic
}

// Active returns the variant kernels are selected for: the BORN_KERNELS_CPU
// override when the CPU supports it, otherwise Detect().
func Active() ISA {
	if override := envconfig.CPU(); override != "" {
		isa, ok := ParseISA(override)
		switch {
		case !ok:
			slog.Warn("unknown CPU variant override, autodetecting", "value", override)
		case !Available(isa):
			slog.Warn("CPU variant override not supported by this CPU, autodetecting", "value", isa)
		default:
			return isa
		}
	}
	return Detect()
}

// IsOverridden reports whether a usable override is set.
func IsOverridden() bool {
	isa, ok := ParseISA(envconfig.CPU())
	return ok && Available(isa) && envconfig.CPU() != ""
}

// Package envconfig reads runtime configuration from BORN_KERNELS_* environment
// variables. Getters read the environment on every call so tests can use t.Setenv.
package envconfig

import (
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Var returns an environment variable stripped of surrounding quotes and spaces.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// BoolWithDefault returns a getter for a boolean variable.
// An unparsable non-empty value counts as true.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool returns a getter for a boolean variable defaulting to false.
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// String returns a getter for a string variable.
func String(s string) func() string {
	return func() string {
		return Var(s)
	}
}

// Uint returns a getter for an unsigned variable with a default.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// Uint64 returns a getter for a 64-bit unsigned variable with a default.
func Uint64(key string, defaultValue uint64) func() uint64 {
	return func() uint64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

var (
	// CPU forces a CPU instruction-set variant (generic, sse42, avx2, avx512, neon, sve2).
	CPU = String("BORN_KERNELS_CPU")
	// MaxAllocBytes caps the size of a single output allocation. Zero disables the cap.
	MaxAllocBytes = Uint64("BORN_KERNELS_MAX_ALLOC", 0)
	// PostCheck enables result validation after every kernel run.
	PostCheck = Bool("BORN_KERNELS_POST_CHECK")
)

// NumThreads returns the number of worker goroutines kernels may use.
// Defaults to the number of CPUs.
func NumThreads() int {
	n := Uint("BORN_KERNELS_NUM_THREADS", 0)()
	if n == 0 {
		return runtime.NumCPU()
	}
	return int(n)
}

// LogLevel returns the log level from BORN_KERNELS_DEBUG.
// "1"/"true" selects debug; larger integers select more verbose levels.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("BORN_KERNELS_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}
	return level
}

// EnvVar describes one configuration variable.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every configuration variable with its current value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"BORN_KERNELS_CPU":         {"BORN_KERNELS_CPU", CPU(), "Force a CPU variant instead of autodetection"},
		"BORN_KERNELS_DEBUG":       {"BORN_KERNELS_DEBUG", LogLevel(), "Show additional debug information (e.g. BORN_KERNELS_DEBUG=1)"},
		"BORN_KERNELS_MAX_ALLOC":   {"BORN_KERNELS_MAX_ALLOC", MaxAllocBytes(), "Maximum bytes for a single result allocation (0 = unlimited)"},
		"BORN_KERNELS_NUM_THREADS": {"BORN_KERNELS_NUM_THREADS", NumThreads(), "Worker goroutines used by parallel kernels"},
		"BORN_KERNELS_POST_CHECK":  {"BORN_KERNELS_POST_CHECK", PostCheck(), "Validate results after every kernel run"},
	}
}

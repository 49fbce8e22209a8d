package envconfig

import (
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarTrimsQuotes(t *testing.T) {
	t.Setenv("BORN_KERNELS_CPU", ` "avx2" `)
	assert.Equal(t, "avx2", CPU())
}

func TestBool(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"1":     true,
		"false": false,
		"bogus": true,
	}
	for v, want := range cases {
		t.Run(v, func(t *testing.T) {
			t.Setenv("BORN_KERNELS_POST_CHECK", v)
			assert.Equal(t, want, PostCheck())
		})
	}
}

func TestMaxAllocBytes(t *testing.T) {
	t.Setenv("BORN_KERNELS_MAX_ALLOC", "")
	assert.Equal(t, uint64(0), MaxAllocBytes())

	t.Setenv("BORN_KERNELS_MAX_ALLOC", "1048576")
	assert.Equal(t, uint64(1048576), MaxAllocBytes())

	t.Setenv("BORN_KERNELS_MAX_ALLOC", "lots")
	assert.Equal(t, uint64(0), MaxAllocBytes())
}

func TestNumThreads(t *testing.T) {
	t.Setenv("BORN_KERNELS_NUM_THREADS", "")
	assert.Equal(t, runtime.NumCPU(), NumThreads())

	t.Setenv("BORN_KERNELS_NUM_THREADS", "3")
	assert.Equal(t, 3, NumThreads())
}

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"false": slog.LevelInfo,
		"1":     slog.LevelDebug,
		"2":     slog.Level(-8),
	}
	for v, want := range cases {
		t.Run(v, func(t *testing.T) {
			t.Setenv("BORN_KERNELS_DEBUG", v)
			assert.Equal(t, want, LogLevel())
		})
	}
}

func TestAsMap(t *testing.T) {
	m := AsMap()
	assert.Contains(t, m, "BORN_KERNELS_CPU")
	assert.Contains(t, m, "BORN_KERNELS_NUM_THREADS")
}

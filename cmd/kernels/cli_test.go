package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewCLI()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "kernels version "+version+"\n", out)

	out, err = run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestList(t *testing.T) {
	out, err := run(t, "list")
	require.NoError(t, err)
	for _, r := range registries() {
		assert.Contains(t, out, r.Name())
	}
	assert.Contains(t, out, "avx512")

	out, err = run(t, "ls", "transposedconv2d")
	require.NoError(t, err)
	assert.NotContains(t, out, "svd")
	// Two methods, two precisions, forward and backward.
	assert.Equal(t, 1+8, strings.Count(strings.TrimSpace(out), "\n")+1)
}

func TestCPU(t *testing.T) {
	t.Setenv("BORN_KERNELS_CPU", "generic")
	out, err := run(t, "cpu")
	require.NoError(t, err)
	assert.Contains(t, out, "active:   generic")
	assert.Contains(t, out, "override: generic")
}

func TestEnv(t *testing.T) {
	t.Setenv("BORN_KERNELS_NUM_THREADS", "3")
	out, err := run(t, "env")
	require.NoError(t, err)
	assert.Regexp(t, `BORN_KERNELS_NUM_THREADS\s+3`, out)
}

func TestSelftest(t *testing.T) {
	out, err := run(t, "selftest", "--variant", "generic", "--post-check")
	require.NoError(t, err, out)
	for _, tc := range selftests() {
		assert.Contains(t, out, tc.name)
	}
	assert.NotContains(t, out, "FAIL")
}

func TestSelftestUnknownVariant(t *testing.T) {
	_, err := run(t, "selftest", "--variant", "mmx")
	assert.ErrorContains(t, err, "unknown variant")
}

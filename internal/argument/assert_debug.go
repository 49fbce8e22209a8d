//go:build kernelsdebug

package argument

const debugAssertions = true

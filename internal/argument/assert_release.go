//go:build !kernelsdebug

package argument

const debugAssertions = false

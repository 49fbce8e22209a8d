// Package main provides the kernels CLI: it reports the detected CPU variant,
// the registered kernels and the configuration, and runs a self test.
package main

import (
	"context"
	"fmt"
	"os"
)

const version = "v0.0.1-dev"

func main() {
	if err := NewCLI().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// ==============================================================================
// UMBRA CLI - cmd/umbra/main.go
// ==============================================================================
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

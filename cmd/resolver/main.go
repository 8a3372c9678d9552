// Package main provides the resolver CLI, which commits to and reveals the
// random value that resolves a commit-reveal lottery contract.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Package main provides the entry point for the hivemindd-cli operator tool.
package main

import (
	"fmt"
	"os"

	"github.com/hivemindlabs/hivemindd/internal/clicmd"
)

func main() {
	if err := clicmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Package main is the entry point for the platform-cost CLI.
package main

import (
	"os"

	"platform-cost/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

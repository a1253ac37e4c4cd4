// Package main is the entry point for the maintplane CLI.
// The CLI is the terminal tool role holders use to work with the maintplane API.
package main

import (
	"os"

	"maintplane/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

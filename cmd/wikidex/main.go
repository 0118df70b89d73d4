// Package main provides the entry point for the wikidex CLI.
package main

import (
	"os"

	"github.com/knowhub/wikidex/cmd/wikidex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

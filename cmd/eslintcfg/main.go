// Package main provides the eslintcfg command.
package main

import (
	"os"

	"github.com/leapstack-labs/eslintcfg/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main is the entry point for the stakewatch CLI.
package main

import (
	"os"

	"github.com/stakewatch/stakewatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

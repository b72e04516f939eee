// Package main is the ormlite command-line entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/ormlite/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}

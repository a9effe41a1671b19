package main

import (
	"fmt"
	"os"

	"github.com/roach88/habitarc/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		// Engine errors were already rendered by the formatter; flag and
		// setup errors still need a line here.
		if cli.GetExitCode(err) == cli.ExitCommandError {
			fmt.Fprintf(os.Stderr, "habitarc: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}

package main

import (
	"os"

	"github.com/aitomatic/orchestra/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands emit their own formatted error output
		os.Exit(cli.GetExitCode(err))
	}
}

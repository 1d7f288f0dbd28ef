package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/harrison/doccheck/internal/cmd"
	"github.com/harrison/doccheck/internal/runner"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		// Propagate the external tool's exit status verbatim when one is
		// carried in the error chain
		var ec runner.ExitCoder
		if errors.As(err, &ec) {
			os.Exit(ec.ExitCode())
		}
		os.Exit(1)
	}
}

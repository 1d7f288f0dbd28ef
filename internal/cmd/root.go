package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for doccheck
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doccheck",
		Short: "Build, doc-test and clean a single library source unit",
		Long: `Doccheck compiles a library source unit into a reusable artifact,
runs the documentation-test tool against it with the artifact linked
under the unit's logical crate name, and removes the artifact afterward.

Compile failures abort the run before any tests execute; doc-test
failures still trigger cleanup. The external tools' exit codes are
propagated verbatim.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}

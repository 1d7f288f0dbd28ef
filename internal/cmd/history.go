package cmd

import (
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the 'doccheck history' parent command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Run history commands",
		Long: `Commands for viewing and managing recorded pipeline runs.

Each run of 'doccheck run' records its source unit, terminal state,
per-step durations and doc-test pass/fail counts in a local database.`,
	}

	// Add subcommands
	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryStatsCommand())
	cmd.AddCommand(newHistoryClearCommand())

	return cmd
}

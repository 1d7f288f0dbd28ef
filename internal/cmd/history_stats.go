package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/harrison/doccheck/internal/history"
	"github.com/spf13/cobra"
)

// newHistoryStatsCommand creates the 'doccheck history stats' command
func newHistoryStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate statistics across recorded runs",
		Long: `Display aggregate statistics across all recorded pipeline runs:
  - total and successful run counts
  - compile failure and doc-test failure counts
  - total examples passed and failed`,
		Args: cobra.NoArgs,
		RunE: runHistoryStats,
	}

	cmd.Flags().String("db", "", "Path to history database (default: from config)")

	return cmd
}

// runHistoryStats executes the history stats command
func runHistoryStats(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()

	dbPath, err := historyDBPath(cmd)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No run history found.\n")
		fmt.Fprintf(output, "Database path: %s\n", dbPath)
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	stats, err := store.GetStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("get statistics: %w", err)
	}
	if stats.TotalRuns == 0 {
		fmt.Fprintf(output, "No run history found.\n")
		return nil
	}

	printStats(output, stats)
	return nil
}

// printStats renders aggregate statistics.
func printStats(output io.Writer, stats *history.Stats) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	successRate := float64(stats.Succeeded) / float64(stats.TotalRuns) * 100

	fmt.Fprintf(output, "Run History Statistics:\n")
	fmt.Fprintf(output, "  Total runs: %d\n", stats.TotalRuns)
	fmt.Fprintf(output, "  Succeeded: %s (%.1f%%)\n", green.Sprintf("%d", stats.Succeeded), successRate)
	fmt.Fprintf(output, "  Compile failures: %s\n", red.Sprintf("%d", stats.CompileFailed))
	fmt.Fprintf(output, "  Doc-test failures: %s\n", red.Sprintf("%d", stats.DocTestFailed))
	fmt.Fprintf(output, "  Examples passed: %d\n", stats.ExamplesPassed)
	fmt.Fprintf(output, "  Examples failed: %d\n", stats.ExamplesFailed)
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/doccheck/internal/config"
	"github.com/harrison/doccheck/internal/history"
	"github.com/spf13/cobra"
)

// newHistoryShowCommand creates the 'doccheck history show' command
func newHistoryShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show recent pipeline runs",
		Long: `Display the most recent pipeline runs, newest first, including the
terminal state, exit code and doc-test pass/fail counts of each run.`,
		Args: cobra.NoArgs,
		RunE: runHistoryShow,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to display (0 = all)")
	cmd.Flags().String("db", "", "Path to history database (default: from config)")

	return cmd
}

// runHistoryShow executes the history show command
func runHistoryShow(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()
	limit, _ := cmd.Flags().GetInt("limit")

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

	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintf(output, "No run history found.\n")
		return nil
	}

	printRuns(output, runs)
	return nil
}

// historyDBPath resolves the history database path from the --db flag or
// the configuration file.
func historyDBPath(cmd *cobra.Command) (string, error) {
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		return db, nil
	}
	cfg, err := config.LoadConfigFromDir(".")
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.History.DBPath, nil
}

// printRuns renders run records as an aligned table.
func printRuns(output io.Writer, runs []history.RunRecord) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Fprintf(output, "%-20s %-30s %-15s %6s %8s %10s\n",
		"WHEN", "SOURCE UNIT", "STATE", "EXIT", "TESTS", "DURATION")

	for _, run := range runs {
		status := green
		if run.ExitCode != 0 {
			status = red
		}

		tests := "-"
		if run.Passed > 0 || run.Failed > 0 {
			tests = fmt.Sprintf("%d/%d", run.Passed, run.Passed+run.Failed)
		}

		fmt.Fprintf(output, "%-20s %-30s %s %6d %8s %10s\n",
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(run.SourceUnit, 30),
			status.Sprintf("%-15s", run.State),
			run.ExitCode,
			tests,
			run.TotalTime.Round(time.Millisecond),
		)

		if run.CleanupWarning != "" {
			fmt.Fprintf(output, "    warning: %s\n", run.CleanupWarning)
		}
	}
}

// truncate shortens s to max characters, marking the cut with "...".
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

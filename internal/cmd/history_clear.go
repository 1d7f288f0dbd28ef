package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/harrison/doccheck/internal/history"
	"github.com/spf13/cobra"
)

// newHistoryClearCommand creates the 'doccheck history clear' command
func newHistoryClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded pipeline runs",
		Long: `Delete every recorded pipeline run from the history database.

Prompts for confirmation unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: runHistoryClear,
	}

	cmd.Flags().Bool("force", false, "Skip confirmation prompt")
	cmd.Flags().String("db", "", "Path to history database (default: from config)")

	return cmd
}

// runHistoryClear executes the history clear command
func runHistoryClear(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()
	force, _ := cmd.Flags().GetBool("force")

	dbPath, err := historyDBPath(cmd)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No run history found, nothing to clear.\n")
		return nil
	}

	if !force {
		fmt.Fprintf(output, "Delete all run history in %s? [y/N] ", dbPath)
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintf(output, "Aborted.\n")
			return nil
		}
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	deleted, err := store.Clear(cmd.Context())
	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	fmt.Fprintf(output, "Deleted %d run record(s).\n", deleted)
	return nil
}

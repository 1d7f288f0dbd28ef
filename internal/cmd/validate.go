package cmd

import (
	"fmt"
	"os"

	"github.com/harrison/doccheck/internal/config"
	"github.com/harrison/doccheck/internal/docscan"
	"github.com/harrison/doccheck/internal/toolchain"
	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <source-unit>",
		Short: "Check a source unit and the toolchain without executing anything",
		Long: `Validate performs the static preflight checks of a run without invoking
the compiler or the documentation-test tool:

  - the source unit exists and is a readable file
  - a logical crate name can be derived from its path
  - the compiler and documentation-test tool resolve on PATH
  - the embedded documentation examples are counted

Examples:
  doccheck validate src/lib.rs
  doccheck validate json.rs --compiler rustc`,
		Args: cobra.ExactArgs(1),
		RunE: validateCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .doccheck/config.yaml)")
	cmd.Flags().String("compiler", "", "Compiler executable (default: rustc)")
	cmd.Flags().String("doctest-tool", "", "Documentation-test tool executable (default: rustdoc)")
	cmd.Flags().String("crate-name", "", "Logical crate name (default: derived from the source unit path)")

	return cmd
}

// validateCommand implements the validate command logic
func validateCommand(cmd *cobra.Command, args []string) error {
	sourceUnit := args[0]
	out := cmd.OutOrStdout()

	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if v, _ := cmd.Flags().GetString("compiler"); v != "" {
		cfg.Compiler = v
	}
	if v, _ := cmd.Flags().GetString("doctest-tool"); v != "" {
		cfg.DocTestTool = v
	}
	if v, _ := cmd.Flags().GetString("crate-name"); v != "" {
		cfg.CrateName = v
	}

	// Source unit must be a readable file
	info, err := os.Stat(sourceUnit)
	if err != nil {
		return fmt.Errorf("source unit not found: %s", sourceUnit)
	}
	if info.IsDir() {
		return fmt.Errorf("source unit %s is a directory, expected a file", sourceUnit)
	}
	fmt.Fprintf(out, "Source unit: %s (%d bytes)\n", sourceUnit, info.Size())

	// Crate name derivation must succeed
	crateName := cfg.CrateName
	if crateName == "" {
		crateName, err = toolchain.CrateName(sourceUnit)
		if err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "Crate name: %s\n", crateName)
	fmt.Fprintf(out, "Artifact: %s\n", toolchain.ArtifactName(crateName))

	// Both external tools must resolve
	tc := toolchain.New(cfg.Compiler, cfg.DocTestTool)
	compilerPath, docTestPath, err := tc.Resolve()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Compiler: %s\n", compilerPath)
	fmt.Fprintf(out, "Doc-test tool: %s\n", docTestPath)

	// Preview embedded examples
	examples, err := docscan.NewScanner().ScanFile(sourceUnit)
	if err != nil {
		return fmt.Errorf("failed to scan documentation: %w", err)
	}
	runnable := 0
	for _, ex := range examples {
		if ex.Runnable {
			runnable++
		}
	}
	fmt.Fprintf(out, "Embedded examples: %d (%d runnable)\n", len(examples), runnable)
	if runnable == 0 {
		fmt.Fprintf(out, "Note: a run would report zero tests and succeed.\n")
	}

	fmt.Fprintf(out, "\nSource unit is ready for doccheck run.\n")
	return nil
}

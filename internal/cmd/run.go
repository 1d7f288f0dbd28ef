package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/harrison/doccheck/internal/config"
	"github.com/harrison/doccheck/internal/display"
	"github.com/harrison/doccheck/internal/docscan"
	"github.com/harrison/doccheck/internal/filelock"
	"github.com/harrison/doccheck/internal/history"
	"github.com/harrison/doccheck/internal/logger"
	"github.com/harrison/doccheck/internal/runner"
	"github.com/harrison/doccheck/internal/toolchain"
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <source-unit>",
		Short: "Compile a source unit, run its documentation tests, remove the artifact",
		Long: `Run the three-step pipeline against a single source unit.

Step 1 compiles the unit into a reusable library artifact in the working
directory. Step 2 invokes the documentation-test tool with the logical
crate name bound to that artifact, extracting and executing the example
snippets embedded in the unit's documentation. Step 3 deletes the
artifact, whether or not the tests passed.

Configuration is loaded from .doccheck/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  # Test the doc examples of a library file
  doccheck run src/lib.rs

  # Override the crate name bound to the artifact
  doccheck run json.rs --crate-name json

  # Keep the artifact around for inspection
  doccheck run src/lib.rs --keep-artifact

  # Other options
  doccheck run --dry-run src/lib.rs      # Show the plan without executing
  doccheck run --timeout 2m src/lib.rs   # Per-step timeout
  doccheck run --verbose src/lib.rs      # Show detailed progress
  doccheck run --no-lock src/lib.rs      # Skip working-directory locking`,
		Args: cobra.ExactArgs(1),
		RunE: runCommand,
	}

	// Add flags
	cmd.Flags().String("config", "", "Path to config file (default: .doccheck/config.yaml)")
	cmd.Flags().String("compiler", "", "Compiler executable (default: rustc)")
	cmd.Flags().String("doctest-tool", "", "Documentation-test tool executable (default: rustdoc)")
	cmd.Flags().String("crate-name", "", "Logical crate name (default: derived from the source unit path)")
	cmd.Flags().String("work-dir", "", "Directory where the artifact is created and deleted")
	cmd.Flags().String("timeout", "", "Maximum execution time per step (e.g., 30s, 2m)")
	cmd.Flags().Bool("keep-artifact", false, "Skip the clean step, leaving the artifact behind")
	cmd.Flags().Bool("no-lock", false, "Do not serialize runs against the working directory")
	cmd.Flags().Bool("dry-run", false, "Show the pipeline plan without executing")
	cmd.Flags().Bool("verbose", false, "Show detailed execution information")
	cmd.Flags().String("log-dir", "", "Directory for log files")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	sourceUnit := args[0]

	// Load configuration from file
	configPath, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	// Build flag pointers for merge (only explicitly set values)
	var compilerPtr, docTestToolPtr, crateNamePtr, workDirPtr, logDirPtr *string
	var timeoutPtr *time.Duration
	var keepArtifactPtr, lockPtr *bool

	if cmd.Flags().Changed("compiler") {
		v, _ := cmd.Flags().GetString("compiler")
		compilerPtr = &v
	}
	if cmd.Flags().Changed("doctest-tool") {
		v, _ := cmd.Flags().GetString("doctest-tool")
		docTestToolPtr = &v
	}
	if cmd.Flags().Changed("crate-name") {
		v, _ := cmd.Flags().GetString("crate-name")
		crateNamePtr = &v
	}
	if cmd.Flags().Changed("work-dir") {
		v, _ := cmd.Flags().GetString("work-dir")
		workDirPtr = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		logDirPtr = &v
	}
	if cmd.Flags().Changed("timeout") {
		timeoutStr, _ := cmd.Flags().GetString("timeout")
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return fmt.Errorf("invalid timeout format %q: %w", timeoutStr, err)
		}
		timeoutPtr = &timeout
	}
	if cmd.Flags().Changed("keep-artifact") {
		v, _ := cmd.Flags().GetBool("keep-artifact")
		keepArtifactPtr = &v
	}
	if cmd.Flags().Changed("no-lock") {
		noLock, _ := cmd.Flags().GetBool("no-lock")
		lock := !noLock
		lockPtr = &lock
	}

	// Merge CLI flags with config (flags take precedence)
	cfg.MergeWithFlags(compilerPtr, docTestToolPtr, crateNamePtr, workDirPtr, timeoutPtr, logDirPtr, keepArtifactPtr, lockPtr)

	// Validate merged configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")

	// Check the source unit before invoking anything
	if info, err := os.Stat(sourceUnit); err != nil {
		return fmt.Errorf("source unit not found: %s", sourceUnit)
	} else if info.IsDir() {
		return fmt.Errorf("source unit %s is a directory, expected a file", sourceUnit)
	}

	// The tools execute with the working directory as their cwd, so a
	// relative source path must be resolved before it is handed to them
	absSourceUnit, err := filepath.Abs(sourceUnit)
	if err != nil {
		return fmt.Errorf("failed to resolve source unit path: %w", err)
	}

	// Derive the logical crate name and the artifact it determines
	crateName := cfg.CrateName
	if crateName == "" {
		crateName, err = toolchain.CrateName(sourceUnit)
		if err != nil {
			return err
		}
	}
	artifactPath := filepath.Join(cfg.WorkDir, toolchain.ArtifactName(crateName))

	tc := toolchain.New(cfg.Compiler, cfg.DocTestTool)
	compileCmd := tc.CompileCommand(absSourceUnit, crateName, cfg.WorkDir)
	docTestCmd := tc.DocTestCommand(absSourceUnit, crateName, toolchain.ArtifactName(crateName), cfg.WorkDir)

	// Preview the embedded examples so a unit without any is reported up front
	exampleCount, scanErr := docscan.NewScanner().CountRunnable(sourceUnit)

	// Display run summary
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Source unit: %s\n", sourceUnit)
	fmt.Fprintf(out, "  Crate name: %s\n", crateName)
	fmt.Fprintf(out, "  Artifact: %s\n", artifactPath)
	if scanErr == nil {
		fmt.Fprintf(out, "  Embedded examples: %d\n", exampleCount)
	}
	if verbose || dryRun {
		fmt.Fprintf(out, "  Compile: %s\n", compileCmd)
		fmt.Fprintf(out, "  Doc-test: %s\n", docTestCmd)
		fmt.Fprintf(out, "  Timeout per step: %s\n", cfg.Timeout)
	}

	// Dry-run mode: validate only
	if dryRun {
		fmt.Fprintf(out, "\nDry-run mode: pipeline is ready, nothing was executed.\n")
		return nil
	}

	// Determine log level: verbose flag overrides config
	logLevel := cfg.LogLevel
	if verbose {
		logLevel = "debug"
	}

	// Console logger for real-time progress, file logger for the run record
	consoleLog := logger.NewConsoleLogger(os.Stdout, logLevel)
	fileLog, err := logger.NewFileLogger(cfg.LogDir, logLevel)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer fileLog.Close()

	multiLog := &multiLogger{loggers: []runner.Logger{consoleLog, fileLog}}

	// Serialize runs sharing the working directory: both runs would create
	// and delete the same artifact file
	if cfg.Lock {
		lock := filelock.New(cfg.WorkDir)
		acquired, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("failed to lock working directory: %w", err)
		}
		if !acquired {
			multiLog.Infof("Waiting for lock on %s (another run is active)", cfg.WorkDir)
			if err := lock.Lock(); err != nil {
				return fmt.Errorf("failed to lock working directory: %w", err)
			}
		}
		defer lock.Unlock()
	}

	pipeline := runner.NewPipeline(runner.Config{
		SourceUnit:     sourceUnit,
		CrateName:      crateName,
		ArtifactPath:   artifactPath,
		CompileCommand: compileCmd,
		DocTestCommand: docTestCmd,
		KeepArtifact:   cfg.KeepArtifact,
		StepTimeout:    cfg.Timeout,
	}, nil, multiLog)

	result, runErr := pipeline.Run(cmd.Context())

	// Record the run before reporting: history is best-effort and must not
	// change the pipeline outcome
	if cfg.History.Enabled && result != nil {
		if err := recordRun(cmd.Context(), cfg, sourceUnit, crateName, result, runErr); err != nil {
			multiLog.Warnf("failed to record run history: %v", err)
		}
	}

	if result != nil && result.Cleanup != nil {
		reason := "artifact already absent"
		if result.Cleanup.Err != nil {
			reason = result.Cleanup.Err.Error()
		}
		display.WarnCleanup(result.Cleanup.Artifact, reason).Display(cmd.OutOrStderr())
	}

	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(out, "\nDocumentation tests passed")
	if result.Report.Parsed {
		fmt.Fprintf(out, ": %d passed; %d failed", result.Report.Passed, result.Report.Failed)
	}
	fmt.Fprintf(out, " (%s)\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Logs written to: %s\n", fileLog.RunFile())

	return nil
}

// recordRun persists one pipeline result to the history store.
func recordRun(ctx context.Context, cfg *config.Config, sourceUnit, crateName string, result *runner.Result, runErr error) error {
	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	rec := history.RunRecord{
		RunID:      result.RunID,
		SourceUnit: sourceUnit,
		CrateName:  crateName,
		State:      result.State.String(),
		ExitCode:   runner.ExitCodeFromError(runErr),
		Passed:     result.Report.Passed,
		Failed:     result.Report.Failed,
		TotalTime:  result.Duration,
	}
	if result.Compile != nil {
		rec.CompileTime = result.Compile.Duration
	}
	if result.DocTest != nil {
		rec.DocTestTime = result.DocTest.Duration
	}
	if result.Cleanup != nil {
		rec.CleanupWarning = result.Cleanup.Error()
	}

	if err := store.RecordRun(ctx, rec); err != nil {
		return err
	}
	return store.Prune(ctx, cfg.History.KeepRuns)
}

// multiLogger implements runner.Logger by delegating to multiple loggers
type multiLogger struct {
	loggers []runner.Logger
}

// Infof forwards to all loggers
func (ml *multiLogger) Infof(format string, args ...interface{}) {
	for _, l := range ml.loggers {
		l.Infof(format, args...)
	}
}

// Debugf forwards to all loggers
func (ml *multiLogger) Debugf(format string, args ...interface{}) {
	for _, l := range ml.loggers {
		l.Debugf(format, args...)
	}
}

// Warnf forwards to all loggers
func (ml *multiLogger) Warnf(format string, args ...interface{}) {
	for _, l := range ml.loggers {
		l.Warnf(format, args...)
	}
}

// Package runner implements the build / doc-test / clean pipeline that is
// the core of doccheck. A Pipeline executes three strictly sequential steps
// against one source unit: compile it into a reusable library artifact,
// run the documentation-test tool against it with the artifact linked under
// the unit's logical crate name, then delete the artifact.
//
// The steps form a small state machine:
//
//	START → COMPILED → TESTED → CLEANED (terminal)
//	START → COMPILE_FAILED (terminal)
//
// Compile failure aborts the run before the test step; doc-test failure
// still reaches cleanup; cleanup trouble is only ever a warning.
package runner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
)

// State represents the pipeline's position in its lifecycle.
type State int

const (
	// StateStart is the initial state before any step has run.
	StateStart State = iota
	// StateCompileFailed is the terminal state after a failed compile step.
	StateCompileFailed
	// StateCompiled means the build artifact exists and is ready for testing.
	StateCompiled
	// StateTested means the doc-test step completed (pass or fail).
	StateTested
	// StateCleaned is the terminal state after artifact cleanup was attempted.
	StateCleaned
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateCompileFailed:
		return "compile-failed"
	case StateCompiled:
		return "compiled"
	case StateTested:
		return "tested"
	case StateCleaned:
		return "cleaned"
	default:
		return "unknown"
	}
}

// Logger is the minimal logging surface the pipeline needs. The logger
// package provides console and file implementations.
type Logger interface {
	Infof(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// nopLogger discards all messages. Used when no logger is configured.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}

// Config describes one pipeline invocation. The command vectors are built
// by the toolchain package; the pipeline only sequences them.
type Config struct {
	SourceUnit     string        // Path to the source unit under test
	CrateName      string        // Logical crate name bound to the artifact
	ArtifactPath   string        // Artifact file the compile step produces
	CompileCommand Command       // Compiler invocation
	DocTestCommand Command       // Documentation-test tool invocation
	KeepArtifact   bool          // Skip the clean step (debugging aid)
	StepTimeout    time.Duration // Per-step timeout (0 = none)
}

// StepResult records the outcome of a single pipeline step.
type StepResult struct {
	Command  Command
	ExitCode int
	Duration time.Duration
	Output   string
}

// Result is the full account of one pipeline run.
type Result struct {
	RunID    string         // Unique identifier for this invocation
	State    State          // Terminal state reached
	Compile  *StepResult    // Compile step outcome (always set once attempted)
	DocTest  *StepResult    // Doc-test step outcome (nil if compile failed)
	Report   DocTestReport  // Pass/fail counts parsed from the tool output
	Cleanup  *CleanupWarning // Non-fatal cleanup trouble, if any
	Duration time.Duration  // Total wall-clock time
}

// Pipeline executes the three-step sequence for a single source unit.
// It owns the build artifact for the duration of one Run call.
type Pipeline struct {
	cfg    Config
	runner CommandRunner
	log    Logger
}

// NewPipeline creates a Pipeline with the given configuration.
// If cmdRunner is nil, a real os/exec-backed runner is used.
// If log is nil, pipeline progress messages are discarded.
func NewPipeline(cfg Config, cmdRunner CommandRunner, log Logger) *Pipeline {
	if cmdRunner == nil {
		cmdRunner = NewExecCommandRunner()
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Pipeline{
		cfg:    cfg,
		runner: cmdRunner,
		log:    log,
	}
}

// Run executes compile, doc-test, and clean in order, blocking on each
// external process until it exits. The returned Result is non-nil whenever
// at least the compile step was attempted, including on error.
//
// Error semantics follow the step contracts: a *CompileError aborts before
// the test step, a *DocTestError is returned only after cleanup has been
// attempted, and cleanup trouble alone never produces an error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID: uuid.New().String(),
		State: StateStart,
	}
	defer func() {
		result.Duration = time.Since(start)
	}()

	// Step 1: compile the source unit into a library artifact
	p.log.Infof("Compiling %s (crate %s)", p.cfg.SourceUnit, p.cfg.CrateName)
	p.log.Debugf("compile command: %s", p.cfg.CompileCommand)

	compileRes, err := p.runStep(ctx, p.cfg.CompileCommand)
	result.Compile = compileRes
	if err != nil {
		result.State = StateCompileFailed
		return result, NewCompileError(p.cfg.SourceUnit, compileRes.ExitCode, err)
	}
	if compileRes.ExitCode != 0 {
		result.State = StateCompileFailed
		return result, NewCompileError(p.cfg.SourceUnit, compileRes.ExitCode, nil)
	}
	result.State = StateCompiled
	p.log.Debugf("compile finished in %s, artifact %s",
		compileRes.Duration.Round(time.Millisecond), p.cfg.ArtifactPath)

	// Step 2: run documentation tests against the artifact
	p.log.Infof("Running documentation tests for %s", p.cfg.SourceUnit)
	p.log.Debugf("doc-test command: %s", p.cfg.DocTestCommand)

	docTestRes, docTestErr := p.runStep(ctx, p.cfg.DocTestCommand)
	result.DocTest = docTestRes
	result.Report = ParseDocTestOutput(docTestRes.Output)
	result.State = StateTested

	// Step 3: cleanup runs once the test step has been reached, no matter
	// how it went. Its own failure is a warning, never an error.
	p.clean(result)

	if docTestErr != nil {
		return result, &DocTestError{
			SourceUnit: p.cfg.SourceUnit,
			Code:       docTestRes.ExitCode,
			Passed:     result.Report.Passed,
			Failed:     result.Report.Failed,
			Err:        docTestErr,
		}
	}
	if docTestRes.ExitCode != 0 {
		return result, &DocTestError{
			SourceUnit: p.cfg.SourceUnit,
			Code:       docTestRes.ExitCode,
			Passed:     result.Report.Passed,
			Failed:     result.Report.Failed,
		}
	}

	if result.Report.Parsed {
		p.log.Infof("Documentation tests passed: %d passed; %d failed",
			result.Report.Passed, result.Report.Failed)
	}
	return result, nil
}

// runStep executes one command, applying the per-step timeout if configured.
func (p *Pipeline) runStep(ctx context.Context, cmd Command) (*StepResult, error) {
	if p.cfg.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.StepTimeout)
		defer cancel()
	}

	res, err := p.runner.Run(ctx, cmd)
	if res == nil {
		res = &CommandResult{ExitCode: -1}
	}
	return &StepResult{
		Command:  cmd,
		ExitCode: res.ExitCode,
		Duration: res.Duration,
		Output:   res.Output,
	}, err
}

// clean deletes the build artifact and records any trouble as a warning on
// the result. Deleting an already-absent artifact is treated the same way,
// which keeps cleanup idempotent.
func (p *Pipeline) clean(result *Result) {
	if p.cfg.KeepArtifact {
		p.log.Debugf("keeping artifact %s", p.cfg.ArtifactPath)
		return
	}

	err := os.Remove(p.cfg.ArtifactPath)
	switch {
	case err == nil:
		p.log.Debugf("removed artifact %s", p.cfg.ArtifactPath)
	case errors.Is(err, fs.ErrNotExist):
		warning := &CleanupWarning{Artifact: p.cfg.ArtifactPath}
		result.Cleanup = warning
		p.log.Warnf("%v", warning)
	default:
		warning := &CleanupWarning{Artifact: p.cfg.ArtifactPath, Err: err}
		result.Cleanup = warning
		p.log.Warnf("%v", warning)
	}
	result.State = StateCleaned
}

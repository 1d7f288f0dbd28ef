package runner

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Command describes a single external process invocation.
type Command struct {
	Path string   // Executable name or path (resolved via PATH if bare)
	Args []string // Arguments, not including the executable itself
	Dir  string   // Working directory (empty = current dir)
}

// String returns the command formatted as it would appear on a shell line.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Path
	}
	return c.Path + " " + strings.Join(c.Args, " ")
}

// CommandResult captures the outcome of running a Command.
type CommandResult struct {
	Output   string        // Combined stdout+stderr as captured
	ExitCode int           // Process exit code (0 on success)
	Duration time.Duration // Wall-clock time of the process
}

// CommandRunner abstracts process execution so pipeline state transitions
// can be exercised in tests without invoking a real compiler.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (*CommandResult, error)
}

// ExecCommandRunner executes commands via os/exec, streaming the process
// output to the configured writers while also capturing it for reporting.
// Diagnostics from the underlying tools pass through unmodified.
type ExecCommandRunner struct {
	Stdout io.Writer // Destination for process stdout (nil = os.Stdout)
	Stderr io.Writer // Destination for process stderr (nil = os.Stderr)
}

// NewExecCommandRunner creates an ExecCommandRunner wired to the standard streams.
func NewExecCommandRunner() *ExecCommandRunner {
	return &ExecCommandRunner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes the command, blocking until it exits or the context is done.
// A non-zero exit status is reported through CommandResult.ExitCode, not as
// an error; the error return is reserved for failures to start the process
// or context cancellation.
func (r *ExecCommandRunner) Run(ctx context.Context, cmd Command) (*CommandResult, error) {
	start := time.Now()

	execCmd := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	execCmd.Dir = cmd.Dir

	stdout := r.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	// Capture combined output while streaming to the live writers
	var capture strings.Builder
	execCmd.Stdout = io.MultiWriter(stdout, &capture)
	execCmd.Stderr = io.MultiWriter(stderr, &capture)

	err := execCmd.Run()

	result := &CommandResult{
		Output:   capture.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			// Prefer the context error so callers can distinguish a
			// timeout kill from a genuine tool failure.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			return result, nil
		}
		return result, err
	}

	return result, nil
}

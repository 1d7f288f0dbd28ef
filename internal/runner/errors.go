package runner

import (
	"errors"
	"fmt"
	"time"
)

// ExitCoder is implemented by errors that carry an external tool's exit
// status. The CLI entry point propagates these codes verbatim.
type ExitCoder interface {
	error
	ExitCode() int
}

// CompileError indicates the compile step exited non-zero. It is fatal for
// the invocation: the doc-test and clean steps never run.
type CompileError struct {
	SourceUnit string    // Path of the source unit that failed to compile
	Code       int       // Compiler exit code
	Timestamp  time.Time // When the failure was observed
	Err        error     // Underlying error (optional, e.g. missing binary)
}

// NewCompileError creates a CompileError with the current timestamp.
func NewCompileError(unit string, code int, err error) *CompileError {
	return &CompileError{
		SourceUnit: unit,
		Code:       code,
		Timestamp:  time.Now(),
		Err:        err,
	}
}

// Error implements the error interface for CompileError.
func (e *CompileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compile %s: %v", e.SourceUnit, e.Err)
	}
	return fmt.Sprintf("compile %s: compiler exited with code %d", e.SourceUnit, e.Code)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// ExitCode returns the compiler's exit status. A process that failed to
// start has no status; report the conventional 1.
func (e *CompileError) ExitCode() int {
	if e.Code == 0 {
		return 1
	}
	return e.Code
}

// DocTestError indicates one or more embedded examples failed during the
// doc-test step. Cleanup still runs; the tool's exit code is surfaced as
// the overall result of the invocation.
type DocTestError struct {
	SourceUnit string // Path of the source unit under test
	Code       int    // Doc-test tool exit code
	Passed     int    // Examples that passed, when the summary was parseable
	Failed     int    // Examples that failed, when the summary was parseable
	Err        error  // Underlying error (optional, e.g. timeout kill)
}

// Error implements the error interface for DocTestError.
func (e *DocTestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("doc-test %s: %v", e.SourceUnit, e.Err)
	}
	if e.Passed > 0 || e.Failed > 0 {
		return fmt.Sprintf("doc-test %s: %d passed; %d failed (exit code %d)",
			e.SourceUnit, e.Passed, e.Failed, e.Code)
	}
	return fmt.Sprintf("doc-test %s: tool exited with code %d", e.SourceUnit, e.Code)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *DocTestError) Unwrap() error {
	return e.Err
}

// ExitCode returns the doc-test tool's exit status verbatim.
func (e *DocTestError) ExitCode() int {
	if e.Code == 0 {
		return 1
	}
	return e.Code
}

// CleanupWarning reports that the build artifact was missing or could not
// be deleted during the clean step. It never affects the run's outcome and
// is surfaced to the user as a warning only.
type CleanupWarning struct {
	Artifact string // Path of the artifact that could not be removed
	Err      error  // Underlying filesystem error (optional)
}

// Error implements the error interface for CleanupWarning.
func (w *CleanupWarning) Error() string {
	if w.Err != nil {
		return fmt.Sprintf("cleanup %s: %v", w.Artifact, w.Err)
	}
	return fmt.Sprintf("cleanup %s: artifact already absent", w.Artifact)
}

// Unwrap returns the underlying error for error wrapping support.
func (w *CleanupWarning) Unwrap() error {
	return w.Err
}

// IsCompileError checks if the error is or wraps a CompileError.
func IsCompileError(err error) bool {
	if err == nil {
		return false
	}
	var ce *CompileError
	return errors.As(err, &ce)
}

// IsDocTestError checks if the error is or wraps a DocTestError.
func IsDocTestError(err error) bool {
	if err == nil {
		return false
	}
	var de *DocTestError
	return errors.As(err, &de)
}

// ExitCodeFromError extracts the propagated tool exit code from an error
// chain. Returns 1 for errors that carry no exit status, 0 for nil.
func ExitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}

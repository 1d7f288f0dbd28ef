package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecCommandRunnerCapturesOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := &ExecCommandRunner{Stdout: &stdout, Stderr: &stderr}

	res, err := r.Run(context.Background(), Command{
		Path: "sh",
		Args: []string{"-c", "echo hello"},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Output, "hello")
	// Output is streamed to the live writer as well as captured
	assert.Contains(t, stdout.String(), "hello")
}

func TestExecCommandRunnerExitCode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := &ExecCommandRunner{Stdout: &stdout, Stderr: &stderr}

	res, err := r.Run(context.Background(), Command{
		Path: "sh",
		Args: []string{"-c", "exit 42"},
	})

	// A non-zero exit is not an error, it is a result
	require.NoError(t, err)
	assert.Equal(t, 42, res.ExitCode)
}

func TestExecCommandRunnerStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := &ExecCommandRunner{Stdout: &stdout, Stderr: &stderr}

	res, err := r.Run(context.Background(), Command{
		Path: "sh",
		Args: []string{"-c", "echo oops >&2; exit 1"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, stderr.String(), "oops")
	assert.Contains(t, res.Output, "oops")
}

func TestExecCommandRunnerMissingBinary(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := &ExecCommandRunner{Stdout: &stdout, Stderr: &stderr}

	_, err := r.Run(context.Background(), Command{Path: "definitely-not-a-real-binary-4711"})
	assert.Error(t, err)
}

func TestExecCommandRunnerWorkDir(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer
	r := &ExecCommandRunner{Stdout: &stdout, Stderr: &stdout}

	res, err := r.Run(context.Background(), Command{
		Path: "sh",
		Args: []string{"-c", "pwd"},
		Dir:  dir,
	})
	require.NoError(t, err)
	assert.Equal(t, dir, strings.TrimSpace(res.Output))
}

func TestCommandString(t *testing.T) {
	cmd := Command{Path: "rustc", Args: []string{"--crate-type", "lib", "lib.rs"}}
	assert.Equal(t, "rustc --crate-type lib lib.rs", cmd.String())

	bare := Command{Path: "rustc"}
	assert.Equal(t, "rustc", bare.String())
}

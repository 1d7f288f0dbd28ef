package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand(t *testing.T) {
	chdir(t, t.TempDir())
	tools := t.TempDir()
	unit := writeSourceUnit(t)

	writeScript(t, tools, "fake-compiler", "exit 0\n")
	writeScript(t, tools, "fake-doctester", "exit 0\n")
	t.Setenv("PATH", tools)

	output, err := execute(t, "validate", unit,
		"--compiler", "fake-compiler",
		"--doctest-tool", "fake-doctester",
	)
	require.NoError(t, err, "output: %s", output)

	assert.Contains(t, output, "Crate name: unit")
	assert.Contains(t, output, "Artifact: libunit.rlib")
	assert.Contains(t, output, "Embedded examples: 1 (1 runnable)")
	assert.Contains(t, output, "ready for doccheck run")
}

func TestValidateCommandMissingTool(t *testing.T) {
	chdir(t, t.TempDir())
	unit := writeSourceUnit(t)
	t.Setenv("PATH", t.TempDir())

	_, err := execute(t, "validate", unit,
		"--compiler", "fake-compiler",
		"--doctest-tool", "fake-doctester",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateCommandMissingSourceUnit(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := execute(t, "validate", "ghost.rs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source unit not found")
}

func TestValidateCommandZeroExamples(t *testing.T) {
	chdir(t, t.TempDir())
	tools := t.TempDir()

	writeScript(t, tools, "fake-compiler", "exit 0\n")
	writeScript(t, tools, "fake-doctester", "exit 0\n")
	t.Setenv("PATH", tools)

	require.NoError(t, os.WriteFile("plain.rs", []byte("/// No examples here.\npub fn noop() {}\n"), 0644))

	output, err := execute(t, "validate", "plain.rs",
		"--compiler", "fake-compiler",
		"--doctest-tool", "fake-doctester",
	)
	require.NoError(t, err)
	assert.Contains(t, output, "Embedded examples: 0 (0 runnable)")
	assert.Contains(t, output, "zero tests")
}

// Package toolchain knows how to talk to the external compiler and
// documentation-test tool. It derives crate and artifact names from the
// source unit path and builds the exact argument vectors the pipeline
// executes. The tools themselves are opaque: doccheck only inspects their
// exit codes and output streams.
package toolchain

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/harrison/doccheck/internal/runner"
)

// Default external tools. Both can be overridden through configuration.
const (
	DefaultCompiler    = "rustc"
	DefaultDocTestTool = "rustdoc"
)

// crateNameRegex matches valid crate identifiers: letters, digits and
// underscores, not starting with a digit.
var crateNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Toolchain binds a compiler and a documentation-test tool.
type Toolchain struct {
	Compiler    string // Compiler executable (name or path)
	DocTestTool string // Documentation-test tool executable (name or path)
}

// New creates a Toolchain, falling back to the default tools for empty values.
func New(compiler, docTestTool string) Toolchain {
	if compiler == "" {
		compiler = DefaultCompiler
	}
	if docTestTool == "" {
		docTestTool = DefaultDocTestTool
	}
	return Toolchain{
		Compiler:    compiler,
		DocTestTool: docTestTool,
	}
}

// CrateName derives the logical crate name from a source unit path.
// The file stem is used directly ("json.rs" → "json"); the conventional
// stems "lib" and "main" carry no crate identity, so they fall back to the
// name of the containing directory. Hyphens are normalized to underscores.
func CrateName(sourceUnit string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(sourceUnit), filepath.Ext(sourceUnit))

	if stem == "lib" || stem == "main" {
		dir := filepath.Base(filepath.Dir(sourceUnit))
		if dir != "." && dir != string(filepath.Separator) && dir != "src" {
			stem = dir
		}
	}

	name := strings.ReplaceAll(stem, "-", "_")
	if !crateNameRegex.MatchString(name) {
		return "", fmt.Errorf("cannot derive a crate name from %q (got %q)", sourceUnit, name)
	}
	return name, nil
}

// ArtifactName returns the deterministic artifact file name for a crate.
// It follows the platform library convention the compiler uses for
// reusable library output: lib<crate>.rlib.
func ArtifactName(crateName string) string {
	return "lib" + crateName + ".rlib"
}

// CompileCommand builds the compiler invocation that produces a reusable
// library artifact for the source unit in workDir.
func (tc Toolchain) CompileCommand(sourceUnit, crateName, workDir string) runner.Command {
	return runner.Command{
		Path: tc.Compiler,
		Args: []string{
			"--crate-type", "lib",
			"--crate-name", crateName,
			sourceUnit,
		},
		Dir: workDir,
	}
}

// DocTestCommand builds the documentation-test tool invocation. The crate
// name is bound to the freshly built artifact so the extracted examples can
// link against it.
func (tc Toolchain) DocTestCommand(sourceUnit, crateName, artifactPath, workDir string) runner.Command {
	return runner.Command{
		Path: tc.DocTestTool,
		Args: []string{
			"--test", sourceUnit,
			"--crate-name", crateName,
			"--extern", fmt.Sprintf("%s=%s", crateName, artifactPath),
		},
		Dir: workDir,
	}
}

// Resolve looks up both tools on PATH and returns their absolute paths.
// Used by the validate command; the pipeline itself lets os/exec resolve.
func (tc Toolchain) Resolve() (compilerPath, docTestPath string, err error) {
	compilerPath, err = exec.LookPath(tc.Compiler)
	if err != nil {
		return "", "", fmt.Errorf("compiler %q not found: %w", tc.Compiler, err)
	}
	docTestPath, err = exec.LookPath(tc.DocTestTool)
	if err != nil {
		return "", "", fmt.Errorf("doc-test tool %q not found: %w", tc.DocTestTool, err)
	}
	return compilerPath, docTestPath, nil
}

package toolchain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrateName(t *testing.T) {
	tests := []struct {
		name       string
		sourceUnit string
		want       string
		wantErr    bool
	}{
		{name: "plain file stem", sourceUnit: "json.rs", want: "json"},
		{name: "nested path", sourceUnit: "src/value.rs", want: "value"},
		{name: "lib stem uses parent dir", sourceUnit: "mycrate/lib.rs", want: "mycrate"},
		{name: "lib stem under src uses bare stem", sourceUnit: "src/lib.rs", want: "lib"},
		{name: "main stem uses parent dir", sourceUnit: "tool/main.rs", want: "tool"},
		{name: "hyphens normalized", sourceUnit: "my-crate.rs", want: "my_crate"},
		{name: "leading digit rejected", sourceUnit: "9lives.rs", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CrateName(tt.sourceUnit)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "libjson.rlib", ArtifactName("json"))
	assert.Equal(t, "libmy_crate.rlib", ArtifactName("my_crate"))
}

func TestNewDefaults(t *testing.T) {
	tc := New("", "")
	assert.Equal(t, DefaultCompiler, tc.Compiler)
	assert.Equal(t, DefaultDocTestTool, tc.DocTestTool)

	custom := New("/opt/rustc", "/opt/rustdoc")
	assert.Equal(t, "/opt/rustc", custom.Compiler)
	assert.Equal(t, "/opt/rustdoc", custom.DocTestTool)
}

func TestCompileCommand(t *testing.T) {
	tc := New("rustc", "rustdoc")
	cmd := tc.CompileCommand("src/lib.rs", "json", "/work")

	assert.Equal(t, "rustc", cmd.Path)
	assert.Equal(t, []string{"--crate-type", "lib", "--crate-name", "json", "src/lib.rs"}, cmd.Args)
	assert.Equal(t, "/work", cmd.Dir)
}

func TestDocTestCommand(t *testing.T) {
	tc := New("rustc", "rustdoc")
	cmd := tc.DocTestCommand("src/lib.rs", "json", "libjson.rlib", "/work")

	assert.Equal(t, "rustdoc", cmd.Path)
	assert.Equal(t, []string{
		"--test", "src/lib.rs",
		"--crate-name", "json",
		"--extern", "json=libjson.rlib",
	}, cmd.Args)
	assert.Equal(t, "/work", cmd.Dir)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"fake-compiler", "fake-doctester"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0755))
	}
	t.Setenv("PATH", dir)

	tc := New("fake-compiler", "fake-doctester")
	compilerPath, docTestPath, err := tc.Resolve()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fake-compiler"), compilerPath)
	assert.Equal(t, filepath.Join(dir, "fake-doctester"), docTestPath)
}

func TestResolveMissingTool(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	tc := New("no-such-compiler", "no-such-doctester")
	_, _, err := tc.Resolve()
	assert.ErrorContains(t, err, "no-such-compiler")
}

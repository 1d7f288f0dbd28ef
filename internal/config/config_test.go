package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "rustc", cfg.Compiler)
	assert.Equal(t, "rustdoc", cfg.DocTestTool)
	assert.Equal(t, ".", cfg.WorkDir)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ".doccheck/logs", cfg.LogDir)
	assert.False(t, cfg.KeepArtifact)
	assert.True(t, cfg.Lock)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, ".doccheck/history.db", cfg.History.DBPath)
	assert.Equal(t, 500, cfg.History.KeepRuns)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
compiler: /opt/rust/bin/rustc
doctest_tool: /opt/rust/bin/rustdoc
crate_name: json
work_dir: build
timeout: 90s
log_level: debug
keep_artifact: true
lock: false
history:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/rust/bin/rustc", cfg.Compiler)
	assert.Equal(t, "/opt/rust/bin/rustdoc", cfg.DocTestTool)
	assert.Equal(t, "json", cfg.CrateName)
	assert.Equal(t, "build", cfg.WorkDir)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.KeepArtifact)
	assert.False(t, cfg.Lock)
	assert.False(t, cfg.History.Enabled)
	// Fields absent from the history section keep their defaults
	assert.Equal(t, ".doccheck/history.db", cfg.History.DBPath)
	assert.Equal(t, 500, cfg.History.KeepRuns)
}

func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	// Everything else stays at defaults
	assert.Equal(t, "rustc", cfg.Compiler)
	assert.True(t, cfg.Lock)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compiler: [not: valid\n"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigBadTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: soon\n"), 0644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "invalid timeout")
}

func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".doccheck"), 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, ".doccheck", "config.yaml"),
		[]byte("crate_name: fromdir\n"), 0644))

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "fromdir", cfg.CrateName)
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()

	compiler := "cc"
	timeout := 45 * time.Second
	keep := true
	lock := false

	cfg.MergeWithFlags(&compiler, nil, nil, nil, &timeout, nil, &keep, &lock)

	assert.Equal(t, "cc", cfg.Compiler)
	assert.Equal(t, "rustdoc", cfg.DocTestTool) // untouched
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.True(t, cfg.KeepArtifact)
	assert.False(t, cfg.Lock)
}

func TestValidate(t *testing.T) {
	t.Run("empty compiler", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Compiler = ""
		assert.ErrorContains(t, cfg.Validate(), "compiler")
	})

	t.Run("empty doctest tool", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DocTestTool = ""
		assert.ErrorContains(t, cfg.Validate(), "doctest_tool")
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LogLevel = "loud"
		assert.ErrorContains(t, cfg.Validate(), "log_level")
	})

	t.Run("negative timeout", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Timeout = -time.Second
		assert.ErrorContains(t, cfg.Validate(), "timeout")
	})

	t.Run("history enabled without db path", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.History.DBPath = ""
		assert.ErrorContains(t, cfg.Validate(), "history.db_path")
	})

	t.Run("negative keep_runs", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.History.KeepRuns = -1
		assert.ErrorContains(t, cfg.Validate(), "history.keep_runs")
	})
}

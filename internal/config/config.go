package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// HistoryConfig represents run history storage configuration
type HistoryConfig struct {
	// Enabled enables recording pipeline runs to the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database
	DBPath string `yaml:"db_path"`

	// KeepRuns is the maximum number of run records to retain (0 = unlimited)
	KeepRuns int `yaml:"keep_runs"`
}

// Config represents doccheck configuration options
type Config struct {
	// Compiler is the external compiler executable
	Compiler string `yaml:"compiler"`

	// DocTestTool is the external documentation-test tool executable
	DocTestTool string `yaml:"doctest_tool"`

	// CrateName overrides the crate name derived from the source unit path
	CrateName string `yaml:"crate_name"`

	// WorkDir is the directory where the artifact is created and deleted
	WorkDir string `yaml:"work_dir"`

	// Timeout is the maximum execution time per pipeline step
	Timeout time.Duration `yaml:"timeout"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where logs will be written
	LogDir string `yaml:"log_dir"`

	// KeepArtifact skips the clean step, leaving the artifact behind
	KeepArtifact bool `yaml:"keep_artifact"`

	// Lock serializes concurrent runs against the same working directory
	Lock bool `yaml:"lock"`

	// History contains run history storage configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Compiler:     "rustc",
		DocTestTool:  "rustdoc",
		CrateName:    "",
		WorkDir:      ".",
		Timeout:      10 * time.Minute,
		LogLevel:     "info",
		LogDir:       ".doccheck/logs",
		KeepArtifact: false,
		Lock:         true,
		History: HistoryConfig{
			Enabled:  true,
			DBPath:   ".doccheck/history.db",
			KeepRuns: 500,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, return defaults (not an error)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML through a temporary struct to handle duration parsing
	type yamlConfig struct {
		Compiler     string        `yaml:"compiler"`
		DocTestTool  string        `yaml:"doctest_tool"`
		CrateName    string        `yaml:"crate_name"`
		WorkDir      string        `yaml:"work_dir"`
		Timeout      string        `yaml:"timeout"`
		LogLevel     string        `yaml:"log_level"`
		LogDir       string        `yaml:"log_dir"`
		KeepArtifact bool          `yaml:"keep_artifact"`
		Lock         *bool         `yaml:"lock"`
		History      HistoryConfig `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.Compiler != "" {
		cfg.Compiler = yamlCfg.Compiler
	}
	if yamlCfg.DocTestTool != "" {
		cfg.DocTestTool = yamlCfg.DocTestTool
	}
	if yamlCfg.CrateName != "" {
		cfg.CrateName = yamlCfg.CrateName
	}
	if yamlCfg.WorkDir != "" {
		cfg.WorkDir = yamlCfg.WorkDir
	}
	if yamlCfg.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", yamlCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.KeepArtifact {
		cfg.KeepArtifact = yamlCfg.KeepArtifact
	}
	// Lock defaults to true, so only an explicit value may disable it
	if yamlCfg.Lock != nil {
		cfg.Lock = *yamlCfg.Lock
	}

	// Merge History config - check whether the section was provided at all
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			history := yamlCfg.History
			historyMap, _ := historySection.(map[string]interface{})

			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = history.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = history.DBPath
			}
			if _, exists := historyMap["keep_runs"]; exists {
				cfg.History.KeepRuns = history.KeepRuns
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .doccheck/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".doccheck", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(compiler, docTestTool, crateName, workDir *string, timeout *time.Duration, logDir *string, keepArtifact, lock *bool) {
	if compiler != nil {
		c.Compiler = *compiler
	}
	if docTestTool != nil {
		c.DocTestTool = *docTestTool
	}
	if crateName != nil {
		c.CrateName = *crateName
	}
	if workDir != nil {
		c.WorkDir = *workDir
	}
	if timeout != nil {
		c.Timeout = *timeout
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if keepArtifact != nil {
		c.KeepArtifact = *keepArtifact
	}
	if lock != nil {
		c.Lock = *lock
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.Compiler == "" {
		return fmt.Errorf("compiler cannot be empty")
	}
	if c.DocTestTool == "" {
		return fmt.Errorf("doctest_tool cannot be empty")
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	// Timeout can be 0 (no timeout) or positive, negative is invalid
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}

	if c.History.Enabled {
		if c.History.DBPath == "" {
			return fmt.Errorf("history.db_path cannot be empty when history is enabled")
		}
		if c.History.KeepRuns < 0 {
			return fmt.Errorf("history.keep_runs must be >= 0, got %d", c.History.KeepRuns)
		}
	}

	return nil
}

// Package config loads ifq configuration from YAML files and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for ifq.
type Config struct {
	// Workers is the number of files featurized concurrently.
	Workers int `yaml:"workers" env:"IFQ_WORKERS"`

	// Output is the default CSV destination for the features command.
	Output string `yaml:"output" env:"IFQ_OUTPUT"`

	// PerFile selects file-aggregate rows instead of per-function rows.
	PerFile bool `yaml:"per_file" env:"IFQ_PER_FILE"`

	// LoopMarker is the anchor text used to locate loop regions.
	LoopMarker string `yaml:"loop_marker" env:"IFQ_LOOP_MARKER"`

	// CacheDir holds the featurized-row cache. NoCache disables it.
	CacheDir string `yaml:"cache_dir" env:"IFQ_CACHE_DIR"`
	NoCache  bool   `yaml:"no_cache" env:"IFQ_NO_CACHE"`

	// ClangPath and OptPath locate the external toolchain binaries.
	ClangPath string `yaml:"clang_path" env:"IFQ_CLANG_PATH"`
	OptPath   string `yaml:"opt_path" env:"IFQ_OPT_PATH"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose" env:"IFQ_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:    4,
		Output:     "ir_features.csv",
		PerFile:    false,
		LoopMarker: "loop:",
		CacheDir:   filepath.Join(".ifq", "cache"),
		NoCache:    false,
		ClangPath:  "clang",
		OptPath:    "opt",
		Verbose:    false,
	}
}

// GlobalConfigPath returns the global config file path (~/.ifq/config.yaml).
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ifq", "config.yaml")
	}
	return filepath.Join(home, ".ifq", "config.yaml")
}

// ProjectConfigPath returns the project-level config file path.
func ProjectConfigPath() string {
	return filepath.Join(".ifq", "config.yaml")
}

// Load reads configuration with the following priority (highest to
// lowest): environment variables, project config, global config,
// defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{GlobalConfigPath(), ProjectConfigPath()} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories as
// needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IFQ_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("IFQ_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("IFQ_PER_FILE"); v != "" {
		cfg.PerFile = isTruthy(v)
	}
	if v := os.Getenv("IFQ_LOOP_MARKER"); v != "" {
		cfg.LoopMarker = v
	}
	if v := os.Getenv("IFQ_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("IFQ_NO_CACHE"); v != "" {
		cfg.NoCache = isTruthy(v)
	}
	if v := os.Getenv("IFQ_CLANG_PATH"); v != "" {
		cfg.ClangPath = v
	}
	if v := os.Getenv("IFQ_OPT_PATH"); v != "" {
		cfg.OptPath = v
	}
	if v := os.Getenv("IFQ_VERBOSE"); v != "" {
		cfg.Verbose = isTruthy(v)
	}
}

func isTruthy(v string) bool {
	return v == "true" || v == "1" || v == "yes"
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if c.Output == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if c.LoopMarker == "" {
		return fmt.Errorf("loop_marker cannot be empty")
	}
	if c.ClangPath == "" {
		return fmt.Errorf("clang_path cannot be empty")
	}
	if c.OptPath == "" {
		return fmt.Errorf("opt_path cannot be empty")
	}
	return nil
}

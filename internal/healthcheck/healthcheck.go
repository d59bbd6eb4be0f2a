package healthcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlgoperf/ir-feature-query/internal/config"
	"github.com/mlgoperf/ir-feature-query/internal/toolchain"
)

// CheckStatus represents the outcome of a single health check.
type CheckStatus struct {
	Name   string
	Status string // "ready", "error", "skipped"
	Detail string
	Error  string
}

// Result contains the full health check output for display.
type Result struct {
	EffectivePath  string
	EffectiveScope string // "global" or "project"
	Config         CheckStatus
	Toolchain      CheckStatus
	Cache          CheckStatus
}

// Check validates the configuration, probes the external toolchain, and
// verifies the row cache directory is writable.
func Check(cfg *config.Config, effectivePath string) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	result := &Result{
		EffectivePath:  effectivePath,
		EffectiveScope: scopeFromPath(effectivePath),
	}

	result.Config = checkConfig(cfg)
	result.Toolchain = checkToolchain(cfg)
	result.Cache = checkCache(cfg)

	return result, nil
}

// scopeFromPath determines "global" or "project" scope from a config file path.
// Returns empty string if path is empty.
func scopeFromPath(path string) string {
	if path == "" {
		return ""
	}

	home, err := os.UserHomeDir()
	if err == nil {
		globalDir := filepath.Join(home, ".ifq")
		if strings.HasPrefix(path, globalDir) {
			return "global"
		}
	}

	return "project"
}

func checkConfig(cfg *config.Config) CheckStatus {
	status := CheckStatus{
		Name:   "Configuration",
		Detail: fmt.Sprintf("%d workers, output %s", cfg.Workers, cfg.Output),
	}
	if err := cfg.Validate(); err != nil {
		status.Status = "error"
		status.Error = err.Error()
		return status
	}
	status.Status = "ready"
	return status
}

func checkToolchain(cfg *config.Config) CheckStatus {
	tc := toolchain.New(cfg.ClangPath, cfg.OptPath)
	status := CheckStatus{
		Name:   "Toolchain",
		Detail: fmt.Sprintf("clang=%s opt=%s", tc.Clang, tc.Opt),
	}
	if err := tc.Check(); err != nil {
		status.Status = "error"
		status.Error = err.Error()
		return status
	}
	status.Status = "ready"
	return status
}

// checkCache verifies the cache directory can be created and written. A
// disabled cache is reported as skipped, not as a failure.
func checkCache(cfg *config.Config) CheckStatus {
	status := CheckStatus{
		Name:   "Row cache",
		Detail: cfg.CacheDir,
	}
	if cfg.NoCache {
		status.Status = "skipped"
		status.Detail = "disabled by config"
		return status
	}
	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		status.Status = "error"
		status.Error = err.Error()
		return status
	}
	probe := filepath.Join(cfg.CacheDir, ".ifq-doctor")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		status.Status = "error"
		status.Error = err.Error()
		return status
	}
	os.Remove(probe)
	status.Status = "ready"
	return status
}

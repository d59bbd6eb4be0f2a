package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlgoperf/ir-feature-query/internal/config"
	"github.com/mlgoperf/ir-feature-query/internal/healthcheck"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on configuration and toolchain",
	Long: `Checks the configuration, verifies that the clang and opt binaries are
runnable, and confirms the row cache directory is writable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, configPath, err := loadConfigWithPath()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		result, err := healthcheck.Check(cfg, configPath)
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}

		displayDoctorResult(result)

		if result.Config.Status == "error" ||
			result.Toolchain.Status == "error" ||
			result.Cache.Status == "error" {
			return fmt.Errorf("health check failed: one or more checks did not pass")
		}

		return nil
	},
}

func loadConfigWithPath() (*config.Config, string, error) {
	projectConfigPath := config.ProjectConfigPath()
	globalConfigPath := config.GlobalConfigPath()

	var effectivePath string
	if fileExists(projectConfigPath) {
		effectivePath = projectConfigPath
	} else if globalConfigPath != "" && fileExists(globalConfigPath) {
		effectivePath = globalConfigPath
	} else {
		return nil, "", fmt.Errorf("no configuration found\n"+
			"Checked paths:\n"+
			"  - %s (project)\n"+
			"  - %s (global)\n"+
			"Run 'ifq init' to create a configuration file",
			projectConfigPath, globalConfigPath)
	}

	cfg, err := config.LoadFromFile(effectivePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config from %s: %w", effectivePath, err)
	}

	return cfg, effectivePath, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func displayDoctorResult(result *healthcheck.Result) {
	fmt.Printf("Using config: %s (%s)\n\n", result.EffectivePath, result.EffectiveScope)

	for _, check := range []healthcheck.CheckStatus{result.Config, result.Toolchain, result.Cache} {
		fmt.Printf("%s:\n", check.Name)
		if check.Detail != "" {
			fmt.Printf("  %s\n", check.Detail)
		}
		fmt.Printf("  Status: %s %s\n", formatStatusIcon(check.Status), check.Status)
		if check.Error != "" && check.Status == "error" {
			fmt.Printf("  Error: %s\n", check.Error)
		}
		fmt.Println()
	}
}

func formatStatusIcon(status string) string {
	switch status {
	case "ready":
		return "✓"
	case "skipped":
		return "-"
	case "error":
		return "✗"
	default:
		return "?"
	}
}

package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mlgoperf/ir-feature-query/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ifq configuration interactively",
	Long: `Guides you through setting up ifq configuration step by step.
Creates a config file with extraction, cache, and toolchain settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	cfg := config.DefaultConfig()

	// === SECTION 1: Scope ===
	scope := "project"
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Config scope").
				Description("Project config overrides the global one").
				Options(
					huh.NewOption("Project (./.ifq/config.yaml)", "project"),
					huh.NewOption("Global (~/.ifq/config.yaml)", "global"),
				).
				Value(&scope),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 2: Extraction ===
	workers := strconv.Itoa(cfg.Workers)
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Worker count").
				Description("Files featurized concurrently").
				Placeholder("4").
				Value(&workers).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 1 {
						return fmt.Errorf("must be a positive integer")
					}
					return nil
				}),
			huh.NewInput().
				Title("Default CSV output path").
				Placeholder("ir_features.csv").
				Value(&cfg.Output),
			huh.NewInput().
				Title("Loop anchor text").
				Description("Label text that marks loop-related lines in the IR").
				Placeholder("loop:").
				Value(&cfg.LoopMarker),
			huh.NewConfirm().
				Title("Aggregate per file by default?").
				Description("One row per file instead of one row per function").
				Value(&cfg.PerFile),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.Workers, _ = strconv.Atoi(workers)

	// === SECTION 3: Cache and toolchain ===
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Row cache directory").
				Placeholder(".ifq/cache").
				Value(&cfg.CacheDir),
			huh.NewInput().
				Title("clang binary").
				Placeholder("clang").
				Value(&cfg.ClangPath),
			huh.NewInput().
				Title("opt binary").
				Placeholder("opt").
				Value(&cfg.OptPath),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	path := config.ProjectConfigPath()
	if scope == "global" {
		path = config.GlobalConfigPath()
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

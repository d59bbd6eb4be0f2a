package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mlgoperf/ir-feature-query/internal/config"
	"github.com/mlgoperf/ir-feature-query/internal/log"
	"github.com/mlgoperf/ir-feature-query/internal/pipeline"
	"github.com/mlgoperf/ir-feature-query/internal/scanner"
	"github.com/mlgoperf/ir-feature-query/pkg/dataset"
)

// featuresCmd represents the features command
var featuresCmd = &cobra.Command{
	Use:   "features <dir>",
	Short: "Featurize a directory of IR files into a CSV dataset",
	Long: `Scans a directory tree for .ll files, recovers functions, basic blocks,
loop regions, and call edges from each, and writes one feature row per
function (or one aggregate row per file with --per-file) to a CSV file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger := log.Default()
		if cfg.Verbose {
			logger.SetLevel(log.DebugLevel)
		}

		if cmd.Flags().Changed("workers") {
			cfg.Workers, _ = cmd.Flags().GetInt("workers")
		}
		if cmd.Flags().Changed("out") {
			cfg.Output, _ = cmd.Flags().GetString("out")
		}
		if cmd.Flags().Changed("per-file") {
			cfg.PerFile, _ = cmd.Flags().GetBool("per-file")
		}
		if cmd.Flags().Changed("no-cache") {
			cfg.NoCache, _ = cmd.Flags().GetBool("no-cache")
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		root := args[0]
		files, err := scanner.Scan(root)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", root, err)
		}
		if len(files) == 0 {
			logger.Warn("no IR files found", "dir", root)
			return nil
		}
		logger.Info("scan complete", "dir", root, "files", len(files))

		var cache *dataset.RowCache
		if !cfg.NoCache {
			cachePath := filepath.Join(cfg.CacheDir, "rows.msgpack")
			cache, err = dataset.OpenRowCache(cachePath)
			if err != nil {
				logger.Warn("row cache unavailable, continuing without it", "error", err)
				cache = nil
			}
		}

		spinner := log.NewSpinner(fmt.Sprintf("Featurizing 0/%d files...", len(files)))
		spinner.Start()
		opts := pipeline.Options{
			Workers:    cfg.Workers,
			PerFile:    cfg.PerFile,
			LoopMarker: cfg.LoopMarker,
			Cache:      cache,
			Progress: func(done, total int) {
				spinner.Message(fmt.Sprintf("Featurizing %d/%d files...", done, total))
			},
		}
		result, err := pipeline.Run(cmd.Context(), files, opts)
		spinner.Stop()
		if err != nil {
			return fmt.Errorf("featurizing: %w", err)
		}

		if cache != nil {
			if err := cache.Save(); err != nil {
				logger.Warn("saving row cache", "error", err)
			}
		}

		if err := dataset.WriteCSVFile(cfg.Output, result.Rows, cfg.PerFile); err != nil {
			return fmt.Errorf("writing dataset: %w", err)
		}

		fmt.Printf("Wrote %d rows to %s\n", len(result.Rows), cfg.Output)
		fmt.Printf("Files: %d attempted, %d succeeded, %d failed", result.Attempted, result.Succeeded, len(result.Failures))
		if result.CacheHits > 0 {
			fmt.Printf(" (%d from cache)", result.CacheHits)
		}
		fmt.Println()
		for _, f := range result.Failures {
			logger.Warn("file skipped", "path", f.Path, "reason", f.Reason)
		}
		return nil
	},
}

func init() {
	featuresCmd.Flags().StringP("out", "o", "", "Output CSV path (default from config)")
	featuresCmd.Flags().Bool("per-file", false, "Emit one aggregate row per file instead of per function")
	featuresCmd.Flags().IntP("workers", "w", 0, "Number of concurrent file analyses (default from config)")
	featuresCmd.Flags().Bool("no-cache", false, "Bypass the featurized-row cache")
}

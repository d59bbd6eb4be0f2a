package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mlgoperf/ir-feature-query/internal/config"
	"github.com/mlgoperf/ir-feature-query/internal/log"
	"github.com/mlgoperf/ir-feature-query/internal/scanner"
	"github.com/mlgoperf/ir-feature-query/internal/toolchain"
)

// optimizeCmd represents the optimize command
var optimizeCmd = &cobra.Command{
	Use:   "optimize <in-dir> <out-dir>",
	Short: "Run an optimization pass pipeline over a directory of IR files",
	Long: `Runs opt with the given pass pipeline over every .ll file under the
input directory, mirroring the directory layout into the output
directory. The result pairs with "ifq compare" to measure size impact.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inDir, outDir := args[0], args[1]
		passes, _ := cmd.Flags().GetString("passes")
		if inliner, _ := cmd.Flags().GetBool("inliner"); inliner {
			passes = toolchain.DefaultInlinerPipeline
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger := log.Default()
		tc := toolchain.New(cfg.ClangPath, cfg.OptPath)

		files, err := scanner.Scan(inDir)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", inDir, err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no IR files found in %s", inDir)
		}

		optimized := 0
		for _, file := range files {
			outPath := filepath.Join(outDir, file.Path)
			if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
				return fmt.Errorf("creating output dir: %w", err)
			}
			if err := tc.Optimize(cmd.Context(), file.FullPath, outPath, passes); err != nil {
				logger.Warn("optimize failed", "path", file.Path, "error", err)
				continue
			}
			logger.Debug("optimized", "path", file.Path, "passes", passes)
			optimized++
		}

		fmt.Printf("Optimized %d/%d files with -passes=%s into %s\n", optimized, len(files), passes, outDir)
		if optimized == 0 {
			return fmt.Errorf("all %d files failed to optimize", len(files))
		}
		return nil
	},
}

func init() {
	optimizeCmd.Flags().StringP("passes", "p", "default<O3>", "Pass pipeline passed to opt")
	optimizeCmd.Flags().Bool("inliner", false, "Shortcut for the "+toolchain.DefaultInlinerPipeline+" pipeline")
}

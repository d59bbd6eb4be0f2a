package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlgoperf/ir-feature-query/internal/config"
	"github.com/mlgoperf/ir-feature-query/internal/log"
	"github.com/mlgoperf/ir-feature-query/internal/toolchain"
)

// sourceExtensions are the C/C++ files the emit command compiles.
var sourceExtensions = map[string]bool{
	".c":   true,
	".cc":  true,
	".cpp": true,
	".cxx": true,
}

// emitCmd represents the emit command
var emitCmd = &cobra.Command{
	Use:   "emit <source-dir> <out-dir>",
	Short: "Emit unoptimized IR from C/C++ sources",
	Long: `Compiles every C/C++ source file under a directory to unoptimized
textual IR, writing one .ll file per source into the output directory.
Requires clang on PATH or configured via clang_path.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceDir, outDir := args[0], args[1]

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger := log.Default()
		tc := toolchain.New(cfg.ClangPath, cfg.OptPath)

		var sources []string
		err = filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != sourceDir {
					return filepath.SkipDir
				}
				return nil
			}
			if sourceExtensions[filepath.Ext(path)] {
				sources = append(sources, path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("walking %s: %w", sourceDir, err)
		}
		if len(sources) == 0 {
			return fmt.Errorf("no C/C++ sources found in %s", sourceDir)
		}
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}

		emitted := 0
		for _, src := range sources {
			outPath, err := tc.EmitIR(cmd.Context(), src, outDir)
			if err != nil {
				logger.Warn("emit failed", "source", src, "error", err)
				continue
			}
			logger.Info("emitted", "source", src, "out", outPath)
			emitted++
		}

		fmt.Printf("Emitted IR for %d/%d sources into %s\n", emitted, len(sources), outDir)
		if emitted == 0 {
			return fmt.Errorf("all %d sources failed to compile", len(sources))
		}
		return nil
	},
}

package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlgoperf/ir-feature-query/internal/config"
	"github.com/mlgoperf/ir-feature-query/internal/scanner"
	"github.com/mlgoperf/ir-feature-query/pkg/features"
	"github.com/mlgoperf/ir-feature-query/pkg/ir"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Analyze a single IR file",
	Long: `Recovers functions, basic blocks, loop regions, and call edges from one
.ll file and prints the resulting feature rows.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]

		info, err := os.Stat(filePath)
		if err != nil {
			return fmt.Errorf("stat file: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("path is a directory, expected a file: %s", filePath)
		}
		if !strings.EqualFold(filepath.Ext(filePath), scanner.IRExtension) {
			return fmt.Errorf("expected a %s file: %s", scanner.IRExtension, filePath)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		mod := ir.Parse(filepath.Base(filePath), string(content))
		extractor := &features.Extractor{LoopMarker: cfg.LoopMarker}

		perFile, _ := cmd.Flags().GetBool("per-file")
		var rows []features.Row
		if perFile {
			rows = []features.Row{extractor.FileRow(mod)}
		} else {
			rows = extractor.FunctionRows(mod)
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			data, err := json.MarshalIndent(rows, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		printRows(rows, perFile)
		return nil
	},
}

func init() {
	extractCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	extractCmd.Flags().Bool("per-file", false, "Print one aggregate row for the whole file")
}

func printRows(rows []features.Row, perFile bool) {
	cols := features.Columns(perFile)
	for _, row := range rows {
		rec := row.Record(perFile)
		if perFile {
			fmt.Printf("=== File: %s ===\n", row.SourceFile)
		} else {
			fmt.Printf("=== Function: %s ===\n", row.FunctionName)
		}
		for i, col := range cols {
			if col == "function_name" || col == "source_file" {
				continue
			}
			fmt.Printf("  %-36s %s\n", col, rec[i])
		}
	}
	if len(rows) == 0 {
		fmt.Println("No functions found.")
	}
}

package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlgoperf/ir-feature-query/internal/config"
	"github.com/mlgoperf/ir-feature-query/internal/toolchain"
)

// passesCmd represents the passes command
var passesCmd = &cobra.Command{
	Use:   "passes",
	Short: "List the optimizer's supported passes",
	Long: `Asks the configured opt binary for its supported passes and prints
them, or writes them as a JSON array with --out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		tc := toolchain.New(cfg.ClangPath, cfg.OptPath)

		passes, err := tc.ListPasses(cmd.Context())
		if err != nil {
			return err
		}

		outPath, _ := cmd.Flags().GetString("out")
		if outPath != "" {
			data, err := json.MarshalIndent(passes, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			if err := os.WriteFile(outPath, append(data, '\n'), 0644); err != nil {
				return fmt.Errorf("writing pass list: %w", err)
			}
			fmt.Printf("Wrote %d passes to %s\n", len(passes), outPath)
			return nil
		}

		for _, p := range passes {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	passesCmd.Flags().StringP("out", "o", "", "Write the pass list as JSON to this file")
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlgoperf/ir-feature-query/internal/scanner"
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <baseline-dir> <candidate-dir>",
	Short: "Compare IR file sizes between two directories",
	Long: `Matches .ll files between a baseline directory and a candidate directory
by relative path and reports the size change of each: the largest
reductions, the largest regressions, and the average change across all
matched files. A candidate produced with a filename suffix (for example
foo_opt.ll next to foo.ll) is matched via --suffix.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		baselineDir, candidateDir := args[0], args[1]
		suffix, _ := cmd.Flags().GetString("suffix")
		top, _ := cmd.Flags().GetInt("top")
		showAll, _ := cmd.Flags().GetBool("all")

		baseline, err := scanner.Scan(baselineDir)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", baselineDir, err)
		}
		if len(baseline) == 0 {
			return fmt.Errorf("no IR files found in %s", baselineDir)
		}

		var results []sizeDiff
		var missing []string
		for _, file := range baseline {
			candidatePath := filepath.Join(candidateDir, file.Path)
			if suffix != "" {
				ext := filepath.Ext(candidatePath)
				candidatePath = strings.TrimSuffix(candidatePath, ext) + suffix + ext
			}
			info, err := os.Stat(candidatePath)
			if err != nil {
				missing = append(missing, file.Path)
				continue
			}
			d := sizeDiff{Path: file.Path, Baseline: file.Size, Candidate: info.Size()}
			if file.Size > 0 {
				d.Pct = float64(d.Candidate-d.Baseline) / float64(d.Baseline) * 100
			}
			results = append(results, d)
		}
		if len(results) == 0 {
			return fmt.Errorf("no matching files found in %s", candidateDir)
		}

		sort.Slice(results, func(i, j int) bool { return results[i].Pct < results[j].Pct })

		if showAll {
			printDiffTable("All files", results)
		} else {
			printDiffTable("Largest reductions", headDiffs(results, top))
			printDiffTable("Largest regressions", tailDiffs(results, top))
		}

		var totalPct float64
		for _, d := range results {
			totalPct += d.Pct
		}
		fmt.Printf("Matched %d/%d files, average size change %+.2f%%\n", len(results), len(baseline), totalPct/float64(len(results)))
		if len(missing) > 0 {
			fmt.Printf("No candidate for %d files (first: %s)\n", len(missing), missing[0])
		}
		return nil
	},
}

type sizeDiff struct {
	Path      string
	Baseline  int64
	Candidate int64
	Pct       float64
}

func headDiffs(diffs []sizeDiff, n int) []sizeDiff {
	if len(diffs) < n {
		n = len(diffs)
	}
	return diffs[:n]
}

func tailDiffs(diffs []sizeDiff, n int) []sizeDiff {
	if len(diffs) < n {
		n = len(diffs)
	}
	return diffs[len(diffs)-n:]
}

func printDiffTable(title string, diffs []sizeDiff) {
	fmt.Printf("%s:\n", title)
	fmt.Printf("  %-40s %12s %12s %10s\n", "file", "baseline", "candidate", "change")
	for _, d := range diffs {
		fmt.Printf("  %-40s %12d %12d %+9.2f%%\n", d.Path, d.Baseline, d.Candidate, d.Pct)
	}
	fmt.Println()
}

func init() {
	compareCmd.Flags().String("suffix", "", "Filename suffix on candidate files, inserted before the extension")
	compareCmd.Flags().Int("top", 10, "Rows shown in the reduction and regression tables")
	compareCmd.Flags().Bool("all", false, "Print every matched file instead of the top tables")
}

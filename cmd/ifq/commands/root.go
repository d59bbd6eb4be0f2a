package commands

import (
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "ifq",
	Short: "ir-feature-query - Structural feature extraction from LLVM IR text",
	Long: `ifq recovers functions, basic blocks, loop regions, and call edges from
textual LLVM IR and turns them into numeric feature rows for
ML-guided-optimization training.

Commands:
  features    Featurize a directory of .ll files into a CSV dataset
  extract     Analyze a single .ll file
  compare     Compare IR file sizes between two directories
  emit        Emit unoptimized IR from C/C++ sources
  optimize    Run an optimization pass pipeline over a directory
  passes      List the optimizer's supported passes
  init        Create an ifq configuration interactively
  doctor      Check configuration and toolchain health

Use "ifq [command] --help" for more information about a command.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.AddCommand(featuresCmd)
	RootCmd.AddCommand(extractCmd)
	RootCmd.AddCommand(compareCmd)
	RootCmd.AddCommand(emitCmd)
	RootCmd.AddCommand(optimizeCmd)
	RootCmd.AddCommand(passesCmd)
	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(doctorCmd)
}

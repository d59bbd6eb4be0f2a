// Package main implements the ir-feature-query CLI (ifq). It extracts
// structural features from textual LLVM IR for ML-guided-optimization
// training data.
package main

import (
	"os"

	"github.com/mlgoperf/ir-feature-query/cmd/ifq/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Version = version
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

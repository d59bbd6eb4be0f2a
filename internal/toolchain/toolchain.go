// Package toolchain shells out to the external compiler and optimizer
// binaries: emitting textual IR from C/C++ sources, running optimization
// pass pipelines, and listing the passes a given opt build supports.
package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultInlinerPipeline is the pass pipeline used for direct-inlining
// comparisons.
const DefaultInlinerPipeline = "scc-oz-module-inliner"

// Toolchain locates the external binaries.
type Toolchain struct {
	Clang string
	Opt   string
}

// New returns a Toolchain, defaulting to binaries on PATH.
func New(clang, opt string) Toolchain {
	if clang == "" {
		clang = "clang"
	}
	if opt == "" {
		opt = "opt"
	}
	return Toolchain{Clang: clang, Opt: opt}
}

// Check verifies both binaries are runnable.
func (t Toolchain) Check() error {
	for _, bin := range []string{t.Clang, t.Opt} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("locating %s: %w", bin, err)
		}
	}
	return nil
}

// EmitIR compiles one source file to unoptimized textual IR in outDir and
// returns the output path.
func (t Toolchain) EmitIR(ctx context.Context, source, outDir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	outPath := filepath.Join(outDir, base+".ll")

	cmd := exec.CommandContext(ctx, t.Clang, "-S", "-emit-llvm", "-O0", source, "-o", outPath)
	if out, err := runCaptured(cmd); err != nil {
		return "", fmt.Errorf("emitting IR for %s: %w: %s", source, err, out)
	}
	return outPath, nil
}

// Optimize runs the given pass pipeline over one IR file, writing textual
// IR to outPath.
func (t Toolchain) Optimize(ctx context.Context, inPath, outPath, passes string) error {
	cmd := exec.CommandContext(ctx, t.Opt, "-S", "-passes="+passes, inPath, "-o", outPath)
	if out, err := runCaptured(cmd); err != nil {
		return fmt.Errorf("optimizing %s: %w: %s", inPath, err, out)
	}
	return nil
}

// ListPasses asks opt for its supported passes.
func (t Toolchain) ListPasses(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, t.Opt, "--print-passes")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if out, err := runCaptured(cmd); err != nil {
		return nil, fmt.Errorf("listing passes: %w: %s", err, out)
	}
	return ParsePassList(stdout.String()), nil
}

// ParsePassList extracts pass names from opt --print-passes output: the
// non-indented, non-empty lines are pass or category entries; indented
// lines describe parameters and are skipped.
func ParsePassList(output string) []string {
	var passes []string
	for _, line := range strings.Split(output, "\n") {
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		passes = append(passes, strings.TrimSpace(line))
	}
	return passes
}

// runCaptured runs cmd and returns trimmed stderr alongside any error.
func runCaptured(cmd *exec.Cmd) (string, error) {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return strings.TrimSpace(stderr.String()), err
}

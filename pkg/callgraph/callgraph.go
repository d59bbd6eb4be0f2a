// Package callgraph infers caller/callee relationships across the
// functions of one IR module. Edges are derived by scanning call
// instruction lines for the symbol they reference; no resolution beyond
// name matching is attempted.
package callgraph

import (
	"regexp"
	"strconv"

	"github.com/mlgoperf/ir-feature-query/pkg/ir"
)

var (
	calleeRe = regexp.MustCompile(`\bcall\b[^\n]*?@"?([\w.$-]+)`)

	// profCountRe recognizes the two profiling-count encodings seen in
	// annotated IR: a "count:" field and an inline function_entry_count
	// metadata tuple.
	profCountRe = regexp.MustCompile(`(?:count:\s*|!"function_entry_count",\s*i64\s+)(\d+)`)
)

// Summary holds the call-related metrics for one function.
type Summary struct {
	// Callees lists the symbols referenced by call instructions, in
	// textual order, duplicates included.
	Callees []string
	// CallsNo is the number of call instruction lines.
	CallsNo int
	// CallUsage is the number of call occurrences with an extractable
	// callee symbol.
	CallUsage int
	// IsRecursive is true when the function's own name appears among its
	// callees.
	IsRecursive bool
	// CallerHeight is the number of hops upward through inferred call
	// edges before no caller is found or a cycle is detected.
	CallerHeight int
	// EntryFreq is the first profiling count found in the function text,
	// 0 when the module carries no profiling annotations.
	EntryFreq int
	// MaxBlockFreq is the largest profiling count found in any basic
	// block, 0 when absent.
	MaxBlockFreq int
}

// Analyze computes the full call summary for one function of the module.
func Analyze(m *ir.Module, fn *ir.Function) Summary {
	callees := Callees(fn)

	recursive := false
	for _, callee := range callees {
		if callee == fn.Name {
			recursive = true
			break
		}
	}

	return Summary{
		Callees:      callees,
		CallsNo:      ir.CountInstructions(fn.Text).Calls,
		CallUsage:    len(callees),
		IsRecursive:  recursive,
		CallerHeight: CallerHeight(m, fn),
		EntryFreq:    EntryFreq(fn),
		MaxBlockFreq: MaxBlockFreq(fn),
	}
}

// Callees extracts the ordered list of callee symbols referenced by call
// instructions in the function's text.
func Callees(fn *ir.Function) []string {
	matches := calleeRe.FindAllStringSubmatch(fn.Text, -1)
	if len(matches) == 0 {
		return nil
	}
	callees := make([]string, 0, len(matches))
	for _, match := range matches {
		callees = append(callees, match[1])
	}
	return callees
}

// CallerHeight walks upward through the call graph: at each step the
// caller is the first function, in module definition order, whose callees
// include the current function's name. The walk stops when no caller
// exists or when the next caller has already been visited. The visited
// set is what bounds the traversal on cyclic call graphs, self-loops
// included; without it mutual recursion would never terminate.
func CallerHeight(m *ir.Module, fn *ir.Function) int {
	height := 0
	visited := make(map[string]bool)
	current := fn

	for {
		caller := findCaller(m, current.Name)
		if caller == nil || visited[caller.Name] {
			return height
		}
		visited[current.Name] = true
		height++
		current = caller
	}
}

// findCaller returns the first function in definition order that calls
// name, or nil when none does.
func findCaller(m *ir.Module, name string) *ir.Function {
	for _, fn := range m.Functions() {
		for _, callee := range Callees(fn) {
			if callee == name {
				return fn
			}
		}
	}
	return nil
}

// EntryFreq extracts the first profiling count in the function's text.
// Modules without profiling annotations yield 0; that is a documented
// default, not an error.
func EntryFreq(fn *ir.Function) int {
	return firstProfCount(fn.Text)
}

// MaxBlockFreq returns the largest profiling count found in any of the
// function's basic blocks, 0 when no block carries one.
func MaxBlockFreq(fn *ir.Function) int {
	max := 0
	for _, block := range fn.Blocks() {
		for _, match := range profCountRe.FindAllStringSubmatch(block.Text, -1) {
			if n, err := strconv.Atoi(match[1]); err == nil && n > max {
				max = n
			}
		}
	}
	return max
}

func firstProfCount(text string) int {
	match := profCountRe.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return n
}

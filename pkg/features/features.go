// Package features combines block, loop, and call-graph analyses into
// fixed-shape feature rows, one per function or one per file. Aggregation
// is pure computation over already-extracted structures; persistence is
// the caller's concern.
package features

import (
	"strconv"

	"github.com/mlgoperf/ir-feature-query/pkg/callgraph"
	"github.com/mlgoperf/ir-feature-query/pkg/ir"
)

// Row is one feature record. Every field is always populated; metrics with
// no applicable data hold 0, never an absent value. All metrics are
// float64 so that file-level mean reduction needs no widening.
type Row struct {
	FunctionName string `json:"function_name,omitempty" msgpack:"function_name"`
	SourceFile   string `json:"source_file" msgpack:"source_file"`

	InstructionPerBlock          float64 `json:"instruction_per_block" msgpack:"instruction_per_block"`
	SuccessorPerBlock            float64 `json:"successor_per_block" msgpack:"successor_per_block"`
	AvgNestedLoopLevel           float64 `json:"avg_nested_loop_level" msgpack:"avg_nested_loop_level"`
	InstrPerLoop                 float64 `json:"instr_per_loop" msgpack:"instr_per_loop"`
	BlockWithMultipleSuccPerLoop float64 `json:"block_with_multiple_succ_per_loop" msgpack:"block_with_multiple_succ_per_loop"`
	MaxLoopDepth                 float64 `json:"max_loop_depth" msgpack:"max_loop_depth"`
	NumCallsiteInLoop            float64 `json:"num_callsite_in_loop" msgpack:"num_callsite_in_loop"`
	CallsNo                      float64 `json:"calls_no" msgpack:"calls_no"`
	CallUsage                    float64 `json:"call_usage" msgpack:"call_usage"`
	CallerHeight                 float64 `json:"caller_height" msgpack:"caller_height"`
	IsRecursive                  float64 `json:"is_recursive" msgpack:"is_recursive"`
	IsLocal                      float64 `json:"is_local" msgpack:"is_local"`
	EntryBlockFreq               float64 `json:"entry_block_freq" msgpack:"entry_block_freq"`
	MaxCallsiteBlockFreq         float64 `json:"max_callsite_block_freq" msgpack:"max_callsite_block_freq"`
	RetCount                     float64 `json:"ret_count" msgpack:"ret_count"`
	FaddCount                    float64 `json:"fadd_count" msgpack:"fadd_count"`
	FsubCount                    float64 `json:"fsub_count" msgpack:"fsub_count"`
	FmulCount                    float64 `json:"fmul_count" msgpack:"fmul_count"`
	FdivCount                    float64 `json:"fdiv_count" msgpack:"fdiv_count"`
	LoadCount                    float64 `json:"load_count" msgpack:"load_count"`
	StoreCount                   float64 `json:"store_count" msgpack:"store_count"`
	AllocaCount                  float64 `json:"alloca_count" msgpack:"alloca_count"`
	ConditionalBranchCount       float64 `json:"conditional_branch_count" msgpack:"conditional_branch_count"`
	UnconditionalBranchCount     float64 `json:"unconditional_branch_count" msgpack:"unconditional_branch_count"`
}

// featureNames is the fixed feature column order, identifiers excluded.
var featureNames = []string{
	"instruction_per_block",
	"successor_per_block",
	"avg_nested_loop_level",
	"instr_per_loop",
	"block_with_multiple_succ_per_loop",
	"max_loop_depth",
	"num_callsite_in_loop",
	"calls_no",
	"call_usage",
	"caller_height",
	"is_recursive",
	"is_local",
	"entry_block_freq",
	"max_callsite_block_freq",
	"ret_count",
	"fadd_count",
	"fsub_count",
	"fmul_count",
	"fdiv_count",
	"load_count",
	"store_count",
	"alloca_count",
	"conditional_branch_count",
	"unconditional_branch_count",
}

// Columns returns the CSV header for rows. perFile omits the
// function_name identifier.
func Columns(perFile bool) []string {
	cols := make([]string, 0, len(featureNames)+2)
	if !perFile {
		cols = append(cols, "function_name")
	}
	cols = append(cols, "source_file")
	return append(cols, featureNames...)
}

// Record renders the row as CSV fields in Columns order.
func (r Row) Record(perFile bool) []string {
	rec := make([]string, 0, len(featureNames)+2)
	if !perFile {
		rec = append(rec, r.FunctionName)
	}
	rec = append(rec, r.SourceFile)
	for _, v := range r.metrics() {
		rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return rec
}

// metrics returns the metric values in featureNames order.
func (r Row) metrics() []float64 {
	return []float64{
		r.InstructionPerBlock,
		r.SuccessorPerBlock,
		r.AvgNestedLoopLevel,
		r.InstrPerLoop,
		r.BlockWithMultipleSuccPerLoop,
		r.MaxLoopDepth,
		r.NumCallsiteInLoop,
		r.CallsNo,
		r.CallUsage,
		r.CallerHeight,
		r.IsRecursive,
		r.IsLocal,
		r.EntryBlockFreq,
		r.MaxCallsiteBlockFreq,
		r.RetCount,
		r.FaddCount,
		r.FsubCount,
		r.FmulCount,
		r.FdivCount,
		r.LoadCount,
		r.StoreCount,
		r.AllocaCount,
		r.ConditionalBranchCount,
		r.UnconditionalBranchCount,
	}
}

// Extractor computes feature rows from parsed modules.
type Extractor struct {
	// LoopMarker overrides the anchor text used to locate loop regions.
	// Empty selects ir.DefaultLoopMarker.
	LoopMarker string
}

// New returns an Extractor with default settings.
func New() *Extractor {
	return &Extractor{}
}

// FunctionRows produces one row per function in definition order.
// Functions with zero basic blocks still get a row; their per-block
// averages are 0, not NaN.
func (e *Extractor) FunctionRows(m *ir.Module) []Row {
	fns := m.Functions()
	if len(fns) == 0 {
		return nil
	}
	rows := make([]Row, 0, len(fns))
	for _, fn := range fns {
		rows = append(rows, e.functionRow(m, fn))
	}
	return rows
}

// FileRow produces a single aggregate row for the module. Per-function
// metrics are summed across functions that have at least one basic block,
// then the per-block and loop-level rate metrics are mean-reduced by that
// function count. Zero-block functions are excluded from the aggregate
// but never fail the file.
func (e *Extractor) FileRow(m *ir.Module) Row {
	agg := Row{SourceFile: m.Source}

	counted := 0
	for _, fn := range m.Functions() {
		if len(fn.Blocks()) == 0 {
			continue
		}
		counted++
		row := e.functionRow(m, fn)

		agg.InstructionPerBlock += row.InstructionPerBlock
		agg.SuccessorPerBlock += row.SuccessorPerBlock
		agg.AvgNestedLoopLevel += row.AvgNestedLoopLevel
		agg.InstrPerLoop += row.InstrPerLoop
		agg.BlockWithMultipleSuccPerLoop += row.BlockWithMultipleSuccPerLoop
		agg.MaxLoopDepth += row.MaxLoopDepth
		agg.NumCallsiteInLoop += row.NumCallsiteInLoop
		agg.CallsNo += row.CallsNo
		agg.CallUsage += row.CallUsage
		agg.CallerHeight += row.CallerHeight
		agg.IsRecursive += row.IsRecursive
		agg.IsLocal += row.IsLocal
		agg.EntryBlockFreq += row.EntryBlockFreq
		agg.MaxCallsiteBlockFreq += row.MaxCallsiteBlockFreq
		agg.RetCount += row.RetCount
		agg.FaddCount += row.FaddCount
		agg.FsubCount += row.FsubCount
		agg.FmulCount += row.FmulCount
		agg.FdivCount += row.FdivCount
		agg.LoadCount += row.LoadCount
		agg.StoreCount += row.StoreCount
		agg.AllocaCount += row.AllocaCount
		agg.ConditionalBranchCount += row.ConditionalBranchCount
		agg.UnconditionalBranchCount += row.UnconditionalBranchCount
	}

	if counted > 0 {
		n := float64(counted)
		agg.InstructionPerBlock /= n
		agg.SuccessorPerBlock /= n
		agg.AvgNestedLoopLevel /= n
	}
	return agg
}

// functionRow is the single merge point: it receives the pre-computed
// block, loop, and call sub-results and builds one immutable row from
// them.
func (e *Extractor) functionRow(m *ir.Module, fn *ir.Function) Row {
	blocks := blockStats(fn)
	loops := e.loopStats(fn)
	calls := callgraph.Analyze(m, fn)
	instr := ir.CountInstructions(fn.Text)

	row := Row{
		FunctionName: fn.Name,
		SourceFile:   m.Source,

		InstructionPerBlock:          blocks.InstructionPerBlock,
		SuccessorPerBlock:            blocks.SuccessorPerBlock,
		AvgNestedLoopLevel:           loops.AvgDepth,
		InstrPerLoop:                 loops.InstrPerLoop,
		BlockWithMultipleSuccPerLoop: loops.MultiSuccPerLoop,
		MaxLoopDepth:                 float64(loops.MaxDepth),
		NumCallsiteInLoop:            float64(loops.Callsites),
		CallsNo:                      float64(calls.CallsNo),
		CallUsage:                    float64(calls.CallUsage),
		CallerHeight:                 float64(calls.CallerHeight),
		EntryBlockFreq:               float64(calls.EntryFreq),
		MaxCallsiteBlockFreq:         float64(calls.MaxBlockFreq),
		RetCount:                     float64(instr.Rets),
		FaddCount:                    float64(instr.FAdds),
		FsubCount:                    float64(instr.FSubs),
		FmulCount:                    float64(instr.FMuls),
		FdivCount:                    float64(instr.FDivs),
		LoadCount:                    float64(instr.Loads),
		StoreCount:                   float64(instr.Stores),
		AllocaCount:                  float64(instr.Allocas),
		ConditionalBranchCount:       float64(instr.CondBranches),
		UnconditionalBranchCount:     float64(instr.UncondBranches),
	}
	if calls.IsRecursive {
		row.IsRecursive = 1
	}
	if fn.IsLocal() {
		row.IsLocal = 1
	}
	return row
}

// blockAggregates holds the per-block density metrics for one function.
type blockAggregates struct {
	Blocks              int
	InstructionPerBlock float64
	SuccessorPerBlock   float64
}

func blockStats(fn *ir.Function) blockAggregates {
	blocks := fn.Blocks()
	if len(blocks) == 0 {
		return blockAggregates{}
	}

	instructions := 0
	successors := 0
	for _, b := range blocks {
		counts := ir.CountInstructions(b.Text)
		instructions += counts.Lines
		successors += counts.Successors
	}

	n := float64(len(blocks))
	return blockAggregates{
		Blocks:              len(blocks),
		InstructionPerBlock: float64(instructions) / n,
		SuccessorPerBlock:   float64(successors) / n,
	}
}

// loopAggregates holds the loop metrics for one function. All values stay
// 0 when the function has no loop anchors.
type loopAggregates struct {
	AvgDepth         float64
	InstrPerLoop     float64
	MultiSuccPerLoop float64
	MaxDepth         int
	Callsites        int
}

func (e *Extractor) loopStats(fn *ir.Function) loopAggregates {
	regions := fn.Loops(e.LoopMarker)
	if len(regions) == 0 {
		return loopAggregates{}
	}

	depthSum := 0
	maxDepth := 0
	instructions := 0
	multiSucc := 0
	callsites := 0
	for _, region := range regions {
		depthSum += region.Depth
		if region.Depth > maxDepth {
			maxDepth = region.Depth
		}
		counts := ir.CountInstructions(region.Body)
		instructions += counts.Lines
		multiSucc += counts.CondBranches
		callsites += counts.Calls
	}

	n := float64(len(regions))
	return loopAggregates{
		AvgDepth:         float64(depthSum) / n,
		InstrPerLoop:     float64(instructions) / n,
		MultiSuccPerLoop: float64(multiSucc) / n,
		MaxDepth:         maxDepth,
		Callsites:        callsites,
	}
}

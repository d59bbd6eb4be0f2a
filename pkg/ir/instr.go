package ir

import (
	"regexp"
	"strings"
)

// boolPredRe matches the narrow-integer predicate type that marks a branch
// as conditional.
var boolPredRe = regexp.MustCompile(`\bi1\b`)

// InstructionCounts tallies instruction occurrences within one region of
// text. Categories are independent: a line can count toward several
// classifiers at once.
type InstructionCounts struct {
	// Lines is the number of real instruction lines: indented, not a
	// comment, not a closing brace.
	Lines int

	CondBranches   int
	UncondBranches int
	// Successors counts inferred control-flow successors: two per
	// conditional branch, one per unconditional.
	Successors int

	Loads   int
	Stores  int
	Allocas int

	FAdds int
	FSubs int
	FMuls int
	FDivs int

	Calls int
	Rets  int
}

// CountInstructions classifies every instruction line in the given region
// text by its leading opcode token. No type checking happens; this is
// surface-token classification only.
func CountInstructions(text string) InstructionCounts {
	var c InstructionCounts
	for _, line := range strings.Split(text, "\n") {
		if !isInstructionLine(line) {
			continue
		}
		c.Lines++

		switch opcode(line) {
		case "br":
			if boolPredRe.MatchString(line) {
				c.CondBranches++
				c.Successors += 2
			} else {
				c.UncondBranches++
				c.Successors++
			}
		case "load":
			c.Loads++
		case "store":
			c.Stores++
		case "alloca":
			c.Allocas++
		case "fadd":
			c.FAdds++
		case "fsub":
			c.FSubs++
		case "fmul":
			c.FMuls++
		case "fdiv":
			c.FDivs++
		case "call":
			c.Calls++
		case "ret":
			c.Rets++
		}
	}
	return c
}

// isInstructionLine reports whether the line looks like a real
// instruction: leading indentation, non-empty, not a comment, not the
// region's closing brace.
func isInstructionLine(line string) bool {
	if len(line) == 0 || (line[0] != ' ' && line[0] != '\t') {
		return false
	}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed == "}" {
		return false
	}
	return trimmed[0] != ';' && trimmed[0] != '}'
}

// opcode returns the leading opcode token of an instruction line, skipping
// a result assignment ("%x = ...") and call modifiers ("tail",
// "musttail", "notail").
func opcode(line string) string {
	fields := strings.Fields(line)
	i := 0
	if len(fields) >= 2 && strings.HasPrefix(fields[0], "%") && fields[1] == "=" {
		i = 2
	}
	for i < len(fields) {
		switch fields[i] {
		case "tail", "musttail", "notail":
			i++
		default:
			return fields[i]
		}
	}
	return ""
}

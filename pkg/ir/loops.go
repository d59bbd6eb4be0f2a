package ir

import "strings"

// DefaultLoopMarker is the textual anchor that marks a loop-related line
// in optimized IR (loop metadata references and loop-named labels both
// carry it).
const DefaultLoopMarker = "loop:"

// LoopRegion is a loop-marked span of a function's text. It is an
// independent view over the same text as the function's basic blocks; the
// two are not guaranteed disjoint.
type LoopRegion struct {
	// Depth is the number of marker occurrences on the anchor line, a
	// cheap proxy for nesting depth rather than true lexical scope.
	Depth int
	// Body is the text from the anchor to the brace that balances the
	// anchor's scope, or to end of text when the braces never balance.
	Body string
}

// Loops scans the function text for lines containing marker and recovers a
// region for each. An empty marker selects DefaultLoopMarker. A function
// with no anchors returns nil; that is an ordinary outcome, not a failure.
func (f *Function) Loops(marker string) []LoopRegion {
	if marker == "" {
		marker = DefaultLoopMarker
	}

	var regions []LoopRegion
	offset := 0
	for _, line := range strings.SplitAfter(f.Text, "\n") {
		if strings.Contains(line, marker) {
			regions = append(regions, LoopRegion{
				Depth: strings.Count(line, marker),
				Body:  loopBody(f.Text, offset),
			})
		}
		offset += len(line)
	}
	return regions
}

// loopBody recovers the loop span by forward-scanning from the anchor
// offset with a brace counter that starts at 1: the anchor line is assumed
// to open one unmatched scope. The scan stops when the counter returns to
// zero; hitting end of text first truncates the body there instead of
// failing, mirroring the function splitter's end-of-text policy.
func loopBody(text string, start int) string {
	depth := 1
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			return text[start : i+1]
		}
	}
	return text[start:]
}

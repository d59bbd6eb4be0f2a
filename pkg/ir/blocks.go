package ir

import (
	"regexp"
	"strings"
)

// labelRe matches a basic-block label line: an identifier followed by a
// colon at the start of a line. Anchoring on the line start keeps labels
// inside string constants from matching.
var labelRe = regexp.MustCompile(`(?m)^\s*"?[\w.$-]+"?:`)

// BasicBlock is a straight-line span of a function's text between label
// markers.
type BasicBlock struct {
	// Label is the block's label with the trailing colon stripped.
	Label string
	// Text is the block body, everything after the label up to the next
	// label (or the end of the function region).
	Text string
}

// Blocks segments the function text into basic blocks, in textual order.
// The entry region before the first label is skipped, and spans that are
// empty after trimming are dropped, so no returned block has empty text.
// The result is memoized; Function text is immutable once split.
func (f *Function) Blocks() []BasicBlock {
	if f.split {
		return f.blocks
	}
	f.blocks = segmentBlocks(f.Text)
	f.split = true
	return f.blocks
}

func segmentBlocks(text string) []BasicBlock {
	locs := labelRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	var blocks []BasicBlock
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := text[loc[1]:end]
		if strings.TrimSpace(body) == "" {
			continue
		}
		label := strings.TrimSpace(text[loc[0]:loc[1]])
		label = strings.Trim(strings.TrimSuffix(label, ":"), `"`)
		blocks = append(blocks, BasicBlock{Label: label, Text: body})
	}
	return blocks
}

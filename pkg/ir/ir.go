// Package ir recovers structure from textual LLVM IR.
// It works purely on the surface text: functions are located by their
// definition marker and balanced braces, basic blocks by label lines, and
// loop regions by loop-metadata anchors. Nothing here builds a verified
// syntax tree; malformed input degrades to truncated regions, never to an
// error.
package ir

import (
	"regexp"
	"strings"
)

var (
	defineRe = regexp.MustCompile(`(?m)^define\b`)
	symbolRe = regexp.MustCompile(`@"?([\w.$-]+)"?`)
)

// UnknownName is assigned to a function region whose header line carries no
// symbol reference. Multiple anonymous regions collide on this name; the
// last one wins.
const UnknownName = "unknown"

// Module holds the full text of one IR file and its function regions in
// definition order.
type Module struct {
	// Source identifies where the text came from (usually a file path).
	Source string
	// Text is the complete module text.
	Text string

	funcs map[string]*Function
	order []*Function
}

// Function is a contiguous textual region from a definition marker through
// its balancing closing brace (or end of text, when the braces never
// re-balance).
type Function struct {
	// Name is the symbol name extracted from the header line.
	Name string
	// Text is the raw region text, header included.
	Text string

	blocks []BasicBlock
	split  bool
}

// Parse splits module text into named function regions. A region starts at
// a line beginning with "define" and extends through its matching closing
// brace. A trailing region whose braces never re-balance is truncated at
// end of text rather than dropped, so a malformed tail still yields
// features. Later definitions with the same name overwrite earlier ones
// but keep the earlier definition position.
func Parse(source, text string) *Module {
	m := &Module{
		Source: source,
		Text:   text,
		funcs:  make(map[string]*Function),
	}

	cursor := 0
	for _, loc := range defineRe.FindAllStringIndex(text, -1) {
		if loc[0] < cursor {
			// Marker inside a previously consumed region (unbalanced
			// braces swallowed it). Skip to stay deterministic.
			continue
		}
		end := regionEnd(text, loc[0])
		region := text[loc[0]:end]
		m.add(functionName(region), region)
		cursor = end
	}

	return m
}

// regionEnd scans forward from the region start and returns the index just
// past the brace that balances the region's opening brace. Regions without
// an opening brace, or with an unmatched one, extend to end of text.
func regionEnd(text string, start int) int {
	open := strings.IndexByte(text[start:], '{')
	if open == -1 {
		return len(text)
	}

	depth := 1
	for i := start + open + 1; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			return i + 1
		}
	}
	return len(text)
}

// functionName extracts the first symbol reference from the region's header
// line. Regions without one get the UnknownName sentinel.
func functionName(region string) string {
	header := region
	if nl := strings.IndexByte(region, '\n'); nl != -1 {
		header = region[:nl]
	}
	if match := symbolRe.FindStringSubmatch(header); match != nil {
		return match[1]
	}
	return UnknownName
}

func (m *Module) add(name, region string) {
	if existing, ok := m.funcs[name]; ok {
		existing.Text = region
		existing.blocks = nil
		existing.split = false
		return
	}
	fn := &Function{Name: name, Text: region}
	m.funcs[name] = fn
	m.order = append(m.order, fn)
}

// Functions returns the module's functions in definition order.
func (m *Module) Functions() []*Function {
	return m.order
}

// Lookup returns the function with the given name.
func (m *Module) Lookup(name string) (*Function, bool) {
	fn, ok := m.funcs[name]
	return fn, ok
}

// Len returns the number of named function regions.
func (m *Module) Len() int {
	return len(m.order)
}

// IsLocal reports whether the function's header line carries a
// module-local linkage qualifier.
func (f *Function) IsLocal() bool {
	header := f.Text
	if nl := strings.IndexByte(f.Text, '\n'); nl != -1 {
		header = f.Text[:nl]
	}
	for _, tok := range strings.Fields(header) {
		if tok == "internal" || tok == "private" {
			return true
		}
	}
	return false
}

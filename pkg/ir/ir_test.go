package ir

import (
	"strings"
	"testing"
)

const twoFuncModule = `; ModuleID = 'sample.c'
target triple = "x86_64-unknown-linux-gnu"

define i32 @caller(i32 %x) {
entry:
  %r = call i32 @leaf(i32 %x)
  ret i32 %r
}

define internal i32 @leaf(i32 %x) {
entry:
  ret i32 %x
}
`

func TestParse_SplitsFunctionsInDefinitionOrder(t *testing.T) {
	m := Parse("sample.ll", twoFuncModule)

	if m.Len() != 2 {
		t.Fatalf("expected 2 functions, got %d", m.Len())
	}

	fns := m.Functions()
	if fns[0].Name != "caller" || fns[1].Name != "leaf" {
		t.Errorf("unexpected order: %s, %s", fns[0].Name, fns[1].Name)
	}

	caller, ok := m.Lookup("caller")
	if !ok {
		t.Fatal("caller not found")
	}
	if !strings.HasPrefix(caller.Text, "define i32 @caller") {
		t.Errorf("caller region does not start at its marker: %q", caller.Text[:30])
	}
	if !strings.HasSuffix(strings.TrimSpace(caller.Text), "}") {
		t.Errorf("caller region does not end at its closing brace")
	}
	if strings.Contains(caller.Text, "@leaf(i32 %x) {") {
		t.Errorf("caller region leaked into the next definition")
	}
}

func TestParse_NameExtraction(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"plain", "define void @main() {\n}\n", "main"},
		{"dotted", "define void @llvm.dbg.value() {\n}\n", "llvm.dbg.value"},
		{"quoted", `define void @"odd name"() {` + "\n}\n", "odd"},
		{"missing symbol", "define void () {\n}\n", UnknownName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Parse("t.ll", tt.header)
			if m.Len() != 1 {
				t.Fatalf("expected 1 function, got %d", m.Len())
			}
			if got := m.Functions()[0].Name; got != tt.want {
				t.Errorf("name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_DuplicateNameOverwritesKeepingPosition(t *testing.T) {
	text := `define i32 @f() {
entry:
  ret i32 1
}
define i32 @g() {
entry:
  ret i32 2
}
define i32 @f() {
entry:
  ret i32 3
}
`
	m := Parse("dup.ll", text)

	if m.Len() != 2 {
		t.Fatalf("expected 2 functions, got %d", m.Len())
	}
	if m.Functions()[0].Name != "f" || m.Functions()[1].Name != "g" {
		t.Errorf("definition order changed on overwrite")
	}

	f, _ := m.Lookup("f")
	if !strings.Contains(f.Text, "ret i32 3") {
		t.Errorf("later definition did not overwrite earlier text")
	}
}

func TestParse_UnterminatedRegionTruncatesAtEOF(t *testing.T) {
	text := "define i32 @broken() {\nentry:\n  ret i32 0\n"
	m := Parse("broken.ll", text)

	if m.Len() != 1 {
		t.Fatalf("expected the truncated region to be kept, got %d functions", m.Len())
	}
	f, _ := m.Lookup("broken")
	if !strings.Contains(f.Text, "ret i32 0") {
		t.Errorf("truncated region lost its body")
	}
}

func TestParse_EmptyModule(t *testing.T) {
	m := Parse("empty.ll", "; just a comment\n")
	if m.Len() != 0 {
		t.Errorf("expected no functions, got %d", m.Len())
	}
	if m.Functions() != nil {
		t.Errorf("expected nil function list")
	}
}

func TestBlocks_OrderAndEntrySkipped(t *testing.T) {
	text := `define i32 @f(i32 %x) {
  %cmp = icmp sgt i32 %x, 0
  br i1 %cmp, label %then, label %else

then:
  %a = add i32 %x, 1
  br label %done

else:
  %b = sub i32 %x, 1
  br label %done

done:
  %r = phi i32 [ %a, %then ], [ %b, %else ]
  ret i32 %r
}
`
	m := Parse("t.ll", text)
	f, _ := m.Lookup("f")
	blocks := f.Blocks()

	labels := make([]string, 0, len(blocks))
	for _, b := range blocks {
		labels = append(labels, b.Label)
	}
	want := []string{"then", "else", "done"}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("labels = %v, want %v", labels, want)
		}
	}

	for _, b := range blocks {
		if strings.TrimSpace(b.Text) == "" {
			t.Errorf("block %q has empty text", b.Label)
		}
	}
}

func TestBlocks_NoLabels(t *testing.T) {
	m := Parse("t.ll", "define void @f() {\n  ret void\n}\n")
	f, _ := m.Lookup("f")
	if got := f.Blocks(); got != nil {
		t.Errorf("expected no blocks, got %d", len(got))
	}
}

func TestCountInstructions(t *testing.T) {
	text := `  %p = alloca i32, align 4
  store i32 0, i32* %p
  %v = load i32, i32* %p
  %s = fadd double %a, %b
  %d = fdiv double %s, %b
  %cmp = icmp slt i32 %v, 10
  br i1 %cmp, label %body, label %exit
  br label %exit
  %r = tail call i32 @g(i32 %v)
  ; a comment line
  ret i32 %r
}
`
	c := CountInstructions(text)

	if c.Lines != 10 {
		t.Errorf("Lines = %d, want 10", c.Lines)
	}
	if c.Allocas != 1 || c.Stores != 1 || c.Loads != 1 {
		t.Errorf("memory ops = %d/%d/%d, want 1/1/1", c.Allocas, c.Stores, c.Loads)
	}
	if c.FAdds != 1 || c.FDivs != 1 || c.FSubs != 0 || c.FMuls != 0 {
		t.Errorf("fp ops = %d/%d/%d/%d", c.FAdds, c.FSubs, c.FMuls, c.FDivs)
	}
	if c.CondBranches != 1 || c.UncondBranches != 1 {
		t.Errorf("branches = %d cond, %d uncond", c.CondBranches, c.UncondBranches)
	}
	if c.Successors != 3 {
		t.Errorf("Successors = %d, want 3", c.Successors)
	}
	if c.Calls != 1 || c.Rets != 1 {
		t.Errorf("calls/rets = %d/%d, want 1/1", c.Calls, c.Rets)
	}
}

func TestCountInstructions_UnindentedLinesIgnored(t *testing.T) {
	text := "entry:\n  ret void\n}\n"
	c := CountInstructions(text)
	if c.Lines != 1 {
		t.Errorf("Lines = %d, want 1 (label and brace are not instructions)", c.Lines)
	}
}

func TestOpcode(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"  ret void", "ret"},
		{"  %r = call i32 @f()", "call"},
		{"  tail call void @g()", "call"},
		{"  %r = musttail call i32 @f()", "call"},
		{"  br label %x", "br"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := opcode(tt.line); got != tt.want {
			t.Errorf("opcode(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestLoops_DepthAndBalancedBody(t *testing.T) {
	text := `define void @f() {
entry:
  br label %for.body, !llvm.loop !1 ; loop: nested loop: marker
for.body:
  call void @work()
  br label %for.body
}
`
	m := Parse("t.ll", text)
	f, _ := m.Lookup("f")
	loops := f.Loops("")

	if len(loops) != 1 {
		t.Fatalf("expected 1 loop region, got %d", len(loops))
	}
	if loops[0].Depth != 2 {
		t.Errorf("Depth = %d, want 2", loops[0].Depth)
	}

	body := loops[0].Body
	if strings.Count(body, "{") != strings.Count(body, "}")-1 {
		// The anchor opens one scope the body never reopens textually, so
		// a balanced extraction carries exactly one more '}' than '{'.
		t.Errorf("body braces not balanced: %d open, %d close",
			strings.Count(body, "{"), strings.Count(body, "}"))
	}
	if !strings.Contains(body, "call void @work()") {
		t.Errorf("loop body missing its instructions")
	}
}

func TestLoops_UnbalancedBodyTruncates(t *testing.T) {
	text := "define void @f() {\nentry:\n  br label %l, !llvm.loop !1 ; loop:\nl:\n  call void @g()\n"
	m := Parse("t.ll", text)
	f, _ := m.Lookup("f")
	loops := f.Loops("")

	if len(loops) != 1 {
		t.Fatalf("expected 1 loop region, got %d", len(loops))
	}
	if !strings.HasSuffix(loops[0].Body, "call void @g()\n") {
		t.Errorf("unbalanced body should truncate at end of text, got %q", loops[0].Body)
	}
}

func TestLoops_NoAnchors(t *testing.T) {
	m := Parse("t.ll", "define void @f() {\nentry:\n  ret void\n}\n")
	f, _ := m.Lookup("f")
	if got := f.Loops(""); got != nil {
		t.Errorf("expected nil, got %d regions", len(got))
	}
}

func TestIsLocal(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"define internal void @f() {\n}\n", true},
		{"define private void @f() {\n}\n", true},
		{"define void @f() {\n}\n", false},
	}
	for _, tt := range tests {
		m := Parse("t.ll", tt.header)
		if got := m.Functions()[0].IsLocal(); got != tt.want {
			t.Errorf("IsLocal(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlgoperf/ir-feature-query/pkg/ir"
)

// callerAndSelfRecursive has A calling B twice and B calling itself once.
const callerAndSelfRecursive = `define i32 @A(i32 %x) {
entry:
  %cmp = icmp sgt i32 %x, 0
  br i1 %cmp, label %pos, label %neg

pos:
  %a = call i32 @B(i32 %x)
  br label %done

neg:
  %b = call i32 @B(i32 0)
  br label %done

done:
  %r = phi i32 [ %a, %pos ], [ %b, %neg ]
  ret i32 %r
}

define i32 @B(i32 %n) {
entry:
  %r = call i32 @B(i32 %n)
  ret i32 %r
}
`

func TestCallees_OrderedWithDuplicates(t *testing.T) {
	m := ir.Parse("t.ll", callerAndSelfRecursive)
	a, ok := m.Lookup("A")
	require.True(t, ok)

	assert.Equal(t, []string{"B", "B"}, Callees(a))
}

func TestAnalyze_RecursionAndUsage(t *testing.T) {
	m := ir.Parse("t.ll", callerAndSelfRecursive)
	a, _ := m.Lookup("A")
	b, _ := m.Lookup("B")

	sa := Analyze(m, a)
	assert.Equal(t, 2, sa.CallUsage)
	assert.Equal(t, 2, sa.CallsNo)
	assert.False(t, sa.IsRecursive)

	sb := Analyze(m, b)
	assert.True(t, sb.IsRecursive)
	assert.Equal(t, 1, sb.CallUsage)
}

func TestCallerHeight_TerminatesOnSelfLoop(t *testing.T) {
	m := ir.Parse("t.ll", callerAndSelfRecursive)
	b, _ := m.Lookup("B")

	// A calls B; B's own self-call must not make the walk diverge.
	assert.Equal(t, 1, CallerHeight(m, b))
}

func TestCallerHeight_PureSelfLoop(t *testing.T) {
	text := `define i32 @loop(i32 %n) {
entry:
  %r = call i32 @loop(i32 %n)
  ret i32 %r
}
`
	m := ir.Parse("t.ll", text)
	fn, _ := m.Lookup("loop")

	// The first hop lands back on the function itself before the visited
	// set can reject it, so a pure self-loop reports height 1.
	assert.Equal(t, 1, CallerHeight(m, fn))
}

func TestCallerHeight_TerminatesOnMutualRecursion(t *testing.T) {
	text := `define void @even(i32 %n) {
entry:
  call void @odd(i32 %n)
  ret void
}

define void @odd(i32 %n) {
entry:
  call void @even(i32 %n)
  ret void
}
`
	m := ir.Parse("t.ll", text)
	even, _ := m.Lookup("even")
	odd, _ := m.Lookup("odd")

	assert.Equal(t, 1, CallerHeight(m, even))
	assert.Equal(t, 1, CallerHeight(m, odd))
}

func TestCallerHeight_Chain(t *testing.T) {
	text := `define void @top() {
entry:
  call void @mid()
  ret void
}

define void @mid() {
entry:
  call void @leaf()
  ret void
}

define void @leaf() {
entry:
  ret void
}
`
	m := ir.Parse("t.ll", text)

	leaf, _ := m.Lookup("leaf")
	mid, _ := m.Lookup("mid")
	top, _ := m.Lookup("top")

	assert.Equal(t, 2, CallerHeight(m, leaf))
	assert.Equal(t, 1, CallerHeight(m, mid))
	assert.Equal(t, 0, CallerHeight(m, top))
}

func TestProfCounts(t *testing.T) {
	text := `define i32 @hot(i32 %x) !prof !0 {
entry:
  br label %body, !prof !1 ; count: 1200

body:
  %r = call i32 @helper(i32 %x) ; count: 900
  br i1 undef, label %body, label %exit ; count: 4800

exit:
  ret i32 %r
}
`
	m := ir.Parse("t.ll", text)
	fn, _ := m.Lookup("hot")

	assert.Equal(t, 1200, EntryFreq(fn))
	assert.Equal(t, 4800, MaxBlockFreq(fn))
}

func TestProfCounts_EntryCountMetadataShape(t *testing.T) {
	text := `define i32 @f() {
entry:
  ; !0 = !{!"function_entry_count", i64 777}
  ret i32 0
}
`
	m := ir.Parse("t.ll", text)
	fn, _ := m.Lookup("f")
	assert.Equal(t, 777, EntryFreq(fn))
}

func TestProfCounts_AbsentYieldsZero(t *testing.T) {
	m := ir.Parse("t.ll", callerAndSelfRecursive)
	for _, fn := range m.Functions() {
		assert.Zero(t, EntryFreq(fn), fn.Name)
		assert.Zero(t, MaxBlockFreq(fn), fn.Name)
	}
}

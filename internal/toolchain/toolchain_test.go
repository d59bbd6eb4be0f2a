package toolchain

import (
	"testing"
)

func TestParsePassList(t *testing.T) {
	output := `Module passes:
  no-op-module
  verify
Function passes:
  adce
  dce
  loop(licm)
`
	// Only the category headers sit at column zero in this shape.
	passes := ParsePassList(output)
	if len(passes) != 2 {
		t.Fatalf("passes = %v, want the 2 non-indented lines", passes)
	}
	if passes[0] != "Module passes:" || passes[1] != "Function passes:" {
		t.Errorf("unexpected entries: %v", passes)
	}
}

func TestParsePassList_FlatShape(t *testing.T) {
	passes := ParsePassList("adce\ndce\n\nlicm\n")
	want := []string{"adce", "dce", "licm"}
	if len(passes) != len(want) {
		t.Fatalf("passes = %v, want %v", passes, want)
	}
	for i := range want {
		if passes[i] != want[i] {
			t.Errorf("passes[%d] = %q, want %q", i, passes[i], want[i])
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	tc := New("", "")
	if tc.Clang != "clang" || tc.Opt != "opt" {
		t.Errorf("defaults = %q/%q, want clang/opt", tc.Clang, tc.Opt)
	}

	tc = New("/usr/bin/clang-18", "/usr/bin/opt-18")
	if tc.Clang != "/usr/bin/clang-18" || tc.Opt != "/usr/bin/opt-18" {
		t.Errorf("explicit paths not kept: %+v", tc)
	}
}

func TestCheck_MissingBinary(t *testing.T) {
	tc := New("definitely-not-a-real-clang-binary", "also-not-opt")
	if err := tc.Check(); err == nil {
		t.Fatal("expected an error for missing binaries")
	}
}

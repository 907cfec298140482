package hunk

import (
	"reflect"
	"testing"
)

func TestDiff_Identical(t *testing.T) {
	text := "a\nb\nc\n"
	if hunks := Diff(text, text); len(hunks) != 0 {
		t.Errorf("Diff(x, x) = %v, want empty", hunks)
	}
}

func TestDiff_SingleReplace(t *testing.T) {
	hunks := Diff("a\nb\nc\n", "a\nX\nc\n")

	if len(hunks) != 1 {
		t.Fatalf("len(hunks) = %d, want 1", len(hunks))
	}

	h := hunks[0]
	if h.Kind != KindReplace {
		t.Errorf("Kind = %s, want replace", h.Kind)
	}
	if h.StartLine != 2 || h.EndLine != 3 {
		t.Errorf("range = [%d,%d), want [2,3)", h.StartLine, h.EndLine)
	}
	if !reflect.DeepEqual(h.OldLines, []string{"b"}) {
		t.Errorf("OldLines = %v, want [b]", h.OldLines)
	}
	if !reflect.DeepEqual(h.NewLines, []string{"X"}) {
		t.Errorf("NewLines = %v, want [X]", h.NewLines)
	}
}

func TestDiff_InsertAtEOF(t *testing.T) {
	hunks := Diff("a\nb\n", "a\nb\nc\n")

	if len(hunks) != 1 {
		t.Fatalf("len(hunks) = %d, want 1", len(hunks))
	}

	h := hunks[0]
	if h.Kind != KindInsert {
		t.Errorf("Kind = %s, want insert", h.Kind)
	}
	if h.StartLine != 3 || h.EndLine != 3 {
		t.Errorf("range = [%d,%d), want [3,3)", h.StartLine, h.EndLine)
	}
	if !reflect.DeepEqual(h.NewLines, []string{"c"}) {
		t.Errorf("NewLines = %v, want [c]", h.NewLines)
	}
}

func TestDiff_Delete(t *testing.T) {
	hunks := Diff("a\nb\nc\n", "a\nc\n")

	if len(hunks) != 1 {
		t.Fatalf("len(hunks) = %d, want 1", len(hunks))
	}

	h := hunks[0]
	if h.Kind != KindDelete {
		t.Errorf("Kind = %s, want delete", h.Kind)
	}
	if h.StartLine != 2 || h.EndLine != 3 {
		t.Errorf("range = [%d,%d), want [2,3)", h.StartLine, h.EndLine)
	}
	if len(h.NewLines) != 0 {
		t.Errorf("NewLines = %v, want empty", h.NewLines)
	}
}

func TestDiff_RoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		baseline  string
		candidate string
	}{
		{"replace middle", "a\nb\nc\n", "a\nX\nc\n"},
		{"insert at end", "a\nb\n", "a\nb\nc\nd\n"},
		{"insert at start", "b\nc\n", "a\nb\nc\n"},
		{"delete middle", "a\nb\nc\nd\n", "a\nd\n"},
		{"multiple hunks", "a\nb\nc\nd\ne\n", "a\nX\nc\nY\nZ\ne\n"},
		{"full rewrite", "one\ntwo\n", "three\nfour\nfive\n"},
		{"empty baseline", "", "a\nb\n"},
		{"empty candidate", "a\nb\n", ""},
		{"whitespace is real", "a\n  b\n", "a\nb\n"},
		{"append line without newline", "a\nb\n", "a\nb\nc"},
		{"strip trailing newline", "a\n", "a"},
		{"add trailing newline", "a", "a\n"},
		{"no trailing newline either side", "a\nb", "a\nX"},
		{"multiline gains trailing newline", "a\nb", "a\nb\n"},
		{"edit plus lost trailing newline", "a\nb\nc\n", "a\nX\nc"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hunks := Diff(tc.baseline, tc.candidate)
			got := Apply(tc.baseline, hunks)
			if got != tc.candidate {
				t.Errorf("Apply(baseline, Diff(...)) = %q, want %q", got, tc.candidate)
			}
		})
	}
}

func TestDiff_TrailingNewlineChangeIsReal(t *testing.T) {
	// Removing only the trailing newline must surface as a genuine hunk, not
	// a degenerate replace whose old and new lines match.
	hunks := Diff("a\n", "a")

	if len(hunks) != 1 {
		t.Fatalf("len(hunks) = %d, want 1", len(hunks))
	}
	h := hunks[0]
	if reflect.DeepEqual(h.OldLines, h.NewLines) {
		t.Errorf("hunk is a no-op: old %v new %v", h.OldLines, h.NewLines)
	}
	if got := Apply("a\n", hunks); got != "a" {
		t.Errorf("Apply = %q, want %q", got, "a")
	}
}

func TestSplitJoinLines_Exact(t *testing.T) {
	cases := []string{"", "a", "a\n", "a\nb", "a\nb\n", "\n", "\n\n"}
	for _, text := range cases {
		if got := JoinLines(SplitLines(text)); got != text {
			t.Errorf("JoinLines(SplitLines(%q)) = %q", text, got)
		}
	}
}

func TestDiff_Deterministic(t *testing.T) {
	baseline := "a\nb\nc\nd\n"
	candidate := "a\nc\nb\nd\nx\n"

	first := Diff(baseline, candidate)
	for i := 0; i < 5; i++ {
		if got := Diff(baseline, candidate); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced different hunks: %v vs %v", i, got, first)
		}
	}
}

func TestDiff_Sorted(t *testing.T) {
	hunks := Diff("a\nb\nc\nd\ne\nf\n", "a\nX\nc\nd\nY\nf\n")

	for i := 1; i < len(hunks); i++ {
		if hunks[i].StartLine < hunks[i-1].EndLine {
			t.Errorf("hunks overlap or unsorted: %v", hunks)
		}
	}
}

func TestDiff_IgnoreWhitespace(t *testing.T) {
	baseline := "a\n  b\nc\n"
	candidate := "a\nb  \nc\n"

	if hunks := Diff(baseline, candidate); len(hunks) == 0 {
		t.Error("whitespace change should be a real diff by default")
	}

	if hunks := Diff(baseline, candidate, WithIgnoreWhitespace(true)); len(hunks) != 0 {
		t.Errorf("hunks = %v, want empty with whitespace ignored", hunks)
	}
}

func TestHunk_LineDelta(t *testing.T) {
	cases := []struct {
		h    Hunk
		want int
	}{
		{Hunk{Kind: KindInsert, StartLine: 2, EndLine: 2, NewLines: []string{"x", "y"}}, 2},
		{Hunk{Kind: KindDelete, StartLine: 2, EndLine: 4, OldLines: []string{"a", "b"}}, -2},
		{Hunk{Kind: KindReplace, StartLine: 1, EndLine: 2, OldLines: []string{"a"}, NewLines: []string{"x", "y"}}, 1},
	}

	for _, tc := range cases {
		if got := tc.h.LineDelta(); got != tc.want {
			t.Errorf("LineDelta(%v) = %d, want %d", tc.h, got, tc.want)
		}
	}
}

func TestApply_NoHunks(t *testing.T) {
	text := "unchanged\n"
	if got := Apply(text, nil); got != text {
		t.Errorf("Apply with no hunks = %q, want %q", got, text)
	}
}

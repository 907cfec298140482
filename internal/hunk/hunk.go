// Package hunk computes line-based diffs between document snapshots.
//
// A diff is expressed as an ordered, non-overlapping sequence of hunks in
// baseline coordinates. Applying the hunks of Diff(baseline, candidate) to
// the baseline always reproduces the candidate exactly.
package hunk

import "strings"

// Kind is the type of change a hunk describes.
type Kind uint8

const (
	// KindInsert adds lines without removing any.
	KindInsert Kind = iota
	// KindDelete removes lines without adding any.
	KindDelete
	// KindReplace removes lines and adds others in their place.
	KindReplace
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	case KindReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Hunk is a single contiguous change against a baseline snapshot.
//
// Line numbers are 1-indexed and refer to the baseline as split by
// SplitLines, where a trailing newline yields a final empty line. StartLine
// is the first affected line; EndLine is exclusive. For an insert, StartLine
// equals EndLine and names the line the new content is inserted before.
type Hunk struct {
	Kind      Kind
	StartLine int
	EndLine   int

	// OldLines is the baseline content being removed (delete/replace).
	OldLines []string

	// NewLines is the content being added (insert/replace).
	NewLines []string
}

// LineDelta returns the change in line count this hunk causes when applied.
func (h Hunk) LineDelta() int {
	return len(h.NewLines) - (h.EndLine - h.StartLine)
}

// Apply applies hunks in order to the baseline and returns the result.
// Hunks must be sorted by StartLine and non-overlapping, as produced by Diff.
func Apply(baseline string, hunks []Hunk) string {
	if len(hunks) == 0 {
		return baseline
	}

	lines := SplitLines(baseline)
	var out []string
	prev := 1 // next baseline line to copy, 1-indexed

	for _, h := range hunks {
		start := h.StartLine
		if start < 1 {
			start = 1
		}
		for prev < start && prev <= len(lines) {
			out = append(out, lines[prev-1])
			prev++
		}
		out = append(out, h.NewLines...)
		if h.EndLine > prev {
			prev = h.EndLine
		}
	}

	for prev <= len(lines) {
		out = append(out, lines[prev-1])
		prev++
	}

	return JoinLines(out)
}

// SplitLines splits text on newlines. The model is exact: text ending in a
// newline produces a final empty element, so JoinLines(SplitLines(t)) == t
// for every input, with or without a trailing newline.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

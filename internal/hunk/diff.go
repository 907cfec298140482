package hunk

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Options controls diff computation.
type Options struct {
	// IgnoreWhitespace drops hunks whose only difference is leading or
	// trailing whitespace on otherwise identical lines.
	IgnoreWhitespace bool
}

// Option configures Diff.
type Option func(*Options)

// WithIgnoreWhitespace treats whitespace-only line changes as no changes.
func WithIgnoreWhitespace(ignore bool) Option {
	return func(o *Options) {
		o.IgnoreWhitespace = ignore
	}
}

// Diff computes the ordered hunk list transforming baseline into candidate.
//
// The diff is line-based: each run of changed lines becomes one hunk, with an
// adjacent delete+insert pair collapsed into a single replace. Identical
// inputs yield an empty list. Output is deterministic for identical inputs.
func Diff(baseline, candidate string, opts ...Option) []Hunk {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}

	if baseline == candidate {
		return nil
	}

	// The diff runs on sentinel-terminated text so the final line takes part
	// as a whole line. SplitLines gives newline-terminated text a final empty
	// line, and the sentinel turns exactly that line set into the
	// newline-terminated units the line diff operates on, so a difference in
	// the trailing newline surfaces as an ordinary line change.
	dmp := diffmatchpatch.New()
	oldRunes, newRunes, lineArray := dmp.DiffLinesToChars(baseline+"\n", candidate+"\n")
	diffs := dmp.DiffMain(oldRunes, newRunes, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	hunks := buildHunks(diffs)

	if options.IgnoreWhitespace {
		hunks = dropWhitespaceOnly(hunks)
	}

	return hunks
}

// buildHunks collapses diffmatchpatch runs into minimal hunks in baseline
// coordinates. Equal runs advance the baseline cursor; a delete run followed
// by an insert run (or vice versa) becomes a replace.
func buildHunks(diffs []diffmatchpatch.Diff) []Hunk {
	var hunks []Hunk

	line := 1 // current baseline line, 1-indexed
	var pendingOld []string
	pendingStart := 0
	var pendingNew []string

	flush := func() {
		if len(pendingOld) == 0 && len(pendingNew) == 0 {
			return
		}
		h := Hunk{
			StartLine: pendingStart,
			EndLine:   pendingStart + len(pendingOld),
			OldLines:  pendingOld,
			NewLines:  pendingNew,
		}
		switch {
		case len(pendingOld) == 0:
			h.Kind = KindInsert
		case len(pendingNew) == 0:
			h.Kind = KindDelete
		default:
			h.Kind = KindReplace
		}
		hunks = append(hunks, h)
		pendingOld = nil
		pendingNew = nil
	}

	for _, d := range diffs {
		lines := chunkLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			line += len(lines)
		case diffmatchpatch.DiffDelete:
			if len(pendingOld) == 0 && len(pendingNew) == 0 {
				pendingStart = line
			}
			pendingOld = append(pendingOld, lines...)
			line += len(lines)
		case diffmatchpatch.DiffInsert:
			if len(pendingOld) == 0 && len(pendingNew) == 0 {
				pendingStart = line
			}
			pendingNew = append(pendingNew, lines...)
		}
	}
	flush()

	return hunks
}

// chunkLines splits one diff run into its lines. Runs over the
// sentinel-terminated text are always whole newline-terminated lines, so the
// trailing separator carries no content.
func chunkLines(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// dropWhitespaceOnly removes hunks where old and new lines match after
// trimming surrounding whitespace.
func dropWhitespaceOnly(hunks []Hunk) []Hunk {
	kept := hunks[:0]
	for _, h := range hunks {
		if !whitespaceOnly(h) {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

func whitespaceOnly(h Hunk) bool {
	if h.Kind != KindReplace || len(h.OldLines) != len(h.NewLines) {
		return false
	}
	for i := range h.OldLines {
		if strings.TrimSpace(h.OldLines[i]) != strings.TrimSpace(h.NewLines[i]) {
			return false
		}
	}
	return true
}

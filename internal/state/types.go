// Package state holds per-document prediction records.
//
// The Store is the only shared mutable resource of the prediction engine. It
// is owned and mutated by the lifecycle manager and read concurrently by the
// context assembler.
package state

import (
	"time"

	"github.com/dshills/nextedit/internal/hunk"
)

// DocumentID uniquely identifies an open document.
type DocumentID string

// Status is the per-document request lifecycle state.
// Exactly one status holds at a time for a document.
type Status int

const (
	// StatusIdle means no prediction activity is pending.
	StatusIdle Status = iota
	// StatusDebouncing means a trigger is waiting out the quiet period.
	StatusDebouncing
	// StatusInFlight means a backend request has been issued.
	StatusInFlight
	// StatusShowing means a prediction is visible.
	StatusShowing
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusDebouncing:
		return "debouncing"
	case StatusInFlight:
		return "inFlight"
	case StatusShowing:
		return "showingPrediction"
	default:
		return "unknown"
	}
}

// Baseline is the snapshot predictions are diffed against.
type Baseline struct {
	Text       string
	Version    int64
	CapturedAt time.Time
}

// Edit records a past accepted or rejected prediction, used as request context.
type Edit struct {
	Original string
	Updated  string
	Accepted bool
	Time     time.Time
}

// Selection is the last captured selection region for a document.
type Selection struct {
	Path       string
	StartLine  int
	EndLine    int
	Lines      []string
	CapturedAt time.Time
}

// Document is the per-document prediction record.
type Document struct {
	ID DocumentID

	// Baseline is nil until an editing session starts or the first trigger
	// captures one lazily.
	Baseline *Baseline

	// History holds past accepted/rejected edits, most recent last.
	History []Edit

	// Selection is the last captured selection, or nil.
	Selection *Selection

	// PendingSnapshot is the document content at the moment the current
	// request was issued. Empty string with HasPending false when no request
	// is outstanding.
	PendingSnapshot string
	HasPending      bool

	// CursorLine/CursorCol are the last reported cursor position.
	CursorLine int
	CursorCol  int

	Status Status

	// ActiveHunks belong to the currently shown prediction.
	ActiveHunks []hunk.Hunk

	// SuppressNextTrigger is a one-shot flag set when the engine itself
	// mutated the document, so the resulting change notification does not
	// re-trigger a request.
	SuppressNextTrigger bool

	// Seq is the latest trigger sequence number issued for this document.
	// A response tagged with an older sequence is stale.
	Seq uint64

	// DebounceGen counts debounce arms. A fire carrying an older generation
	// lost a race with a re-arm and must not issue a request.
	DebounceGen uint64

	// Version counts observed content revisions.
	Version int64
}

// Snapshot is a read-only copy of the fields the context assembler needs.
type Snapshot struct {
	ID         DocumentID
	Content    string
	Version    int64
	CursorLine int
	CursorCol  int
	History    []Edit
	Selection  *Selection
}

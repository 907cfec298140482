// Package assemble builds prediction request payloads from document state.
package assemble

import (
	"errors"
	"time"

	"github.com/dshills/nextedit/internal/state"
	"github.com/dshills/nextedit/internal/transport"
)

// ErrUnknownDocument is returned when no record exists for the document.
var ErrUnknownDocument = errors.New("assemble: unknown document")

const (
	defaultHistoryEntries = 10
	defaultSelectionAge   = 5 * time.Minute
)

// Assembler reads the state store and produces transport requests.
type Assembler struct {
	store *state.Store

	historyEntries   int
	selectionEnabled bool
	selectionMaxAge  time.Duration
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithHistoryEntries caps how many history entries are included per request.
func WithHistoryEntries(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.historyEntries = n
		}
	}
}

// WithSelectionContext enables or disables selection context.
func WithSelectionContext(enabled bool) Option {
	return func(a *Assembler) {
		a.selectionEnabled = enabled
	}
}

// WithSelectionMaxAge drops captures older than the given age.
func WithSelectionMaxAge(age time.Duration) Option {
	return func(a *Assembler) {
		if age > 0 {
			a.selectionMaxAge = age
		}
	}
}

// New creates an assembler over the given store.
func New(store *state.Store, opts ...Option) *Assembler {
	a := &Assembler{
		store:            store,
		historyEntries:   defaultHistoryEntries,
		selectionEnabled: true,
		selectionMaxAge:  defaultSelectionAge,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetSelectionEnabled toggles selection context at runtime. Disabling clears
// every captured selection.
func (a *Assembler) SetSelectionEnabled(enabled bool) {
	a.selectionEnabled = enabled
	if !enabled {
		a.store.ClearSelections()
	}
}

// Build assembles the request payload for one prediction call. The document's
// pending snapshot must already be captured.
func (a *Assembler) Build(id state.DocumentID, path string) (*transport.Request, error) {
	snap := a.store.Snapshot(id)
	if snap == nil {
		return nil, ErrUnknownDocument
	}

	req := &transport.Request{
		ID:              transport.NewRequestID(),
		DocumentID:      string(id),
		SnapshotVersion: snap.Version,
		Path:            path,
		Content:         snap.Content,
		CursorLine:      snap.CursorLine,
		CursorCol:       snap.CursorCol,
	}

	history := snap.History
	if len(history) > a.historyEntries {
		history = history[len(history)-a.historyEntries:]
	}
	for _, edit := range history {
		req.History = append(req.History, transport.Change{
			Original: edit.Original,
			Updated:  edit.Updated,
			Accepted: edit.Accepted,
		})
	}

	if a.selectionEnabled && snap.Selection != nil && a.selectionValid(snap.Selection) {
		req.Selection = &transport.SelectionContext{
			Path:      snap.Selection.Path,
			StartLine: snap.Selection.StartLine,
			EndLine:   snap.Selection.EndLine,
			Lines:     snap.Selection.Lines,
		}
	}

	return req, nil
}

func (a *Assembler) selectionValid(sel *state.Selection) bool {
	if sel.CapturedAt.IsZero() {
		return false
	}
	return time.Since(sel.CapturedAt) <= a.selectionMaxAge
}

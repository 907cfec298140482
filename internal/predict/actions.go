package predict

import (
	"time"

	"github.com/dshills/nextedit/internal/hunk"
	"github.com/dshills/nextedit/internal/state"
)

// Accept applies the full shown prediction to the document. A no-op unless a
// prediction is showing.
func (e *Engine) Accept(id state.DocumentID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != EngineReady {
		return ErrNotRunning
	}

	doc := e.store.Get(id)
	if doc == nil || doc.Status != state.StatusShowing {
		return nil
	}

	original := doc.Baseline.Text
	updated := hunk.Apply(original, doc.ActiveHunks)
	if err := e.host.ApplyDocument(id, updated); err != nil {
		e.log.WithComponent("engine").Error("apply prediction to %s: %v", id, err)
		e.dropPrediction(doc)
		return err
	}

	e.recordOutcome(doc, original, updated, true)
	e.dropPrediction(doc)
	return nil
}

// AcceptLine applies only the first remaining hunk of the shown prediction.
// Later hunks shift by the applied hunk's line delta and stay showing; when
// the last hunk is consumed the outcome is recorded exactly as a full accept
// would record it.
func (e *Engine) AcceptLine(id state.DocumentID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != EngineReady {
		return ErrNotRunning
	}

	doc := e.store.Get(id)
	if doc == nil || doc.Status != state.StatusShowing || len(doc.ActiveHunks) == 0 {
		return nil
	}

	first := doc.ActiveHunks[0]
	original := doc.Baseline.Text
	updated := hunk.Apply(original, []hunk.Hunk{first})
	if err := e.host.ApplyDocument(id, updated); err != nil {
		e.log.WithComponent("engine").Error("apply hunk to %s: %v", id, err)
		e.dropPrediction(doc)
		return err
	}

	doc.SuppressNextTrigger = true
	doc.Version++
	doc.Baseline = &state.Baseline{
		Text:       updated,
		Version:    doc.Version,
		CapturedAt: time.Now(),
	}

	remaining := doc.ActiveHunks[1:]
	if len(remaining) == 0 {
		e.store.AppendHistory(id, state.Edit{
			Original: original,
			Updated:  updated,
			Accepted: true,
			Time:     time.Now(),
		})
		doc.ActiveHunks = nil
		doc.Status = state.StatusIdle
		e.notifier.Clear(string(id))
		return nil
	}

	delta := first.LineDelta()
	shifted := make([]hunk.Hunk, len(remaining))
	for i, h := range remaining {
		h.StartLine += delta
		h.EndLine += delta
		shifted[i] = h
	}
	doc.ActiveHunks = shifted
	e.notifier.Show(string(id), copyHunks(shifted))
	return nil
}

// Reject dismisses the shown prediction and records it as rejected history. A
// no-op unless a prediction is showing.
func (e *Engine) Reject(id state.DocumentID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := e.store.Get(id)
	if doc == nil || doc.Status != state.StatusShowing {
		return
	}

	original := doc.Baseline.Text
	candidate := hunk.Apply(original, doc.ActiveHunks)
	e.store.AppendHistory(id, state.Edit{
		Original: original,
		Updated:  candidate,
		Accepted: false,
		Time:     time.Now(),
	})

	doc.ActiveHunks = nil
	doc.Status = state.StatusIdle
	e.notifier.Clear(string(id))
}

// Clear dismisses the shown prediction without recording history. A no-op
// unless a prediction is showing.
func (e *Engine) Clear(id state.DocumentID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := e.store.Get(id)
	if doc == nil || doc.Status != state.StatusShowing {
		return
	}

	doc.ActiveHunks = nil
	doc.Status = state.StatusIdle
	e.notifier.Clear(string(id))
}

// Cancel stops any pending debounce timer and abandons any in-flight request
// for id. Idempotent; cancelling an idle or unknown document is a no-op. A
// shown prediction is not affected.
func (e *Engine) Cancel(id state.DocumentID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPending(id)
}

// CancelPrefetch is Cancel under the name host keymaps bind it to.
func (e *Engine) CancelPrefetch(id state.DocumentID) {
	e.Cancel(id)
}

// cancelPending tears down timers and in-flight work for id. Caller holds
// e.mu.
func (e *Engine) cancelPending(id state.DocumentID) {
	e.editTimers.Cancel(string(id))
	e.idleTimers.Cancel(string(id))

	doc := e.store.Get(id)
	if doc == nil {
		return
	}
	switch doc.Status {
	case state.StatusDebouncing:
		doc.Status = state.StatusIdle
	case state.StatusInFlight:
		e.invalidateInFlight(doc)
		doc.Status = state.StatusIdle
	}
}

// HasPrediction reports whether a prediction is currently showing for id.
func (e *Engine) HasPrediction(id state.DocumentID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := e.store.Get(id)
	return doc != nil && doc.Status == state.StatusShowing
}

// recordOutcome appends an accepted edit and rebases the baseline onto the
// applied text. Caller holds e.mu.
func (e *Engine) recordOutcome(doc *state.Document, original, updated string, accepted bool) {
	e.store.AppendHistory(doc.ID, state.Edit{
		Original: original,
		Updated:  updated,
		Accepted: accepted,
		Time:     time.Now(),
	})
	doc.SuppressNextTrigger = true
	doc.Version++
	doc.Baseline = &state.Baseline{
		Text:       updated,
		Version:    doc.Version,
		CapturedAt: time.Now(),
	}
}

// dropPrediction clears the shown hunks and returns the document to idle.
// Caller holds e.mu.
func (e *Engine) dropPrediction(doc *state.Document) {
	doc.ActiveHunks = nil
	doc.Status = state.StatusIdle
	e.notifier.Clear(string(doc.ID))
}

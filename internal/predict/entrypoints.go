package predict

import (
	"time"

	"github.com/dshills/nextedit/internal/state"
)

// OnDocumentEnterEditing starts a prediction session for id: the current
// content becomes the baseline future candidates are diffed against.
func (e *Engine) OnDocumentEnterEditing(id state.DocumentID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != EngineReady {
		return
	}

	doc := e.store.Ensure(id)
	content, err := e.host.ReadDocument(id)
	if err != nil {
		e.log.WithComponent("engine").Warn("read document %s: %v", id, err)
		return
	}
	doc.Baseline = &state.Baseline{
		Text:       content,
		Version:    doc.Version,
		CapturedAt: time.Now(),
	}
}

// OnDocumentChanged reports a content edit. The one-shot suppression flag set
// by an accept swallows the change notification the accept itself caused.
func (e *Engine) OnDocumentChanged(id state.DocumentID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != EngineReady {
		return
	}

	doc := e.store.Ensure(id)
	doc.Version++
	e.idleTimers.Cancel(string(id))

	if doc.SuppressNextTrigger {
		doc.SuppressNextTrigger = false
		return
	}
	e.trigger(id)
}

// OnCursorMoved reports a cursor position change. Moving the cursor on an
// idle document arms the idle trigger; any pending idle timer restarts.
func (e *Engine) OnCursorMoved(id state.DocumentID, line, col int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != EngineReady {
		return
	}

	doc := e.store.Ensure(id)
	doc.CursorLine = line
	doc.CursorCol = col

	e.idleTimers.Cancel(string(id))
	if !e.enabled || doc.Status != state.StatusIdle {
		return
	}
	e.idleTimers.Schedule(string(id), e.cfg.IdleDelay(), func() {
		e.queue.Post(func() { e.idleFired(id) })
	})
}

// OnSelectionCaptured records a selection region as request context.
func (e *Engine) OnSelectionCaptured(id state.DocumentID, sel state.Selection) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != EngineReady || !e.cfg.SelectionContext {
		return
	}
	e.store.Ensure(id)
	e.store.SetSelection(id, sel)
}

// OnDocumentLeaveEditing ends the prediction session: pending work is
// cancelled and any shown prediction cleared. History and captured selection
// survive so a later session still has context.
func (e *Engine) OnDocumentLeaveEditing(id state.DocumentID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := e.store.Get(id)
	if doc == nil {
		return
	}

	e.cancelPending(id)
	if doc.Status == state.StatusShowing {
		doc.ActiveHunks = nil
		e.notifier.Clear(string(id))
	}
	doc.Status = state.StatusIdle
	doc.Baseline = nil
	doc.PendingSnapshot = ""
	doc.HasPending = false
	doc.SuppressNextTrigger = false
}

// OnDocumentClosed forgets the document entirely.
func (e *Engine) OnDocumentClosed(id state.DocumentID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := e.store.Get(id)
	if doc == nil {
		return
	}

	e.cancelPending(id)
	if doc.Status == state.StatusShowing {
		e.notifier.Clear(string(id))
	}
	e.editTimers.Remove(string(id))
	e.idleTimers.Remove(string(id))
	e.store.Remove(id)
}

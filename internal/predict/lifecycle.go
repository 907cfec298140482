package predict

import (
	"context"
	"time"

	"github.com/dshills/nextedit/internal/hunk"
	"github.com/dshills/nextedit/internal/state"
	"github.com/dshills/nextedit/internal/transport"
)

// Trigger requests a prediction for id after the debounce quiet period.
//
// A trigger while a prediction is showing is ignored. A trigger while
// debouncing restarts the timer, coalescing rapid edits into one request. A
// trigger while a request is in flight invalidates that request and starts a
// fresh debounce window.
func (e *Engine) Trigger(id state.DocumentID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trigger(id)
}

// TriggerNow bypasses the debounce window and issues a request immediately.
// Only honored when the document is idle.
func (e *Engine) TriggerNow(id state.DocumentID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != EngineReady || !e.enabled {
		return
	}
	doc := e.store.Ensure(id)
	if doc.Status != state.StatusIdle {
		return
	}
	e.issueRequest(doc)
}

// trigger is the shared trigger path. Caller holds e.mu.
func (e *Engine) trigger(id state.DocumentID) {
	if e.status != EngineReady || !e.enabled {
		return
	}

	doc := e.store.Ensure(id)
	switch doc.Status {
	case state.StatusShowing:
		return
	case state.StatusInFlight:
		e.invalidateInFlight(doc)
	}

	doc.Status = state.StatusDebouncing
	e.armDebounce(doc)
}

// invalidateInFlight abandons the outstanding request for doc. The sequence
// bump guarantees the response is discarded even if the transport cancel does
// not land in time. Caller holds e.mu.
func (e *Engine) invalidateInFlight(doc *state.Document) {
	doc.Seq++
	doc.PendingSnapshot = ""
	doc.HasPending = false
	if call, ok := e.inflight[doc.ID]; ok {
		call.cancel()
		delete(e.inflight, doc.ID)
	}
}

// armDebounce starts or restarts the debounce timer for doc. Every arm bumps
// the debounce generation so a fire that already left the timer frame when a
// re-arm happened cannot issue a request. Caller holds e.mu.
func (e *Engine) armDebounce(doc *state.Document) {
	doc.DebounceGen++
	id := doc.ID
	gen := doc.DebounceGen
	e.editTimers.Schedule(string(id), e.cfg.DebounceDelay(), func() {
		if !e.queue.Post(func() { e.debounceFired(id, gen) }) {
			e.debounceDropped(id, gen)
		}
	})
}

// debounceFired runs on the task queue when the quiet period elapses.
func (e *Engine) debounceFired(id state.DocumentID, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != EngineReady {
		return
	}
	doc := e.store.Get(id)
	if doc == nil || doc.Status != state.StatusDebouncing || doc.DebounceGen != gen {
		return
	}
	e.issueRequest(doc)
}

// debounceDropped runs when a debounce fire could not be queued; the document
// must not sit in debouncing with no timer left to move it.
func (e *Engine) debounceDropped(id state.DocumentID, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := e.store.Get(id)
	if doc == nil || doc.Status != state.StatusDebouncing || doc.DebounceGen != gen {
		return
	}
	doc.Status = state.StatusIdle
}

// idleFired runs on the task queue when the cursor has rested long enough on
// an idle document.
func (e *Engine) idleFired(id state.DocumentID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != EngineReady || !e.enabled {
		return
	}
	doc := e.store.Get(id)
	if doc == nil || doc.Status != state.StatusIdle {
		return
	}
	e.issueRequest(doc)
}

// issueRequest snapshots the document, builds the request payload, and starts
// the backend call. Caller holds e.mu.
func (e *Engine) issueRequest(doc *state.Document) {
	log := e.log.WithComponent("engine")

	content, err := e.host.ReadDocument(doc.ID)
	if err != nil {
		log.Warn("read document %s: %v", doc.ID, err)
		doc.Status = state.StatusIdle
		return
	}

	if doc.Baseline == nil {
		doc.Baseline = &state.Baseline{
			Text:       content,
			Version:    doc.Version,
			CapturedAt: time.Now(),
		}
	}

	doc.PendingSnapshot = content
	doc.HasPending = true
	doc.Seq++
	seq := doc.Seq

	req, err := e.assembler.Build(doc.ID, string(doc.ID))
	if err != nil {
		log.Warn("assemble request for %s: %v", doc.ID, err)
		doc.PendingSnapshot = ""
		doc.HasPending = false
		doc.Status = state.StatusIdle
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RequestTimeout())
	e.inflight[doc.ID] = &inflightCall{cancel: cancel, seq: seq}
	doc.Status = state.StatusInFlight

	id := doc.ID
	go func() {
		resp, err := e.backend.Predict(ctx, req)
		cancel()
		if !e.queue.Post(func() { e.responseArrived(id, seq, resp, err) }) {
			e.responseDropped(id, seq)
		}
	}()
}

// responseDropped runs when a finished call could not be queued, because the
// queue is stopped or its buffer is full. The document must not stay in
// flight with no response left to move it.
func (e *Engine) responseDropped(id state.DocumentID, seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := e.store.Get(id)
	if doc == nil || doc.Seq != seq || doc.Status != state.StatusInFlight {
		return
	}
	if call, ok := e.inflight[id]; ok && call.seq == seq {
		delete(e.inflight, id)
	}
	doc.PendingSnapshot = ""
	doc.HasPending = false
	doc.Status = state.StatusIdle
	e.log.WithComponent("engine").Warn("prediction response for %s dropped, returning to idle", id)
}

// responseArrived runs on the task queue when a backend call finishes.
func (e *Engine) responseArrived(id state.DocumentID, seq uint64, resp *transport.Response, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != EngineReady {
		return
	}

	log := e.log.WithComponent("engine")

	doc := e.store.Get(id)
	if doc == nil {
		return
	}
	if doc.Seq != seq {
		log.Debug("discarding stale response for %s (seq %d, current %d)", id, seq, doc.Seq)
		return
	}

	if call, ok := e.inflight[id]; ok && call.seq == seq {
		delete(e.inflight, id)
	}
	baseline := doc.Baseline
	doc.PendingSnapshot = ""
	doc.HasPending = false

	if err != nil {
		if transport.IsCancelled(err) {
			log.Debug("request cancelled for %s", id)
		} else {
			log.Warn("prediction request for %s failed: %v", id, err)
		}
		doc.Status = state.StatusIdle
		return
	}

	if baseline == nil {
		doc.Status = state.StatusIdle
		return
	}

	var opts []hunk.Option
	if e.cfg.IgnoreWhitespace {
		opts = append(opts, hunk.WithIgnoreWhitespace(true))
	}
	hunks := hunk.Diff(baseline.Text, resp.Candidate, opts...)
	if len(hunks) == 0 {
		log.Debug("candidate for %s matches baseline, nothing to show", id)
		doc.Status = state.StatusIdle
		return
	}

	doc.ActiveHunks = hunks
	doc.Status = state.StatusShowing
	e.notifier.Show(string(id), copyHunks(hunks))
	log.Debug("showing %d hunk(s) for %s", len(hunks), id)
}

func copyHunks(hunks []hunk.Hunk) []hunk.Hunk {
	out := make([]hunk.Hunk, len(hunks))
	copy(out, hunks)
	return out
}

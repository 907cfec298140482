package predict

import "github.com/dshills/nextedit/internal/state"

// Report is a diagnostics snapshot of the whole engine.
type Report struct {
	Status    string
	Enabled   bool
	Documents int
	Dropped   int64
}

// DocumentReport is a diagnostics snapshot of one document's record.
type DocumentReport struct {
	Status             string
	HasPrediction      bool
	HasBaseline        bool
	InFlight           bool
	HasPendingSnapshot bool
	HistoryLen         int
	Hunks              int
}

// Report returns current engine-level diagnostics.
func (e *Engine) Report() Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Report{
		Status:    e.status.String(),
		Enabled:   e.enabled,
		Documents: e.store.Count(),
		Dropped:   e.queue.Dropped(),
	}
}

// DocumentReport returns diagnostics for one document. The second return is
// false when the document is unknown.
func (e *Engine) DocumentReport(id state.DocumentID) (DocumentReport, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := e.store.Get(id)
	if doc == nil {
		return DocumentReport{}, false
	}

	_, inflight := e.inflight[id]
	return DocumentReport{
		Status:             doc.Status.String(),
		HasPrediction:      doc.Status == state.StatusShowing,
		HasBaseline:        doc.Baseline != nil,
		InFlight:           inflight,
		HasPendingSnapshot: doc.HasPending,
		HistoryLen:         len(doc.History),
		Hunks:              len(doc.ActiveHunks),
	}, true
}

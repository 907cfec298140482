package state

import (
	"sync"
	"time"
)

// DefaultHistoryLimit bounds per-document history when no limit is configured.
const DefaultHistoryLimit = 20

// Store holds one Document record per open document.
//
// All methods are safe for concurrent use. Mutating methods operate under the
// write lock; Snapshot copies under the read lock so the assembler can read
// while the lifecycle manager mutates other records.
type Store struct {
	mu           sync.RWMutex
	docs         map[DocumentID]*Document
	historyLimit int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithHistoryLimit caps per-document history length.
func WithHistoryLimit(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		docs:         make(map[DocumentID]*Document),
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure returns the record for id, creating it on first use.
func (s *Store) Ensure(id DocumentID) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		doc = &Document{ID: id, Status: StatusIdle}
		s.docs[id] = doc
	}
	return doc
}

// Get returns the record for id, or nil if none exists.
func (s *Store) Get(id DocumentID) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[id]
}

// Remove deletes the record for id. Removing an unknown id is a no-op.
func (s *Store) Remove(id DocumentID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
}

// Count returns the number of tracked documents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// IDs returns the tracked document ids in unspecified order.
func (s *Store) IDs() []DocumentID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]DocumentID, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	return ids
}

// AppendHistory records an edit for id, evicting the oldest entry when the
// history cap is reached.
func (s *Store) AppendHistory(id DocumentID, edit Edit) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return
	}

	doc.History = append(doc.History, edit)
	if len(doc.History) > s.historyLimit {
		doc.History = doc.History[len(doc.History)-s.historyLimit:]
	}
}

// SetSelection overwrites the captured selection for id.
func (s *Store) SetSelection(id DocumentID, sel Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return
	}
	if sel.CapturedAt.IsZero() {
		sel.CapturedAt = time.Now()
	}
	doc.Selection = &sel
}

// ClearSelections drops captured selections on every document. Used when
// context features are disabled by configuration.
func (s *Store) ClearSelections() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.docs {
		doc.Selection = nil
	}
}

// Snapshot returns a copy of the assembler-visible fields for id, or nil if
// the document is unknown.
func (s *Store) Snapshot(id DocumentID) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil
	}

	snap := &Snapshot{
		ID:         doc.ID,
		Content:    doc.PendingSnapshot,
		Version:    doc.Version,
		CursorLine: doc.CursorLine,
		CursorCol:  doc.CursorCol,
	}
	if len(doc.History) > 0 {
		snap.History = make([]Edit, len(doc.History))
		copy(snap.History, doc.History)
	}
	if doc.Selection != nil {
		sel := *doc.Selection
		sel.Lines = append([]string(nil), doc.Selection.Lines...)
		snap.Selection = &sel
	}
	return snap
}

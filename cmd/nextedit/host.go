package main

import (
	"fmt"
	"sync"

	"github.com/dshills/nextedit/internal/state"
)

// memHost holds document content in memory. The CLI never writes back to
// disk; accepted predictions are printed instead.
type memHost struct {
	mu   sync.Mutex
	docs map[state.DocumentID]string
}

func newMemHost() *memHost {
	return &memHost{docs: make(map[state.DocumentID]string)}
}

func (h *memHost) set(id state.DocumentID, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.docs[id] = content
}

func (h *memHost) get(id state.DocumentID) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.docs[id]
}

// ReadDocument implements predict.Host.
func (h *memHost) ReadDocument(id state.DocumentID) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	content, ok := h.docs[id]
	if !ok {
		return "", fmt.Errorf("unknown document %s", id)
	}
	return content, nil
}

// ApplyDocument implements predict.Host.
func (h *memHost) ApplyDocument(id state.DocumentID, content string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.docs[id]; !ok {
		return fmt.Errorf("unknown document %s", id)
	}
	h.docs[id] = content
	return nil
}

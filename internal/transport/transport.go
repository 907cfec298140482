// Package transport defines the backend contract for prediction requests and
// provides an HTTP client implementation.
//
// The engine only needs "send request, get response or error, or cancel":
// cancellation is cooperative through the request context, and a response that
// arrives after cancellation is discarded by the caller.
package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Change is one historical edit included as request context.
type Change struct {
	Original string `json:"original"`
	Updated  string `json:"updated"`
	Accepted bool   `json:"accepted"`
}

// SelectionContext is a captured selection region included as request context.
type SelectionContext struct {
	Path      string   `json:"path"`
	StartLine int      `json:"start_line"`
	EndLine   int      `json:"end_line"`
	Lines     []string `json:"lines"`
}

// Request is the assembled payload for one prediction call.
type Request struct {
	// ID correlates the request with logs and cached responses.
	ID string `json:"request_id"`

	// DocumentID identifies the document the prediction is for.
	DocumentID string `json:"document_id"`

	// SnapshotVersion is the document revision the content was captured at.
	SnapshotVersion int64 `json:"snapshot_version"`

	Path       string `json:"path"`
	Content    string `json:"content"`
	CursorLine int    `json:"cursor_line"`
	CursorCol  int    `json:"cursor_col"`

	// History holds the most recent edits, oldest first.
	History []Change `json:"history,omitempty"`

	// Selection is the captured selection, if context features are enabled.
	Selection *SelectionContext `json:"selection,omitempty"`
}

// Response is a candidate prediction from the backend.
type Response struct {
	// Candidate is the full proposed document content.
	Candidate string `json:"candidate"`

	// Model names the model that produced the candidate, when reported.
	Model string `json:"model,omitempty"`

	// ElapsedMs is the backend-reported latency, when reported.
	ElapsedMs int `json:"elapsed_ms,omitempty"`
}

// Backend sends a context payload to a prediction service.
//
// Predict must honor ctx cancellation: a canceled context aborts the call and
// returns ctx.Err() (possibly wrapped).
type Backend interface {
	Predict(ctx context.Context, req *Request) (*Response, error)
}

// NewRequestID returns a unique request identifier.
func NewRequestID() string {
	return uuid.NewString()
}

// Error is a structured backend failure.
type Error struct {
	Status  int
	Message string
	Err     error
}

// Error implements error.
func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsCancelled reports whether err is a context cancellation, as opposed to a
// backend failure.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

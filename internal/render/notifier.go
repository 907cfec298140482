// Package render defines the contract the engine expects from a renderer.
//
// The engine never draws anything itself; it emits show/clear events with hunk
// data and the host's rendering layer decides how to present them.
package render

import "github.com/dshills/nextedit/internal/hunk"

// Notifier receives prediction visibility events.
type Notifier interface {
	// Show is called when a prediction becomes visible, or when a partial
	// accept reduces the visible hunk set.
	Show(documentID string, hunks []hunk.Hunk)

	// Clear is called when a prediction is hidden or consumed.
	Clear(documentID string)
}

// NopNotifier ignores all events.
type NopNotifier struct{}

// Show implements Notifier.
func (NopNotifier) Show(string, []hunk.Hunk) {}

// Clear implements Notifier.
func (NopNotifier) Clear(string) {}

// FuncNotifier adapts two functions into a Notifier. Nil functions are
// ignored.
type FuncNotifier struct {
	OnShow  func(documentID string, hunks []hunk.Hunk)
	OnClear func(documentID string)
}

// Show implements Notifier.
func (f FuncNotifier) Show(documentID string, hunks []hunk.Hunk) {
	if f.OnShow != nil {
		f.OnShow(documentID, hunks)
	}
}

// Clear implements Notifier.
func (f FuncNotifier) Clear(documentID string) {
	if f.OnClear != nil {
		f.OnClear(documentID)
	}
}

package state

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestStore_EnsureCreatesOnce(t *testing.T) {
	s := NewStore()

	a := s.Ensure("doc-1")
	b := s.Ensure("doc-1")

	if a != b {
		t.Error("Ensure should return the same record for the same id")
	}
	if a.Status != StatusIdle {
		t.Errorf("new document status = %s, want idle", a.Status)
	}
	if s.Count() != 1 {
		t.Errorf("Count = %d, want 1", s.Count())
	}
}

func TestStore_GetUnknown(t *testing.T) {
	s := NewStore()
	if s.Get("missing") != nil {
		t.Error("Get should return nil for an unknown id")
	}
}

func TestStore_Remove(t *testing.T) {
	s := NewStore()
	s.Ensure("doc-1")

	s.Remove("doc-1")
	if s.Get("doc-1") != nil {
		t.Error("record should be gone after Remove")
	}

	// Removing again is a no-op.
	s.Remove("doc-1")
	if s.Count() != 0 {
		t.Errorf("Count = %d, want 0", s.Count())
	}
}

func TestStore_HistoryBounded(t *testing.T) {
	s := NewStore(WithHistoryLimit(3))
	s.Ensure("doc-1")

	for i := 0; i < 10; i++ {
		s.AppendHistory("doc-1", Edit{Original: fmt.Sprintf("v%d", i), Accepted: true})
	}

	doc := s.Get("doc-1")
	if len(doc.History) != 3 {
		t.Fatalf("len(History) = %d, want 3", len(doc.History))
	}

	// Oldest evicted first: the last three inserts remain.
	for i, want := range []string{"v7", "v8", "v9"} {
		if doc.History[i].Original != want {
			t.Errorf("History[%d].Original = %s, want %s", i, doc.History[i].Original, want)
		}
	}
}

func TestStore_SelectionOverwrite(t *testing.T) {
	s := NewStore()
	s.Ensure("doc-1")

	s.SetSelection("doc-1", Selection{Path: "a.go", StartLine: 1, EndLine: 3, Lines: []string{"x", "y"}})
	s.SetSelection("doc-1", Selection{Path: "a.go", StartLine: 5, EndLine: 6, Lines: []string{"z"}})

	doc := s.Get("doc-1")
	if doc.Selection == nil || doc.Selection.StartLine != 5 {
		t.Errorf("Selection = %+v, want latest capture", doc.Selection)
	}
	if doc.Selection.CapturedAt.IsZero() {
		t.Error("CapturedAt should be stamped")
	}
}

func TestStore_ClearSelections(t *testing.T) {
	s := NewStore()
	s.Ensure("doc-1")
	s.Ensure("doc-2")
	s.SetSelection("doc-1", Selection{Path: "a.go"})
	s.SetSelection("doc-2", Selection{Path: "b.go"})

	s.ClearSelections()

	if s.Get("doc-1").Selection != nil || s.Get("doc-2").Selection != nil {
		t.Error("selections should be cleared on all documents")
	}
}

func TestStore_SnapshotCopies(t *testing.T) {
	s := NewStore()
	doc := s.Ensure("doc-1")
	doc.PendingSnapshot = "content\n"
	doc.CursorLine = 4
	s.AppendHistory("doc-1", Edit{Original: "a", Updated: "b", Accepted: true, Time: time.Now()})
	s.SetSelection("doc-1", Selection{Path: "a.go", Lines: []string{"sel"}})

	snap := s.Snapshot("doc-1")
	if snap == nil {
		t.Fatal("Snapshot returned nil")
	}
	if snap.Content != "content\n" || snap.CursorLine != 4 {
		t.Errorf("snapshot = %+v", snap)
	}

	// Mutating the snapshot must not touch the store.
	snap.History[0].Original = "mutated"
	snap.Selection.Lines[0] = "mutated"

	if s.Get("doc-1").History[0].Original != "a" {
		t.Error("snapshot history aliases store history")
	}
	if s.Get("doc-1").Selection.Lines[0] != "sel" {
		t.Error("snapshot selection aliases store selection")
	}
}

func TestStore_SnapshotUnknown(t *testing.T) {
	s := NewStore()
	if s.Snapshot("missing") != nil {
		t.Error("Snapshot should return nil for an unknown id")
	}
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		id := DocumentID(fmt.Sprintf("doc-%d", i))
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Ensure(id)
				s.AppendHistory(id, Edit{Accepted: true})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Snapshot(id)
				s.Count()
			}
		}()
	}

	wg.Wait()

	if s.Count() != 8 {
		t.Errorf("Count = %d, want 8", s.Count())
	}
}

func TestStatus_String(t *testing.T) {
	cases := map[Status]string{
		StatusIdle:       "idle",
		StatusDebouncing: "debouncing",
		StatusInFlight:   "inFlight",
		StatusShowing:    "showingPrediction",
		Status(99):       "unknown",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %s, want %s", status, got, want)
		}
	}
}

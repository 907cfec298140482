package assemble

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dshills/nextedit/internal/state"
)

func newStoreWithDoc(t *testing.T, id state.DocumentID, content string) *state.Store {
	t.Helper()
	s := state.NewStore()
	doc := s.Ensure(id)
	doc.PendingSnapshot = content
	doc.Version = 7
	doc.CursorLine = 3
	doc.CursorCol = 1
	return s
}

func TestBuild_Basic(t *testing.T) {
	s := newStoreWithDoc(t, "doc-1", "a\nb\n")
	a := New(s)

	req, err := a.Build("doc-1", "a.go")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if req.ID == "" {
		t.Error("request ID should be assigned")
	}
	if req.DocumentID != "doc-1" || req.Path != "a.go" {
		t.Errorf("identity = %q %q", req.DocumentID, req.Path)
	}
	if req.Content != "a\nb\n" || req.SnapshotVersion != 7 {
		t.Errorf("snapshot = %q v%d", req.Content, req.SnapshotVersion)
	}
	if req.CursorLine != 3 || req.CursorCol != 1 {
		t.Errorf("cursor = %d:%d", req.CursorLine, req.CursorCol)
	}
}

func TestBuild_UnknownDocument(t *testing.T) {
	a := New(state.NewStore())

	_, err := a.Build("missing", "a.go")
	if !errors.Is(err, ErrUnknownDocument) {
		t.Errorf("err = %v, want ErrUnknownDocument", err)
	}
}

func TestBuild_HistoryMostRecentN(t *testing.T) {
	s := newStoreWithDoc(t, "doc-1", "x\n")
	for i := 0; i < 8; i++ {
		s.AppendHistory("doc-1", state.Edit{Original: fmt.Sprintf("v%d", i), Accepted: true})
	}

	a := New(s, WithHistoryEntries(3))
	req, err := a.Build("doc-1", "a.go")
	if err != nil {
		t.Fatal(err)
	}

	if len(req.History) != 3 {
		t.Fatalf("len(History) = %d, want 3", len(req.History))
	}
	for i, want := range []string{"v5", "v6", "v7"} {
		if req.History[i].Original != want {
			t.Errorf("History[%d] = %s, want %s", i, req.History[i].Original, want)
		}
	}
}

func TestBuild_SelectionIncluded(t *testing.T) {
	s := newStoreWithDoc(t, "doc-1", "x\n")
	s.SetSelection("doc-1", state.Selection{
		Path:      "a.go",
		StartLine: 2,
		EndLine:   4,
		Lines:     []string{"two", "three"},
	})

	a := New(s)
	req, err := a.Build("doc-1", "a.go")
	if err != nil {
		t.Fatal(err)
	}

	if req.Selection == nil {
		t.Fatal("Selection missing from request")
	}
	if req.Selection.StartLine != 2 || len(req.Selection.Lines) != 2 {
		t.Errorf("Selection = %+v", req.Selection)
	}
}

func TestBuild_SelectionDisabled(t *testing.T) {
	s := newStoreWithDoc(t, "doc-1", "x\n")
	s.SetSelection("doc-1", state.Selection{Path: "a.go", Lines: []string{"sel"}})

	a := New(s, WithSelectionContext(false))
	req, err := a.Build("doc-1", "a.go")
	if err != nil {
		t.Fatal(err)
	}
	if req.Selection != nil {
		t.Error("Selection should be omitted when disabled")
	}
}

func TestBuild_StaleSelectionDropped(t *testing.T) {
	s := newStoreWithDoc(t, "doc-1", "x\n")
	s.SetSelection("doc-1", state.Selection{
		Path:       "a.go",
		Lines:      []string{"sel"},
		CapturedAt: time.Now().Add(-time.Hour),
	})

	a := New(s, WithSelectionMaxAge(time.Minute))
	req, err := a.Build("doc-1", "a.go")
	if err != nil {
		t.Fatal(err)
	}
	if req.Selection != nil {
		t.Error("stale selection should be dropped")
	}
}

func TestSetSelectionEnabled_FalseClearsCaptures(t *testing.T) {
	s := newStoreWithDoc(t, "doc-1", "x\n")
	s.SetSelection("doc-1", state.Selection{Path: "a.go"})

	a := New(s)
	a.SetSelectionEnabled(false)

	if s.Get("doc-1").Selection != nil {
		t.Error("disabling selection context should clear captures")
	}
}

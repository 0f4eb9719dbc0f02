package repl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistory_LoadMissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	if err := h.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestHistory_PersistsModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for _, e := range []HistoryEntry{
		{"a | upper", modeEval},
		{"maps", modeCtrl},
		{"   ", modeEval},
		{"b | @m", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{
		{"a | upper", modeEval},
		{"maps", modeCtrl},
		{"b | @m", modeEval},
	}

	if diff := cmp.Diff(want, loaded.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_DuplicateMovesToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for _, line := range []string{"one", "two", "two", "three", "one"} {
		if err := h.Add(line, modeEval); err != nil {
			t.Fatal(err)
		}
	}

	want := []HistoryEntry{
		{"two", modeEval},
		{"three", modeEval},
		{"one", modeEval},
	}

	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != "E:two\nE:three\nE:one\n" {
		t.Errorf("history file = %q", got)
	}
}

func TestHistory_SameLineDifferentMode(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	_ = h.Add("help", modeEval)
	_ = h.Add("help", modeCtrl)

	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
}

func TestHistory_EntryOutOfBounds(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	if _, err := h.Entry(0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Entry(0) = %v, want ErrOutOfBounds", err)
	}
}

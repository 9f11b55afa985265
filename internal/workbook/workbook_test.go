package workbook

import (
	"errors"
	"testing"
)

func names[T any](w *Workbook[T]) []string {
	var out []string
	for _, e := range w.Entries() {
		out = append(out, e.Name)
	}
	return out
}

func TestNewAndAdd(t *testing.T) {
	w := New("Simulation 1", 10)
	if w.Len() != 1 || w.SelectedIndex() != 0 {
		t.Fatalf("unexpected initial workbook: len=%d selected=%d", w.Len(), w.SelectedIndex())
	}

	e := w.AddNumbered("Simulation", 20)
	if e.Name != "Simulation 2" {
		t.Errorf("name = %q, expected Simulation 2", e.Name)
	}
	if w.SelectedIndex() != 1 || w.Selected().Value != 20 {
		t.Errorf("new entry should be selected, got %d", w.SelectedIndex())
	}

	w.Add("Custom", 30)
	if got := names(w); len(got) != 3 || got[2] != "Custom" {
		t.Errorf("names = %v", got)
	}

	ids := map[string]bool{}
	for _, e := range w.Entries() {
		ids[e.ID.String()] = true
	}
	if len(ids) != 3 {
		t.Errorf("expected distinct ids, got %v", ids)
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name             string
		selected         int
		remove           int
		expectedSelected int
	}{
		{"Before selection", 2, 0, 1},
		{"At selection", 1, 1, 0},
		{"After selection", 0, 2, 0},
		{"First while first selected", 0, 0, 0},
		{"Last while last selected", 2, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New("A", "a")
			w.Add("B", "b")
			w.Add("C", "c")
			if err := w.Select(tt.selected); err != nil {
				t.Fatalf("select: %v", err)
			}

			if err := w.Remove(tt.remove); err != nil {
				t.Fatalf("remove: %v", err)
			}
			if w.Len() != 2 {
				t.Fatalf("len = %d, expected 2", w.Len())
			}
			if w.SelectedIndex() != tt.expectedSelected {
				t.Errorf("selected = %d, expected %d", w.SelectedIndex(), tt.expectedSelected)
			}
		})
	}
}

func TestRemoveRefusals(t *testing.T) {
	w := New("Produit 1", 1.0)

	if err := w.Remove(0); !errors.Is(err, ErrLastEntry) {
		t.Errorf("expected ErrLastEntry, got %v", err)
	}
	if w.Len() != 1 {
		t.Errorf("last entry was removed")
	}

	for _, i := range []int{-1, 1, 5} {
		if err := w.Remove(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Remove(%d) = %v, expected ErrIndexOutOfRange", i, err)
		}
	}
}

func TestSelectUpdate(t *testing.T) {
	w := New("A", 1)
	w.Add("B", 2)

	if err := w.Select(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if w.SelectedIndex() != 1 {
		t.Errorf("failed select must keep selection, got %d", w.SelectedIndex())
	}

	if err := w.Update(0, func(v int) int { return v * 10 }); err != nil {
		t.Fatalf("update: %v", err)
	}
	if w.Entries()[0].Value != 10 {
		t.Errorf("value = %d, expected 10", w.Entries()[0].Value)
	}
	if err := w.Update(2, func(v int) int { return v }); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestEntriesIsACopy(t *testing.T) {
	w := New("A", 1)
	entries := w.Entries()
	entries[0].Name = "changed"
	if w.Selected().Name != "A" {
		t.Error("Entries exposed internal storage")
	}
}

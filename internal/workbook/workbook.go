// Package workbook keeps an ordered list of named records with one selected
// entry, the way the calculator pages keep simulation and product tabs.
package workbook

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrIndexOutOfRange is returned for an index outside the workbook.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrLastEntry is returned when removing the only remaining entry.
	ErrLastEntry = errors.New("cannot remove the last entry")
)

// Entry is one named record.
type Entry[T any] struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Value T         `json:"value"`
}

// Workbook holds at least one entry and the index of the selected one.
// It is not safe for concurrent use.
type Workbook[T any] struct {
	entries  []Entry[T]
	selected int
}

// New creates a workbook with a single selected entry.
func New[T any](name string, value T) *Workbook[T] {
	return &Workbook[T]{
		entries: []Entry[T]{{ID: uuid.New(), Name: name, Value: value}},
	}
}

// Len returns the number of entries.
func (w *Workbook[T]) Len() int {
	return len(w.entries)
}

// Entries returns a copy of the entries in order.
func (w *Workbook[T]) Entries() []Entry[T] {
	out := make([]Entry[T], len(w.entries))
	copy(out, w.entries)
	return out
}

// Add appends an entry and selects it.
func (w *Workbook[T]) Add(name string, value T) Entry[T] {
	e := Entry[T]{ID: uuid.New(), Name: name, Value: value}
	w.entries = append(w.entries, e)
	w.selected = len(w.entries) - 1
	return e
}

// AddNumbered appends an entry named "<prefix> N", N being the new length.
func (w *Workbook[T]) AddNumbered(prefix string, value T) Entry[T] {
	return w.Add(fmt.Sprintf("%s %d", prefix, len(w.entries)+1), value)
}

// Remove deletes the entry at index i. The selection moves back by one when
// it was at or after the removed entry, and never goes below 0.
func (w *Workbook[T]) Remove(i int) error {
	if err := w.check(i); err != nil {
		return err
	}
	if len(w.entries) <= 1 {
		return ErrLastEntry
	}

	w.entries = append(w.entries[:i], w.entries[i+1:]...)
	if w.selected >= i && w.selected > 0 {
		w.selected--
	}
	return nil
}

// Select makes the entry at index i the selected one.
func (w *Workbook[T]) Select(i int) error {
	if err := w.check(i); err != nil {
		return err
	}
	w.selected = i
	return nil
}

// SelectedIndex returns the index of the selected entry.
func (w *Workbook[T]) SelectedIndex() int {
	return w.selected
}

// Selected returns the selected entry.
func (w *Workbook[T]) Selected() Entry[T] {
	return w.entries[w.selected]
}

// Update replaces the value at index i with fn applied to it.
func (w *Workbook[T]) Update(i int, fn func(T) T) error {
	if err := w.check(i); err != nil {
		return err
	}
	w.entries[i].Value = fn(w.entries[i].Value)
	return nil
}

func (w *Workbook[T]) check(i int) error {
	if i < 0 || i >= len(w.entries) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(w.entries))
	}
	return nil
}

// Package selector implements a selectable list independent of any UI toolkit.
// A List is not safe for concurrent use; owners guard it themselves.
package selector

import (
	"errors"
	"fmt"
)

// DefaultPlaceholder is shown while a list has no items.
const DefaultPlaceholder = "Loading dates..."

// ErrOutOfRange is returned when selecting an index that does not exist.
var ErrOutOfRange = errors.New("index out of range")

// Option is one rendered entry of a List.
type Option[T any] struct {
	Index    int
	Label    string
	Value    T
	Selected bool
	Active   bool
}

// List is an ordered set of items with at most one selected and at most one
// active (highlighted) entry.
type List[T any] struct {
	items       []T
	label       func(T) string
	selected    int
	active      int
	Placeholder string
}

// New creates a list over items. The first item is selected when present.
// label renders an item; a nil label renders items with fmt.
func New[T any](items []T, label func(T) string) *List[T] {
	if label == nil {
		label = func(v T) string { return fmt.Sprint(v) }
	}
	l := &List[T]{
		items:       append([]T(nil), items...),
		label:       label,
		selected:    -1,
		active:      -1,
		Placeholder: DefaultPlaceholder,
	}
	if len(l.items) > 0 {
		l.selected = 0
		l.active = 0
	}
	return l
}

func (l *List[T]) Len() int {
	return len(l.items)
}

// Items returns a copy of the items.
func (l *List[T]) Items() []T {
	return append([]T(nil), l.items...)
}

// Disabled reports whether there is nothing to choose from.
func (l *List[T]) Disabled() bool {
	return len(l.items) == 0
}

// Select makes index the selected and active entry. On error nothing changes.
func (l *List[T]) Select(index int) error {
	if index < 0 || index >= len(l.items) {
		return fmt.Errorf("%w: %d (len %d)", ErrOutOfRange, index, len(l.items))
	}
	l.selected = index
	l.active = index
	return nil
}

// SetActive moves the highlight without changing the selection.
func (l *List[T]) SetActive(index int) bool {
	if index < 0 || index >= len(l.items) {
		return false
	}
	l.active = index
	return true
}

func (l *List[T]) Active() int {
	return l.active
}

// SelectedIndex returns -1 when nothing is selected.
func (l *List[T]) SelectedIndex() int {
	return l.selected
}

func (l *List[T]) Selected() (T, bool) {
	var zero T
	if l.selected < 0 || l.selected >= len(l.items) {
		return zero, false
	}
	return l.items[l.selected], true
}

// Current returns the label of the selected item, or the placeholder.
func (l *List[T]) Current() string {
	v, ok := l.Selected()
	if !ok {
		return l.Placeholder
	}
	return l.label(v)
}

func (l *List[T]) Options() []Option[T] {
	out := make([]Option[T], 0, len(l.items))
	for i, v := range l.items {
		out = append(out, Option[T]{
			Index:    i,
			Label:    l.label(v),
			Value:    v,
			Selected: i == l.selected,
			Active:   i == l.active,
		})
	}
	return out
}

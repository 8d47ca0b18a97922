package ui

import "slices"

// FocusManager tracks and rotates focus across the regions of a view.
type FocusManager struct {
	Current string   // ID of the focused region
	Order   []string // Tab order for focus rotation
}

// Is reports whether id has focus.
func (f *FocusManager) Is(id string) bool {
	return f.Current == id
}

// Next advances focus to the next region in order and returns it.
func (f *FocusManager) Next() string {
	return f.step(1)
}

// Prev moves focus to the previous region in order and returns it.
func (f *FocusManager) Prev() string {
	return f.step(-1)
}

func (f *FocusManager) step(delta int) string {
	if len(f.Order) == 0 {
		return ""
	}
	idx := slices.Index(f.Order, f.Current)
	if idx < 0 && delta < 0 {
		idx = 0
	}
	next := (idx + delta + len(f.Order)) % len(f.Order)
	f.Current = f.Order[next]
	return f.Current
}

// SetFocus focuses id. Returns false if id is not in Order.
func (f *FocusManager) SetFocus(id string) bool {
	if !slices.Contains(f.Order, id) {
		return false
	}
	f.Current = id
	return true
}

// Package menu holds the fixed list of selectable display modes and the
// current selection.
package menu

// Mode identifies a selectable display mode.
type Mode int

const (
	Clock Mode = iota
	Environment
)

// String returns the label drawn in the menu.
func (m Mode) String() string {
	switch m {
	case Clock:
		return "RTC Timer"
	case Environment:
		return "Temp/Humidity"
	default:
		return "unknown"
	}
}

// Menu is an ordered list of modes with a clamped selection index.
// Not safe for concurrent use; only the mode controller mutates it.
type Menu struct {
	modes []Mode
	idx   int
}

// New creates a menu with the selection at index 0.
// It panics if modes is empty.
func New(modes ...Mode) *Menu {
	if len(modes) == 0 {
		panic("menu: at least one mode required")
	}
	return &Menu{modes: append([]Mode(nil), modes...)}
}

// Default returns the two-item clock/environment menu.
func Default() *Menu {
	return New(Clock, Environment)
}

// Next moves the selection down one item, stopping at the last.
// Returns true if the selection changed.
func (m *Menu) Next() bool {
	if m.idx >= len(m.modes)-1 {
		return false
	}
	m.idx++
	return true
}

// Previous moves the selection up one item, stopping at the first.
// Returns true if the selection changed.
func (m *Menu) Previous() bool {
	if m.idx == 0 {
		return false
	}
	m.idx--
	return true
}

// Reset selects the first item.
func (m *Menu) Reset() {
	m.idx = 0
}

// Current returns the selected mode.
func (m *Menu) Current() Mode {
	return m.modes[m.idx]
}

// Index returns the selected position.
func (m *Menu) Index() int {
	return m.idx
}

// Len returns the number of items.
func (m *Menu) Len() int {
	return len(m.modes)
}

// Items returns a copy of the mode list.
func (m *Menu) Items() []Mode {
	return append([]Mode(nil), m.modes...)
}

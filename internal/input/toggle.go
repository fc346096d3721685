package input

import "sync/atomic"

// ToggleSignal is a single pending-activation flag shared between the edge
// handler (the only writer of true) and the main loop (the only consumer).
// Any number of edges between two consumes collapse into one activation.
type ToggleSignal struct {
	pending atomic.Bool
}

// Set marks an activation as pending. Safe to call from the edge handler.
func (s *ToggleSignal) Set() {
	s.pending.Store(true)
}

// Consume atomically reads and clears the flag.
func (s *ToggleSignal) Consume() bool {
	return s.pending.Swap(false)
}

// Pending reports the flag without clearing it.
func (s *ToggleSignal) Pending() bool {
	return s.pending.Load()
}

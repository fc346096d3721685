package bus

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
)

// OpenFunc opens a bus by name.
type OpenFunc func(name string) (i2c.BusCloser, error)

// Set opens each named bus at most once so peripherals configured on the
// same bus share one handle.
type Set struct {
	open OpenFunc

	mu    sync.Mutex
	buses map[string]i2c.BusCloser
	order []string
}

// NewSet creates an empty set. A nil open uses Open.
func NewSet(open OpenFunc) *Set {
	if open == nil {
		open = Open
	}
	return &Set{open: open, buses: map[string]i2c.BusCloser{}}
}

// Get returns the bus with the given name, opening it on first use.
func (s *Set) Get(name string) (i2c.Bus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.buses[name]; ok {
		return b, nil
	}
	b, err := s.open(name)
	if err != nil {
		return nil, err
	}
	s.buses[name] = b
	s.order = append(s.order, name)
	return b, nil
}

// Close closes every opened bus in reverse order of opening.
func (s *Set) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for i := len(s.order) - 1; i >= 0; i-- {
		name := s.order[i]
		if err := s.buses[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close bus %q: %w", name, err))
		}
	}
	s.buses = map[string]i2c.BusCloser{}
	s.order = nil

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

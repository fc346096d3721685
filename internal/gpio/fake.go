package gpio

import (
	"errors"
	"sync"
)

// FakeReader is a test double that returns scripted button levels and
// simulates toggle edges.
type FakeReader struct {
	// Samples contains scripted (up, down) values to return.
	// Each call to Read() consumes the next sample.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error

	mu       sync.Mutex
	onToggle func()
}

// Sample represents a single button reading (already in logical form).
type Sample struct {
	Up   bool // true = pressed
	Down bool // true = pressed
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ReadError != nil {
		return false, false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample.Up, sample.Down, nil
}

// Set replaces the script with a single held level.
func (f *FakeReader) Set(up, down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Samples = []Sample{{Up: up, Down: down}}
	f.index = 0
}

// OnToggle registers the edge handler, mirroring the handler passed to
// NewRealReader.
func (f *FakeReader) OnToggle(fn func()) {
	f.mu.Lock()
	f.onToggle = fn
	f.mu.Unlock()
}

// Toggle simulates n falling edges on the toggle line.
func (f *FakeReader) Toggle(n int) {
	f.mu.Lock()
	fn := f.onToggle
	f.mu.Unlock()
	if fn == nil {
		return
	}
	for i := 0; i < n; i++ {
		fn()
	}
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

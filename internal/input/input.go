// Package input turns raw button lines into the snapshot the mode
// controller consumes each main-loop iteration: debounced navigation levels
// and a consume-once toggle activation.
package input

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sweeney/envclock/internal/gpio"
)

// DefaultSettle is the debounce settle delay for the navigation buttons.
const DefaultSettle = 50 * time.Millisecond

// ErrUnbound is returned by PollNavigation before a reader is bound.
var ErrUnbound = errors.New("input: no reader bound")

// Navigation is the debounced state of the up/down buttons for one poll.
type Navigation struct {
	// Up and Down are the debounced pressed levels.
	Up   bool
	Down bool
	// UpPressed and DownPressed are set on the poll where the debounced
	// level went from released to pressed.
	UpPressed   bool
	DownPressed bool
}

// Model combines the polled navigation lines with the edge-driven toggle.
type Model struct {
	reader gpio.Reader
	up     *Debouncer
	down   *Debouncer
	toggle ToggleSignal
	edges  atomic.Uint64
}

// New creates an input model reading navigation levels from reader.
// The toggle edge source must be wired to OnEdge. reader may be nil when
// the edge source has to be built first; see Bind.
func New(reader gpio.Reader, settle time.Duration) *Model {
	return &Model{
		reader: reader,
		up:     NewDebouncer(settle),
		down:   NewDebouncer(settle),
	}
}

// Bind sets the navigation reader. It must be called before the main loop
// starts polling.
func (m *Model) Bind(reader gpio.Reader) {
	m.reader = reader
}

// OnEdge records a falling edge on the toggle line. It only touches atomics
// and is safe to call from the GPIO event goroutine.
func (m *Model) OnEdge() {
	m.edges.Add(1)
	m.toggle.Set()
}

// ConsumeToggle reports whether a toggle activation is pending and clears it.
func (m *Model) ConsumeToggle() bool {
	return m.toggle.Consume()
}

// Edges returns the number of toggle edges observed since startup.
func (m *Model) Edges() uint64 {
	return m.edges.Load()
}

// PollNavigation samples both navigation lines and returns their debounced state.
// On a read error the debounce state is left untouched.
func (m *Model) PollNavigation(now time.Time) (Navigation, error) {
	if m.reader == nil {
		return Navigation{}, ErrUnbound
	}
	upRaw, downRaw, err := m.reader.Read()
	if err != nil {
		return Navigation{}, fmt.Errorf("read navigation: %w", err)
	}

	up, upChanged := m.up.Update(upRaw, now)
	down, downChanged := m.down.Update(downRaw, now)

	return Navigation{
		Up:          up,
		Down:        down,
		UpPressed:   up && upChanged,
		DownPressed: down && downChanged,
	}, nil
}

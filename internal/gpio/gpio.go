// Package gpio provides button input reading with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the two navigation button lines.
type Reader interface {
	// Read returns the logical pressed states of the up and down buttons.
	// The lines are active-low with pull-up: raw 0 = pressed.
	// Returns (upPressed, downPressed, error).
	Read() (bool, bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Pins holds the BCM line offsets of the three buttons.
type Pins struct {
	Up     int
	Down   int
	Toggle int
}

// Default pin assignment (BCM numbering).
const (
	DefaultPinUp     = 23
	DefaultPinDown   = 22
	DefaultPinToggle = 21
)

// DefaultPins returns the default button wiring.
func DefaultPins() Pins {
	return Pins{Up: DefaultPinUp, Down: DefaultPinDown, Toggle: DefaultPinToggle}
}

// DefaultChip is the GPIO character device used on a Raspberry Pi.
const DefaultChip = "gpiochip0"

//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads buttons from actual hardware using the Linux GPIO character device.
type RealReader struct {
	chip      *gpiocdev.Chip
	upPin     *gpiocdev.Line
	downPin   *gpiocdev.Line
	togglePin *gpiocdev.Line
}

// NewRealReader requests the button lines on the named chip.
// onToggle is invoked from the gpiocdev event goroutine on every falling edge
// of the toggle line; it must not block or touch peripherals.
func NewRealReader(chipName string, pins Pins, onToggle func()) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("envclock"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}
	r := &RealReader{chip: chip}

	// Buttons short to ground; the internal pull-up holds the idle level high.
	r.upPin, err = chip.RequestLine(pins.Up, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("request up pin %d: %w", pins.Up, err)
	}

	r.downPin, err = chip.RequestLine(pins.Down, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("request down pin %d: %w", pins.Down, err)
	}

	handler := func(evt gpiocdev.LineEvent) {
		if evt.Type == gpiocdev.LineEventFallingEdge && onToggle != nil {
			onToggle()
		}
	}
	r.togglePin, err = chip.RequestLine(pins.Toggle,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(handler))
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("request toggle pin %d: %w", pins.Toggle, err)
	}

	return r, nil
}

// Read returns the logical pressed states of up and down.
// Inverts raw GPIO: raw 0 (pulled to ground) = pressed.
func (r *RealReader) Read() (bool, bool, error) {
	upRaw, err := r.upPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read up pin: %w", err)
	}

	downRaw, err := r.downPin.Value()
	if err != nil {
		return false, false, fmt.Errorf("read down pin: %w", err)
	}

	return upRaw == 0, downRaw == 0, nil
}

// Close releases the lines and the chip. The toggle line is closed first so
// no edge handler runs after Close returns.
func (r *RealReader) Close() error {
	var errs []error

	lines := []struct {
		name string
		line *gpiocdev.Line
	}{
		{"toggle", r.togglePin},
		{"up", r.upPin},
		{"down", r.downPin},
	}
	for _, l := range lines {
		if l.line == nil {
			continue
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", l.name, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

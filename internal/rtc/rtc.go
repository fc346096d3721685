// Package rtc reads the wall clock shown in clock mode.
package rtc

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds1307"
)

// Addr is the DS1307's fixed I²C address.
const Addr = ds1307.I2CAddress

// Source returns the current date and time.
type Source interface {
	Now() (time.Time, error)
}

// DS1307 reads a DS1307 real-time clock over I²C.
type DS1307 struct {
	dev ds1307.Device
}

// NewDS1307 binds to a DS1307 at its fixed address on bus.
func NewDS1307(bus drivers.I2C) *DS1307 {
	return &DS1307{dev: ds1307.New(bus)}
}

// Now reads the clock registers.
func (d *DS1307) Now() (time.Time, error) {
	t, err := d.dev.ReadTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("ds1307 read: %w", err)
	}
	return t, nil
}

// Running reports whether the oscillator is ticking. A chip that lost its
// backup battery comes up halted.
func (d *DS1307) Running() bool {
	return d.dev.IsOscillatorRunning()
}

// Set writes t to the clock and starts the oscillator.
func (d *DS1307) Set(t time.Time) error {
	if err := d.dev.SetTime(t.UTC()); err != nil {
		return fmt.Errorf("ds1307 set time: %w", err)
	}
	if err := d.dev.SetOscillatorRunning(true); err != nil {
		return fmt.Errorf("ds1307 start oscillator: %w", err)
	}
	return nil
}

// System reads the host clock. Used when no RTC is configured.
type System struct{}

// Now returns time.Now in UTC.
func (System) Now() (time.Time, error) {
	return time.Now().UTC(), nil
}

// Fake is a scripted Source for tests.
type Fake struct {
	mu    sync.Mutex
	Times []time.Time
	Err   error
	calls int
}

// ErrNoTimes is returned by Fake when no times are configured.
var ErrNoTimes = errors.New("rtc: no times configured")

// Now returns the next scripted time, repeating the last.
func (f *Fake) Now() (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.Err != nil {
		return time.Time{}, f.Err
	}
	if len(f.Times) == 0 {
		return time.Time{}, ErrNoTimes
	}
	t := f.Times[0]
	if len(f.Times) > 1 {
		f.Times = f.Times[1:]
	}
	return t, nil
}

// SetErr changes the error returned by Now.
func (f *Fake) SetErr(err error) {
	f.mu.Lock()
	f.Err = err
	f.mu.Unlock()
}

// Calls returns the number of Now calls.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

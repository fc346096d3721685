//go:build linux

package display

import "github.com/stianeikeland/go-rpio/v4"

type rpioLine struct {
	pin rpio.Pin
}

func (l rpioLine) High() {
	l.pin.Output()
	l.pin.High()
}

func (l rpioLine) Low() {
	l.pin.Output()
	l.pin.Low()
}

func (l rpioLine) Release() {
	l.pin.Input()
	l.pin.PullUp()
}

func (l rpioLine) Read() bool {
	return l.pin.Read() == rpio.High
}

// NewTM1637Pins returns the clock and data lines on the given BCM pins.
// rpio.Open must have been called.
func NewTM1637Pins(clk, dio int) (Line, Line, error) {
	return rpioLine{pin: rpio.Pin(clk)}, rpioLine{pin: rpio.Pin(dio)}, nil
}

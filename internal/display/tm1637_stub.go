//go:build !linux

package display

import "errors"

// NewTM1637Pins returns an error on non-Linux platforms.
func NewTM1637Pins(clk, dio int) (Line, Line, error) {
	return nil, nil, errors.New("tm1637: not supported on this platform (requires Linux)")
}

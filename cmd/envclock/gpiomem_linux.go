//go:build linux

package main

import "github.com/stianeikeland/go-rpio/v4"

// openGPIOMem maps the GPIO registers used by the bit-banged peripherals.
func openGPIOMem() (func() error, error) {
	if err := rpio.Open(); err != nil {
		return nil, err
	}
	return rpio.Close, nil
}

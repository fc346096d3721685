//go:build !linux

package main

import "errors"

func openGPIOMem() (func() error, error) {
	return nil, errors.New("gpio memory: not supported on this platform (requires Linux)")
}

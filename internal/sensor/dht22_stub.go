//go:build !linux

package sensor

import (
	"context"
	"errors"
)

// DHT22 is not available on non-Linux platforms.
type DHT22 struct{}

// NewDHT22 returns a sensor that always fails.
func NewDHT22(pin int) *DHT22 {
	return &DHT22{}
}

// Measure is not implemented on non-Linux platforms.
func (d *DHT22) Measure(ctx context.Context) (Reading, error) {
	return Reading{}, errors.New("dht22: not supported on this platform (requires Linux)")
}

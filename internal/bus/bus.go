// Package bus opens the I²C buses the peripherals hang off and finds
// devices on them.
//
// A periph i2c.Bus has the same Tx shape as tinygo's drivers.I2C, so the
// tinygo peripheral drivers run on top of it unchanged.
package bus

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// ErrNoDevice is returned when a scan finds nothing on the bus.
var ErrNoDevice = errors.New("bus: no device found")

// Valid 7-bit addresses; 0x00-0x07 and 0x78-0x7F are reserved.
const (
	FirstAddr uint16 = 0x08
	LastAddr  uint16 = 0x77
)

var hostOnce struct {
	sync.Once
	err error
}

// Init loads the periph host drivers. Safe to call more than once.
func Init() error {
	hostOnce.Do(func() {
		_, hostOnce.err = host.Init()
	})
	if hostOnce.err != nil {
		return fmt.Errorf("init periph host: %w", hostOnce.err)
	}
	return nil
}

// Open initialises the host and opens the named I²C bus ("1" for /dev/i2c-1,
// "" for the first available).
func Open(name string) (i2c.BusCloser, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}
	return b, nil
}

// Scan probes every address in [first, last] with a one-byte read and returns
// the ones that acknowledged, in ascending order.
func Scan(b i2c.Bus, first, last uint16) []uint16 {
	var found []uint16
	buf := make([]byte, 1)
	for addr := first; addr <= last; addr++ {
		if err := b.Tx(addr, nil, buf); err == nil {
			found = append(found, addr)
		}
	}
	return found
}

// FirstDevice scans the full address range and returns the lowest responder
// that is not in skip. Skip lists the fixed addresses of other devices
// sharing the bus.
func FirstDevice(b i2c.Bus, skip ...uint16) (uint16, error) {
	for _, addr := range Scan(b, FirstAddr, LastAddr) {
		if !slices.Contains(skip, addr) {
			return addr, nil
		}
	}
	return 0, fmt.Errorf("scan %s: %w", b, ErrNoDevice)
}

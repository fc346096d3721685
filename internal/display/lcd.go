package display

import (
	"fmt"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/hd44780i2c"
)

// Default character LCD geometry.
const (
	DefaultLCDWidth  = 16
	DefaultLCDHeight = 2
)

// errBus remembers the first bus error since the last take. The LCD driver
// discards Tx errors, so this is how LCD reports them.
type errBus struct {
	bus drivers.I2C
	err error
}

func (e *errBus) Tx(addr uint16, w, r []byte) error {
	err := e.bus.Tx(addr, w, r)
	if err != nil && e.err == nil {
		e.err = err
	}
	return err
}

func (e *errBus) take() error {
	err := e.err
	e.err = nil
	return err
}

// LCD is a Character display on an HD44780 behind a PCF8574 I²C expander.
type LCD struct {
	mu  sync.Mutex
	bus *errBus
	dev hd44780i2c.Device
}

// NewLCD configures the LCD at addr. Configuration blocks for about a second.
func NewLCD(bus drivers.I2C, addr uint16, width, height uint8) (*LCD, error) {
	l := newLCD(bus, addr)
	err := l.dev.Configure(hd44780i2c.Config{Width: width, Height: height})
	if err == nil {
		err = l.bus.take()
	}
	if err != nil {
		return nil, fmt.Errorf("configure lcd at %#02x: %w", addr, err)
	}
	return l, nil
}

func newLCD(bus drivers.I2C, addr uint16) *LCD {
	eb := &errBus{bus: bus}
	return &LCD{bus: eb, dev: hd44780i2c.New(eb, uint8(addr))}
}

// Clear erases the display and homes the cursor.
func (l *LCD) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dev.ClearDisplay()
	if err := l.bus.take(); err != nil {
		return fmt.Errorf("lcd clear: %w", err)
	}
	return nil
}

// WriteString prints s at the cursor.
func (l *LCD) WriteString(s string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dev.Print([]byte(s))
	if err := l.bus.take(); err != nil {
		return fmt.Errorf("lcd write: %w", err)
	}
	return nil
}

package display

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// TM1637 commands.
const (
	tmDataAuto    = 0x40
	tmAddrStart   = 0xc0
	tmDisplayOn   = 0x88
	tmColonBit    = 0x80
	tmDigits      = 4
	tmBitDelay    = 5 * time.Microsecond
	maxBrightness = 7
)

var (
	// ErrNoAck is returned when the TM1637 does not acknowledge a byte.
	ErrNoAck = errors.New("tm1637: no ack")
	// ErrUnsupportedChar is returned for characters with no segment pattern.
	ErrUnsupportedChar = errors.New("tm1637: unsupported character")
)

// segments maps printable characters to their gfedcba pattern.
var segments = map[rune]byte{
	'0': 0x3f, '1': 0x06, '2': 0x5b, '3': 0x4f, '4': 0x66,
	'5': 0x6d, '6': 0x7d, '7': 0x07, '8': 0x7f, '9': 0x6f,
	'A': 0x77, 'b': 0x7c, 'C': 0x39, 'd': 0x5e, 'E': 0x79, 'F': 0x71,
	'-': 0x40, ' ': 0x00,
}

// Encode converts up to four characters to segment bytes, padding with
// blanks on the right. colon lights the centre colon.
func Encode(text string, colon bool) ([tmDigits]byte, error) {
	var out [tmDigits]byte
	runes := []rune(text)
	if len(runes) > tmDigits {
		return out, fmt.Errorf("%w: %q is longer than %d", ErrUnsupportedChar, text, tmDigits)
	}
	for i, r := range runes {
		seg, ok := segments[r]
		if !ok {
			return out, fmt.Errorf("%w: %q", ErrUnsupportedChar, r)
		}
		out[i] = seg
	}
	if colon {
		out[1] |= tmColonBit
	}
	return out, nil
}

// FormatPair renders two numbers as two zero-padded 2-character groups,
// each clamped to -9..99.
func FormatPair(hi, lo int) string {
	return fmt.Sprintf("%02d%02d", clampPair(hi), clampPair(lo))
}

func clampPair(n int) int {
	return max(-9, min(n, 99))
}

// Line is one open-drain style GPIO line of the TM1637 two-wire bus.
type Line interface {
	High()
	Low()
	// Release turns the line into an input with pull-up.
	Release()
	Read() bool
}

// TM1637 is a Segment display on a TM1637 driver chip.
type TM1637 struct {
	mu         sync.Mutex
	clk, dio   Line
	brightness byte
	delay      func()
}

// NewTM1637 creates a driver on the clock and data lines at full brightness.
func NewTM1637(clk, dio Line) *TM1637 {
	return &TM1637{
		clk:        clk,
		dio:        dio,
		brightness: maxBrightness,
		delay:      func() { time.Sleep(tmBitDelay) },
	}
}

// Show writes text, as accepted by Encode.
func (t *TM1637) Show(text string, colon bool) error {
	segs, err := Encode(text, colon)
	if err != nil {
		return err
	}
	return t.write(segs)
}

// ShowPair writes two 2-digit numbers, for example minutes and seconds.
func (t *TM1637) ShowPair(hi, lo int, colon bool) error {
	return t.Show(FormatPair(hi, lo), colon)
}

// Blank turns every segment off.
func (t *TM1637) Blank() error {
	return t.write([tmDigits]byte{})
}

func (t *TM1637) write(segs [tmDigits]byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.command(tmDataAuto); err != nil {
		return err
	}
	if err := t.command(append([]byte{tmAddrStart}, segs[:]...)...); err != nil {
		return err
	}
	return t.command(tmDisplayOn | t.brightness)
}

// command sends one framed transfer.
func (t *TM1637) command(data ...byte) error {
	t.start()
	defer t.stop()
	for _, b := range data {
		if err := t.writeByte(b); err != nil {
			return fmt.Errorf("write %#02x: %w", b, err)
		}
	}
	return nil
}

func (t *TM1637) start() {
	t.dio.High()
	t.clk.High()
	t.delay()
	t.dio.Low()
	t.delay()
}

func (t *TM1637) stop() {
	t.clk.Low()
	t.delay()
	t.dio.Low()
	t.delay()
	t.clk.High()
	t.delay()
	t.dio.High()
	t.delay()
}

// writeByte clocks b out LSB first and checks the chip's ack.
func (t *TM1637) writeByte(b byte) error {
	for i := 0; i < 8; i++ {
		t.clk.Low()
		if b&(1<<i) != 0 {
			t.dio.High()
		} else {
			t.dio.Low()
		}
		t.delay()
		t.clk.High()
		t.delay()
	}

	t.clk.Low()
	t.dio.Release()
	t.delay()
	t.clk.High()
	t.delay()
	acked := !t.dio.Read()
	t.clk.Low()
	t.delay()
	if !acked {
		return ErrNoAck
	}
	return nil
}

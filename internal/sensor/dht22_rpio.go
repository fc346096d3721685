//go:build linux

package sensor

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
)

// DHT22 bit-bangs the single-wire DHT22/AM2302 protocol on one GPIO pin.
// rpio.Open must have been called.
type DHT22 struct {
	pin rpio.Pin

	mu   sync.Mutex
	last time.Time
}

// NewDHT22 binds to the sensor's data pin (BCM numbering).
func NewDHT22(pin int) *DHT22 {
	p := rpio.Pin(pin)
	p.Input()
	p.PullUp()
	return &DHT22{pin: p}
}

// Measure requests one frame. It waits out the sensor's minimum sampling
// interval first, bounded by ctx.
func (d *DHT22) Measure(ctx context.Context) (Reading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if wait := dhtMinInterval - time.Since(d.last); !d.last.IsZero() && wait > 0 {
		if err := sleepCtx(ctx, wait); err != nil {
			return Reading{}, err
		}
	}
	defer func() { d.last = time.Now() }()

	highs, err := d.readFrame()
	if err != nil {
		return Reading{}, err
	}
	frame, err := decodeDHTBits(highs)
	if err != nil {
		return Reading{}, err
	}
	return decodeDHT22(frame)
}

func (d *DHT22) readFrame() ([]time.Duration, error) {
	// The frame is timed by busy-waiting; keep the goroutine on one thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	d.pin.Output()
	d.pin.Low()
	time.Sleep(dhtStartLow)
	d.pin.High()
	d.pin.Input()
	d.pin.PullUp()

	// Response: sensor pulls low ~80µs, then high ~80µs, then starts bit 0.
	for i, level := range []rpio.State{rpio.High, rpio.Low, rpio.High} {
		if _, err := d.waitWhile(level, dhtLevelTimeout); err != nil {
			return nil, fmt.Errorf("dht22 response phase %d: %w", i, err)
		}
	}

	highs := make([]time.Duration, 0, dhtFrameBits)
	for len(highs) < dhtFrameBits {
		if _, err := d.waitWhile(rpio.Low, dhtLevelTimeout); err != nil {
			return highs, fmt.Errorf("dht22 bit %d: %w", len(highs), err)
		}
		h, err := d.waitWhile(rpio.High, dhtLevelTimeout)
		if err != nil {
			return highs, fmt.Errorf("dht22 bit %d: %w", len(highs), err)
		}
		highs = append(highs, h)
	}
	return highs, nil
}

// waitWhile spins while the pin reads level and returns how long it stayed.
func (d *DHT22) waitWhile(level rpio.State, timeout time.Duration) (time.Duration, error) {
	start := time.Now()
	for d.pin.Read() == level {
		if time.Since(start) > timeout {
			return 0, ErrTimeout
		}
	}
	return time.Since(start), nil
}

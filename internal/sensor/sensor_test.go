package sensor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/envclock/internal/bus"
	"github.com/sweeney/envclock/internal/logger"
)

// noSleep records requested delays without blocking.
type noSleep struct {
	delays []time.Duration
}

func (n *noSleep) sleep(ctx context.Context, d time.Duration) error {
	n.delays = append(n.delays, d)
	return ctx.Err()
}

func newTestPoller(s Sensor, ns *noSleep) *Poller {
	return NewPoller(s, logger.Nop(), WithSleep(ns.sleep), WithSettle(100*time.Millisecond))
}

func TestPollerSuccess(t *testing.T) {
	want := Reading{TemperatureC: 21.5, RelativeHumidity: 40}
	f := NewFake(Result{Reading: want})
	ns := &noSleep{}

	got, err := newTestPoller(f, ns).Measure(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if f.Calls() != 1 {
		t.Errorf("expected 1 sensor call, got %d", f.Calls())
	}
	if len(ns.delays) != 1 || ns.delays[0] != 100*time.Millisecond {
		t.Errorf("expected one settle delay, got %v", ns.delays)
	}
}

func TestPollerRetriesOnce(t *testing.T) {
	want := Reading{TemperatureC: 19, RelativeHumidity: 55}
	f := NewFake(Result{Err: ErrTimeout}, Result{Reading: want})

	got, err := newTestPoller(f, &noSleep{}).Measure(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if f.Calls() != 2 {
		t.Errorf("expected 2 sensor calls, got %d", f.Calls())
	}
}

func TestPollerGivesUpAfterRetry(t *testing.T) {
	f := NewFake(Result{Err: ErrTimeout})

	_, err := newTestPoller(f, &noSleep{}).Measure(context.Background())
	if !errors.Is(err, ErrNoReading) {
		t.Errorf("expected ErrNoReading, got %v", err)
	}
	if f.Calls() != 2 {
		t.Errorf("expected exactly 2 sensor calls, got %d", f.Calls())
	}
}

func TestPollerRejectsOutOfRange(t *testing.T) {
	f := NewFake(Result{Reading: Reading{TemperatureC: 300, RelativeHumidity: 10}})

	_, err := newTestPoller(f, &noSleep{}).Measure(context.Background())
	if !errors.Is(err, ErrNoReading) {
		t.Errorf("expected ErrNoReading, got %v", err)
	}
}

func TestPollerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewFake(Result{Reading: Reading{TemperatureC: 20}})

	_, err := newTestPoller(f, &noSleep{}).Measure(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if f.Calls() != 0 {
		t.Errorf("sensor should not be read after cancel, got %d calls", f.Calls())
	}
}

// slowSensor blocks until its context expires.
type slowSensor struct{}

func (slowSensor) Measure(ctx context.Context) (Reading, error) {
	<-ctx.Done()
	return Reading{}, ErrTimeout
}

func TestPollerTimeoutBoundsAttempt(t *testing.T) {
	p := NewPoller(slowSensor{}, logger.Nop(),
		WithSleep((&noSleep{}).sleep),
		WithTimeout(5*time.Millisecond))

	start := time.Now()
	_, err := p.Measure(context.Background())
	if !errors.Is(err, ErrNoReading) {
		t.Errorf("expected ErrNoReading, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout did not bound the attempts")
	}
}

func TestFahrenheit(t *testing.T) {
	r := Reading{TemperatureC: 100}
	if r.Fahrenheit() != 212 {
		t.Errorf("expected 212F, got %v", r.Fahrenheit())
	}
}

func TestDecodeDHT22(t *testing.T) {
	// 65.2 %RH, 35.1 C
	frame := [5]byte{0x02, 0x8c, 0x01, 0x5f, 0}
	frame[4] = frame[0] + frame[1] + frame[2] + frame[3]

	r, err := decodeDHT22(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.RelativeHumidity != 65.2 || r.TemperatureC != 35.1 {
		t.Errorf("unexpected reading %+v", r)
	}
}

func TestDecodeDHT22Negative(t *testing.T) {
	// -10.1 C
	frame := [5]byte{0x01, 0xf4, 0x80, 0x65, 0}
	frame[4] = frame[0] + frame[1] + frame[2] + frame[3]

	r, err := decodeDHT22(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TemperatureC != -10.1 {
		t.Errorf("expected -10.1, got %v", r.TemperatureC)
	}
}

func TestDecodeDHT22Checksum(t *testing.T) {
	_, err := decodeDHT22([5]byte{0x02, 0x8c, 0x01, 0x5f, 0x00})
	if !errors.Is(err, ErrChecksum) {
		t.Errorf("expected ErrChecksum, got %v", err)
	}
}

func TestDecodeDHTBits(t *testing.T) {
	highs := make([]time.Duration, dhtFrameBits)
	for i := range highs {
		highs[i] = 27 * time.Microsecond
	}
	// Set the lowest bit of byte 0 and the highest bit of byte 4.
	highs[7] = 70 * time.Microsecond
	highs[32] = 70 * time.Microsecond

	frame, err := decodeDHTBits(highs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame != [5]byte{0x01, 0, 0, 0, 0x80} {
		t.Errorf("unexpected frame % x", frame)
	}

	if _, err := decodeDHTBits(highs[:12]); !errors.Is(err, ErrTimeout) {
		t.Errorf("short frame: expected ErrTimeout, got %v", err)
	}
}

func TestAHT20Measure(t *testing.T) {
	b := bus.NewFakeBus(0x38)
	b.Reply = func(addr uint16, w, r []byte) error {
		switch {
		case len(w) == 0 && len(r) == 7:
			// calibrated, idle; humidity 0x80000 (50%), temperature 0x60000 (25C)
			copy(r, []byte{0x08, 0x80, 0x00, 0x06, 0x00, 0x00, 0x00})
		case len(r) == 1:
			r[0] = 0x08
		}
		return nil
	}

	got, err := NewAHT20(b).Measure(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Reading{TemperatureC: 25, RelativeHumidity: 50}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestAHT20Absent(t *testing.T) {
	if _, err := NewAHT20(bus.NewFakeBus()).Measure(context.Background()); err == nil {
		t.Error("expected error with no device on the bus")
	}
}

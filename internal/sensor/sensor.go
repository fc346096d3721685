// Package sensor measures temperature and relative humidity on demand.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/envclock/internal/logger"
)

// Defaults for the poller.
const (
	DefaultSettle  = 100 * time.Millisecond
	DefaultTimeout = 2 * time.Second
)

var (
	// ErrNoReading is returned by Poller.Measure after the retry also failed.
	ErrNoReading = errors.New("sensor: no reading")
	// ErrTimeout is returned by drivers when the sensor does not answer in time.
	ErrTimeout = errors.New("sensor: timeout")
	// ErrChecksum is returned when a frame fails its checksum.
	ErrChecksum = errors.New("sensor: checksum mismatch")
	// ErrOutOfRange is returned for physically implausible values.
	ErrOutOfRange = errors.New("sensor: value out of range")
)

// Reading is one immutable temperature/humidity sample.
type Reading struct {
	TemperatureC     float64
	RelativeHumidity float64
}

// Fahrenheit returns the temperature in degrees Fahrenheit.
func (r Reading) Fahrenheit() float64 {
	return r.TemperatureC*9/5 + 32
}

// Validate rejects readings outside what the supported sensors can report.
func (r Reading) Validate() error {
	if r.TemperatureC < -40 || r.TemperatureC > 85 {
		return fmt.Errorf("%w: temperature %.1f C", ErrOutOfRange, r.TemperatureC)
	}
	if r.RelativeHumidity < 0 || r.RelativeHumidity > 100 {
		return fmt.Errorf("%w: humidity %.1f %%", ErrOutOfRange, r.RelativeHumidity)
	}
	return nil
}

// Sensor triggers one measurement and returns it.
type Sensor interface {
	Measure(ctx context.Context) (Reading, error)
}

// Poller wraps a Sensor with the settle delay, a per-attempt timeout, and a
// single retry.
type Poller struct {
	sensor  Sensor
	log     *logger.Logger
	settle  time.Duration
	timeout time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithSettle sets the delay before the first read after activation.
func WithSettle(d time.Duration) PollerOption {
	return func(p *Poller) { p.settle = d }
}

// WithTimeout bounds each read attempt.
func WithTimeout(d time.Duration) PollerOption {
	return func(p *Poller) { p.timeout = d }
}

// WithSleep replaces the context-aware sleep. Used by tests.
func WithSleep(f func(ctx context.Context, d time.Duration) error) PollerOption {
	return func(p *Poller) { p.sleep = f }
}

// NewPoller creates a poller for s.
func NewPoller(s Sensor, log *logger.Logger, opts ...PollerOption) *Poller {
	p := &Poller{
		sensor:  s,
		log:     log,
		settle:  DefaultSettle,
		timeout: DefaultTimeout,
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Measure blocks for the settle delay, then reads the sensor, retrying once.
// The returned error wraps ErrNoReading when both attempts fail.
func (p *Poller) Measure(ctx context.Context) (Reading, error) {
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		if err := p.sleep(ctx, p.settle); err != nil {
			return Reading{}, err
		}

		r, err := p.measureOnce(ctx)
		if err == nil {
			return r, nil
		}
		lastErr = err
		p.log.Debugw("sensor read failed", "attempt", attempt, "err", err)
	}
	return Reading{}, fmt.Errorf("%w: %v", ErrNoReading, lastErr)
}

func (p *Poller) measureOnce(ctx context.Context) (Reading, error) {
	mctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	r, err := p.sensor.Measure(mctx)
	if err != nil {
		return Reading{}, err
	}
	if err := r.Validate(); err != nil {
		return Reading{}, err
	}
	return r, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

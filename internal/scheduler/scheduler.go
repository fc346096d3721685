// Package scheduler owns the single recurring refresh timer. The callback
// runs on the scheduler's own goroutine; Stop is synchronous so a callback
// never runs after Stop returns.
package scheduler

import (
	"errors"
	"sync"
	"time"

	"github.com/sweeney/envclock/internal/logger"
)

// DefaultInterval is the clock view refresh period.
const DefaultInterval = 500 * time.Millisecond

var (
	// ErrAlreadyRunning is returned by Start when a timer is already live.
	ErrAlreadyRunning = errors.New("scheduler: already running")
	// ErrInvalidInterval is returned by Start for a non-positive interval.
	ErrInvalidInterval = errors.New("scheduler: interval must be positive")
)

// TickerFunc creates a tick source for the given interval and returns it
// together with a function that releases it.
type TickerFunc func(interval time.Duration) (<-chan time.Time, func())

func realTicker(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTicker replaces the time.Ticker source. Used by tests to drive ticks.
func WithTicker(f TickerFunc) Option {
	return func(s *Scheduler) { s.newTicker = f }
}

// Scheduler runs at most one periodic callback at a time.
type Scheduler struct {
	log       *logger.Logger
	newTicker TickerFunc

	// mu serialises Start/Stop. The callback must not call back into the
	// scheduler.
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// New creates a stopped scheduler.
func New(log *logger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{log: log, newTicker: realTicker}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins invoking fn every interval. The first call happens one
// interval after Start.
func (s *Scheduler) Start(interval time.Duration, fn func()) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return ErrAlreadyRunning
	}

	tick, release := s.newTicker(interval)
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop = stop
	s.done = done

	go s.loop(tick, release, stop, done, fn)
	return nil
}

func (s *Scheduler) loop(tick <-chan time.Time, release func(), stop, done chan struct{}, fn func()) {
	defer close(done)
	defer release()

	for {
		select {
		case <-stop:
			return
		case <-tick:
			// A tick and a stop may be ready together; stop wins.
			select {
			case <-stop:
				return
			default:
			}
			s.fire(fn)
		}
	}
}

// fire runs one callback, keeping the timer alive if it panics.
func (s *Scheduler) fire(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("refresh callback panicked", "panic", r)
		}
	}()
	fn()
}

// Stop cancels the timer and waits for an in-flight callback to return.
// Calling Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil
	s.done = nil
}

// Running reports whether a timer is live.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

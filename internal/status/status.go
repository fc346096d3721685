// Package status provides a thread-safe status tracker for the envclock daemon.
// It is written by the main loop and the clock refresh callback, and read by
// the heartbeat and --print-state.
package status

import (
	"sync"
	"time"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	DebounceMs  int64
	RefreshMs   int64
	HeartbeatMs int64
	SensorKind  string
}

// Counts are monotonically increasing event counters.
type Counts struct {
	Toggles       int
	Transitions   int
	ClockFrames   int
	RTCErrors     int
	SensorReads   int
	SensorErrors  int
	DisplayErrors int
}

// Reading is the last successful sensor measurement.
type Reading struct {
	TemperatureC     float64
	RelativeHumidity float64
	At               time.Time
}

// Transition is one recorded change of active mode.
type Transition struct {
	At     time.Time
	From   string
	To     string
	Reason string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type; safe to use after the lock is released.
type Snapshot struct {
	Mode             string
	MenuIndex        int
	MenuItem         string
	SchedulerRunning bool
	Reading          *Reading
	Counts           Counts
	History          []Transition
	HistoryDropped   bool
	StartTime        time.Time
	Now              time.Time
	Config           Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu      sync.RWMutex
	snap    Snapshot
	history *history
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		history: newHistory(DefaultHistory),
	}
}

// SetMode records the active mode, menu position and scheduler state.
// Called by the controller after every Step.
func (t *Tracker) SetMode(mode string, menuIndex int, menuItem string, schedulerRunning bool) {
	t.mu.Lock()
	t.snap.Mode = mode
	t.snap.MenuIndex = menuIndex
	t.snap.MenuItem = menuItem
	t.snap.SchedulerRunning = schedulerRunning
	t.mu.Unlock()
}

// RecordTransition appends tr to the history and counts it.
func (t *Tracker) RecordTransition(tr Transition) {
	t.mu.Lock()
	t.history.push(tr)
	t.snap.Counts.Transitions++
	t.mu.Unlock()
}

// SetReading stores a successful measurement.
func (t *Tracker) SetReading(tempC, humidity float64, at time.Time) {
	t.mu.Lock()
	t.snap.Reading = &Reading{TemperatureC: tempC, RelativeHumidity: humidity, At: at}
	t.snap.Counts.SensorReads++
	t.mu.Unlock()
}

// IncToggle counts a consumed toggle activation.
func (t *Tracker) IncToggle() { t.inc(func(c *Counts) { c.Toggles++ }) }

// IncClockFrame counts a clock frame drawn by the refresh callback.
func (t *Tracker) IncClockFrame() { t.inc(func(c *Counts) { c.ClockFrames++ }) }

// IncRTCError counts a skipped clock frame.
func (t *Tracker) IncRTCError() { t.inc(func(c *Counts) { c.RTCErrors++ }) }

// IncSensorError counts a measurement that failed after its retry.
func (t *Tracker) IncSensorError() { t.inc(func(c *Counts) { c.SensorErrors++ }) }

// IncDisplayError counts a failed peripheral write.
func (t *Tracker) IncDisplayError() { t.inc(func(c *Counts) { c.DisplayErrors++ }) }

func (t *Tracker) inc(f func(*Counts)) {
	t.mu.Lock()
	f(&t.snap.Counts)
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	if s.Reading != nil {
		r := *s.Reading
		s.Reading = &r
	}
	s.History = t.history.all()
	s.HistoryDropped = t.history.overflow
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

package internal

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/envclock/internal/bus"
	"github.com/sweeney/envclock/internal/controller"
	"github.com/sweeney/envclock/internal/display"
	"github.com/sweeney/envclock/internal/gpio"
	"github.com/sweeney/envclock/internal/input"
	"github.com/sweeney/envclock/internal/logger"
	"github.com/sweeney/envclock/internal/menu"
	"github.com/sweeney/envclock/internal/rtc"
	"github.com/sweeney/envclock/internal/scheduler"
	"github.com/sweeney/envclock/internal/sensor"
	"github.com/sweeney/envclock/internal/status"
)

const (
	lcdAddr      = 0x27
	pollInterval = 100 * time.Millisecond
	settle       = 50 * time.Millisecond
)

var startTime = time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

// step is one main-loop iteration: the navigation levels read on this poll
// and whether a toggle edge arrived since the previous one.
type step struct {
	sample gpio.Sample
	toggle bool
}

type rig struct {
	bus     *bus.FakeBus
	reader  *gpio.FakeReader
	sched   *scheduler.Scheduler
	seg     *display.FakeSegment
	tracker *status.Tracker
	ctrl    *controller.Controller
}

// newRig wires the real display, clock and sensor drivers to one shared
// fake I²C bus. withSensor controls whether the AHT20 answers.
func newRig(t *testing.T, withSensor bool) *rig {
	t.Helper()

	devices := []uint16{0x3c, lcdAddr, rtc.Addr}
	if withSensor {
		devices = append(devices, sensor.AHT20Addr)
	}
	b := bus.NewFakeBus(devices...)
	b.Reply = func(addr uint16, w, r []byte) error {
		switch {
		case addr == rtc.Addr && len(w) == 1 && w[0] == 0x00 && len(r) >= 7:
			// 2026-10-17 08:00:00 in BCD
			copy(r, []byte{0x00, 0x00, 0x08, 0x07, 0x17, 0x10, 0x26})
		case addr == sensor.AHT20Addr && len(w) == 0 && len(r) == 7:
			// calibrated, idle; 50% and 25C
			copy(r, []byte{0x08, 0x80, 0x00, 0x06, 0x00, 0x00, 0x00})
		case addr == sensor.AHT20Addr && len(r) == 1:
			r[0] = 0x08
		}
		return nil
	}

	skip := append([]uint16{rtc.Addr, sensor.AHT20Addr}, display.OLEDAddrs...)
	found, err := bus.FirstDevice(b, skip...)
	if err != nil {
		t.Fatalf("find character display: %v", err)
	}
	if found != lcdAddr {
		t.Fatalf("expected LCD at %#x, found %#x", lcdAddr, found)
	}
	lcd, err := display.NewLCD(b, found, display.DefaultLCDWidth, display.DefaultLCDHeight)
	if err != nil {
		t.Fatalf("NewLCD: %v", err)
	}
	canvas, _, err := display.NewOLED(b)
	if err != nil {
		t.Fatalf("NewOLED: %v", err)
	}
	splash, err := display.Splash()
	if err != nil {
		t.Fatalf("Splash: %v", err)
	}

	r := &rig{
		bus:     b,
		reader:  gpio.NewFakeReader([]gpio.Sample{{}}),
		seg:     &display.FakeSegment{},
		tracker: status.NewTracker(startTime, status.Config{PollMs: 100, DebounceMs: 50, RefreshMs: 1000}),
	}

	in := input.New(nil, settle)
	r.reader.OnToggle(in.OnEdge)
	in.Bind(r.reader)

	// The refresh timer never fires; clock frames come from entry only.
	r.sched = scheduler.New(logger.Nop(), scheduler.WithTicker(func(time.Duration) (<-chan time.Time, func()) {
		return make(chan time.Time), func() {}
	}))
	t.Cleanup(r.sched.Stop)

	poller := sensor.NewPoller(sensor.NewAHT20(b), logger.Nop(), sensor.WithSleep(func(ctx context.Context, d time.Duration) error {
		return ctx.Err()
	}))

	r.ctrl = controller.New(controller.Deps{
		Input:     in,
		Menu:      menu.Default(),
		Scheduler: r.sched,
		Sensor:    poller,
		Clock:     rtc.NewDS1307(b),
		Graphic:   canvas,
		Character: lcd,
		Segment:   r.seg,
		Splash:    splash,
		Status:    r.tracker,
		Log:       logger.Nop(),
		Refresh:   time.Second,
	})
	if err := r.ctrl.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

// run simulates the main loop over the scripted steps and returns the
// transitions that changed something, keyed by step index.
func (r *rig) run(t *testing.T, steps []step) map[int]controller.Transition {
	t.Helper()
	got := map[int]controller.Transition{}
	for i, s := range steps {
		r.reader.Set(s.sample.Up, s.sample.Down)
		if s.toggle {
			r.reader.Toggle(1)
		}
		now := startTime.Add(time.Duration(i) * pollInterval)
		tr, err := r.ctrl.Step(context.Background(), now)
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if running := r.sched.Running(); running != (r.ctrl.State() == controller.ClockActive) {
			t.Fatalf("step %d: scheduler running=%v in %s", i, running, r.ctrl.State())
		}
		if tr.Changed() {
			got[i] = tr
		}
	}
	return got
}

var (
	idle = gpio.Sample{}
	up   = gpio.Sample{Up: true}
	down = gpio.Sample{Down: true}
)

// TestIntegrationFullFlow drives every mode through the real drivers.
func TestIntegrationFullFlow(t *testing.T) {
	r := newRig(t, true)

	steps := []step{
		{idle, false}, // t=0
		{idle, true},  // t=100ms: enter clock
		{idle, false}, // t=200ms
		{up, false},   // t=300ms: up pending
		{up, false},   // t=400ms: up stable, exit
		{idle, false}, // t=500ms
		{idle, false}, // t=600ms: up released
		{down, false}, // t=700ms
		{down, false}, // t=800ms: down stable, next
		{idle, false}, // t=900ms
		{idle, false}, // t=1000ms
		{idle, true},  // t=1100ms: enter environment
		{idle, true},  // t=1200ms: remeasure
		{up, false},   // t=1300ms
		{up, false},   // t=1400ms: exit
		{idle, false}, // t=1500ms
		{idle, false}, // t=1600ms
	}

	want := map[int]struct {
		event controller.Event
		to    controller.State
	}{
		1:  {controller.EventEnter, controller.ClockActive},
		4:  {controller.EventExit, controller.MenuBrowsing},
		8:  {controller.EventNext, controller.MenuBrowsing},
		11: {controller.EventEnter, controller.EnvironmentActive},
		12: {controller.EventRemeasure, controller.EnvironmentActive},
		14: {controller.EventExit, controller.MenuBrowsing},
	}

	got := r.run(t, steps)
	if len(got) != len(want) {
		t.Fatalf("expected %d transitions, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		tr, ok := got[i]
		if !ok {
			t.Errorf("step %d: expected %s, got nothing", i, w.event)
			continue
		}
		if tr.Event != w.event || tr.To != w.to {
			t.Errorf("step %d: expected %s to %s, got %s to %s", i, w.event, w.to, tr.Event, tr.To)
		}
	}

	if r.ctrl.State() != controller.MenuBrowsing || r.ctrl.MenuIndex() != 0 {
		t.Errorf("expected menu at 0, got %s at %d", r.ctrl.State(), r.ctrl.MenuIndex())
	}

	// Segment display: clock minutes and seconds, then two readings, blanked
	// on each exit.
	var shown []string
	for _, w := range r.seg.Writes() {
		if w.Text != "" {
			shown = append(shown, w.Text)
		}
	}
	wantShown := []string{"0000", "2550", "2550"}
	if len(shown) != len(wantShown) {
		t.Fatalf("segment texts: got %q, want %q", shown, wantShown)
	}
	for i := range wantShown {
		if shown[i] != wantShown[i] {
			t.Errorf("segment %d: got %q, want %q", i, shown[i], wantShown[i])
		}
	}
	if r.seg.Last() != (display.SegmentWrite{}) {
		t.Errorf("segment should be blank in the menu, got %+v", r.seg.Last())
	}

	if len(r.bus.Writes(0x3c)) == 0 {
		t.Error("expected OLED traffic")
	}
	if len(r.bus.Writes(lcdAddr)) == 0 {
		t.Error("expected LCD traffic")
	}

	snap := r.tracker.Snapshot()
	if snap.Counts.Transitions != 6 || snap.Counts.Toggles != 3 {
		t.Errorf("counts: %+v", snap.Counts)
	}
	if snap.Counts.SensorErrors != 0 {
		t.Errorf("expected no sensor errors, got %d", snap.Counts.SensorErrors)
	}
	if snap.Reading == nil || snap.Reading.TemperatureC != 25 || snap.Reading.RelativeHumidity != 50 {
		t.Errorf("reading: got %+v", snap.Reading)
	}
}

func TestIntegrationSensorAbsent(t *testing.T) {
	r := newRig(t, false)

	got := r.run(t, []step{
		{down, false},
		{down, false}, // next
		{idle, false},
		{idle, false},
		{idle, true}, // enter environment
	})

	tr, ok := got[4]
	if !ok || tr.To != controller.EnvironmentActive {
		t.Fatalf("expected environment entry at step 4, got %+v", got)
	}
	if r.seg.Last().Text != "----" {
		t.Errorf("segment: got %q, want placeholder", r.seg.Last().Text)
	}
	snap := r.tracker.Snapshot()
	if snap.Reading != nil {
		t.Errorf("expected no reading, got %+v", snap.Reading)
	}
	if snap.Counts.SensorErrors != 1 {
		t.Errorf("sensor errors: got %d, want 1", snap.Counts.SensorErrors)
	}
}

func TestIntegrationStatusPayload(t *testing.T) {
	r := newRig(t, true)
	r.run(t, []step{
		{down, false},
		{down, false},
		{idle, false},
		{idle, false},
		{idle, true},
	})

	var out status.StatusJSON
	if err := json.Unmarshal(status.FormatJSON(r.tracker.Snapshot()), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	s := out.Status
	if s.Mode != "ENVIRONMENT" || s.MenuItem != "Temp/Humidity" || s.MenuIndex != 1 {
		t.Errorf("mode fields: %+v", s)
	}
	if s.SchedulerRunning {
		t.Error("scheduler should not run in ENVIRONMENT")
	}
	if s.Reading == nil || s.Reading.TemperatureF != 77 {
		t.Errorf("reading: %+v", s.Reading)
	}
	if len(s.History) != 2 || s.History[1].To != "ENVIRONMENT" || s.History[1].Reason != "enter" {
		t.Errorf("history: %+v", s.History)
	}
	if s.Config.PollMs != 100 || s.Config.RefreshMs != 1000 {
		t.Errorf("config: %+v", s.Config)
	}
}

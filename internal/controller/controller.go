// Package controller is the mode state machine. It runs on the main loop,
// consuming button input once per iteration, and owns the lifecycle of the
// clock refresh timer: the timer runs exactly while the clock view is active.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/envclock/internal/display"
	"github.com/sweeney/envclock/internal/input"
	"github.com/sweeney/envclock/internal/logger"
	"github.com/sweeney/envclock/internal/menu"
	"github.com/sweeney/envclock/internal/rtc"
	"github.com/sweeney/envclock/internal/scheduler"
	"github.com/sweeney/envclock/internal/sensor"
	"github.com/sweeney/envclock/internal/status"
)

// Input is the per-iteration view of the buttons.
type Input interface {
	ConsumeToggle() bool
	PollNavigation(now time.Time) (input.Navigation, error)
}

// Scheduler runs the clock refresh callback.
type Scheduler interface {
	Start(interval time.Duration, fn func()) error
	Stop()
	Running() bool
}

// Measurer takes one environment reading, including any settle delay and retry.
type Measurer interface {
	Measure(ctx context.Context) (sensor.Reading, error)
}

// Deps are the collaborators a Controller drives. Splash, Status, Log and
// Refresh are optional.
type Deps struct {
	Input     Input
	Menu      *menu.Menu
	Scheduler Scheduler
	Sensor    Measurer
	Clock     rtc.Source
	Graphic   display.Graphic
	Character display.Character
	Segment   display.Segment
	Splash    *display.Bitmap
	Status    *status.Tracker
	Log       *logger.Logger
	Refresh   time.Duration
}

// Controller is the mode state machine. Step and Run must be called from
// a single goroutine.
type Controller struct {
	in      Input
	menu    *menu.Menu
	sched   Scheduler
	sensor  Measurer
	clock   rtc.Source
	graphic display.Graphic
	lcd     display.Character
	seg     display.Segment
	splash  *display.Bitmap
	status  *status.Tracker
	log     *logger.Logger
	refresh time.Duration

	state State
}

// New creates a controller in MenuBrowsing with the first item selected.
func New(d Deps) *Controller {
	c := &Controller{
		in:      d.Input,
		menu:    d.Menu,
		sched:   d.Scheduler,
		sensor:  d.Sensor,
		clock:   d.Clock,
		graphic: d.Graphic,
		lcd:     d.Character,
		seg:     d.Segment,
		splash:  d.Splash,
		status:  d.Status,
		log:     d.Log,
		refresh: d.Refresh,
		state:   MenuBrowsing,
	}
	if c.menu == nil {
		c.menu = menu.Default()
	}
	if c.status == nil {
		c.status = status.NewTracker(time.Now(), status.Config{})
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	if c.refresh <= 0 {
		c.refresh = scheduler.DefaultInterval
	}
	c.menu.Reset()
	c.publish()
	return c
}

// State returns the active mode.
func (c *Controller) State() State {
	return c.state
}

// MenuIndex returns the selected menu item.
func (c *Controller) MenuIndex() int {
	return c.menu.Index()
}

// Init draws the menu and blanks the other displays.
func (c *Controller) Init() error {
	err := errors.Join(
		blankPeripherals(c.lcd, c.seg),
		drawMenu(c.graphic, c.menu),
	)
	c.publish()
	return c.countErr(err)
}

// Step evaluates one main-loop iteration. At most one transition happens
// per Step, chosen in this order: open the selected mode on toggle, leave
// a mode on up, re-measure on toggle in environment mode, then move the
// menu selection. The toggle is consumed on every Step so one press never
// acts twice. A returned error reports failed peripheral I/O; the
// transition has still happened.
func (c *Controller) Step(ctx context.Context, now time.Time) (Transition, error) {
	toggle := c.in.ConsumeToggle()
	if toggle {
		c.status.IncToggle()
	}

	nav, navErr := c.in.PollNavigation(now)

	var (
		tr  Transition
		err error
	)
	switch {
	case c.state == MenuBrowsing && toggle:
		tr, err = c.enter(ctx, now)
	case c.state != MenuBrowsing && nav.Up:
		tr, err = c.exit()
	case c.state == EnvironmentActive && toggle:
		tr, err = c.showReading(ctx, EventRemeasure, now)
	case c.state == MenuBrowsing && nav.DownPressed:
		tr, err = c.navigate(EventNext, c.menu.Next)
	case c.state == MenuBrowsing && nav.UpPressed:
		tr, err = c.navigate(EventPrevious, c.menu.Previous)
	default:
		tr = Transition{From: c.state, To: c.state}
	}

	if tr.Changed() {
		c.status.RecordTransition(status.Transition{
			At:     now,
			From:   tr.From.String(),
			To:     tr.To.String(),
			Reason: tr.Event.String(),
		})
		c.log.Debugw("transition", "event", tr.Event, "from", tr.From, "to", tr.To, "index", c.menu.Index())
	}
	c.publish()

	return tr, errors.Join(navErr, c.countErr(err))
}

func (c *Controller) enter(ctx context.Context, now time.Time) (Transition, error) {
	switch c.menu.Current() {
	case menu.Clock:
		return c.enterClock()
	case menu.Environment:
		return c.showReading(ctx, EventEnter, now)
	default:
		return Transition{From: c.state, To: c.state}, nil
	}
}

// enterClock draws the first frame from the main loop and then hands the
// displays to the refresh callback by starting the timer.
func (c *Controller) enterClock() (Transition, error) {
	from := c.state
	drawErr := errors.Join(blankPeripherals(c.lcd, c.seg), c.drawClockFrame())

	if err := c.sched.Start(c.refresh, c.refreshClock); err != nil {
		// Stay in the menu so the timer and the mode never disagree.
		return Transition{From: from, To: from}, errors.Join(
			fmt.Errorf("start clock refresh: %w", err),
			blankPeripherals(c.lcd, c.seg),
			drawMenu(c.graphic, c.menu),
		)
	}
	c.state = ClockActive
	return Transition{Event: EventEnter, From: from, To: ClockActive}, drawErr
}

// exit stops the timer before anything else touches a display.
func (c *Controller) exit() (Transition, error) {
	from := c.state
	c.sched.Stop()
	c.state = MenuBrowsing
	c.menu.Reset()
	err := errors.Join(
		blankPeripherals(c.lcd, c.seg),
		drawMenu(c.graphic, c.menu),
	)
	return Transition{Event: EventExit, From: from, To: MenuBrowsing}, err
}

// showReading measures once and renders the result, or placeholders when
// the sensor gave nothing after its retry.
func (c *Controller) showReading(ctx context.Context, ev Event, now time.Time) (Transition, error) {
	from := c.state
	c.state = EnvironmentActive

	var shown *sensor.Reading
	r, err := c.sensor.Measure(ctx)
	if err != nil {
		c.status.IncSensorError()
		c.log.Warnw("sensor reading unavailable", "err", err)
	} else {
		shown = &r
		c.status.SetReading(r.TemperatureC, r.RelativeHumidity, now)
		c.log.Debugw("sensor reading", "temp_c", r.TemperatureC, "temp_f", r.Fahrenheit(), "humidity", r.RelativeHumidity)
	}

	return Transition{Event: ev, From: from, To: EnvironmentActive}, drawEnvironment(c.graphic, c.lcd, c.seg, shown)
}

func (c *Controller) navigate(ev Event, move func() bool) (Transition, error) {
	if !move() {
		return Transition{From: c.state, To: c.state}, nil
	}
	return Transition{Event: ev, From: MenuBrowsing, To: MenuBrowsing}, drawMenu(c.graphic, c.menu)
}

// refreshClock is the timer callback. It runs on the scheduler goroutine
// and is the only display writer while the clock view is active.
func (c *Controller) refreshClock() {
	if err := c.drawClockFrame(); err != nil {
		c.status.IncDisplayError()
		c.log.Debugw("clock frame write failed", "err", err)
	}
}

// drawClockFrame reads the RTC and redraws. A failed read skips the frame.
func (c *Controller) drawClockFrame() error {
	t, err := c.clock.Now()
	if err != nil {
		c.status.IncRTCError()
		c.log.Debugw("rtc read failed, skipping frame", "err", err)
		return nil
	}
	c.status.IncClockFrame()
	return drawClock(c.graphic, c.seg, c.splash, t)
}

// Shutdown stops the timer and blanks every display.
func (c *Controller) Shutdown() error {
	c.sched.Stop()
	c.graphic.Clear()
	err := errors.Join(blankPeripherals(c.lcd, c.seg), c.graphic.Flush())
	c.publish()
	return err
}

// Run draws the menu and then calls Step on every tick until ctx is done.
// Peripheral errors are logged and the loop continues.
func (c *Controller) Run(ctx context.Context, tick <-chan time.Time, now func() time.Time) error {
	if err := c.Init(); err != nil {
		c.log.Warnw("initial draw failed", "err", err)
	}
	defer func() {
		if err := c.Shutdown(); err != nil {
			c.log.Warnw("shutdown blanking failed", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			if _, err := c.Step(ctx, now()); err != nil {
				c.log.Warnw("step", "state", c.state, "err", err)
			}
		}
	}
}

func (c *Controller) publish() {
	c.status.SetMode(c.state.String(), c.menu.Index(), c.menu.Current().String(), c.sched.Running())
}

func (c *Controller) countErr(err error) error {
	if err != nil {
		c.status.IncDisplayError()
	}
	return err
}

// Command envclock shows either a real-time clock or the room temperature
// and humidity on an OLED, a character LCD and a four digit segment display.
// A toggle button opens the selected view; up and down move through the menu.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/sweeney/envclock/internal/bus"
	"github.com/sweeney/envclock/internal/config"
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

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "envclock: %v\n", err)
		os.Exit(2)
	}

	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatalw("fatal", "err", err)
	}
}

func run(cfg config.Config, log *logger.Logger) error {
	buses := bus.NewSet(nil)
	defer closeLogged(log, "i2c buses", buses.Close)

	if cfg.SetRTC {
		return setRTC(buses, cfg.I2C.RTC, log)
	}

	closeMem, err := openGPIOMem()
	if err != nil {
		return fmt.Errorf("map gpio memory: %w", err)
	}
	defer closeLogged(log, "gpio memory", closeMem)

	// Character display: bound to the first device found on its bus.
	lcdBus, err := buses.Get(cfg.I2C.LCD)
	if err != nil {
		return fmt.Errorf("open lcd bus: %w", err)
	}
	lcdAddr, err := bus.FirstDevice(lcdBus, sharedAddrs(cfg)...)
	if err != nil {
		return fmt.Errorf("find character display: %w", err)
	}
	lcd, err := display.NewLCD(lcdBus, lcdAddr, uint8(cfg.LCDWidth), uint8(cfg.LCDHeight))
	if err != nil {
		return err
	}
	log.Infow("character display found", "bus", cfg.I2C.LCD, "addr", fmt.Sprintf("%#02x", lcdAddr))

	oledBus, err := buses.Get(cfg.I2C.OLED)
	if err != nil {
		return fmt.Errorf("open oled bus: %w", err)
	}
	canvas, oled, err := display.NewOLED(oledBus)
	if err != nil {
		return fmt.Errorf("init oled: %w", err)
	}
	defer closeLogged(log, "oled", oled.Halt)

	clk, dio, err := display.NewTM1637Pins(cfg.Segment.CLK, cfg.Segment.DIO)
	if err != nil {
		return err
	}
	segment := display.NewTM1637(clk, dio)

	splash, err := display.Splash()
	if err != nil {
		return err
	}

	rtcBus, err := buses.Get(cfg.I2C.RTC)
	if err != nil {
		return fmt.Errorf("open rtc bus: %w", err)
	}
	ds := rtc.NewDS1307(rtcBus)
	var clock rtc.Source = ds
	if !ds.Running() {
		log.Warnw("rtc oscillator halted, using the system clock", "hint", "envclock --set-rtc")
		clock = rtc.System{}
	}

	dev, err := newSensor(cfg, buses)
	if err != nil {
		return err
	}
	poller := sensor.NewPoller(dev, log.Named("sensor"),
		sensor.WithSettle(cfg.Sensor.Settle),
		sensor.WithTimeout(cfg.Sensor.Timeout))

	// The toggle handler runs on the gpiocdev event goroutine and only sets
	// the pending flag.
	in := input.New(nil, cfg.Debounce)
	reader, err := gpio.NewRealReader(cfg.GPIOChip, cfg.Pins, in.OnEdge)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer closeLogged(log, "gpio", reader.Close)
	in.Bind(reader)

	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.Poll.Milliseconds(),
		DebounceMs:  cfg.Debounce.Milliseconds(),
		RefreshMs:   cfg.Refresh.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		SensorKind:  cfg.Sensor.Kind,
	})

	sched := scheduler.New(log.Named("scheduler"))
	ctrl := controller.New(controller.Deps{
		Input:     in,
		Menu:      menu.Default(),
		Scheduler: sched,
		Sensor:    poller,
		Clock:     clock,
		Graphic:   canvas,
		Character: lcd,
		Segment:   segment,
		Splash:    splash,
		Status:    tracker,
		Log:       log.Named("controller"),
		Refresh:   cfg.Refresh,
	})

	if cfg.PrintState {
		if err := ctrl.Init(); err != nil {
			return err
		}
		os.Stdout.Write(append(status.FormatJSON(tracker.Snapshot()), '\n'))
		return nil
	}

	log.Infow("started", "status", string(status.FormatStatusEvent(tracker.Snapshot(), "STARTUP", "")))

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	var heartbeat <-chan time.Time
	if cfg.Heartbeat > 0 {
		hb := time.NewTicker(cfg.Heartbeat)
		defer hb.Stop()
		heartbeat = hb.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, tracker, log, time.Now, ticker.C, heartbeat, sigCh)
}

// runLoop runs the controller until a signal arrives, logging a status
// line on every heartbeat tick. It returns nil on a clean shutdown.
func runLoop(ctrl *controller.Controller, tracker *status.Tracker, log *logger.Logger, now func() time.Time, tick, heartbeat <-chan time.Time, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Run(ctx, tick, now)
	}()

	for {
		select {
		case s := <-sig:
			log.Infow("received signal, shutting down", "signal", s)
			cancel()
			err := <-done
			snap := tracker.Snapshot()
			log.Infow("shutdown", "status", string(status.FormatStatusEvent(snap, "SHUTDOWN", signalName(s))))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err

		case <-heartbeat:
			snap := tracker.Snapshot()
			log.Infow("heartbeat", "status", string(status.FormatStatusEvent(snap, "HEARTBEAT", "")))

		case err := <-done:
			return err
		}
	}
}

func newSensor(cfg config.Config, buses *bus.Set) (sensor.Sensor, error) {
	switch cfg.Sensor.Kind {
	case config.SensorAHT20:
		b, err := buses.Get(cfg.I2C.Sensor)
		if err != nil {
			return nil, fmt.Errorf("open sensor bus: %w", err)
		}
		return sensor.NewAHT20(b), nil
	case config.SensorDHT22:
		return sensor.NewDHT22(cfg.Sensor.Pin), nil
	default:
		return nil, fmt.Errorf("unknown sensor kind %q", cfg.Sensor.Kind)
	}
}

// sharedAddrs lists the fixed addresses of devices configured on the same
// bus as the LCD, so the scan does not bind to them.
func sharedAddrs(cfg config.Config) []uint16 {
	var skip []uint16
	if cfg.I2C.OLED == cfg.I2C.LCD {
		skip = append(skip, display.OLEDAddrs...)
	}
	if cfg.I2C.RTC == cfg.I2C.LCD {
		skip = append(skip, rtc.Addr)
	}
	if cfg.Sensor.Kind == config.SensorAHT20 && cfg.I2C.Sensor == cfg.I2C.LCD {
		skip = append(skip, sensor.AHT20Addr)
	}
	return skip
}

// setRTC copies the system clock into the DS1307.
func setRTC(buses *bus.Set, name string, log *logger.Logger) error {
	b, err := buses.Get(name)
	if err != nil {
		return fmt.Errorf("open rtc bus: %w", err)
	}
	now := time.Now().UTC()
	if err := rtc.NewDS1307(b).Set(now); err != nil {
		return err
	}
	log.Infow("rtc set", "time", now.Format(time.RFC3339))
	return nil
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

func closeLogged(log *logger.Logger, what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Warnw("close failed", "what", what, "err", err)
	}
}

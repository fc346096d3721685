// Package config loads daemon settings from defaults, an optional YAML file,
// ENVCLOCK_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sweeney/envclock/internal/gpio"
	"github.com/sweeney/envclock/internal/input"
	"github.com/sweeney/envclock/internal/logger"
	"github.com/sweeney/envclock/internal/scheduler"
	"github.com/sweeney/envclock/internal/sensor"
)

// Sensor kinds.
const (
	SensorDHT22 = "dht22"
	SensorAHT20 = "aht20"
)

// Defaults not owned by another package.
const (
	DefaultPoll      = 100 * time.Millisecond
	DefaultHeartbeat = 15 * time.Minute
	DefaultBus       = "1"
	DefaultSegCLK    = 27
	DefaultSegDIO    = 17
	DefaultDHTPin    = 4
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

var searchPaths = []string{"/etc/envclock", "."}

// SegmentPins are the TM1637 clock and data lines (BCM numbering).
type SegmentPins struct {
	CLK int
	DIO int
}

// Buses names the I²C bus of each device, as accepted by i2creg.Open.
type Buses struct {
	LCD    string
	OLED   string
	RTC    string
	Sensor string
}

// Sensor selects and tunes the environment sensor.
type Sensor struct {
	Kind    string
	Pin     int
	Settle  time.Duration
	Timeout time.Duration
}

// Config is the validated daemon configuration.
type Config struct {
	LogLevel   string
	Poll       time.Duration
	Debounce   time.Duration
	Refresh    time.Duration
	Heartbeat  time.Duration
	GPIOChip   string
	Pins       gpio.Pins
	Segment    SegmentPins
	I2C        Buses
	LCDWidth   int
	LCDHeight  int
	Sensor     Sensor
	PrintState bool
	SetRTC     bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", logger.InfoLevel)
	v.SetDefault("poll", DefaultPoll)
	v.SetDefault("debounce", input.DefaultSettle)
	v.SetDefault("refresh", scheduler.DefaultInterval)
	v.SetDefault("heartbeat", DefaultHeartbeat)
	v.SetDefault("gpio.chip", gpio.DefaultChip)
	v.SetDefault("pins.up", gpio.DefaultPinUp)
	v.SetDefault("pins.down", gpio.DefaultPinDown)
	v.SetDefault("pins.toggle", gpio.DefaultPinToggle)
	v.SetDefault("pins.tm1637.clk", DefaultSegCLK)
	v.SetDefault("pins.tm1637.dio", DefaultSegDIO)
	v.SetDefault("pins.dht", DefaultDHTPin)
	v.SetDefault("i2c.lcd", DefaultBus)
	v.SetDefault("i2c.oled", DefaultBus)
	v.SetDefault("i2c.rtc", DefaultBus)
	v.SetDefault("i2c.sensor", DefaultBus)
	v.SetDefault("lcd.width", 16)
	v.SetDefault("lcd.height", 2)
	v.SetDefault("sensor.kind", SensorDHT22)
	v.SetDefault("sensor.settle", sensor.DefaultSettle)
	v.SetDefault("sensor.timeout", sensor.DefaultTimeout)
	v.SetDefault("print_state", false)
	v.SetDefault("set_rtc", false)
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"log-level":   "log.level",
	"poll":        "poll",
	"debounce":    "debounce",
	"refresh":     "refresh",
	"heartbeat":   "heartbeat",
	"pin-up":      "pins.up",
	"pin-down":    "pins.down",
	"pin-toggle":  "pins.toggle",
	"sensor":      "sensor.kind",
	"print-state": "print_state",
	"set-rtc":     "set_rtc",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("envclock", pflag.ContinueOnError)
	fs.String("config", "", "Path to a YAML config file")
	fs.String("log-level", logger.InfoLevel, "Log level (debug, info, warn, error)")
	fs.Duration("poll", DefaultPoll, "Main loop polling interval")
	fs.Duration("debounce", input.DefaultSettle, "Button debounce duration")
	fs.Duration("refresh", scheduler.DefaultInterval, "Clock view refresh interval")
	fs.Duration("heartbeat", DefaultHeartbeat, "Heartbeat interval (0 to disable)")
	fs.Int("pin-up", gpio.DefaultPinUp, "BCM pin number for the up button")
	fs.Int("pin-down", gpio.DefaultPinDown, "BCM pin number for the down button")
	fs.Int("pin-toggle", gpio.DefaultPinToggle, "BCM pin number for the toggle button")
	fs.String("sensor", SensorDHT22, "Environment sensor (dht22, aht20)")
	fs.Bool("print-state", false, "Print the initial state as JSON and exit")
	fs.Bool("set-rtc", false, "Set the RTC from the system clock and exit")
	return fs
}

// Load parses args (without the program name) and returns the merged,
// validated configuration.
func Load(args []string) (Config, error) {
	return load(args, searchPaths)
}

func load(args []string, paths []string) (Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("ENVCLOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	if err := readFile(v, fs, paths); err != nil {
		return Config{}, err
	}

	cfg := Config{
		LogLevel:  v.GetString("log.level"),
		Poll:      v.GetDuration("poll"),
		Debounce:  v.GetDuration("debounce"),
		Refresh:   v.GetDuration("refresh"),
		Heartbeat: v.GetDuration("heartbeat"),
		GPIOChip:  v.GetString("gpio.chip"),
		Pins: gpio.Pins{
			Up:     v.GetInt("pins.up"),
			Down:   v.GetInt("pins.down"),
			Toggle: v.GetInt("pins.toggle"),
		},
		Segment: SegmentPins{
			CLK: v.GetInt("pins.tm1637.clk"),
			DIO: v.GetInt("pins.tm1637.dio"),
		},
		I2C: Buses{
			LCD:    v.GetString("i2c.lcd"),
			OLED:   v.GetString("i2c.oled"),
			RTC:    v.GetString("i2c.rtc"),
			Sensor: v.GetString("i2c.sensor"),
		},
		LCDWidth:  v.GetInt("lcd.width"),
		LCDHeight: v.GetInt("lcd.height"),
		Sensor: Sensor{
			Kind:    strings.ToLower(v.GetString("sensor.kind")),
			Pin:     v.GetInt("pins.dht"),
			Settle:  v.GetDuration("sensor.settle"),
			Timeout: v.GetDuration("sensor.timeout"),
		},
		PrintState: v.GetBool("print_state"),
		SetRTC:     v.GetBool("set_rtc"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// readFile reads --config if given, otherwise the first envclock.yaml found
// on paths. A missing default file is not an error.
func readFile(v *viper.Viper, fs *pflag.FlagSet, paths []string) error {
	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("envclock")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Validate checks intervals, pin assignments and the sensor kind.
func (c Config) Validate() error {
	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.LogLevel)
	}
	if c.Poll <= 0 {
		return fmt.Errorf("%w: poll must be positive", ErrInvalid)
	}
	if c.Refresh <= 0 {
		return fmt.Errorf("%w: refresh must be positive", ErrInvalid)
	}
	if c.Debounce < 0 || c.Heartbeat < 0 {
		return fmt.Errorf("%w: debounce and heartbeat must not be negative", ErrInvalid)
	}
	if c.Sensor.Settle < 0 || c.Sensor.Timeout <= 0 {
		return fmt.Errorf("%w: sensor settle must not be negative and timeout must be positive", ErrInvalid)
	}
	if c.LCDWidth <= 0 || c.LCDWidth > 40 || c.LCDHeight <= 0 || c.LCDHeight > 4 {
		return fmt.Errorf("%w: lcd geometry %dx%d", ErrInvalid, c.LCDWidth, c.LCDHeight)
	}

	pins := map[string]int{
		"pins.up":         c.Pins.Up,
		"pins.down":       c.Pins.Down,
		"pins.toggle":     c.Pins.Toggle,
		"pins.tm1637.clk": c.Segment.CLK,
		"pins.tm1637.dio": c.Segment.DIO,
	}
	switch c.Sensor.Kind {
	case SensorDHT22:
		pins["pins.dht"] = c.Sensor.Pin
	case SensorAHT20:
	default:
		return fmt.Errorf("%w: unknown sensor kind %q", ErrInvalid, c.Sensor.Kind)
	}

	seen := make(map[int]string, len(pins))
	for key, pin := range pins {
		if pin < 0 || pin > 27 {
			return fmt.Errorf("%w: %s=%d is not a BCM GPIO", ErrInvalid, key, pin)
		}
		if other, dup := seen[pin]; dup {
			return fmt.Errorf("%w: %s and %s share pin %d", ErrInvalid, key, other, pin)
		}
		seen[pin] = key
	}
	return nil
}

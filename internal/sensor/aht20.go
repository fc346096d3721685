package sensor

import (
	"context"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/aht20"
)

// AHT20Addr is the AHT20's fixed I²C address.
const AHT20Addr = aht20.Address

// AHT20 reads an AHT20 over I²C. The driver blocks for the conversion
// time (80ms per poll, up to three polls).
type AHT20 struct {
	mu         sync.Mutex
	dev        aht20.Device
	configured bool
}

// NewAHT20 binds to an AHT20 at its fixed address on bus.
func NewAHT20(bus drivers.I2C) *AHT20 {
	return &AHT20{dev: aht20.New(bus)}
}

// Measure triggers a conversion and reads it back.
func (a *AHT20) Measure(ctx context.Context) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.configured {
		a.dev.Configure()
		a.configured = true
	}
	if err := a.dev.Read(); err != nil {
		if err == aht20.ErrTimeout {
			return Reading{}, ErrTimeout
		}
		return Reading{}, err
	}
	return Reading{
		TemperatureC:     float64(a.dev.DeciCelsius()) / 10,
		RelativeHumidity: float64(a.dev.DeciRelHumidity()) / 10,
	}, nil
}

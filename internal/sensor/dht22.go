package sensor

import (
	"fmt"
	"time"
)

// DHT22 timing.
const (
	// dhtMinInterval is the shortest time between two conversions.
	dhtMinInterval = 2 * time.Second
	// dhtStartLow is how long the host holds the line low to request a frame.
	dhtStartLow = 2 * time.Millisecond
	// dhtLevelTimeout bounds every level the sensor drives while sending.
	dhtLevelTimeout = 200 * time.Microsecond
	// dhtOneThreshold separates a 0 bit (~27µs high) from a 1 bit (~70µs high).
	dhtOneThreshold = 48 * time.Microsecond
	dhtFrameBits    = 40
)

// decodeDHTBits packs 40 high-pulse widths into the 5-byte frame.
func decodeDHTBits(highs []time.Duration) ([5]byte, error) {
	var frame [5]byte
	if len(highs) != dhtFrameBits {
		return frame, fmt.Errorf("%w: got %d bits", ErrTimeout, len(highs))
	}
	for i, h := range highs {
		frame[i/8] <<= 1
		if h > dhtOneThreshold {
			frame[i/8] |= 1
		}
	}
	return frame, nil
}

// decodeDHT22 converts a checked frame to a Reading. Humidity and
// temperature are big-endian tenths; temperature uses a sign bit.
func decodeDHT22(frame [5]byte) (Reading, error) {
	sum := frame[0] + frame[1] + frame[2] + frame[3]
	if sum != frame[4] {
		return Reading{}, fmt.Errorf("%w: %#02x != %#02x", ErrChecksum, sum, frame[4])
	}

	hum := float64(uint16(frame[0])<<8|uint16(frame[1])) / 10
	raw := uint16(frame[2]&0x7f)<<8 | uint16(frame[3])
	temp := float64(raw) / 10
	if frame[2]&0x80 != 0 {
		temp = -temp
	}
	return Reading{TemperatureC: temp, RelativeHumidity: hum}, nil
}

package input

import "time"

// Debouncer tracks the stable level of one button line.
// A new level is accepted only after it has been observed continuously for
// the settle duration. Time is always passed in; the debouncer never sleeps.
type Debouncer struct {
	settle time.Duration

	// Current stable (debounced) level
	stable bool
	// Level observed but not yet stable
	pending bool
	// Whether a pending level is being timed
	timing bool
	// Time when pending level was first observed
	pendingSince time.Time
}

// NewDebouncer creates a debouncer whose stable level starts released.
func NewDebouncer(settle time.Duration) *Debouncer {
	return &Debouncer{settle: settle}
}

// Update feeds one raw sample. It returns the stable level and whether the
// stable level changed on this sample.
func (d *Debouncer) Update(level bool, now time.Time) (bool, bool) {
	if level == d.stable {
		// Bounce back to the stable level, drop any pending change
		d.timing = false
		return d.stable, false
	}

	if !d.timing || d.pending != level {
		d.pending = level
		d.pendingSince = now
		d.timing = true
	}

	if now.Sub(d.pendingSince) >= d.settle {
		d.stable = level
		d.timing = false
		return d.stable, true
	}

	return d.stable, false
}

// Stable returns the current debounced level.
func (d *Debouncer) Stable() bool {
	return d.stable
}

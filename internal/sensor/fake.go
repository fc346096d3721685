package sensor

import (
	"context"
	"sync"
)

// Result is one scripted outcome of Fake.Measure.
type Result struct {
	Reading Reading
	Err     error
}

// Fake is a scripted Sensor. Each Measure consumes the next result; the last
// one repeats.
type Fake struct {
	mu      sync.Mutex
	Results []Result
	calls   int
}

// NewFake creates a Fake returning the given results in order.
func NewFake(results ...Result) *Fake {
	return &Fake{Results: results}
}

// Measure returns the next scripted result.
func (f *Fake) Measure(ctx context.Context) (Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.Results) == 0 {
		return Reading{}, ErrTimeout
	}
	r := f.Results[0]
	if len(f.Results) > 1 {
		f.Results = f.Results[1:]
	}
	return r.Reading, r.Err
}

// Calls returns the number of Measure calls.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

package input

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/envclock/internal/gpio"
)

func TestConsumeToggleClears(t *testing.T) {
	m := New(gpio.NewFakeReader(nil), 0)

	if m.ConsumeToggle() {
		t.Error("no edge yet: expected false")
	}

	m.OnEdge()
	if !m.ConsumeToggle() {
		t.Error("after edge: expected true")
	}
	if m.ConsumeToggle() {
		t.Error("second consume without edge: expected false")
	}
}

func TestMultipleEdgesCollapse(t *testing.T) {
	m := New(gpio.NewFakeReader(nil), 0)

	m.OnEdge()
	m.OnEdge()
	m.OnEdge()

	if !m.ConsumeToggle() {
		t.Error("expected one pending activation")
	}
	if m.ConsumeToggle() {
		t.Error("edges must not queue")
	}
	if m.Edges() != 3 {
		t.Errorf("expected 3 edges counted, got %d", m.Edges())
	}
}

func TestEdgesFromOtherGoroutine(t *testing.T) {
	m := New(gpio.NewFakeReader(nil), 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.OnEdge()
		}()
	}
	wg.Wait()

	if !m.ConsumeToggle() {
		t.Error("expected pending activation")
	}
	if m.ConsumeToggle() {
		t.Error("expected activation cleared")
	}
}

func TestPollNavigationDebounces(t *testing.T) {
	reader := gpio.NewFakeReader([]gpio.Sample{
		{Down: true},
		{Down: true},
		{Down: true},
		{Down: false},
	})
	m := New(reader, 50*time.Millisecond)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	nav, err := m.PollNavigation(now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nav.Down || nav.DownPressed {
		t.Errorf("first sample should not be stable: %+v", nav)
	}

	nav, _ = m.PollNavigation(now.Add(50 * time.Millisecond))
	if !nav.Down || !nav.DownPressed {
		t.Errorf("expected debounced press edge: %+v", nav)
	}

	nav, _ = m.PollNavigation(now.Add(100 * time.Millisecond))
	if !nav.Down || nav.DownPressed {
		t.Errorf("held: expected level without edge: %+v", nav)
	}

	nav, _ = m.PollNavigation(now.Add(150 * time.Millisecond))
	if !nav.Down {
		t.Errorf("release not yet settled: %+v", nav)
	}
	if nav.Up || nav.UpPressed {
		t.Errorf("up never pressed: %+v", nav)
	}
}

func TestPollNavigationReadError(t *testing.T) {
	reader := gpio.NewFakeReader([]gpio.Sample{{Up: true}})
	reader.ReadError = errors.New("bus gone")
	m := New(reader, 0)

	nav, err := m.PollNavigation(time.Now())
	if err == nil {
		t.Fatal("expected error")
	}
	if nav != (Navigation{}) {
		t.Errorf("expected zero navigation on error, got %+v", nav)
	}
}

func TestBindLate(t *testing.T) {
	m := New(nil, 0)
	if _, err := m.PollNavigation(time.Now()); !errors.Is(err, ErrUnbound) {
		t.Errorf("expected ErrUnbound, got %v", err)
	}

	// Edges before Bind are kept.
	m.OnEdge()
	m.Bind(gpio.NewFakeReader([]gpio.Sample{{Up: true}}))

	nav, err := m.PollNavigation(time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !nav.Up {
		t.Error("expected up after bind")
	}
	if !m.ConsumeToggle() {
		t.Error("edge before bind was lost")
	}
}

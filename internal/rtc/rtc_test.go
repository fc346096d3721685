package rtc

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/envclock/internal/bus"
)

const ds1307Addr = 0x68

func TestDS1307Now(t *testing.T) {
	b := bus.NewFakeBus(ds1307Addr)
	b.Reply = func(addr uint16, w, r []byte) error {
		if len(w) == 1 && w[0] == 0x00 && len(r) >= 7 {
			// 2026-10-17 (Sat) 12:30:45 in BCD
			copy(r, []byte{0x45, 0x30, 0x12, 0x07, 0x17, 0x10, 0x26})
		}
		return nil
	}

	got, err := NewDS1307(b).Now()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, time.October, 17, 12, 30, 45, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDS1307NowBusError(t *testing.T) {
	b := bus.NewFakeBus() // nothing answers
	if _, err := NewDS1307(b).Now(); err == nil {
		t.Error("expected error when device is absent")
	}
}

func TestDS1307SetStartsOscillator(t *testing.T) {
	b := bus.NewFakeBus(ds1307Addr)
	b.Reply = func(addr uint16, w, r []byte) error {
		if len(r) > 0 {
			r[0] = 0x80 // halted
		}
		return nil
	}

	d := NewDS1307(b)
	if d.Running() {
		t.Error("expected halted oscillator")
	}
	if err := d.Set(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var timeWrite, halt []byte
	for _, w := range b.Writes(ds1307Addr) {
		switch len(w) {
		case 8:
			timeWrite = w
		case 2:
			halt = w
		}
	}
	if len(timeWrite) != 8 || timeWrite[0] != 0x00 || timeWrite[1] != 0x05 || timeWrite[7] != 0x26 {
		t.Errorf("unexpected time write % x", timeWrite)
	}
	if len(halt) != 2 || halt[0] != 0x00 || halt[1]&0x80 != 0 {
		t.Errorf("expected halt bit cleared, got % x", halt)
	}
}

func TestFakeSequence(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &Fake{Times: []time.Time{t0, t0.Add(time.Second)}}

	got, _ := f.Now()
	if !got.Equal(t0) {
		t.Errorf("expected %v, got %v", t0, got)
	}
	got, _ = f.Now()
	got2, _ := f.Now()
	if !got.Equal(got2) {
		t.Error("last time should repeat")
	}

	f.SetErr(errors.New("i2c timeout"))
	if _, err := f.Now(); err == nil {
		t.Error("expected scripted error")
	}
	if f.Calls() != 4 {
		t.Errorf("expected 4 calls, got %d", f.Calls())
	}
}

func TestSystemIsUTC(t *testing.T) {
	now, err := System{}.Now()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if now.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", now.Location())
	}
}

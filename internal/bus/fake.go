package bus

import (
	"errors"
	"sync"

	"periph.io/x/conn/v3/physic"
)

// ErrNack is returned by FakeBus for addresses with no device.
var ErrNack = errors.New("bus: no ack")

// Tx is one recorded transaction.
type Tx struct {
	Addr uint16
	W    []byte
	R    int
}

// FakeBus is a test double for i2c.BusCloser. Devices lists the addresses
// that acknowledge; Reply, if set, fills read buffers.
type FakeBus struct {
	Name    string
	Devices map[uint16]bool
	Reply   func(addr uint16, w, r []byte) error

	mu     sync.Mutex
	Txs    []Tx
	Closed bool
}

// NewFakeBus creates a fake bus with devices at the given addresses.
func NewFakeBus(addrs ...uint16) *FakeBus {
	f := &FakeBus{Name: "fake", Devices: map[uint16]bool{}}
	for _, a := range addrs {
		f.Devices[a] = true
	}
	return f
}

func (f *FakeBus) String() string { return f.Name }

// Tx records the transaction and acks only configured devices.
func (f *FakeBus) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	f.Txs = append(f.Txs, Tx{Addr: addr, W: append([]byte(nil), w...), R: len(r)})
	present := f.Devices[addr]
	reply := f.Reply
	f.mu.Unlock()

	if !present {
		return ErrNack
	}
	if reply != nil {
		return reply(addr, w, r)
	}
	return nil
}

// SetSpeed is accepted and ignored.
func (f *FakeBus) SetSpeed(physic.Frequency) error { return nil }

// Close marks the bus closed.
func (f *FakeBus) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// Writes returns the write payloads sent to addr.
func (f *FakeBus) Writes(addr uint16) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]byte
	for _, tx := range f.Txs {
		if tx.Addr == addr && len(tx.W) > 0 {
			out = append(out, tx.W)
		}
	}
	return out
}

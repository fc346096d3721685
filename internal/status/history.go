package status

// DefaultHistory is the number of transitions kept.
const DefaultHistory = 16

// history is a fixed-capacity FIFO of recent transitions. The oldest entry
// is overwritten when full.
// Not safe for concurrent use; Tracker synchronizes.
type history struct {
	buf      []Transition
	capacity int
	head     int // next write position
	count    int
	overflow bool // true once any entry was overwritten
}

func newHistory(capacity int) *history {
	return &history{
		buf:      make([]Transition, capacity),
		capacity: capacity,
	}
}

func (h *history) push(tr Transition) {
	h.buf[h.head] = tr
	h.head = (h.head + 1) % h.capacity
	if h.count == h.capacity {
		h.overflow = true
		return
	}
	h.count++
}

// all returns the entries oldest first without removing them.
func (h *history) all() []Transition {
	if h.count == 0 {
		return nil
	}

	result := make([]Transition, h.count)
	start := (h.head - h.count + h.capacity) % h.capacity
	for i := 0; i < h.count; i++ {
		result[i] = h.buf[(start+i)%h.capacity]
	}
	return result
}

func (h *history) len() int {
	return h.count
}

package status

import "testing"

func TestHistoryEmpty(t *testing.T) {
	h := newHistory(4)
	if got := h.all(); got != nil {
		t.Errorf("expected nil from empty history, got %d items", len(got))
	}
}

func TestHistoryKeepsOrder(t *testing.T) {
	h := newHistory(10)
	for _, to := range []string{"A", "B", "C"} {
		h.push(Transition{To: to})
	}

	got := h.all()
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	for i, want := range []string{"A", "B", "C"} {
		if got[i].To != want {
			t.Errorf("item %d: expected %s, got %s", i, want, got[i].To)
		}
	}

	// all does not drain
	if h.len() != 3 {
		t.Errorf("expected len 3 after all, got %d", h.len())
	}
}

func TestHistoryOverflow(t *testing.T) {
	h := newHistory(3)
	for _, to := range []string{"A", "B", "C", "D", "E"} {
		h.push(Transition{To: to})
	}

	if !h.overflow {
		t.Error("expected overflow after exceeding capacity")
	}
	got := h.all()
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	for i, want := range []string{"C", "D", "E"} {
		if got[i].To != want {
			t.Errorf("item %d: expected %s, got %s", i, want, got[i].To)
		}
	}
}

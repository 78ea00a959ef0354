package integrators

import "testing"

func TestHistoryRing(t *testing.T) {
	var h history[float64]
	if h.len() != 0 {
		t.Fatalf("new ring should be empty, got %d", h.len())
	}

	for n := 0; n < 3; n++ {
		h.push(sample[float64]{n: n, y: []float64{float64(n)}})
	}
	if h.len() != 3 {
		t.Fatalf("expected 3 entries, got %d", h.len())
	}
	if got := h.back(0).n; got != 2 {
		t.Errorf("newest entry: got %d, expected 2", got)
	}

	for n := 3; n < 10; n++ {
		h.push(sample[float64]{n: n, y: []float64{float64(n)}})
	}
	if h.len() != historyLen {
		t.Fatalf("ring should stay at capacity %d, got %d", historyLen, h.len())
	}

	for k := 0; k < historyLen; k++ {
		if got := h.back(k).n; got != 9-k {
			t.Errorf("back(%d): got %d, expected %d", k, got, 9-k)
		}
	}

	ordered := h.ordered()
	for k, s := range ordered {
		if s.n != 6+k {
			t.Errorf("ordered[%d]: got %d, expected %d", k, s.n, 6+k)
		}
		if s.y[0] != float64(6+k) {
			t.Errorf("ordered[%d]: payload %v", k, s.y)
		}
	}
}

func TestCloseTo(t *testing.T) {
	tests := []struct {
		a, b float64
		want bool
	}{
		{1, 1, true},
		{1, 1 + 1e-9, true},
		{1, 1 + 1e-4, false},
		{0, 1e-9, true},
		{0, 1e-7, false},
		{1000, 1000.005, true},
	}

	for _, tt := range tests {
		if got := closeTo(tt.a, tt.b); got != tt.want {
			t.Errorf("closeTo(%g, %g) = %v, expected %v", tt.a, tt.b, got, tt.want)
		}
	}
}

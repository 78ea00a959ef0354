package stochastic

import (
	"math"
	"testing"
)

func TestMontyHallComplementary(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		stick := PlayMontyHall(NewSource(seed), false)
		swap := PlayMontyHall(NewSource(seed), true)
		if stick == swap {
			t.Fatalf("seed %d: stick=%v switch=%v, expected opposite outcomes", seed, stick, swap)
		}
	}
}

func TestMontyHallRates(t *testing.T) {
	const games = 30000
	tests := []struct {
		name       string
		switchDoor bool
		want       float64
	}{
		{"stick", false, 1.0 / 3},
		{"switch", true, 2.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally := PlayMany(NewSource(42), games, tt.switchDoor)
			if tally.Games != games {
				t.Fatalf("expected %d games, got %d", games, tally.Games)
			}
			// five standard deviations of a binomial proportion
			tol := 5 * math.Sqrt(tt.want*(1-tt.want)/games)
			if math.Abs(tally.Rate()-tt.want) > tol {
				t.Errorf("win rate %.4f, expected %.4f ± %.4f", tally.Rate(), tt.want, tol)
			}
		})
	}
}

func TestTallyRateEmpty(t *testing.T) {
	if r := (Tally{}).Rate(); r != 0 {
		t.Errorf("empty tally rate %f", r)
	}
}

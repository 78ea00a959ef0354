// Package stochastic holds the Monte Carlo exercises.
package stochastic

import "math/rand/v2"

const doors = 3

// PlayMontyHall plays one round and reports whether the contestant wins the car.
// The host always opens a goat door the contestant did not pick. Two rounds
// drawn from identically seeded sources differ only in the final choice, so
// sticking and switching give complementary outcomes.
func PlayMontyHall(rng *rand.Rand, switchDoor bool) bool {
	car := rng.IntN(doors)
	pick := rng.IntN(doors)

	var open int
	if pick == car {
		// two goat doors to choose from
		open = (pick + 1 + rng.IntN(doors-1)) % doors
	} else {
		open = doors - pick - car
	}

	if switchDoor {
		pick = doors - pick - open
	}
	return pick == car
}

// Tally is the outcome of a batch of games.
type Tally struct {
	Games int
	Wins  int
}

func (t Tally) Rate() float64 {
	if t.Games == 0 {
		return 0
	}
	return float64(t.Wins) / float64(t.Games)
}

// PlayMany plays games rounds with the same strategy.
func PlayMany(rng *rand.Rand, games int, switchDoor bool) Tally {
	t := Tally{Games: games}
	for i := 0; i < games; i++ {
		if PlayMontyHall(rng, switchDoor) {
			t.Wins++
		}
	}
	return t
}

// NewSource returns a deterministic generator for seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

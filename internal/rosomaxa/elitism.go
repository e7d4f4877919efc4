package rosomaxa

import (
	"math/rand"

	"vrpsolve/internal/objective"
)

// Elitism is the fixed-size elite tier: the best individuals seen so far,
// kept sorted best-first. Best-known fitness never regresses because
// eviction only removes from the tail.
type Elitism struct {
	cmp   objective.Comparator
	max   int
	items []*Individual
}

func NewElitism(cmp objective.Comparator, max int) *Elitism {
	if max < 1 {
		max = 1
	}
	return &Elitism{cmp: cmp, max: max}
}

// Add inserts the individual in rank order. It returns true when the
// individual became the new best. Individuals with fitness equal to an
// existing member are dropped to keep the tier from filling with clones.
func (e *Elitism) Add(ind *Individual) bool {
	pos := 0
	for pos < len(e.items) {
		c := e.cmp.Compare(ind.Fitness, e.items[pos].Fitness)
		if c == objective.Equal {
			return false
		}
		if c == objective.Better {
			break
		}
		pos++
	}
	if pos >= e.max {
		return false
	}
	e.items = append(e.items, nil)
	copy(e.items[pos+1:], e.items[pos:])
	e.items[pos] = ind
	if len(e.items) > e.max {
		e.items = e.items[:e.max]
	}
	return pos == 0
}

// Best returns the top-ranked individual, or nil while empty.
func (e *Elitism) Best() *Individual {
	if len(e.items) == 0 {
		return nil
	}
	return e.items[0]
}

// Ranked returns the tier best-first. Callers must not mutate the slice.
func (e *Elitism) Ranked() []*Individual { return e.items }

// Select picks a member biased toward the top: the better of two uniform
// draws.
func (e *Elitism) Select(rng *rand.Rand) *Individual {
	n := len(e.items)
	if n == 0 {
		return nil
	}
	a, b := rng.Intn(n), rng.Intn(n)
	if b < a {
		a = b
	}
	return e.items[a]
}

func (e *Elitism) Size() int { return len(e.items) }

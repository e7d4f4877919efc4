package hyper

import (
	"math"
	"math/rand"
	"testing"
)

var testNames = []string{"ruin_random_greedy", "ruin_shaw_regret", "ls_two_opt", "cx_route_exchange"}

func TestProbabilitiesSumToOne(t *testing.T) {
	s := NewSelector(testNames, Config{})
	checkDistribution(t, s)
	// still normalized after skewed rewards
	for i := 0; i < 200; i++ {
		s.Record(0, OutcomeNewBest)
		s.Record(1, OutcomeRejected)
	}
	checkDistribution(t, s)
}

func checkDistribution(t *testing.T, s *Selector) {
	t.Helper()
	probs := s.Probabilities()
	total := 0.0
	for i, p := range probs {
		if p <= 0 {
			t.Fatalf("probability %d not strictly positive: %v", i, p)
		}
		total += p
	}
	if math.Abs(total-1) > 1e-9 {
		t.Fatalf("probabilities sum to %v", total)
	}
}

func TestExplorationFloor(t *testing.T) {
	s := NewSelector(testNames, Config{Floor: 0.1})
	for i := 0; i < 500; i++ {
		s.Record(0, OutcomeNewBest)
	}
	probs := s.Probabilities()
	floorShare := 0.1 / float64(len(testNames))
	for i := 1; i < len(probs); i++ {
		if probs[i] < floorShare-1e-12 {
			t.Fatalf("operator %d starved below the floor: %v < %v", i, probs[i], floorShare)
		}
	}
}

func TestRewardShiftsProbability(t *testing.T) {
	s := NewSelector(testNames, Config{})
	before := s.Probabilities()[0]
	for i := 0; i < 50; i++ {
		s.Record(0, OutcomeNewBest)
	}
	after := s.Probabilities()[0]
	if after <= before {
		t.Fatalf("rewarded operator should gain probability: %v -> %v", before, after)
	}
}

func TestDecayForgetsOldReward(t *testing.T) {
	s := NewSelector(testNames, Config{Decay: 0.5})
	for i := 0; i < 20; i++ {
		s.Record(0, OutcomeNewBest)
	}
	peak := s.Probabilities()[0]
	// a long run of nothing decays the lead away
	for i := 0; i < 100; i++ {
		s.Record(0, OutcomeRejected)
	}
	if got := s.Probabilities()[0]; got >= peak {
		t.Fatalf("decay should erode the lead: peak=%v now=%v", peak, got)
	}
}

func TestSelectDeterministicForFixedSeed(t *testing.T) {
	build := func() []int {
		s := NewSelector(testNames, Config{})
		rng := rand.New(rand.NewSource(42))
		out := make([]int, 100)
		for i := range out {
			out[i] = s.Select(rng)
			s.Record(out[i], OutcomeImproved)
		}
		return out
	}
	a, b := build(), build()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("selection diverged at step %d: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestSelectCoversAllOperators(t *testing.T) {
	s := NewSelector(testNames, Config{})
	// heavily reward one operator, then confirm others still get picked
	for i := 0; i < 300; i++ {
		s.Record(0, OutcomeNewBest)
	}
	rng := rand.New(rand.NewSource(9))
	seen := map[int]bool{}
	for i := 0; i < 5000; i++ {
		seen[s.Select(rng)] = true
	}
	for i := range testNames {
		if !seen[i] {
			t.Fatalf("operator %d never selected despite the floor", i)
		}
	}
}

func TestStats(t *testing.T) {
	s := NewSelector(testNames, Config{})
	s.Record(0, OutcomeNewBest)
	s.Record(0, OutcomeImproved)
	s.Record(1, OutcomeInfeasible)
	stats := s.Stats()
	if stats[0].Applications != 2 || stats[0].NewBest != 1 || stats[0].Improvements != 2 {
		t.Fatalf("unexpected stats for operator 0: %+v", stats[0])
	}
	if stats[1].Infeasible != 1 {
		t.Fatalf("unexpected stats for operator 1: %+v", stats[1])
	}
	if stats[0].Probability <= stats[1].Probability {
		t.Fatalf("rewarded operator should rank above punished one")
	}
}

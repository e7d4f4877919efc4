// Package hyper implements the adaptive operator-selection controller: a
// decayed-reward bandit over the operator registry with a guaranteed
// exploration floor.
package hyper

import (
	"math/rand"
	"sync"
)

// Outcome classifies one operator application.
type Outcome int

const (
	// OutcomeNewBest improved on the best-known solution.
	OutcomeNewBest Outcome = iota
	// OutcomeImproved beat its parent but not the best known.
	OutcomeImproved
	// OutcomeAccepted produced a candidate the population kept for
	// diversity without any fitness win.
	OutcomeAccepted
	// OutcomeRejected produced a candidate the population discarded.
	OutcomeRejected
	// OutcomeInfeasible produced no candidate at all.
	OutcomeInfeasible
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNewBest:
		return "new_best"
	case OutcomeImproved:
		return "improved"
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	default:
		return "infeasible"
	}
}

// reward per outcome tier
var rewards = map[Outcome]float64{
	OutcomeNewBest:    1.0,
	OutcomeImproved:   0.4,
	OutcomeAccepted:   0.1,
	OutcomeRejected:   0.0,
	OutcomeInfeasible: 0.0,
}

// OperatorStats are the per-operator counters for one solve.
type OperatorStats struct {
	Name         string  `json:"name"`
	Applications int     `json:"applications"`
	NewBest      int     `json:"newBest"`
	Improvements int     `json:"improvements"`
	Infeasible   int     `json:"infeasible"`
	Weight       float64 `json:"weight"`
	Probability  float64 `json:"probability"`
}

// Config tunes the controller.
type Config struct {
	// Decay is the exponential decay applied to accumulated reward on every
	// recorded outcome, so recent results dominate old ones.
	Decay float64
	// Floor is the minimum share of selection probability spread uniformly
	// across operators; no operator ever starves completely.
	Floor float64
}

func (c Config) withDefaults() Config {
	if c.Decay <= 0 || c.Decay >= 1 {
		c.Decay = 0.95
	}
	if c.Floor <= 0 || c.Floor >= 1 {
		c.Floor = 0.1
	}
	return c
}

// Selector tracks per-operator reward and picks the next operator to apply.
// State is scoped to a single solve; create a fresh Selector per solve so
// concurrent solves do not interfere.
type Selector struct {
	mu      sync.Mutex
	cfg     Config
	names   []string
	weights []float64
	stats   []OperatorStats
}

// NewSelector primes uniform weights over the named operators.
func NewSelector(names []string, cfg Config) *Selector {
	s := &Selector{cfg: cfg.withDefaults(), names: names}
	s.weights = make([]float64, len(names))
	s.stats = make([]OperatorStats, len(names))
	for i := range s.weights {
		s.weights[i] = 1.0
		s.stats[i].Name = names[i]
	}
	return s
}

// Select draws an operator index by roulette wheel over the floored
// probability distribution. The rng is owned by the caller.
func (s *Selector) Select(rng *rand.Rand) int {
	s.mu.Lock()
	probs := s.probabilitiesLocked()
	s.mu.Unlock()
	r := rng.Float64()
	acc := 0.0
	for i, p := range probs {
		acc += p
		if r <= acc {
			return i
		}
	}
	return len(probs) - 1
}

// Record folds an outcome into the operator's decayed reward.
func (s *Selector) Record(idx int, outcome Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx < 0 || idx >= len(s.weights) {
		return
	}
	s.weights[idx] = s.weights[idx]*s.cfg.Decay + rewards[outcome]
	st := &s.stats[idx]
	st.Applications++
	switch outcome {
	case OutcomeNewBest:
		st.NewBest++
		st.Improvements++
	case OutcomeImproved:
		st.Improvements++
	case OutcomeInfeasible:
		st.Infeasible++
	}
}

// Probabilities returns the current selection distribution. It always sums
// to 1 and every entry is strictly positive.
func (s *Selector) Probabilities() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.probabilitiesLocked()
}

func (s *Selector) probabilitiesLocked() []float64 {
	n := len(s.weights)
	probs := make([]float64, n)
	total := 0.0
	for _, w := range s.weights {
		total += w
	}
	uniform := 1.0 / float64(n)
	for i, w := range s.weights {
		share := uniform
		if total > 0 {
			share = w / total
		}
		probs[i] = s.cfg.Floor*uniform + (1-s.cfg.Floor)*share
	}
	return probs
}

// Stats snapshots the per-operator counters with current weights and
// probabilities filled in.
func (s *Selector) Stats() []OperatorStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	probs := s.probabilitiesLocked()
	out := make([]OperatorStats, len(s.stats))
	copy(out, s.stats)
	for i := range out {
		out[i].Weight = s.weights[i]
		out[i].Probability = probs[i]
	}
	return out
}

// Package rosomaxa implements the diversity-preserving population manager:
// an elite tier for quality plus a growing self-organizing map that spreads
// the working set across feature space.
package rosomaxa

import (
	"vrpsolve/internal/objective"
	"vrpsolve/internal/solution"
)

// Individual wraps a solution with its provenance inside the population.
type Individual struct {
	Solution   *solution.Solution
	Fitness    objective.Fitness
	Generation int
	Operator   string

	weights []float64
}

// NewIndividual snapshots the solution's feature projection at admission
// time so later placement never re-reads mutable state.
func NewIndividual(s *solution.Solution, fitness objective.Fitness, generation int, op string) *Individual {
	return &Individual{
		Solution:   s,
		Fitness:    append(objective.Fitness(nil), fitness...),
		Generation: generation,
		Operator:   op,
		weights:    s.Weights(),
	}
}

// Weights is the feature vector used for SOM placement only.
func (i *Individual) Weights() []float64 { return i.weights }

// Clone deep-copies the individual for handing out as a parent.
func (i *Individual) Clone() *Individual {
	return &Individual{
		Solution:   i.Solution.Clone(),
		Fitness:    append(objective.Fitness(nil), i.Fitness...),
		Generation: i.Generation,
		Operator:   i.Operator,
		weights:    append([]float64(nil), i.weights...),
	}
}

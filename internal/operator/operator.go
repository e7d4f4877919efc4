// Package operator defines the search-operator contract the evolution loop
// selects from, plus the built-in ruin-recreate, local-search and crossover
// implementations.
package operator

import (
	"errors"
	"math/rand"

	"vrpsolve/internal/solution"
)

// ErrNoCandidate signals that an operator could not produce any candidate
// within its internal budget. It is a recoverable outcome recorded as zero
// reward, not an error that stops the search.
var ErrNoCandidate = errors.New("operator: no feasible candidate")

// Kind is the closed set of operator capability variants. The controller
// reasons uniformly about reward regardless of arity.
type Kind int

const (
	// KindMutate produces one candidate from one parent.
	KindMutate Kind = iota
	// KindCrossover produces one candidate from two parents.
	KindCrossover
)

type Operator interface {
	Name() string
	Kind() Kind
}

// Mutator consumes one parent. The parent is an exclusively-owned clone and
// may be mutated in place; the returned solution may alias it.
type Mutator interface {
	Operator
	Mutate(rng *rand.Rand, parent *solution.Solution) (*solution.Solution, error)
}

// Crossover consumes two parents under the same ownership rules.
type Crossover interface {
	Operator
	Combine(rng *rand.Rand, a, b *solution.Solution) (*solution.Solution, error)
}

// Registry is the fixed operator set for one solve.
type Registry struct {
	Operators []Operator
}

// NewRegistry validates the operator set.
func NewRegistry(ops ...Operator) (*Registry, error) {
	if len(ops) == 0 {
		return nil, errors.New("operator: empty registry")
	}
	seen := map[string]bool{}
	for _, op := range ops {
		if seen[op.Name()] {
			return nil, errors.New("operator: duplicate name " + op.Name())
		}
		seen[op.Name()] = true
	}
	return &Registry{Operators: ops}, nil
}

// DefaultRegistry is the stock operator mix: ruin-recreate pairs, the local
// search suite and a route-exchange crossover.
func DefaultRegistry() *Registry {
	reg, _ := NewRegistry(
		&RuinRecreate{Removal: RemovalRandom, Insertion: InsertGreedy, MaxRemove: 4},
		&RuinRecreate{Removal: RemovalShaw, Insertion: InsertRegret, MaxRemove: 6},
		&RuinRecreate{Removal: RemovalRandom, Insertion: InsertRegret, MaxRemove: 3},
		&LocalSearch{Move: MoveTwoOpt},
		&LocalSearch{Move: MoveOrOpt},
		&LocalSearch{Move: MoveCrossExchange},
		&LocalSearch{Move: MoveTwoOptStar},
		&RouteExchange{},
	)
	return reg
}

// Names lists operator names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.Operators))
	for i, op := range r.Operators {
		out[i] = op.Name()
	}
	return out
}

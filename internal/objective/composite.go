package objective

import (
	"fmt"

	"vrpsolve/internal/solution"
)

// Composite bundles the registered objectives with the comparator that
// orders their fitness vectors.
type Composite struct {
	Objectives []Objective
	Comparator Comparator
}

// Default is the standard multi-objective setup: minimize unassigned jobs
// first, then transport cost, then duration, compared lexicographically.
func Default() *Composite {
	return &Composite{
		Objectives: []Objective{UnassignedCount{}, TransportCost{}, TotalDuration{}},
		Comparator: Hierarchical{},
	}
}

// FromNames builds a composite from objective names, in the given priority
// order. Known names: unassigned, cost, duration, balance-duration,
// balance-load.
func FromNames(names []string) (*Composite, error) {
	if len(names) == 0 {
		return Default(), nil
	}
	objs := make([]Objective, 0, len(names))
	for _, n := range names {
		switch n {
		case "unassigned":
			objs = append(objs, UnassignedCount{})
		case "cost":
			objs = append(objs, TransportCost{})
		case "duration":
			objs = append(objs, TotalDuration{})
		case "balance-duration":
			objs = append(objs, NewDurationBalance())
		case "balance-load":
			objs = append(objs, NewLoadBalance())
		default:
			return nil, fmt.Errorf("unknown objective %q", n)
		}
	}
	return &Composite{Objectives: objs, Comparator: Hierarchical{}}, nil
}

// Evaluate returns the fitness vector for s, computing it at most once per
// distinct activity configuration via the solution's cache.
func (c *Composite) Evaluate(s *solution.Solution) Fitness {
	if cached, ok := s.CachedFitness(); ok {
		return cached
	}
	values := make([]float64, len(c.Objectives))
	for i, o := range c.Objectives {
		values[i] = o.Estimate(s)
	}
	s.CacheFitness(values)
	return values
}

// Compare orders two fitness vectors with the configured comparator.
func (c *Composite) Compare(a, b Fitness) Comparison {
	return c.Comparator.Compare(a, b)
}

// Names lists the registered objective names in fitness order.
func (c *Composite) Names() []string {
	out := make([]string, len(c.Objectives))
	for i, o := range c.Objectives {
		out[i] = o.Name()
	}
	return out
}

package operator

import (
	"math/rand"
	"sort"

	"vrpsolve/internal/solution"
)

// RouteExchange is a two-parent operator: the child starts from parent A and
// adopts one of parent B's routes wholesale. Jobs displaced by the adoption
// are reinserted greedily so the partition invariant holds.
type RouteExchange struct{}

func (RouteExchange) Name() string { return "cx_route_exchange" }

func (RouteExchange) Kind() Kind { return KindCrossover }

func (RouteExchange) Combine(rng *rand.Rand, a, b *solution.Solution) (*solution.Solution, error) {
	var donors []int
	for ri := range b.Routes {
		if len(b.Routes[ri].Order) > 0 {
			donors = append(donors, ri)
		}
	}
	if len(donors) == 0 {
		return nil, ErrNoCandidate
	}
	ri := donors[rng.Intn(len(donors))]
	donor := append([]int(nil), b.Routes[ri].Order...)

	child := a
	// free up every job the donor route will carry, plus the jobs currently
	// on the receiving route
	displaced := append([]int(nil), child.Routes[ri].Order...)
	child.Remove(append(append([]int(nil), donor...), displaced...))
	adopted := solution.Route{VehicleIdx: ri, Order: donor}
	if !child.FeasibleRoute(adopted) {
		return nil, ErrNoCandidate
	}
	child.AdoptRoute(ri, donor)

	pending := make([]int, 0, child.UnassignedCount())
	for j := range child.Unassigned() {
		pending = append(pending, j)
	}
	sort.Ints(pending)
	rng.Shuffle(len(pending), func(i, k int) { pending[i], pending[k] = pending[k], pending[i] })
	greedyInsert(child, pending)
	return child, nil
}

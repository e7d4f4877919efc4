package operator

import (
	"math/rand"

	"vrpsolve/internal/solution"
)

type Move string

const (
	MoveTwoOpt        Move = "two_opt"
	MoveOrOpt         Move = "or_opt"
	MoveCrossExchange Move = "cross_exchange"
	MoveTwoOptStar    Move = "two_opt_star"
)

// LocalSearch runs one improvement move family to a local optimum. Finding
// no improving move is an ErrNoCandidate outcome, not an error.
type LocalSearch struct {
	Move Move
}

func (o *LocalSearch) Name() string { return "ls_" + string(o.Move) }

func (o *LocalSearch) Kind() Kind { return KindMutate }

func (o *LocalSearch) Mutate(_ *rand.Rand, s *solution.Solution) (*solution.Solution, error) {
	var improved bool
	switch o.Move {
	case MoveOrOpt:
		improved = orOpt(s)
	case MoveCrossExchange:
		improved = crossExchange(s)
	case MoveTwoOptStar:
		improved = twoOptStar(s)
	default:
		improved = twoOpt(s)
	}
	if !improved {
		return nil, ErrNoCandidate
	}
	return s, nil
}

func routeDistance(s *solution.Solution, r solution.Route) float64 {
	if len(r.Order) == 0 {
		return 0
	}
	return s.ScheduleRoute(r).DistanceM
}

// twoOpt reverses intra-route segments while that shortens the route.
func twoOpt(s *solution.Solution) bool {
	any := false
	for ri := range s.Routes {
		r := s.Routes[ri]
		n := len(r.Order)
		if n < 3 {
			continue
		}
		changed := false
		improved := true
		for improved {
			improved = false
			base := routeDistance(s, r)
			for i := 0; i < n-1; i++ {
				for k := i + 1; k < n; k++ {
					cand := solution.Route{VehicleIdx: r.VehicleIdx, Order: append([]int(nil), r.Order...)}
					for a, b := i, k; a < b; a, b = a+1, b-1 {
						cand.Order[a], cand.Order[b] = cand.Order[b], cand.Order[a]
					}
					if !s.FeasibleRoute(cand) {
						continue
					}
					if d := routeDistance(s, cand); d+1e-6 < base {
						r = cand
						base = d
						improved = true
						changed = true
					}
				}
			}
		}
		if changed {
			s.ReplaceRoute(ri, r.Order)
			any = true
		}
	}
	return any
}

// orOpt relocates single jobs within their route.
func orOpt(s *solution.Solution) bool {
	any := false
	for ri := range s.Routes {
		r := s.Routes[ri]
		if len(r.Order) < 2 {
			continue
		}
		best := r
		bestDist := routeDistance(s, r)
		changed := false
		improved := true
		for improved {
			improved = false
			for i := 0; i < len(best.Order); i++ {
				for j := 0; j <= len(best.Order); j++ {
					if j == i || j == i+1 {
						continue
					}
					cand := solution.Route{VehicleIdx: best.VehicleIdx, Order: append([]int(nil), best.Order...)}
					job := cand.Order[i]
					cand.Order = append(cand.Order[:i], cand.Order[i+1:]...)
					at := j
					if at > i {
						at--
					}
					cand.Order = append(cand.Order[:at], append([]int{job}, cand.Order[at:]...)...)
					if !s.FeasibleRoute(cand) {
						continue
					}
					if d := routeDistance(s, cand); d+1e-6 < bestDist {
						best = cand
						bestDist = d
						improved = true
						changed = true
					}
				}
			}
		}
		if changed {
			s.ReplaceRoute(ri, best.Order)
			any = true
		}
	}
	return any
}

// crossExchange swaps single jobs across route pairs.
func crossExchange(s *solution.Solution) bool {
	m := len(s.Routes)
	if m < 2 {
		return false
	}
	any := false
	improved := true
	for improved {
		improved = false
		for a := 0; a < m; a++ {
			for b := a + 1; b < m; b++ {
				pa, pb := s.Routes[a], s.Routes[b]
				for i := 0; i < len(pa.Order); i++ {
					for j := 0; j < len(pb.Order); j++ {
						ca := solution.Route{VehicleIdx: pa.VehicleIdx, Order: append([]int(nil), pa.Order...)}
						cb := solution.Route{VehicleIdx: pb.VehicleIdx, Order: append([]int(nil), pb.Order...)}
						ca.Order[i], cb.Order[j] = cb.Order[j], ca.Order[i]
						if !s.FeasibleRoute(ca) || !s.FeasibleRoute(cb) {
							continue
						}
						before := routeDistance(s, pa) + routeDistance(s, pb)
						after := routeDistance(s, ca) + routeDistance(s, cb)
						if after+1e-6 < before {
							s.ReplaceRoute(a, ca.Order)
							s.ReplaceRoute(b, cb.Order)
							pa, pb = s.Routes[a], s.Routes[b]
							improved = true
							any = true
						}
					}
				}
			}
		}
	}
	return any
}

// twoOptStar exchanges short segments (length 1..2) across route pairs.
func twoOptStar(s *solution.Solution) bool {
	m := len(s.Routes)
	if m < 2 {
		return false
	}
	any := false
	improved := true
	for improved {
		improved = false
		for a := 0; a < m; a++ {
			for b := a + 1; b < m; b++ {
				pa, pb := s.Routes[a], s.Routes[b]
				bestGain := 0.0
				var bestA, bestB []int
				before := routeDistance(s, pa) + routeDistance(s, pb)
				for i := 0; i < len(pa.Order); i++ {
					for j := 0; j < len(pb.Order); j++ {
						for la := 1; la <= 2 && i+la <= len(pa.Order); la++ {
							for lb := 1; lb <= 2 && j+lb <= len(pb.Order); lb++ {
								ca := solution.Route{VehicleIdx: pa.VehicleIdx}
								cb := solution.Route{VehicleIdx: pb.VehicleIdx}
								segA := append([]int(nil), pa.Order[i:i+la]...)
								segB := append([]int(nil), pb.Order[j:j+lb]...)
								ca.Order = append(append(append([]int(nil), pa.Order[:i]...), segB...), pa.Order[i+la:]...)
								cb.Order = append(append(append([]int(nil), pb.Order[:j]...), segA...), pb.Order[j+lb:]...)
								if !s.FeasibleRoute(ca) || !s.FeasibleRoute(cb) {
									continue
								}
								after := routeDistance(s, ca) + routeDistance(s, cb)
								if gain := before - after; gain > bestGain+1e-6 {
									bestGain = gain
									bestA, bestB = ca.Order, cb.Order
								}
							}
						}
					}
				}
				if bestA != nil {
					s.ReplaceRoute(a, bestA)
					s.ReplaceRoute(b, bestB)
					improved = true
					any = true
				}
			}
		}
	}
	return any
}

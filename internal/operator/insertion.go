package operator

import (
	"math"
	"math/rand"

	"vrpsolve/internal/solution"
)

// bestPlacement finds the cheapest feasible insertion point for job j,
// returning the best and second-best deltas for regret scoring.
func bestPlacement(s *solution.Solution, j int) (ri, pos int, best, second float64) {
	ri, pos = -1, -1
	best, second = math.MaxFloat64, math.MaxFloat64
	for i := range s.Routes {
		for p := 0; p <= len(s.Routes[i].Order); p++ {
			if !s.CanInsertAt(i, p, j) {
				continue
			}
			d := s.InsertionDelta(i, p, j)
			if d < best {
				second = best
				best = d
				ri, pos = i, p
			} else if d < second {
				second = d
			}
		}
	}
	return ri, pos, best, second
}

// unassignReason picks the reason recorded when job j fits nowhere. If some
// route passes the static capacity/skill checks the blocker must be the
// timetable; otherwise the static reasons win.
func unassignReason(s *solution.Solution, j int) solution.UnassignedReason {
	sawCapacity, sawSkills := false, false
	for i := range s.Routes {
		reason, ok := s.CanServe(i, j)
		if ok {
			return solution.ReasonTimeWindow
		}
		switch reason {
		case solution.ReasonCapacity:
			sawCapacity = true
		case solution.ReasonSkills:
			sawSkills = true
		}
	}
	if sawCapacity {
		return solution.ReasonCapacity
	}
	if sawSkills {
		return solution.ReasonSkills
	}
	return solution.ReasonNoVehicle
}

// greedyInsert places jobs one by one at their globally cheapest feasible
// position; jobs that fit nowhere go to the unassigned set with a reason.
func greedyInsert(s *solution.Solution, jobs []int) {
	pending := append([]int(nil), jobs...)
	for len(pending) > 0 {
		bestJob, bestRoute, bestPos := -1, -1, -1
		bestDelta := math.MaxFloat64
		for idx, j := range pending {
			ri, pos, d, _ := bestPlacement(s, j)
			if ri >= 0 && d < bestDelta {
				bestJob, bestRoute, bestPos = idx, ri, pos
				bestDelta = d
			}
		}
		if bestJob == -1 {
			for _, j := range pending {
				s.MarkUnassigned(j, unassignReason(s, j))
			}
			return
		}
		s.Insert(bestRoute, bestPos, pending[bestJob])
		pending = append(pending[:bestJob], pending[bestJob+1:]...)
	}
}

// regretInsert prefers the job whose second-best placement is much worse
// than its best (regret-2), so hard-to-place jobs go first.
func regretInsert(s *solution.Solution, jobs []int) {
	pending := append([]int(nil), jobs...)
	for len(pending) > 0 {
		bestJob, bestRoute, bestPos := -1, -1, -1
		bestScore := -1.0
		for idx, j := range pending {
			ri, pos, best, second := bestPlacement(s, j)
			if ri < 0 {
				continue
			}
			regret := 0.0
			if second < math.MaxFloat64 {
				regret = second - best
			}
			if regret > bestScore {
				bestJob, bestRoute, bestPos = idx, ri, pos
				bestScore = regret
			}
		}
		if bestJob == -1 {
			for _, j := range pending {
				s.MarkUnassigned(j, unassignReason(s, j))
			}
			return
		}
		s.Insert(bestRoute, bestPos, pending[bestJob])
		pending = append(pending[:bestJob], pending[bestJob+1:]...)
	}
}

// GreedySeed builds an initial solution by repeated cheapest insertion in a
// randomized job order. It is the stock construction heuristic for callers
// that do not bring their own seeds.
func GreedySeed(rng *rand.Rand, s *solution.Solution) *solution.Solution {
	jobs := make([]int, 0, len(s.Problem.Jobs))
	for j := range s.Problem.Jobs {
		jobs = append(jobs, j)
	}
	rng.Shuffle(len(jobs), func(i, k int) { jobs[i], jobs[k] = jobs[k], jobs[i] })
	greedyInsert(s, jobs)
	return s
}

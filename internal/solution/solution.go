package solution

import (
	"fmt"
	"sort"

	"vrpsolve/internal/model"
)

// UnassignedReason explains why a job is not on any route.
type UnassignedReason string

const (
	ReasonCapacity   UnassignedReason = "capacity"
	ReasonSkills     UnassignedReason = "skills"
	ReasonTimeWindow UnassignedReason = "time_window"
	ReasonNoVehicle  UnassignedReason = "no_vehicle"
)

// Route is an ordered visit sequence for one vehicle. Order holds indices
// into Problem.Jobs.
type Route struct {
	VehicleIdx int
	Order      []int
}

// Solution is one candidate plan: a route per vehicle plus the unassigned
// set with reasons. Routes are owned by the Solution and never shared;
// operators work on clones. The fitness cache is invalidated by every
// mutation of the activity data.
type Solution struct {
	Problem *model.Problem
	Costs   Costs
	Routes  []Route

	unassigned map[int]UnassignedReason

	fitness    []float64
	hasFitness bool
}

// Empty returns a solution with one empty route per vehicle and every job
// unassigned.
func Empty(p *model.Problem, costs Costs) *Solution {
	s := &Solution{
		Problem:    p,
		Costs:      costs,
		Routes:     make([]Route, len(p.Vehicles)),
		unassigned: make(map[int]UnassignedReason, len(p.Jobs)),
	}
	for i := range s.Routes {
		s.Routes[i] = Route{VehicleIdx: i, Order: []int{}}
	}
	for j := range p.Jobs {
		s.unassigned[j] = ReasonNoVehicle
	}
	return s
}

// Clone deep-copies the solution. The fitness cache is carried over since it
// still matches the copied activity data.
func (s *Solution) Clone() *Solution {
	out := &Solution{
		Problem:    s.Problem,
		Costs:      s.Costs,
		Routes:     make([]Route, len(s.Routes)),
		unassigned: make(map[int]UnassignedReason, len(s.unassigned)),
		hasFitness: s.hasFitness,
	}
	for i, r := range s.Routes {
		out.Routes[i] = Route{VehicleIdx: r.VehicleIdx, Order: append([]int(nil), r.Order...)}
	}
	for j, reason := range s.unassigned {
		out.unassigned[j] = reason
	}
	if s.hasFitness {
		out.fitness = append([]float64(nil), s.fitness...)
	}
	return out
}

// CachedFitness returns the memoized objective vector, if valid.
func (s *Solution) CachedFitness() ([]float64, bool) {
	if !s.hasFitness {
		return nil, false
	}
	return s.fitness, true
}

// CacheFitness stores the objective vector for the current activity data.
func (s *Solution) CacheFitness(values []float64) {
	s.fitness = append(s.fitness[:0], values...)
	s.hasFitness = true
}

func (s *Solution) invalidate() { s.hasFitness = false }

// Unassigned returns job index -> reason. Callers must not mutate it.
func (s *Solution) Unassigned() map[int]UnassignedReason { return s.unassigned }

// UnassignedCount returns the size of the unassigned set.
func (s *Solution) UnassignedCount() int { return len(s.unassigned) }

// MarkUnassigned records a job as unassigned with a reason. The job must not
// be on any route.
func (s *Solution) MarkUnassigned(job int, reason UnassignedReason) {
	s.unassigned[job] = reason
	s.invalidate()
}

// Insert places job at pos in route ri and clears it from the unassigned set.
func (s *Solution) Insert(ri, pos, job int) {
	r := &s.Routes[ri]
	if pos < 0 || pos > len(r.Order) {
		pos = len(r.Order)
	}
	r.Order = append(r.Order, 0)
	copy(r.Order[pos+1:], r.Order[pos:])
	r.Order[pos] = job
	delete(s.unassigned, job)
	s.invalidate()
}

// Remove takes the given jobs off their routes and moves them to the
// unassigned set with ReasonNoVehicle until they are reinserted.
func (s *Solution) Remove(jobs []int) {
	if len(jobs) == 0 {
		return
	}
	rm := make(map[int]bool, len(jobs))
	for _, j := range jobs {
		rm[j] = true
	}
	for ri := range s.Routes {
		order := s.Routes[ri].Order[:0]
		for _, j := range s.Routes[ri].Order {
			if !rm[j] {
				order = append(order, j)
			}
		}
		s.Routes[ri].Order = order
	}
	for j := range rm {
		s.unassigned[j] = ReasonNoVehicle
	}
	s.invalidate()
}

// ReplaceRoute swaps the order of route ri wholesale.
func (s *Solution) ReplaceRoute(ri int, order []int) {
	s.Routes[ri].Order = order
	s.invalidate()
}

// AdoptRoute replaces route ri and clears the adopted jobs from the
// unassigned set. The jobs must not be on any other route.
func (s *Solution) AdoptRoute(ri int, order []int) {
	s.Routes[ri].Order = order
	for _, j := range order {
		delete(s.unassigned, j)
	}
	s.invalidate()
}

// AssignedJobs returns the indices of all jobs currently on routes.
func (s *Solution) AssignedJobs() []int {
	var out []int
	for _, r := range s.Routes {
		out = append(out, r.Order...)
	}
	return out
}

// CheckPartition verifies the core invariant: every job of the problem is on
// exactly one route or in the unassigned set.
func (s *Solution) CheckPartition() error {
	seen := make(map[int]int, len(s.Problem.Jobs))
	for ri, r := range s.Routes {
		for _, j := range r.Order {
			if prev, ok := seen[j]; ok {
				return fmt.Errorf("job %s on routes %d and %d", s.Problem.Jobs[j].ID, prev, ri)
			}
			seen[j] = ri
		}
	}
	for j := range s.Problem.Jobs {
		_, assigned := seen[j]
		_, unassigned := s.unassigned[j]
		if assigned == unassigned {
			return fmt.Errorf("job %s assigned=%v unassigned=%v", s.Problem.Jobs[j].ID, assigned, unassigned)
		}
	}
	return nil
}

// Weights projects the solution into the feature space used for diversity
// placement. The projection is never used for ranking.
func (s *Solution) Weights() []float64 {
	active := 0
	var dist, maxLoad float64
	for _, r := range s.Routes {
		if len(r.Order) == 0 {
			continue
		}
		active++
		st := s.ScheduleRoute(r)
		dist += st.DistanceM
		v := s.Problem.Vehicles[r.VehicleIdx]
		if v.CapWeight > 0 {
			if ratio := st.Load.Weight / v.CapWeight; ratio > maxLoad {
				maxLoad = ratio
			}
		}
	}
	return []float64{
		float64(active),
		dist / 1000.0,
		maxLoad,
		float64(len(s.unassigned)),
	}
}

// Output converts the solution to its serialized reporting form.
func (s *Solution) Output() *model.SolutionOut {
	out := &model.SolutionOut{}
	if f, ok := s.CachedFitness(); ok {
		out.Fitness = append([]float64(nil), f...)
	}
	for _, r := range s.Routes {
		if len(r.Order) == 0 {
			continue
		}
		st := s.ScheduleRoute(r)
		ro := model.RouteOut{
			VehicleID: s.Problem.Vehicles[r.VehicleIdx].ID,
			DistanceM: st.DistanceM,
			DriveSec:  st.DriveSec,
		}
		for _, j := range r.Order {
			ro.JobIDs = append(ro.JobIDs, s.Problem.Jobs[j].ID)
		}
		out.Routes = append(out.Routes, ro)
	}
	jobs := make([]int, 0, len(s.unassigned))
	for j := range s.unassigned {
		jobs = append(jobs, j)
	}
	sort.Ints(jobs)
	for _, j := range jobs {
		out.Unassigned = append(out.Unassigned, model.UnassignedOut{
			JobID:  s.Problem.Jobs[j].ID,
			Reason: string(s.unassigned[j]),
		})
	}
	return out
}

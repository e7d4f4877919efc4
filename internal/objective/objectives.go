package objective

import (
	"math"

	"vrpsolve/internal/solution"
)

// Objective contributes one scalar to the fitness vector. Implementations
// must be pure: identical activity data always yields the identical value.
type Objective interface {
	Name() string
	Estimate(s *solution.Solution) float64
}

// UnassignedCount counts jobs left off all routes, weighted by priority so
// that high-priority jobs hurt more.
type UnassignedCount struct{}

func (UnassignedCount) Name() string { return "unassigned" }

func (UnassignedCount) Estimate(s *solution.Solution) float64 {
	total := 0.0
	for j := range s.Unassigned() {
		w := 1.0
		if p := s.Problem.Jobs[j].Priority; p > 1 {
			w = float64(p)
		}
		total += w
	}
	return total
}

// TransportCost sums distance (km) and lateness penalties across routes.
type TransportCost struct {
	LatenessWeight float64
}

func (TransportCost) Name() string { return "cost" }

func (o TransportCost) Estimate(s *solution.Solution) float64 {
	lw := o.LatenessWeight
	if lw <= 0 {
		lw = 1
	}
	total := 0.0
	for _, r := range s.Routes {
		if len(r.Order) == 0 {
			continue
		}
		st := s.ScheduleRoute(r)
		total += st.DistanceM/1000.0 + lw*st.LateSec/60.0
	}
	return total
}

// TotalDuration sums drive, wait and service seconds across routes.
type TotalDuration struct{}

func (TotalDuration) Name() string { return "duration" }

func (TotalDuration) Estimate(s *solution.Solution) float64 {
	total := 0.0
	for _, r := range s.Routes {
		if len(r.Order) == 0 {
			continue
		}
		st := s.ScheduleRoute(r)
		total += st.DriveSec + st.WaitSec
		for _, j := range r.Order {
			total += float64(s.Problem.Jobs[j].ServiceSec)
		}
	}
	return total
}

// WorkBalance is the standard deviation of a per-route metric, spreading
// work evenly across the fleet.
type WorkBalance struct {
	Metric func(s *solution.Solution, r solution.Route) float64
}

// NewDurationBalance balances total route durations.
func NewDurationBalance() WorkBalance {
	return WorkBalance{Metric: func(s *solution.Solution, r solution.Route) float64 {
		st := s.ScheduleRoute(r)
		return st.DriveSec + st.WaitSec
	}}
}

// NewLoadBalance balances route weight loads.
func NewLoadBalance() WorkBalance {
	return WorkBalance{Metric: func(s *solution.Solution, r solution.Route) float64 {
		return s.ScheduleRoute(r).Load.Weight
	}}
}

func (WorkBalance) Name() string { return "balance" }

func (o WorkBalance) Estimate(s *solution.Solution) float64 {
	var values []float64
	for _, r := range s.Routes {
		if len(r.Order) == 0 {
			continue
		}
		values = append(values, o.Metric(s, r))
	}
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}

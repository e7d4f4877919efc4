package solution

import (
	"testing"

	"vrpsolve/internal/model"
)

func testProblem() *model.Problem {
	return &model.Problem{
		Jobs: []model.Job{
			{ID: "j0", Location: model.Location{Lat: 52.52, Lng: 13.40}, Demand: model.Demand{Weight: 2}},
			{ID: "j1", Location: model.Location{Lat: 52.53, Lng: 13.41}, Demand: model.Demand{Weight: 3}},
			{ID: "j2", Location: model.Location{Lat: 52.50, Lng: 13.39}, Demand: model.Demand{Weight: 1}},
		},
		Vehicles: []model.Vehicle{
			{ID: "v0", CapWeight: 10, Start: &model.Location{Lat: 52.51, Lng: 13.38}},
			{ID: "v1", CapWeight: 4, Start: &model.Location{Lat: 52.54, Lng: 13.42}},
		},
	}
}

func TestEmptyPartition(t *testing.T) {
	s := Empty(testProblem(), NewHaversineCosts(0))
	if err := s.CheckPartition(); err != nil {
		t.Fatalf("empty solution should satisfy partition: %v", err)
	}
	if s.UnassignedCount() != 3 {
		t.Fatalf("expected 3 unassigned, got %d", s.UnassignedCount())
	}
}

func TestInsertRemovePartition(t *testing.T) {
	s := Empty(testProblem(), NewHaversineCosts(0))
	s.Insert(0, 0, 0)
	s.Insert(0, 1, 1)
	s.Insert(1, 0, 2)
	if err := s.CheckPartition(); err != nil {
		t.Fatalf("partition broken after inserts: %v", err)
	}
	if s.UnassignedCount() != 0 {
		t.Fatalf("expected all assigned, got %d unassigned", s.UnassignedCount())
	}
	s.Remove([]int{1})
	if err := s.CheckPartition(); err != nil {
		t.Fatalf("partition broken after remove: %v", err)
	}
	if reason, ok := s.Unassigned()[1]; !ok || reason != ReasonNoVehicle {
		t.Fatalf("removed job should be unassigned with no_vehicle, got %q ok=%v", reason, ok)
	}
}

func TestCheckPartitionDetectsDuplicate(t *testing.T) {
	s := Empty(testProblem(), NewHaversineCosts(0))
	s.Insert(0, 0, 0)
	s.ReplaceRoute(1, []int{0}) // same job on a second route
	if err := s.CheckPartition(); err == nil {
		t.Fatalf("expected duplicate assignment to be detected")
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := Empty(testProblem(), NewHaversineCosts(0))
	s.Insert(0, 0, 0)
	c := s.Clone()
	c.Insert(0, 1, 1)
	if len(s.Routes[0].Order) != 1 {
		t.Fatalf("mutating clone leaked into original")
	}
	if c.UnassignedCount() != 1 || s.UnassignedCount() != 2 {
		t.Fatalf("unassigned sets shared: clone=%d orig=%d", c.UnassignedCount(), s.UnassignedCount())
	}
}

func TestFitnessCacheInvalidation(t *testing.T) {
	s := Empty(testProblem(), NewHaversineCosts(0))
	s.CacheFitness([]float64{1, 2, 3})
	if f, ok := s.CachedFitness(); !ok || len(f) != 3 {
		t.Fatalf("expected cached fitness")
	}
	c := s.Clone()
	if _, ok := c.CachedFitness(); !ok {
		t.Fatalf("clone should carry the cache")
	}
	s.Insert(0, 0, 0)
	if _, ok := s.CachedFitness(); ok {
		t.Fatalf("mutation must invalidate the cache")
	}
	if _, ok := c.CachedFitness(); !ok {
		t.Fatalf("clone cache must survive original's mutation")
	}
}

func TestScheduleCapacityInfeasible(t *testing.T) {
	p := testProblem()
	s := Empty(p, NewHaversineCosts(0))
	// vehicle 1 has capacity 4; jobs 0+1 weigh 5
	r := Route{VehicleIdx: 1, Order: []int{0, 1}}
	if s.FeasibleRoute(r) {
		t.Fatalf("expected capacity overflow to be infeasible")
	}
	r = Route{VehicleIdx: 0, Order: []int{0, 1}}
	if !s.FeasibleRoute(r) {
		t.Fatalf("expected route within capacity to be feasible")
	}
}

func TestScheduleTimeWindows(t *testing.T) {
	p := testProblem()
	p.Jobs[0].TimeWindow = &model.TimeWindow{Start: 10000, End: 20000}
	s := Empty(p, NewHaversineCosts(50))
	r := Route{VehicleIdx: 0, Order: []int{0}}
	st := s.ScheduleRoute(r)
	if st.WaitSec <= 0 {
		t.Fatalf("expected wait before a late-opening window, got %v", st.WaitSec)
	}
	if !s.FeasibleRoute(r) {
		t.Fatalf("waiting is allowed, route should stay feasible")
	}

	p.Jobs[0].TimeWindow = &model.TimeWindow{Start: 0, End: 1}
	if s.FeasibleRoute(r) {
		t.Fatalf("unreachable window should be infeasible")
	}
	st = s.ScheduleRoute(r)
	if st.LateSec <= 0 {
		t.Fatalf("expected lateness recorded, got %v", st.LateSec)
	}
}

func TestCanServeReasons(t *testing.T) {
	p := testProblem()
	p.Jobs[0].Skills = []string{"fridge"}
	p.Vehicles[0].Skills = []string{"fridge"}
	s := Empty(p, NewHaversineCosts(0))
	if reason, ok := s.CanServe(1, 0); ok || reason != ReasonSkills {
		t.Fatalf("expected skills rejection from vehicle 1, got %q ok=%v", reason, ok)
	}
	if _, ok := s.CanServe(0, 0); !ok {
		t.Fatalf("vehicle 0 covers the skill")
	}
	s.Insert(1, 0, 1) // weight 3 of 4
	if reason, ok := s.CanServe(1, 2); !ok || reason != "" {
		t.Fatalf("one more unit fits, got %q ok=%v", reason, ok)
	}
	s.Insert(1, 1, 2) // route full at weight 4
	if reason, ok := s.CanServe(1, 0); ok || reason != ReasonSkills {
		// skills are checked before capacity
		t.Fatalf("expected skills rejection, got %q ok=%v", reason, ok)
	}
}

func TestInsertionDeltaMatchesDistance(t *testing.T) {
	p := testProblem()
	s := Empty(p, NewHaversineCosts(50))
	delta := s.InsertionDelta(0, 0, 0)
	s.Insert(0, 0, 0)
	st := s.ScheduleRoute(s.Routes[0])
	if st.DistanceM <= 0 || delta <= 0 {
		t.Fatalf("expected positive cost, delta=%v dist=%v", delta, st.DistanceM)
	}
}

func TestOutput(t *testing.T) {
	p := testProblem()
	s := Empty(p, NewHaversineCosts(50))
	s.Insert(0, 0, 0)
	s.MarkUnassigned(1, ReasonCapacity)
	s.CacheFitness([]float64{2, 10})
	out := s.Output()
	if len(out.Routes) != 1 || out.Routes[0].VehicleID != "v0" {
		t.Fatalf("unexpected routes: %+v", out.Routes)
	}
	if len(out.Routes[0].JobIDs) != 1 || out.Routes[0].JobIDs[0] != "j0" {
		t.Fatalf("unexpected job ids: %+v", out.Routes[0].JobIDs)
	}
	if len(out.Unassigned) != 2 {
		t.Fatalf("expected 2 unassigned entries, got %d", len(out.Unassigned))
	}
	for _, u := range out.Unassigned {
		if u.JobID == "j1" && u.Reason != "capacity" {
			t.Fatalf("expected capacity reason for j1, got %q", u.Reason)
		}
	}
	if len(out.Fitness) != 2 {
		t.Fatalf("expected cached fitness in output")
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	c := NewHaversineCosts(50)
	// Berlin to Potsdam is roughly 26km
	d := c.Distance("", model.Location{Lat: 52.52, Lng: 13.405}, model.Location{Lat: 52.39, Lng: 13.06})
	if d < 20000 || d > 35000 {
		t.Fatalf("implausible haversine distance: %v", d)
	}
	dur := c.Duration("", model.Location{Lat: 52.52, Lng: 13.405}, model.Location{Lat: 52.39, Lng: 13.06})
	if want := d / (50.0 / 3.6); dur < want*0.99 || dur > want*1.01 {
		t.Fatalf("duration %v does not match distance at 50 kph", dur)
	}
}

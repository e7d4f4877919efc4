package objective

import (
	"testing"

	"vrpsolve/internal/model"
	"vrpsolve/internal/solution"
)

func balancedProblem() *model.Problem {
	return &model.Problem{
		Jobs: []model.Job{
			{ID: "j0", Location: model.Location{Lat: 52.52, Lng: 13.40}, Demand: model.Demand{Weight: 2}, ServiceSec: 60},
			{ID: "j1", Location: model.Location{Lat: 52.53, Lng: 13.41}, Demand: model.Demand{Weight: 3}, ServiceSec: 60},
			{ID: "j2", Location: model.Location{Lat: 52.50, Lng: 13.39}, Demand: model.Demand{Weight: 1}},
		},
		Vehicles: []model.Vehicle{
			{ID: "v0", CapWeight: 10, Start: &model.Location{Lat: 52.51, Lng: 13.38}},
			{ID: "v1", CapWeight: 10, Start: &model.Location{Lat: 52.54, Lng: 13.42}},
		},
	}
}

// countingObjective tracks how often Estimate runs.
type countingObjective struct{ calls int }

func (c *countingObjective) Name() string { return "counting" }
func (c *countingObjective) Estimate(*solution.Solution) float64 {
	c.calls++
	return 1
}

func TestEvaluateUsesCache(t *testing.T) {
	counter := &countingObjective{}
	comp := &Composite{Objectives: []Objective{counter}, Comparator: Hierarchical{}}
	s := solution.Empty(balancedProblem(), solution.NewHaversineCosts(50))
	comp.Evaluate(s)
	comp.Evaluate(s)
	if counter.calls != 1 {
		t.Fatalf("expected one evaluation for unchanged solution, got %d", counter.calls)
	}
	s.Insert(0, 0, 0)
	comp.Evaluate(s)
	if counter.calls != 2 {
		t.Fatalf("mutation must force re-evaluation, got %d calls", counter.calls)
	}
}

func TestDefaultOrder(t *testing.T) {
	comp := Default()
	names := comp.Names()
	want := []string{"unassigned", "cost", "duration"}
	if len(names) != len(want) {
		t.Fatalf("unexpected objectives: %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("objective %d: got %q want %q", i, names[i], want[i])
		}
	}
}

func TestUnassignedPriorityWeighting(t *testing.T) {
	p := balancedProblem()
	p.Jobs[1].Priority = 5
	s := solution.Empty(p, solution.NewHaversineCosts(50))
	got := UnassignedCount{}.Estimate(s)
	if got != 1+5+1 {
		t.Fatalf("expected priority-weighted count 7, got %v", got)
	}
}

func TestWorkBalance(t *testing.T) {
	p := balancedProblem()
	s := solution.Empty(p, solution.NewHaversineCosts(50))
	if v := NewDurationBalance().Estimate(s); v != 0 {
		t.Fatalf("empty plan balances trivially, got %v", v)
	}
	s.Insert(0, 0, 0)
	s.Insert(0, 1, 1)
	s.Insert(1, 0, 2)
	if v := NewLoadBalance().Estimate(s); v <= 0 {
		t.Fatalf("uneven loads should give positive deviation, got %v", v)
	}
}

func TestFromNames(t *testing.T) {
	comp, err := FromNames([]string{"unassigned", "balance-load"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(comp.Objectives) != 2 {
		t.Fatalf("expected 2 objectives, got %d", len(comp.Objectives))
	}
	if _, err := FromNames([]string{"bogus"}); err == nil {
		t.Fatalf("expected error for unknown objective")
	}
}

func TestCompareFullSolutionBeatsPartial(t *testing.T) {
	comp := Default()
	p := balancedProblem()
	full := solution.Empty(p, solution.NewHaversineCosts(50))
	full.Insert(0, 0, 0)
	full.Insert(0, 1, 1)
	full.Insert(1, 0, 2)
	partial := solution.Empty(p, solution.NewHaversineCosts(50))
	partial.Insert(0, 0, 0)
	partial.MarkUnassigned(1, solution.ReasonCapacity)

	ff := comp.Evaluate(full)
	fp := comp.Evaluate(partial)
	if comp.Compare(ff, fp) != Better {
		t.Fatalf("fewer unassigned must win: full=%v partial=%v", ff, fp)
	}
}

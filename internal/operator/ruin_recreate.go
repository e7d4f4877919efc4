package operator

import (
	"fmt"
	"math/rand"
	"sort"

	"vrpsolve/internal/model"
	"vrpsolve/internal/solution"
)

type RemovalStrategy string

const (
	RemovalRandom RemovalStrategy = "random"
	RemovalShaw   RemovalStrategy = "shaw"
)

type InsertionStrategy string

const (
	InsertGreedy InsertionStrategy = "greedy"
	InsertRegret InsertionStrategy = "regret"
)

// RuinRecreate removes a related or random set of jobs from the plan and
// reinserts them, plus any jobs already unassigned, via the configured
// insertion strategy.
type RuinRecreate struct {
	Removal   RemovalStrategy
	Insertion InsertionStrategy
	MaxRemove int
}

func (o *RuinRecreate) Name() string {
	return fmt.Sprintf("ruin_%s_%s", o.Removal, o.Insertion)
}

func (o *RuinRecreate) Kind() Kind { return KindMutate }

func (o *RuinRecreate) Mutate(rng *rand.Rand, s *solution.Solution) (*solution.Solution, error) {
	assigned := s.AssignedJobs()
	if len(assigned) == 0 && s.UnassignedCount() == 0 {
		return nil, ErrNoCandidate
	}
	max := o.MaxRemove
	if max <= 0 {
		max = 4
	}
	var removed []int
	if len(assigned) > 0 {
		k := 1 + rng.Intn(max)
		if k > len(assigned) {
			k = len(assigned)
		}
		switch o.Removal {
		case RemovalShaw:
			removed = shawRemoval(rng, s, assigned, k)
		default:
			removed = randomRemoval(rng, assigned, k)
		}
		s.Remove(removed)
	}
	// retry everything currently unassigned together with the ruined jobs
	pending := make([]int, 0, s.UnassignedCount())
	for j := range s.Unassigned() {
		pending = append(pending, j)
	}
	sort.Ints(pending)
	rng.Shuffle(len(pending), func(i, k int) { pending[i], pending[k] = pending[k], pending[i] })
	switch o.Insertion {
	case InsertRegret:
		regretInsert(s, pending)
	default:
		greedyInsert(s, pending)
	}
	return s, nil
}

func randomRemoval(rng *rand.Rand, assigned []int, k int) []int {
	pool := append([]int(nil), assigned...)
	removed := make([]int, 0, k)
	for i := 0; i < k && len(pool) > 0; i++ {
		j := rng.Intn(len(pool))
		removed = append(removed, pool[j])
		pool = append(pool[:j], pool[j+1:]...)
	}
	return removed
}

// shawRemoval picks a seed job then its most related neighbors: close in
// space with overlapping time windows.
func shawRemoval(rng *rand.Rand, s *solution.Solution, assigned []int, k int) []int {
	seed := assigned[rng.Intn(len(assigned))]
	type scored struct {
		job   int
		score float64
	}
	sj := s.Problem.Jobs[seed]
	rel := make([]scored, 0, len(assigned)-1)
	for _, j := range assigned {
		if j == seed {
			continue
		}
		job := s.Problem.Jobs[j]
		geo := s.Costs.Distance("", sj.Location, job.Location)
		overlap := 0.0
		if sj.TimeWindow != nil && job.TimeWindow != nil {
			overlap = windowOverlap(*sj.TimeWindow, *job.TimeWindow)
		}
		rel = append(rel, scored{job: j, score: geo - 1000.0*overlap})
	}
	sort.Slice(rel, func(a, b int) bool {
		if rel[a].score != rel[b].score {
			return rel[a].score < rel[b].score
		}
		return rel[a].job < rel[b].job
	})
	removed := []int{seed}
	for i := 0; i < len(rel) && len(removed) < k; i++ {
		removed = append(removed, rel[i].job)
	}
	return removed
}

func windowOverlap(a, b model.TimeWindow) float64 {
	start := a.Start
	if b.Start > start {
		start = b.Start
	}
	end := a.End
	if b.End < end {
		end = b.End
	}
	if end < start {
		return 0
	}
	return end - start
}

package evolution

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"vrpsolve/internal/hyper"
	"vrpsolve/internal/model"
	"vrpsolve/internal/objective"
	"vrpsolve/internal/operator"
	"vrpsolve/internal/rosomaxa"
	"vrpsolve/internal/solution"
)

// TrajectoryPoint is one sample of the best-known fitness.
type TrajectoryPoint struct {
	Generation int
	Elapsed    time.Duration
	Fitness    objective.Fitness
}

// Summary describes how a solve ended.
type Summary struct {
	State       State
	Generations int
	BestFitness objective.Fitness
	Elapsed     time.Duration
	Trajectory  []TrajectoryPoint
	Operators   []hyper.OperatorStats
}

// Result is the terminal output of one solve.
type Result struct {
	Best    *rosomaxa.Individual
	Ranked  []*rosomaxa.Individual
	Summary Summary
}

// Solver runs the evolution loop for one configuration. A Solver is
// reusable; every Solve carries its own population and operator statistics
// so concurrent solves do not interfere.
type Solver struct {
	cfg Config
}

func New(cfg Config) (*Solver, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Solver{cfg: cfg}, nil
}

// improvementWindow is the generation span the improvement ratio is
// computed over.
const improvementWindow = 1000

// Solve runs the loop until a termination condition fires. Cancellation via
// ctx is cooperative: it is observed at generation boundaries, in-flight
// candidates are discarded, and the best solution found so far is returned
// rather than an error.
func (sv *Solver) Solve(ctx context.Context, problem *model.Problem, costs solution.Costs, seeds []*solution.Solution) (*Result, error) {
	cfg := sv.cfg
	if err := problem.Validate(); err != nil {
		return nil, err
	}
	if costs == nil {
		costs = solution.NewHaversineCosts(problem.SpeedKph)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	pop := rosomaxa.NewPopulation(cfg.Objective, cfg.Population)
	sel := hyper.NewSelector(cfg.Operators.Names(), cfg.Selector)
	start := time.Now()

	if len(seeds) == 0 {
		want := cfg.Population.InitialSize
		if want < 4 {
			want = 4
		}
		for i := 0; i < want; i++ {
			seeds = append(seeds, operator.GreedySeed(rng, solution.Empty(problem, costs)))
		}
	}
	for _, s := range seeds {
		if err := s.CheckPartition(); err != nil {
			return nil, fmt.Errorf("seed solution violates job partition: %w", err)
		}
		fitness := cfg.Objective.Evaluate(s)
		pop.Add(rosomaxa.NewIndividual(s, fitness, 0, "seed"))
	}

	trajectory := []TrajectoryPoint{{Generation: 0, Fitness: pop.Best().Fitness}}
	improvedRing := make([]bool, 0, improvementWindow)
	stagnant := 0
	generation := 0
	state := StateRunning

	terminal := func() (State, bool) {
		if ctx.Err() != nil {
			return StateCancelled, true
		}
		if time.Since(start) >= cfg.MaxTime || generation >= cfg.MaxGenerations {
			return StateExhausted, true
		}
		if stagnant >= cfg.StagnationLimit {
			return StateConverged, true
		}
		return StateRunning, false
	}

	for {
		if s, done := terminal(); done {
			state = s
			break
		}
		generation++

		results := sv.runGeneration(pop, sel, rng)
		if ctx.Err() != nil {
			// in-flight candidates are discarded un-admitted
			generation--
			state = StateCancelled
			break
		}

		improved := false
		for _, a := range results {
			if a.invariantErr != nil {
				return nil, fmt.Errorf("job partition violated by operator %s at generation %d: %w", a.opName, generation, a.invariantErr)
			}
			if a.err != nil {
				sel.Record(a.opIdx, hyper.OutcomeInfeasible)
				continue
			}
			ind := rosomaxa.NewIndividual(a.candidate, a.fitness, generation, a.opName)
			newBest := pop.Add(ind)
			outcome := hyper.OutcomeAccepted
			switch {
			case newBest:
				outcome = hyper.OutcomeNewBest
				improved = true
			case cfg.Objective.Compare(a.fitness, a.parentFitness) == objective.Better:
				outcome = hyper.OutcomeImproved
			case pop.Phase() == rosomaxa.PhaseExploitation:
				outcome = hyper.OutcomeRejected
			}
			sel.Record(a.opIdx, outcome)
		}

		if improved {
			stagnant = 0
			trajectory = append(trajectory, TrajectoryPoint{
				Generation: generation,
				Elapsed:    time.Since(start),
				Fitness:    pop.Best().Fitness,
			})
		} else {
			stagnant++
		}
		if len(improvedRing) == improvementWindow {
			improvedRing = improvedRing[1:]
		}
		improvedRing = append(improvedRing, improved)

		pop.OnGeneration(rosomaxa.Statistics{
			Generation:          generation,
			TerminationEstimate: sv.terminationEstimate(start, generation),
			ImprovementRatio:    ratio(improvedRing),
		})
		if cfg.OnGeneration != nil {
			cfg.OnGeneration(TelemetryEvent{
				Generation:  generation,
				Elapsed:     time.Since(start),
				BestFitness: pop.Best().Fitness,
				Improved:    improved,
				Phase:       pop.Phase(),
			})
		}
	}

	best := pop.Best()
	if best == nil {
		return nil, errors.New("evolution: population empty at termination")
	}
	return &Result{
		Best:   best.Clone(),
		Ranked: pop.Ranked(),
		Summary: Summary{
			State:       state,
			Generations: generation,
			BestFitness: best.Fitness,
			Elapsed:     time.Since(start),
			Trajectory:  trajectory,
			Operators:   sel.Stats(),
		},
	}, nil
}

type attemptResult struct {
	opIdx         int
	opName        string
	candidate     *solution.Solution
	fitness       objective.Fitness
	parentFitness objective.Fitness
	err           error
	invariantErr  error
}

// runGeneration executes the generation's candidate attempts. With
// parallelism 1 the attempt runs inline on the master rng, giving the
// deterministic mode; otherwise workers get derived rngs and results are
// admitted in attempt order by the caller.
func (sv *Solver) runGeneration(pop *rosomaxa.Population, sel *hyper.Selector, rng *rand.Rand) []attemptResult {
	n := sv.cfg.Parallelism
	if n == 1 {
		return []attemptResult{sv.attempt(pop, sel, rng)}
	}
	results := make([]attemptResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wrng := rand.New(rand.NewSource(rng.Int63()))
		wg.Add(1)
		go func(slot int, wrng *rand.Rand) {
			defer wg.Done()
			results[slot] = sv.attempt(pop, sel, wrng)
		}(i, wrng)
	}
	wg.Wait()
	return results
}

// attempt selects an operator, draws parents as exclusive clones and
// produces one scored candidate.
func (sv *Solver) attempt(pop *rosomaxa.Population, sel *hyper.Selector, rng *rand.Rand) attemptResult {
	idx := sel.Select(rng)
	op := sv.cfg.Operators.Operators[idx]
	res := attemptResult{opIdx: idx, opName: op.Name()}

	var child *solution.Solution
	var err error
	switch o := op.(type) {
	case operator.Crossover:
		parents := pop.SelectParents(rng, 2)
		if len(parents) < 2 {
			res.err = operator.ErrNoCandidate
			return res
		}
		res.parentFitness = parents[0].Fitness
		child, err = o.Combine(rng, parents[0].Solution, parents[1].Solution)
	case operator.Mutator:
		parents := pop.SelectParents(rng, 1)
		if len(parents) == 0 {
			res.err = operator.ErrNoCandidate
			return res
		}
		res.parentFitness = parents[0].Fitness
		child, err = o.Mutate(rng, parents[0].Solution)
	default:
		res.err = operator.ErrNoCandidate
		return res
	}
	if err != nil {
		res.err = err
		return res
	}
	if ierr := child.CheckPartition(); ierr != nil {
		res.invariantErr = ierr
		return res
	}
	res.candidate = child
	res.fitness = sv.cfg.Objective.Evaluate(child)
	return res
}

func (sv *Solver) terminationEstimate(start time.Time, generation int) float64 {
	timeFrac := float64(time.Since(start)) / float64(sv.cfg.MaxTime)
	genFrac := float64(generation) / float64(sv.cfg.MaxGenerations)
	if genFrac > timeFrac {
		timeFrac = genFrac
	}
	if timeFrac > 1 {
		timeFrac = 1
	}
	return timeFrac
}

func ratio(ring []bool) float64 {
	if len(ring) == 0 {
		return 0
	}
	hits := 0
	for _, b := range ring {
		if b {
			hits++
		}
	}
	return float64(hits) / float64(len(ring))
}

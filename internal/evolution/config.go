// Package evolution orchestrates the generational search: parent selection,
// operator application, candidate admission and termination.
package evolution

import (
	"errors"
	"runtime"
	"time"

	"vrpsolve/internal/hyper"
	"vrpsolve/internal/objective"
	"vrpsolve/internal/operator"
	"vrpsolve/internal/rosomaxa"
)

// State is the loop's lifecycle.
type State int

const (
	StateInitializing State = iota
	StateRunning
	StateConverged
	StateExhausted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateConverged:
		return "converged"
	case StateExhausted:
		return "exhausted"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// TelemetryEvent is emitted once per generation for observers.
type TelemetryEvent struct {
	Generation  int
	Elapsed     time.Duration
	BestFitness objective.Fitness
	Improved    bool
	Phase       rosomaxa.Phase
}

// Config assembles one solve. Zero values take the defaults below.
type Config struct {
	Objective  *objective.Composite
	Operators  *operator.Registry
	Population rosomaxa.Config
	Selector   hyper.Config

	// MaxGenerations caps the generation count and is honored literally: a
	// zero budget terminates immediately after seeding with the seed
	// solution as the result. DefaultConfig sets 3000.
	MaxGenerations int
	// MaxTime caps wall-clock time. Default 300s.
	MaxTime time.Duration
	// StagnationLimit terminates after this many generations without a
	// strict best-fitness win. Default 500.
	StagnationLimit int
	// Parallelism is the candidate attempts per generation. Default is the
	// hardware parallelism; 1 gives the deterministic reproducibility mode.
	Parallelism int
	// Seed fixes the random stream. 0 derives one from the clock.
	Seed int64

	// OnGeneration, when set, observes every generation.
	OnGeneration func(TelemetryEvent)
}

// DefaultConfig mirrors the original solver defaults for mid-size problems.
func DefaultConfig() Config {
	return Config{
		MaxGenerations:  3000,
		MaxTime:         300 * time.Second,
		StagnationLimit: 500,
		Parallelism:     runtime.GOMAXPROCS(0),
	}
}

func (c Config) withDefaults() (Config, error) {
	if c.Objective == nil {
		c.Objective = objective.Default()
	}
	if c.Operators == nil {
		c.Operators = operator.DefaultRegistry()
	}
	if len(c.Operators.Operators) == 0 {
		return c, errors.New("evolution: empty operator registry")
	}
	if c.MaxGenerations < 0 {
		return c, errors.New("evolution: negative generation budget")
	}
	if c.MaxTime <= 0 {
		c.MaxTime = 300 * time.Second
	}
	if c.StagnationLimit <= 0 {
		c.StagnationLimit = 500
	}
	if c.Parallelism <= 0 {
		c.Parallelism = runtime.GOMAXPROCS(0)
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	return c, nil
}

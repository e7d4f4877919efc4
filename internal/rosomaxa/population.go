package rosomaxa

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"vrpsolve/internal/objective"
)

// Phase is the population lifecycle stage.
type Phase int

const (
	// PhaseInitial collects seeds until the network can be built.
	PhaseInitial Phase = iota
	// PhaseExploration spreads search effort across the SOM.
	PhaseExploration
	// PhaseExploitation narrows selection to the elite tier near the end
	// of the budget.
	PhaseExploitation
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseExploration:
		return "exploration"
	default:
		return "exploitation"
	}
}

// Statistics is the per-generation feedback from the evolution loop.
type Statistics struct {
	Generation int
	// TerminationEstimate in [0,1]: elapsed fraction of the most binding
	// budget (time or generations).
	TerminationEstimate float64
	// ImprovementRatio: share of recent generations that improved the best
	// known fitness.
	ImprovementRatio float64
}

// Config tunes the population manager.
type Config struct {
	EliteSize    int
	NodeSize     int
	MaxNodes     int
	SpreadFactor float64
	LearningRate float64
	// RebalanceMemory is the node-count budget the compaction aims for.
	RebalanceMemory int
	// ExplorationRatio is the fraction of the solve spent in the
	// exploration phase before cutting over to exploitation.
	ExplorationRatio float64
	// InitialSize is how many individuals the initial phase collects
	// before the network is created.
	InitialSize int
}

// DefaultConfig mirrors the tuned defaults of the original algorithm.
func DefaultConfig() Config {
	return Config{
		EliteSize:        4,
		NodeSize:         2,
		MaxNodes:         256,
		SpreadFactor:     0.25,
		LearningRate:     0.1,
		RebalanceMemory:  100,
		ExplorationRatio: 0.9,
		InitialSize:      4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.EliteSize < 1 {
		c.EliteSize = d.EliteSize
	}
	if c.NodeSize < 1 {
		c.NodeSize = d.NodeSize
	}
	if c.MaxNodes < 4 {
		c.MaxNodes = d.MaxNodes
	}
	if c.SpreadFactor <= 0 || c.SpreadFactor >= 1 {
		c.SpreadFactor = d.SpreadFactor
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		c.LearningRate = d.LearningRate
	}
	if c.RebalanceMemory < 1 {
		c.RebalanceMemory = d.RebalanceMemory
	}
	if c.ExplorationRatio <= 0 || c.ExplorationRatio > 1 {
		c.ExplorationRatio = d.ExplorationRatio
	}
	if c.InitialSize < 4 {
		c.InitialSize = d.InitialSize
	}
	return c
}

// Population keeps quality via the elite tier and diversity via the SOM.
// All mutating methods take the exclusive lock; admission is serialized so
// the capacity invariant and elite monotonicity hold under concurrency.
type Population struct {
	mu  sync.RWMutex
	cfg Config
	obj *objective.Composite

	phase   Phase
	elite   *Elitism
	initial []*Individual
	network *Network

	generation int
}

func NewPopulation(obj *objective.Composite, cfg Config) *Population {
	cfg = cfg.withDefaults()
	return &Population{
		cfg:   cfg,
		obj:   obj,
		elite: NewElitism(obj.Comparator, cfg.EliteSize),
	}
}

// Phase returns the current lifecycle stage.
func (p *Population) Phase() Phase {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.phase
}

// Add admits the individual: always considered for the elite tier, and
// placed in the current phase's structure for diversity. Returns true when
// the best-known fitness improved.
func (p *Population) Add(ind *Individual) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	improved := p.elite.Add(ind)

	switch p.phase {
	case PhaseInitial:
		p.initial = append(p.initial, ind)
		if len(p.initial) >= p.cfg.InitialSize {
			p.buildNetwork()
		}
	case PhaseExploration:
		p.network.Store(ind, p.generation)
	case PhaseExploitation:
		// elite only
	}
	return improved
}

func (p *Population) buildNetwork() {
	var seeds [4]*Individual
	copy(seeds[:], p.initial[:4])
	p.network = NewNetwork(p.obj.Comparator, NetworkConfig{
		SpreadFactor: p.cfg.SpreadFactor,
		LearningRate: p.cfg.LearningRate,
		NodeSize:     p.cfg.NodeSize,
		MaxNodes:     p.cfg.MaxNodes,
	}, seeds)
	for _, ind := range p.initial[4:] {
		p.network.Store(ind, 0)
	}
	p.initial = nil
	p.phase = PhaseExploration
}

// OnGeneration advances the lifecycle: cut over to exploitation when the
// exploration budget is spent, and rebalance the network while exploring.
func (p *Population) OnGeneration(stats Statistics) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation = stats.Generation

	if p.phase == PhaseExploration {
		if stats.TerminationEstimate >= p.cfg.ExplorationRatio {
			p.phase = PhaseExploitation
			return
		}
		p.rebalance(stats)
	}
}

// rebalance compacts the network when it outgrows its memory budget,
// dropping nodes whose best individuals sit farthest from the best-known
// fitness. Slower improvement allows a larger map, mirroring the original
// schedule.
func (p *Population) rebalance(stats Statistics) {
	best := p.elite.Best()
	if best == nil || p.network == nil {
		return
	}
	memory := float64(p.cfg.RebalanceMemory)
	var keepSize int
	switch {
	case stats.ImprovementRatio > 0.2:
		x := math.Max(0, math.Min(1, stats.TerminationEstimate))
		ratio := 1 - 1/(1+math.Exp(-10*(x-0.5)))
		keepSize = int(memory + memory*ratio)
	case stats.ImprovementRatio > 0.1:
		keepSize = int(2 * memory)
	case stats.ImprovementRatio > 0.01:
		keepSize = int(3 * memory)
	default:
		keepSize = int(4 * memory)
	}
	if p.network.Size() <= keepSize {
		return
	}

	distance := func(n *Node) float64 {
		items := n.Individuals()
		if len(items) == 0 {
			return math.MaxFloat64
		}
		return objective.RelativeDistance(best.Fitness, items[0].Fitness)
	}
	distances := make([]float64, 0, p.network.Size())
	for _, n := range p.network.Nodes() {
		distances = append(distances, distance(n))
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(distances)))
	idx := len(distances) - keepSize
	if idx < 0 || idx >= len(distances) {
		idx = int(float64(len(distances)) * 0.75)
	}
	threshold := distances[idx]
	p.network.Compact(func(n *Node) bool { return distance(n) < threshold })
}

// SelectParents draws n parents: a quality-biased share from the elite tier
// and, during exploration, a diversity-biased share sampled from SOM nodes.
// Returned individuals are clones safe for exclusive use by operators.
func (p *Population) SelectParents(rng *rand.Rand, n int) []*Individual {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if n < 1 {
		n = 1
	}
	out := make([]*Individual, 0, n)

	switch p.phase {
	case PhaseExploration:
		eliteShare := (n + 1) / 2
		for i := 0; i < eliteShare; i++ {
			if ind := p.elite.Select(rng); ind != nil {
				out = append(out, ind.Clone())
			}
		}
		nodes := p.network.Nodes()
		for len(out) < n && len(nodes) > 0 {
			node := nodes[rng.Intn(len(nodes))]
			items := node.Individuals()
			if len(items) == 0 {
				// node emptied by compaction; fall back to elite
				if ind := p.elite.Select(rng); ind != nil {
					out = append(out, ind.Clone())
				}
				continue
			}
			out = append(out, items[rng.Intn(len(items))].Clone())
		}
	default:
		for len(out) < n {
			ind := p.elite.Select(rng)
			if ind == nil {
				break
			}
			out = append(out, ind.Clone())
		}
	}
	return out
}

// Best returns the best-known individual, nil before any admission.
func (p *Population) Best() *Individual {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.elite.Best()
}

// Ranked returns the elite shortlist best-first, cloned for reporting.
func (p *Population) Ranked() []*Individual {
	p.mu.RLock()
	defer p.mu.RUnlock()
	items := p.elite.Ranked()
	out := make([]*Individual, len(items))
	for i, ind := range items {
		out[i] = ind.Clone()
	}
	return out
}

// Size reports elite plus network occupancy.
func (p *Population) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	total := p.elite.Size() + len(p.initial)
	if p.network != nil {
		for _, n := range p.network.Nodes() {
			total += len(n.Individuals())
		}
	}
	return total
}

// MaxSize is the configured admission bound: the elite tier plus the full
// network at node capacity.
func (p *Population) MaxSize() int {
	return p.cfg.EliteSize + p.cfg.MaxNodes*p.cfg.NodeSize
}

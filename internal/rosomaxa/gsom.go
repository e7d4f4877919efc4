package rosomaxa

import (
	"math"

	"vrpsolve/internal/objective"
)

// Coord addresses a node on the self-organizing map grid.
type Coord struct{ X, Y int }

func (c Coord) neighbors() [4]Coord {
	return [4]Coord{
		{c.X - 1, c.Y}, {c.X + 1, c.Y},
		{c.X, c.Y - 1}, {c.X, c.Y + 1},
	}
}

// Node is one SOM cell: a reference weight vector plus a bounded population
// of individuals mapped to it. Nodes live in the network's arena and refer
// to each other only through coordinates, never pointers.
type Node struct {
	Coord   Coord
	Weights []float64
	Error   float64
	LastHit int

	storage *Elitism
}

// Individuals returns the node's population, best-first.
func (n *Node) Individuals() []*Individual { return n.storage.Ranked() }

// NetworkConfig tunes GSOM growth and learning.
type NetworkConfig struct {
	// SpreadFactor in (0,1) controls the growth threshold: lower spread
	// grows more nodes.
	SpreadFactor float64
	// LearningRate is the base BMU weight adjustment.
	LearningRate float64
	// NodeSize bounds how many individuals one node retains.
	NodeSize int
	// MaxNodes bounds the arena; reaching it triggers compaction by the
	// population manager.
	MaxNodes int
}

func (c NetworkConfig) withDefaults() NetworkConfig {
	if c.SpreadFactor <= 0 || c.SpreadFactor >= 1 {
		c.SpreadFactor = 0.25
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		c.LearningRate = 0.1
	}
	if c.NodeSize < 1 {
		c.NodeSize = 2
	}
	if c.MaxNodes < 4 {
		c.MaxNodes = 256
	}
	return c
}

// Network is a growing self-organizing map. The arena owns all nodes;
// the coordinate index maps grid positions to arena slots so growth never
// creates ownership cycles.
type Network struct {
	cfg   NetworkConfig
	cmp   objective.Comparator
	dim   int
	nodes []*Node
	index map[Coord]int

	growThreshold float64
	time          int
}

// NewNetwork seeds a 2x2 map from four initial individuals.
func NewNetwork(cmp objective.Comparator, cfg NetworkConfig, initial [4]*Individual) *Network {
	cfg = cfg.withDefaults()
	dim := len(initial[0].Weights())
	n := &Network{
		cfg:           cfg,
		cmp:           cmp,
		dim:           dim,
		index:         make(map[Coord]int),
		growThreshold: -float64(dim) * math.Log(cfg.SpreadFactor),
	}
	coords := [4]Coord{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	for i, ind := range initial {
		node := n.newNode(coords[i], append([]float64(nil), ind.Weights()...))
		node.storage.Add(ind)
	}
	return n
}

func (n *Network) newNode(c Coord, weights []float64) *Node {
	node := &Node{
		Coord:   c,
		Weights: weights,
		storage: NewElitism(n.cmp, n.cfg.NodeSize),
	}
	n.index[c] = len(n.nodes)
	n.nodes = append(n.nodes, node)
	return node
}

// Size returns the live node count.
func (n *Network) Size() int { return len(n.nodes) }

// Nodes returns the arena. Callers must not mutate it.
func (n *Network) Nodes() []*Node { return n.nodes }

// Time returns the number of stores performed.
func (n *Network) Time() int { return n.time }

// Find returns the node at the coordinate, if present.
func (n *Network) Find(c Coord) (*Node, bool) {
	idx, ok := n.index[c]
	if !ok {
		return nil, false
	}
	return n.nodes[idx], true
}

func weightDistance(a, b []float64) float64 {
	total := 0.0
	for i := range a {
		d := a[i] - b[i]
		total += d * d
	}
	return math.Sqrt(total)
}

func (n *Network) bmu(weights []float64) *Node {
	var best *Node
	bestDist := math.MaxFloat64
	for _, node := range n.nodes {
		if d := weightDistance(node.Weights, weights); d < bestDist {
			best = node
			bestDist = d
		}
	}
	return best
}

// Store routes the individual to its best matching unit, applies the SOM
// update rule with a hit-decayed learning rate, accumulates quantization
// error and grows the map when a boundary node overflows its error budget.
func (n *Network) Store(ind *Individual, generation int) {
	n.time++
	w := ind.Weights()
	bmu := n.bmu(w)
	dist := weightDistance(bmu.Weights, w)
	bmu.Error += dist
	bmu.LastHit = generation

	lr := n.cfg.LearningRate / (1 + float64(n.time)/1000.0)
	adjust(bmu.Weights, w, lr)
	for _, nc := range bmu.Coord.neighbors() {
		if nb, ok := n.Find(nc); ok {
			adjust(nb.Weights, w, lr*0.5)
		}
	}

	bmu.storage.Add(ind)

	if bmu.Error > n.growThreshold && len(n.nodes) < n.cfg.MaxNodes {
		n.growAround(bmu)
	}
}

func adjust(weights, input []float64, lr float64) {
	for i := range weights {
		if i < len(input) {
			weights[i] += lr * (input[i] - weights[i])
		}
	}
}

// growAround inserts new nodes at the BMU's free neighbor coordinates; a
// fully surrounded BMU instead sheds half its error onto its neighbors so
// growth migrates to the map boundary.
func (n *Network) growAround(bmu *Node) {
	free := make([]Coord, 0, 4)
	for _, nc := range bmu.Coord.neighbors() {
		if _, ok := n.Find(nc); !ok {
			free = append(free, nc)
		}
	}
	if len(free) == 0 {
		bmu.Error /= 2
		for _, nc := range bmu.Coord.neighbors() {
			if nb, ok := n.Find(nc); ok {
				nb.Error += bmu.Error / 4
			}
		}
		return
	}
	for _, c := range free {
		if len(n.nodes) >= n.cfg.MaxNodes {
			break
		}
		weights := n.extrapolate(bmu, c)
		n.newNode(c, weights)
	}
	bmu.Error = 0
}

// extrapolate derives a new node's weights from the BMU and the node on the
// opposite side, falling back to a copy of the BMU weights.
func (n *Network) extrapolate(bmu *Node, target Coord) []float64 {
	opposite := Coord{X: 2*bmu.Coord.X - target.X, Y: 2*bmu.Coord.Y - target.Y}
	out := make([]float64, n.dim)
	if opp, ok := n.Find(opposite); ok {
		for i := range out {
			out[i] = 2*bmu.Weights[i] - opp.Weights[i]
		}
		return out
	}
	copy(out, bmu.Weights)
	return out
}

// Compact removes every node the keep predicate rejects and reinserts the
// evicted individuals, shrinking the map back around the interesting
// regions. At least one node always survives.
func (n *Network) Compact(keep func(*Node) bool) {
	var kept []*Node
	var orphans []*Individual
	for _, node := range n.nodes {
		if keep(node) {
			kept = append(kept, node)
		} else {
			orphans = append(orphans, node.Individuals()...)
		}
	}
	if len(kept) == 0 {
		kept = n.nodes[:1]
		orphans = nil
	}
	n.nodes = kept
	n.index = make(map[Coord]int, len(kept))
	for i, node := range kept {
		n.index[node.Coord] = i
	}
	for _, ind := range orphans {
		n.Store(ind, ind.Generation)
	}
}

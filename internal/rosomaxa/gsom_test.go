package rosomaxa

import (
	"math"
	"math/rand"
	"testing"

	"vrpsolve/internal/model"
	"vrpsolve/internal/objective"
	"vrpsolve/internal/solution"
)

var gsomProblem = &model.Problem{
	Jobs: []model.Job{
		{ID: "j0", Location: model.Location{Lat: 52.50, Lng: 13.30}, Demand: model.Demand{Weight: 1}},
		{ID: "j1", Location: model.Location{Lat: 52.52, Lng: 13.34}, Demand: model.Demand{Weight: 1}},
		{ID: "j2", Location: model.Location{Lat: 52.54, Lng: 13.38}, Demand: model.Demand{Weight: 1}},
		{ID: "j3", Location: model.Location{Lat: 52.56, Lng: 13.42}, Demand: model.Demand{Weight: 1}},
		{ID: "j4", Location: model.Location{Lat: 52.58, Lng: 13.46}, Demand: model.Demand{Weight: 1}},
	},
	Vehicles: []model.Vehicle{{ID: "v0", CapWeight: 10, Start: &model.Location{Lat: 52.49, Lng: 13.28}}},
}

// gsomIndividual assigns the first `assign` jobs so the feature projection
// varies with the parameter, giving the map distinct inputs.
func gsomIndividual(t *testing.T, assign int, fitness float64) *Individual {
	t.Helper()
	s := solution.Empty(gsomProblem, solution.NewHaversineCosts(50))
	for j := 0; j < assign && j < len(gsomProblem.Jobs); j++ {
		s.Insert(0, j, j)
	}
	f := []float64{fitness, fitness}
	s.CacheFitness(f)
	return NewIndividual(s, f, 0, "test")
}

func seedNetwork(t *testing.T, cfg NetworkConfig) *Network {
	t.Helper()
	var seeds [4]*Individual
	for i := range seeds {
		seeds[i] = gsomIndividual(t, i+1, float64(i+1))
	}
	return NewNetwork(objective.Hierarchical{}, cfg, seeds)
}

func TestNewNetworkStartsTwoByTwo(t *testing.T) {
	n := seedNetwork(t, NetworkConfig{})
	if n.Size() != 4 {
		t.Fatalf("expected 4 seed nodes, got %d", n.Size())
	}
	for _, c := range []Coord{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		if _, ok := n.Find(c); !ok {
			t.Fatalf("missing seed node at %v", c)
		}
	}
}

func TestStoreUpdatesBMU(t *testing.T) {
	n := seedNetwork(t, NetworkConfig{LearningRate: 0.5})
	ind := gsomIndividual(t, 5, 10)
	before := make([]float64, len(n.bmu(ind.Weights()).Weights))
	copy(before, n.bmu(ind.Weights()).Weights)
	n.Store(ind, 1)
	bmu := n.bmu(ind.Weights())
	moved := false
	for i := range bmu.Weights {
		if bmu.Weights[i] != before[i] {
			moved = true
		}
	}
	if !moved && weightDistance(before, ind.Weights()) > 0 {
		t.Fatalf("BMU weights did not move toward the input")
	}
	if bmu.LastHit != 1 {
		t.Fatalf("expected LastHit update, got %d", bmu.LastHit)
	}
}

func TestNetworkGrowsUnderError(t *testing.T) {
	// high spread factor keeps the growth threshold tiny
	n := seedNetwork(t, NetworkConfig{SpreadFactor: 0.99, MaxNodes: 64})
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 50; i++ {
		n.Store(gsomIndividual(t, rng.Intn(6), 1+rng.Float64()*50), i)
	}
	if n.Size() <= 4 {
		t.Fatalf("expected growth beyond the seed grid, got %d nodes", n.Size())
	}
	if n.Size() > 64 {
		t.Fatalf("grew past MaxNodes: %d", n.Size())
	}
}

func TestNetworkRespectsMaxNodes(t *testing.T) {
	n := seedNetwork(t, NetworkConfig{SpreadFactor: 0.99, MaxNodes: 6})
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 200; i++ {
		n.Store(gsomIndividual(t, rng.Intn(6), 1+rng.Float64()*100), i)
	}
	if n.Size() > 6 {
		t.Fatalf("network exceeded MaxNodes: %d", n.Size())
	}
}

func TestCompactKeepsAtLeastOneNode(t *testing.T) {
	n := seedNetwork(t, NetworkConfig{})
	n.Compact(func(*Node) bool { return false })
	if n.Size() < 1 {
		t.Fatalf("compaction must leave at least one node")
	}
}

func TestCompactReinsertsOrphans(t *testing.T) {
	n := seedNetwork(t, NetworkConfig{SpreadFactor: 0.99, MaxNodes: 32})
	rng := rand.New(rand.NewSource(6))
	for i := 0; i < 60; i++ {
		n.Store(gsomIndividual(t, rng.Intn(6), 1+rng.Float64()*50), i)
	}
	countIndividuals := func() int {
		total := 0
		for _, node := range n.Nodes() {
			total += len(node.Individuals())
		}
		return total
	}
	before := countIndividuals()
	// drop half the nodes
	i := 0
	n.Compact(func(*Node) bool {
		i++
		return i%2 == 0
	})
	after := countIndividuals()
	if after > before {
		t.Fatalf("compaction created individuals: %d -> %d", before, after)
	}
	if after == 0 && before > 0 {
		t.Fatalf("compaction lost every individual")
	}
}

func TestGrowThreshold(t *testing.T) {
	n := seedNetwork(t, NetworkConfig{SpreadFactor: 0.25})
	want := -4.0 * math.Log(0.25)
	if math.Abs(n.growThreshold-want) > 1e-9 {
		t.Fatalf("growth threshold %v, want %v", n.growThreshold, want)
	}
}

package objective

import (
	"math"
	"testing"
)

func TestHierarchicalLexicographic(t *testing.T) {
	h := Hierarchical{}
	if got := h.Compare(Fitness{0, 100}, Fitness{1, 1}); got != Better {
		t.Fatalf("first objective dominates: got %v", got)
	}
	if got := h.Compare(Fitness{1, 1}, Fitness{0, 100}); got != Worse {
		t.Fatalf("expected Worse, got %v", got)
	}
	if got := h.Compare(Fitness{1, 5}, Fitness{1, 7}); got != Better {
		t.Fatalf("tie broken on second objective: got %v", got)
	}
	if got := h.Compare(Fitness{1, 5}, Fitness{1, 5}); got != Equal {
		t.Fatalf("expected Equal, got %v", got)
	}
}

func TestHierarchicalTolerance(t *testing.T) {
	h := Hierarchical{Tolerance: 1e-3}
	// values within relative tolerance tie on that dimension
	if got := h.Compare(Fitness{1000.0, 5}, Fitness{1000.5, 9}); got != Better {
		t.Fatalf("near-equal first dimension should fall through, got %v", got)
	}
	if got := h.Compare(Fitness{1000.0, 9}, Fitness{1000.5, 5}); got != Worse {
		t.Fatalf("expected second dimension to decide, got %v", got)
	}
}

func TestWeightedSum(t *testing.T) {
	w := WeightedSum{Weights: []float64{10, 1}}
	if got := w.Compare(Fitness{1, 0}, Fitness{0, 5}); got != Worse {
		t.Fatalf("10 > 5, expected Worse, got %v", got)
	}
	if got := w.Compare(Fitness{0, 5}, Fitness{1, 0}); got != Better {
		t.Fatalf("expected Better, got %v", got)
	}
	// missing weights default to 1
	w = WeightedSum{}
	if got := w.Compare(Fitness{1, 2}, Fitness{2, 1}); got != Equal {
		t.Fatalf("equal sums should tie, got %v", got)
	}
}

func TestDominance(t *testing.T) {
	d := Dominance{}
	if got := d.Compare(Fitness{1, 1}, Fitness{2, 2}); got != Better {
		t.Fatalf("strict dominance, got %v", got)
	}
	if got := d.Compare(Fitness{2, 2}, Fitness{1, 1}); got != Worse {
		t.Fatalf("expected Worse, got %v", got)
	}
	// non-dominated pair falls back to the sum tie-break for a total order
	a, b := Fitness{0, 3}, Fitness{2, 0}
	got := d.Compare(a, b)
	rev := d.Compare(b, a)
	if got == rev && got != Equal {
		t.Fatalf("tie-break must be antisymmetric: %v vs %v", got, rev)
	}
	if got != Worse {
		t.Fatalf("sum 3 > sum 2, expected Worse, got %v", got)
	}
}

func TestRelativeDistance(t *testing.T) {
	if d := RelativeDistance(Fitness{1, 2}, Fitness{1, 2}); d != 0 {
		t.Fatalf("identical vectors should be distance 0, got %v", d)
	}
	d := RelativeDistance(Fitness{100, 0}, Fitness{110, 0})
	if d <= 0 || math.IsNaN(d) {
		t.Fatalf("expected positive finite distance, got %v", d)
	}
}

// Package objective defines fitness evaluation and comparison semantics for
// candidate solutions. Comparators are total orders so population ranking is
// deterministic for a fixed input.
package objective

import "math"

// Fitness is the ordered tuple of objective values, one per registered
// objective, lower is better.
type Fitness []float64

// Comparison is the three-way result of comparing two fitness vectors.
type Comparison int

const (
	Better Comparison = iota - 1
	Equal
	Worse
)

func (c Comparison) String() string {
	switch c {
	case Better:
		return "better"
	case Worse:
		return "worse"
	default:
		return "equal"
	}
}

// Comparator compares two fitness vectors from the perspective of the first
// argument. Implementations must define a strict weak ordering.
type Comparator interface {
	Compare(a, b Fitness) Comparison
}

// Hierarchical compares objectives lexicographically with a relative
// tolerance per level: a level only decides the comparison when the values
// differ by more than the tolerance.
type Hierarchical struct {
	Tolerance float64
}

func (h Hierarchical) Compare(a, b Fitness) Comparison {
	tol := h.Tolerance
	if tol <= 0 {
		tol = 1e-6
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if closeEnough(a[i], b[i], tol) {
			continue
		}
		if a[i] < b[i] {
			return Better
		}
		return Worse
	}
	return Equal
}

// WeightedSum collapses the vector into one scalar with fixed weights.
// Missing weights default to 1.
type WeightedSum struct {
	Weights []float64
}

func (w WeightedSum) Compare(a, b Fitness) Comparison {
	sa, sb := w.scalar(a), w.scalar(b)
	if closeEnough(sa, sb, 1e-9) {
		return Equal
	}
	if sa < sb {
		return Better
	}
	return Worse
}

func (w WeightedSum) scalar(f Fitness) float64 {
	total := 0.0
	for i, v := range f {
		wt := 1.0
		if i < len(w.Weights) {
			wt = w.Weights[i]
		}
		total += wt * v
	}
	return total
}

// Dominance implements Pareto dominance with a total-order tie break: when
// neither vector dominates, the smaller vector sum wins so that the ordering
// stays strict-weak for ranking.
type Dominance struct{}

func (Dominance) Compare(a, b Fitness) Comparison {
	aBetter, bBetter := false, false
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		switch {
		case a[i] < b[i]:
			aBetter = true
		case a[i] > b[i]:
			bBetter = true
		}
	}
	switch {
	case aBetter && !bBetter:
		return Better
	case bBetter && !aBetter:
		return Worse
	case !aBetter && !bBetter:
		return Equal
	}
	sa, sb := sum(a), sum(b)
	if closeEnough(sa, sb, 1e-9) {
		return Equal
	}
	if sa < sb {
		return Better
	}
	return Worse
}

func sum(f Fitness) float64 {
	t := 0.0
	for _, v := range f {
		t += v
	}
	return t
}

func closeEnough(a, b, tol float64) bool {
	diff := math.Abs(a - b)
	if diff < tol {
		return true
	}
	base := math.Max(math.Abs(a), math.Abs(b))
	return diff <= tol*base
}

// RelativeDistance measures how far b sits from a in normalized objective
// space. Used for diversity bookkeeping, never for ranking.
func RelativeDistance(a, b Fitness) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	total := 0.0
	for i := 0; i < n; i++ {
		base := math.Max(math.Abs(a[i]), math.Abs(b[i]))
		if base == 0 {
			continue
		}
		d := (a[i] - b[i]) / base
		total += d * d
	}
	return math.Sqrt(total)
}

package distuv

import (
	"fmt"
	"math"
	"sort"

	"microsimcore/simerr"
)

// LinearInterpolated is a piecewise-uniform distribution on n ranges
// defined by n+1 boundaries, with a probability-mass vector of length n
// summing to 1. Its CDF is piecewise linear between the boundaries.
type LinearInterpolated struct {
	Boundaries []float64 // length n+1, strictly increasing
	Mass       []float64 // length n, sums to 1
	cumulative []float64 // length n+1, cumulative[0]=0, cumulative[n]=1
}

// NewLinearInterpolated validates the boundaries/mass and precomputes the
// cumulative-probability vector via CalculateCumulativeProba.
func NewLinearInterpolated(boundaries, mass []float64, tol float64) (*LinearInterpolated, error) {
	n := len(mass)
	if len(boundaries) != n+1 {
		return nil, fmt.Errorf("distuv: boundaries must have len(mass)+1 entries: %w", simerr.ErrInvalidArgument)
	}
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i] <= boundaries[i-1] {
			return nil, fmt.Errorf("distuv: boundaries must be strictly increasing: %w", simerr.ErrInvalidArgument)
		}
	}
	cum, err := CalculateCumulativeProba(mass, tol)
	if err != nil {
		return nil, err
	}
	return &LinearInterpolated{Boundaries: boundaries, Mass: mass, cumulative: cum}, nil
}

func (l *LinearInterpolated) Infimum() float64  { return l.Boundaries[0] }
func (l *LinearInterpolated) Supremum() float64 { return l.Boundaries[len(l.Boundaries)-1] }

func (l *LinearInterpolated) bucketOf(x float64) int {
	// Returns the index i such that Boundaries[i] <= x < Boundaries[i+1],
	// clamped to the valid range.
	n := len(l.Mass)
	idx := sort.SearchFloat64s(l.Boundaries, x)
	if idx > 0 && (idx == len(l.Boundaries) || l.Boundaries[idx] > x) {
		idx--
	}
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

func (l *LinearInterpolated) CDF(x float64) float64 {
	if x <= l.Boundaries[0] {
		return 0
	}
	if x >= l.Supremum() {
		return 1
	}
	i := l.bucketOf(x)
	lo, hi := l.Boundaries[i], l.Boundaries[i+1]
	frac := (x - lo) / (hi - lo)
	return l.cumulative[i] + frac*(l.cumulative[i+1]-l.cumulative[i])
}

func (l *LinearInterpolated) CDF2(x float64) float64 { return l.CDF(x) }

// ICDF uses binary search over the cumulative probability vector, then
// linearly interpolates within the located bucket.
func (l *LinearInterpolated) ICDF(p float64) float64 {
	p = ClampProbability(p)
	if p <= 0 {
		return l.Boundaries[0]
	}
	if p >= 1 {
		return l.Supremum()
	}
	i := sort.SearchFloat64s(l.cumulative, p)
	if i == 0 {
		i = 1
	}
	if i >= len(l.cumulative) {
		i = len(l.cumulative) - 1
	}
	lo, hi := l.cumulative[i-1], l.cumulative[i]
	if hi == lo {
		return l.Boundaries[i-1]
	}
	frac := (p - lo) / (hi - lo)
	return l.Boundaries[i-1] + frac*(l.Boundaries[i]-l.Boundaries[i-1])
}

func (l *LinearInterpolated) Prob(x float64) float64 {
	if x < l.Boundaries[0] || x > l.Supremum() {
		return 0
	}
	i := l.bucketOf(x)
	width := l.Boundaries[i+1] - l.Boundaries[i]
	return l.Mass[i] / width
}

// EstimateLinearInterpolated bins sample by the provided boundaries,
// optionally rejecting NaNs and out-of-range values rather than failing.
func EstimateLinearInterpolated(sample, boundaries []float64, rejectOutOfRange bool, tol float64) (*LinearInterpolated, error) {
	n := len(boundaries) - 1
	if n <= 0 {
		return nil, fmt.Errorf("distuv: need at least 2 boundaries: %w", simerr.ErrInvalidArgument)
	}
	counts := make([]float64, n)
	total := 0.0
	for _, x := range sample {
		if math.IsNaN(x) {
			if rejectOutOfRange {
				continue
			}
			return nil, fmt.Errorf("distuv: NaN in sample: %w", simerr.ErrInvalidArgument)
		}
		if x < boundaries[0] || x > boundaries[n] {
			if rejectOutOfRange {
				continue
			}
			return nil, fmt.Errorf("distuv: sample value out of range: %w", simerr.ErrOutOfRange)
		}
		idx := sort.SearchFloat64s(boundaries, x)
		if idx > 0 && (idx == len(boundaries) || boundaries[idx] > x) {
			idx--
		}
		if idx >= n {
			idx = n - 1
		}
		counts[idx]++
		total++
	}
	if total == 0 {
		return nil, fmt.Errorf("distuv: no in-range samples: %w", simerr.ErrEstimationFailed)
	}
	mass := make([]float64, n)
	for i := range counts {
		mass[i] = counts[i] / total
	}
	return NewLinearInterpolated(boundaries, mass, tol)
}

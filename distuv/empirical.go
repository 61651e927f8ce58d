package distuv

import (
	"fmt"
	"math"
	"sort"

	"microsimcore/simerr"
)

// Empirical is the empirical distribution of a (non-empty) sample: its
// support is [min,max] of the sample, its PDF is +Inf at sample points and
// 0 elsewhere, and its CDF is the usual empirical CDF (a right-continuous
// step function).
type Empirical struct {
	sorted []float64
}

// NewEmpirical copies and sorts sample.
func NewEmpirical(sample []float64) (*Empirical, error) {
	if len(sample) == 0 {
		return nil, fmt.Errorf("distuv: empirical distribution needs a non-empty sample: %w", simerr.ErrInvalidArgument)
	}
	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)
	return &Empirical{sorted: sorted}, nil
}

func (e *Empirical) Infimum() float64  { return e.sorted[0] }
func (e *Empirical) Supremum() float64 { return e.sorted[len(e.sorted)-1] }

// CDF returns the fraction of sample points <= x (right-continuous).
func (e *Empirical) CDF(x float64) float64 {
	n := len(e.sorted)
	idx := sort.SearchFloat64s(e.sorted, math.Nextafter(x, math.Inf(1)))
	return float64(idx) / float64(n)
}

// CDF2 returns the fraction of sample points < x (left-continuous).
func (e *Empirical) CDF2(x float64) float64 {
	n := len(e.sorted)
	idx := sort.SearchFloat64s(e.sorted, x)
	return float64(idx) / float64(n)
}

// ICDF returns the ceil(p*n)-th order statistic (1-indexed), per spec §4.3.
func (e *Empirical) ICDF(p float64) float64 {
	p = ClampProbability(p)
	n := len(e.sorted)
	if p <= 0 {
		return e.sorted[0]
	}
	k := int(math.Ceil(p * float64(n)))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	return e.sorted[k-1]
}

// Prob returns +Inf at a sample point, 0 elsewhere (a generalized-function
// density, matching the spec's description verbatim).
func (e *Empirical) Prob(x float64) float64 {
	idx := sort.SearchFloat64s(e.sorted, x)
	if idx < len(e.sorted) && e.sorted[idx] == x {
		return math.Inf(1)
	}
	return 0
}

// N returns the sample size.
func (e *Empirical) N() int { return len(e.sorted) }

package popmover

import (
	"fmt"
	"math"

	"microsimcore/qopt"
	"microsimcore/simerr"
)

// SlopeCalculator computes the per-destination linear density coefficients
// a[i], b[i] such that
//
//	distr[i] = int_0^1 (a[i] + b[i]*u) du
//
// with b[i] < 0 for i below the origin bucket, b[i] > 0 above it, and
// b[i] == 0 at the origin bucket itself (averisera's
// PopulationMoverSlopeCalculator). When i indexes a destination bucket and u
// is an individual's percentile within that bucket, a[i]+b[i]*u is the
// conditional density used to place a moved individual inside the bucket,
// preserving the individual's rank within the origin distribution.
type SlopeCalculator struct {
	tolerance float64
}

// NewSlopeCalculator builds a calculator. tolerance is unused by the
// closed-form solver (kept for parity with the nlopt ftol/xtol the original
// took) but validated the same way.
func NewSlopeCalculator(tolerance float64) (*SlopeCalculator, error) {
	if tolerance <= 0 {
		return nil, fmt.Errorf("popmover: slope calculator tolerance must be positive: %w", simerr.ErrInvalidArgument)
	}
	return &SlopeCalculator{tolerance: tolerance}, nil
}

// Calculate returns a and b for the given distribution column distr, pinned
// at fromIdx (distr[fromIdx] itself never moves).
func (sc *SlopeCalculator) Calculate(distr []float64, fromIdx int) (a, b []float64, err error) {
	n := len(distr)
	if fromIdx >= n {
		return nil, nil, fmt.Errorf("popmover: slope calculator: from index out of range: %w", simerr.ErrInvalidArgument)
	}

	bounds := make([]qopt.BoxBound, n)
	for i, p := range distr {
		if i == fromIdx {
			bounds[i] = qopt.BoxBound{Lo: p, Hi: p}
			continue
		}
		l := math.Max(0, 2*p-1)
		u := math.Min(1, 2*p)
		if i < fromIdx {
			// probability of jumping to a lower bucket decreases with rank:
			// b < 0, a > p.
			l = math.Max(l, p)
		} else {
			// probability of jumping to a higher bucket increases with rank:
			// b > 0, a < p.
			u = math.Min(u, p)
		}
		if l > u {
			l, u = p, p
		}
		bounds[i] = qopt.BoxBound{Lo: l, Hi: u}
	}

	fixed := map[int]float64{fromIdx: distr[fromIdx]}
	a, err = qopt.Solve1DBoxSimplexQPMax(distr, bounds, fixed)
	if err != nil {
		return nil, nil, fmt.Errorf("popmover: slope calculator: %w", err)
	}
	b = make([]float64, n)
	for i := range b {
		b[i] = 2 * (distr[i] - a[i])
	}
	return a, b, nil
}

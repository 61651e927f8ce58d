package distuv

import (
	"fmt"
	"math"
	"sort"

	"microsimcore/simerr"
)

// CalculateCumulativeProba builds the cumulative vector for a probability
// mass vector p, forcing the last entry to exactly 1. It fails
// ErrSumNotOne if |sum(p)-1| > tol, when tol >= 0 (a negative tol disables
// the check, matching the spec's "tol >= 0" gate).
func CalculateCumulativeProba(p []float64, tol float64) ([]float64, error) {
	n := len(p)
	cum := make([]float64, n+1)
	sum := 0.0
	for i, v := range p {
		sum += v
		cum[i+1] = sum
	}
	if tol >= 0 && math.Abs(sum-1) > tol {
		return nil, fmt.Errorf("distuv: probabilities sum to %v: %w", sum, simerr.ErrSumNotOne)
	}
	cum[n] = 1
	return cum, nil
}

// InterpolateContinuousCDF linearly interpolates a monotone CDF defined on
// grid x onto the refined grid newX. newX must be a sorted, unique
// superset of x.
func InterpolateContinuousCDF(x, cdf, newX []float64) ([]float64, error) {
	if len(x) != len(cdf) {
		return nil, fmt.Errorf("distuv: x/cdf length mismatch: %w", simerr.ErrInvalidArgument)
	}
	if !isSortedUnique(x) || !isSortedUnique(newX) {
		return nil, fmt.Errorf("distuv: grids must be sorted and unique: %w", simerr.ErrInvalidArgument)
	}
	if !isSuperset(x, newX) {
		return nil, fmt.Errorf("distuv: newX must be a superset of x: %w", simerr.ErrInvalidArgument)
	}

	out := make([]float64, len(newX))
	for i, nx := range newX {
		idx := sort.SearchFloat64s(x, nx)
		if idx < len(x) && x[idx] == nx {
			out[i] = cdf[idx]
			continue
		}
		// nx falls strictly between x[idx-1] and x[idx].
		x0, x1 := x[idx-1], x[idx]
		y0, y1 := cdf[idx-1], cdf[idx]
		frac := (nx - x0) / (x1 - x0)
		out[i] = y0 + frac*(y1-y0)
	}
	return out, nil
}

func isSortedUnique(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return false
		}
	}
	return true
}

func isSuperset(subset, superset []float64) bool {
	i := 0
	for _, v := range subset {
		for i < len(superset) && superset[i] < v {
			i++
		}
		if i >= len(superset) || superset[i] != v {
			return false
		}
	}
	return true
}

// MapValuesViaCDFs produces (x1,x2) pairs aligned by CDF equality for two
// strictly increasing CDFs sampled on the same x-grid: for each grid point
// the pair records the x-value on each curve that attains that cumulative
// probability level.
func MapValuesViaCDFs(x, cdf1, cdf2 []float64) ([][2]float64, error) {
	if len(x) != len(cdf1) || len(x) != len(cdf2) {
		return nil, fmt.Errorf("distuv: grid length mismatch: %w", simerr.ErrInvalidArgument)
	}
	out := make([][2]float64, len(x))
	for i := range x {
		p := cdf1[i]
		x1 := x[i]
		x2 := interpolateInverse(cdf2, x, p)
		out[i] = [2]float64{x1, x2}
	}
	return out, nil
}

func interpolateInverse(cdf, x []float64, p float64) float64 {
	idx := sort.SearchFloat64s(cdf, p)
	if idx <= 0 {
		return x[0]
	}
	if idx >= len(cdf) {
		return x[len(x)-1]
	}
	p0, p1 := cdf[idx-1], cdf[idx]
	x0, x1 := x[idx-1], x[idx]
	if p1 == p0 {
		return x0
	}
	frac := (p - p0) / (p1 - p0)
	return x0 + frac*(x1-x0)
}

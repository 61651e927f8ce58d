package popmover

import (
	"math"
	"sort"

	"microsimcore/numutil"
	"microsimcore/rng"
)

// DrawMovedIndices draws, for n individuals leaving one origin bucket,
// which of len(distr) destination buckets each one moves to, multinomially
// according to distr. Individuals are identified only by their rank
// (0..n-1) in ascending order of whatever quantity the caller sorted them
// by (their current value, typically); the draws themselves are sorted
// before being matched against distr's cumulative thresholds, so rank k
// always lands in a destination bucket no lower than rank k-1's - the
// lowest-percentile individuals in the origin bucket are never moved past
// the highest-percentile ones (averisera's draw_moved_indices).
func DrawMovedIndices(distr []float64, n int, src rng.Source) [][]int {
	draws := make([]float64, n)
	for i := range draws {
		draws[i] = src.NextUniform()
	}
	sort.Float64s(draws)

	cum := make([]float64, len(distr))
	acc := 0.0
	for i, p := range distr {
		acc += p
		cum[i] = acc
	}

	toIndices := make([][]int, len(distr))
	for rank, u := range draws {
		c := 0
		for c < len(cum)-1 && u >= cum[c] {
			c++
		}
		toIndices[c] = append(toIndices[c], rank)
	}
	return toIndices
}

// assignNewValuesInBucket draws n new values inside [lo,hi), distributed
// according to the linear density a+b*u on the percentile u, sorted
// ascending so the caller can hand them out in the same rank order it used
// to call DrawMovedIndices (averisera's move_and_draw_new_values).
func assignNewValuesInBucket(n int, a, b, lo, hi float64, src rng.Source) []float64 {
	u := make([]float64, n)
	for i := range u {
		u[i] = src.NextUniform()
	}
	sort.Float64s(u)
	vals := make([]float64, n)
	for i, target := range u {
		// F(1) = a + b/2 is the bucket's total mass; scaling the uniform
		// draw by it makes p follow the normalised density.
		p := inverseLinearDensityCDF(a, b, target*(a+0.5*b))
		vals[i] = lo + p*(hi-lo)
	}
	return vals
}

// inverseLinearDensityCDF inverts F(p) = a*p + 0.5*b*p^2 on [0,1] for the
// density f(p) = a+b*p, returning the p with F(p) == target.
func inverseLinearDensityCDF(a, b, target float64) float64 {
	if math.Abs(b) < 1e-14 {
		if a <= 1e-14 {
			return 0.5
		}
		return clamp01(target / a)
	}
	for _, r := range numutil.SolveQuadratic(0.5*b, a, -target) {
		if r >= -1e-9 && r <= 1+1e-9 {
			return clamp01(r)
		}
	}
	return clamp01(target)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

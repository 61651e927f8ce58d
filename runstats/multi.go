package runstats

import (
	"fmt"
	"math"

	"microsimcore/simerr"
)

// RunningStatisticsMulti composes d marginal RunningStatistics accumulators
// plus the d(d-1)/2 pairwise running covariances needed to reconstruct a
// full covariance matrix incrementally.
type RunningStatisticsMulti struct {
	dim    int
	marg   []RunningStatistics
	pairs  []RunningCovariance // indexed via pairIndex(i,j)
	n      int64
}

// NewRunningStatisticsMulti allocates an accumulator for vectors of
// dimension dim.
func NewRunningStatisticsMulti(dim int) (*RunningStatisticsMulti, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("runstats: dim must be positive: %w", simerr.ErrInvalidArgument)
	}
	marg := make([]RunningStatistics, dim)
	for i := range marg {
		marg[i] = *NewRunningStatistics()
	}
	npairs := dim * (dim - 1) / 2
	pairs := make([]RunningCovariance, npairs)
	for i := range pairs {
		pairs[i] = *NewRunningCovariance()
	}
	return &RunningStatisticsMulti{dim: dim, marg: marg, pairs: pairs}, nil
}

func (r *RunningStatisticsMulti) pairIndex(i, j int) int {
	if i > j {
		i, j = j, i
	}
	// Standard upper-triangular linearization, 0-based, i<j.
	return i*(2*r.dim-i-1)/2 + (j - i - 1)
}

// Add folds in a new observation vector x, which must have length dim.
func (r *RunningStatisticsMulti) Add(x []float64) error {
	if len(x) != r.dim {
		return fmt.Errorf("runstats: expected dim %d, got %d: %w", r.dim, len(x), simerr.ErrInvalidArgument)
	}
	r.n++
	for i := 0; i < r.dim; i++ {
		r.marg[i].Add(x[i])
	}
	for i := 0; i < r.dim; i++ {
		for j := i + 1; j < r.dim; j++ {
			r.pairs[r.pairIndex(i, j)].Add(x[i], x[j])
		}
	}
	return nil
}

// AddIfAllFinite adds x only if pred(x[i]) holds for every component,
// matching the spec's "selective" variant for multivariate accumulators.
func (r *RunningStatisticsMulti) AddIfAllFinite(x []float64, pred func(float64) bool) error {
	for _, v := range x {
		if !pred(v) {
			return nil
		}
	}
	return r.Add(x)
}

// Dim returns the configured dimension.
func (r *RunningStatisticsMulti) Dim() int { return r.dim }

// N returns the number of observations folded in.
func (r *RunningStatisticsMulti) N() int64 { return r.n }

// Mean returns the marginal mean of dimension i.
func (r *RunningStatisticsMulti) Mean(i int) float64 { return r.marg[i].Mean() }

// Variance returns the marginal variance of dimension i.
func (r *RunningStatisticsMulti) Variance(i int) float64 { return r.marg[i].Variance() }

// Covariance returns the running covariance between dimensions i and j
// (i==j returns the marginal variance).
func (r *RunningStatisticsMulti) Covariance(i, j int) float64 {
	if i == j {
		return r.marg[i].Variance()
	}
	return r.pairs[r.pairIndex(i, j)].Covariance()
}

// CovarianceMatrix materializes the full d x d covariance matrix, row-major.
func (r *RunningStatisticsMulti) CovarianceMatrix() []float64 {
	out := make([]float64, r.dim*r.dim)
	for i := 0; i < r.dim; i++ {
		for j := 0; j < r.dim; j++ {
			v := r.Covariance(i, j)
			if math.IsNaN(v) {
				v = 0
			}
			out[i*r.dim+j] = v
		}
	}
	return out
}

// Package distmv provides multivariate distributions over gonum's mat
// types, mirroring the shape of gonum's own distmv package (see
// other_examples/def1479c_gonum-gonum__distmv-normal.go.go) while
// implementing the rank-preserving adjust_distribution semantics spec.md
// §4.4 requires.
package distmv

import (
	"fmt"

	"microsimcore/rng"
	"microsimcore/simerr"
)

// Dist is the contract every multivariate distribution implements.
type Dist interface {
	Dim() int
	// Draw fills x (length Dim()) with one sample.
	Draw(src rng.Source, x []float64)
	// MarginalCDF fills p (length Dim()) with the per-dimension marginal CDF of x.
	MarginalCDF(x, p []float64)
	// MarginalICDF fills x (length Dim()) with the per-dimension marginal ICDF of p.
	MarginalICDF(p, x []float64)
	// AdjustDistribution rank-transforms sample (n x Dim(), row-major) in
	// place so its empirical marginals match this distribution's marginals
	// while preserving rank correlations, where supported; it is a no-op
	// for distributions whose correlation structure is not rank-enforced.
	AdjustDistribution(sample [][]float64)
}

func checkDim(got, want int, context string) error {
	if got != want {
		return fmt.Errorf("distmv: %s: dimension mismatch (got %d want %d): %w", context, got, want, simerr.ErrInvalidArgument)
	}
	return nil
}

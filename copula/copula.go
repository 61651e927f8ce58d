// Package copula implements statistical copulas: distributions on [0,1]^d
// with uniform marginals used to couple arbitrary univariate marginals
// (spec §4.5). Each type satisfies distmv.Copula so it can back a
// distmv.CopulaBacked multivariate distribution.
package copula

import (
	"fmt"

	"microsimcore/rng"
	"microsimcore/simerr"
)

// percentilesInPlace rank-transforms each column of sample into percentiles
// in (0,1), grounded on Statistics::percentiles_inplace: ties share the
// average rank.
func percentilesInPlace(sample [][]float64) {
	n := len(sample)
	if n == 0 {
		return
	}
	d := len(sample[0])
	for c := 0; c < d; c++ {
		col := make([]float64, n)
		idx := make([]int, n)
		for r := 0; r < n; r++ {
			col[r] = sample[r][c]
			idx[r] = r
		}
		rankColumn(col, idx)
		for r := 0; r < n; r++ {
			sample[r][c] = col[r]
		}
	}
}

// rankColumn overwrites col (aligned with idx, which maps sorted position to
// original row) with each element's percentile rank/(n+1).
func rankColumn(col []float64, idx []int) {
	n := len(col)
	order := append([]int(nil), idx...)
	sortBy(order, col)
	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i
		for j+1 < n && col[order[j+1]] == col[order[i]] {
			j++
		}
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}
	for r := 0; r < n; r++ {
		col[r] = ranks[r] / float64(n+1)
	}
}

func sortBy(order []int, values []float64) {
	// insertion sort: copula sample sizes are modest and this keeps the
	// dependency surface to stdlib comparisons only.
	for i := 1; i < len(order); i++ {
		v := order[i]
		j := i - 1
		for j >= 0 && values[order[j]] > values[v] {
			order[j+1] = order[j]
			j--
		}
		order[j+1] = v
	}
}

// Independent is the copula whose coordinates are i.i.d. uniforms.
type Independent struct {
	dim int
}

// NewIndependent builds the independent copula of the given dimension.
func NewIndependent(dim int) (*Independent, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("copula: independent: dim must be positive: %w", simerr.ErrInvalidArgument)
	}
	return &Independent{dim: dim}, nil
}

func (c *Independent) Dim() int { return c.dim }

func (c *Independent) Draw(src rng.Source, x []float64) {
	for i := range x {
		x[i] = src.NextUniform()
	}
}

// AdjustCDFs replaces each column by its percentile rank.
func (c *Independent) AdjustCDFs(sample [][]float64) {
	percentilesInPlace(sample)
}

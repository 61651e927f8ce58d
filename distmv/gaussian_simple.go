package distmv

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"microsimcore/distuv"
	"microsimcore/rng"
	"microsimcore/simerr"
)

// GaussianSimple is a multivariate Gaussian that stores only the square-root
// factor S = U*diag(sqrt(sigma)) of the covariance (and its pseudo-inverse),
// not the covariance itself, per spec §4.4.
type GaussianSimple struct {
	mean   []float64
	s      *mat.Dense // d x d
	invS   *mat.Dense // d x d
	sigmas []float64  // per-dimension marginal std devs
}

// NewGaussianSimple builds the factorized representation from mean and a
// symmetric PSD covariance, via the thin SVD of covariance (matching the
// teacher's own SVD-based OLS fallback idiom).
func NewGaussianSimple(mean []float64, covariance *mat.SymDense) (*GaussianSimple, error) {
	d := len(mean)
	r, c := covariance.Dims()
	if r != d || c != d {
		return nil, fmt.Errorf("distmv: mean/covariance size mismatch: %w", simerr.ErrInvalidArgument)
	}

	var svd mat.SVD
	ok := svd.Factorize(covariance, mat.SVDThin)
	if !ok {
		return nil, fmt.Errorf("distmv: covariance SVD factorization failed: %w", simerr.ErrNotPositiveSemidefinite)
	}
	values := svd.Values(nil)
	var u mat.Dense
	svd.UTo(&u)

	s := mat.NewDense(d, d, nil)
	invS := mat.NewDense(d, d, nil)
	sigmas := make([]float64, d)
	for i := 0; i < d; i++ {
		sigmas[i] = math.Sqrt(covariance.At(i, i))
	}
	for j, lambda := range values {
		if lambda < -1e-8 {
			return nil, fmt.Errorf("distmv: covariance has a negative singular value: %w", simerr.ErrNotPositiveSemidefinite)
		}
		root := math.Sqrt(math.Max(lambda, 0))
		for i := 0; i < d; i++ {
			s.Set(i, j, u.At(i, j)*root)
		}
		if root > 0 {
			for i := 0; i < d; i++ {
				invS.Set(j, i, u.At(i, j)/root)
			}
		}
	}
	return &GaussianSimple{mean: append([]float64(nil), mean...), s: s, invS: invS, sigmas: sigmas}, nil
}

func (g *GaussianSimple) Dim() int { return len(g.mean) }

// S returns the stored square-root factor.
func (g *GaussianSimple) S() *mat.Dense { return g.s }

// InvS returns the stored pseudo-inverse of S.
func (g *GaussianSimple) InvS() *mat.Dense { return g.invS }

func (g *GaussianSimple) Draw(src rng.Source, x []float64) {
	d := g.Dim()
	rows := make([][]float64, d)
	for i := 0; i < d; i++ {
		row := make([]float64, d)
		for j := 0; j < d; j++ {
			row[j] = g.s.At(i, j)
		}
		rows[i] = row
	}
	src.NextGaussians(rows, x)
	for i := range x {
		x[i] += g.mean[i]
	}
}

func (g *GaussianSimple) MarginalCDF(x, p []float64) {
	for i := range x {
		p[i] = distuv.NormCDF((x[i] - g.mean[i]) / g.sigmas[i])
	}
}

func (g *GaussianSimple) MarginalICDF(p, x []float64) {
	for i := range p {
		x[i] = g.mean[i] + g.sigmas[i]*distuv.NormSInv(p[i])
	}
}

// AdjustDistribution centers sample, maps it to i.i.d. space via invS,
// percentile-ranks each column, re-quantiles through the standard normal,
// re-applies S, and restores the mean -- the rank-correlation-preserving
// transform of spec §4.4.
func (g *GaussianSimple) AdjustDistribution(sample [][]float64) {
	d := g.Dim()
	n := len(sample)
	if n == 0 {
		return
	}
	centered := make([][]float64, n)
	for r, row := range sample {
		cr := make([]float64, d)
		for c := 0; c < d; c++ {
			cr[c] = row[c] - g.mean[c]
		}
		centered[r] = cr
	}
	iid := make([][]float64, n)
	for r := range iid {
		iid[r] = make([]float64, d)
	}
	for c := 0; c < d; c++ {
		for r := 0; r < n; r++ {
			acc := 0.0
			for k := 0; k < d; k++ {
				acc += centered[r][k] * g.invS.At(c, k)
			}
			iid[r][c] = acc
		}
	}
	for c := 0; c < d; c++ {
		col := make([]float64, n)
		for r := 0; r < n; r++ {
			col[r] = iid[r][c]
		}
		ranked := percentilesInPlace(col)
		for r := 0; r < n; r++ {
			iid[r][c] = distuv.NormSInv(ranked[r])
		}
	}
	for r := 0; r < n; r++ {
		for c := 0; c < d; c++ {
			acc := 0.0
			for k := 0; k < d; k++ {
				acc += iid[r][k] * g.s.At(c, k)
			}
			sample[r][c] = acc + g.mean[c]
		}
	}
}

// percentilesInPlace returns, for each element of x, its rank-based
// percentile (rank/(n+1)) so that ties share the average rank and no
// element lands exactly at 0 or 1.
func percentilesInPlace(x []float64) []float64 {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })
	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i
		for j+1 < n && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avgRank := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avgRank
		}
		i = j + 1
	}
	out := make([]float64, n)
	for i, r := range ranks {
		out[i] = r / float64(n+1)
	}
	return out
}

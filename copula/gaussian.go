package copula

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"microsimcore/distmv"
	"microsimcore/distuv"
	"microsimcore/simerr"
)

// Gaussian is the alpha=2 specialization of AlphaStable: it retains the
// correlation matrix rho and offers conditioning on a subset of the
// correlated factors.
type Gaussian struct {
	*AlphaStable
	rho *mat.SymDense
}

// NewGaussian builds a Gaussian copula from a correlation matrix, per spec
// §4.5 constructor 3 (SVD-based factor truncation).
func NewGaussian(rho *mat.SymDense, minVarianceFract float64, maxNbrFactors int) (*Gaussian, error) {
	as, err := NewAlphaStableFromCorrelation(rho, minVarianceFract, maxNbrFactors)
	if err != nil {
		return nil, err
	}
	return &Gaussian{AlphaStable: as, rho: rho}, nil
}

// Rho returns the correlation matrix.
func (g *Gaussian) Rho() *mat.SymDense { return g.rho }

// Conditional computes the Gaussian conditional of the latent factors on a
// partial observation a (NaN marks a free coordinate), returning its
// factorized representation directly (spec §4.5's "conditional(a, cond_dim)").
func (g *Gaussian) Conditional(a []float64) (*distmv.GaussianSimple, error) {
	d := g.Dim()
	if len(a) != d {
		return nil, fmt.Errorf("copula: gaussian: size mismatch: %w", simerr.ErrInvalidArgument)
	}
	mean := make([]float64, d)
	rich, err := distmv.NewGaussianRich(mean, g.rho)
	if err != nil {
		return nil, err
	}
	newMean, newCov, err := rich.Conditional(a)
	if err != nil {
		return nil, err
	}
	return distmv.NewGaussianSimple(newMean, newCov)
}

// Marginal is the univariate distribution of one correlated variable whose
// copula factor is mapped through a marginal CDF/ICDF pair.
type Marginal = distuv.Dist

// ConditionalWithMarginals implements the higher-level conditioning routine
// of spec §4.5: given marginal distributions for each coordinate and a
// partial observation x (NaN marks free coordinates), it (i) inverts each
// observed x[i] through its marginal's CDF and the standard normal
// quantile, (ii) computes the Gaussian conditional over the free
// coordinates, (iii) wraps the result in a Transformed multivariate
// distribution that maps back to the original marginals.
func ConditionalWithMarginals(g *Gaussian, marginals []Marginal, x []float64) (*distmv.Transformed, error) {
	d := g.Dim()
	if len(marginals) != d || len(x) != d {
		return nil, fmt.Errorf("copula: gaussian: size mismatch: %w", simerr.ErrInvalidArgument)
	}
	a := make([]float64, d)
	var transforms, inverseTransforms []func(float64) float64
	for i := 0; i < d; i++ {
		m := marginals[i]
		if m == nil {
			return nil, fmt.Errorf("copula: gaussian: nil marginal at index %d: %w", i, simerr.ErrInvalidArgument)
		}
		inverseTransform := func(y float64) float64 { return distuv.NormSInv(m.CDF(y)) }
		if math.IsNaN(x[i]) {
			a[i] = math.NaN()
			transforms = append(transforms, func(z float64) float64 { return m.ICDF(distuv.NormCDF(z)) })
			inverseTransforms = append(inverseTransforms, inverseTransform)
		} else {
			a[i] = inverseTransform(x[i])
		}
	}
	cond, err := g.Conditional(a)
	if err != nil {
		return nil, err
	}
	return distmv.NewTransformed(cond, transforms, inverseTransforms)
}

// FromSample estimates rho by rank-then-Gaussianize followed by correlation
// estimation, then builds a Gaussian copula from it, per spec §4.5's
// `from_sample`.
func FromSample(sample [][]float64, minVarianceFract float64, maxNbrFactors int) (*Gaussian, error) {
	n := len(sample)
	if n == 0 {
		return nil, fmt.Errorf("copula: gaussian: empty sample: %w", simerr.ErrNoData)
	}
	d := len(sample[0])
	work := make([][]float64, n)
	for r, row := range sample {
		work[r] = append([]float64(nil), row...)
	}
	percentilesInPlace(work)
	for r := range work {
		for c := 0; c < d; c++ {
			work[r][c] = distuv.NormSInv(work[r][c])
		}
	}

	means := make([]float64, d)
	for c := 0; c < d; c++ {
		for r := 0; r < n; r++ {
			means[c] += work[r][c]
		}
		means[c] /= float64(n)
	}
	cov := mat.NewSymDense(d, nil)
	for c1 := 0; c1 < d; c1++ {
		for c2 := c1; c2 < d; c2++ {
			acc := 0.0
			for r := 0; r < n; r++ {
				acc += (work[r][c1] - means[c1]) * (work[r][c2] - means[c2])
			}
			cov.SetSym(c1, c2, acc/float64(n-1))
		}
	}
	rho := mat.NewSymDense(d, nil)
	for c1 := 0; c1 < d; c1++ {
		s1 := math.Sqrt(math.Max(cov.At(c1, c1), 1e-300))
		for c2 := c1; c2 < d; c2++ {
			s2 := math.Sqrt(math.Max(cov.At(c2, c2), 1e-300))
			if c1 == c2 {
				rho.SetSym(c1, c2, 1.0)
			} else {
				rho.SetSym(c1, c2, cov.At(c1, c2)/(s1*s2))
			}
		}
	}
	return NewGaussian(rho, minVarianceFract, maxNbrFactors)
}

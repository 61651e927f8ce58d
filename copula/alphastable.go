package copula

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"microsimcore/distuv"
	"microsimcore/numutil"
	"microsimcore/rng"
	"microsimcore/simerr"
)

const casEps = 1e-12

// AlphaStable correlates d variables via Y = S*Z where Z are i.i.d.
// alpha-stable with standard scale (spec §4.5). It is a multi-factor
// copula: correlated coordinates are mapped onto correlated factors with a
// known marginal distribution (standard normal for alpha=2, standard
// Cauchy for alpha=1).
//
// This module's rng.NextAlphaStable treats alpha=2 as a direct draw from a
// unit-variance standard normal (not the stable distribution's own
// "c"-scale convention, where alpha=2 corresponds to variance 2c^2). Row
// normalization therefore targets unit induced scale uniformly across all
// alpha, including alpha=2 -- the 1/sqrt(2) correction the original source
// applies to its RNG's Gaussian branch is unnecessary here because our
// NextAlphaStable(2) already returns a unit-variance Gaussian.
type AlphaStable struct {
	alpha float64
	s     *mat.Dense // d x m
	invS  *mat.Dense // m x d, pseudo-inverse of s
}

func (a *AlphaStable) Dim() int { r, _ := a.s.Dims(); return r }

// Alpha returns the stability index.
func (a *AlphaStable) Alpha() float64 { return a.alpha }

// S returns the factor loading matrix.
func (a *AlphaStable) S() *mat.Dense { return a.s }

// NewAlphaStableFromMatrix builds the copula from a d x m loading matrix,
// rescaling each row so the induced scale of Y_i equals 1.
func NewAlphaStableFromMatrix(alpha float64, s *mat.Dense) (*AlphaStable, error) {
	if alpha <= 0 || alpha > 2 {
		return nil, fmt.Errorf("copula: alpha-stable: alpha out of range: %w", simerr.ErrOutOfRange)
	}
	rows, cols := s.Dims()
	scaled := mat.NewDense(rows, cols, nil)
	scaled.Copy(s)
	for i := 0; i < rows; i++ {
		sum := 0.0
		for j := 0; j < cols; j++ {
			sum += math.Pow(math.Abs(scaled.At(i, j)), alpha)
		}
		scale := math.Pow(sum, 1/alpha)
		if scale > 0 {
			for j := 0; j < cols; j++ {
				scaled.Set(i, j, scaled.At(i, j)/scale)
			}
		}
	}
	invS, err := numutil.PseudoInverse(scaled, casEps)
	if err != nil {
		return nil, err
	}
	return &AlphaStable{alpha: alpha, s: scaled, invS: invS}, nil
}

// NewAlphaStableFromLoadings builds a single-common-factor copula: d
// loadings beta with |beta_i|<=1, S = [diag(beta) | diag((1-|beta|^alpha)^(1/alpha))].
func NewAlphaStableFromLoadings(alpha float64, loadings []float64) (*AlphaStable, error) {
	if alpha <= 0 || alpha > 2 {
		return nil, fmt.Errorf("copula: alpha-stable: alpha out of range: %w", simerr.ErrOutOfRange)
	}
	d := len(loadings)
	s := mat.NewDense(d, d+1, nil)
	for i, beta := range loadings {
		if math.Abs(beta) > 1 {
			return nil, fmt.Errorf("copula: alpha-stable: loading outside [-1,1]: %w", simerr.ErrOutOfRange)
		}
		s.Set(i, i, beta)
		s.Set(i, d, math.Pow(math.Max(1-math.Pow(math.Abs(beta), alpha), 0), 1/alpha))
	}
	invS, err := numutil.PseudoInverse(s, casEps)
	if err != nil {
		return nil, err
	}
	return &AlphaStable{alpha: alpha, s: s, invS: invS}, nil
}

// NewAlphaStableFromCorrelation builds an alpha=2 (Gaussian) copula from a
// correlation matrix rho by keeping the smallest M singular vectors whose
// cumulative captured variance reaches minVarianceFract*d and M <=
// maxNbrFactors (0 meaning unbounded), failing ErrImpossibleConstraints if
// both cannot be satisfied simultaneously.
func NewAlphaStableFromCorrelation(rho *mat.SymDense, minVarianceFract float64, maxNbrFactors int) (*AlphaStable, error) {
	n, _ := rho.Dims()
	if minVarianceFract > 1.0 {
		return nil, fmt.Errorf("copula: alpha-stable: minimum variance fraction above 1: %w", simerr.ErrInvalidArgument)
	}
	maxM := maxNbrFactors
	if maxM <= 0 {
		maxM = n
	}
	maxVar := minVarianceFract * float64(n)

	var svd mat.SVD
	if !svd.Factorize(rho, mat.SVDThin) {
		return nil, fmt.Errorf("copula: alpha-stable: correlation SVD failed: %w", simerr.ErrNotPositiveSemidefinite)
	}
	values := svd.Values(nil)
	var u mat.Dense
	svd.UTo(&u)

	m := 0
	sumVar := 0.0
	for i := 0; i < n; i++ {
		lambda := values[i]
		if lambda < -casEps {
			return nil, fmt.Errorf("copula: alpha-stable: rho is not positive semidefinite: %w", simerr.ErrNotPositiveSemidefinite)
		}
		lambda = math.Max(lambda, 0)
		if sumVar < maxVar && m < maxM {
			sumVar += lambda
			m++
		}
	}
	if sumVar < maxVar*(1-1e-8) || m > maxM {
		return nil, fmt.Errorf("copula: alpha-stable: variance conditions impossible to satisfy: %w", simerr.ErrImpossibleConstraints)
	}

	s := mat.NewDense(n, m, nil)
	for j := 0; j < m; j++ {
		lambda := values[j]
		scale := math.Sqrt(math.Max(lambda*float64(n)/sumVar, 0))
		for i := 0; i < n; i++ {
			s.Set(i, j, u.At(i, j)*scale)
		}
	}
	invS, err := numutil.PseudoInverse(s, casEps)
	if err != nil {
		return nil, err
	}
	return &AlphaStable{alpha: 2, s: s, invS: invS}, nil
}

// Draw fills x (uniform marginal CDFs of the copula) via draw_corr_factors
// followed by the marginal factor CDF.
func (a *AlphaStable) Draw(src rng.Source, x []float64) {
	d := a.Dim()
	_, m := a.s.Dims()
	z := make([]float64, m)
	for i := range z {
		z[i] = src.NextAlphaStable(a.alpha)
	}
	for i := 0; i < d; i++ {
		y := 0.0
		for j := 0; j < m; j++ {
			y += a.s.At(i, j) * z[j]
		}
		x[i] = a.marginalFactorCDF(y)
	}
}

func (a *AlphaStable) marginalFactorCDF(x float64) float64 {
	switch a.alpha {
	case 2:
		return distuv.NormCDF(x)
	case 1:
		return distuv.StandardCauchy.CDF(x)
	default:
		panic(simerr.ErrNotImplemented)
	}
}

func (a *AlphaStable) marginalFactorICDF(p float64) float64 {
	switch a.alpha {
	case 2:
		return distuv.NormSInv(p)
	case 1:
		return distuv.StandardCauchy.ICDF(p)
	default:
		panic(simerr.ErrNotImplemented)
	}
}

// AdjustCDFs maps uniforms to inverse-marginal factor space, solves
// Z = S+ * Y, percentile-ranks Z columnwise, re-quantiles back to the Z
// distribution, re-applies S, and re-maps via the marginal factor CDF.
func (a *AlphaStable) AdjustCDFs(sample [][]float64) {
	d := a.Dim()
	_, m := a.s.Dims()
	n := len(sample)
	if n == 0 {
		return
	}
	y := make([][]float64, n)
	for r, row := range sample {
		yr := make([]float64, d)
		for i := 0; i < d; i++ {
			yr[i] = a.marginalFactorICDF(row[i])
		}
		y[r] = yr
	}
	z := make([][]float64, n)
	for r := range z {
		zr := make([]float64, m)
		for j := 0; j < m; j++ {
			acc := 0.0
			for i := 0; i < d; i++ {
				acc += y[r][i] * a.invS.At(j, i)
			}
			zr[j] = acc
		}
		z[r] = zr
	}
	percentilesInPlace(z)
	for r := range z {
		for j := 0; j < m; j++ {
			z[r][j] = a.marginalFactorICDF(z[r][j])
		}
	}
	for r := range sample {
		for i := 0; i < d; i++ {
			acc := 0.0
			for j := 0; j < m; j++ {
				acc += z[r][j] * a.s.At(i, j)
			}
			sample[r][i] = a.marginalFactorCDF(acc)
		}
	}
}

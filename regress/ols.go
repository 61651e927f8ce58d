// Package regress fits and compares linear models: an SVD-based ordinary
// least squares solver (OLS) and a bottom-up factor selection driver built
// on top of it (averisera's core/ols.hpp, core/factor_selection_bottom_up.hpp).
package regress

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"microsimcore/simerr"
)

// OLS fits y = X*a + b by least squares and, depending on which of its
// toggles are enabled, derives residuals, goodness-of-fit metrics and the
// coefficient covariance matrix. The toggles cascade: enabling
// CalculateCoefficientCovarianceMatrix implies CalculateMetrics, which
// implies CalculateResiduals, which implies CalculatePrediction - mirroring
// averisera's OLS setter chain.
type OLS struct {
	FitIntercept bool

	calculatePrediction                  bool
	calculateResiduals                   bool
	calculateMetrics                     bool
	calculateCoefficientCovarianceMatrix bool

	empty bool
	a     []float64
	b     float64

	prediction []float64
	residuals  []float64

	ssr, sst           float64
	r2, adjR2          float64
	bic, emptyBIC, aic float64

	inverseResultCovariance *mat.Dense
	resultCovariance        *mat.Dense
}

// NewOLS returns a model with FitIntercept true and every other toggle off,
// matching the averisera default constructor.
func NewOLS() *OLS {
	return &OLS{FitIntercept: true, empty: true}
}

// SetCalculatePrediction enables storing the fitted values.
func (o *OLS) SetCalculatePrediction(v bool) { o.calculatePrediction = v }

// SetCalculateResiduals enables storing residuals; implies CalculatePrediction.
func (o *OLS) SetCalculateResiduals(v bool) {
	o.calculateResiduals = v
	if v {
		o.SetCalculatePrediction(true)
	}
}

// SetCalculateMetrics enables SSR/SST/R2/AdjR2/AIC/BIC; implies CalculateResiduals.
func (o *OLS) SetCalculateMetrics(v bool) {
	o.calculateMetrics = v
	if v {
		o.SetCalculateResiduals(true)
	}
}

// SetCalculateCoefficientCovarianceMatrix enables the coefficient covariance
// (and its inverse); implies CalculateMetrics.
func (o *OLS) SetCalculateCoefficientCovarianceMatrix(v bool) {
	o.calculateCoefficientCovarianceMatrix = v
	if v {
		o.SetCalculateMetrics(true)
	}
}

func (o *OLS) Empty() bool           { return o.empty }
func (o *OLS) A() []float64          { return o.a }
func (o *OLS) B() float64            { return o.b }
func (o *OLS) Prediction() []float64 { return o.prediction }
func (o *OLS) Residuals() []float64  { return o.residuals }
func (o *OLS) SSR() float64          { return o.ssr }
func (o *OLS) SST() float64          { return o.sst }
func (o *OLS) R2() float64           { return o.r2 }
func (o *OLS) AdjR2() float64        { return o.adjR2 }
func (o *OLS) BIC() float64          { return o.bic }
func (o *OLS) EmptyBIC() float64     { return o.emptyBIC }
func (o *OLS) AIC() float64          { return o.aic }

// InverseResultCovariance returns X'X (post-intercept-augmentation) scaled
// back to match ResultCovariance's units. The free term, if fit, occupies
// the last row/column.
func (o *OLS) InverseResultCovariance() *mat.Dense { return o.inverseResultCovariance }

// ResultCovariance returns the fitted coefficients' covariance matrix.
func (o *OLS) ResultCovariance() *mat.Dense { return o.resultCovariance }

// Fit solves X*a + b = y by thin-SVD least squares. X is n x p (one row per
// sample, one column per factor); y has length n. On return A() has length p
// and B() holds the fitted intercept when FitIntercept is set, 0 otherwise.
func (o *OLS) Fit(X *mat.Dense, y []float64) error {
	n, p := X.Dims()
	if n != len(y) {
		return fmt.Errorf("regress: X has %d rows but y has %d entries: %w", n, len(y), simerr.ErrInvalidArgument)
	}
	if n == 0 || p == 0 {
		return fmt.Errorf("regress: X must be non-empty: %w", simerr.ErrInvalidArgument)
	}

	x := X
	if o.FitIntercept {
		aug := mat.NewDense(n, p+1, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < p; j++ {
				aug.Set(i, j, X.At(i, j))
			}
			aug.Set(i, p, 1)
		}
		x = aug
	}

	yVec := mat.NewVecDense(n, y)
	coeffs, err := solveLeastSquares(x, yVec)
	if err != nil {
		return fmt.Errorf("regress: %w", err)
	}

	if o.calculatePrediction {
		pred := mat.NewVecDense(n, nil)
		pred.MulVec(x, coeffs)
		o.prediction = make([]float64, n)
		for i := 0; i < n; i++ {
			o.prediction[i] = pred.AtVec(i)
		}
	}
	if o.calculateResiduals {
		o.residuals = make([]float64, n)
		for i := 0; i < n; i++ {
			o.residuals[i] = y[i] - o.prediction[i]
		}
	}

	if o.FitIntercept {
		o.b = coeffs.AtVec(p)
		o.a = make([]float64, p)
		for i := 0; i < p; i++ {
			o.a[i] = coeffs.AtVec(i)
		}
	} else {
		o.b = 0
		o.a = make([]float64, p)
		for i := 0; i < p; i++ {
			o.a[i] = coeffs.AtVec(i)
		}
	}

	if o.calculateMetrics {
		o.ssr = sumSquares(o.residuals)
		k := float64(p)
		emptyK := 0.0
		tmp := make([]float64, n)
		copy(tmp, y)
		if o.FitIntercept {
			mean := meanOf(y)
			for i := range tmp {
				tmp[i] -= mean
			}
			k++
			emptyK++
		}
		dfE := float64(n) - k
		dfT := float64(n - 1)
		o.sst = sumSquares(tmp)
		o.r2 = 1 - o.ssr/o.sst
		o.adjR2 = 1 - (o.ssr/dfE)/(o.sst/dfT)
		ll := float64(n) * math.Log(o.ssr/float64(n))
		emptyLL := float64(n) * math.Log(o.sst/float64(n))
		o.aic = 2*k + ll
		logN := math.Log(float64(n))
		o.bic = k*logN + ll
		o.emptyBIC = emptyK*logN + emptyLL
	}

	if o.calculateCoefficientCovarianceMatrix {
		_, xcols := x.Dims()
		xtx := mat.NewDense(xcols, xcols, nil)
		xtx.Mul(x.T(), x)

		var svd mat.SVD
		if !svd.Factorize(xtx, mat.SVDFullU|mat.SVDFullV) {
			return fmt.Errorf("regress: coefficient covariance: SVD factorization failed: %w", simerr.ErrEstimationFailed)
		}
		values := svd.Values(nil)
		var u mat.Dense
		svd.UTo(&u)

		inv := mat.NewDense(xcols, xcols, nil)
		for i := 0; i < xcols; i++ {
			inv.Set(i, i, 1/values[i])
		}
		var tmp1, cov mat.Dense
		tmp1.Mul(&u, inv)
		cov.Mul(&tmp1, u.T())

		sigma2 := o.ssr / float64(n-xcols)
		cov.Scale(sigma2, &cov)
		o.resultCovariance = &cov

		invCov := mat.NewDense(xcols, xcols, nil)
		invCov.Scale(1/sigma2, xtx)
		o.inverseResultCovariance = invCov
	}

	o.empty = false
	return nil
}

// FitXY is the one-factor convenience form: fit a*x + b = y.
func (o *OLS) FitXY(x, y []float64) error {
	X := mat.NewDense(len(x), 1, x)
	return o.Fit(X, y)
}

func solveLeastSquares(x *mat.Dense, y *mat.VecDense) (*mat.VecDense, error) {
	_, cols := x.Dims()
	var svd mat.SVD
	if !svd.Factorize(x, mat.SVDThinU|mat.SVDThinV) {
		return nil, fmt.Errorf("SVD factorization failed: %w", simerr.ErrEstimationFailed)
	}
	rank := svd.Rank(1e-12)
	out := mat.NewVecDense(cols, nil)
	if rank == 0 {
		return out, nil
	}
	var dst mat.Dense
	svd.SolveTo(&dst, y, rank)
	for i := 0; i < cols; i++ {
		out.SetVec(i, dst.At(i, 0))
	}
	return out, nil
}

func sumSquares(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return s
}

func meanOf(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

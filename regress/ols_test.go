package regress

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func sumSquaresOf(v []float64) float64 { return sumSquares(v) }

func TestOLSOneDim(t *testing.T) {
	ols := NewOLS()
	ols.SetCalculateCoefficientCovarianceMatrix(true)
	require.True(t, ols.Empty())

	x := []float64{0, 1, 2, 3, 4, 5}
	const eps = 0.01
	y := []float64{1 - eps, 1.1 + eps, 1.2 - eps, 1.3 + eps, 1.4 - eps, 1.5 + eps}

	require.NoError(t, ols.FitXY(x, y))
	require.False(t, ols.Empty())

	ssr := sumSquaresOf(ols.Residuals())
	assert.LessOrEqual(t, ssr, float64(len(y))*eps*eps)
	assert.InDelta(t, 1.0, ols.B(), 5e-3)
	require.Len(t, ols.A(), 1)
	require.Len(t, ols.Residuals(), len(y))
	assert.InDelta(t, 0.1, ols.A()[0], 2e-3)
	assert.LessOrEqual(t, ols.AdjR2(), ols.R2())
	assert.InDelta(t, ssr, ols.SSR(), 1e-10)

	mean := meanOf(y)
	sst := 0.0
	for _, v := range y {
		sst += (v - mean) * (v - mean)
	}
	assert.InDelta(t, sst, ols.SST(), 1e-10)
	assert.Less(t, ols.BIC(), ols.EmptyBIC())

	cov := ols.ResultCovariance()
	invCov := ols.InverseResultCovariance()
	require.NotNil(t, cov)
	require.NotNil(t, invCov)
	r, c := cov.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	var prod mat.Dense
	prod.Mul(cov, invCov)
	norm := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			d := prod.At(i, j)
			if i == j {
				d -= 1
			}
			norm += d * d
		}
	}
	assert.InDelta(t, 0, math.Sqrt(norm), 1e-8)
	assert.GreaterOrEqual(t, cov.At(0, 0), 0.0)
	assert.GreaterOrEqual(t, cov.At(1, 1), 0.0)

	// without intercept the fit is markedly worse
	ols2 := NewOLS()
	ols2.FitIntercept = false
	ols2.SetCalculateMetrics(true)
	require.NoError(t, ols2.FitXY(x, y))
	ssr2 := sumSquaresOf(ols2.Residuals())
	assert.GreaterOrEqual(t, ssr2, float64(len(y))*eps*eps)
	assert.Equal(t, 0.0, ols2.B())
	assert.Greater(t, ols2.A()[0], 0.1)
	assert.InDelta(t, 1.5/5, ols2.A()[0], 0.1)
	assert.LessOrEqual(t, ols2.AdjR2(), ols2.R2())
	assert.GreaterOrEqual(t, ols2.R2(), 0.0)
	assert.GreaterOrEqual(t, ols2.AdjR2(), 0.0)
	assert.Greater(t, ols2.AIC(), ols.AIC(), "AIC should get worse without intercept")
	assert.Greater(t, ols2.BIC(), ols.BIC(), "BIC should get worse without intercept")
}

func TestOLSTwoDimPerfectFit(t *testing.T) {
	const n = 10
	a0, a1, b := -0.25, 0.6, -0.1
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		X.Set(i, 0, math.Sin(float64(i)))
		X.Set(i, 1, float64(i*i)-20)
		y[i] = a0*X.At(i, 0) + a1*X.At(i, 1) + b
	}

	ols := NewOLS()
	ols.SetCalculateMetrics(true)
	require.NoError(t, ols.Fit(X, y))
	require.Len(t, ols.Residuals(), n)
	require.Len(t, ols.Prediction(), n)
	require.Len(t, ols.A(), 2)
	assert.InDelta(t, b, ols.B(), 1e-8)
	assert.InDelta(t, a0, ols.A()[0], 1e-8)
	assert.InDelta(t, a1, ols.A()[1], 1e-8)
	assert.InDelta(t, 0, ols.SSR(), 1e-8)
	assert.InDelta(t, 1.0, ols.R2(), 1e-8)
	assert.InDelta(t, 1.0, ols.AdjR2(), 1e-8)
	assert.Less(t, ols.BIC(), ols.EmptyBIC()-3)

	aic := ols.AIC()
	bic := ols.BIC()

	// dropping the second factor should make the fit worse
	X1 := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X1.Set(i, 0, X.At(i, 0))
	}
	require.NoError(t, ols.Fit(X1, y))
	assert.Greater(t, ols.AIC()-2, aic, "AIC should get worse with one factor")
	assert.Greater(t, ols.BIC()-2, bic, "BIC should get worse with one factor")
}

func TestOLSBICComparator(t *testing.T) {
	cmp := MakeBICComparator(6)

	const n = 10
	a0, a1, b := -0.25, 0.6, -0.1
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		X.Set(i, 0, math.Sin(float64(i)))
		X.Set(i, 1, float64(i*i)-20)
		y[i] = a0*X.At(i, 0) + a1*X.At(i, 1) + b
	}

	ols1 := NewOLS()
	ols1.SetCalculateMetrics(true)
	require.NoError(t, ols1.Fit(X, y))
	assert.Less(t, ols1.BIC(), ols1.EmptyBIC())

	ols2 := NewOLS()
	ols2.SetCalculateMetrics(true)
	assert.True(t, cmp(ols2, ols1))

	X1 := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X1.Set(i, 0, X.At(i, 0))
	}
	require.NoError(t, ols2.Fit(X1, y))
	assert.True(t, cmp(ols2, ols1))
}

func TestFactorRankResAdjR2(t *testing.T) {
	const n = 10
	a0, a1, b := -0.25, 0.6, -0.1
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		X.Set(i, 0, math.Sin(float64(i)))
		X.Set(i, 1, float64(i*i)-20)
		y[i] = a0*X.At(i, 0) + a1*X.At(i, 1) + b
	}

	rank := FactorRankResAdjR2(true)
	ols := NewOLS()
	r0 := rank(X, y, ols, nil, 0)
	assert.LessOrEqual(t, r0, 1.0)
	assert.GreaterOrEqual(t, r0, -0.1)
	r1 := rank(X, y, ols, nil, 1)
	assert.LessOrEqual(t, r1, 1.0)
	assert.GreaterOrEqual(t, r1, -0.1)

	ols.SetCalculateResiduals(true)
	require.NoError(t, ols.FitXY(colOf(X, 1), y))
	assert.InDelta(t, a1, ols.A()[0], 1e-2)
	r2 := rank(X, y, ols, nil, 0)
	assert.LessOrEqual(t, r2, 1.0)
	assert.GreaterOrEqual(t, r2, -0.1)
}

func colOf(X *mat.Dense, j int) []float64 {
	n, _ := X.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = X.At(i, j)
	}
	return out
}

package varmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestForecastSimpleVAR1NoDeterministic(t *testing.T) {
	spec := ModelSpec{Lags: 1, Deterministic: DetNone}
	A1 := mat.NewDense(1, 1, []float64{0.5})
	rf := &ReducedFormVAR{Model: spec, A: []*mat.Dense{A1}}

	histData := []float64{1.0, 0.5, 0.25, 0.125, 0.0625}
	yHist := mat.NewDense(len(histData), 1, histData)

	fcst, err := rf.Forecast(yHist, 3)
	require.NoError(t, err)
	r, c := fcst.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 1, c)

	expected := []float64{0.03125, 0.015625, 0.0078125}
	for i, want := range expected {
		assert.True(t, almostEqual(fcst.At(i, 0), want, 1e-6))
	}
}

func TestForecastVAR1ConstantOnly(t *testing.T) {
	spec := ModelSpec{Lags: 1, Deterministic: DetConst}
	A1 := mat.NewDense(1, 1, []float64{0.0})
	C := mat.NewDense(1, 1, []float64{1.0})
	rf := &ReducedFormVAR{Model: spec, A: []*mat.Dense{A1}, C: C}

	yHist := mat.NewDense(3, 1, []float64{0, 0, 0})
	fcst, err := rf.Forecast(yHist, 4)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		assert.True(t, almostEqual(fcst.At(i, 0), 1.0, 1e-6))
	}
}

func TestIRFScalarVAR1(t *testing.T) {
	spec := ModelSpec{Lags: 1, Deterministic: DetNone}
	a := 0.5
	A1 := mat.NewDense(1, 1, []float64{a})
	SigmaU := mat.NewSymDense(1, []float64{1.0})
	rf := &ReducedFormVAR{Model: spec, A: []*mat.Dense{A1}, SigmaU: SigmaU}

	horizon := 5
	irf, err := rf.IRF(horizon, 0)
	require.NoError(t, err)
	r, c := irf.Dims()
	assert.Equal(t, horizon, r)
	assert.Equal(t, 1, c)

	val := 1.0
	for h := 0; h < horizon; h++ {
		assert.True(t, almostEqual(irf.At(h, 0), val, 1e-6))
		val *= a
	}
}

func TestEstimateSimpleVAR1NoDeterministic(t *testing.T) {
	data := []float64{1.0, 0.5, 0.25, 0.125, 0.0625, 0.03125, 0.015625}
	Y := mat.NewDense(len(data), 1, data)

	spec := ModelSpec{Lags: 1, Deterministic: DetNone}
	rf, err := Estimate(Y, spec)
	require.NoError(t, err)
	require.Len(t, rf.A, 1)
	assert.True(t, almostEqual(rf.A[0].At(0, 0), 0.5, 1e-2))
	assert.Nil(t, rf.C)
}

func TestEstimateZeroRegressorsGivesZeroCoefficient(t *testing.T) {
	data := []float64{0, 0, 0, 0}
	Y := mat.NewDense(len(data), 1, data)

	spec := ModelSpec{Lags: 1, Deterministic: DetNone}
	rf, err := Estimate(Y, spec)
	require.NoError(t, err)
	require.Len(t, rf.A, 1)
	assert.True(t, almostEqual(rf.A[0].At(0, 0), 0.0, 1e-6))
}

func TestGrangerCausalityDetectsDrivingVariable(t *testing.T) {
	const n = 60
	data := make([]float64, n*2)
	x, y := 1.0, 0.0
	for t := 0; t < n; t++ {
		data[t*2+0] = x
		data[t*2+1] = y
		nx := 0.9*x + 0.01*float64(t%3)
		ny := 0.5*x + 0.1*y
		x, y = nx, ny
	}
	Y := mat.NewDense(n, 2, data)

	spec := ModelSpec{Lags: 1, Deterministic: DetConst}
	rf, err := Estimate(Y, spec)
	require.NoError(t, err)

	result, err := rf.GrangerCausality(Y, []string{"x", "y"}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, "x", result.CauseVar)
	assert.Equal(t, "y", result.EffectVar)
	assert.GreaterOrEqual(t, result.FStatistic, 0.0)
	assert.GreaterOrEqual(t, result.PValue, 0.0)
	assert.LessOrEqual(t, result.PValue, 1.0)
}

func TestGrangerCausalityMatrixSkipsDiagonal(t *testing.T) {
	const n = 30
	data := make([]float64, n*2)
	for t := 0; t < n; t++ {
		data[t*2+0] = math.Sin(float64(t))
		data[t*2+1] = math.Cos(float64(t))
	}
	Y := mat.NewDense(n, 2, data)

	spec := ModelSpec{Lags: 1, Deterministic: DetConst}
	rf, err := Estimate(Y, spec)
	require.NoError(t, err)

	matrix, err := rf.GrangerCausalityMatrix(Y, []string{"a", "b"})
	require.NoError(t, err)
	assert.Nil(t, matrix[0][0])
	assert.Nil(t, matrix[1][1])
	assert.NotNil(t, matrix[0][1])
	assert.NotNil(t, matrix[1][0])
}

package copula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"microsimcore/rng"
)

func TestIndependentDrawUniform(t *testing.T) {
	c, err := NewIndependent(3)
	require.NoError(t, err)
	x := make([]float64, 3)
	c.Draw(rng.NewMT19937(1), x)
	for _, v := range x {
		assert.True(t, v >= 0 && v <= 1)
	}
}

func TestAlphaStableFromLoadingsDim(t *testing.T) {
	a, err := NewAlphaStableFromLoadings(2, []float64{0.5, -0.3, 0.9})
	require.NoError(t, err)
	assert.Equal(t, 3, a.Dim())
	x := make([]float64, 3)
	a.Draw(rng.NewMT19937(2), x)
	for _, v := range x {
		assert.True(t, v >= 0 && v <= 1)
	}
}

func TestAlphaStableFromLoadingsRejectsOutOfRangeBeta(t *testing.T) {
	_, err := NewAlphaStableFromLoadings(2, []float64{1.5})
	assert.Error(t, err)
}

// Scenario B groundwork — Gaussian copula conditional (spec §8).
func TestGaussianConditionalAnalyticMatch(t *testing.T) {
	rho := mat.NewSymDense(3, []float64{
		1, 0.1, -0.2,
		0.1, 1, -0.04,
		-0.2, -0.04, 1,
	})
	g, err := NewGaussian(rho, 1.0, 0)
	require.NoError(t, err)

	cond, err := g.Conditional([]float64{0.3, math.NaN(), math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, 2, cond.Dim())

	src := rng.NewMT19937(99)
	n := 10000
	sumX := make([]float64, 2)
	for i := 0; i < n; i++ {
		x := make([]float64, 2)
		cond.Draw(src, x)
		sumX[0] += x[0]
		sumX[1] += x[1]
	}
	meanX := []float64{sumX[0] / float64(n), sumX[1] / float64(n)}

	// Analytic conditional means: mu_i = rho[i,0]*0.3 for i=1,2.
	analyticMean1 := 0.1 * 0.3
	analyticMean2 := -0.2 * 0.3
	assert.InDelta(t, analyticMean1, meanX[0], 0.1)
	assert.InDelta(t, analyticMean2, meanX[1], 0.1)
}

func TestGaussianFromSampleRecoversPositiveCorrelation(t *testing.T) {
	src := rng.NewMT19937(5)
	n := 2000
	sample := make([][]float64, n)
	for i := 0; i < n; i++ {
		z := src.NextGaussian()
		noise := src.NextGaussian()
		sample[i] = []float64{z, 0.8*z + 0.2*noise}
	}
	g, err := FromSample(sample, 1.0, 0)
	require.NoError(t, err)
	assert.True(t, g.Rho().At(0, 1) > 0.5)
}

func TestAdjustCDFsPreservesUniformSupport(t *testing.T) {
	a, err := NewAlphaStableFromLoadings(2, []float64{0.5, 0.5})
	require.NoError(t, err)
	src := rng.NewMT19937(11)
	sample := make([][]float64, 50)
	for i := range sample {
		x := make([]float64, 2)
		a.Draw(src, x)
		sample[i] = x
	}
	a.AdjustCDFs(sample)
	for _, row := range sample {
		for _, v := range row {
			assert.True(t, v >= -1e-9 && v <= 1+1e-9)
		}
	}
}

package runstats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunningStatisticsMeanVariance(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	rs := NewRunningStatistics()
	for _, x := range xs {
		rs.Add(x)
	}
	assert.InDelta(t, 5.0, rs.Mean(), 1e-9)
	assert.InDelta(t, 4.571428571, rs.Variance(), 1e-6)
	assert.Equal(t, 2.0, rs.Min())
	assert.Equal(t, 9.0, rs.Max())
}

func TestRunningMeanMixedSignInfinity(t *testing.T) {
	rm := &RunningMean{}
	rm.Add(math.Inf(1))
	rm.Add(math.Inf(-1))
	assert.True(t, math.IsNaN(rm.Mean()))
}

func TestRunningMeanConsistentInfinity(t *testing.T) {
	rm := &RunningMean{}
	rm.Add(math.Inf(1))
	rm.Add(math.Inf(1))
	assert.True(t, math.IsInf(rm.Mean(), 1))
}

func TestRunningMeanAddIfFiniteSkipsNaN(t *testing.T) {
	rm := &RunningMean{}
	rm.AddIfFinite(1.0)
	rm.AddIfFinite(math.NaN())
	rm.AddIfFinite(math.Inf(1))
	assert.Equal(t, int64(1), rm.N())
}

func TestRunningCovarianceZeroVarianceCorrelation(t *testing.T) {
	rc := NewRunningCovariance()
	rc.Add(1, 5)
	rc.Add(1, 6)
	rc.Add(1, 7)
	assert.Equal(t, 0.0, rc.Correlation())
}

func TestRunningCovariancePerfectCorrelation(t *testing.T) {
	rc := NewRunningCovariance()
	for i := 1.0; i <= 5; i++ {
		rc.Add(i, 2*i)
	}
	assert.InDelta(t, 1.0, rc.Correlation(), 1e-9)
}

func TestRunningStatisticsMultiCovarianceMatrix(t *testing.T) {
	m, err := NewRunningStatisticsMulti(3)
	assert.NoError(t, err)
	samples := [][]float64{
		{1, 2, 3},
		{2, 1, 4},
		{3, 4, 2},
		{4, 3, 5},
	}
	for _, s := range samples {
		assert.NoError(t, m.Add(s))
	}
	assert.Equal(t, int64(4), m.N())
	cov := m.CovarianceMatrix()
	// Symmetric.
	assert.InDelta(t, cov[0*3+1], cov[1*3+0], 1e-9)
	assert.InDelta(t, cov[0*3+2], cov[2*3+0], 1e-9)
}

func TestRunningStatisticsMultiDimMismatch(t *testing.T) {
	m, _ := NewRunningStatisticsMulti(2)
	err := m.Add([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestRunningStatisticsMultiAddIfAllFinite(t *testing.T) {
	m, _ := NewRunningStatisticsMulti(2)
	err := m.AddIfAllFinite([]float64{1, math.NaN()}, func(v float64) bool { return !math.IsNaN(v) })
	assert.NoError(t, err)
	assert.Equal(t, int64(0), m.N())
	err = m.AddIfAllFinite([]float64{1, 2}, func(v float64) bool { return !math.IsNaN(v) })
	assert.NoError(t, err)
	assert.Equal(t, int64(1), m.N())
}

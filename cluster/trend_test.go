package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDerivativesForward(t *testing.T) {
	series := []float64{1, 3, 6, 10}
	derivs, err := CalculateDerivatives(series, 1, 1, true)
	require.NoError(t, err)
	require.Len(t, derivs, 1)
	assert.Equal(t, []float64{2, 3, 4, 4}, derivs[0])
}

func TestCalculateDerivativesBackward(t *testing.T) {
	series := []float64{1, 3, 6, 10}
	derivs, err := CalculateDerivatives(series, 1, 1, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 3, 4}, derivs[0])
}

func TestCalculateDerivativesRejectsPGreaterThanQ(t *testing.T) {
	_, err := CalculateDerivatives([]float64{1, 2, 3}, 2, 1, true)
	assert.Error(t, err)
}

func TestMakeSampleForKMeansClustering(t *testing.T) {
	series := []float64{0, 1, 2, 4}
	sample, err := MakeSampleForKMeansClustering(series)
	require.NoError(t, err)
	require.Len(t, sample, 4)
	for i, x := range sample {
		require.Len(t, x, 2)
		assert.InDelta(t, float64(i)/3.0, x[1], 1e-12)
	}
}

func TestMakeSampleForKMeansClusteringRejectsShortSeries(t *testing.T) {
	_, err := MakeSampleForKMeansClustering([]float64{1})
	assert.Error(t, err)
}

func TestMapClustersInTrends(t *testing.T) {
	// three points of cluster 1 (low index), three of cluster 0 (high index):
	// trends must rename so the low-index cluster becomes trend 0.
	assignments := []int{1, 1, 1, 0, 0, 0}
	trends, boundaries, misassigned, err := MapClustersInTrends(assignments, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, trends[1])
	assert.Equal(t, 1, trends[0])
	require.Len(t, boundaries, 1)
	assert.Equal(t, 3, boundaries[0])
	assert.Equal(t, []int{0, 0}, misassigned)
}

func TestMapClustersInTrendsWithMisassignment(t *testing.T) {
	// cluster 1 leaks one point into what should be cluster 0's trailing interval.
	assignments := []int{1, 1, 0, 1, 0, 0}
	trends, boundaries, misassigned, err := MapClustersInTrends(assignments, 2)
	require.NoError(t, err)
	require.Len(t, boundaries, 1)
	reassigned := append([]int(nil), assignments...)
	ReassignToTrends(trends, reassigned)
	total := 0
	for _, m := range misassigned {
		total += m
	}
	assert.Greater(t, total, 0)
}

func TestCalcMeanIndices(t *testing.T) {
	assignments := []int{0, 0, 1, 1, 1}
	means := CalcMeanIndices(assignments, 2)
	require.Len(t, means, 2)
	assert.InDelta(t, 0.5, means[0], 1e-12)
	assert.InDelta(t, 3.0, means[1], 1e-12)
}

func TestReassignToTrends(t *testing.T) {
	trends := []int{1, 0}
	assignments := []int{0, 0, 1, 1}
	ReassignToTrends(trends, assignments)
	assert.Equal(t, []int{1, 1, 0, 0}, assignments)
}

package cluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microsimcore/rng"
)

func twoGaussianSample(src rng.Source, n0, n1 int, x0, y0, s0, x1, y1, s1 float64) [][]float64 {
	n := n0 + n1
	sample := make([][]float64, n)
	for i := 0; i < n0; i++ {
		sample[i] = []float64{x0 + s0*src.NextGaussian(), y0 + s0*src.NextGaussian()}
	}
	for i := n0; i < n; i++ {
		sample[i] = []float64{x1 + s1*src.NextGaussian(), y1 + s1*src.NextGaussian()}
	}
	return sample
}

// Two well-separated Gaussians auto-k (spec §8 Scenario F).
func TestClusteriseAutoTwoGaussians(t *testing.T) {
	src := rng.NewMT19937(42)
	sample := twoGaussianSample(src, 20, 200, -1, -1, 0.01, 1, 1, 0.2)

	km, err := NewKMeans(NewKMeansPP(), 1e-6, 1e-6, true, 1000, 50)
	require.NoError(t, err)

	assignments, k, err := km.ClusteriseAuto(sample, src)
	require.NoError(t, err)
	assert.Equal(t, 2, k)

	prev := make([][]float64, k)
	for i := range prev {
		prev[i] = []float64{0, 0}
	}
	centroids := UpdateCentroids(sample, assignments, k, prev)
	// every cluster's centroid is near one of the two Gaussian means.
	for _, c := range centroids {
		near := (math.Abs(c[0]-(-1)) < 0.1 && math.Abs(c[1]-(-1)) < 0.1) ||
			(math.Abs(c[0]-1) < 0.1 && math.Abs(c[1]-1) < 0.1)
		assert.True(t, near, "centroid %v not near either true mean", c)
	}
}

func TestClusteriseAutoSingleBlob(t *testing.T) {
	src := rng.NewMT19937(7)
	n := 60
	sample := make([][]float64, n)
	for i := range sample {
		sample[i] = []float64{0.01 * src.NextGaussian(), 0.01 * src.NextGaussian()}
	}
	km, err := NewKMeans(NewKMeansPP(), 1e-6, 1e-6, false, 1000, 30)
	require.NoError(t, err)
	_, k, err := km.ClusteriseAuto(sample, src)
	require.NoError(t, err)
	assert.Equal(t, 1, k)
}

func TestClusteriseRejectsBadK(t *testing.T) {
	km, err := NewKMeans(NewForgy(), 1e-6, 1e-6, false, 100, 10)
	require.NoError(t, err)
	sample := [][]float64{{0, 0}, {1, 1}}
	_, err = km.Clusterise(sample, 0, rng.NewMT19937(1))
	assert.Error(t, err)
	_, err = km.Clusterise(sample, 2, rng.NewMT19937(1))
	assert.Error(t, err)
}

func TestPooledWithinClusterSSQ(t *testing.T) {
	sample := [][]float64{
		{-1, -0.2}, {-1.1, -0.19}, {-1.2, -0.21}, {0.6, 10}, {0.65, 11},
	}
	assignments := []int{0, 0, 0, 1, 1}
	w, err := PooledWithinClusterSSQ(sample, assignments, 2)
	require.NoError(t, err)
	expected := (0.1*0.1+0.2*0.2+0.1*0.1+0.01*0.01+0.01*0.01+0.02*0.02)/3.0 + (0.05*0.05+1)/2.0
	assert.InDelta(t, expected, w, 1e-10)
}

func TestRescaleByStandardDeviation(t *testing.T) {
	src := rng.NewMT19937(42)
	n := 60000
	sx, sy := 2.0, 0.1
	sample := make([][]float64, n)
	orig := make([][]float64, n)
	for i := 0; i < n; i++ {
		sample[i] = []float64{sx * src.NextGaussian(), sy * src.NextGaussian()}
		orig[i] = append([]float64(nil), sample[i]...)
	}
	RescaleByStandardDeviation(sample)
	for i := 0; i < n; i += 997 {
		assert.InDelta(t, orig[i][0]/sx, sample[i][0], 1e-2)
		assert.InDelta(t, orig[i][1]/sy, sample[i][1], 1e-2)
	}
}

func TestRescaleTo01(t *testing.T) {
	n := 100
	sample := make([][]float64, n)
	for i := 0; i < n; i++ {
		dx := 0.01 * float64(i)
		sample[i] = []float64{-1 + dx, 2 - 5*dx}
	}
	RescaleTo01(sample)
	min0, max0 := math.Inf(1), math.Inf(-1)
	min1, max1 := math.Inf(1), math.Inf(-1)
	for _, x := range sample {
		min0, max0 = math.Min(min0, x[0]), math.Max(max0, x[0])
		min1, max1 = math.Min(min1, x[1]), math.Max(max1, x[1])
	}
	assert.InDelta(t, 0, min0, 1e-12)
	assert.InDelta(t, 1, max0, 1e-12)
	assert.InDelta(t, 0, min1, 1e-12)
	assert.InDelta(t, 1, max1, 1e-12)
}

func TestSampleReferenceStaysInBox(t *testing.T) {
	origin := []float64{0.5, 1.0}
	edges := [][]float64{{1, 0}, {0, 2}}
	src := rng.NewMT19937(42)
	sample, err := SampleReference(origin, edges, 50, src)
	require.NoError(t, err)
	assert.Len(t, sample, 50)
	for _, x := range sample {
		assert.True(t, x[0] >= origin[0]-1e-9 && x[0] <= origin[0]+edges[0][0]+1e-9)
		assert.True(t, x[1] >= origin[1]-1e-9 && x[1] <= origin[1]+edges[1][1]+1e-9)
	}
}

func TestCalculateReferenceBoxPCA(t *testing.T) {
	n := 100
	sample := make([][]float64, n)
	for i := 0; i < n; i++ {
		dx := 0.01 * float64(i)
		sample[i] = []float64{-1 + dx, 2 - 5*dx}
	}
	origin, edges, err := CalculateReferenceBoxPCA(sample)
	require.NoError(t, err)
	require.Len(t, origin, 2)

	norm0 := math.Hypot(edges[0][0], edges[1][0])
	norm1 := math.Hypot(edges[0][1], edges[1][1])
	lo, hi := norm0, norm1
	if lo > hi {
		lo, hi = hi, lo
	}
	assert.InDelta(t, 0, lo, 1e-9)
	assert.InDelta(t, math.Hypot(0.99, 4.95), hi, 1e-9)
}

func TestAcceptHigherK(t *testing.T) {
	k := GapStatistic{Mean: 1.0, StdErr: 0.1}
	kp1Better := GapStatistic{Mean: 1.2, StdErr: 0.1}
	kp1Worse := GapStatistic{Mean: 0.5, StdErr: 0.1}
	assert.True(t, AcceptHigherK(k, kp1Better))
	assert.False(t, AcceptHigherK(k, kp1Worse))
}

func TestForgyReturnsDistinctSamplePoints(t *testing.T) {
	sample := [][]float64{{-1, -0.2}, {-1.1, -0.19}, {-1.2, -0.21}, {0.6, 10}, {0.65, 11}}
	src := rng.NewMT19937(42)
	centroids, err := NewForgy().Initialise(sample, 3, src)
	require.NoError(t, err)
	assert.Len(t, centroids, 3)
	for i := range centroids {
		for j := i + 1; j < len(centroids); j++ {
			assert.NotEqual(t, centroids[i], centroids[j])
		}
	}
}

func TestKMeansPPReturnsSamplePoints(t *testing.T) {
	sample := [][]float64{{-1, -0.2}, {-1.1, -0.19}, {-1.2, -0.21}, {0.6, 10}, {0.65, 11}}
	src := rng.NewMT19937(42)
	centroids, err := NewKMeansPP().Initialise(sample, 3, src)
	require.NoError(t, err)
	assert.Len(t, centroids, 3)
	for _, c := range centroids {
		found := false
		for _, x := range sample {
			if x[0] == c[0] && x[1] == c[1] {
				found = true
				break
			}
		}
		assert.True(t, found)
	}
}

func TestBootstrapKSelection(t *testing.T) {
	src := rng.NewMT19937(42)
	sample := twoGaussianSample(src, 20, 20, -1, -1, 0.01, 1, 1, 0.05)
	km, err := NewKMeans(NewKMeansPP(), 1e-6, 1e-6, true, 1000, 30)
	require.NoError(t, err)
	_, k, kDistr, err := km.ClusteriseBootstrapping(sample, 50, src)
	require.NoError(t, err)
	assert.Equal(t, 2, k)
	require.True(t, len(kDistr) >= 2)
	assert.True(t, kDistr[1] >= kDistr[0])
}

// Package cluster implements K-means clustering with configurable
// initialization, gap-statistic and bootstrap k-selection, and a trend
// extraction layer on top of it (spec §4.6). A sample is represented as a
// slice of points, each a dense []float64 of the same dimension, matching
// the rest of the statistical core's row-major convention (as opposed to
// the column-per-point Eigen layout used by the original source).
package cluster

import (
	"fmt"
	"math"

	"microsimcore/numutil"
	"microsimcore/rng"
	"microsimcore/simerr"
)

// InitStrategy chooses initial cluster centroids from a sample.
type InitStrategy interface {
	Initialise(sample [][]float64, k int, src rng.Source) ([][]float64, error)
}

// KMeans runs Lloyd's algorithm with a configurable initialization
// strategy, convergence tolerances, and gap-statistic k-selection.
type KMeans struct {
	init          InitStrategy
	tolAbs        float64
	tolRel        float64
	refPCA        bool
	maxIterations int
	b             int
}

// NewKMeans builds a KMeans clusterer.
func NewKMeans(init InitStrategy, tolAbs, tolRel float64, refPCA bool, maxIterations, b int) (*KMeans, error) {
	if init == nil {
		return nil, fmt.Errorf("cluster: kmeans: init strategy is nil: %w", simerr.ErrInvalidArgument)
	}
	if tolAbs < 0 || tolRel < 0 {
		return nil, fmt.Errorf("cluster: kmeans: tolerances must be non-negative: %w", simerr.ErrInvalidArgument)
	}
	if maxIterations == 0 {
		return nil, fmt.Errorf("cluster: kmeans: max_iterations must be positive: %w", simerr.ErrInvalidArgument)
	}
	if b == 0 {
		return nil, fmt.Errorf("cluster: kmeans: b must be positive: %w", simerr.ErrInvalidArgument)
	}
	return &KMeans{init: init, tolAbs: tolAbs, tolRel: tolRel, refPCA: refPCA, maxIterations: maxIterations, b: b}, nil
}

func squaredDist(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func checkK(k, n int) error {
	if k == 0 || k >= n {
		return fmt.Errorf("cluster: kmeans: k must be in [1,n): %w", simerr.ErrInvalidArgument)
	}
	return nil
}

// Assign gives every sample point the nearest of the first k centroids,
// breaking exact ties uniformly at random.
func Assign(sample, centroids [][]float64, k int, src rng.Source) []int {
	assignments := make([]int, len(sample))
	dists := make([]float64, k)
	for i, x := range sample {
		for j := 0; j < k; j++ {
			dists[j] = squaredDist(x, centroids[j])
		}
		assignments[i] = numutil.ArgMinRandomTiebreak(dists, src.NextUniform())
	}
	return assignments
}

// UpdateCentroids recomputes each cluster's centroid as the mean of its
// assigned points. A cluster with no assigned points keeps its previous
// centroid.
func UpdateCentroids(sample [][]float64, assignments []int, k int, prev [][]float64) [][]float64 {
	d := len(prev[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for j := range sums {
		sums[j] = make([]float64, d)
	}
	for i, x := range sample {
		j := assignments[i]
		counts[j]++
		for c := 0; c < d; c++ {
			sums[j][c] += x[c]
		}
	}
	centroids := make([][]float64, k)
	for j := 0; j < k; j++ {
		if counts[j] == 0 {
			centroids[j] = append([]float64(nil), prev[j]...)
			continue
		}
		c := make([]float64, d)
		for dim := 0; dim < d; dim++ {
			c[dim] = sums[j][dim] / float64(counts[j])
		}
		centroids[j] = c
	}
	return centroids
}

func averageShift(old, updated [][]float64) float64 {
	sum := 0.0
	for j := range old {
		sum += math.Sqrt(squaredDist(old[j], updated[j]))
	}
	return sum / float64(len(old))
}

// Clusterise runs k-means with the configured initialization strategy,
// iterating until the average centroid shift falls below
// max(tol_abs, tol_rel*prev_shift) or max_iterations is reached.
func (km *KMeans) Clusterise(sample [][]float64, k int, src rng.Source) ([]int, error) {
	n := len(sample)
	if err := checkK(k, n); err != nil {
		return nil, err
	}
	centroids, err := km.init.Initialise(sample, k, src)
	if err != nil {
		return nil, err
	}
	assignments := Assign(sample, centroids, k, src)
	prevShift := 0.0
	for iter := 0; iter < km.maxIterations; iter++ {
		newCentroids := UpdateCentroids(sample, assignments, k, centroids)
		shift := averageShift(centroids, newCentroids)
		centroids = newCentroids
		assignments = Assign(sample, centroids, k, src)
		stop := shift <= km.tolAbs
		if iter > 0 {
			stop = stop || shift <= km.tolRel*prevShift
		}
		prevShift = shift
		if stop {
			break
		}
	}
	return assignments, nil
}

// PooledWithinClusterSSQ sums, over every point, its squared distance to
// its own cluster's centroid (R. Tibshirani, G. Walther, T. Hastie,
// "Estimating the number of clusters in a data set via the gap
// statistic").
func PooledWithinClusterSSQ(sample [][]float64, assignments []int, k int) (float64, error) {
	if len(sample) != len(assignments) {
		return 0, fmt.Errorf("cluster: pooled ssq: sample/assignments size mismatch: %w", simerr.ErrInvalidArgument)
	}
	if len(sample) == 0 {
		return 0, nil
	}
	d := len(sample[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for j := range sums {
		sums[j] = make([]float64, d)
	}
	for i, x := range sample {
		j := assignments[i]
		counts[j]++
		for c := 0; c < d; c++ {
			sums[j][c] += x[c]
		}
	}
	means := make([][]float64, k)
	for j := 0; j < k; j++ {
		means[j] = make([]float64, d)
		if counts[j] == 0 {
			continue
		}
		for c := 0; c < d; c++ {
			means[j][c] = sums[j][c] / float64(counts[j])
		}
	}
	total := 0.0
	for i, x := range sample {
		total += squaredDist(x, means[assignments[i]])
	}
	return total, nil
}

// Rescale divides each dimension i by factors[i], leaving it unchanged if
// the factor is zero.
func Rescale(sample [][]float64, factors []float64) {
	for _, x := range sample {
		for i, f := range factors {
			if f != 0 {
				x[i] /= f
			}
		}
	}
}

// RescaleByStandardDeviation divides each dimension by its sample standard
// deviation.
func RescaleByStandardDeviation(sample [][]float64) {
	n := len(sample)
	if n == 0 {
		return
	}
	d := len(sample[0])
	mean := make([]float64, d)
	for _, x := range sample {
		for i := range mean {
			mean[i] += x[i]
		}
	}
	for i := range mean {
		mean[i] /= float64(n)
	}
	sd := make([]float64, d)
	for _, x := range sample {
		for i := range sd {
			dx := x[i] - mean[i]
			sd[i] += dx * dx
		}
	}
	for i := range sd {
		sd[i] = math.Sqrt(sd[i] / float64(n-1))
	}
	Rescale(sample, sd)
}

// RescaleTo01 rescales each dimension (independently) into [0, 1].
func RescaleTo01(sample [][]float64) {
	n := len(sample)
	if n == 0 {
		return
	}
	d := len(sample[0])
	mins := make([]float64, d)
	maxs := make([]float64, d)
	for j := range mins {
		mins[j] = math.Inf(1)
		maxs[j] = math.Inf(-1)
	}
	for _, x := range sample {
		for j := 0; j < d; j++ {
			if x[j] < mins[j] {
				mins[j] = x[j]
			}
			if x[j] > maxs[j] {
				maxs[j] = x[j]
			}
		}
	}
	for _, x := range sample {
		for j := 0; j < d; j++ {
			span := maxs[j] - mins[j]
			if span > 0 {
				x[j] = (x[j] - mins[j]) / span
			} else {
				x[j] = 0
			}
		}
	}
}

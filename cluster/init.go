package cluster

import (
	"math"

	"microsimcore/rng"
)

// Forgy picks k distinct sample points uniformly at random as the initial
// centroids (https://en.wikipedia.org/wiki/K-means_clustering#Initialization_methods).
type Forgy struct{}

// NewForgy builds the Forgy initialization strategy.
func NewForgy() Forgy { return Forgy{} }

func (Forgy) Initialise(sample [][]float64, k int, src rng.Source) ([][]float64, error) {
	n := len(sample)
	if err := checkK(k, n); err != nil {
		return nil, err
	}
	idxs := make([]int, n)
	for i := range idxs {
		idxs[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + src.NextUniformBelow(n-i-1)
		idxs[i], idxs[j] = idxs[j], idxs[i]
	}
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = append([]float64(nil), sample[idxs[i]]...)
	}
	return centroids, nil
}

// RandomPartition assigns every sample point to a uniformly random cluster
// and uses the resulting cluster means as centroids
// (https://en.wikipedia.org/wiki/K-means_clustering#Initialization_methods).
// An empty cluster falls back to a random sample point.
type RandomPartition struct{}

// NewRandomPartition builds the random-partition initialization strategy.
func NewRandomPartition() RandomPartition { return RandomPartition{} }

func (RandomPartition) Initialise(sample [][]float64, k int, src rng.Source) ([][]float64, error) {
	n := len(sample)
	if err := checkK(k, n); err != nil {
		return nil, err
	}
	d := len(sample[0])
	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = src.NextUniformBelow(k - 1)
	}
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
			idx := src.NextUniformBelow(n - 1)
			centroids[j] = append([]float64(nil), sample[idx]...)
			continue
		}
		c := make([]float64, d)
		for dim := 0; dim < d; dim++ {
			c[dim] = sums[j][dim] / float64(counts[j])
		}
		centroids[j] = c
	}
	return centroids, nil
}

// KMeansPP is the k-means++ initialization strategy: the first centroid is
// chosen uniformly at random, each subsequent centroid with probability
// proportional to its squared distance from the nearest centroid already
// chosen (https://en.wikipedia.org/wiki/K-means%2B%2B).
type KMeansPP struct{}

// NewKMeansPP builds the k-means++ initialization strategy.
func NewKMeansPP() KMeansPP { return KMeansPP{} }

func (KMeansPP) Initialise(sample [][]float64, k int, src rng.Source) ([][]float64, error) {
	n := len(sample)
	if err := checkK(k, n); err != nil {
		return nil, err
	}
	centroids := make([][]float64, 0, k)
	first := src.NextUniformBelow(n - 1)
	centroids = append(centroids, append([]float64(nil), sample[first]...))

	dist2 := make([]float64, n)
	for len(centroids) < k {
		sum := 0.0
		for i, x := range sample {
			best := math.Inf(1)
			for _, c := range centroids {
				if d := squaredDist(x, c); d < best {
					best = d
				}
			}
			dist2[i] = best
			sum += best
		}
		if sum <= 0 {
			idx := src.NextUniformBelow(n - 1)
			centroids = append(centroids, append([]float64(nil), sample[idx]...))
			continue
		}
		target := src.NextUniform() * sum
		acc := 0.0
		chosen := n - 1
		for i, d2 := range dist2 {
			acc += d2
			if acc >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, append([]float64(nil), sample[chosen]...))
	}
	return centroids, nil
}

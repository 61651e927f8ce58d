package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"microsimcore/rng"
	"microsimcore/simerr"
)

// GapStatistic is the (mean, standard error) pair of the gap statistic
// estimate for a given k.
type GapStatistic struct {
	Mean   float64
	StdErr float64
}

// SampleReference draws n points uniformly from the box with corner origin
// and edge vectors given by the columns of edges (edges[i][j] is the i-th
// coordinate of the j-th edge).
func SampleReference(origin []float64, edges [][]float64, n int, src rng.Source) ([][]float64, error) {
	d := len(origin)
	if len(edges) != d {
		return nil, fmt.Errorf("cluster: sample_reference: edges must be d x d: %w", simerr.ErrInvalidArgument)
	}
	for _, row := range edges {
		if len(row) != d {
			return nil, fmt.Errorf("cluster: sample_reference: edges must be d x d: %w", simerr.ErrInvalidArgument)
		}
	}
	result := make([][]float64, n)
	for s := 0; s < n; s++ {
		u := make([]float64, d)
		for j := range u {
			u[j] = src.NextUniform()
		}
		point := make([]float64, d)
		for i := 0; i < d; i++ {
			v := origin[i]
			for j := 0; j < d; j++ {
				v += u[j] * edges[i][j]
			}
			point[i] = v
		}
		result[s] = point
	}
	return result, nil
}

// CalculateReferenceBoxNaive returns an axis-aligned box tightly enclosing
// sample.
func CalculateReferenceBoxNaive(sample [][]float64) ([]float64, [][]float64) {
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
	edges := make([][]float64, d)
	for i := range edges {
		edges[i] = make([]float64, d)
		edges[i][i] = maxs[i] - mins[i]
	}
	return mins, edges
}

// CalculateReferenceBoxPCA returns a box enclosing sample whose edges run
// along the principal axes of its covariance matrix.
func CalculateReferenceBoxPCA(sample [][]float64) ([]float64, [][]float64, error) {
	n := len(sample)
	if n == 0 {
		return nil, nil, fmt.Errorf("cluster: reference_box_pca: empty sample: %w", simerr.ErrNoData)
	}
	d := len(sample[0])
	mean := make([]float64, d)
	for _, x := range sample {
		for i := 0; i < d; i++ {
			mean[i] += x[i]
		}
	}
	for i := range mean {
		mean[i] /= float64(n)
	}
	cov := mat.NewSymDense(d, nil)
	denom := float64(n - 1)
	if denom <= 0 {
		denom = 1
	}
	for a := 0; a < d; a++ {
		for bIdx := a; bIdx < d; bIdx++ {
			acc := 0.0
			for _, x := range sample {
				acc += (x[a] - mean[a]) * (x[bIdx] - mean[bIdx])
			}
			cov.SetSym(a, bIdx, acc/denom)
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return nil, nil, fmt.Errorf("cluster: reference_box_pca: eigendecomposition failed: %w", simerr.ErrNotPositiveSemidefinite)
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	mins := make([]float64, d)
	maxs := make([]float64, d)
	for j := range mins {
		mins[j] = math.Inf(1)
		maxs[j] = math.Inf(-1)
	}
	for _, x := range sample {
		for j := 0; j < d; j++ {
			proj := 0.0
			for i := 0; i < d; i++ {
				proj += (x[i] - mean[i]) * vectors.At(i, j)
			}
			if proj < mins[j] {
				mins[j] = proj
			}
			if proj > maxs[j] {
				maxs[j] = proj
			}
		}
	}

	origin := append([]float64(nil), mean...)
	edges := make([][]float64, d)
	for i := range edges {
		edges[i] = make([]float64, d)
	}
	for j := 0; j < d; j++ {
		span := maxs[j] - mins[j]
		for i := 0; i < d; i++ {
			origin[i] += mins[j] * vectors.At(i, j)
			edges[i][j] = span * vectors.At(i, j)
		}
	}
	return origin, edges, nil
}

// EstimateGapStatistic computes the gap statistic for k clusters against b
// reference samples drawn uniformly from the box (refOrigin, refEdges).
func (km *KMeans) EstimateGapStatistic(sample [][]float64, assignments []int, refOrigin []float64, refEdges [][]float64, k int, src rng.Source) (GapStatistic, error) {
	if k == 0 {
		return GapStatistic{}, fmt.Errorf("cluster: gap_statistic: k must be positive: %w", simerr.ErrInvalidArgument)
	}
	w, err := PooledWithinClusterSSQ(sample, assignments, k)
	if err != nil {
		return GapStatistic{}, err
	}
	logW := math.Log(w)

	n := len(sample)
	logWRefs := make([]float64, km.b)
	for trial := 0; trial < km.b; trial++ {
		refSample, err := SampleReference(refOrigin, refEdges, n, src)
		if err != nil {
			return GapStatistic{}, err
		}
		var refAssignments []int
		if k >= n {
			refAssignments = make([]int, n)
			for i := range refAssignments {
				refAssignments[i] = i % k
			}
		} else {
			refAssignments, err = km.Clusterise(refSample, k, src)
			if err != nil {
				return GapStatistic{}, err
			}
		}
		refW, err := PooledWithinClusterSSQ(refSample, refAssignments, k)
		if err != nil {
			return GapStatistic{}, err
		}
		logWRefs[trial] = math.Log(refW)
	}

	meanLogWRef := 0.0
	for _, v := range logWRefs {
		meanLogWRef += v
	}
	meanLogWRef /= float64(km.b)

	variance := 0.0
	for _, v := range logWRefs {
		d := v - meanLogWRef
		variance += d * d
	}
	variance /= float64(km.b)
	stdErr := math.Sqrt(variance) * math.Sqrt(1+1/float64(km.b))

	return GapStatistic{Mean: meanLogWRef - logW, StdErr: stdErr}, nil
}

// AcceptHigherK implements the Tibshirani/Walther/Hastie rule: accept k+1
// over k when G_{k+1} >= G_k - s_{k+1}.
func AcceptHigherK(kStat, kp1Stat GapStatistic) bool {
	return kp1Stat.Mean >= kStat.Mean-kp1Stat.StdErr
}

// ClusteriseAuto auto-selects k using the gap statistic, returning the smallest
// k for which the rule rejects k+1 over k (or the largest k tried, if every
// increment is accepted).
func (km *KMeans) ClusteriseAuto(sample [][]float64, src rng.Source) ([]int, int, error) {
	n := len(sample)
	var origin []float64
	var edges [][]float64
	var err error
	if km.refPCA {
		origin, edges, err = CalculateReferenceBoxPCA(sample)
	} else {
		origin, edges = CalculateReferenceBoxNaive(sample)
	}
	if err != nil {
		return nil, 0, err
	}

	bestAssignments, err := km.Clusterise(sample, 1, src)
	if err != nil {
		return nil, 0, err
	}
	bestK := 1
	prevStat, err := km.EstimateGapStatistic(sample, bestAssignments, origin, edges, 1, src)
	if err != nil {
		return nil, 0, err
	}

	maxK := n - 1
	for k := 2; k <= maxK; k++ {
		assignments, err := km.Clusterise(sample, k, src)
		if err != nil {
			return nil, 0, err
		}
		stat, err := km.EstimateGapStatistic(sample, assignments, origin, edges, k, src)
		if err != nil {
			return nil, 0, err
		}
		if !AcceptHigherK(prevStat, stat) {
			break
		}
		bestK = k
		bestAssignments = assignments
		prevStat = stat
	}
	return bestAssignments, bestK, nil
}

// ClusteriseBootstrapping resamples sample with replacement nBoot times,
// repeats auto k-selection on each resample, and returns the modal k (with
// assignments for the original sample at that k) and the empirical
// distribution of k from 1 to the largest k observed.
func (km *KMeans) ClusteriseBootstrapping(sample [][]float64, nBoot int, src rng.Source) ([]int, int, []float64, error) {
	n := len(sample)
	var counts []int
	for trial := 0; trial < nBoot; trial++ {
		resample := make([][]float64, n)
		for i := 0; i < n; i++ {
			idx := src.NextUniformBelow(n - 1)
			resample[i] = sample[idx]
		}
		_, k, err := km.ClusteriseAuto(resample, src)
		if err != nil {
			return nil, 0, nil, err
		}
		for len(counts) < k {
			counts = append(counts, 0)
		}
		counts[k-1]++
	}
	kDistr := make([]float64, len(counts))
	modeK, modeCount := 1, -1
	for i, c := range counts {
		kDistr[i] = float64(c) / float64(nBoot)
		if c > modeCount {
			modeCount = c
			modeK = i + 1
		}
	}
	assignments, err := km.Clusterise(sample, modeK, src)
	if err != nil {
		return nil, 0, nil, err
	}
	return assignments, modeK, kDistr, nil
}

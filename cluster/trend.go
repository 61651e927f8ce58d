package cluster

import (
	"fmt"
	"sort"

	"microsimcore/simerr"
)

// CalculateDerivatives returns a (q-p+1)-row matrix with rows D^p x, ...,
// D^q x, where D is the one-step forward or backward difference operator.
func CalculateDerivatives(series []float64, p, q int, forward bool) ([][]float64, error) {
	if p > q {
		return nil, fmt.Errorf("cluster: derivatives: p must be <= q: %w", simerr.ErrInvalidRange)
	}
	rows := make([][]float64, q-p+1)
	cur := append([]float64(nil), series...)
	for order := 0; order <= q; order++ {
		if order >= p {
			rows[order-p] = append([]float64(nil), cur...)
		}
		if order < q {
			cur = differentiateOnce(cur, forward)
		}
	}
	return rows, nil
}

// differentiateOnce applies the one-sided difference operator described in
// TrendClustering::calculate_derivatives: forward differences look ahead
// except at the last point, backward differences look behind except at
// the first.
func differentiateOnce(x []float64, forward bool) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		return out
	}
	if forward {
		for i := 0; i < n-1; i++ {
			out[i] = x[i+1] - x[i]
		}
		out[n-1] = x[n-1] - x[n-2]
	} else {
		for i := 1; i < n; i++ {
			out[i] = x[i] - x[i-1]
		}
		out[0] = x[1] - x[0]
	}
	return out
}

// MakeSampleForKMeansClustering builds the 2-row-per-point sample used by
// trend clustering: the first coordinate is the one-step forward
// difference of series, the second is the time index rescaled to [0,1].
func MakeSampleForKMeansClustering(series []float64) ([][]float64, error) {
	n := len(series)
	if n < 2 {
		return nil, fmt.Errorf("cluster: trend: series must have at least 2 points: %w", simerr.ErrInvalidArgument)
	}
	derivs, err := CalculateDerivatives(series, 1, 1, true)
	if err != nil {
		return nil, err
	}
	d := derivs[0]
	sample := make([][]float64, n)
	for i := 0; i < n; i++ {
		sample[i] = []float64{d[i], float64(i) / float64(n-1)}
	}
	return sample, nil
}

// MapClustersInTrends maps cluster assignments of a time-ordered series to
// trend labels: clusters are renamed in ascending order of their lower
// median index, giving (i) the renaming permutation trends (cluster j maps
// to trend trends[j]), (ii) the k-1 index boundaries between trend
// intervals, and (iii) the count of points inside each trend's interval
// that do not actually carry that trend's cluster label.
func MapClustersInTrends(assignments []int, k int) (trends []int, boundaries []int, misassigned []int, err error) {
	if k == 0 {
		return nil, nil, nil, fmt.Errorf("cluster: trend: k must be positive: %w", simerr.ErrInvalidArgument)
	}
	sizes := calcClusterSizes(assignments, k)
	medians := calcMedianIndices(assignments, k)

	sortedClusters := sortClustersByMedian(medians, k)
	trends = calcClusterRanks(sortedClusters, k)

	boundaries = make([]int, 0, k-1)
	cum := 0
	for l := 0; l < k-1; l++ {
		cum += sizes[sortedClusters[l]]
		boundaries = append(boundaries, cum)
	}

	misassigned = calcErrorsPerCluster(assignments, sortedClusters, boundaries, k)
	return trends, boundaries, misassigned, nil
}

// ReassignToTrends relabels assignments in place, mapping each cluster id
// through trends (cluster j's points become trend trends[j]).
func ReassignToTrends(trends []int, assignments []int) {
	for i, j := range assignments {
		assignments[i] = trends[j]
	}
}

func calcClusterSizes(assignments []int, k int) []int {
	sizes := make([]int, k)
	for _, a := range assignments {
		sizes[a]++
	}
	return sizes
}

// calcMedianIndices returns, for each cluster, the lower median of the
// data-point indices assigned to it (0 for an empty cluster).
func calcMedianIndices(assignments []int, k int) []int {
	idxLists := make([][]int, k)
	for i, a := range assignments {
		idxLists[a] = append(idxLists[a], i)
	}
	medians := make([]int, k)
	for j := 0; j < k; j++ {
		m := len(idxLists[j])
		if m == 0 {
			continue
		}
		medians[j] = idxLists[j][(m-1)/2]
	}
	return medians
}

// CalcMeanIndices returns, for each cluster, the mean of the data-point
// indices assigned to it (0 for an empty cluster).
func CalcMeanIndices(assignments []int, k int) []float64 {
	sums := make([]float64, k)
	counts := make([]int, k)
	for i, a := range assignments {
		sums[a] += float64(i)
		counts[a]++
	}
	means := make([]float64, k)
	for j := 0; j < k; j++ {
		if counts[j] > 0 {
			means[j] = sums[j] / float64(counts[j])
		}
	}
	return means
}

func sortClustersByMedian(medians []int, k int) []int {
	sorted := make([]int, k)
	for j := range sorted {
		sorted[j] = j
	}
	sort.SliceStable(sorted, func(a, b int) bool { return medians[sorted[a]] < medians[sorted[b]] })
	return sorted
}

func calcClusterRanks(sortedClusters []int, k int) []int {
	ranks := make([]int, k)
	for rank, cluster := range sortedClusters {
		ranks[cluster] = rank
	}
	return ranks
}

func calcErrorsPerCluster(assignments []int, sortedClusters []int, boundaries []int, k int) []int {
	n := len(assignments)
	errs := make([]int, k)
	start := 0
	for l := 0; l < k; l++ {
		end := n
		if l < len(boundaries) {
			end = boundaries[l]
		}
		expected := sortedClusters[l]
		count := 0
		for i := start; i < end; i++ {
			if assignments[i] != expected {
				count++
			}
		}
		errs[l] = count
		start = end
	}
	return errs
}

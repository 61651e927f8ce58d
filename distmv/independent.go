package distmv

import (
	"fmt"

	"microsimcore/rng"
	"microsimcore/simerr"
)

// Independent concatenates k independent multivariate members; sampling,
// marginals, and adjustment dispatch by contiguous index range.
type Independent struct {
	members []Dist
	offsets []int // offsets[i] is the starting index of members[i]; len == len(members)+1
}

// NewIndependent builds the product distribution of members, failing
// ErrInvalidArgument if any member is nil.
func NewIndependent(members []Dist) (*Independent, error) {
	offsets := make([]int, len(members)+1)
	for i, m := range members {
		if m == nil {
			return nil, fmt.Errorf("distmv: independent: nil member at index %d: %w", i, simerr.ErrInvalidArgument)
		}
		offsets[i+1] = offsets[i] + m.Dim()
	}
	return &Independent{members: append([]Dist(nil), members...), offsets: offsets}, nil
}

func (ind *Independent) Dim() int { return ind.offsets[len(ind.offsets)-1] }

func (ind *Independent) Draw(src rng.Source, x []float64) {
	for i, m := range ind.members {
		lo, hi := ind.offsets[i], ind.offsets[i+1]
		m.Draw(src, x[lo:hi])
	}
}

func (ind *Independent) MarginalCDF(x, p []float64) {
	for i, m := range ind.members {
		lo, hi := ind.offsets[i], ind.offsets[i+1]
		m.MarginalCDF(x[lo:hi], p[lo:hi])
	}
}

func (ind *Independent) MarginalICDF(p, x []float64) {
	for i, m := range ind.members {
		lo, hi := ind.offsets[i], ind.offsets[i+1]
		m.MarginalICDF(p[lo:hi], x[lo:hi])
	}
}

func (ind *Independent) AdjustDistribution(sample [][]float64) {
	for i, m := range ind.members {
		lo, hi := ind.offsets[i], ind.offsets[i+1]
		sub := make([][]float64, len(sample))
		for r, row := range sample {
			sub[r] = row[lo:hi]
		}
		m.AdjustDistribution(sub)
	}
}

package distmv

import (
	"fmt"

	"microsimcore/distuv"
	"microsimcore/rng"
	"microsimcore/simerr"
)

// Discrete is defined on a d-dimensional box of integers via a row-major
// flat probability tensor (last index changing fastest); it stores a flat
// 1-D discrete distribution over the linearized index plus per-dimension
// marginal distributions. AdjustDistribution is deliberately a no-op: the
// correlation structure between dimensions is not known, so it cannot be
// rank-enforced (spec §4.4).
type Discrete struct {
	flat  *distuv.Discrete
	lb    []int
	sizes []int
	marg  []*distuv.Discrete
}

// NewDiscrete builds a multivariate discrete distribution from a row-major
// flat probability vector and per-dimension inclusive [lb,ub] bounds.
func NewDiscrete(probs []float64, lb, ub []int) (*Discrete, error) {
	if len(lb) == 0 || len(ub) == 0 {
		return nil, fmt.Errorf("distmv: discrete: empty bounds vectors: %w", simerr.ErrInvalidArgument)
	}
	if len(lb) != len(ub) {
		return nil, fmt.Errorf("distmv: discrete: bound sizes mismatch: %w", simerr.ErrInvalidArgument)
	}
	sizes := make([]int, len(lb))
	flatSize := 1
	for i := range lb {
		s := ub[i] - lb[i] + 1
		if s <= 0 {
			return nil, fmt.Errorf("distmv: discrete: marginal size not positive: %w", simerr.ErrInvalidArgument)
		}
		sizes[i] = s
		flatSize *= s
	}
	if len(probs) != flatSize {
		return nil, fmt.Errorf("distmv: discrete: probabilities size mismatch: %w", simerr.ErrInvalidArgument)
	}
	flat, err := distuv.NewDiscrete(0, probs, 1e-9)
	if err != nil {
		return nil, err
	}

	marginalMass := make([][]float64, len(lb))
	for i, s := range sizes {
		marginalMass[i] = make([]float64, s)
	}
	strides := make([]int, len(lb))
	acc := 1
	for i := len(lb) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= sizes[i]
	}
	for flatIdx, p := range probs {
		rem := flatIdx
		for i := range lb {
			idx := rem / strides[i]
			rem -= idx * strides[i]
			marginalMass[i][idx] += p
		}
	}
	marginals := make([]*distuv.Discrete, len(lb))
	for i, m := range marginalMass {
		d, err := distuv.NewDiscrete(lb[i], m, 1e-6)
		if err != nil {
			return nil, err
		}
		marginals[i] = d
	}
	return &Discrete{flat: flat, lb: append([]int(nil), lb...), sizes: sizes, marg: marginals}, nil
}

func (d *Discrete) Dim() int { return len(d.lb) }

func (d *Discrete) Draw(src rng.Source, x []float64) {
	idx := int(distuv.DrawICDF(d.flat, src))
	strides := make([]int, len(d.lb))
	acc := 1
	for i := len(d.lb) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= d.sizes[i]
	}
	rem := idx
	for i := range d.lb {
		v := rem / strides[i]
		rem -= v * strides[i]
		x[i] = float64(d.lb[i] + v)
	}
}

func (d *Discrete) MarginalCDF(x, p []float64) {
	for i := range x {
		p[i] = d.marg[i].CDF(x[i])
	}
}

func (d *Discrete) MarginalICDF(p, x []float64) {
	for i := range p {
		x[i] = d.marg[i].ICDF(p[i])
	}
}

// AdjustDistribution is a no-op: the correlation structure between
// dimensions of a multivariate discrete distribution is not rank-enforced.
func (d *Discrete) AdjustDistribution(sample [][]float64) {}

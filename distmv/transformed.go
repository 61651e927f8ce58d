package distmv

import (
	"fmt"

	"microsimcore/rng"
	"microsimcore/simerr"
)

// Transformed realizes Y_i = F_i(X_i) for a wrapped original distribution X
// and per-dimension strictly increasing transforms/inverses.
type Transformed struct {
	Orig              Dist
	Transforms        []func(float64) float64
	InverseTransforms []func(float64) float64
}

// NewTransformed validates dimensions before wrapping orig.
func NewTransformed(orig Dist, transforms, inverseTransforms []func(float64) float64) (*Transformed, error) {
	if orig == nil {
		return nil, fmt.Errorf("distmv: transformed: nil original distribution: %w", simerr.ErrInvalidArgument)
	}
	d := orig.Dim()
	if len(transforms) != d || len(inverseTransforms) != d {
		return nil, fmt.Errorf("distmv: transformed: vector size mismatch: %w", simerr.ErrInvalidArgument)
	}
	return &Transformed{Orig: orig, Transforms: transforms, InverseTransforms: inverseTransforms}, nil
}

func (t *Transformed) Dim() int { return t.Orig.Dim() }

func (t *Transformed) Draw(src rng.Source, x []float64) {
	t.Orig.Draw(src, x)
	for i := range x {
		x[i] = t.Transforms[i](x[i])
	}
}

func (t *Transformed) MarginalCDF(x, p []float64) {
	for i := range x {
		p[i] = t.InverseTransforms[i](x[i])
	}
	t.Orig.MarginalCDF(p, p)
}

func (t *Transformed) MarginalICDF(p, x []float64) {
	t.Orig.MarginalICDF(p, x)
	for i := range x {
		x[i] = t.Transforms[i](x[i])
	}
}

func (t *Transformed) AdjustDistribution(sample [][]float64) {
	d := t.Dim()
	for _, row := range sample {
		for c := 0; c < d; c++ {
			row[c] = t.InverseTransforms[c](row[c])
		}
	}
	t.Orig.AdjustDistribution(sample)
	for _, row := range sample {
		for c := 0; c < d; c++ {
			row[c] = t.Transforms[c](row[c])
		}
	}
}

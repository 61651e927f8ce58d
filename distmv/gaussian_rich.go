package distmv

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"microsimcore/numutil"
	"microsimcore/simerr"
)

// GaussianRich extends GaussianSimple by retaining the original covariance,
// enabling conditioning on a partial observation (spec §4.4).
type GaussianRich struct {
	*GaussianSimple
	covariance *mat.SymDense
}

// NewGaussianRich builds the rich Gaussian, keeping covariance for conditioning.
func NewGaussianRich(mean []float64, covariance *mat.SymDense) (*GaussianRich, error) {
	simple, err := NewGaussianSimple(mean, covariance)
	if err != nil {
		return nil, err
	}
	return &GaussianRich{GaussianSimple: simple, covariance: covariance}, nil
}

// Conditional computes the Gaussian conditional on a, where a[i] is a fixed
// observation and math.NaN() marks a free coordinate, per spec §4.4:
// partition covariance into G11 (free x free), G12 (free x fixed), G22
// (fixed x fixed); B = G12 * G22^+; mu_cond = mu_free + B*(a_fixed -
// mu_fixed); cov_cond = G11 - B*G12^T.
func (g *GaussianRich) Conditional(a []float64) (mean []float64, covariance *mat.SymDense, err error) {
	d := g.Dim()
	if len(a) != d {
		return nil, nil, fmt.Errorf("distmv: conditional: size mismatch: %w", simerr.ErrInvalidArgument)
	}
	var free, fixed []int
	for i, v := range a {
		if math.IsNaN(v) {
			free = append(free, i)
		} else {
			fixed = append(fixed, i)
		}
	}
	nf, ns := len(free), len(fixed)
	if nf == 0 {
		return nil, nil, fmt.Errorf("distmv: conditional: no free coordinates: %w", simerr.ErrInvalidArgument)
	}

	g22 := mat.NewSymDense(ns, nil)
	for i := 0; i < ns; i++ {
		for j := i; j < ns; j++ {
			g22.SetSym(i, j, g.covariance.At(fixed[i], fixed[j]))
		}
	}
	g12 := mat.NewDense(nf, ns, nil)
	for i := 0; i < nf; i++ {
		for j := 0; j < ns; j++ {
			g12.Set(i, j, g.covariance.At(free[i], fixed[j]))
		}
	}
	v := mat.NewVecDense(ns, nil)
	for i := 0; i < ns; i++ {
		v.SetVec(i, a[fixed[i]]-g.mean[fixed[i]])
	}

	g22inv, err := numutil.PseudoInverse(g22, 1e-12)
	if err != nil {
		return nil, nil, err
	}
	var b mat.Dense // nf x ns, regression coefficients
	b.Mul(g12, g22inv)

	var meanDelta mat.Dense
	meanDelta.Mul(&b, v)

	var bG12T mat.Dense
	bG12T.Mul(&b, g12.T())

	newMean := make([]float64, nf)
	newCov := mat.NewSymDense(nf, nil)
	for i := 0; i < nf; i++ {
		newMean[i] = g.mean[free[i]] + meanDelta.At(i, 0)
	}
	for i := 0; i < nf; i++ {
		for j := i; j < nf; j++ {
			val := g.covariance.At(free[i], free[j]) - bG12T.At(i, j)
			newCov.SetSym(i, j, val)
		}
	}
	return newMean, newCov, nil
}

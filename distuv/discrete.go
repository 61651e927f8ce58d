package distuv

import (
	"fmt"
	"math"

	"microsimcore/simerr"
)

// Discrete is a distribution on the integer support [A, A+n-1] given by a
// probability vector of length n.
type Discrete struct {
	A    int
	P    []float64
	cum  []float64 // length n+1
}

// NewDiscrete validates and precomputes the cumulative vector.
func NewDiscrete(a int, p []float64, tol float64) (*Discrete, error) {
	cum, err := CalculateCumulativeProba(p, tol)
	if err != nil {
		return nil, err
	}
	return &Discrete{A: a, P: p, cum: cum}, nil
}

func (d *Discrete) n() int { return len(d.P) }

func (d *Discrete) Infimum() float64  { return float64(d.A) }
func (d *Discrete) Supremum() float64 { return float64(d.A + d.n() - 1) }

// CDF returns P(X<=x).
func (d *Discrete) CDF(x float64) float64 {
	if x < float64(d.A) {
		return 0
	}
	if x >= float64(d.A+d.n()-1) {
		return 1
	}
	k := int(math.Floor(x)) - d.A
	return d.cum[k+1]
}

// CDF2 returns P(X<x).
func (d *Discrete) CDF2(x float64) float64 {
	if x <= float64(d.A) {
		return 0
	}
	if x > float64(d.A+d.n()-1) {
		return 1
	}
	k := int(math.Ceil(x)) - d.A
	return d.cum[k]
}

// ICDF returns min{k : cdf(A+k) > p}, i.e. on an exact cumulative match it
// rounds up to the next bucket, per spec §4.3 and §8 Scenario C
// (icdf(sum_{k<i} p_k) = a+i, icdf(sum_{k<i} p_k - eps) = a+i-1).
func (d *Discrete) ICDF(p float64) float64 {
	p = ClampProbability(p)
	if p <= 0 {
		return float64(d.A)
	}
	for k := 0; k < d.n(); k++ {
		if d.cum[k+1] > p {
			return float64(d.A + k)
		}
	}
	return float64(d.A + d.n() - 1)
}

// Prob returns the probability mass at integer x (0 for non-integers or
// out-of-support values).
func (d *Discrete) Prob(x float64) float64 {
	if x != math.Trunc(x) {
		return 0
	}
	k := int(x) - d.A
	if k < 0 || k >= d.n() {
		return 0
	}
	return d.P[k]
}

// Mean returns the closed-form mean.
func (d *Discrete) Mean() float64 {
	m := 0.0
	for k, p := range d.P {
		m += float64(d.A+k) * p
	}
	return m
}

// Variance returns the closed-form variance.
func (d *Discrete) Variance() float64 {
	mean := d.Mean()
	v := 0.0
	for k, p := range d.P {
		diff := float64(d.A+k) - mean
		v += diff * diff * p
	}
	return v
}

// Conditional returns the distribution of X | a <= X < b, failing
// ErrImpossibleCondition if that event has zero probability.
func (d *Discrete) Conditional(a, b int) (*Discrete, error) {
	if b <= a {
		return nil, fmt.Errorf("distuv: conditional requires b>a: %w", simerr.ErrInvalidRange)
	}
	lo := a
	if lo < d.A {
		lo = d.A
	}
	hi := b
	if hi > d.A+d.n() {
		hi = d.A + d.n()
	}
	if hi <= lo {
		return nil, fmt.Errorf("distuv: conditioning range outside support: %w", simerr.ErrImpossibleCondition)
	}
	newP := make([]float64, hi-lo)
	mass := 0.0
	for k := lo; k < hi; k++ {
		v := d.P[k-d.A]
		newP[k-lo] = v
		mass += v
	}
	if mass <= 0 {
		return nil, fmt.Errorf("distuv: zero-probability conditioning range: %w", simerr.ErrImpossibleCondition)
	}
	for i := range newP {
		newP[i] /= mass
	}
	return NewDiscrete(lo, newP, -1)
}

package distuv

import (
	"fmt"

	"microsimcore/simerr"
)

// Conditional wraps a parent Dist and restricts it to [A,B), storing
// P(A<=X<B) as the normalizing constant. Constructing it fails
// ErrImpossibleCondition if that probability is zero.
type Conditional struct {
	Parent Dist
	A, B   float64
	mass   float64
}

// NewConditional builds the conditional distribution Parent | A<=X<B.
func NewConditional(parent Dist, a, b float64) (*Conditional, error) {
	if b <= a {
		return nil, fmt.Errorf("distuv: conditional requires b>a: %w", simerr.ErrInvalidRange)
	}
	mass := RangeProb2(parent, a, b)
	if mass <= 0 {
		return nil, fmt.Errorf("distuv: conditioning on a zero-probability event: %w", simerr.ErrImpossibleCondition)
	}
	return &Conditional{Parent: parent, A: a, B: b, mass: mass}, nil
}

func (c *Conditional) Infimum() float64  { return c.A }
func (c *Conditional) Supremum() float64 { return c.B }

// CDF returns (Parent.CDF(min(x,B)) - Parent.CDF2(A)) / mass for x in [A,B).
func (c *Conditional) CDF(x float64) float64 {
	if x < c.A {
		return 0
	}
	upper := x
	if upper > c.B {
		upper = c.B
	}
	v := (c.Parent.CDF(upper) - c.Parent.CDF2(c.A)) / c.mass
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (c *Conditional) CDF2(x float64) float64 {
	if x <= c.A {
		return 0
	}
	upper := x
	if upper > c.B {
		upper = c.B
	}
	v := (c.Parent.CDF2(upper) - c.Parent.CDF2(c.A)) / c.mass
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ICDF rescales p into the parent's probability space and delegates,
// defensively clamping the rescaled probability into [0,1] (spec §9's open
// question) rather than asserting, since floating-point round-trips
// through wide-ranging distributions can land the rescaled value just
// outside the unit interval.
func (c *Conditional) ICDF(p float64) float64 {
	p = ClampProbability(p)
	rescaled := ClampProbability(c.Parent.CDF2(c.A) + p*c.mass)
	x := c.Parent.ICDF(rescaled)
	if x < c.A {
		return c.A
	}
	if x > c.B {
		return c.B
	}
	return x
}

// Mass returns the normalizing constant P(A<=X<B).
func (c *Conditional) Mass() float64 { return c.mass }

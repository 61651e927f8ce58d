package distuv

import (
	"fmt"
	"math"

	"microsimcore/simerr"
)

// TwoSidedExponential has density proportional to exp(-RateMinus*|x|) for
// x<0 and exp(-RatePlus*x) for x>=0, with both rates strictly positive.
//
// spec §9's open question: the source's Infimum/Supremum returned +-Inf
// only when the *opposite* rate was finite, which is backwards. This
// rewrite returns -Inf/+Inf for the corresponding side whenever that side's
// rate is strictly positive and finite, which is the always-true case here
// since both rates are validated positive at construction.
type TwoSidedExponential struct {
	RateMinus float64 // lambda_- , for x<0
	RatePlus  float64 // lambda_+ , for x>=0
}

// NewTwoSidedExponential validates both rates are strictly positive.
func NewTwoSidedExponential(rateMinus, ratePlus float64) (TwoSidedExponential, error) {
	if rateMinus <= 0 || ratePlus <= 0 {
		return TwoSidedExponential{}, fmt.Errorf("distuv: two-sided exponential rates must be positive: %w", simerr.ErrOutOfRange)
	}
	return TwoSidedExponential{RateMinus: rateMinus, RatePlus: ratePlus}, nil
}

func (d TwoSidedExponential) Infimum() float64 { return math.Inf(-1) }
func (d TwoSidedExponential) Supremum() float64 { return math.Inf(1) }

// massNegative is the total probability mass on x<0, i.e.
// lambda_+/(lambda_-+lambda_+) by equating the two half-densities at x=0.
func (d TwoSidedExponential) massNegative() float64 {
	return d.RatePlus / (d.RateMinus + d.RatePlus)
}

func (d TwoSidedExponential) CDF(x float64) float64 {
	pNeg := d.massNegative()
	if x < 0 {
		return pNeg * math.Exp(d.RateMinus*x)
	}
	return pNeg + (1-pNeg)*(1-math.Exp(-d.RatePlus*x))
}

func (d TwoSidedExponential) CDF2(x float64) float64 { return d.CDF(x) }

func (d TwoSidedExponential) ICDF(p float64) float64 {
	p = ClampProbability(p)
	pNeg := d.massNegative()
	if p <= 0 {
		return math.Inf(-1)
	}
	if p >= 1 {
		return math.Inf(1)
	}
	if p < pNeg {
		return math.Log(p/pNeg) / d.RateMinus
	}
	return -math.Log(1-(p-pNeg)/(1-pNeg)) / d.RatePlus
}

func (d TwoSidedExponential) Prob(x float64) float64 {
	pNeg := d.massNegative()
	if x < 0 {
		return pNeg * d.RateMinus * math.Exp(d.RateMinus*x)
	}
	return (1 - pNeg) * d.RatePlus * math.Exp(-d.RatePlus*x)
}

// Mean returns the closed-form mean: (1-pNeg)/RatePlus - pNeg/RateMinus.
func (d TwoSidedExponential) Mean() float64 {
	pNeg := d.massNegative()
	return (1-pNeg)/d.RatePlus - pNeg/d.RateMinus
}

// Variance returns the closed-form variance.
func (d TwoSidedExponential) Variance() float64 {
	pNeg := d.massNegative()
	mean := d.Mean()
	// E[X^2] = pNeg*2/RateMinus^2 + (1-pNeg)*2/RatePlus^2
	ex2 := pNeg*2/(d.RateMinus*d.RateMinus) + (1-pNeg)*2/(d.RatePlus*d.RatePlus)
	return ex2 - mean*mean
}

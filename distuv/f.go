package distuv

import "math"

// F is the F-distribution with D1, D2 degrees of freedom, used by
// package varmodel for the Granger-causality p-value (replacing the
// teacher's direct use of gonum.org/v1/gonum/stat/distuv.F with this
// package's own implementation so the whole core stays self-contained).
type F struct {
	D1, D2 float64
}

func (f F) Infimum() float64  { return 0 }
func (f F) Supremum() float64 { return math.Inf(1) }

// CDF returns P(X<=x) via the regularized incomplete beta identity
// F(x) = I_{d1 x/(d1 x + d2)}(d1/2, d2/2).
func (f F) CDF(x float64) float64 {
	if x <= 0 {
		return 0
	}
	u := f.D1 * x / (f.D1*x + f.D2)
	return regularizedIncompleteBeta(f.D1/2, f.D2/2, u)
}

func (f F) CDF2(x float64) float64 { return f.CDF(x) }

func (f F) ICDF(p float64) float64 {
	p = ClampProbability(p)
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return math.Inf(1)
	}
	lo, hi := 0.0, 1.0
	for f.CDF(hi) < p {
		hi *= 2
		if hi > 1e18 {
			break
		}
	}
	for i := 0; i < 200; i++ {
		mid := 0.5 * (lo + hi)
		if f.CDF(mid) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

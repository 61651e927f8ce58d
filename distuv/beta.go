package distuv

import (
	"fmt"
	"math"

	"microsimcore/simerr"
)

// Beta is a four-parameter Beta distribution on [X0,X1] with shape
// parameters Alpha, Beta_ (named with a trailing underscore to keep it
// distinct from the type name Beta).
type Beta struct {
	Alpha, Beta_ float64
	X0, X1       float64
}

func (b Beta) width() float64 { return b.X1 - b.X0 }

func (b Beta) Infimum() float64  { return b.X0 }
func (b Beta) Supremum() float64 { return b.X1 }

func (b Beta) standardize(x float64) float64 {
	return (x - b.X0) / b.width()
}

// CDF returns the regularized incomplete beta function I_x(Alpha,Beta_)
// evaluated at the standardized coordinate.
func (b Beta) CDF(x float64) float64 {
	if x <= b.X0 {
		return 0
	}
	if x >= b.X1 {
		return 1
	}
	return regularizedIncompleteBeta(b.Alpha, b.Beta_, b.standardize(x))
}

func (b Beta) CDF2(x float64) float64 { return b.CDF(x) }

// ICDF inverts the regularized incomplete beta function by bisection on the
// standardized [0,1] support.
func (b Beta) ICDF(p float64) float64 {
	p = ClampProbability(p)
	if p <= 0 {
		return b.X0
	}
	if p >= 1 {
		return b.X1
	}
	// Bisection on u in [0,1] solving regularizedIncompleteBeta(a,b,u)=p;
	// monotone, so plain bisection is robust even at extreme shape params.
	lo, hi := 0.0, 1.0
	for i := 0; i < 200; i++ {
		mid := 0.5 * (lo + hi)
		if regularizedIncompleteBeta(b.Alpha, b.Beta_, mid) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	u := 0.5 * (lo + hi)
	return b.X0 + u*b.width()
}

func (b Beta) Prob(x float64) float64 {
	if x < b.X0 || x > b.X1 {
		return 0
	}
	u := b.standardize(x)
	logPdf := (b.Alpha-1)*math.Log(u) + (b.Beta_-1)*math.Log(1-u) - logBetaFunc(b.Alpha, b.Beta_)
	return math.Exp(logPdf) / b.width()
}

// Mean returns X0 + width*Alpha/(Alpha+Beta_).
func (b Beta) Mean() float64 {
	return b.X0 + b.width()*b.Alpha/(b.Alpha+b.Beta_)
}

// Variance returns the closed-form variance on [X0,X1].
func (b Beta) Variance() float64 {
	a, bb := b.Alpha, b.Beta_
	v := a * bb / ((a + bb) * (a + bb) * (a + bb + 1))
	w := b.width()
	return v * w * w
}

// EstimateBeta fits (Alpha,Beta_) via the method of moments on a sample
// constrained to [x0,x1], failing ErrEstimationFailed if the sample's
// mean/variance cannot be realized inside the admissible region (i.e. the
// moment-matched shape parameters would not both be positive).
func EstimateBeta(sample []float64, x0, x1 float64) (Beta, error) {
	n := len(sample)
	if n < 2 {
		return Beta{}, fmt.Errorf("distuv: beta estimation needs n>=2: %w", simerr.ErrInvalidArgument)
	}
	width := x1 - x0
	if width <= 0 {
		return Beta{}, fmt.Errorf("distuv: invalid beta support: %w", simerr.ErrInvalidRange)
	}

	mean := 0.0
	for _, x := range sample {
		mean += x
	}
	mean /= float64(n)

	ss := 0.0
	for _, x := range sample {
		d := x - mean
		ss += d * d
	}
	variance := ss / float64(n-1)

	mu := (mean - x0) / width
	sigma2 := variance / (width * width)

	if mu <= 0 || mu >= 1 {
		return Beta{}, fmt.Errorf("distuv: sample mean outside admissible region: %w", simerr.ErrEstimationFailed)
	}
	maxVar := mu * (1 - mu)
	if sigma2 <= 0 || sigma2 >= maxVar {
		return Beta{}, fmt.Errorf("distuv: sample variance not realizable on [x0,x1]: %w", simerr.ErrEstimationFailed)
	}

	common := mu*(1-mu)/sigma2 - 1
	alpha := mu * common
	beta := (1 - mu) * common
	if alpha <= 0 || beta <= 0 {
		return Beta{}, fmt.Errorf("distuv: moment matching produced non-positive shape: %w", simerr.ErrEstimationFailed)
	}
	return Beta{Alpha: alpha, Beta_: beta, X0: x0, X1: x1}, nil
}

// logBetaFunc returns log(B(a,b)) via lgamma.
func logBetaFunc(a, b float64) float64 {
	lga, _ := math.Lgamma(a)
	lgb, _ := math.Lgamma(b)
	lgab, _ := math.Lgamma(a + b)
	return lga + lgb - lgab
}

// regularizedIncompleteBeta computes I_x(a,b) via the standard continued
// fraction (Numerical Recipes' betacf), using the symmetry relation
// I_x(a,b) = 1 - I_{1-x}(b,a) to keep the continued fraction in its region
// of fast convergence.
func regularizedIncompleteBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	logBt := (a*math.Log(x) + b*math.Log(1-x)) - logBetaFunc(a, b)
	bt := math.Exp(logBt)
	if x < (a+1)/(a+b+2) {
		return bt * betacf(a, b, x) / a
	}
	return 1 - bt*betacf(b, a, 1-x)/b
}

func betacf(a, b, x float64) float64 {
	const maxIter = 200
	const eps = 3e-16
	const fpmin = 1e-300

	qab := a + b
	qap := a + 1
	qam := a - 1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < fpmin {
		d = fpmin
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIter; m++ {
		mf := float64(m)
		m2 := 2 * mf

		aa := mf * (b - mf) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		h *= d * c

		aa = -(a + mf) * (qab + mf) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}

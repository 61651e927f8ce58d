package numutil

import (
	"fmt"
	"math"

	"microsimcore/simerr"
)

// BrentConfig configures the root finder's termination behaviour.
type BrentConfig struct {
	XTol     float64 // absolute tolerance on the bracket width
	FTol     float64 // absolute tolerance on |f(x)|
	MaxIters int
}

// DefaultBrentConfig mirrors commonly used defaults: tight enough for
// distribution inverse-CDF work, loose enough to terminate quickly on flat
// regions.
func DefaultBrentConfig() BrentConfig {
	return BrentConfig{XTol: 1e-12, FTol: 1e-14, MaxIters: 200}
}

// BrentSolve finds a root of f within the bracket [a,b], where f(a) and f(b)
// must have opposite signs (or one of them must already be zero). It
// combines bisection with secant and inverse-quadratic interpolation steps,
// falling back to bisection whenever the interpolated step would leave the
// bracket or fails to make adequate progress - the classical Brent method.
func BrentSolve(f func(float64) float64, a, b float64, cfg BrentConfig) (float64, error) {
	fa := f(a)
	fb := f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if (fa > 0) == (fb > 0) {
		return 0, fmt.Errorf("brent: f(a) and f(b) have the same sign: %w", simerr.ErrInvalidArgument)
	}

	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}

	c, fc := a, fa
	mflag := true
	var d float64

	for i := 0; i < cfg.MaxIters; i++ {
		if math.Abs(b-a) < cfg.XTol || math.Abs(fb) < cfg.FTol {
			return b, nil
		}

		var s float64
		if fa != fc && fb != fc {
			// Inverse quadratic interpolation.
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			// Secant.
			s = b - fb*(b-a)/(fb-fa)
		}

		lo, hi := (3*a+b)/4, b
		if lo > hi {
			lo, hi = hi, lo
		}

		useBisection := s < lo || s > hi ||
			(mflag && math.Abs(s-b) >= math.Abs(b-c)/2) ||
			(!mflag && math.Abs(s-b) >= math.Abs(c-d)/2) ||
			(mflag && math.Abs(b-c) < cfg.XTol) ||
			(!mflag && math.Abs(c-d) < cfg.XTol)

		if useBisection {
			s = (a + b) / 2
			mflag = true
		} else {
			mflag = false
		}

		fs := f(s)
		d = c
		c, fc = b, fb

		if (fa > 0) != (fs > 0) {
			b, fb = s, fs
		} else {
			a, fa = s, fs
		}

		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}
	}
	return b, fmt.Errorf("brent: did not converge in %d iterations: %w", cfg.MaxIters, simerr.ErrInvalidArgument)
}

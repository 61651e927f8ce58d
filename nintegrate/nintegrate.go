// Package nintegrate realizes the adaptive multidimensional integrator
// contract of spec §6. The original core treats the integrator as an
// external, Fortran-translated black-box routine invoked through a function
// pointer and a flat parameter buffer; this package preserves that calling
// convention (Integrand, Integrate) while providing a pure-Go adaptive
// Gauss-Kronrod implementation for the 1-D case the statistical core
// actually exercises (univariate mean/variance/conditional-moment
// quadrature in package distuv).
package nintegrate

import (
	"math"

	"microsimcore/simerr"
)

// Integrand mirrors the C ABI's integrand(dim, x, nparams, params) callback:
// evaluate f at the point x (length dim), given the caller-supplied
// parameter buffer params.
type Integrand func(x []float64, params []float64) float64

// Status mirrors the external integrator's completion status.
type Status int

const (
	StatusOK Status = iota
	StatusMaxEvalsReached
	StatusFailure
)

// Result is the (value, error estimate, status) triple the external
// integrator returns. Integrate1D fills RelErr with the absolute error
// estimate summed over all panels, not a relative error.
type Result struct {
	Value  float64
	RelErr float64
	Status Status
}

// PackPtr round-trips a pointer's bit pattern through a float64 so that a
// host-side closure context can be threaded through the params[0] slot the
// way the original C core's set_ptr/get_ptr trick does. Kept because an
// eventual cgo-backed integrator still needs a pointer-through-double
// channel; pure-Go callers should simply close over state instead.
func PackPtr(p uintptr) float64 {
	return math.Float64frombits(uint64(p))
}

// UnpackPtr is the inverse of PackPtr.
func UnpackPtr(x float64) uintptr {
	return uintptr(math.Float64bits(x))
}

// gk15Nodes/gk15Weights are the abscissae and weights for a 7-point
// Gauss / 15-point Kronrod pair on [-1,1], the classical building block of
// adaptive quadrature (QUADPACK's QK15). Values from the standard published
// table.
var gk15Nodes = []float64{
	0.991455371120813, 0.949107912342759, 0.864864423359769,
	0.741531185599394, 0.586087235467691, 0.405845151377397,
	0.207784955007898, 0.000000000000000,
}

var gk15WeightsKronrod = []float64{
	0.022935322010529, 0.063092092629979, 0.104790010322250,
	0.140653259715525, 0.169004726639267, 0.190350578064785,
	0.204432940075298, 0.209482141084728,
}

var gk15WeightsGauss = []float64{
	0.129484966168870, 0.279705391489277, 0.381830050505119, 0.417959183673469,
}

// integrate15 applies the 7/15-point Gauss-Kronrod rule over [a,b] and
// returns the Kronrod estimate plus |Kronrod-Gauss| as the error estimate.
func integrate15(f func(float64) float64, a, b float64) (value, errEst float64) {
	center := 0.5 * (a + b)
	halfLength := 0.5 * (b - a)

	fCenter := f(center)
	resGauss := fCenter * gk15WeightsGauss[3]
	resKronrod := fCenter * gk15WeightsKronrod[7]

	for j := 0; j < 7; j++ {
		absc := halfLength * gk15Nodes[j]
		f1 := f(center - absc)
		f2 := f(center + absc)
		resKronrod += gk15WeightsKronrod[j] * (f1 + f2)
		if j%2 == 1 { // odd-indexed nodes also belong to the embedded Gauss rule
			resGauss += gk15WeightsGauss[j/2] * (f1 + f2)
		}
	}

	value = resKronrod * halfLength
	gaussValue := resGauss * halfLength
	errEst = math.Abs(value - gaussValue)
	return value, errEst
}

// Integrate1D adaptively integrates f over [lower,upper] to the requested
// absolute error eps, subdividing the interval with the largest estimated
// error until the global error budget is met or at least maxEvals integrand
// evaluations have been spent (the count is checked between subdivisions,
// each of which costs 30 evaluations).
func Integrate1D(f func(float64) float64, lower, upper, eps float64, maxEvals int) Result {
	if lower > upper {
		lower, upper = upper, lower
	}
	if lower == upper {
		return Result{Value: 0, RelErr: 0, Status: StatusOK}
	}
	type panel struct {
		a, b, value, err float64
	}
	v0, e0 := integrate15(f, lower, upper)
	panels := []panel{{lower, upper, v0, e0}}
	evalsUsed := 15

	total := func() (float64, float64) {
		var v, e float64
		for _, p := range panels {
			v += p.value
			e += p.err
		}
		return v, e
	}

	for {
		totalValue, totalErr := total()
		if totalErr <= eps || evalsUsed >= maxEvals {
			status := StatusOK
			if totalErr > eps {
				status = StatusMaxEvalsReached
			}
			return Result{Value: totalValue, RelErr: totalErr, Status: status}
		}
		// Subdivide the panel with the largest error.
		worst := 0
		for i := 1; i < len(panels); i++ {
			if panels[i].err > panels[worst].err {
				worst = i
			}
		}
		p := panels[worst]
		mid := 0.5 * (p.a + p.b)
		v1, e1 := integrate15(f, p.a, mid)
		v2, e2 := integrate15(f, mid, p.b)
		evalsUsed += 30
		panels[worst] = panel{p.a, mid, v1, e1}
		panels = append(panels, panel{mid, p.b, v2, e2})
	}
}

// Integrate is the multidimensional entry point mirroring the external
// contract's signature. Only dim==1 is implemented in pure Go; higher
// dimensions are the genuine black-box territory spec §1 carves out of
// scope, and callers needing them must supply their own Integrand-compatible
// backend.
func Integrate(dim int, lower, upper []float64, f Integrand, params []float64, eps float64, maxEvals int) (Result, error) {
	if dim != 1 {
		return Result{}, simerr.ErrNotImplemented
	}
	if len(lower) != 1 || len(upper) != 1 {
		return Result{}, simerr.ErrInvalidArgument
	}
	wrapped := func(x float64) float64 { return f([]float64{x}, params) }
	return Integrate1D(wrapped, lower[0], upper[0], eps, maxEvals), nil
}

package distuv

import (
	"fmt"
	"math"
	"sort"

	"microsimcore/qopt"
	"microsimcore/simerr"
)

// ShiftedLognormal represents Y = Shift + e^X, X ~ Normal(Mu,Sigma).
type ShiftedLognormal struct {
	Shift float64
	Mu    float64
	Sigma float64
}

func (s ShiftedLognormal) inner() Normal { return Normal{Mu: s.Mu, Sigma: s.Sigma} }

func (s ShiftedLognormal) Infimum() float64  { return s.Shift }
func (s ShiftedLognormal) Supremum() float64 { return math.Inf(1) }

func (s ShiftedLognormal) CDF(y float64) float64 {
	if y <= s.Shift {
		return 0
	}
	return s.inner().CDF(math.Log(y - s.Shift))
}

func (s ShiftedLognormal) CDF2(y float64) float64 { return s.CDF(y) }

func (s ShiftedLognormal) ICDF(p float64) float64 {
	p = ClampProbability(p)
	return s.Shift + math.Exp(s.inner().ICDF(p))
}

// Median returns the closed-form median Shift + e^Mu.
func (s ShiftedLognormal) Median() float64 {
	return s.Shift + math.Exp(s.Mu)
}

func (s ShiftedLognormal) Prob(y float64) float64 {
	if y <= s.Shift {
		return 0
	}
	x := y - s.Shift
	return s.inner().Prob(math.Log(x)) / x
}

// RangeProb returns max(0, CDF(b)-CDF(a)) handling +Inf uppers.
func (s ShiftedLognormal) RangeProb(a, b float64) float64 {
	var cb float64
	if math.IsInf(b, 1) {
		cb = 1
	} else {
		cb = s.CDF(b)
	}
	ca := s.CDF(a)
	p := cb - ca
	if p < 0 {
		return 0
	}
	return p
}

// EstimateShiftedLognormalGivenShift performs maximum-likelihood estimation
// of (Mu,Sigma) given a known shift, by fitting a Normal to log(x-shift).
func EstimateShiftedLognormalGivenShift(sample []float64, shift float64) (ShiftedLognormal, error) {
	logs := make([]float64, len(sample))
	for i, x := range sample {
		if x <= shift {
			return ShiftedLognormal{}, fmt.Errorf("distuv: sample value <= shift: %w", simerr.ErrInvalidArgument)
		}
		logs[i] = math.Log(x - shift)
	}
	n, err := EstimateNormal(logs, true)
	if err != nil {
		return ShiftedLognormal{}, err
	}
	return ShiftedLognormal{Shift: shift, Mu: n.Mu, Sigma: n.Sigma}, nil
}

// EstimateShiftedLognormalUnknownShift implements Aristizabal's pivotal
// statistic method: the ordered sample is split into thirds at indices
// n/3 and 2n/3, giving order statistics s1 and s2 at those split points
// and s3 = the sample maximum, and qopt.Minimize searches for the shift
// that drives [log(s2-shift)-log(s1-shift)] / [log(s3-shift)-log(s2-shift)]
// -> 1. No gradient is supplied, so the search is qopt's derivative-free
// Nelder-Mead method, not a gradient-based one. Shifts at or above
// min(sample)-eps are penalised and the result is clamped below that bound,
// since the shift must lie strictly below every observation for the log
// transform to be defined.
func EstimateShiftedLognormalUnknownShift(sample []float64) (ShiftedLognormal, error) {
	n := len(sample)
	if n < 3 {
		return ShiftedLognormal{}, fmt.Errorf("distuv: need at least 3 points: %w", simerr.ErrInvalidArgument)
	}
	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)

	i1 := n / 3
	i2 := 2 * n / 3
	if i2 >= n {
		i2 = n - 1
	}
	if i1 >= i2 {
		return ShiftedLognormal{}, fmt.Errorf("distuv: sample too small to split into thirds: %w", simerr.ErrInvalidArgument)
	}
	s1, s2, s3 := sorted[i1], sorted[i2], sorted[n-1]
	minX := sorted[0]
	upperBound := minX - 1e-9*math.Max(1, math.Abs(minX))

	objective := func(x []float64) float64 {
		shift := x[0]
		if shift >= upperBound {
			return 1e18
		}
		num := math.Log(s2-shift) - math.Log(s1-shift)
		den := math.Log(s3-shift) - math.Log(s2-shift)
		if den == 0 {
			return 1e18
		}
		ratio := num / den
		return (ratio - 1) * (ratio - 1)
	}

	x0 := upperBound - math.Max(1, math.Abs(upperBound))
	res, err := qopt.Minimize(qopt.Problem{Objective: objective, MaxIter: 500}, []float64{x0})
	if err != nil {
		return ShiftedLognormal{}, err
	}
	shift := res.X[0]
	if shift >= upperBound {
		shift = upperBound
	}
	return EstimateShiftedLognormalGivenShift(sample, shift)
}

// EstimateShiftedLognormalFromHistogram minimizes the Kullback-Leibler
// divergence between the fitted shifted-lognormal and a piecewise-constant
// histogram over the prescribed interval edges, via qopt.Minimize over
// (Mu,Sigma) (the shift is held fixed, since it is a location parameter the
// histogram cannot identify on its own). No analytic gradient of the
// divergence is supplied, so the search is qopt's derivative-free
// Nelder-Mead method.
func EstimateShiftedLognormalFromHistogram(shift float64, edges, mass []float64) (ShiftedLognormal, error) {
	if len(edges) != len(mass)+1 {
		return ShiftedLognormal{}, fmt.Errorf("distuv: edges/mass length mismatch: %w", simerr.ErrInvalidArgument)
	}
	klDivergence := func(mu, sigma float64) float64 {
		if sigma <= 0 {
			return 1e18
		}
		d := ShiftedLognormal{Shift: shift, Mu: mu, Sigma: sigma}
		kl := 0.0
		for i, m := range mass {
			if m <= 0 {
				continue
			}
			q := d.RangeProb(edges[i], edges[i+1])
			if q <= 1e-300 {
				q = 1e-300
			}
			kl += m * math.Log(m/q)
		}
		return kl
	}
	objective := func(x []float64) float64 { return klDivergence(x[0], x[1]) }

	// Seed the search at the method-of-moments location implied by the
	// histogram mean, a robust starting point for the search.
	meanGuess := 0.0
	for i, m := range mass {
		mid := 0.5 * (edges[i] + edges[i+1])
		meanGuess += m * mid
	}
	x0 := []float64{math.Log(math.Max(meanGuess-shift, 1e-6)), 0.5}

	res, err := qopt.Minimize(qopt.Problem{Objective: objective, MaxIter: 1000}, x0)
	if err != nil {
		return ShiftedLognormal{}, err
	}
	sigma := res.X[1]
	if sigma <= 0 {
		return ShiftedLognormal{}, fmt.Errorf("distuv: KL fit produced non-positive sigma: %w", simerr.ErrEstimationFailed)
	}
	return ShiftedLognormal{Shift: shift, Mu: res.X[0], Sigma: sigma}, nil
}

// EstimateShiftedLognormalExact algebraically solves for (Mu,Sigma) given
// (shift,x0,x1,p0,p1) where p0=P(X<x0), p1=P(x0<=X<x1): the two quantile
// equations Mu+Sigma*z0 = log(x0-shift) and Mu+Sigma*z1 = log(x1-shift),
// with z0,z1 the standard-normal quantiles of p0 and p0+p1.
func EstimateShiftedLognormalExact(shift, x0, x1, p0, p1 float64) (ShiftedLognormal, error) {
	if x1 <= x0 {
		return ShiftedLognormal{}, fmt.Errorf("distuv: x1 must exceed x0: %w", simerr.ErrInvalidRange)
	}
	if x0 <= shift || x1 <= shift {
		return ShiftedLognormal{}, fmt.Errorf("distuv: x0,x1 must exceed shift: %w", simerr.ErrInvalidArgument)
	}
	z0 := UnitNormal.ICDF(p0)
	z1 := UnitNormal.ICDF(p0 + p1)
	if z1 == z0 {
		return ShiftedLognormal{}, fmt.Errorf("distuv: degenerate quantile system: %w", simerr.ErrEstimationFailed)
	}
	y0 := math.Log(x0 - shift)
	y1 := math.Log(x1 - shift)
	sigma := (y1 - y0) / (z1 - z0)
	mu := y0 - sigma*z0
	if sigma <= 0 {
		return ShiftedLognormal{}, fmt.Errorf("distuv: exact fit produced non-positive sigma: %w", simerr.ErrEstimationFailed)
	}
	return ShiftedLognormal{Shift: shift, Mu: mu, Sigma: sigma}, nil
}

// Package runstats provides single-pass (Welford-style) running statistics:
// mean, variance, covariance, and their multivariate extensions. Every type
// here is a mutable accumulator updated one observation at a time, matching
// the "streaming estimators" role spec.md assigns to this component.
package runstats

import "math"

// RunningMean accumulates an incremental mean over a stream of float64
// observations using Welford's algorithm.
type RunningMean struct {
	n    int64
	mean float64
}

// Add folds x into the running mean. Infinities are handled specially: a
// consistent-sign infinity keeps the mean at that infinity; mixed-sign
// infinities degrade the mean to NaN, matching IEEE union-of-limits
// semantics.
func (r *RunningMean) Add(x float64) {
	r.n++
	if math.IsInf(x, 0) {
		if math.IsInf(r.mean, 0) && math.Signbit(r.mean) != math.Signbit(x) {
			r.mean = math.NaN()
			return
		}
		r.mean = x
		return
	}
	if math.IsInf(r.mean, 0) {
		return
	}
	r.mean += (x - r.mean) / float64(r.n)
}

// AddIfFinite adds x only when it is neither NaN nor infinite, silently
// skipping offending samples by design (spec §7 propagation policy).
func (r *RunningMean) AddIfFinite(x float64) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return
	}
	r.Add(x)
}

// AddIfNotNaN adds x whenever it is not NaN (infinities still propagate).
func (r *RunningMean) AddIfNotNaN(x float64) {
	if math.IsNaN(x) {
		return
	}
	r.Add(x)
}

// N returns the number of observations folded in so far.
func (r *RunningMean) N() int64 { return r.n }

// Mean returns the current running mean.
func (r *RunningMean) Mean() float64 { return r.mean }

// RunningStatistics extends RunningMean with the running sample variance
// (divided by n-1).
type RunningStatistics struct {
	mean RunningMean
	m2   float64
	min  float64
	max  float64
}

// NewRunningStatistics returns an accumulator ready to receive observations.
func NewRunningStatistics() *RunningStatistics {
	return &RunningStatistics{min: math.Inf(1), max: math.Inf(-1)}
}

// Add folds x into the mean, variance accumulator, and min/max.
func (r *RunningStatistics) Add(x float64) {
	prevMean := r.mean.mean
	r.mean.Add(x)
	if !math.IsNaN(r.mean.mean) && !math.IsInf(x, 0) {
		r.m2 += (x - prevMean) * (x - r.mean.mean)
	}
	if x < r.min {
		r.min = x
	}
	if x > r.max {
		r.max = x
	}
}

// AddIfFinite skips NaN/Inf samples.
func (r *RunningStatistics) AddIfFinite(x float64) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return
	}
	r.Add(x)
}

// N returns the observation count.
func (r *RunningStatistics) N() int64 { return r.mean.n }

// Mean returns the running mean.
func (r *RunningStatistics) Mean() float64 { return r.mean.mean }

// Variance returns the sample variance (divided by n-1), or NaN if n<2.
func (r *RunningStatistics) Variance() float64 {
	if r.mean.n < 2 {
		return math.NaN()
	}
	return r.m2 / float64(r.mean.n-1)
}

// Min returns the minimum observation added so far.
func (r *RunningStatistics) Min() float64 { return r.min }

// Max returns the maximum observation added so far.
func (r *RunningStatistics) Max() float64 { return r.max }

// RunningCovariance maintains the X and Y marginal statistics plus the
// running co-moment C, yielding an incremental covariance/correlation.
type RunningCovariance struct {
	n      int64
	meanX  float64
	meanY  float64
	c      float64
	statsX RunningStatistics
	statsY RunningStatistics
}

// NewRunningCovariance returns a ready-to-use accumulator.
func NewRunningCovariance() *RunningCovariance {
	return &RunningCovariance{statsX: *NewRunningStatistics(), statsY: *NewRunningStatistics()}
}

// Add folds in a new (x,y) pair.
func (r *RunningCovariance) Add(x, y float64) {
	r.n++
	dx := x - r.meanX
	r.meanX += dx / float64(r.n)
	r.meanY += (y - r.meanY) / float64(r.n)
	r.c += dx * (y - r.meanY)
	r.statsX.Add(x)
	r.statsY.Add(y)
}

// N returns the pair count.
func (r *RunningCovariance) N() int64 { return r.n }

// Covariance returns the sample covariance (divided by n-1).
func (r *RunningCovariance) Covariance() float64 {
	if r.n < 2 {
		return math.NaN()
	}
	return r.c / float64(r.n-1)
}

// Correlation returns the Pearson correlation, or 0 whenever either marginal
// variance is zero (per spec §4.2).
func (r *RunningCovariance) Correlation() float64 {
	vx := r.statsX.Variance()
	vy := r.statsY.Variance()
	if vx == 0 || vy == 0 {
		return 0
	}
	return r.Covariance() / math.Sqrt(vx*vy)
}

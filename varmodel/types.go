// Package varmodel implements a reduced-form vector autoregression: OLS
// estimation, multi-step forecasting, impulse-response functions and
// pairwise Granger-causality testing. Adapted from the teacher repo's
// VAR/Granger layer, rewritten to consume regress.OLS and distuv.F instead
// of ad-hoc gonum/mat inversion.
package varmodel

import (
	"gonum.org/v1/gonum/mat"
)

// Deterministic selects which deterministic terms a VAR equation carries.
type Deterministic int

const (
	DetNone Deterministic = iota
	DetConst
	DetTrend
	DetConstTrend
)

func (d Deterministic) hasConst() bool { return d == DetConst || d == DetConstTrend }
func (d Deterministic) hasTrend() bool { return d == DetTrend || d == DetConstTrend }

// ModelSpec describes a VAR model to fit: lag order and deterministic terms.
type ModelSpec struct {
	Lags          int
	Deterministic Deterministic
}

// ReducedFormVAR is a fitted reduced-form VAR: y_t = C + sum_j A_j y_{t-j} + u_t.
type ReducedFormVAR struct {
	Model ModelSpec

	// A[j-1] is the KxK coefficient matrix for lag j.
	A []*mat.Dense

	// C is KxDetCols (deterministic terms), nil if Model.Deterministic is DetNone.
	C *mat.Dense

	// SigmaU is the KxK residual covariance matrix.
	SigmaU *mat.SymDense
}

func (rf *ReducedFormVAR) Spec() ModelSpec     { return rf.Model }
func (rf *ReducedFormVAR) Phi() []*mat.Dense   { return rf.A }
func (rf *ReducedFormVAR) CovU() *mat.SymDense { return rf.SigmaU }

// GrangerCausalityResult holds the outcome of one pairwise Granger test.
type GrangerCausalityResult struct {
	CauseVar    string
	EffectVar   string
	FStatistic  float64
	PValue      float64
	Lags        int
	Significant bool
}

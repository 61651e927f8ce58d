// Package qopt realizes the §6 nonlinear-optimizer external-interface
// contract. The optimizer-based fits (the shifted-lognormal pivotal-shift
// and KL-divergence estimators in package distuv) are routed through
// gonum.org/v1/gonum/optimize via Minimize, already part of the teacher's dependency
// (gonum.org/v1/gonum). The box-and-equality-constrained quadratic program
// solved once per origin bucket in package popmover is handled separately
// by a closed-form vertex-search solver (see Solve1DBoxSimplexQPMax in
// waterfill_max.go) rather than routed through a general black-box
// optimizer, since it has an exact, non-iterative solution and no pack
// example implements SLSQP/COBYLA to reuse instead.
package qopt

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"
	"github.com/rs/zerolog/log"

	"microsimcore/simerr"
)

// Status mirrors the external optimizer's status codes from spec §6.
type Status int

const (
	StatusSuccess Status = iota
	StatusStopValReached
	StatusFToleranceReached
	StatusXToleranceReached
	StatusMaxEvalReached
	StatusMaxTimeReached
	StatusRoundoffLimited
	StatusFailure
	StatusInvalidArgs
	StatusOutOfMemory
	StatusForcedStop
)

// Problem describes a local minimization: an objective with an optional
// analytic gradient and an iteration cap. Lower, Upper, XTol and FTol are
// carried but not applied by Minimize: the search is unbounded and stops on
// gonum's default convergence tests or MaxIter. Equality/inequality
// constraints are not supported by this thin wrapper. Both callers in this
// module (pivotal-shift and KL fits) pass neither a gradient nor bounds.
type Problem struct {
	Objective func(x []float64) float64
	Gradient  func(x []float64, grad []float64)
	Lower     []float64
	Upper     []float64
	XTol      float64
	FTol      float64
	MaxIter   int
}

// Result carries the minimizer's output and the §6 status code.
type Result struct {
	X      []float64
	FMin   float64
	Status Status
}

// Minimize runs a local search starting from x0 - BFGS when p.Gradient is
// set, the derivative-free Nelder-Mead method otherwise - and returns the minimizer's result, translating gonum's status codes into the
// §6 vocabulary. A RoundoffLimited-equivalent status is logged as a warning
// and treated as success, matching the propagation policy in spec §7.
func Minimize(p Problem, x0 []float64) (Result, error) {
	if len(x0) == 0 {
		return Result{}, fmt.Errorf("qopt: empty initial point: %w", simerr.ErrInvalidArgument)
	}
	problem := optimize.Problem{
		Func: p.Objective,
	}
	if p.Gradient != nil {
		problem.Grad = p.Gradient
	}

	settings := &optimize.Settings{}
	if p.MaxIter > 0 {
		settings.MajorIterations = p.MaxIter
	}

	var method optimize.Method
	if p.Gradient != nil {
		method = &optimize.BFGS{}
	} else {
		method = &optimize.NelderMead{}
	}

	res, err := optimize.Minimize(problem, x0, settings, method)
	if err != nil {
		log.Warn().Err(err).Msg("qopt: optimizer returned a non-fatal status")
	}
	if res == nil {
		return Result{}, fmt.Errorf("qopt: optimizer produced no result: %w", simerr.ErrInvalidArgument)
	}

	status := translateStatus(res.Status.String())
	if status == StatusRoundoffLimited {
		log.Warn().Str("status", res.Status.String()).Msg("qopt: roundoff-limited, accepting current best")
		status = StatusSuccess
	}

	return Result{X: res.X, FMin: res.F, Status: status}, nil
}

// translateStatus maps the textual form of gonum/optimize's status (its
// exact exported constant names have shifted across gonum releases) onto
// the stable §6 status vocabulary every caller in this module switches on.
func translateStatus(s string) Status {
	switch {
	case contains(s, "Success"):
		return StatusSuccess
	case contains(s, "FunctionConvergence"), contains(s, "FunctionConverged"), contains(s, "GradientThreshold"):
		return StatusFToleranceReached
	case contains(s, "StepConvergence"), contains(s, "StepConverged"):
		return StatusXToleranceReached
	case contains(s, "IterationLimit"), contains(s, "EvaluationLimit"):
		return StatusMaxEvalReached
	case contains(s, "RuntimeLimit"), contains(s, "TimeLimit"):
		return StatusMaxTimeReached
	case contains(s, "Failure"):
		return StatusFailure
	default:
		return StatusRoundoffLimited
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

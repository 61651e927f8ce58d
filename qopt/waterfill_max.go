package qopt

import (
	"fmt"
	"sort"

	"microsimcore/simerr"
)

// BoxBound is a closed interval [Lo,Hi].
type BoxBound struct {
	Lo, Hi float64
}

// Solve1DBoxSimplexQPMax solves, for a fixed target vector pi,
//
//	maximize   sum_i 0.5*(a[i]-pi[i])^2
//	subject to sum_i a[i] = 1
//	           a[i] in bounds[i]
//
// the population-mover slope calculation's actual objective (spec §4.7): the
// original averisera solver registers this sum as an nlopt max_objective,
// not a min_objective, so it pushes each coordinate away from pi[i] rather
// than pulling it toward pi[i]. A convex
// function maximized over a box is always maximized at one of the box's two
// endpoints, so for a fixed Lagrange multiplier lambda on the equality
// constraint, the per-coordinate response a[i](lambda) is a step function
// that jumps from bounds[i].Hi to bounds[i].Lo at
//
//	lambda_i* = 0.5*(bounds[i].Lo+bounds[i].Hi) - pi[i]
//
// (found by equating the Lagrangian's value at both endpoints). Sorting
// coordinates by lambda_i* gives the exact order in which they leave their
// upper bound as lambda increases, so the constrained maximum - a vertex of
// the box-simplex polytope with at most one coordinate away from a bound -
// is found by walking that order and letting one coordinate absorb the
// residual needed to hit the simplex constraint exactly.
func Solve1DBoxSimplexQPMax(pi []float64, bounds []BoxBound, fixed map[int]float64) ([]float64, error) {
	n := len(pi)
	if len(bounds) != n {
		return nil, fmt.Errorf("waterfill: bounds length mismatch: %w", simerr.ErrInvalidArgument)
	}

	type freeCoord struct {
		idx         int
		lo, hi, thr float64
	}

	out := make([]float64, n)
	total := 0.0
	free := make([]freeCoord, 0, n)
	for i := 0; i < n; i++ {
		if v, ok := fixed[i]; ok {
			out[i] = v
			total += v
			continue
		}
		lo, hi := bounds[i].Lo, bounds[i].Hi
		out[i] = hi
		total += hi
		free = append(free, freeCoord{idx: i, lo: lo, hi: hi, thr: 0.5*(lo+hi) - pi[i]})
	}

	excess := total - 1
	if excess < -1e-9 {
		return nil, fmt.Errorf("waterfill: infeasible simplex/box constraints: %w", simerr.ErrImpossibleConstraints)
	}
	if excess < 0 {
		excess = 0
	}

	sort.Slice(free, func(a, b int) bool { return free[a].thr < free[b].thr })

	for _, c := range free {
		if excess <= 0 {
			break
		}
		span := c.hi - c.lo
		if span >= excess {
			out[c.idx] = c.hi - excess
			excess = 0
			break
		}
		out[c.idx] = c.lo
		excess -= span
	}
	if excess > 1e-9 {
		return nil, fmt.Errorf("waterfill: infeasible simplex/box constraints: %w", simerr.ErrImpossibleConstraints)
	}
	return out, nil
}

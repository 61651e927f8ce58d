package numutil

import "math"

// LogitToProb computes 1/(1+e^-x), saturating at 0 and 1 for x = -Inf/+Inf.
func LogitToProb(x float64) float64 {
	if math.IsInf(x, -1) {
		return 0
	}
	if math.IsInf(x, 1) {
		return 1
	}
	return 1 / (1 + math.Exp(-x))
}

// ProbToLogit computes log(p/(1-p)), the inverse of LogitToProb.
func ProbToLogit(p float64) float64 {
	return math.Log(p / (1 - p))
}

// LogitDerivative returns p*(1-p), the derivative of LogitToProb w.r.t. its
// natural parameter, with the endpoint derivatives forced to 0.
func LogitDerivative(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return p * (1 - p)
}

// RandomRound returns floor(x) with probability ceil(x)-x, else ceil(x). For
// integer x it returns x exactly.
func RandomRound(x float64, u01 float64) float64 {
	lo := math.Floor(x)
	hi := math.Ceil(x)
	if lo == hi {
		return x
	}
	pCeil := x - lo
	if u01 < 1-pCeil {
		return lo
	}
	return hi
}

// ArgMaxRandomTiebreak returns the index of the maximum value in xs,
// breaking ties uniformly at random using a single draw u01 in [0,1).
func ArgMaxRandomTiebreak(xs []float64, u01 float64) int {
	return extremumRandomTiebreak(xs, u01, true)
}

// ArgMinRandomTiebreak returns the index of the minimum value in xs,
// breaking ties uniformly at random using a single draw u01 in [0,1).
func ArgMinRandomTiebreak(xs []float64, u01 float64) int {
	return extremumRandomTiebreak(xs, u01, false)
}

func extremumRandomTiebreak(xs []float64, u01 float64, max bool) int {
	if len(xs) == 0 {
		return -1
	}
	best := xs[0]
	candidates := []int{0}
	for i := 1; i < len(xs); i++ {
		v := xs[i]
		better := v > best
		if !max {
			better = v < best
		}
		if better {
			best = v
			candidates = candidates[:0]
			candidates = append(candidates, i)
		} else if v == best {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	idx := int(u01 * float64(len(candidates)))
	if idx >= len(candidates) {
		idx = len(candidates) - 1
	}
	return candidates[idx]
}

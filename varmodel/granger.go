package varmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"microsimcore/distuv"
	"microsimcore/regress"
	"microsimcore/simerr"
)

// GrangerCausality tests whether variable causeIdx Granger-causes variable
// effectIdx: an unrestricted model (all lagged variables) is compared
// against a restricted one (cause variable's lags dropped) via an
// F-test on the residual sum of squares, using distuv.F for the p-value
// in place of the teacher's gonum/stat/distuv import.
func (rf *ReducedFormVAR) GrangerCausality(Y *mat.Dense, varNames []string, causeIdx, effectIdx int) (*GrangerCausalityResult, error) {
	if Y == nil {
		return nil, fmt.Errorf("varmodel: no data: %w", simerr.ErrInvalidArgument)
	}
	_, K := Y.Dims()
	p := rf.Model.Lags
	if causeIdx < 0 || causeIdx >= K {
		return nil, fmt.Errorf("varmodel: causeIdx out of range: %d: %w", causeIdx, simerr.ErrOutOfRange)
	}
	if effectIdx < 0 || effectIdx >= K {
		return nil, fmt.Errorf("varmodel: effectIdx out of range: %d: %w", effectIdx, simerr.ErrOutOfRange)
	}
	if causeIdx == effectIdx {
		return nil, fmt.Errorf("varmodel: causeIdx and effectIdx must differ: %w", simerr.ErrInvalidArgument)
	}

	yEffect := responseColumn(Y, p, effectIdx)

	XUnrestricted, detCols := buildRegressors(Y, p, rf.Model.Deterministic)
	treg, mUnrestricted := XUnrestricted.Dims()

	olsUnrestricted := regress.NewOLS()
	olsUnrestricted.FitIntercept = false
	olsUnrestricted.SetCalculateResiduals(true)
	if err := olsUnrestricted.Fit(XUnrestricted, yEffect); err != nil {
		return nil, fmt.Errorf("varmodel: fit unrestricted model: %w", err)
	}
	rssUnrestricted := sumSquares(olsUnrestricted.Residuals())

	XRestricted := mat.NewDense(treg, detCols+p*(K-1), nil)
	for t := 0; t < treg; t++ {
		col := 0
		timeIndex := float64(t + p + 1)
		if rf.Model.Deterministic.hasConst() {
			XRestricted.Set(t, col, 1.0)
			col++
		}
		if rf.Model.Deterministic.hasTrend() {
			XRestricted.Set(t, col, timeIndex)
			col++
		}
		for j := 1; j <= p; j++ {
			srcRow := t + p - j
			for k := 0; k < K; k++ {
				if k == causeIdx {
					continue
				}
				XRestricted.Set(t, col, Y.At(srcRow, k))
				col++
			}
		}
	}

	olsRestricted := regress.NewOLS()
	olsRestricted.FitIntercept = false
	olsRestricted.SetCalculateResiduals(true)
	if err := olsRestricted.Fit(XRestricted, yEffect); err != nil {
		return nil, fmt.Errorf("varmodel: fit restricted model: %w", err)
	}
	rssRestricted := sumSquares(olsRestricted.Residuals())

	q := float64(p)
	k := float64(mUnrestricted)
	dof := float64(treg) - k
	if dof <= 0 {
		return nil, fmt.Errorf("varmodel: insufficient degrees of freedom: %v: %w", dof, simerr.ErrInvalidArgument)
	}

	fStatistic := ((rssRestricted - rssUnrestricted) / q) / (rssUnrestricted / dof)
	fDist := distuv.F{D1: q, D2: dof}
	pValue := 1.0 - fDist.CDF(fStatistic)

	if math.IsNaN(fStatistic) || math.IsInf(fStatistic, 0) {
		fStatistic = 0
		pValue = 1.0
	}
	pValue = math.Max(0, math.Min(1, pValue))

	return &GrangerCausalityResult{
		CauseVar:    varNames[causeIdx],
		EffectVar:   varNames[effectIdx],
		FStatistic:  fStatistic,
		PValue:      pValue,
		Lags:        p,
		Significant: pValue < 0.05,
	}, nil
}

// GrangerCausalityMatrix runs GrangerCausality for every ordered pair of
// distinct variables.
func (rf *ReducedFormVAR) GrangerCausalityMatrix(Y *mat.Dense, varNames []string) ([][]*GrangerCausalityResult, error) {
	if Y == nil {
		return nil, fmt.Errorf("varmodel: no data: %w", simerr.ErrInvalidArgument)
	}
	_, K := Y.Dims()

	results := make([][]*GrangerCausalityResult, K)
	for i := range results {
		results[i] = make([]*GrangerCausalityResult, K)
	}
	for i := 0; i < K; i++ {
		for j := 0; j < K; j++ {
			if i == j {
				continue
			}
			result, err := rf.GrangerCausality(Y, varNames, i, j)
			if err != nil {
				return nil, fmt.Errorf("varmodel: %s -> %s: %w", varNames[i], varNames[j], err)
			}
			results[i][j] = result
		}
	}
	return results, nil
}

func sumSquares(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return s
}

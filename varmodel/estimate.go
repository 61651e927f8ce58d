package varmodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"microsimcore/regress"
	"microsimcore/simerr"
)

// buildRegressors lays out the VAR(p) design matrix: deterministic columns
// (constant, trend) followed by the p lag blocks, each block holding all K
// variables' values at that lag. Mirrors the teacher's Estimate/
// GrangerCausality row-filling loop.
func buildRegressors(Y *mat.Dense, p int, det Deterministic) (X *mat.Dense, detCols int) {
	T, K := Y.Dims()
	treg := T - p

	if det.hasConst() {
		detCols++
	}
	if det.hasTrend() {
		detCols++
	}
	m := detCols + p*K

	X = mat.NewDense(treg, m, nil)
	for t := 0; t < treg; t++ {
		col := 0
		timeIndex := float64(t + p + 1)
		if det.hasConst() {
			X.Set(t, col, 1.0)
			col++
		}
		if det.hasTrend() {
			X.Set(t, col, timeIndex)
			col++
		}
		for j := 1; j <= p; j++ {
			srcRow := t + p - j
			for k := 0; k < K; k++ {
				X.Set(t, col, Y.At(srcRow, k))
				col++
			}
		}
	}
	return X, detCols
}

func responseColumn(Y *mat.Dense, p, k int) []float64 {
	T, _ := Y.Dims()
	treg := T - p
	col := make([]float64, treg)
	for t := 0; t < treg; t++ {
		col[t] = Y.At(t+p, k)
	}
	return col
}

// Estimate fits a reduced-form VAR by OLS, one equation (response column)
// at a time, via regress.OLS with FitIntercept disabled: the deterministic
// columns are already part of X, built explicitly per ModelSpec.
func Estimate(Y *mat.Dense, spec ModelSpec) (*ReducedFormVAR, error) {
	if Y == nil {
		return nil, fmt.Errorf("varmodel: no data: %w", simerr.ErrInvalidArgument)
	}
	T, K := Y.Dims()
	p := spec.Lags
	if p <= 0 {
		return nil, fmt.Errorf("varmodel: lags must be > 0: %w", simerr.ErrInvalidArgument)
	}
	if T <= p {
		return nil, fmt.Errorf("varmodel: need at least p+1 observations, have p=%d T=%d: %w", p, T, simerr.ErrInvalidArgument)
	}

	X, detCols := buildRegressors(Y, p, spec.Deterministic)
	treg, m := X.Dims()

	B := mat.NewDense(m, K, nil)
	residuals := mat.NewDense(treg, K, nil)
	for k := 0; k < K; k++ {
		y := responseColumn(Y, p, k)
		ols := regress.NewOLS()
		ols.FitIntercept = false
		ols.SetCalculateResiduals(true)
		if err := ols.Fit(X, y); err != nil {
			return nil, fmt.Errorf("varmodel: fit equation %d: %w", k, err)
		}
		coeffs := ols.A()
		for row := 0; row < m; row++ {
			B.Set(row, k, coeffs[row])
		}
		for t, r := range ols.Residuals() {
			residuals.Set(t, k, r)
		}
	}

	var C *mat.Dense
	if detCols > 0 {
		C = mat.NewDense(K, detCols, nil)
		for k := 0; k < K; k++ {
			for d := 0; d < detCols; d++ {
				C.Set(k, d, B.At(d, k))
			}
		}
	}

	A := make([]*mat.Dense, p)
	for j := 0; j < p; j++ {
		Aj := mat.NewDense(K, K, nil)
		rowOffset := detCols + j*K
		for eq := 0; eq < K; eq++ {
			for colVar := 0; colVar < K; colVar++ {
				Aj.Set(eq, colVar, B.At(rowOffset+colVar, eq))
			}
		}
		A[j] = Aj
	}

	df := float64(treg - m)
	if df <= 0 {
		df = float64(treg)
	}
	sigmaData := make([]float64, K*K)
	for i := 0; i < K; i++ {
		for j := 0; j < K; j++ {
			var dot float64
			for t := 0; t < treg; t++ {
				dot += residuals.At(t, i) * residuals.At(t, j)
			}
			sigmaData[i*K+j] = dot / df
		}
	}

	return &ReducedFormVAR{
		Model:  spec,
		A:      A,
		C:      C,
		SigmaU: mat.NewSymDense(K, sigmaData),
	}, nil
}

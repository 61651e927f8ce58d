package varmodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"microsimcore/simerr"
)

// Forecast produces a multi-step-ahead forecast given historical data
// yHist (T x K, only the last Lags rows are used). Unchanged from the
// teacher's recursive lag-substitution algorithm - this is linear algebra
// over an already-fitted model, not something regress.OLS touches.
func (rf *ReducedFormVAR) Forecast(yHist *mat.Dense, steps int) (*mat.Dense, error) {
	if rf == nil || len(rf.A) == 0 {
		return nil, fmt.Errorf("varmodel: model not estimated: %w", simerr.ErrInvalidArgument)
	}
	if steps <= 0 {
		return nil, fmt.Errorf("varmodel: steps must be > 0: %w", simerr.ErrInvalidArgument)
	}

	p := rf.Model.Lags
	T, K := yHist.Dims()
	if T < p {
		return nil, fmt.Errorf("varmodel: need at least %d rows in yHist, got %d: %w", p, T, simerr.ErrInvalidArgument)
	}

	totalRows := p + steps
	data := make([]float64, totalRows*K)
	for i := 0; i < p; i++ {
		for k := 0; k < K; k++ {
			data[i*K+k] = yHist.At(T-p+i, k)
		}
	}
	out := mat.NewDense(totalRows, K, data)

	det := rf.Model.Deterministic
	detConstIdx, detTrendIdx, detCols := 0, 0, 0
	if det.hasConst() {
		detCols++
	}
	if det.hasTrend() {
		detTrendIdx = detCols
		detCols++
	}

	for step := 0; step < steps; step++ {
		row := p + step
		tIdx := float64(T + step + 1)
		for eq := 0; eq < K; eq++ {
			val := 0.0
			if rf.C != nil && detCols > 0 {
				if det.hasConst() {
					val += rf.C.At(eq, detConstIdx)
				}
				if det.hasTrend() {
					val += rf.C.At(eq, detTrendIdx) * tIdx
				}
			}
			for lag := 1; lag <= p; lag++ {
				A := rf.A[lag-1]
				prevRow := row - lag
				for j := 0; j < K; j++ {
					val += A.At(eq, j) * out.At(prevRow, j)
				}
			}
			out.Set(row, eq, val)
		}
	}

	return mat.DenseCopyOf(out.Slice(p, totalRows, 0, K)), nil
}

// IRF computes the impulse response of all variables to a one-time
// structural shock in variable shockIndex, over horizon periods, via a
// Cholesky decomposition of SigmaU.
func (rf *ReducedFormVAR) IRF(horizon int, shockIndex int) (*mat.Dense, error) {
	if rf == nil || len(rf.A) == 0 {
		return nil, fmt.Errorf("varmodel: model not estimated: %w", simerr.ErrInvalidArgument)
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("varmodel: horizon must be > 0: %w", simerr.ErrInvalidArgument)
	}

	p := rf.Model.Lags
	K, _ := rf.A[0].Dims()
	if shockIndex < 0 || shockIndex >= K {
		return nil, fmt.Errorf("varmodel: shockIndex must be in [0,%d): %w", K, simerr.ErrOutOfRange)
	}

	shock := make([]float64, K)
	if rf.SigmaU != nil {
		var chol mat.Cholesky
		if chol.Factorize(rf.SigmaU) {
			var L mat.TriDense
			chol.LTo(&L)
			for i := 0; i < K; i++ {
				shock[i] = L.At(i, shockIndex)
			}
		} else {
			shock[shockIndex] = 1.0
		}
	} else {
		shock[shockIndex] = 1.0
	}

	Psi := make([]*mat.Dense, horizon)
	Idata := make([]float64, K*K)
	for i := 0; i < K; i++ {
		Idata[i*K+i] = 1.0
	}
	Psi[0] = mat.NewDense(K, K, Idata)

	for h := 1; h < horizon; h++ {
		M := mat.NewDense(K, K, nil)
		maxLag := p
		if h < p {
			maxLag = h
		}
		for j := 1; j <= maxLag; j++ {
			var tmp mat.Dense
			tmp.Mul(rf.A[j-1], Psi[h-j])
			M.Add(M, &tmp)
		}
		Psi[h] = M
	}

	irf := mat.NewDense(horizon, K, nil)
	shockVec := mat.NewVecDense(K, shock)
	for h := 0; h < horizon; h++ {
		var resp mat.VecDense
		resp.MulVec(Psi[h], shockVec)
		for i := 0; i < K; i++ {
			irf.Set(h, i, resp.AtVec(i))
		}
	}
	return irf, nil
}

// RunIRFAnalysis computes IRF(horizon, shockIdx) for every shock variable
// and collects each one's effect on varIndex.
func (rf *ReducedFormVAR) RunIRFAnalysis(varIndex int, horizon int) (map[int][]float64, error) {
	if rf == nil || len(rf.A) == 0 {
		return nil, fmt.Errorf("varmodel: model not estimated: %w", simerr.ErrInvalidArgument)
	}
	K, _ := rf.A[0].Dims()
	if varIndex < 0 || varIndex >= K {
		return nil, fmt.Errorf("varmodel: varIndex must be in [0,%d): %w", K, simerr.ErrOutOfRange)
	}

	results := make(map[int][]float64)
	for shockIdx := 0; shockIdx < K; shockIdx++ {
		irfMat, err := rf.IRF(horizon, shockIdx)
		if err != nil {
			return nil, fmt.Errorf("varmodel: IRF for shock %d: %w", shockIdx, err)
		}
		series := make([]float64, horizon)
		for h := 0; h < horizon; h++ {
			series[h] = irfMat.At(h, varIndex)
		}
		results[shockIdx] = series
	}
	return results, nil
}

package regress

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"microsimcore/simerr"
)

// Model is the interface a model needs to participate in bottom-up factor
// selection: given a column-subset of X, fit itself against y.
type Model interface {
	Fit(X *mat.Dense, y []float64) error
}

// FactorRank scores candidate factor i of X given the current model (which
// may be empty) and the set of already-accepted factors; higher is better.
type FactorRank[M Model] func(X *mat.Dense, y []float64, model M, accepted []int, i int) float64

// ModelComparison reports whether model2 is significantly better than
// model1 (which may be empty, i.e. never fitted).
type ModelComparison[M Model] func(model1, model2 M) bool

// FactorSelectionBottomUp greedily grows an accepted-factor set: at each
// step it ranks every remaining candidate factor, fits a trial model adding
// the best-ranked one, and keeps it only if ModelComparison judges the
// trial model significantly better than the current one. It stops at the
// first rejected candidate (averisera's FactorSelectionBottomUp).
type FactorSelectionBottomUp[M Model] struct {
	ModelFactory func() M
	FactorRank   FactorRank[M]
	Comparison   ModelComparison[M]
}

// NewFactorSelectionBottomUp builds a driver from its three collaborators.
func NewFactorSelectionBottomUp[M Model](modelFactory func() M, factorRank FactorRank[M], comparison ModelComparison[M]) *FactorSelectionBottomUp[M] {
	return &FactorSelectionBottomUp[M]{ModelFactory: modelFactory, FactorRank: factorRank, Comparison: comparison}
}

// Select returns the indices (ascending) of the columns of X that were
// accepted, out of d = number of columns.
func (fs *FactorSelectionBottomUp[M]) Select(X *mat.Dense, y []float64) ([]int, error) {
	n, d := X.Dims()
	if n != len(y) {
		return nil, fmt.Errorf("regress: X has %d rows but y has %d entries: %w", n, len(y), simerr.ErrInvalidArgument)
	}
	if n == 0 || d == 0 {
		return nil, fmt.Errorf("regress: X must be non-empty: %w", simerr.ErrInvalidArgument)
	}

	available := make([]int, d)
	for i := range available {
		available[i] = i
	}
	var accepted []int
	model := fs.ModelFactory()

	for len(available) > 0 {
		ranks := make([]float64, len(available))
		for i, idx := range available {
			ranks[i] = fs.FactorRank(X, y, model, accepted, idx)
		}
		log.Debug().Floats64("ranks", ranks).Msg("regress: factor selection candidate ranks")

		best := 0
		for i := 1; i < len(ranks); i++ {
			if ranks[i] > ranks[best] {
				best = i
			}
		}
		candidate := available[best]

		trialFactors := append(append([]int(nil), accepted...), candidate)
		trialModel := fs.ModelFactory()
		if err := fitSubset(trialModel, X, y, trialFactors); err != nil {
			return nil, err
		}

		if fs.Comparison(model, trialModel) {
			log.Debug().Int("factor", candidate).Msg("regress: factor selection accepted candidate")
			model = trialModel
			accepted = trialFactors
			available = removeAt(available, best)
		} else {
			log.Debug().Int("factor", candidate).Msg("regress: factor selection rejected candidate")
			break
		}
	}

	sort.Ints(accepted)
	return accepted, nil
}

func fitSubset[M Model](model M, X *mat.Dense, y []float64, factors []int) error {
	n, _ := X.Dims()
	selX := mat.NewDense(n, len(factors), nil)
	for col, f := range factors {
		for row := 0; row < n; row++ {
			selX.Set(row, col, X.At(row, f))
		}
	}
	return model.Fit(selX, y)
}

func removeAt(s []int, i int) []int {
	out := make([]int, 0, len(s)-1)
	out = append(out, s[:i]...)
	out = append(out, s[i+1:]...)
	return out
}

// FactorRankResAdjR2 ranks candidate factor i by the adjusted R^2 of a
// single-factor OLS fit against the current model's residuals (or against y
// directly, if the model hasn't been fitted yet). fitIntercept must match
// the model being built (averisera's OLS::factor_rank_res_adj_r2).
func FactorRankResAdjR2(fitIntercept bool) FactorRank[*OLS] {
	return func(X *mat.Dense, y []float64, model *OLS, _ []int, i int) float64 {
		n, _ := X.Dims()
		col := make([]float64, n)
		for r := 0; r < n; r++ {
			col[r] = X.At(r, i)
		}
		target := y
		if model != nil && !model.Empty() {
			target = model.Residuals()
		}
		ranking := NewOLS()
		ranking.FitIntercept = fitIntercept
		ranking.SetCalculateMetrics(true)
		if err := ranking.FitXY(col, target); err != nil {
			return 0
		}
		return ranking.AdjR2()
	}
}

// MakeModelFactory returns a factory producing an OLS model ready for
// factor selection (metrics enabled, since the ranker needs AdjR2 and the
// comparator needs BIC).
func MakeModelFactory(fitIntercept bool) func() *OLS {
	return func() *OLS {
		o := NewOLS()
		o.FitIntercept = fitIntercept
		o.SetCalculateMetrics(true)
		return o
	}
}

// MakeBICComparator returns a ModelComparison that accepts a candidate
// model only if its BIC improves on the current one (or, when the current
// model is empty, on its own empty-model BIC) by at least delta.
func MakeBICComparator(delta float64) ModelComparison[*OLS] {
	return func(ols1, ols2 *OLS) bool {
		if !ols1.Empty() {
			return ols2.BIC()+delta < ols1.BIC()
		}
		return ols2.BIC()+delta < ols2.EmptyBIC()
	}
}

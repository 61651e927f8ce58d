// Command simcoredemo wires the statistical core end to end, in the spirit
// of the teacher's main.go: load a time series, fit a distribution, build
// a Gaussian copula, run a population-mover step, then fit and forecast a
// VAR and report Granger causality. Pass a CSV path to load real data;
// with no argument it runs against a small synthetic series instead.
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"microsimcore/copula"
	"microsimcore/csvio"
	"microsimcore/distuv"
	"microsimcore/history"
	"microsimcore/popmover"
	"microsimcore/rng"
	"microsimcore/varmodel"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var ts *csvio.TimeSeriesData
	if len(os.Args) > 1 {
		loaded, err := csvio.LoadTimeSeries(os.Args[1], csvio.DelimiterComma)
		if err != nil {
			log.Fatal().Err(err).Str("path", os.Args[1]).Msg("simcoredemo: failed to load CSV")
		}
		ts = loaded
	} else {
		ts = syntheticTimeSeries()
		log.Info().Msg("simcoredemo: no CSV path given, running on synthetic data")
	}

	rows, cols := ts.Y.Dims()
	log.Info().Int("rows", rows).Int("vars", cols).Strs("names", ts.VarNames).Msg("simcoredemo: loaded series")

	h := loadFirstColumnIntoHistory(ts)
	fitted := fitDistribution(h)
	fmt.Printf("\n=== Fitted distribution for %q ===\nshift=%.4f mu=%.4f sigma=%.4f median=%.4f\n",
		h.Name(), fitted.Shift, fitted.Mu, fitted.Sigma, fitted.Median())

	sampleCopula()
	runPopulationMoverDemo()
	runVARDemo(ts)
}

// syntheticTimeSeries builds a small 2-variable series so the demo runs
// without any external file, mirroring the shape csvio.LoadTimeSeries
// would produce from a real CSV.
func syntheticTimeSeries() *csvio.TimeSeriesData {
	const n = 40
	data := make([]float64, n*2)
	x, y := 10.0, 5.0
	for t := 0; t < n; t++ {
		data[t*2+0] = x
		data[t*2+1] = y
		nx := 0.8*x + 2*math.Sin(float64(t)/3) + 10
		ny := 0.4*x + 0.5*y
		x, y = nx, ny
	}
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i)
	}
	return &csvio.TimeSeriesData{
		Y:        mat.NewDense(n, 2, data),
		Time:     times,
		VarNames: []string{"FluAPercent", "AvgTemperature"},
	}
}

// loadFirstColumnIntoHistory copies a time series column into a dense
// history, matching the core's usual input shape for distribution fitting.
func loadFirstColumnIntoHistory(ts *csvio.TimeSeriesData) *history.Dense[float64] {
	rows, _ := ts.Y.Dims()
	h := history.NewDense[float64](ts.VarNames[0])
	for t := 0; t < rows; t++ {
		v := ts.Y.At(t, 0)
		if v <= 0 {
			v = 1e-6 // keep the sample admissible for the shifted-lognormal fit
		}
		if err := h.Append(history.Date(t), v); err != nil {
			log.Fatal().Err(err).Msg("simcoredemo: failed to build history")
		}
	}
	return h
}

func fitDistribution(h *history.Dense[float64]) distuv.ShiftedLognormal {
	sample := make([]float64, h.Size())
	for i := range sample {
		v, err := h.ValueAt(i)
		if err != nil {
			log.Fatal().Err(err).Msg("simcoredemo: history read failed")
		}
		sample[i] = v
	}
	fitted, err := distuv.EstimateShiftedLognormalUnknownShift(sample)
	if err != nil {
		log.Fatal().Err(err).Msg("simcoredemo: distribution fit failed")
	}
	return fitted
}

// sampleCopula builds a 3-factor Gaussian copula from a correlation matrix
// and draws a handful of correlated uniforms from it.
func sampleCopula() {
	rho := mat.NewSymDense(3, []float64{
		1.0, 0.6, 0.3,
		0.6, 1.0, 0.5,
		0.3, 0.5, 1.0,
	})
	g, err := copula.NewGaussian(rho, 0.999, 3)
	if err != nil {
		log.Fatal().Err(err).Msg("simcoredemo: copula construction failed")
	}

	src := rng.NewMT19937(42)
	fmt.Println("\n=== Gaussian copula draws ===")
	x := make([]float64, g.Dim())
	for i := 0; i < 5; i++ {
		g.Draw(src, x)
		fmt.Printf("draw %d: %.4f %.4f %.4f\n", i, x[0], x[1], x[2])
	}
}

// runPopulationMoverDemo moves a small synthetic population across three
// value ranges using a fixed transition matrix.
func runPopulationMoverDemo() {
	ranges := []float64{0, 1, 2, 3}
	pi := [][]float64{
		{0.7, 0.2, 0.1},
		{0.2, 0.6, 0.2},
		{0.1, 0.2, 0.7},
	}
	pm, err := popmover.NewPopulationMover(pi, ranges, 1e-9)
	if err != nil {
		log.Fatal().Err(err).Msg("simcoredemo: population mover construction failed")
	}

	population := []popmover.OriginMember{
		{RangeIndex: 0, Value: 0.2}, {RangeIndex: 0, Value: 0.6},
		{RangeIndex: 1, Value: 1.1}, {RangeIndex: 1, Value: 1.8},
		{RangeIndex: 2, Value: 2.3}, {RangeIndex: 2, Value: 2.9},
	}
	src := rng.NewMT19937(7)
	moved, err := pm.MoveBetweenRangesByOrigin(population, src)
	if err != nil {
		log.Fatal().Err(err).Msg("simcoredemo: population move failed")
	}

	fmt.Println("\n=== Population mover ===")
	for i, m := range moved {
		fmt.Printf("member %d: range %d -> %d, value %.4f -> %.4f\n",
			i, population[i].RangeIndex, m.RangeIndex, population[i].Value, m.Value)
	}
}

// runVARDemo fits a VAR(1) with a constant to ts, forecasts, and reports
// Granger causality between the first two variables.
func runVARDemo(ts *csvio.TimeSeriesData) {
	spec := varmodel.ModelSpec{Lags: 1, Deterministic: varmodel.DetConst}
	rf, err := varmodel.Estimate(ts.Y, spec)
	if err != nil {
		log.Fatal().Err(err).Msg("simcoredemo: VAR estimation failed")
	}

	fmt.Println("\n=== VAR coefficients ===")
	rf.PrintCoefficients()

	fcst, err := rf.Forecast(ts.Y, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("simcoredemo: forecast failed")
	}
	fmt.Println("\n=== 5-step forecast ===")
	fmt.Printf("%v\n", mat.Formatted(fcst, mat.Prefix(" ")))

	_, cols := ts.Y.Dims()
	if cols >= 2 {
		result, err := rf.GrangerCausality(ts.Y, ts.VarNames, 0, 1)
		if err != nil {
			log.Fatal().Err(err).Msg("simcoredemo: Granger test failed")
		}
		fmt.Printf("\n=== Granger causality: %s -> %s ===\nF=%.4f p=%.4f significant=%v\n",
			result.CauseVar, result.EffectVar, result.FStatistic, result.PValue, result.Significant)
	}
}

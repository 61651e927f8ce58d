package varmodel

import (
	"encoding/csv"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// OutputForecastsToCSV writes a forecast matrix, one row per step, one
// column per variable.
func OutputForecastsToCSV(path string, fc *mat.Dense, varNames []string) error {
	rows, cols := fc.Dims()

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := make([]string, cols)
	for j := 0; j < cols; j++ {
		if len(varNames) == cols {
			header[j] = varNames[j]
		} else {
			header[j] = fmt.Sprintf("Var%d", j+1)
		}
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for i := 0; i < rows; i++ {
		record := make([]string, cols)
		for j := 0; j < cols; j++ {
			record[j] = fmt.Sprintf("%f", fc.At(i, j))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// OutputIRFAnalysisToCSV writes a RunIRFAnalysis result, one row per
// horizon, one column per shock variable.
func OutputIRFAnalysisToCSV(path string, analysis map[int][]float64, varNames []string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Horizon"}
	for shockIdx := 0; shockIdx < len(analysis); shockIdx++ {
		var varName string
		if len(varNames) == len(analysis) {
			varName = varNames[shockIdx]
		} else {
			varName = fmt.Sprintf("Var%d", shockIdx+1)
		}
		header = append(header, "Shock_in_"+varName)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	var horizon int
	for _, series := range analysis {
		horizon = len(series)
		break
	}

	for h := 0; h < horizon; h++ {
		record := []string{fmt.Sprintf("%d", h)}
		for shockIdx := 0; shockIdx < len(analysis); shockIdx++ {
			record = append(record, fmt.Sprintf("%f", analysis[shockIdx][h]))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// OutputGrangerMatrixToCSV writes a GrangerCausalityMatrix result as one
// row per ordered pair of distinct variables.
func OutputGrangerMatrixToCSV(path string, gcMatrix [][]*GrangerCausalityResult, varNames []string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"CauseVar", "EffectVar", "FStatistic", "PValue", "Lags", "Significant"}
	if err := writer.Write(header); err != nil {
		return err
	}

	K := len(varNames)
	for i := 0; i < K; i++ {
		for j := 0; j < K; j++ {
			if i == j {
				continue
			}
			result := gcMatrix[i][j]
			if result == nil {
				continue
			}
			record := []string{
				result.CauseVar,
				result.EffectVar,
				fmt.Sprintf("%f", result.FStatistic),
				fmt.Sprintf("%f", result.PValue),
				fmt.Sprintf("%d", result.Lags),
				fmt.Sprintf("%t", result.Significant),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}
	return nil
}

// PrintCoefficients prints each lag's coefficient matrix and the residual
// covariance matrix.
func (rf *ReducedFormVAR) PrintCoefficients() {
	for i, Ai := range rf.A {
		fmt.Printf("\n=== A_%d ===\n", i+1)
		fmt.Printf("%v\n", mat.Formatted(Ai, mat.Prefix(" ")))
	}
	fmt.Println("\n=== Residual covariance SigmaU ===")
	fmt.Printf("%v\n", mat.Formatted(rf.SigmaU, mat.Prefix(" ")))
}

package csvio

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// TimeSeriesData is a CSV file loaded wholesale into a T x K matrix, with
// an implicit 0,1,2,... time index and the header row as variable names.
// Adapted from the teacher's LoadCSVToTimeSeries (io.go).
type TimeSeriesData struct {
	Y        *mat.Dense
	Time     []float64
	VarNames []string
}

// LoadTimeSeries reads path as a headered, comma- or tab-delimited CSV of
// purely numeric columns.
func LoadTimeSeries(path string, delim Delimiter) (*TimeSeriesData, error) {
	rd, err := NewReader(path, Options{Delimiter: delim, Quote: QuoteDoubleQuote, HasNames: true})
	if err != nil {
		return nil, err
	}
	defer rd.Close()

	k := len(rd.ColumnNames())
	if k == 0 {
		return nil, fmt.Errorf("csvio: empty header in %s", path)
	}

	var data []float64
	var times []float64
	row := make([]float64, 0, k)
	for rd.HasNextDataRow() {
		ok, err := rd.ReadDataRow(nil, false, &row)
		if err != nil {
			return nil, fmt.Errorf("csvio: %s: %w", path, err)
		}
		if !ok {
			break
		}
		if len(row) != k {
			return nil, fmt.Errorf("csvio: %s: row %d: expected %d columns, got %d", path, len(times), k, len(row))
		}
		data = append(data, row...)
		times = append(times, float64(len(times)))
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("csvio: no data rows in %s", path)
	}

	return &TimeSeriesData{
		Y:        mat.NewDense(len(times), k, data),
		Time:     times,
		VarNames: rd.ColumnNames(),
	}, nil
}

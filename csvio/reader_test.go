package csvio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestReaderWithNames(t *testing.T) {
	path := writeTempCSV(t, "A\tB\tC\n0.1\t0.2\t0.3\n1\t2\t3")
	rd, err := NewReader(path, Options{Delimiter: DelimiterTab, HasNames: true})
	require.NoError(t, err)
	defer rd.Close()

	assert.Equal(t, []string{"A", "B", "C"}, rd.ColumnNames())

	var row []float64
	require.True(t, rd.HasNextDataRow())
	ok, err := rd.ReadDataRow(nil, false, &row)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, row)

	require.True(t, rd.HasNextDataRow())
	ok, err = rd.ReadDataRow(nil, false, &row)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, row)

	assert.False(t, rd.HasNextDataRow())
}

func TestReaderWithoutNames(t *testing.T) {
	path := writeTempCSV(t, "0.1\t0.2\t0.3\n1\t2\t3")
	rd, err := NewReader(path, Options{Delimiter: DelimiterTab, HasNames: false})
	require.NoError(t, err)
	defer rd.Close()

	assert.Empty(t, rd.ColumnNames())

	var row []float64
	ok, err := rd.ReadDataRow(nil, false, &row)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, row)
}

func TestReaderSelectIndices(t *testing.T) {
	path := writeTempCSV(t, "0.1\t0.2\t0.3\n1\t2\t3")
	rd, err := NewReader(path, Options{Delimiter: DelimiterTab})
	require.NoError(t, err)
	defer rd.Close()

	var row []float64
	ok, err := rd.ReadDataRow([]int{1}, false, &row)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{0.2}, row)
}

func TestReaderQuotedField(t *testing.T) {
	path := writeTempCSV(t, "A\tB\tC\n1\t\"2.3\"\t4\n")
	rd, err := NewReader(path, Options{Delimiter: DelimiterTab, Quote: QuoteDoubleQuote, HasNames: true})
	require.NoError(t, err)
	defer rd.Close()

	var row []float64
	ok, err := rd.ReadDataRow(nil, true, &row)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2.3, row[1])
	assert.False(t, rd.HasNextDataRow())
}

func TestReaderMapNamesToIndices(t *testing.T) {
	m, err := MapNamesToIndices([]string{"A", "C", "B"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 0, "B": 2, "C": 1}, m)

	_, err = MapNamesToIndices([]string{"A", "C", "C"})
	assert.Error(t, err)
}

func TestReaderIndicesByName(t *testing.T) {
	path := writeTempCSV(t, "A\tB\tC\n0.1\t0.2\t0.3\n")
	rd, err := NewReader(path, Options{Delimiter: DelimiterTab, HasNames: true})
	require.NoError(t, err)
	defer rd.Close()

	idx, err := rd.Indices([]string{"C", "A"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, idx)

	_, err = rd.Indices([]string{"Z"})
	assert.Error(t, err)
}

func TestReaderMissingColumnAllowed(t *testing.T) {
	path := writeTempCSV(t, "A\tB\tC\n0.1\t0.2\t0.3\n1\t2")
	rd, err := NewReader(path, Options{Delimiter: DelimiterTab, HasNames: true})
	require.NoError(t, err)
	defer rd.Close()

	var row []float64
	ok, err := rd.ReadDataRow([]int{0, 2}, true, &row)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{0.1, 0.3}, row)

	ok, err = rd.ReadDataRow([]int{0, 2}, true, &row)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1.0, row[0])
	assert.True(t, math.IsNaN(row[1]))

	assert.False(t, rd.HasNextDataRow())
}

func TestReaderMissingColumnDisallowed(t *testing.T) {
	path := writeTempCSV(t, "A\tB\tC\n0.1\t0.2\t0.3\n1\t2")
	rd, err := NewReader(path, Options{Delimiter: DelimiterTab, HasNames: true})
	require.NoError(t, err)
	defer rd.Close()

	var row []float64
	_, err = rd.ReadDataRow([]int{0, 2}, false, &row)
	require.NoError(t, err)
	_, err = rd.ReadDataRow([]int{0, 2}, false, &row)
	assert.Error(t, err)
}

func TestReaderSkipsEmptyLines(t *testing.T) {
	path := writeTempCSV(t, "A\tB\tC\n0.1\t0.2\t0.3\n\n1\t2\t3\n\n")
	rd, err := NewReader(path, Options{Delimiter: DelimiterTab, HasNames: true})
	require.NoError(t, err)
	defer rd.Close()

	var row []float64
	ok, err := rd.ReadDataRow(nil, false, &row)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = rd.ReadDataRow(nil, false, &row)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, row)
	assert.False(t, rd.HasNextDataRow())
}

package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTimeSeries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "series.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n1,2\n3,4\n5,6\n"), 0o600))

	ts, err := LoadTimeSeries(path, DelimiterComma)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, ts.VarNames)
	assert.Equal(t, []float64{0, 1, 2}, ts.Time)
	rows, cols := ts.Y.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 5.0, ts.Y.At(2, 0))
	assert.Equal(t, 6.0, ts.Y.At(2, 1))
}

func TestLoadTimeSeriesRejectsRaggedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "series.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n1,2\n3\n"), 0o600))

	_, err := LoadTimeSeries(path, DelimiterComma)
	assert.Error(t, err)
}

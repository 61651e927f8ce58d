package regress

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFactorSelectionBottomUpOLS(t *testing.T) {
	fs := NewFactorSelectionBottomUp(MakeModelFactory(true), FactorRankResAdjR2(true), MakeBICComparator(6.0))

	const n = 10
	const d = 4
	a := []float64{0, -0.25, 0.6, 0}
	const b = -0.1

	X := mat.NewDense(n, d, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i*i*i)-20)
		X.Set(i, 1, math.Sin(float64(i)))
		X.Set(i, 2, -float64(i)+0.3)
		X.Set(i, 3, math.Cos(float64(i*i)))
		y[i] = b
		for j := 0; j < d; j++ {
			y[i] += a[j] * X.At(i, j)
		}
	}

	selected, err := fs.Select(X, y)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, selected)
}

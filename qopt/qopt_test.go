package qopt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinimizeQuadraticBowl(t *testing.T) {
	p := Problem{
		Objective: func(x []float64) float64 {
			return (x[0]-3)*(x[0]-3) + (x[1]+1)*(x[1]+1)
		},
		Gradient: func(x, grad []float64) {
			grad[0] = 2 * (x[0] - 3)
			grad[1] = 2 * (x[1] + 1)
		},
	}
	res, err := Minimize(p, []float64{0, 0})
	assert.NoError(t, err)
	assert.InDelta(t, 3.0, res.X[0], 1e-3)
	assert.InDelta(t, -1.0, res.X[1], 1e-3)
}

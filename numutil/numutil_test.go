package numutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSafeCastFloatToInt_Overflow(t *testing.T) {
	_, err := SafeCastFloatToInt[int8](200.0)
	assert.Error(t, err)

	v, err := SafeCastFloatToInt[int8](42.9)
	assert.NoError(t, err)
	assert.Equal(t, int8(42), v)
}

func TestSafeCastFloatToUint_Negative(t *testing.T) {
	_, err := SafeCastFloatToUint[uint8](-1.0)
	assert.Error(t, err)
}

func TestLogitRoundTrip(t *testing.T) {
	for _, p := range []float64{0.1, 0.5, 0.9} {
		x := ProbToLogit(p)
		got := LogitToProb(x)
		if !almostEqual(got, p, 1e-9) {
			t.Fatalf("round trip p=%v got=%v", p, got)
		}
	}
	if LogitToProb(math.Inf(-1)) != 0 {
		t.Fatal("expected saturation at 0")
	}
	if LogitToProb(math.Inf(1)) != 1 {
		t.Fatal("expected saturation at 1")
	}
}

func TestLogitDerivativeEndpoints(t *testing.T) {
	assert.Equal(t, 0.0, LogitDerivative(0))
	assert.Equal(t, 0.0, LogitDerivative(1))
	assert.InDelta(t, 0.25, LogitDerivative(0.5), 1e-12)
}

func TestSolveQuadraticDescendingOrder(t *testing.T) {
	roots := SolveQuadratic(1, -3, 2) // (x-1)(x-2)
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots got %d", len(roots))
	}
	if !almostEqual(roots[0], 2, 1e-9) || !almostEqual(roots[1], 1, 1e-9) {
		t.Fatalf("roots = %v", roots)
	}
}

func TestSolveQuadraticNoRealRoots(t *testing.T) {
	roots := SolveQuadratic(1, 0, 1)
	if roots != nil {
		t.Fatalf("expected no roots, got %v", roots)
	}
}

func TestBrentSolveSin(t *testing.T) {
	root, err := BrentSolve(math.Sin, 3, 4, DefaultBrentConfig())
	assert.NoError(t, err)
	if !almostEqual(root, math.Pi, 1e-8) {
		t.Fatalf("root = %v want %v", root, math.Pi)
	}
}

func TestBrentSolveFlatRegion(t *testing.T) {
	// A function with a very flat region around the root to stress the
	// interpolation/bisection fallback logic.
	f := func(x float64) float64 { return x * x * x }
	// The search stops once |f| < FTol, so FTol must lie below (1e-6)^3 for
	// the root of x^3 to be located to 1e-6.
	cfg := DefaultBrentConfig()
	cfg.FTol = 1e-20
	root, err := BrentSolve(f, -1, 2, cfg)
	assert.NoError(t, err)
	if !almostEqual(root, 0, 1e-6) {
		t.Fatalf("root = %v", root)
	}
}

func TestArgMaxRandomTiebreak(t *testing.T) {
	xs := []float64{1, 3, 3, 2}
	// u01=0 should select the first of the tied candidates (index 1).
	idx := ArgMaxRandomTiebreak(xs, 0)
	assert.Equal(t, 1, idx)
	// u01 close to 1 should select the last tied candidate (index 2).
	idx = ArgMaxRandomTiebreak(xs, 0.999)
	assert.Equal(t, 2, idx)
}

func TestRandomRoundIntegerIsExact(t *testing.T) {
	assert.Equal(t, 4.0, RandomRound(4.0, 0.999))
	assert.Equal(t, 4.0, RandomRound(4.0, 0.0))
}

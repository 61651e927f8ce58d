package genericdist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microsimcore/distuv"
	"microsimcore/rng"
)

func TestFromRealIntCodecRoundTrip(t *testing.T) {
	d, err := distuv.NewDiscrete(-1, []float64{0.25, 0.4, 0.35}, 1e-9)
	require.NoError(t, err)
	g, err := NewFromReal[int](d, IntCodec{})
	require.NoError(t, err)
	assert.Equal(t, -1, g.LowerBound())
	assert.Equal(t, 1, g.UpperBound())
	assert.InDelta(t, 0.25, g.RangeProb2(-1, 0), 1e-9)
}

func TestFromRealRandomUsesSource(t *testing.T) {
	n := distuv.Normal{Mu: 0, Sigma: 1}
	g, err := NewFromReal[float64](n, Float64Codec{})
	require.NoError(t, err)
	src := rng.NewMT19937(42)
	x := g.Random(src)
	assert.False(t, x != x) // not NaN
}

func TestFromRealConditional(t *testing.T) {
	n := distuv.Normal{Mu: 0, Sigma: 1}
	g, err := NewFromReal[float64](n, Float64Codec{})
	require.NoError(t, err)
	c, err := g.Conditional(-1, 1)
	require.NoError(t, err)
	assert.True(t, c.LowerBound() >= -1-1e-9)
	assert.True(t, c.UpperBound() <= 1+1e-9)
}

func TestFromRealNilDistributionRejected(t *testing.T) {
	_, err := NewFromReal[float64](nil, Float64Codec{})
	assert.Error(t, err)
}

func TestTimeCodecRoundTrip(t *testing.T) {
	tc := TimeCodec{}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	back := tc.FromFloat64(tc.ToFloat64(now))
	assert.Equal(t, now.Unix(), back.Unix())
}

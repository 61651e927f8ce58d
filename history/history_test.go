package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microsimcore/simerr"
)

func TestDenseAppendAndReadRoundTrip(t *testing.T) {
	h := NewDense[float64]("temperature")
	for i := 0; i < 1000; i++ {
		require.NoError(t, h.Append(Date(i), float64(i)*0.5))
	}
	assert.Equal(t, 1000, h.Size())

	data, err := h.ToData()
	require.NoError(t, err)
	assert.Equal(t, "dense double", data.FactoryType)
	assert.Equal(t, "temperature", data.Name)
	assert.Len(t, data.Dates, 1000)
	assert.Equal(t, 1000, data.Values.Len())

	rebuilt := NewDense[float64]("temperature")
	for i, d := range data.Dates {
		vf64 := data.Values.(*vectorF64)
		require.NoError(t, rebuilt.Append(d, vf64.Values[i]))
	}
	assert.Equal(t, h.dates, rebuilt.dates)
	assert.Equal(t, h.values, rebuilt.values)
}

func TestDenseRejectsNonIncreasingAppend(t *testing.T) {
	h := NewDense[float64]("x")
	require.NoError(t, h.Append(5, 1.0))
	assert.Error(t, h.Append(5, 2.0))
	assert.Error(t, h.Append(4, 2.0))
}

func TestDenseCorrectReplacesLastValue(t *testing.T) {
	h := NewDense[int32]("x")
	require.NoError(t, h.Append(1, 10))
	require.NoError(t, h.Append(2, 20))
	require.NoError(t, h.Correct(99))
	v, err := h.ValueAt(1)
	require.NoError(t, err)
	assert.EqualValues(t, 99, v)
	d, err := h.DateAt(1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, d)
}

func TestDenseFirstLastIndexAndAsOf(t *testing.T) {
	h := NewDense[float64]("x")
	for _, d := range []Date{10, 20, 30} {
		require.NoError(t, h.Append(d, float64(d)))
	}

	idx, err := h.LastIndex(25)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = h.FirstIndex(25)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = h.LastIndex(5)
	assert.ErrorIs(t, err, simerr.ErrNoData)

	_, err = h.FirstIndex(31)
	assert.ErrorIs(t, err, simerr.ErrNoData)

	v, ok := h.ValueAtDate(20)
	require.True(t, ok)
	assert.Equal(t, 20.0, v)

	_, ok = h.ValueAtDate(21)
	assert.False(t, ok)

	v, err = h.LastValueAsOf(25)
	require.NoError(t, err)
	assert.Equal(t, 20.0, v)
}

func TestSparseRepeatingValueAdvancesLogicalLastDate(t *testing.T) {
	s := NewSparse[float64]("x")
	require.NoError(t, s.Append(1, 7.0))
	require.NoError(t, s.Append(2, 7.0))
	require.NoError(t, s.Append(3, 7.0))
	require.NoError(t, s.Append(4, 8.0))

	assert.Equal(t, 2, s.Size())
	last, err := s.LastDate()
	require.NoError(t, err)
	assert.EqualValues(t, 4, last)

	for _, d := range []Date{1, 2, 3} {
		v, ok := s.ValueAtDate(d)
		require.True(t, ok)
		assert.Equal(t, 7.0, v)
	}
	v, ok := s.ValueAtDate(4)
	require.True(t, ok)
	assert.Equal(t, 8.0, v)
}

func TestSparseReadBeyondLogicalLastFails(t *testing.T) {
	s := NewSparse[float64]("x")
	require.NoError(t, s.Append(1, 1.0))
	require.NoError(t, s.Append(2, 2.0))

	_, ok := s.ValueAtDate(3)
	assert.False(t, ok)

	v, ok := s.ValueAtDate(2)
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestSparseRejectsNonIncreasingAppend(t *testing.T) {
	s := NewSparse[float64]("x")
	require.NoError(t, s.Append(5, 1.0))
	assert.Error(t, s.Append(5, 2.0))
	assert.Error(t, s.Append(4, 2.0))
}

func TestSparseToDataTagsFactoryType(t *testing.T) {
	s := NewSparse[int32]("x")
	require.NoError(t, s.Append(1, 1))
	require.NoError(t, s.Append(2, 1))
	require.NoError(t, s.Append(3, 2))

	data, err := s.ToData()
	require.NoError(t, err)
	assert.Equal(t, "sparse int32", data.FactoryType)
	assert.Equal(t, 2, data.Values.Len())
}

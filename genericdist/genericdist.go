// Package genericdist bridges a real-valued distuv.Dist to a distribution
// over an arbitrary ordered type T (integers, dates, ...), mirroring the
// GenericDistributionFromReal<T> adapter: values of T flow through a Codec
// that maps to and from float64 so the same quadrature/quantile machinery in
// distuv serves every concrete T.
package genericdist

import (
	"fmt"
	"time"

	"microsimcore/distuv"
	"microsimcore/rng"
	"microsimcore/simerr"
)

// Codec converts values of T to and from the float64 domain the underlying
// real distribution operates on. Implementations must be monotonic: x < y in
// T iff ToFloat64(x) < ToFloat64(y).
type Codec[T any] interface {
	ToFloat64(T) float64
	FromFloat64(float64) T
}

// Float64Codec is the identity codec for plain real-valued T.
type Float64Codec struct{}

func (Float64Codec) ToFloat64(v float64) float64 { return v }
func (Float64Codec) FromFloat64(v float64) float64 { return v }

// IntCodec rounds a float64 back to an int via rounding to nearest,
// appropriate for distributions built over a real-valued Discrete whose
// atoms land on integers.
type IntCodec struct{}

func (IntCodec) ToFloat64(v int) float64 { return float64(v) }
func (IntCodec) FromFloat64(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return int(v - 0.5)
}

// TimeCodec maps time.Time to a float64 Unix-second offset and back,
// truncating sub-second precision.
type TimeCodec struct{}

func (TimeCodec) ToFloat64(t time.Time) float64 { return float64(t.Unix()) }
func (TimeCodec) FromFloat64(v float64) time.Time { return time.Unix(int64(v), 0).UTC() }

// FromReal realizes GenericDistribution[T] on top of a real-valued
// distuv.Dist via a Codec[T].
type FromReal[T any] struct {
	Real  distuv.Dist
	Codec Codec[T]
}

// NewFromReal validates that real is non-nil and wraps it.
func NewFromReal[T any](real distuv.Dist, codec Codec[T]) (*FromReal[T], error) {
	if real == nil {
		return nil, fmt.Errorf("genericdist: nil real distribution: %w", simerr.ErrInvalidArgument)
	}
	return &FromReal[T]{Real: real, Codec: codec}, nil
}

// Random draws a value of T via the wrapped distribution, preferring its own
// Draw when it implements Sampler and falling back to inverse-CDF sampling.
func (g *FromReal[T]) Random(src rng.Source) T {
	if s, ok := g.Real.(distuv.Sampler); ok {
		return g.Codec.FromFloat64(s.Draw(src))
	}
	return g.Codec.FromFloat64(distuv.DrawICDF(g.Real, src))
}

// RangeProb2 returns P(x1 <= X < x2).
func (g *FromReal[T]) RangeProb2(x1, x2 T) float64 {
	return distuv.RangeProb2(g.Real, g.Codec.ToFloat64(x1), g.Codec.ToFloat64(x2))
}

// ICDFGeneric returns the smallest x (in T) with P(X<=x) >= p.
func (g *FromReal[T]) ICDFGeneric(p float64) T {
	return g.Codec.FromFloat64(g.Real.ICDF(p))
}

// LowerBound returns the infimum of the range, mapped into T.
func (g *FromReal[T]) LowerBound() T {
	return g.Codec.FromFloat64(g.Real.Infimum())
}

// UpperBound returns the supremum of the range, mapped into T.
func (g *FromReal[T]) UpperBound() T {
	return g.Codec.FromFloat64(g.Real.Supremum())
}

// Conditional returns the distribution of X | left <= X < right, failing
// ErrImpossibleCondition when that event has zero probability.
func (g *FromReal[T]) Conditional(left, right T) (*FromReal[T], error) {
	a, b := g.Codec.ToFloat64(left), g.Codec.ToFloat64(right)
	cond, err := distuv.NewConditional(g.Real, a, b)
	if err != nil {
		return nil, err
	}
	return &FromReal[T]{Real: cond, Codec: g.Codec}, nil
}

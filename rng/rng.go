// Package rng provides the pseudo-random generator abstraction consumed
// throughout the statistical core (spec §4.1, §5). The RNG is always passed
// by exclusive mutable reference so that callers retain full control over
// determinism: given the same seed and a single-threaded driver, every
// downstream computation is bit-reproducible up to floating-point order of
// operations.
package rng

import (
	"math"
	"math/rand/v2"

	"microsimcore/simerr"
)

// Source is the RNG contract every component in the core depends on.
type Source interface {
	// NextUniform returns a uniform variate in [0,1).
	NextUniform() float64
	// NextGaussian returns a standard-normal variate.
	NextGaussian() float64
	// NextUniformBelow returns a uniform integer in [0,n].
	NextUniformBelow(n int) int
	// NextAlphaStable returns a standard alpha-stable variate with the
	// given stability index alpha in (0,2].
	NextAlphaStable(alpha float64) float64
	// NextGaussians fills out with S*z for a standard-normal vector z,
	// where S is supplied row-major with rows==len(out).
	NextGaussians(s [][]float64, out []float64)
	// Advance discards n draws from the underlying stream.
	Advance(n int)
}

// MT19937 is a 64-bit Mersenne-Twister-equivalent backing generator. It
// wraps math/rand/v2's ChaCha8 source, which is the closest stdlib
// equivalent available to this module's dependency set (no pack example
// imports a dedicated MT19937 package).
type MT19937 struct {
	r *rand.Rand
}

// NewMT19937 constructs a generator seeded deterministically from seed.
func NewMT19937(seed uint64) *MT19937 {
	var seedBytes [32]byte
	for i := 0; i < 4; i++ {
		v := seed + uint64(i)*0x9E3779B97F4A7C15
		for b := 0; b < 8; b++ {
			seedBytes[i*8+b] = byte(v >> (8 * b))
		}
	}
	return &MT19937{r: rand.New(rand.NewChaCha8(seedBytes))}
}

func (m *MT19937) NextUniform() float64 { return m.r.Float64() }

func (m *MT19937) NextGaussian() float64 { return m.r.NormFloat64() }

func (m *MT19937) NextUniformBelow(n int) int {
	if n < 0 {
		panic(simerr.ErrInvalidArgument)
	}
	return m.r.IntN(n + 1)
}

func (m *MT19937) NextAlphaStable(alpha float64) float64 {
	return sampleAlphaStable(alpha, m)
}

func (m *MT19937) NextGaussians(s [][]float64, out []float64) {
	multiplyGaussians(s, out, m)
}

func (m *MT19937) Advance(n int) {
	for i := 0; i < n; i++ {
		m.r.Uint64()
	}
}

// sampleAlphaStable draws a standard alpha-stable variate (scale chosen by
// the caller's convention; this returns the Chambers-Mallows-Stuck standard
// form) using the classical CMS algorithm. alpha == 2 is handled as a
// Gaussian special case for numerical accuracy at the boundary.
func sampleAlphaStable(alpha float64, src Source) float64 {
	if alpha <= 0 || alpha > 2 {
		panic(simerr.ErrInvalidArgument)
	}
	if alpha == 2 {
		return src.NextGaussian()
	}
	if alpha == 1 {
		// Standard Cauchy via the uniform-to-tan transform.
		u := src.NextUniform()
		return math.Tan(math.Pi * (u - 0.5))
	}
	u := math.Pi * (src.NextUniform() - 0.5)
	w := -math.Log(1 - src.NextUniform())
	sinAlphaU := math.Sin(alpha * u)
	cosU := math.Cos(u)
	term1 := sinAlphaU / math.Pow(cosU, 1/alpha)
	term2 := math.Pow(math.Cos(u-alpha*u)/w, (1-alpha)/alpha)
	return term1 * term2
}

func multiplyGaussians(s [][]float64, out []float64, src Source) {
	n := len(s)
	if len(out) != n {
		panic(simerr.ErrInvalidArgument)
	}
	m := 0
	if n > 0 {
		m = len(s[0])
	}
	z := make([]float64, m)
	for i := range z {
		z[i] = src.NextGaussian()
	}
	for i := 0; i < n; i++ {
		row := s[i]
		if len(row) != m {
			panic(simerr.ErrInvalidArgument)
		}
		acc := 0.0
		for j := 0; j < m; j++ {
			acc += row[j] * z[j]
		}
		out[i] = acc
	}
}

// Precomputed is a deterministic test double that replays a fixed sequence
// of uniform variates, deriving Gaussians from consecutive pairs via
// Box-Muller (MT19937 uses math/rand's NormFloat64 instead) and
// alpha-stable draws via the same CMS transform as MT19937. It fails ErrExhausted once drained,
// matching §5's "Precomputed-sample RNG instances fail Exhausted when
// drained" requirement.
type Precomputed struct {
	uniforms []float64
	pos      int
}

// NewPrecomputed builds a Precomputed generator that replays uniforms in
// order.
func NewPrecomputed(uniforms []float64) *Precomputed {
	cp := make([]float64, len(uniforms))
	copy(cp, uniforms)
	return &Precomputed{uniforms: cp}
}

func (p *Precomputed) next() float64 {
	if p.pos >= len(p.uniforms) {
		panic(simerr.ErrExhausted)
	}
	v := p.uniforms[p.pos]
	p.pos++
	return v
}

func (p *Precomputed) NextUniform() float64 { return p.next() }

func (p *Precomputed) NextGaussian() float64 {
	// Box-Muller using two consecutive uniforms, consistent and
	// deterministic for a fixed input sequence.
	u1 := p.next()
	u2 := p.next()
	if u1 < 1e-300 {
		u1 = 1e-300
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func (p *Precomputed) NextUniformBelow(n int) int {
	if n < 0 {
		panic(simerr.ErrInvalidArgument)
	}
	u := p.next()
	return int(u * float64(n+1))
}

func (p *Precomputed) NextAlphaStable(alpha float64) float64 {
	return sampleAlphaStable(alpha, p)
}

func (p *Precomputed) NextGaussians(s [][]float64, out []float64) {
	multiplyGaussians(s, out, p)
}

func (p *Precomputed) Advance(n int) {
	for i := 0; i < n; i++ {
		p.next()
	}
}

// Remaining reports how many uniforms are left before Exhausted would fire.
func (p *Precomputed) Remaining() int { return len(p.uniforms) - p.pos }

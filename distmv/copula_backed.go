package distmv

import (
	"fmt"

	"microsimcore/distuv"
	"microsimcore/rng"
	"microsimcore/simerr"
)

// Copula is the minimal contract CopulaBacked needs from a copula
// implementation (package copula's types satisfy it), kept here rather than
// imported from package copula to avoid a dependency cycle: copula's
// ConditionalWithMarginals builds a distmv.Transformed as its return value,
// so distmv cannot import copula.
type Copula interface {
	Dim() int
	Draw(src rng.Source, u []float64)
	// AdjustCDFs rank-transforms a sample of uniforms in place to match this
	// copula's dependence structure.
	AdjustCDFs(sample [][]float64)
}

// CopulaBacked holds a Copula and d marginal univariate distributions.
type CopulaBacked struct {
	Copula    Copula
	Marginals []distuv.Dist
}

// NewCopulaBacked validates that the copula and marginal dimensions agree.
func NewCopulaBacked(cop Copula, marginals []distuv.Dist) (*CopulaBacked, error) {
	if cop == nil {
		return nil, fmt.Errorf("distmv: copula-backed: nil copula: %w", simerr.ErrInvalidArgument)
	}
	if cop.Dim() != len(marginals) {
		return nil, fmt.Errorf("distmv: copula-backed: dimension mismatch: %w", simerr.ErrInvalidArgument)
	}
	return &CopulaBacked{Copula: cop, Marginals: marginals}, nil
}

func (c *CopulaBacked) Dim() int { return len(c.Marginals) }

// Draw samples uniforms from the copula and maps them through each
// marginal's inverse CDF.
func (c *CopulaBacked) Draw(src rng.Source, x []float64) {
	u := make([]float64, c.Dim())
	c.Copula.Draw(src, u)
	for i, m := range c.Marginals {
		x[i] = m.ICDF(u[i])
	}
}

func (c *CopulaBacked) MarginalCDF(x, p []float64) {
	for i, m := range c.Marginals {
		p[i] = m.CDF(x[i])
	}
}

func (c *CopulaBacked) MarginalICDF(p, x []float64) {
	for i, m := range c.Marginals {
		x[i] = m.ICDF(p[i])
	}
}

// AdjustDistribution converts sample to uniforms via each marginal's CDF,
// delegates to the copula's AdjustCDFs, and maps back through the inverse
// marginal CDFs.
func (c *CopulaBacked) AdjustDistribution(sample [][]float64) {
	d := c.Dim()
	uniforms := make([][]float64, len(sample))
	for r, row := range sample {
		u := make([]float64, d)
		for i, m := range c.Marginals {
			u[i] = m.CDF(row[i])
		}
		uniforms[r] = u
	}
	c.Copula.AdjustCDFs(uniforms)
	for r, row := range sample {
		for i, m := range c.Marginals {
			row[i] = m.ICDF(uniforms[r][i])
		}
	}
}

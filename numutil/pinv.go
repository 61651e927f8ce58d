package numutil

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"microsimcore/simerr"
)

// PseudoInverse computes the Moore-Penrose pseudo-inverse of m via thin SVD,
// the same decomposition the teacher's OLS fallback path uses
// (functions.go's svd.Factorize/svd.SolveTo). Singular values with
// |sigma| <= eps are treated as zero on inversion.
func PseudoInverse(m mat.Matrix, eps float64) (*mat.Dense, error) {
	if eps < 0 {
		return nil, fmt.Errorf("pseudo-inverse: negative eps: %w", simerr.ErrInvalidArgument)
	}
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("pseudo-inverse: empty matrix: %w", simerr.ErrInvalidArgument)
	}

	var svd mat.SVD
	ok := svd.Factorize(m, mat.SVDThin)
	if !ok {
		return nil, fmt.Errorf("pseudo-inverse: SVD factorization failed: %w", simerr.ErrInvalidArgument)
	}

	values := svd.Values(nil)

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// sigmaPlus is diag(1/sigma_i) for sigma_i > eps else 0, sized k x k with
	// k = min(rows, cols), the number of thin-SVD singular values.
	k := len(values)
	sigmaPlus := mat.NewDense(k, k, nil)
	for i, s := range values {
		if s > eps {
			sigmaPlus.Set(i, i, 1/s)
		}
	}

	// pinv = V * Sigma+ * U^T
	var tmp mat.Dense
	tmp.Mul(&v, sigmaPlus)
	var result mat.Dense
	result.Mul(&tmp, u.T())
	return &result, nil
}

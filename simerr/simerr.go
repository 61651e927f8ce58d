// Package simerr defines the error kinds shared across the statistical core.
//
// Every fallible operation in the core returns one of these sentinel errors,
// usually wrapped with call-site context via fmt.Errorf("%s: %w", ctx, Kind).
// Callers match with errors.Is.
package simerr

import "errors"

var (
	// ErrInvalidArgument signals a structural violation: nil pointer, empty
	// vector, size mismatch, non-positive tolerance.
	ErrInvalidArgument = errors.New("simcore: invalid argument")

	// ErrOutOfRange signals a numeric bound violation: probability outside
	// [0,1], negative sigma, a safe cast that would overflow its target type.
	ErrOutOfRange = errors.New("simcore: value out of range")

	// ErrInvalidRange signals b <= a or x1 > x2 where a strictly ordered
	// pair was required.
	ErrInvalidRange = errors.New("simcore: invalid range")

	// ErrNotPositiveSemidefinite signals a covariance or correlation matrix
	// that failed the positive-semidefinite check.
	ErrNotPositiveSemidefinite = errors.New("simcore: matrix is not positive semidefinite")

	// ErrImpossibleConstraints signals a solver request that cannot be
	// satisfied (e.g. a variance-capture fraction requiring more factors
	// than the configured maximum allows).
	ErrImpossibleConstraints = errors.New("simcore: constraints cannot be satisfied")

	// ErrImpossibleCondition signals conditioning on a zero-probability
	// event.
	ErrImpossibleCondition = errors.New("simcore: conditioning event has zero probability")

	// ErrNoData signals a read before the first event, a sparse-history
	// read beyond its logical last date, or an empty running-statistics
	// query.
	ErrNoData = errors.New("simcore: no data")

	// ErrSumNotOne signals a probability vector that fails normalization
	// within the caller's tolerance.
	ErrSumNotOne = errors.New("simcore: probabilities do not sum to one")

	// ErrEstimationFailed signals a method-of-moments or maximum-likelihood
	// estimator that rejected the sample.
	ErrEstimationFailed = errors.New("simcore: estimation failed")

	// ErrNotImplemented signals an explicitly unsupported combination, such
	// as an alpha-stable marginal for alpha not in {1, 2}.
	ErrNotImplemented = errors.New("simcore: not implemented")

	// ErrExhausted signals a deterministic RNG that ran out of precomputed
	// samples.
	ErrExhausted = errors.New("simcore: generator exhausted")
)

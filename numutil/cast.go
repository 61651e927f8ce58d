package numutil

import (
	"fmt"
	"math"

	"microsimcore/simerr"
)

// Signed is the set of integer types SafeCastFloatToInt targets.
type Signed interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int
}

// Unsigned is the set of integer types SafeCastFloatToUint targets.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// SafeCastFloatToInt truncates x toward zero and checks that the result fits
// in To. It fails simerr.ErrOutOfRange when it does not.
func SafeCastFloatToInt[To Signed](x float64) (To, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("cast %v: %w", x, simerr.ErrOutOfRange)
	}
	trunc := math.Trunc(x)
	lo, hi := boundsSigned[To]()
	if trunc < lo || trunc > hi {
		return 0, fmt.Errorf("cast %v out of range: %w", x, simerr.ErrOutOfRange)
	}
	return To(trunc), nil
}

// SafeCastFloatToUint truncates x toward zero and checks that the result
// fits in To (and is non-negative).
func SafeCastFloatToUint[To Unsigned](x float64) (To, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("cast %v: %w", x, simerr.ErrOutOfRange)
	}
	trunc := math.Trunc(x)
	if trunc < 0 {
		return 0, fmt.Errorf("cast %v out of range: %w", x, simerr.ErrOutOfRange)
	}
	hi := boundsUnsignedMax[To]()
	if trunc > hi {
		return 0, fmt.Errorf("cast %v out of range: %w", x, simerr.ErrOutOfRange)
	}
	return To(trunc), nil
}

// SafeCastIntToInt bounds-checks an int64-to-int64-family cast.
func SafeCastIntToInt[To Signed](x int64) (To, error) {
	lo, hi := boundsSigned[To]()
	fx := float64(x)
	if fx < lo || fx > hi {
		return 0, fmt.Errorf("cast %d out of range: %w", x, simerr.ErrOutOfRange)
	}
	return To(x), nil
}

// SafeCastIntToUint bounds-checks an int64-to-unsigned cast.
func SafeCastIntToUint[To Unsigned](x int64) (To, error) {
	if x < 0 {
		return 0, fmt.Errorf("cast %d out of range: %w", x, simerr.ErrOutOfRange)
	}
	hi := boundsUnsignedMax[To]()
	if float64(x) > hi {
		return 0, fmt.Errorf("cast %d out of range: %w", x, simerr.ErrOutOfRange)
	}
	return To(x), nil
}

func boundsSigned[To Signed]() (lo, hi float64) {
	var z To
	switch any(z).(type) {
	case int8:
		return math.MinInt8, math.MaxInt8
	case int16:
		return math.MinInt16, math.MaxInt16
	case int32:
		return math.MinInt32, math.MaxInt32
	case int64, int:
		return -9.223372036854776e18, 9.223372036854776e18
	}
	return math.Inf(-1), math.Inf(1)
}

func boundsUnsignedMax[To Unsigned]() float64 {
	var z To
	switch any(z).(type) {
	case uint8:
		return math.MaxUint8
	case uint16:
		return math.MaxUint16
	case uint32:
		return math.MaxUint32
	case uint64, uint:
		return 1.8446744073709552e19
	}
	return math.Inf(1)
}

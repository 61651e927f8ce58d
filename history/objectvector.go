// Package history implements a type-tagged scalar container (ObjectVector)
// and two realizations of a chronological event history (dense and sparse),
// grounded on averisera's core/object_vector.hpp and
// microsim-simulator/history/history_time_series.hpp + history_sparse.hpp.
package history

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"microsimcore/numutil"
	"microsimcore/simerr"
)

// Kind tags the scalar type stored in an ObjectVector.
type Kind int8

const (
	KindNone Kind = iota
	KindF64
	KindF32
	KindI8
	KindI16
	KindI32
	KindU8
	KindU16
	KindU32
)

func (k Kind) String() string {
	switch k {
	case KindF64:
		return "double"
	case KindF32:
		return "float"
	case KindI8:
		return "int8"
	case KindI16:
		return "int16"
	case KindI32:
		return "int32"
	case KindU8:
		return "uint8"
	case KindU16:
		return "uint16"
	case KindU32:
		return "uint32"
	default:
		return "none"
	}
}

// KindFromString parses the type names ObjectVector.String and the history
// persisted-state format use.
func KindFromString(s string) (Kind, error) {
	switch s {
	case "none":
		return KindNone, nil
	case "double":
		return KindF64, nil
	case "float":
		return KindF32, nil
	case "int8":
		return KindI8, nil
	case "int16":
		return KindI16, nil
	case "int32":
		return KindI32, nil
	case "uint8":
		return KindU8, nil
	case "uint16":
		return KindU16, nil
	case "uint32":
		return KindU32, nil
	default:
		return KindNone, fmt.Errorf("history: unknown object vector type %q: %w", s, simerr.ErrInvalidArgument)
	}
}

// ObjectVector is a homogeneous, type-tagged dynamic array: exactly one of
// {f64, f32, i8, i16, i32, u8, u16, u32, none}. PushBack performs a checked
// numeric cast into the container's type; a value outside the target type's
// range fails with ErrOutOfRange.
type ObjectVector interface {
	Kind() Kind
	Len() int
	IsNull() bool
	PushBack(x float64) error
	String() string
}

// NewObjectVector builds an empty vector of the given kind.
func NewObjectVector(k Kind) (ObjectVector, error) {
	switch k {
	case KindNone:
		return nullVector{}, nil
	case KindF64:
		return &vectorF64{}, nil
	case KindF32:
		return &vectorF32{}, nil
	case KindI8:
		return &vectorI8{}, nil
	case KindI16:
		return &vectorI16{}, nil
	case KindI32:
		return &vectorI32{}, nil
	case KindU8:
		return &vectorU8{}, nil
	case KindU16:
		return &vectorU16{}, nil
	case KindU32:
		return &vectorU32{}, nil
	default:
		return nil, fmt.Errorf("history: unknown object vector kind %d: %w", k, simerr.ErrInvalidArgument)
	}
}

type nullVector struct{}

func (nullVector) Kind() Kind     { return KindNone }
func (nullVector) Len() int       { return 0 }
func (nullVector) IsNull() bool   { return true }
func (nullVector) String() string { return "none" }
func (nullVector) PushBack(float64) error {
	return fmt.Errorf("history: push back to a null object vector: %w", simerr.ErrInvalidArgument)
}

func formatVector(kind string, format func(i int) string, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = format(i)
	}
	return kind + "|[" + strings.Join(parts, ", ") + "]"
}

type vectorF64 struct{ Values []float64 }

func (v *vectorF64) Kind() Kind   { return KindF64 }
func (v *vectorF64) Len() int     { return len(v.Values) }
func (v *vectorF64) IsNull() bool { return false }
func (v *vectorF64) PushBack(x float64) error {
	v.Values = append(v.Values, x)
	return nil
}
func (v *vectorF64) String() string {
	return formatVector("double", func(i int) string { return strconv.FormatFloat(v.Values[i], 'g', -1, 64) }, len(v.Values))
}

type vectorF32 struct{ Values []float32 }

func (v *vectorF32) Kind() Kind   { return KindF32 }
func (v *vectorF32) Len() int     { return len(v.Values) }
func (v *vectorF32) IsNull() bool { return false }
func (v *vectorF32) PushBack(x float64) error {
	if !math.IsInf(x, 0) && math.Abs(x) > math.MaxFloat32 {
		return fmt.Errorf("history: cast %v to float32 out of range: %w", x, simerr.ErrOutOfRange)
	}
	v.Values = append(v.Values, float32(x))
	return nil
}
func (v *vectorF32) String() string {
	return formatVector("float", func(i int) string { return strconv.FormatFloat(float64(v.Values[i]), 'g', -1, 32) }, len(v.Values))
}

type vectorI8 struct{ Values []int8 }

func (v *vectorI8) Kind() Kind   { return KindI8 }
func (v *vectorI8) Len() int     { return len(v.Values) }
func (v *vectorI8) IsNull() bool { return false }
func (v *vectorI8) PushBack(x float64) error {
	c, err := numutil.SafeCastFloatToInt[int8](x)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	v.Values = append(v.Values, c)
	return nil
}
func (v *vectorI8) String() string {
	return formatVector("int8", func(i int) string { return strconv.FormatInt(int64(v.Values[i]), 10) }, len(v.Values))
}

type vectorI16 struct{ Values []int16 }

func (v *vectorI16) Kind() Kind   { return KindI16 }
func (v *vectorI16) Len() int     { return len(v.Values) }
func (v *vectorI16) IsNull() bool { return false }
func (v *vectorI16) PushBack(x float64) error {
	c, err := numutil.SafeCastFloatToInt[int16](x)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	v.Values = append(v.Values, c)
	return nil
}
func (v *vectorI16) String() string {
	return formatVector("int16", func(i int) string { return strconv.FormatInt(int64(v.Values[i]), 10) }, len(v.Values))
}

type vectorI32 struct{ Values []int32 }

func (v *vectorI32) Kind() Kind   { return KindI32 }
func (v *vectorI32) Len() int     { return len(v.Values) }
func (v *vectorI32) IsNull() bool { return false }
func (v *vectorI32) PushBack(x float64) error {
	c, err := numutil.SafeCastFloatToInt[int32](x)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	v.Values = append(v.Values, c)
	return nil
}
func (v *vectorI32) String() string {
	return formatVector("int32", func(i int) string { return strconv.FormatInt(int64(v.Values[i]), 10) }, len(v.Values))
}

type vectorU8 struct{ Values []uint8 }

func (v *vectorU8) Kind() Kind   { return KindU8 }
func (v *vectorU8) Len() int     { return len(v.Values) }
func (v *vectorU8) IsNull() bool { return false }
func (v *vectorU8) PushBack(x float64) error {
	c, err := numutil.SafeCastFloatToUint[uint8](x)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	v.Values = append(v.Values, c)
	return nil
}
func (v *vectorU8) String() string {
	return formatVector("uint8", func(i int) string { return strconv.FormatUint(uint64(v.Values[i]), 10) }, len(v.Values))
}

type vectorU16 struct{ Values []uint16 }

func (v *vectorU16) Kind() Kind   { return KindU16 }
func (v *vectorU16) Len() int     { return len(v.Values) }
func (v *vectorU16) IsNull() bool { return false }
func (v *vectorU16) PushBack(x float64) error {
	c, err := numutil.SafeCastFloatToUint[uint16](x)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	v.Values = append(v.Values, c)
	return nil
}
func (v *vectorU16) String() string {
	return formatVector("uint16", func(i int) string { return strconv.FormatUint(uint64(v.Values[i]), 10) }, len(v.Values))
}

type vectorU32 struct{ Values []uint32 }

func (v *vectorU32) Kind() Kind   { return KindU32 }
func (v *vectorU32) Len() int     { return len(v.Values) }
func (v *vectorU32) IsNull() bool { return false }
func (v *vectorU32) PushBack(x float64) error {
	c, err := numutil.SafeCastFloatToUint[uint32](x)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	v.Values = append(v.Values, c)
	return nil
}
func (v *vectorU32) String() string {
	return formatVector("uint32", func(i int) string { return strconv.FormatUint(uint64(v.Values[i]), 10) }, len(v.Values))
}

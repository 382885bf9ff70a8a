// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

// Package dtypes defines the DType enum for every data type loom can trace and
// execute, along with converters to and from Go native types and the promotion
// rules used to resolve the result type of mixed-dtype operations.
//
// It also includes constraint interfaces to be used with generics (Number,
// GoFloat, Supported) and min/max/smallest values per dtype.
package dtypes

import (
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/loom-ml/loom/types/dtypes/bfloat16"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// DType is an enum of the data types of tensors and scalars.
type DType int32

//go:generate go tool enumer -type=DType -output=gen_dtype_enumer.go

const (
	// InvalidDType is the zero value of DType and not a valid type to compute with.
	InvalidDType DType = iota

	// Bool is a two-state predicate, the result type of comparisons.
	Bool

	// Int8 through Int64 are signed integers of fixed width.
	Int8
	Int16
	Int32
	Int64

	// Uint8 through Uint64 are unsigned integers of fixed width.
	Uint8
	Uint16
	Uint32
	Uint64

	// Float16 is the IEEE-754 binary16 floating-point format.
	Float16

	// Float32 is the IEEE-754 binary32 floating-point format.
	Float32

	// Float64 is the IEEE-754 binary64 floating-point format.
	Float64

	// BFloat16 is the truncated ("brain") 16-bit floating-point format: same
	// exponent range as Float32, 7 bits of mantissa.
	BFloat16
)

// Short aliases, following the usual accelerator-literature names.
const (
	PRED = Bool
	S8   = Int8
	S16  = Int16
	S32  = Int32
	S64  = Int64
	U8   = Uint8
	U16  = Uint16
	U32  = Uint32
	U64  = Uint64
	F16  = Float16
	F32  = Float32
	F64  = Float64
	BF16 = BFloat16
)

// MapOfNames maps names and aliases to their DType.
// The init function extends it with the lower-case version of every name.
var MapOfNames = map[string]DType{
	"InvalidDType": InvalidDType,
	"Bool":         Bool,
	"PRED":         Bool,
	"Int8":         Int8,
	"S8":           Int8,
	"Int16":        Int16,
	"S16":          Int16,
	"Int32":        Int32,
	"S32":          Int32,
	"Int64":        Int64,
	"S64":          Int64,
	"Uint8":        Uint8,
	"U8":           Uint8,
	"Uint16":       Uint16,
	"U16":          Uint16,
	"Uint32":       Uint32,
	"U32":          Uint32,
	"Uint64":       Uint64,
	"U64":          Uint64,
	"Float16":      Float16,
	"F16":          Float16,
	"Float32":      Float32,
	"F32":          Float32,
	"Float64":      Float64,
	"F64":          Float64,
	"BFloat16":     BFloat16,
	"BF16":         BFloat16,
}

// panicf panics with the formatted description wrapped in a stack trace.
//
// It is only used for "bugs in the code" -- when parameters don't follow the
// documented contract of the functions.
func panicf(format string, args ...any) {
	panic(errors.Errorf(format, args...))
}

func init() {
	if strconv.IntSize != 32 && strconv.IntSize != 64 {
		panicf("cannot use int of %d bits with loom -- only platforms with int32 or int64 are supported", strconv.IntSize)
	}

	// Add a mapping for the lower-case version of the dtype names.
	keys := slices.Collect(maps.Keys(MapOfNames))
	for _, key := range keys {
		lowerKey := strings.ToLower(key)
		if lowerKey == key {
			continue
		}
		if _, found := MapOfNames[lowerKey]; found {
			continue
		}
		MapOfNames[lowerKey] = MapOfNames[key]
	}
}

// FromGenericsType returns the DType corresponding to the generic type parameter.
func FromGenericsType[T Supported]() DType {
	var t T
	switch (any(t)).(type) {
	case bool:
		return Bool
	case int:
		switch strconv.IntSize {
		case 32:
			return Int32
		case 64:
			return Int64
		}
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float16.Float16:
		return Float16
	case bfloat16.BFloat16:
		return BFloat16
	case float32:
		return Float32
	case float64:
		return Float64
	}
	return InvalidDType
}

// FromGoType returns the DType for the given reflect.Type, or InvalidDType if
// there is no correspondence.
func FromGoType(t reflect.Type) DType {
	if t == float16Type {
		return Float16
	} else if t == bfloat16Type {
		return BFloat16
	}
	switch t.Kind() {
	case reflect.Bool:
		return Bool
	case reflect.Int:
		switch strconv.IntSize {
		case 32:
			return Int32
		case 64:
			return Int64
		}
	case reflect.Int8:
		return Int8
	case reflect.Int16:
		return Int16
	case reflect.Int32:
		return Int32
	case reflect.Int64:
		return Int64
	case reflect.Uint8:
		return Uint8
	case reflect.Uint16:
		return Uint16
	case reflect.Uint32:
		return Uint32
	case reflect.Uint64:
		return Uint64
	case reflect.Float32:
		return Float32
	case reflect.Float64:
		return Float64
	default:
		return InvalidDType
	}
	return InvalidDType
}

// FromAny introspects the dynamic type of value and returns the corresponding
// DType. Non-scalar or unsupported values return InvalidDType.
func FromAny(value any) DType {
	if value == nil {
		return InvalidDType
	}
	return FromGoType(reflect.TypeOf(value))
}

// Pre-generated reflect.Type values for convenience.
var (
	float16Type  = reflect.TypeOf(float16.Float16(0))
	bfloat16Type = reflect.TypeOf(bfloat16.BFloat16(0))
)

// GoType returns the Go reflect.Type corresponding to the DType.
// It panics for invalid values.
func (dtype DType) GoType() reflect.Type {
	switch dtype {
	case Bool:
		return reflect.TypeOf(true)
	case Int8:
		return reflect.TypeOf(int8(0))
	case Int16:
		return reflect.TypeOf(int16(0))
	case Int32:
		return reflect.TypeOf(int32(0))
	case Int64:
		return reflect.TypeOf(int64(0))
	case Uint8:
		return reflect.TypeOf(uint8(0))
	case Uint16:
		return reflect.TypeOf(uint16(0))
	case Uint32:
		return reflect.TypeOf(uint32(0))
	case Uint64:
		return reflect.TypeOf(uint64(0))
	case Float16:
		return float16Type
	case BFloat16:
		return bfloat16Type
	case Float32:
		return reflect.TypeOf(float32(0))
	case Float64:
		return reflect.TypeOf(float64(0))
	default:
		panicf("unknown dtype %s (%d) in DType.GoType", dtype, int32(dtype))
		panic(nil)
	}
}

// GoStr returns the name of the Go type corresponding to the DType.
func (dtype DType) GoStr() string {
	return dtype.GoType().Name()
}

// Size returns the number of bytes of one element of the given DType.
func (dtype DType) Size() int {
	return int(dtype.GoType().Size())
}

// Bits returns the number of bits of one element of the given DType.
func (dtype DType) Bits() int {
	return dtype.Size() * 8
}

// Memory returns the number of bytes of one element, as an uintptr.
func (dtype DType) Memory() uintptr {
	return uintptr(dtype.Size())
}

// LowestValue for dtype, converted to the corresponding Go type.
// For floats it returns negative infinity.
func (dtype DType) LowestValue() any {
	switch dtype {
	case Bool:
		return false
	case Int8:
		return int8(math.MinInt8)
	case Int16:
		return int16(math.MinInt16)
	case Int32:
		return int32(math.MinInt32)
	case Int64:
		return int64(math.MinInt64)
	case Uint8:
		return uint8(0)
	case Uint16:
		return uint16(0)
	case Uint32:
		return uint32(0)
	case Uint64:
		return uint64(0)
	case Float16:
		return float16.Inf(-1)
	case BFloat16:
		return bfloat16.Inf(-1)
	case Float32:
		return float32(math.Inf(-1))
	case Float64:
		return math.Inf(-1)
	default:
		panicf("unknown dtype %s (%d) in DType.LowestValue", dtype, int32(dtype))
		panic(nil)
	}
}

// HighestValue for dtype, converted to the corresponding Go type.
// For floats it returns positive infinity.
func (dtype DType) HighestValue() any {
	switch dtype {
	case Bool:
		return true
	case Int8:
		return int8(math.MaxInt8)
	case Int16:
		return int16(math.MaxInt16)
	case Int32:
		return int32(math.MaxInt32)
	case Int64:
		return int64(math.MaxInt64)
	case Uint8:
		return uint8(math.MaxUint8)
	case Uint16:
		return uint16(math.MaxUint16)
	case Uint32:
		return uint32(math.MaxUint32)
	case Uint64:
		return uint64(math.MaxUint64)
	case Float16:
		return float16.Inf(1)
	case BFloat16:
		return bfloat16.Inf(1)
	case Float32:
		return float32(math.Inf(1))
	case Float64:
		return math.Inf(1)
	default:
		panicf("unknown dtype %s (%d) in DType.HighestValue", dtype, int32(dtype))
		panic(nil)
	}
}

// SmallestNonZeroValue for dtype, converted to the corresponding Go type.
// Only interesting for float types; integers return 1.
func (dtype DType) SmallestNonZeroValue() any {
	switch dtype {
	case Bool:
		return true
	case Int8:
		return int8(1)
	case Int16:
		return int16(1)
	case Int32:
		return int32(1)
	case Int64:
		return int64(1)
	case Uint8:
		return uint8(1)
	case Uint16:
		return uint16(1)
	case Uint32:
		return uint32(1)
	case Uint64:
		return uint64(1)
	case Float16:
		return float16.Float16(0x0001)
	case BFloat16:
		return bfloat16.SmallestNonzero
	case Float32:
		return float32(math.SmallestNonzeroFloat32)
	case Float64:
		return math.SmallestNonzeroFloat64
	default:
		panicf("unknown dtype %s (%d) in DType.SmallestNonZeroValue", dtype, int32(dtype))
		panic(nil)
	}
}

// IsFloat returns whether dtype is one of the supported floating-point types.
func (dtype DType) IsFloat() bool {
	return dtype == Float16 || dtype == BFloat16 || dtype == Float32 || dtype == Float64
}

// IsFloat16 returns whether dtype is one of the 16-bit floating-point types,
// Float16 or BFloat16.
func (dtype DType) IsFloat16() bool {
	return dtype == Float16 || dtype == BFloat16
}

// IsInt returns whether dtype is one of the supported integer types, signed or
// unsigned.
func (dtype DType) IsInt() bool {
	return dtype == Int8 || dtype == Int16 || dtype == Int32 || dtype == Int64 ||
		dtype == Uint8 || dtype == Uint16 || dtype == Uint32 || dtype == Uint64
}

// IsUnsigned returns whether dtype is one of the unsigned integer types.
func (dtype DType) IsUnsigned() bool {
	return dtype == Uint8 || dtype == Uint16 || dtype == Uint32 || dtype == Uint64
}

// IsSupported returns whether dtype is a valid type to compute with.
func (dtype DType) IsSupported() bool {
	return dtype == Bool || dtype.IsInt() || dtype.IsFloat()
}

// Supported lists the Go types loom knows how to convert.
// Used as a constraint for generics.
//
// Notice Go's `int` type is not portable: it translates to Int32 or Int64
// depending on the platform.
type Supported interface {
	bool | float16.Float16 | bfloat16.BFloat16 |
		float32 | float64 | int | int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64
}

// Number represents the native Go numeric types corresponding to supported
// DTypes. Used as a constraint for generics.
//
// It doesn't include float16.Float16 or bfloat16.BFloat16 because they are
// not native number types.
type Number interface {
	float32 | float64 | int | int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64
}

// GoFloat represents a continuous native Go numeric type.
type GoFloat interface {
	float32 | float64
}

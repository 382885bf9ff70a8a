// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package dtypes

import "github.com/pkg/errors"

// Mixed-dtype operations resolve their result type by walking up a total
// promotion order:
//
//	Bool < Int8 < Uint8 < Int16 < Uint16 < Int32 < Uint32 < Int64 < Uint64
//	     < BFloat16 < Float16 < Float32 < Float64
//
// Integers are ordered by width, with unsigned winning the equal-width tie.
// Every float sits above every integer; floats are ordered by width, with
// Float16 winning the 16-bit tie over BFloat16. Promotion never narrows.
var promotionRank = map[DType]int{
	Bool:     0,
	Int8:     1,
	Uint8:    2,
	Int16:    3,
	Uint16:   4,
	Int32:    5,
	Uint32:   6,
	Int64:    7,
	Uint64:   8,
	BFloat16: 9,
	Float16:  10,
	Float32:  11,
	Float64:  12,
}

// PromotionRank returns the dtype's position in the promotion order, higher
// meaning wider. It returns -1 for dtypes outside the order (InvalidDType).
func PromotionRank(dtype DType) int {
	rank, ok := promotionRank[dtype]
	if !ok {
		return -1
	}
	return rank
}

// Promote returns the join (least upper bound) of a and b in the promotion
// order: the result dtype of a binary operation mixing the two.
func Promote(a, b DType) (DType, error) {
	rankA, ok := promotionRank[a]
	if !ok {
		return InvalidDType, errors.Errorf("dtype %s cannot be promoted", a)
	}
	rankB, ok := promotionRank[b]
	if !ok {
		return InvalidDType, errors.Errorf("dtype %s cannot be promoted", b)
	}
	if rankA >= rankB {
		return a, nil
	}
	return b, nil
}

// MustPromote is like Promote but panics on invalid dtypes.
func MustPromote(a, b DType) DType {
	dtype, err := Promote(a, b)
	if err != nil {
		panic(err)
	}
	return dtype
}

// IsPromotableTo returns whether dtype can be promoted to target under the
// promotion order. Every dtype is promotable to itself.
func (dtype DType) IsPromotableTo(target DType) bool {
	rank, ok := promotionRank[dtype]
	if !ok {
		return false
	}
	targetRank, ok := promotionRank[target]
	if !ok {
		return false
	}
	return rank <= targetRank
}

// ShortName returns the compact lower-case name used by shape and program
// dumps: "f32", "u64", "bool", etc.
func (dtype DType) ShortName() string {
	switch dtype {
	case Bool:
		return "bool"
	case Int8:
		return "i8"
	case Int16:
		return "i16"
	case Int32:
		return "i32"
	case Int64:
		return "i64"
	case Uint8:
		return "u8"
	case Uint16:
		return "u16"
	case Uint32:
		return "u32"
	case Uint64:
		return "u64"
	case Float16:
		return "f16"
	case BFloat16:
		return "bf16"
	case Float32:
		return "f32"
	case Float64:
		return "f64"
	default:
		return "invalid"
	}
}

// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

// Package bfloat16 is a minimal implementation of the bfloat16 ("brain
// floating point") type: the upper 16 bits of an IEEE-754 binary32 value.
// Conversions are truncating.
package bfloat16

import (
	"math"
	"strconv"
)

// BFloat16 holds the raw 16-bit representation: 1 sign bit, 8 exponent bits
// and 7 mantissa bits -- the same range as float32 with less precision.
type BFloat16 uint16

// SmallestNonzero is the smallest denormal bfloat16 value (about 9.18e-41).
const SmallestNonzero = BFloat16(0x0001)

// Float32 expands the value back to float32. The conversion is exact.
func (f BFloat16) Float32() float32 {
	return math.Float32frombits(uint32(f) << 16)
}

// Bits returns the raw 16-bit representation.
func (f BFloat16) Bits() uint16 {
	return uint16(f)
}

// String implements fmt.Stringer, printing the expanded float value.
func (f BFloat16) String() string {
	return strconv.FormatFloat(float64(f.Float32()), 'f', -1, 32)
}

// FromFloat32 converts a float32 to BFloat16, truncating the mantissa.
func FromFloat32(x float32) BFloat16 {
	return BFloat16(math.Float32bits(x) >> 16)
}

// FromFloat64 converts a float64 to BFloat16 through float32.
func FromFloat64(x float64) BFloat16 {
	return FromFloat32(float32(x))
}

// FromBits builds a BFloat16 from its raw 16-bit representation.
func FromBits(bits uint16) BFloat16 {
	return BFloat16(bits)
}

// Inf returns the BFloat16 infinity with the given sign; sign >= 0 yields
// positive infinity.
func Inf(sign int) BFloat16 {
	return FromFloat32(float32(math.Inf(sign)))
}

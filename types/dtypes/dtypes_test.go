// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package dtypes

import (
	"math"
	"testing"

	"github.com/loom-ml/loom/types/dtypes/bfloat16"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestDType_HighestLowestSmallestValues(t *testing.T) {
	if !math.IsInf(Float64.HighestValue().(float64), 1) {
		t.Fatal("expected Float64.HighestValue() to be +Inf")
	}
	if !math.IsInf(float64(Float32.LowestValue().(float32)), -1) {
		t.Fatal("expected Float32.LowestValue() to be -Inf")
	}
	if Uint64.LowestValue().(uint64) != 0 {
		t.Fatal("expected Uint64.LowestValue() to be 0")
	}
	if Int8.HighestValue().(int8) != math.MaxInt8 {
		t.Fatal("expected Int8.HighestValue() to be MaxInt8")
	}
	_, ok := Float16.SmallestNonZeroValue().(float16.Float16)
	if !ok {
		t.Fatal("expected Float16.SmallestNonZeroValue() to be float16.Float16")
	}
	_, ok = BFloat16.SmallestNonZeroValue().(bfloat16.BFloat16)
	if !ok {
		t.Fatal("expected BFloat16.SmallestNonZeroValue() to be bfloat16.BFloat16")
	}
}

func TestMapOfNames(t *testing.T) {
	if MapOfNames["Float32"] != Float32 {
		t.Fatalf("expected MapOfNames[\"Float32\"] to be Float32, got %v", MapOfNames["Float32"])
	}
	if MapOfNames["float32"] != Float32 {
		t.Fatalf("expected MapOfNames[\"float32\"] to be Float32, got %v", MapOfNames["float32"])
	}
	if MapOfNames["F32"] != Float32 {
		t.Fatalf("expected MapOfNames[\"F32\"] to be Float32, got %v", MapOfNames["F32"])
	}
	if MapOfNames["u64"] != Uint64 {
		t.Fatalf("expected MapOfNames[\"u64\"] to be Uint64, got %v", MapOfNames["u64"])
	}
}

func TestFromAny(t *testing.T) {
	if FromAny(int64(7)) != Int64 {
		t.Fatalf("expected FromAny(int64(7)) to be Int64, got %v", FromAny(int64(7)))
	}
	if FromAny(float32(13)) != Float32 {
		t.Fatalf("expected FromAny(float32(13)) to be Float32, got %v", FromAny(float32(13)))
	}
	if FromAny(true) != Bool {
		t.Fatalf("expected FromAny(true) to be Bool, got %v", FromAny(true))
	}
	if FromAny(bfloat16.FromFloat32(1.0)) != BFloat16 {
		t.Fatalf("expected FromAny(bfloat16.FromFloat32(1.0)) to be BFloat16, got %v", FromAny(bfloat16.FromFloat32(1.0)))
	}
	if FromAny(float16.Fromfloat32(3.0)) != Float16 {
		t.Fatalf("expected FromAny(float16.Fromfloat32(3.0)) to be Float16, got %v", FromAny(float16.Fromfloat32(3.0)))
	}
}

func TestSize(t *testing.T) {
	if Int64.Size() != 8 {
		t.Fatalf("expected Int64.Size() to be 8, got %d", Int64.Size())
	}
	if Float32.Size() != 4 {
		t.Fatalf("expected Float32.Size() to be 4, got %d", Float32.Size())
	}
	if BFloat16.Size() != 2 {
		t.Fatalf("expected BFloat16.Size() to be 2, got %d", BFloat16.Size())
	}
	if Bool.Size() != 1 {
		t.Fatalf("expected Bool.Size() to be 1, got %d", Bool.Size())
	}
}

func TestPromote(t *testing.T) {
	cases := []struct {
		a, b, want DType
	}{
		{Bool, Bool, Bool},
		{Bool, Int8, Int8},
		{Int8, Uint8, Uint8},
		{Int16, Uint8, Int16},
		{Int32, Int64, Int64},
		{Int64, Uint64, Uint64},
		{Uint64, Float32, Float32},
		{Int32, Float32, Float32},
		{Float32, Float64, Float64},
		{BFloat16, Float16, Float16},
		{Float16, Int64, Float16},
		{Uint8, Uint16, Uint16},
	}
	for _, c := range cases {
		got, err := Promote(c.a, c.b)
		require.NoError(t, err)
		require.Equalf(t, c.want, got, "Promote(%s, %s)", c.a, c.b)
		// Promotion is symmetric.
		got, err = Promote(c.b, c.a)
		require.NoError(t, err)
		require.Equalf(t, c.want, got, "Promote(%s, %s)", c.b, c.a)
	}

	_, err := Promote(InvalidDType, Float32)
	require.Error(t, err)
}

func TestIsPromotableTo(t *testing.T) {
	if !Float32.IsPromotableTo(Float64) {
		t.Fatal("expected Float32 to be promotable to Float64")
	}
	if Float64.IsPromotableTo(Float32) {
		t.Fatal("expected Float64 to not be promotable to Float32")
	}
	if !Int8.IsPromotableTo(Float32) {
		t.Fatal("expected Int8 to be promotable to Float32")
	}
	if Uint8.IsPromotableTo(Int8) {
		t.Fatal("expected Uint8 to not be promotable to Int8")
	}
}

func TestEnumer(t *testing.T) {
	require.Equal(t, "Float32", Float32.String())
	require.Equal(t, "Uint64", Uint64.String())
	dtype, err := DTypeString("BFloat16")
	require.NoError(t, err)
	require.Equal(t, BFloat16, dtype)
	require.True(t, Int16.IsADType())
	require.False(t, DType(100).IsADType())
}

func TestShortName(t *testing.T) {
	require.Equal(t, "f32", Float32.ShortName())
	require.Equal(t, "u64", Uint64.ShortName())
	require.Equal(t, "bool", Bool.ShortName())
	require.Equal(t, "bf16", BFloat16.ShortName())
}

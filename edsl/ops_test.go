// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package edsl_test

import (
	"fmt"
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/stretchr/testify/require"

	"github.com/loom-ml/loom/edsl"
	"github.com/loom-ml/loom/types/dtypes"
)

func TestBinaryPromotion(t *testing.T) {
	tests := []struct {
		a, b, want dtypes.DType
	}{
		{dtypes.Int8, dtypes.Uint8, dtypes.Uint8},
		{dtypes.Int32, dtypes.Uint32, dtypes.Uint32},
		{dtypes.Uint32, dtypes.Int64, dtypes.Int64},
		{dtypes.Int64, dtypes.Float32, dtypes.Float32},
		{dtypes.Uint64, dtypes.BFloat16, dtypes.BFloat16},
		{dtypes.BFloat16, dtypes.Float16, dtypes.Float16},
		{dtypes.Float32, dtypes.Float64, dtypes.Float64},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%s+%s", tc.a, tc.b), func(t *testing.T) {
			g := edsl.New()
			a := g.Placeholder(tc.a, []int{2}, "a")
			b := g.Placeholder(tc.b, []int{2}, "b")
			require.Equal(t, tc.want, edsl.Add(a, b).DType())
			require.Equal(t, tc.want, edsl.Add(b, a).DType())
		})
	}
}

func TestLiteralAdoption(t *testing.T) {
	g := edsl.New()

	// Integer literals adopt any numeric operand dtype.
	x8 := g.Placeholder(dtypes.Int8, []int{3}, "x8")
	require.Equal(t, dtypes.Int8, edsl.Add(x8, g.Int(5)).DType())
	u16 := g.Placeholder(dtypes.Uint16, []int{3}, "u16")
	require.Equal(t, dtypes.Uint16, edsl.Mul(u16, g.Int(2)).DType())
	f16 := g.Placeholder(dtypes.Float16, []int{3}, "f16")
	require.Equal(t, dtypes.Float16, edsl.Add(f16, g.Int(1)).DType())

	// Float literals adopt float operands and force at least Float32
	// against integers.
	f64 := g.Placeholder(dtypes.Float64, []int{3}, "f64")
	require.Equal(t, dtypes.Float64, edsl.Mul(f64, g.Float(0.5)).DType())
	require.Equal(t, dtypes.Float32, edsl.Mul(x8, g.Float(0.5)).DType())

	// Two literals promote normally instead of adopting.
	require.Equal(t, dtypes.Float32, edsl.Add(g.Int(1), g.Float(2)).DType())

	// A negative literal refuses unsigned adoption.
	u8 := g.Placeholder(dtypes.Uint8, []int{3}, "u8")
	err := exceptions.TryCatch[error](func() { edsl.Add(u8, g.Int(-1)) })
	var typeErr *edsl.TypeError
	require.ErrorAs(t, err, &typeErr)
	require.ErrorContains(t, err, "unsigned")
}

func TestBroadcasting(t *testing.T) {
	g := edsl.New()
	a := g.Placeholder(dtypes.Float32, []int{2, 3}, "a")
	v := g.Placeholder(dtypes.Float32, []int{3}, "v")
	c := g.Placeholder(dtypes.Float32, []int{2, 1}, "c")

	require.Equal(t, []int{2, 3}, edsl.Add(a, v).Shape().Dimensions)
	require.Equal(t, []int{2, 3}, edsl.Add(a, c).Shape().Dimensions)
	require.Equal(t, []int{2, 3}, edsl.Add(c, v).Shape().Dimensions)
	require.Equal(t, []int{2, 3}, edsl.Add(a, g.Float(1)).Shape().Dimensions)

	bad := g.Placeholder(dtypes.Float32, []int{4}, "bad")
	err := exceptions.TryCatch[error](func() { edsl.Add(a, bad) })
	var bcErr *edsl.BroadcastError
	require.ErrorAs(t, err, &bcErr)
}

func TestComparisonsYieldBool(t *testing.T) {
	g := edsl.New()
	a := g.Placeholder(dtypes.Float32, []int{2}, "a")
	b := g.Placeholder(dtypes.Int32, []int{2}, "b")
	for _, o := range []*edsl.Tensor{
		edsl.Equal(a, b), edsl.NotEqual(a, b), edsl.LessThan(a, b),
		edsl.LessOrEqual(a, b), edsl.GreaterThan(a, b), edsl.GreaterOrEqual(a, b),
	} {
		require.Equal(t, dtypes.Bool, o.DType())
	}
}

func TestBitwiseRequiresIntegers(t *testing.T) {
	g := edsl.New()
	f := g.Placeholder(dtypes.Float32, []int{2}, "f")
	i := g.Placeholder(dtypes.Int32, []int{2}, "i")

	var typeErr *edsl.TypeError
	for _, fn := range []func(a, b *edsl.Tensor) *edsl.Tensor{
		edsl.BitwiseAnd, edsl.BitwiseOr, edsl.BitwiseXor, edsl.ShiftLeft, edsl.ShiftRight,
	} {
		err := exceptions.TryCatch[error](func() { fn(f, i) })
		require.ErrorAs(t, err, &typeErr)
	}
	require.Equal(t, dtypes.Int32, edsl.BitwiseXor(i, i).DType())
	require.Equal(t, dtypes.Int32, edsl.ShiftLeft(i, g.Int(2)).DType())
}

func TestUnaryOps(t *testing.T) {
	g := edsl.New()
	i := g.Placeholder(dtypes.Int32, []int{2}, "i")
	f := g.Placeholder(dtypes.Float64, []int{2}, "f")
	b := g.Placeholder(dtypes.Bool, []int{2}, "b")

	require.Equal(t, dtypes.Int32, edsl.Neg(i).DType())
	require.Equal(t, dtypes.Int32, edsl.Abs(i).DType())
	// Transcendentals promote integers to Float32 and keep wider floats.
	require.Equal(t, dtypes.Float32, edsl.Exp(i).DType())
	require.Equal(t, dtypes.Float64, edsl.Sqrt(f).DType())
	require.Equal(t, dtypes.Float64, edsl.Log(f).DType())
	require.Equal(t, dtypes.Bool, edsl.Not(b).DType())

	var typeErr *edsl.TypeError
	err := exceptions.TryCatch[error](func() { edsl.Not(i) })
	require.ErrorAs(t, err, &typeErr)
	err = exceptions.TryCatch[error](func() { edsl.Neg(b) })
	require.ErrorAs(t, err, &typeErr)
	err = exceptions.TryCatch[error](func() { edsl.Exp(b) })
	require.ErrorAs(t, err, &typeErr)
}

func TestSelect(t *testing.T) {
	g := edsl.New()
	pred := g.Placeholder(dtypes.Bool, []int{2, 3}, "pred")
	x := g.Placeholder(dtypes.Float32, []int{2, 3}, "x")
	y := g.Placeholder(dtypes.Float64, []int{3}, "y")

	o := edsl.Select(pred, x, y)
	require.Equal(t, dtypes.Float64, o.DType())
	require.Equal(t, []int{2, 3}, o.Shape().Dimensions)

	// The predicate broadcasts too, and literal branches adopt.
	p1 := g.Placeholder(dtypes.Bool, []int{3}, "p1")
	require.Equal(t, []int{2, 3}, edsl.Select(p1, x, y).Shape().Dimensions)
	require.Equal(t, dtypes.Float32, edsl.Select(pred, x, g.Float(0)).DType())

	var typeErr *edsl.TypeError
	err := exceptions.TryCatch[error](func() { edsl.Select(x, x, y) })
	require.ErrorAs(t, err, &typeErr)
	require.ErrorContains(t, err, "predicate")

	var bcErr *edsl.BroadcastError
	bad := g.Placeholder(dtypes.Float32, []int{4}, "bad")
	err = exceptions.TryCatch[error](func() { edsl.Select(pred, x, bad) })
	require.ErrorAs(t, err, &bcErr)
}

func TestStructuralOps(t *testing.T) {
	g := edsl.New()
	x := g.Placeholder(dtypes.Float32, []int{2, 6}, "x")

	c := edsl.Cast(x, dtypes.Int8)
	require.Equal(t, dtypes.Int8, c.DType())
	require.Equal(t, []int{2, 6}, c.Shape().Dimensions)

	r := edsl.Reshape(x, 3, 4)
	require.Equal(t, dtypes.Float32, r.DType())
	require.Equal(t, []int{3, 4}, r.Shape().Dimensions)

	so := edsl.ShapeOf(x)
	require.Equal(t, dtypes.Int32, so.DType())
	require.Equal(t, []int{2}, so.Shape().Dimensions)

	iv := edsl.IndexValues(x, 1)
	require.Equal(t, dtypes.Int32, iv.DType())
	require.Equal(t, []int{2, 6}, iv.Shape().Dimensions)

	var shapeErr *edsl.ShapeError
	err := exceptions.TryCatch[error](func() { edsl.Reshape(x, 5, 2) })
	require.ErrorAs(t, err, &shapeErr)

	err = exceptions.TryCatch[error](func() { edsl.ShapeOf(g.Float(1)) })
	require.ErrorAs(t, err, &shapeErr)
	require.ErrorContains(t, err, "scalar")

	var rankErr *edsl.RankError
	err = exceptions.TryCatch[error](func() { edsl.IndexValues(x, 2) })
	require.ErrorAs(t, err, &rankErr)
	err = exceptions.TryCatch[error](func() { edsl.IndexValues(x, -1) })
	require.ErrorAs(t, err, &rankErr)
}

func TestPrngConstruction(t *testing.T) {
	g := edsl.New()
	state := g.Placeholder(dtypes.Uint32, []int{3}, "state")

	vals, next := edsl.Prng(state, 2, 4)
	require.Equal(t, dtypes.Float32, vals.DType())
	require.Equal(t, []int{2, 4}, vals.Shape().Dimensions)
	require.Equal(t, dtypes.Uint32, next.DType())
	require.Equal(t, []int{3}, next.Shape().Dimensions)
	require.Same(t, vals.Node(), next.Node())
	require.Equal(t, 0, vals.OutputIndex())
	require.Equal(t, 1, next.OutputIndex())

	bad := g.Placeholder(dtypes.Int32, []int{3}, "bad")
	err := exceptions.TryCatch[error](func() { edsl.Prng(bad, 2) })
	var typeErr *edsl.TypeError
	require.ErrorAs(t, err, &typeErr)

	err = exceptions.TryCatch[error](func() { edsl.Prng(state, 0) })
	var shapeErr *edsl.ShapeError
	require.ErrorAs(t, err, &shapeErr)
}

func TestTraceMsgPassThrough(t *testing.T) {
	g := edsl.New()
	x := g.Placeholder(dtypes.Float32, []int{2}, "x")
	tr := edsl.TraceMsg(x, "after input")
	require.Equal(t, x.Shape(), tr.Shape())
	require.Equal(t, edsl.OpTrace, tr.Node().Op())
	require.Equal(t, "after input", tr.Node().Message())
}

func TestPlaceholderValidation(t *testing.T) {
	g := edsl.New()
	var shapeErr *edsl.ShapeError
	err := exceptions.TryCatch[error](func() { g.Placeholder(dtypes.Float32, []int{2, 0}, "z") })
	require.ErrorAs(t, err, &shapeErr)

	var typeErr *edsl.TypeError
	err = exceptions.TryCatch[error](func() { g.Placeholder(dtypes.InvalidDType, []int{2}, "i") })
	require.ErrorAs(t, err, &typeErr)
}

func TestGraphMixing(t *testing.T) {
	g1, g2 := edsl.New(), edsl.New()
	a := g1.Placeholder(dtypes.Float32, []int{2}, "a")
	b := g2.Placeholder(dtypes.Float32, []int{2}, "b")
	err := exceptions.TryCatch[error](func() { edsl.Add(a, b) })
	require.ErrorContains(t, err, "different graphs")
}

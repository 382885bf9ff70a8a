// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package edsl_test

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/stretchr/testify/require"

	"github.com/loom-ml/loom/edsl"
	"github.com/loom-ml/loom/types/dtypes"
)

func TestContractionMatmul(t *testing.T) {
	g := edsl.New()
	A := g.Placeholder(dtypes.Float32, []int{3, 3}, "A")
	B := g.Placeholder(dtypes.Float32, []int{3, 3}, "B")
	I, J, K := g.NewDim(), g.NewDim(), g.NewDim()
	i, j, k := g.NewIdx(), g.NewIdx(), g.NewIdx()
	A.BindDims(I, K)
	B.BindDims(K, J)
	O := g.Contraction(I, J).At(i, j).Sum(A.At(i, k).Mul(B.At(k, j)))

	require.Equal(t, []int{3, 3}, O.Shape().Dimensions)
	p := edsl.Build("matmul", O)
	want := `program @matmul(
  %B: f32[3, 3],
  %A: f32[3, 3]
) -> (f32[3, 3]) {
  %0 = contract<add, mul>[%A{d0, d2}, %B{d2, d1}] -> {d0, d1} bounds={d0: [0, 3), d1: [0, 3), d2: [0, 3)} : f32[3, 3]
  return %0
}
`
	require.Equal(t, want, p.String())
}

// A strided window with a constraint-bounded offset: the offset variable has
// no axis of its own and gets its domain purely from the constraint rows.
func TestContractionMaxPool(t *testing.T) {
	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{10}, "X")
	N := g.NewDim()
	X.BindDims(N)
	i, j := g.NewIdx(), g.NewIdx()
	O := g.Contraction(N.DivN(2)).At(i).Constrain(j.LtN(2)).Max(X.At(i.MulN(2).Add(j)))

	p := edsl.Build("maxpool", O)
	want := `program @maxpool(
  %X: f32[10]
) -> (f32[5]) {
  %0 = contract<max, none>[%X{2*d0 + d1}] -> {d0} bounds={d0: [0, 5), d1: [0, 2)} where {d1 >= 0, -d1 + 1 >= 0} : f32[5]
  return %0
}
`
	require.Equal(t, want, p.String())
}

func TestContractionCumsum(t *testing.T) {
	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{5}, "X")
	N := g.NewDim()
	X.BindDims(N)
	i, j := g.NewIdx(), g.NewIdx()
	O := g.Contraction(N).At(i).Constrain(i.Sub(j).NonNegative()).Sum(X.At(j))

	p := edsl.Build("cumsum", O)
	want := `program @cumsum(
  %X: f32[5]
) -> (f32[5]) {
  %0 = contract<add, none>[%X{d1}] -> {d0} bounds={d0: [0, 5), d1: [0, 5)} where {d0 - d1 >= 0} : f32[5]
  return %0
}
`
	require.Equal(t, want, p.String())
}

// An assign whose sink is not one-to-one needs no_reduce; without it the
// coverage check rejects the program at assembly.
func TestContractionNoReduce(t *testing.T) {
	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{10, 10, 10}, "X")
	N0, N1, N2 := g.NewDim(), g.NewDim(), g.NewDim()
	X.BindDims(N0, N1, N2)
	n0, n1, n2, k := g.NewIdx(), g.NewIdx(), g.NewIdx(), g.NewIdx()

	build := func(c *edsl.Contraction) *edsl.Tensor {
		return c.At(n0, n1.MulN(3).Add(k), n2).
			Constrain(k.LtN(3)).
			Assign(X.At(n0, n1, n2))
	}

	p := edsl.Build("upsample", build(g.Contraction(N0, N1.MulN(3), N2).NoReduce()))
	want := `program @upsample(
  %X: f32[10, 10, 10]
) -> (f32[10, 30, 10]) {
  %0 = contract<assign, none>[%X{d0, d1, d3}] -> {d0, 3*d1 + d2, d3} bounds={d0: [0, 10), d1: [0, 10), d2: [0, 3), d3: [0, 10)} where {d2 >= 0, -d2 + 2 >= 0} no_reduce : f32[10, 30, 10]
  return %0
}
`
	require.Equal(t, want, p.String())

	err := exceptions.TryCatch[error](func() {
		edsl.Build("upsample", build(g.Contraction(N0, N1.MulN(3), N2)))
	})
	var asmErr *edsl.AssemblyError
	require.ErrorAs(t, err, &asmErr)
	require.ErrorContains(t, err, "write every output cell")
}

func TestContractionUseDefault(t *testing.T) {
	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{2, 5}, "X")
	P := g.Placeholder(dtypes.Float32, []int{2, 5, 7}, "P")
	B, N := g.NewDim(), g.NewDim()
	X.BindDims(B, N)
	b, i := g.NewIdx(), g.NewIdx()
	O := g.Contraction(B, N, g.DimLit(7)).
		At(b, i, edsl.Lit(3)).
		UseDefault(P).
		Assign(X.At(b, i))

	p := edsl.Build("scatter_col", O)
	want := `program @scatter_col(
  %P: f32[2, 5, 7],
  %X: f32[2, 5]
) -> (f32[2, 5, 7]) {
  %0 = contract<assign, none>[%X{d0, d1}] -> {d0, d1, 3} bounds={d0: [0, 2), d1: [0, 5)} default=%P : f32[2, 5, 7]
  return %0
}
`
	require.Equal(t, want, p.String())
}

// A floor-divided source coordinate shifts the sink domain: cell 0 reads
// X[floor(-1/2)] which is out of range, so d0 starts at 1.
func TestContractionDefract(t *testing.T) {
	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{3}, "X")
	N := g.NewDim()
	X.BindDims(N)
	i := g.NewIdx()
	O := g.Contraction(N.MulN(2)).At(i).Sum(X.At(i.SubN(1).DivN(2)))

	p := edsl.Build("defract", O)
	want := `program @defract(
  %X: f32[3]
) -> (f32[6]) {
  %0 = contract<add, none>[%X{(d0 - 1)/2}] -> {d0} bounds={d0: [1, 6)} : f32[6]
  return %0
}
`
	require.Equal(t, want, p.String())
}

// Index-of-maximum: a scalar max, index values along the axis, and a cond
// contraction that keeps the index where the value matches the max.
func TestContractionCondArgmax(t *testing.T) {
	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{5}, "X")
	N := g.NewDim()
	X.BindDims(N)
	i := g.NewIdx()

	IX := edsl.IndexValues(X, 0)
	maxVal := g.Contraction().Max(X.At(i))
	argmax := g.Contraction().Max(edsl.Cond(X.At(i), maxVal.At(), IX.At(i)))

	p := edsl.Build("argmax", argmax)
	want := `program @argmax(
  %X: f32[5]
) -> (i32) {
  %0 = index_values(%X, axis=0) : i32[5]
  %1 = contract<max, none>[%X{d0}] -> {} bounds={d0: [0, 5)} : f32
  %2 = contract<max, cond>[%X{d0}, %1{}, %0{d0}] -> {} bounds={d0: [0, 5)} : i32
  return %2
}
`
	require.Equal(t, want, p.String())
}

func TestContractionDimOffsetCoordinate(t *testing.T) {
	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{4}, "X")
	N := g.NewDim()
	X.BindDims(N)
	i := g.NewIdx()
	O := g.Contraction(N).At(i).Assign(X.At(i.MulN(-1).AddDim(N).SubN(1)))

	p := edsl.Build("reverse", O)
	want := `program @reverse(
  %X: f32[4]
) -> (f32[4]) {
  %0 = contract<assign, none>[%X{-d0 + 3}] -> {d0} bounds={d0: [0, 4)} : f32[4]
  return %0
}
`
	require.Equal(t, want, p.String())
}

func TestContractionConstraintOnlyVariable(t *testing.T) {
	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{5}, "X")
	N := g.NewDim()
	X.BindDims(N)
	i, z := g.NewIdx(), g.NewIdx()

	err := exceptions.TryCatch[error](func() {
		g.Contraction(N).At(i).Constrain(z.LtN(3)).Sum(X.At(i))
	})
	var unboundErr *edsl.UnboundIndexError
	require.ErrorAs(t, err, &unboundErr)
	require.ErrorContains(t, err, "only in a constraint")
}

func TestContractionUndeterminableDomain(t *testing.T) {
	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{5}, "X")
	N := g.NewDim()
	X.BindDims(N)
	i, j, k := g.NewIdx(), g.NewIdx(), g.NewIdx()

	// j and k only ever appear as j-k: neither gets an interval of its own.
	err := exceptions.TryCatch[error](func() {
		g.Contraction(N).At(i).Sum(X.At(i.Add(j).Sub(k)))
	})
	var unboundErr *edsl.UnboundIndexError
	require.ErrorAs(t, err, &unboundErr)
	require.ErrorContains(t, err, "no determinable domain")
}

func TestContractionArityAndSizeChecks(t *testing.T) {
	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{5}, "X")
	N := g.NewDim()
	X.BindDims(N)
	i, j := g.NewIdx(), g.NewIdx()

	err := exceptions.TryCatch[error](func() {
		g.Contraction(N).At(i, j).Sum(X.At(i))
	})
	var rankErr *edsl.RankError
	require.ErrorAs(t, err, &rankErr)

	var shapeErr *edsl.ShapeError
	err = exceptions.TryCatch[error](func() {
		g.Contraction(N.SubN(5)).At(i).Sum(X.At(i))
	})
	require.ErrorAs(t, err, &shapeErr)
	require.ErrorContains(t, err, "must be at least 1")

	err = exceptions.TryCatch[error](func() {
		g.Contraction(g.NewDim()).At(i).Sum(X.At(i))
	})
	require.ErrorAs(t, err, &shapeErr)
}

func TestContractionDefaultValidation(t *testing.T) {
	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{2, 3}, "X")
	B, N := g.NewDim(), g.NewDim()
	X.BindDims(B, N)
	b, i := g.NewIdx(), g.NewIdx()

	wrongShape := g.Placeholder(dtypes.Float32, []int{2, 4}, "D1")
	err := exceptions.TryCatch[error](func() {
		g.Contraction(B, N).At(b, i).UseDefault(wrongShape).Assign(X.At(b, i))
	})
	var shapeErr *edsl.ShapeError
	require.ErrorAs(t, err, &shapeErr)

	wrongDType := g.Placeholder(dtypes.Int32, []int{2, 3}, "D2")
	err = exceptions.TryCatch[error](func() {
		g.Contraction(B, N).At(b, i).UseDefault(wrongDType).Assign(X.At(b, i))
	})
	var typeErr *edsl.TypeError
	require.ErrorAs(t, err, &typeErr)
}

func TestContractionSingleUse(t *testing.T) {
	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{5}, "X")
	N := g.NewDim()
	X.BindDims(N)
	i := g.NewIdx()

	c := g.Contraction(N).At(i)
	_ = c.Sum(X.At(i))
	err := exceptions.TryCatch[error](func() { c.Max(X.At(i)) })
	require.ErrorContains(t, err, "already finalized")
}

func TestContractionMulPromotes(t *testing.T) {
	g := edsl.New()
	A := g.Placeholder(dtypes.Int32, []int{4}, "A")
	B := g.Placeholder(dtypes.Float64, []int{4}, "B")
	N := g.NewDim()
	A.BindDims(N)
	i := g.NewIdx()

	O := g.Contraction().Sum(A.At(i).Mul(B.At(i)))
	require.Equal(t, dtypes.Float64, O.DType())
	require.Equal(t, 0, O.Shape().Rank())
}

// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package interp_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loom-ml/loom/backends/interp"
	"github.com/loom-ml/loom/edsl"
	"github.com/loom-ml/loom/edsl/edsltest"
	"github.com/loom-ml/loom/types/dtypes"
)

func TestDot(t *testing.T) {
	edsltest.RunTestProgram(t, "dot", func(g *edsl.Graph) []*edsl.Tensor {
		A := g.Placeholder(dtypes.Float32, []int{3, 3}, "A")
		B := g.Placeholder(dtypes.Float32, []int{3, 3}, "B")
		I, J, K := g.NewDim(), g.NewDim(), g.NewDim()
		i, j, k := g.NewIdx(), g.NewIdx(), g.NewIdx()
		A.BindDims(I, K)
		B.BindDims(K, J)
		return []*edsl.Tensor{g.Contraction(I, J).At(i, j).Sum(A.At(i, k).Mul(B.At(k, j)))}
	},
		map[string]any{
			"A": []float32{1, 2, 3, 4, 5, 6, 7, 8, 9},
			"B": []float32{1, 2, 3, 4, 5, 6, 7, 8, 9},
		},
		[]any{[]float32{30, 36, 42, 66, 81, 96, 102, 126, 150}}, 0)
}

func TestScalarBroadcast(t *testing.T) {
	edsltest.RunTestProgram(t, "reciprocal", func(g *edsl.Graph) []*edsl.Tensor {
		X := g.Placeholder(dtypes.Float32, []int{6}, "X")
		return []*edsl.Tensor{edsl.Div(g.Float(1), X)}
	},
		map[string]any{"X": []float32{1, 2, 4, 5, 8, 10}},
		[]any{[]float32{1, 0.5, 0.25, 0.2, 0.125, 0.1}}, 0)
}

func TestUnsignedWraparound(t *testing.T) {
	edsltest.RunTestProgram(t, "u64_wrap", func(g *edsl.Graph) []*edsl.Tensor {
		X := g.Placeholder(dtypes.Uint64, []int{3}, "X")
		return []*edsl.Tensor{edsl.Sub(X, g.Int(1)), edsl.Neg(X)}
	},
		map[string]any{"X": []uint64{0, 1, 5}},
		[]any{
			[]uint64{math.MaxUint64, 0, 4},
			[]uint64{0, math.MaxUint64, math.MaxUint64 - 4},
		}, 0)
}

func TestChainedContractions(t *testing.T) {
	// (A·A)·A — the first contraction's output feeds the second one.
	edsltest.RunTestProgram(t, "matmul_chain", func(g *edsl.Graph) []*edsl.Tensor {
		A := g.Placeholder(dtypes.Float32, []int{3, 3}, "A")
		I, K := g.NewDim(), g.NewDim()
		A.BindDims(I, K)
		i, j, k := g.NewIdx(), g.NewIdx(), g.NewIdx()
		D := g.Contraction(I, K).At(i, j).Sum(A.At(i, k).Mul(A.At(k, j)))
		i2, j2, k2 := g.NewIdx(), g.NewIdx(), g.NewIdx()
		return []*edsl.Tensor{g.Contraction(I, K).At(i2, j2).Sum(D.At(i2, k2).Mul(A.At(k2, j2)))}
	},
		map[string]any{"A": []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		[]any{[]float32{468, 576, 684, 1062, 1305, 1548, 1656, 2034, 2412}}, 0)
}

func TestCumsum(t *testing.T) {
	edsltest.RunTestProgram(t, "cumsum", func(g *edsl.Graph) []*edsl.Tensor {
		X := g.Placeholder(dtypes.Float32, []int{5}, "X")
		N := g.NewDim()
		X.BindDims(N)
		i, j := g.NewIdx(), g.NewIdx()
		return []*edsl.Tensor{
			g.Contraction(N).At(i).Constrain(i.Sub(j).NonNegative()).Sum(X.At(j)),
		}
	},
		map[string]any{"X": []float32{1, 2, 3, 4, 5}},
		[]any{[]float32{1, 3, 6, 10, 15}}, 0)
}

// The floor-divided read pattern: output cell 0 is outside the inferred
// domain and keeps the add identity.
func TestDefract(t *testing.T) {
	edsltest.RunTestProgram(t, "defract", func(g *edsl.Graph) []*edsl.Tensor {
		X := g.Placeholder(dtypes.Float32, []int{3}, "X")
		N := g.NewDim()
		X.BindDims(N)
		i := g.NewIdx()
		return []*edsl.Tensor{g.Contraction(N.MulN(2)).At(i).Sum(X.At(i.SubN(1).DivN(2)))}
	},
		map[string]any{"X": []float32{1, 2, 3}},
		[]any{[]float32{0, 1, 1, 2, 2, 3}}, 0)
}

func TestUpsampleNoReduce(t *testing.T) {
	edsltest.RunTestProgram(t, "upsample", func(g *edsl.Graph) []*edsl.Tensor {
		X := g.Placeholder(dtypes.Float32, []int{2}, "X")
		N := g.NewDim()
		X.BindDims(N)
		i, k := g.NewIdx(), g.NewIdx()
		return []*edsl.Tensor{
			g.Contraction(N.MulN(3)).NoReduce().
				At(i.MulN(3).Add(k)).
				Constrain(k.LtN(3)).
				Assign(X.At(i)),
		}
	},
		map[string]any{"X": []float32{7, 9}},
		[]any{[]float32{7, 7, 7, 9, 9, 9}}, 0)
}

func TestUseDefault(t *testing.T) {
	edsltest.RunTestProgram(t, "scatter_col", func(g *edsl.Graph) []*edsl.Tensor {
		X := g.Placeholder(dtypes.Float32, []int{2, 2}, "X")
		P := g.Placeholder(dtypes.Float32, []int{2, 2, 3}, "P")
		B, N := g.NewDim(), g.NewDim()
		X.BindDims(B, N)
		b, i := g.NewIdx(), g.NewIdx()
		return []*edsl.Tensor{
			g.Contraction(B, N, g.DimLit(3)).
				At(b, i, edsl.Lit(1)).
				UseDefault(P).
				Assign(X.At(b, i)),
		}
	},
		map[string]any{
			"X": []float32{1, 2, 3, 4},
			"P": []float32{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1},
		},
		[]any{[]float32{-1, 1, -1, -1, 2, -1, -1, 3, -1, -1, 4, -1}}, 0)
}

func TestArgmax(t *testing.T) {
	edsltest.RunTestProgram(t, "argmax", func(g *edsl.Graph) []*edsl.Tensor {
		X := g.Placeholder(dtypes.Float32, []int{4}, "X")
		N := g.NewDim()
		X.BindDims(N)
		i := g.NewIdx()
		IX := edsl.IndexValues(X, 0)
		maxVal := g.Contraction().Max(X.At(i))
		return []*edsl.Tensor{
			g.Contraction().Max(edsl.Cond(X.At(i), maxVal.At(), IX.At(i))),
		}
	},
		map[string]any{"X": []float32{1, 3, 7, 2}},
		[]any{[]int32{2}}, 0)
}

func TestMaxPool(t *testing.T) {
	edsltest.RunTestProgram(t, "maxpool", func(g *edsl.Graph) []*edsl.Tensor {
		X := g.Placeholder(dtypes.Float32, []int{10}, "X")
		N := g.NewDim()
		X.BindDims(N)
		i, j := g.NewIdx(), g.NewIdx()
		return []*edsl.Tensor{
			g.Contraction(N.DivN(2)).At(i).Constrain(j.LtN(2)).Max(X.At(i.MulN(2).Add(j))),
		}
	},
		map[string]any{"X": []float32{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}},
		[]any{[]float32{3, 4, 9, 6, 5}}, 0)
}

func TestGlobalAggregates(t *testing.T) {
	edsltest.RunTestProgram(t, "global_aggs", func(g *edsl.Graph) []*edsl.Tensor {
		X := g.Placeholder(dtypes.Float32, []int{5}, "X")
		N := g.NewDim()
		X.BindDims(N)
		i, j, k := g.NewIdx(), g.NewIdx(), g.NewIdx()
		return []*edsl.Tensor{
			g.Contraction().Sum(X.At(i)),
			g.Contraction().Max(X.At(j)),
			g.Contraction().Min(X.At(k)),
		}
	},
		map[string]any{"X": []float32{4, -2, 7, 1, 5}},
		[]any{[]float32{15}, []float32{7}, []float32{-2}}, 0)
}

func TestCastChains(t *testing.T) {
	edsltest.RunTestProgram(t, "cast_trunc", func(g *edsl.Graph) []*edsl.Tensor {
		F := g.Placeholder(dtypes.Float32, []int{3}, "F")
		return []*edsl.Tensor{edsl.Cast(F, dtypes.Int32)}
	},
		map[string]any{"F": []float32{2.7, -2.7, 0.5}},
		[]any{[]int32{2, -2, 0}}, 0)

	edsltest.RunTestProgram(t, "cast_narrow", func(g *edsl.Graph) []*edsl.Tensor {
		I := g.Placeholder(dtypes.Int32, []int{2}, "I")
		return []*edsl.Tensor{edsl.Cast(I, dtypes.Uint8)}
	},
		map[string]any{"I": []int32{300, -1}},
		[]any{[]uint8{44, 255}}, 0)

	edsltest.RunTestProgram(t, "cast_bool", func(g *edsl.Graph) []*edsl.Tensor {
		F := g.Placeholder(dtypes.Float32, []int{3}, "F")
		B := g.Placeholder(dtypes.Bool, []int{2}, "B")
		return []*edsl.Tensor{edsl.Cast(F, dtypes.Bool), edsl.Cast(B, dtypes.Int32)}
	},
		map[string]any{
			"F": []float32{0, 1.5, -2},
			"B": []bool{true, false},
		},
		[]any{[]bool{false, true, true}, []int32{1, 0}}, 0)
}

func TestSelectAndComparisons(t *testing.T) {
	edsltest.RunTestProgram(t, "elementwise_min", func(g *edsl.Graph) []*edsl.Tensor {
		X := g.Placeholder(dtypes.Float32, []int{4}, "X")
		Y := g.Placeholder(dtypes.Float32, []int{4}, "Y")
		return []*edsl.Tensor{
			edsl.Select(edsl.LessThan(X, Y), X, Y),
			edsl.Equal(X, Y),
			edsl.GreaterThan(X, g.Float(2.5)),
		}
	},
		map[string]any{
			"X": []float32{1, 5, 3, 2},
			"Y": []float32{4, 2, 3, 6},
		},
		[]any{
			[]float32{1, 2, 3, 2},
			[]bool{false, false, true, false},
			[]bool{false, true, true, false},
		}, 0)
}

func TestBitwiseAndShifts(t *testing.T) {
	edsltest.RunTestProgram(t, "bitops", func(g *edsl.Graph) []*edsl.Tensor {
		A := g.Placeholder(dtypes.Int32, []int{2}, "A")
		B := g.Placeholder(dtypes.Int32, []int{2}, "B")
		return []*edsl.Tensor{
			edsl.BitwiseAnd(A, B),
			edsl.BitwiseOr(A, B),
			edsl.BitwiseXor(A, B),
			edsl.ShiftLeft(A, B),
			edsl.ShiftRight(A, B),
		}
	},
		map[string]any{
			"A": []int32{12, 7},
			"B": []int32{10, 1},
		},
		[]any{
			[]int32{8, 1},
			[]int32{14, 7},
			[]int32{6, 6},
			[]int32{12288, 14},
			[]int32{0, 3},
		}, 0)
}

func TestFloatUnary(t *testing.T) {
	edsltest.RunTestProgram(t, "float_unary", func(g *edsl.Graph) []*edsl.Tensor {
		X := g.Placeholder(dtypes.Float32, []int{3}, "X")
		E := g.Placeholder(dtypes.Float32, []int{2}, "E")
		I := g.Placeholder(dtypes.Int32, []int{2}, "I")
		return []*edsl.Tensor{
			edsl.Sqrt(X),
			edsl.Exp(E),
			edsl.Log(edsl.Exp(E)),
			edsl.Exp(I), // integer operand promotes to f32
			edsl.Abs(edsl.Neg(X)),
		}
	},
		map[string]any{
			"X": []float32{1, 4, 9},
			"E": []float32{0, 1},
			"I": []int32{0, 2},
		},
		[]any{
			[]float32{1, 2, 3},
			[]float32{1, math.E},
			[]float32{0, 1},
			[]float32{1, math.E * math.E},
			[]float32{1, 4, 9},
		}, 1e-5)
}

func TestStructuralValues(t *testing.T) {
	edsltest.RunTestProgram(t, "structural", func(g *edsl.Graph) []*edsl.Tensor {
		X := g.Placeholder(dtypes.Float32, []int{2, 3}, "X")
		return []*edsl.Tensor{
			edsl.Reshape(X, 3, 2),
			edsl.ShapeOf(X),
			edsl.IndexValues(X, 0),
			edsl.IndexValues(X, 1),
		}
	},
		map[string]any{"X": []float32{1, 2, 3, 4, 5, 6}},
		[]any{
			[]float32{1, 2, 3, 4, 5, 6},
			[]int32{2, 3},
			[]int32{0, 0, 0, 1, 1, 1},
			[]int32{0, 1, 2, 0, 1, 2},
		}, 0)
}

func TestTracePassThrough(t *testing.T) {
	edsltest.RunTestProgram(t, "trace", func(g *edsl.Graph) []*edsl.Tensor {
		X := g.Placeholder(dtypes.Float32, []int{3}, "X")
		return []*edsl.Tensor{edsl.TraceMsg(edsl.Add(X, X), "doubled")}
	},
		map[string]any{"X": []float32{1, 2, 3}},
		[]any{[]float32{2, 4, 6}}, 0)
}

func TestPrecisionOverrideExecution(t *testing.T) {
	backend := edsltest.BuildTestBackend()
	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{3}, "X")
	sum := edsl.Add(edsl.Add(X, g.Int(1)), g.Float(2))
	p := edsl.BuildWith("hp", []*edsl.Tensor{sum}, edsl.FloatX(dtypes.Float64))

	exec, err := backend.Compile(p)
	require.NoError(t, err)
	defer exec.Finalize()

	in, err := exec.BindInput("X")
	require.NoError(t, err)
	require.NoError(t, in.CopyFrom([]float32{0.5, 1, 1.5}))
	require.NoError(t, exec.Run())

	out, err := exec.BindOutput(0)
	require.NoError(t, err)
	require.Equal(t, dtypes.Float64, out.Shape().DType)
	got := make([]float64, 3)
	require.NoError(t, out.CopyTo(got))
	require.InDeltaSlice(t, []float64{3.5, 4, 4.5}, got, 1e-6)
}

func TestPrng(t *testing.T) {
	backend := edsltest.BuildTestBackend()
	g := edsl.New()
	state := g.Placeholder(dtypes.Uint32, []int{3}, "state")
	v1, s1 := edsl.Prng(state, 8)
	v2, s2 := edsl.Prng(s1, 8)
	p := edsl.Build("prng", v1, v2, s2)

	exec, err := backend.Compile(p)
	require.NoError(t, err)
	defer exec.Finalize()

	in, err := exec.BindInput("state")
	require.NoError(t, err)
	require.NoError(t, in.CopyFrom([]uint32{1, 2, 3}))
	require.NoError(t, exec.Run())

	first := make([]float32, 8)
	second := make([]float32, 8)
	newState := make([]uint32, 3)
	for i, dst := range []any{first, second, newState} {
		buf, err := exec.BindOutput(i)
		require.NoError(t, err)
		require.NoError(t, buf.CopyTo(dst))
	}

	for i, v := range first {
		require.GreaterOrEqual(t, v, float32(0), "value #%d", i)
		require.Less(t, v, float32(1), "value #%d", i)
	}
	// Threading the state changes the draw; the state itself moves on.
	require.NotEqual(t, first, second)
	require.NotEqual(t, []uint32{1, 2, 3}, newState)

	// Same state, same draw: a rerun reproduces every value bit for bit.
	require.NoError(t, exec.Run())
	again := make([]float32, 8)
	b0, err := exec.BindOutput(0)
	require.NoError(t, err)
	require.NoError(t, b0.CopyTo(again))
	require.Equal(t, first, again)
}

func TestInputBufferStability(t *testing.T) {
	backend := edsltest.BuildTestBackend()
	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{2}, "X")
	p := edsl.Build("double", edsl.Add(X, X))

	exec, err := backend.Compile(p)
	require.NoError(t, err)
	defer exec.Finalize()

	in, err := exec.BindInput("X")
	require.NoError(t, err)
	out, err := exec.BindOutput(0)
	require.NoError(t, err)

	require.NoError(t, in.CopyFrom([]float32{1, 2}))
	require.NoError(t, exec.Run())
	got := make([]float32, 2)
	require.NoError(t, out.CopyTo(got))
	require.Equal(t, []float32{2, 4}, got)

	// The bound views are stable: refill and rerun without rebinding.
	require.NoError(t, in.CopyFrom([]float32{10, 20}))
	require.NoError(t, exec.Run())
	require.NoError(t, out.CopyTo(got))
	require.Equal(t, []float32{20, 40}, got)
}

func TestBindingErrors(t *testing.T) {
	backend := edsltest.BuildTestBackend()
	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{2}, "X")
	p := edsl.Build("bind_errs", edsl.Add(X, X))

	exec, err := backend.Compile(p)
	require.NoError(t, err)

	_, err = exec.BindInput("nope")
	require.ErrorContains(t, err, "no input named")

	_, err = exec.BindOutput(1)
	require.ErrorContains(t, err, "requested output #1")

	in, err := exec.BindInput("X")
	require.NoError(t, err)
	require.Error(t, in.CopyFrom([]float32{1, 2, 3}), "length mismatch")
	require.Error(t, in.CopyFrom([]float64{1, 2}), "dtype mismatch")
	require.Error(t, in.CopyFrom("not a slice"))

	exec.Finalize()
	require.Error(t, exec.Run())
	_, err = exec.BindInput("X")
	require.Error(t, err)
}

func TestRuntimeFaultsSurfaceAsErrors(t *testing.T) {
	backend := edsltest.BuildTestBackend()
	g := edsl.New()
	A := g.Placeholder(dtypes.Int32, []int{2}, "A")
	B := g.Placeholder(dtypes.Int32, []int{2}, "B")
	p := edsl.Build("intdiv", edsl.Div(A, B))

	exec, err := backend.Compile(p)
	require.NoError(t, err)
	defer exec.Finalize()

	a, err := exec.BindInput("A")
	require.NoError(t, err)
	require.NoError(t, a.CopyFrom([]int32{1, 2}))
	b, err := exec.BindInput("B")
	require.NoError(t, err)
	require.NoError(t, b.CopyFrom([]int32{1, 0}))

	err = exec.Run()
	require.ErrorContains(t, err, "running program")
}

func TestBackendLifecycle(t *testing.T) {
	b, err := interp.New("")
	require.NoError(t, err)
	require.Equal(t, interp.BackendName, b.Name())
	require.NotEmpty(t, b.Description())

	// The interpreter takes no configuration options.
	_, err = interp.New("threads=2")
	require.Error(t, err)

	_, err = b.Compile(nil)
	require.Error(t, err)

	g := edsl.New()
	X := g.Placeholder(dtypes.Float32, []int{2}, "X")
	p := edsl.Build("after_finalize", edsl.Add(X, X))
	b.Finalize()
	_, err = b.Compile(p)
	require.Error(t, err)
}

// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package interp

import (
	"math"

	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"

	"github.com/loom-ml/loom/edsl"
	"github.com/loom-ml/loom/types/dtypes"
	"github.com/loom-ml/loom/types/shapes"
)

// kernelDType maps a value dtype to the dtype its kernels compute in: the
// 16-bit floats have no native arithmetic and go through float32, and bool
// values compute as 0/1 bytes so ordering comparisons work.
func kernelDType(dt dtypes.DType) dtypes.DType {
	switch dt {
	case dtypes.Float16, dtypes.BFloat16:
		return dtypes.Float32
	case dtypes.Bool:
		return dtypes.Uint8
	}
	return dt
}

// broadcastOffsets precomputes, for every flat position of the result, the
// flat position it reads in an operand of the given dimensions: trailing axes
// align and size-1 axes contribute stride zero. Kernels then run as plain
// flat loops.
func broadcastOffsets(operandDims []int, result shapes.Shape) []int {
	offs := make([]int, result.Size())
	if shapes.IsBroadcastNoOp(operandDims, result.Dimensions) {
		for i := range offs {
			offs[i] = i
		}
		return offs
	}
	strides := make([]int, result.Rank())
	stride := 1
	pad := result.Rank() - len(operandDims)
	for axis := len(operandDims) - 1; axis >= 0; axis-- {
		if operandDims[axis] != 1 {
			strides[pad+axis] = stride
		}
		stride *= operandDims[axis]
	}
	i := 0
	for idx := range result.Iter() {
		off := 0
		for a, s := range strides {
			off += s * idx[a]
		}
		offs[i] = off
		i++
	}
	return offs
}

func (e *Executable) evalBinary(n *edsl.Node, get func(*edsl.Tensor) *buffer) *buffer {
	op := n.Op()
	outShape := e.prog.NodeShape(n, 0)
	lhs, rhs := get(n.Inputs()[0]), get(n.Inputs()[1])

	computeDT := outShape.DType
	if op.IsComparison() {
		computeDT = e.comparisonDType(n)
	}
	kdt := kernelDType(computeDT)
	a := cast(lhs, kdt)
	b := cast(rhs, kdt)
	ao := broadcastOffsets(a.shape.Dimensions, outShape)
	bo := broadcastOffsets(b.shape.Dimensions, outShape)

	if op.IsComparison() {
		out := newBuffer(outShape)
		dispatchCompare(op, kdt, a, b, out.data.([]bool), ao, bo)
		return out
	}
	work := newBuffer(shapes.Shape{DType: kdt, Dimensions: outShape.Dimensions})
	dispatchBinary(op, kdt, a, b, work, ao, bo)
	if kdt == outShape.DType {
		return work
	}
	out := newBuffer(outShape)
	convert(work, out)
	return out
}

func dispatchBinary(op edsl.OpType, dt dtypes.DType, a, b, out *buffer, ao, bo []int) {
	switch dt {
	case dtypes.Int8:
		intBinary(op, a.data.([]int8), b.data.([]int8), out.data.([]int8), ao, bo)
	case dtypes.Int16:
		intBinary(op, a.data.([]int16), b.data.([]int16), out.data.([]int16), ao, bo)
	case dtypes.Int32:
		intBinary(op, a.data.([]int32), b.data.([]int32), out.data.([]int32), ao, bo)
	case dtypes.Int64:
		intBinary(op, a.data.([]int64), b.data.([]int64), out.data.([]int64), ao, bo)
	case dtypes.Uint8:
		intBinary(op, a.data.([]uint8), b.data.([]uint8), out.data.([]uint8), ao, bo)
	case dtypes.Uint16:
		intBinary(op, a.data.([]uint16), b.data.([]uint16), out.data.([]uint16), ao, bo)
	case dtypes.Uint32:
		intBinary(op, a.data.([]uint32), b.data.([]uint32), out.data.([]uint32), ao, bo)
	case dtypes.Uint64:
		intBinary(op, a.data.([]uint64), b.data.([]uint64), out.data.([]uint64), ao, bo)
	case dtypes.Float32:
		floatBinary(op, a.data.([]float32), b.data.([]float32), out.data.([]float32), ao, bo)
	case dtypes.Float64:
		floatBinary(op, a.data.([]float64), b.data.([]float64), out.data.([]float64), ao, bo)
	default:
		exceptions.Panicf("interp: %s has no kernel for dtype %s", op, dt)
	}
}

func intBinary[T constraints.Integer](op edsl.OpType, a, b, out []T, ao, bo []int) {
	switch op {
	case edsl.OpAdd:
		for i := range out {
			out[i] = a[ao[i]] + b[bo[i]]
		}
	case edsl.OpSub:
		for i := range out {
			out[i] = a[ao[i]] - b[bo[i]]
		}
	case edsl.OpMul:
		for i := range out {
			out[i] = a[ao[i]] * b[bo[i]]
		}
	case edsl.OpDiv:
		for i := range out {
			out[i] = a[ao[i]] / b[bo[i]]
		}
	case edsl.OpBitAnd:
		for i := range out {
			out[i] = a[ao[i]] & b[bo[i]]
		}
	case edsl.OpBitOr:
		for i := range out {
			out[i] = a[ao[i]] | b[bo[i]]
		}
	case edsl.OpBitXor:
		for i := range out {
			out[i] = a[ao[i]] ^ b[bo[i]]
		}
	case edsl.OpShl:
		for i := range out {
			out[i] = a[ao[i]] << b[bo[i]]
		}
	case edsl.OpShr:
		for i := range out {
			out[i] = a[ao[i]] >> b[bo[i]]
		}
	default:
		exceptions.Panicf("interp: %s is not an integer binary op", op)
	}
}

func floatBinary[T dtypes.GoFloat](op edsl.OpType, a, b, out []T, ao, bo []int) {
	switch op {
	case edsl.OpAdd:
		for i := range out {
			out[i] = a[ao[i]] + b[bo[i]]
		}
	case edsl.OpSub:
		for i := range out {
			out[i] = a[ao[i]] - b[bo[i]]
		}
	case edsl.OpMul:
		for i := range out {
			out[i] = a[ao[i]] * b[bo[i]]
		}
	case edsl.OpDiv:
		for i := range out {
			out[i] = a[ao[i]] / b[bo[i]]
		}
	default:
		exceptions.Panicf("interp: %s is not a float binary op", op)
	}
}

func dispatchCompare(op edsl.OpType, dt dtypes.DType, a, b *buffer, out []bool, ao, bo []int) {
	switch dt {
	case dtypes.Int8:
		compare(op, a.data.([]int8), b.data.([]int8), out, ao, bo)
	case dtypes.Int16:
		compare(op, a.data.([]int16), b.data.([]int16), out, ao, bo)
	case dtypes.Int32:
		compare(op, a.data.([]int32), b.data.([]int32), out, ao, bo)
	case dtypes.Int64:
		compare(op, a.data.([]int64), b.data.([]int64), out, ao, bo)
	case dtypes.Uint8:
		compare(op, a.data.([]uint8), b.data.([]uint8), out, ao, bo)
	case dtypes.Uint16:
		compare(op, a.data.([]uint16), b.data.([]uint16), out, ao, bo)
	case dtypes.Uint32:
		compare(op, a.data.([]uint32), b.data.([]uint32), out, ao, bo)
	case dtypes.Uint64:
		compare(op, a.data.([]uint64), b.data.([]uint64), out, ao, bo)
	case dtypes.Float32:
		compare(op, a.data.([]float32), b.data.([]float32), out, ao, bo)
	case dtypes.Float64:
		compare(op, a.data.([]float64), b.data.([]float64), out, ao, bo)
	default:
		exceptions.Panicf("interp: comparison %s has no kernel for dtype %s", op, dt)
	}
}

func compare[T dtypes.Number](op edsl.OpType, a, b []T, out []bool, ao, bo []int) {
	switch op {
	case edsl.OpEq:
		for i := range out {
			out[i] = a[ao[i]] == b[bo[i]]
		}
	case edsl.OpNe:
		for i := range out {
			out[i] = a[ao[i]] != b[bo[i]]
		}
	case edsl.OpLt:
		for i := range out {
			out[i] = a[ao[i]] < b[bo[i]]
		}
	case edsl.OpLe:
		for i := range out {
			out[i] = a[ao[i]] <= b[bo[i]]
		}
	case edsl.OpGt:
		for i := range out {
			out[i] = a[ao[i]] > b[bo[i]]
		}
	case edsl.OpGe:
		for i := range out {
			out[i] = a[ao[i]] >= b[bo[i]]
		}
	default:
		exceptions.Panicf("interp: %s is not a comparison", op)
	}
}

func (e *Executable) evalUnary(n *edsl.Node, get func(*edsl.Tensor) *buffer) *buffer {
	op := n.Op()
	outShape := e.prog.NodeShape(n, 0)
	src := get(n.Inputs()[0])

	if op == edsl.OpNot {
		out := newBuffer(outShape)
		s := src.data.([]bool)
		d := out.data.([]bool)
		for i, v := range s {
			d[i] = !v
		}
		return out
	}

	kdt := kernelDType(outShape.DType)
	a := cast(src, kdt)
	work := newBuffer(shapes.Shape{DType: kdt, Dimensions: outShape.Dimensions})
	dispatchUnary(op, kdt, a, work)
	if kdt == outShape.DType {
		return work
	}
	out := newBuffer(outShape)
	convert(work, out)
	return out
}

func dispatchUnary(op edsl.OpType, dt dtypes.DType, a, out *buffer) {
	switch dt {
	case dtypes.Int8:
		intUnary(op, a.data.([]int8), out.data.([]int8))
	case dtypes.Int16:
		intUnary(op, a.data.([]int16), out.data.([]int16))
	case dtypes.Int32:
		intUnary(op, a.data.([]int32), out.data.([]int32))
	case dtypes.Int64:
		intUnary(op, a.data.([]int64), out.data.([]int64))
	case dtypes.Uint8:
		intUnary(op, a.data.([]uint8), out.data.([]uint8))
	case dtypes.Uint16:
		intUnary(op, a.data.([]uint16), out.data.([]uint16))
	case dtypes.Uint32:
		intUnary(op, a.data.([]uint32), out.data.([]uint32))
	case dtypes.Uint64:
		intUnary(op, a.data.([]uint64), out.data.([]uint64))
	case dtypes.Float32:
		floatUnary(op, a.data.([]float32), out.data.([]float32))
	case dtypes.Float64:
		floatUnary(op, a.data.([]float64), out.data.([]float64))
	default:
		exceptions.Panicf("interp: %s has no kernel for dtype %s", op, dt)
	}
}

func intUnary[T constraints.Integer](op edsl.OpType, a, out []T) {
	switch op {
	case edsl.OpNeg:
		for i, v := range a {
			out[i] = -v
		}
	case edsl.OpAbs:
		for i, v := range a {
			if v < 0 {
				v = -v
			}
			out[i] = v
		}
	default:
		exceptions.Panicf("interp: %s is not an integer unary op", op)
	}
}

func floatUnary[T dtypes.GoFloat](op edsl.OpType, a, out []T) {
	switch op {
	case edsl.OpNeg:
		for i, v := range a {
			out[i] = -v
		}
	case edsl.OpAbs:
		for i, v := range a {
			out[i] = T(math.Abs(float64(v)))
		}
	case edsl.OpExp:
		for i, v := range a {
			out[i] = T(math.Exp(float64(v)))
		}
	case edsl.OpLog:
		for i, v := range a {
			out[i] = T(math.Log(float64(v)))
		}
	case edsl.OpSqrt:
		for i, v := range a {
			out[i] = T(math.Sqrt(float64(v)))
		}
	default:
		exceptions.Panicf("interp: %s is not a float unary op", op)
	}
}

func (e *Executable) evalSelect(n *edsl.Node, get func(*edsl.Tensor) *buffer) *buffer {
	outShape := e.prog.NodeShape(n, 0)
	pred := get(n.Inputs()[0])
	onTrue, onFalse := get(n.Inputs()[1]), get(n.Inputs()[2])

	kdt := kernelDType(outShape.DType)
	t := cast(onTrue, kdt)
	f := cast(onFalse, kdt)
	po := broadcastOffsets(pred.shape.Dimensions, outShape)
	to := broadcastOffsets(t.shape.Dimensions, outShape)
	fo := broadcastOffsets(f.shape.Dimensions, outShape)

	work := newBuffer(shapes.Shape{DType: kdt, Dimensions: outShape.Dimensions})
	dispatchSelect(kdt, pred.data.([]bool), t, f, work, po, to, fo)
	if kdt == outShape.DType {
		return work
	}
	out := newBuffer(outShape)
	convert(work, out)
	return out
}

func dispatchSelect(dt dtypes.DType, pred []bool, t, f, out *buffer, po, to, fo []int) {
	switch dt {
	case dtypes.Int8:
		selectKernel(pred, t.data.([]int8), f.data.([]int8), out.data.([]int8), po, to, fo)
	case dtypes.Int16:
		selectKernel(pred, t.data.([]int16), f.data.([]int16), out.data.([]int16), po, to, fo)
	case dtypes.Int32:
		selectKernel(pred, t.data.([]int32), f.data.([]int32), out.data.([]int32), po, to, fo)
	case dtypes.Int64:
		selectKernel(pred, t.data.([]int64), f.data.([]int64), out.data.([]int64), po, to, fo)
	case dtypes.Uint8:
		selectKernel(pred, t.data.([]uint8), f.data.([]uint8), out.data.([]uint8), po, to, fo)
	case dtypes.Uint16:
		selectKernel(pred, t.data.([]uint16), f.data.([]uint16), out.data.([]uint16), po, to, fo)
	case dtypes.Uint32:
		selectKernel(pred, t.data.([]uint32), f.data.([]uint32), out.data.([]uint32), po, to, fo)
	case dtypes.Uint64:
		selectKernel(pred, t.data.([]uint64), f.data.([]uint64), out.data.([]uint64), po, to, fo)
	case dtypes.Float32:
		selectKernel(pred, t.data.([]float32), f.data.([]float32), out.data.([]float32), po, to, fo)
	case dtypes.Float64:
		selectKernel(pred, t.data.([]float64), f.data.([]float64), out.data.([]float64), po, to, fo)
	default:
		exceptions.Panicf("interp: select has no kernel for dtype %s", dt)
	}
}

func selectKernel[T dtypes.Number](pred []bool, t, f, out []T, po, to, fo []int) {
	for i := range out {
		if pred[po[i]] {
			out[i] = t[to[i]]
		} else {
			out[i] = f[fo[i]]
		}
	}
}

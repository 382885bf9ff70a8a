// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package edsl

import (
	"github.com/gomlx/exceptions"
	"github.com/loom-ml/loom/types/dtypes"
	"github.com/loom-ml/loom/types/shapes"
)

// Elementwise and structural operations. All of them resolve the result
// shape and dtype eagerly and panic with a typed error on any mismatch.

func opGraph(ts ...*Tensor) *Graph {
	g := ts[0].node.g
	for _, t := range ts[1:] {
		if t.node.g != g {
			exceptions.Panicf("edsl: operands belong to different graphs")
		}
	}
	return g
}

// join takes the promotion-lattice least upper bound of two dtypes.
func join(a, b dtypes.DType) dtypes.DType {
	dt, err := dtypes.Promote(a, b)
	if err != nil {
		typeErrorf("%v", err)
	}
	return dt
}

// literalAgainst resolves the dtype of a scalar literal combined with a
// non-literal operand: integer literals adopt any numeric dtype (rejecting a
// negative value against an unsigned dtype), float literals adopt floating
// dtypes and otherwise force at least Float32.
func literalAgainst(lit *Node, other dtypes.DType) dtypes.DType {
	switch lit.lit {
	case litInt:
		if other.IsInt() || other.IsFloat() {
			if lit.i64 < 0 && other.IsUnsigned() {
				typeErrorf("negative literal %d cannot take unsigned dtype %s", lit.i64, other)
			}
			return other
		}
		return join(dtypes.Int32, other)
	case litFloat:
		if other.IsFloat() {
			return other
		}
		return join(dtypes.Float32, other)
	case litBool:
		return join(dtypes.Bool, other)
	}
	exceptions.Panicf("edsl: node %s is not a literal", lit)
	return dtypes.InvalidDType
}

// operandDType resolves the promoted dtype of a binary operand pair,
// applying the literal adoption rule when exactly one side is a bare scalar
// literal.
func operandDType(a, b *Tensor) dtypes.DType {
	switch {
	case a.isLiteral() && !b.isLiteral():
		return literalAgainst(a.node, b.DType())
	case b.isLiteral() && !a.isLiteral():
		return literalAgainst(b.node, a.DType())
	default:
		return join(a.DType(), b.DType())
	}
}

func broadcastDims(op OpType, a, b shapes.Shape) []int {
	dims, err := shapes.BroadcastDimensions(a.Dimensions, b.Dimensions)
	if err != nil {
		broadcastErrorf("%s: %v", op, err)
	}
	return dims
}

func binaryOp(op OpType, a, b *Tensor) *Tensor {
	g := opGraph(a, b)
	if bitwiseOps.Has(op) || shiftOps.Has(op) {
		if !a.DType().IsInt() || !b.DType().IsInt() {
			typeErrorf("%s requires integer operands, got %s and %s", op, a.DType(), b.DType())
		}
	}
	dt := operandDType(a, b)
	dims := broadcastDims(op, a.Shape(), b.Shape())
	if op.IsComparison() {
		dt = dtypes.Bool
	}
	return g.newTensor(op, []*Tensor{a, b}, shapes.Make(dt, dims...))
}

// Add returns a + b with broadcasting.
func Add(a, b *Tensor) *Tensor { return binaryOp(OpAdd, a, b) }

// Sub returns a - b with broadcasting.
func Sub(a, b *Tensor) *Tensor { return binaryOp(OpSub, a, b) }

// Mul returns a * b with broadcasting.
func Mul(a, b *Tensor) *Tensor { return binaryOp(OpMul, a, b) }

// Div returns a / b with broadcasting. Integer division truncates.
func Div(a, b *Tensor) *Tensor { return binaryOp(OpDiv, a, b) }

// BitwiseAnd returns a & b; integer operands only.
func BitwiseAnd(a, b *Tensor) *Tensor { return binaryOp(OpBitAnd, a, b) }

// BitwiseOr returns a | b; integer operands only.
func BitwiseOr(a, b *Tensor) *Tensor { return binaryOp(OpBitOr, a, b) }

// BitwiseXor returns a ^ b; integer operands only.
func BitwiseXor(a, b *Tensor) *Tensor { return binaryOp(OpBitXor, a, b) }

// ShiftLeft returns a << b; integer operands only.
func ShiftLeft(a, b *Tensor) *Tensor { return binaryOp(OpShl, a, b) }

// ShiftRight returns a >> b; integer operands only.
func ShiftRight(a, b *Tensor) *Tensor { return binaryOp(OpShr, a, b) }

// Equal returns the boolean tensor a == b.
func Equal(a, b *Tensor) *Tensor { return binaryOp(OpEq, a, b) }

// NotEqual returns the boolean tensor a != b.
func NotEqual(a, b *Tensor) *Tensor { return binaryOp(OpNe, a, b) }

// LessThan returns the boolean tensor a < b.
func LessThan(a, b *Tensor) *Tensor { return binaryOp(OpLt, a, b) }

// LessOrEqual returns the boolean tensor a <= b.
func LessOrEqual(a, b *Tensor) *Tensor { return binaryOp(OpLe, a, b) }

// GreaterThan returns the boolean tensor a > b.
func GreaterThan(a, b *Tensor) *Tensor { return binaryOp(OpGt, a, b) }

// GreaterOrEqual returns the boolean tensor a >= b.
func GreaterOrEqual(a, b *Tensor) *Tensor { return binaryOp(OpGe, a, b) }

func unaryOp(op OpType, x *Tensor) *Tensor {
	g := opGraph(x)
	dt := x.DType()
	switch {
	case op == OpNot:
		if dt != dtypes.Bool {
			typeErrorf("not requires a boolean operand, got %s", dt)
		}
	case floatUnaryOps.Has(op):
		if !dt.IsFloat() && !dt.IsInt() {
			typeErrorf("%s requires a numeric operand, got %s", op, dt)
		}
		if !dt.IsFloat() {
			dt = join(dtypes.Float32, dt)
		}
	default: // OpNeg, OpAbs
		if dt == dtypes.Bool {
			typeErrorf("%s requires a numeric operand, got %s", op, dt)
		}
	}
	return g.newTensor(op, []*Tensor{x}, shapes.Make(dt, x.Shape().Dimensions...))
}

// Neg returns -x. Negating an unsigned tensor wraps modularly.
func Neg(x *Tensor) *Tensor { return unaryOp(OpNeg, x) }

// Exp returns e^x, promoting integer operands to Float32.
func Exp(x *Tensor) *Tensor { return unaryOp(OpExp, x) }

// Log returns the natural logarithm of x, promoting integer operands to
// Float32.
func Log(x *Tensor) *Tensor { return unaryOp(OpLog, x) }

// Sqrt returns the square root of x, promoting integer operands to Float32.
func Sqrt(x *Tensor) *Tensor { return unaryOp(OpSqrt, x) }

// Abs returns |x|, keeping x's dtype.
func Abs(x *Tensor) *Tensor { return unaryOp(OpAbs, x) }

// Not returns the logical negation of a boolean tensor.
func Not(x *Tensor) *Tensor { return unaryOp(OpNot, x) }

// Select returns elementwise cond ? onTrue : onFalse. The predicate must be
// boolean; all three operands broadcast together.
func Select(cond, onTrue, onFalse *Tensor) *Tensor {
	g := opGraph(cond, onTrue, onFalse)
	if cond.DType() != dtypes.Bool {
		typeErrorf("select predicate must be boolean, got %s", cond.DType())
	}
	dt := operandDType(onTrue, onFalse)
	dims, err := shapes.BroadcastDimensions(cond.Shape().Dimensions, onTrue.Shape().Dimensions)
	if err == nil {
		dims, err = shapes.BroadcastDimensions(dims, onFalse.Shape().Dimensions)
	}
	if err != nil {
		broadcastErrorf("select: %v", err)
	}
	return g.newTensor(OpSelect, []*Tensor{cond, onTrue, onFalse}, shapes.Make(dt, dims...))
}

// Cast converts x to the given dtype. Cast is the only way to narrow
// precision or change signedness; implicit promotion never narrows.
func Cast(x *Tensor, dtype dtypes.DType) *Tensor {
	g := opGraph(x)
	if dtype == dtypes.InvalidDType || !dtype.IsSupported() {
		typeErrorf("cast to invalid dtype %s", dtype)
	}
	return g.newTensor(OpCast, []*Tensor{x}, shapes.Make(dtype, x.Shape().Dimensions...))
}

// Reshape returns x with the given concrete dimensions; the total element
// count must be preserved.
func Reshape(x *Tensor, dimensions ...int) *Tensor {
	g := opGraph(x)
	for i, d := range dimensions {
		if d < 1 {
			shapeErrorf("reshape dimension %d is %d, must be at least 1", i, d)
		}
	}
	shape := shapes.Make(x.DType(), dimensions...)
	if shape.Size() != x.Shape().Size() {
		shapeErrorf("reshape from %s (%d elements) to %s (%d elements)",
			x.Shape(), x.Shape().Size(), shape, shape.Size())
	}
	return g.newTensor(OpReshape, []*Tensor{x}, shape)
}

// ShapeOf returns x's concrete dimensions as a 1-D Int32 tensor of length
// rank.
func ShapeOf(x *Tensor) *Tensor {
	g := opGraph(x)
	rank := x.Shape().Rank()
	if rank == 0 {
		shapeErrorf("shape_of of a scalar would be empty")
	}
	return g.newTensor(OpShapeOf, []*Tensor{x}, shapes.Make(dtypes.Int32, rank))
}

// IndexValues returns a tensor of x's shape where every element holds its own
// coordinate along the given axis, as Int32.
func IndexValues(x *Tensor, axis int) *Tensor {
	g := opGraph(x)
	if axis < 0 || axis >= x.Shape().Rank() {
		rankErrorf("index_values axis %d out of range for rank-%d tensor", axis, x.Shape().Rank())
	}
	t := g.newTensor(OpIndexValues, []*Tensor{x}, shapes.Make(dtypes.Int32, x.Shape().Dimensions...))
	t.node.axis = axis
	return t
}

// Prng draws uniform Float32 values in [0, 1) of the given dimensions from a
// Uint32 state tensor, returning the values and the updated state to thread
// into the next draw. Dimensions must be literal positive integers.
func Prng(state *Tensor, dimensions ...int) (values, newState *Tensor) {
	g := opGraph(state)
	if state.DType() != dtypes.Uint32 {
		typeErrorf("prng state must be %s, got %s", dtypes.Uint32, state.DType())
	}
	for i, d := range dimensions {
		if d < 1 {
			shapeErrorf("prng dimension %d is %d, must be at least 1", i, d)
		}
	}
	n := g.newNode(OpPrng, []*Tensor{state},
		shapes.Make(dtypes.Float32, dimensions...), state.Shape().Clone())
	return &Tensor{node: n, out: 0}, &Tensor{node: n, out: 1}
}

// TraceMsg passes x through unchanged and logs the message when a backend
// evaluates it; a debugging aid with no effect on the computation.
func TraceMsg(x *Tensor, msg string) *Tensor {
	g := opGraph(x)
	t := g.newTensor(OpTrace, []*Tensor{x}, x.Shape().Clone())
	t.node.msg = msg
	return t
}

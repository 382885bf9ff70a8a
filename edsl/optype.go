// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package edsl

import "github.com/loom-ml/loom/types/sets"

// OpType identifies what a Node computes. The set is closed: shape/dtype
// resolution, dump emission and the reference interpreter all switch
// exhaustively over it.
type OpType int32

//go:generate go tool enumer -type=OpType -trimprefix=Op -transform=snake -output=gen_optype_enumer.go

const (
	OpInvalid OpType = iota
	OpPlaceholder
	OpConstant
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpExp
	OpLog
	OpSqrt
	OpAbs
	OpNot
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpSelect
	OpCast
	OpReshape
	OpShapeOf
	OpIndexValues
	OpPrng
	OpTrace
	OpContraction
)

// Operator categories used by dtype validation and by backends. Grouping them
// here keeps the dispatch sites total: a new OpType must be added to exactly
// one category (or handled structurally) before anything compiles against it.
var (
	arithmeticOps = sets.MakeWith(OpAdd, OpSub, OpMul, OpDiv)
	bitwiseOps    = sets.MakeWith(OpBitAnd, OpBitOr, OpBitXor)
	shiftOps      = sets.MakeWith(OpShl, OpShr)
	comparisonOps = sets.MakeWith(OpEq, OpNe, OpLt, OpLe, OpGt, OpGe)
	floatUnaryOps = sets.MakeWith(OpExp, OpLog, OpSqrt)
)

// IsComparison reports whether the op yields a boolean result regardless of
// its operand dtypes.
func (op OpType) IsComparison() bool {
	return comparisonOps.Has(op)
}

// IsBinaryElementwise reports whether the op takes exactly two broadcast
// operands.
func (op OpType) IsBinaryElementwise() bool {
	return arithmeticOps.Has(op) || bitwiseOps.Has(op) || shiftOps.Has(op) || op.IsComparison()
}

// IsUnaryElementwise reports whether the op takes exactly one operand and
// preserves its shape.
func (op OpType) IsUnaryElementwise() bool {
	switch op {
	case OpNeg, OpExp, OpLog, OpSqrt, OpAbs, OpNot:
		return true
	}
	return false
}

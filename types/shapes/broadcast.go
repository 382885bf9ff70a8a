// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"slices"

	"github.com/pkg/errors"
)

// BroadcastDimensions returns the dimensions resulting from broadcasting a
// with b: aligning trailing axes, each pair must be equal or one side must be
// 1, and the result takes the non-1 side. The shorter rank is implicitly
// left-padded with 1s, so a scalar broadcasts with everything.
//
// It returns an error if any aligned pair is incompatible.
func BroadcastDimensions(a, b []int) ([]int, error) {
	rankA, rankB := len(a), len(b)
	rank := max(rankA, rankB)
	result := make([]int, rank)
	for axis := 1; axis <= rank; axis++ {
		dimA, dimB := 1, 1
		if axis <= rankA {
			dimA = a[rankA-axis]
		}
		if axis <= rankB {
			dimB = b[rankB-axis]
		}
		switch {
		case dimA == dimB:
			result[rank-axis] = dimA
		case dimA == 1:
			result[rank-axis] = dimB
		case dimB == 1:
			result[rank-axis] = dimA
		default:
			return nil, errors.Errorf(
				"dimensions %v and %v cannot be broadcast together: axis %d (from the end) has %d vs %d",
				a, b, axis, dimA, dimB)
		}
	}
	return result, nil
}

// BroadcastCompatible returns whether the dimensions of a and b can be
// broadcast together.
func BroadcastCompatible(a, b Shape) bool {
	_, err := BroadcastDimensions(a.Dimensions, b.Dimensions)
	return err == nil
}

// Broadcast returns the shape resulting from broadcasting a with b, keeping
// a's dtype. Dtype resolution (promotion) is the caller's concern.
func Broadcast(a, b Shape) (Shape, error) {
	dims, err := BroadcastDimensions(a.Dimensions, b.Dimensions)
	if err != nil {
		return Invalid(), err
	}
	return Shape{DType: a.DType, Dimensions: dims}, nil
}

// BroadcastIndex maps an index in the broadcast result back to an index in an
// operand with the given dimensions: trailing axes align, and axes where the
// operand has dimension 1 collapse to 0. resultIndex is row-major per-axis
// indices of the result; the returned slice is freshly allocated.
func BroadcastIndex(resultIndex []int, operandDims []int) []int {
	rank := len(operandDims)
	index := make([]int, rank)
	offset := len(resultIndex) - rank
	for axis := 0; axis < rank; axis++ {
		if operandDims[axis] == 1 {
			index[axis] = 0
		} else {
			index[axis] = resultIndex[offset+axis]
		}
	}
	return index
}

// IsBroadcastNoOp returns whether broadcasting from operand dimensions to the
// result dimensions leaves indices unchanged (same rank and sizes).
func IsBroadcastNoOp(operandDims, resultDims []int) bool {
	return slices.Equal(operandDims, resultDims)
}

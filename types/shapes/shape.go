// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape -- a dtype plus an ordered list of concrete
// dimensions -- and the tools used throughout loom to reason about them:
// equality, broadcasting, row-major indexing and iteration.
//
// Nomenclature:
//
//   - Rank: number of axes of a tensor.
//   - Axis: the index of one dimension on a multidimensional tensor. We refer
//     to a dimension index as "axis" (plural axes) and to its size as its
//     dimension.
//   - Dimension: the size of a tensor along one axis.
//   - DType: the data type of the unit element, from
//     github.com/loom-ml/loom/types/dtypes.
//   - Scalar: a shape with no axes, a single value of the associated DType.
//
// The multi-dimensional array [][]int32{{0, 1, 2}, {3, 4, 5}} has shape
// i32[2, 3]: rank 2, axis 0 with dimension 2, axis 1 with dimension 3. It
// would be created with shapes.Make(dtypes.Int32, 2, 3).
//
// Symbolic dimensions are not represented here: the EDSL resolves its
// dimension expressions to concrete sizes before a Shape is built.
package shapes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/loom-ml/loom/types/dtypes"
)

// Shape represents the shape of a tensor value: its element dtype and
// concrete dimensions. Use Make to create one.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int
}

// Make returns a Shape with the given dtype and dimensions. No dimensions
// means a scalar shape. It panics if any dimension is <= 0.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	s := Shape{DType: dtype, Dimensions: slices.Clone(dimensions)}
	for _, dim := range dimensions {
		if dim <= 0 {
			exceptions.Panicf("shapes.Make(%s, %v): dimensions must be > 0", dtype, dimensions)
		}
	}
	return s
}

// Scalar returns a scalar Shape for the given Go type.
func Scalar[T dtypes.Supported]() Shape {
	return Shape{DType: dtypes.FromGenericsType[T]()}
}

// Invalid returns an invalid shape: Invalid().Ok() == false.
func Invalid() Shape {
	return Shape{DType: dtypes.InvalidDType}
}

// Ok returns whether this is a valid Shape. The zero value Shape{} is invalid.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType }

// Rank of the shape: the number of axes. Scalar shapes have rank 0.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape holds a single value, that is, rank 0.
func (s Shape) IsScalar() bool { return s.Ok() && s.Rank() == 0 }

// Dim returns the dimension of the given axis. Negative axis counts from the
// end, so Dim(-1) is the last axis. It panics for out-of-bounds axes.
func (s Shape) Dim(axis int) int {
	adjusted := axis
	if adjusted < 0 {
		adjusted += s.Rank()
	}
	if adjusted < 0 || adjusted >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjusted]
}

// Shape returns a shallow copy of itself. It implements the HasShape interface.
func (s Shape) Shape() Shape { return s }

// String implements fmt.Stringer. Shapes print as "f32[2, 3]"; scalar shapes
// print as the bare dtype short name, "f32". This is the format used by
// program dumps.
func (s Shape) String() string {
	if s.IsScalar() {
		return s.DType.ShortName()
	}
	parts := make([]string, 0, s.Rank())
	for _, dim := range s.Dimensions {
		parts = append(parts, fmt.Sprintf("%d", dim))
	}
	return fmt.Sprintf("%s[%s]", s.DType.ShortName(), strings.Join(parts, ", "))
}

// Size returns the number of elements the shape holds. Scalars have size 1.
func (s Shape) Size() int {
	size := 1
	for _, dim := range s.Dimensions {
		size *= dim
	}
	return size
}

// Memory returns the number of bytes needed to store the shape's elements.
func (s Shape) Memory() uintptr {
	return s.DType.Memory() * uintptr(s.Size())
}

// Equal compares dtype and dimensions.
func (s Shape) Equal(s2 Shape) bool {
	return s.DType == s2.DType && s.EqualDimensions(s2)
}

// EqualDimensions compares only the dimensions, ignoring dtype.
func (s Shape) EqualDimensions(s2 Shape) bool {
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// Clone makes a deep copy of the shape.
func (s Shape) Clone() Shape {
	return Shape{DType: s.DType, Dimensions: slices.Clone(s.Dimensions)}
}

// Strides returns the row-major strides of the shape: the flat-index step of
// each axis. The last axis always has stride 1.
func (s Shape) Strides() []int {
	rank := s.Rank()
	strides := make([]int, rank)
	stride := 1
	for axis := rank - 1; axis >= 0; axis-- {
		strides[axis] = stride
		stride *= s.Dimensions[axis]
	}
	return strides
}

// FlatIndex converts per-axis indices to the row-major flat position.
// len(indices) must equal the rank; indices are not bounds-checked.
func (s Shape) FlatIndex(indices []int) int {
	flat := 0
	stride := 1
	for axis := s.Rank() - 1; axis >= 0; axis-- {
		flat += indices[axis] * stride
		stride *= s.Dimensions[axis]
	}
	return flat
}

// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

// Package edsl builds tensor computations as immutable operation DAGs with
// symbolic shapes, ready to be compiled by a backend.
//
// A computation is traced by creating a Graph, declaring placeholders for its
// inputs and combining tensors with elementwise ops (Add, Mul, Select, ...)
// and contractions, the Einstein-notation-like indexed aggregations built
// with Graph.Contraction. Shapes and dtypes resolve eagerly: every
// malformed construction panics immediately with one of the typed errors in
// this package (ShapeError, RankError, TypeError, BroadcastError,
// UnboundIndexError, AssemblyError), wrapped with a stack trace. Use
// exceptions.Try to capture them as values.
//
// Shape-polymorphic operators are written against symbolic dimensions:
//
//	g := edsl.New()
//	A := g.Placeholder(dtypes.Float32, []int{3, 3}, "A")
//	B := g.Placeholder(dtypes.Float32, []int{3, 3}, "B")
//	I, J, K := g.NewDim(), g.NewDim(), g.NewDim()
//	i, j, k := g.NewIdx(), g.NewIdx(), g.NewIdx()
//	A.BindDims(I, K)
//	B.BindDims(K, J)
//	O := g.Contraction(I, J).At(i, j).Sum(A.At(i, k).Mul(B.At(k, j)))
//
// Build assembles one or more outputs into an immutable Program that a
// backend can compile and run.
//
// A Graph and its dimension/index variables are confined to the goroutine
// tracing it; once built, nodes and Programs are read-only and safe to share.
package edsl

import (
	"github.com/loom-ml/loom/types/dtypes"
	"github.com/loom-ml/loom/types/shapes"
)

// Graph is the arena owning every node of one traced computation, along with
// the binding table for its dimension variables. It is not safe for
// concurrent use while tracing.
type Graph struct {
	nodes     []*Node
	nextDimID int32
	nextIdxID int32
	dimBind   map[int32]int64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{dimBind: make(map[int32]int64)}
}

// NumNodes returns how many nodes have been created in the graph.
func (g *Graph) NumNodes() int { return len(g.nodes) }

func (g *Graph) newNode(op OpType, inputs []*Tensor, outputs ...shapes.Shape) *Node {
	n := &Node{g: g, id: len(g.nodes), op: op, inputs: inputs, outputs: outputs}
	g.nodes = append(g.nodes, n)
	return n
}

func (g *Graph) newTensor(op OpType, inputs []*Tensor, shape shapes.Shape) *Tensor {
	return &Tensor{node: g.newNode(op, inputs, shape)}
}

// Placeholder declares an external input with the given dtype and concrete
// dimensions. The name is used for the program argument; it may be empty, in
// which case a positional name is assigned at assembly, and it need not be
// unique, collisions are resolved then too.
func (g *Graph) Placeholder(dtype dtypes.DType, dimensions []int, name string) *Tensor {
	if dtype == dtypes.InvalidDType || !dtype.IsSupported() {
		typeErrorf("placeholder %q: invalid dtype %s", name, dtype)
	}
	for i, d := range dimensions {
		if d < 1 {
			shapeErrorf("placeholder %q: dimension %d is %d, must be at least 1", name, i, d)
		}
	}
	n := g.newNode(OpPlaceholder, nil, shapes.Make(dtype, dimensions...))
	n.name = name
	return &Tensor{node: n}
}

// Int creates an integer literal constant. Its dtype starts as Int32 and
// adapts to the tensor it is combined with, or to a Program-level integer
// precision override.
func (g *Graph) Int(v int64) *Tensor {
	n := g.newNode(OpConstant, nil, shapes.Make(dtypes.Int32))
	n.lit = litInt
	n.i64 = v
	return &Tensor{node: n}
}

// Float creates a floating-point literal constant. Its dtype starts as
// Float32 and adapts like Int's.
func (g *Graph) Float(v float64) *Tensor {
	n := g.newNode(OpConstant, nil, shapes.Make(dtypes.Float32))
	n.lit = litFloat
	n.f64 = v
	return &Tensor{node: n}
}

// Bool creates a boolean literal constant.
func (g *Graph) Bool(v bool) *Tensor {
	n := g.newNode(OpConstant, nil, shapes.Make(dtypes.Bool))
	n.lit = litBool
	n.b = v
	return &Tensor{node: n}
}

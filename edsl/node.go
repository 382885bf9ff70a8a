// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package edsl

import (
	"fmt"

	"github.com/loom-ml/loom/types/dtypes"
	"github.com/loom-ml/loom/types/shapes"
)

type literalKind int8

const (
	litNone literalKind = iota
	litInt
	litFloat
	litBool
)

// Node is one operation in a graph's DAG. Nodes are immutable once built and
// freely shared: binding an expression to a variable and reusing it reuses the
// node, so structural sharing is pointer identity. Nodes are created through
// Graph constructors and the package-level op functions, never directly.
type Node struct {
	g       *Graph
	id      int
	op      OpType
	inputs  []*Tensor
	outputs []shapes.Shape

	// Payloads, populated per op.
	name string      // OpPlaceholder
	lit  literalKind // OpConstant
	i64  int64
	f64  float64
	b    bool
	axis int    // OpIndexValues
	msg  string // OpTrace
	spec *ContractionSpec
}

// Op returns the node's operation tag.
func (n *Node) Op() OpType { return n.op }

// Graph returns the graph owning the node.
func (n *Node) Graph() *Graph { return n.g }

// ID returns the node's position in its graph's arena, unique per graph.
func (n *Node) ID() int { return n.id }

// Inputs returns the node's operands in order. The returned slice is owned by
// the node and must not be modified.
func (n *Node) Inputs() []*Tensor { return n.inputs }

// NumOutputs returns how many values the node produces: 1 for everything
// except prng, which produces (values, updated state).
func (n *Node) NumOutputs() int { return len(n.outputs) }

// OutputShape returns the shape of the i-th output.
func (n *Node) OutputShape(i int) shapes.Shape { return n.outputs[i] }

// Axis returns the axis payload of an index_values node.
func (n *Node) Axis() int { return n.axis }

// Message returns the message payload of a trace node.
func (n *Node) Message() string { return n.msg }

// PlaceholderName returns the user-supplied name of a placeholder node, which
// may be empty.
func (n *Node) PlaceholderName() string { return n.name }

// ContractionSpec returns the finalized contraction payload, or nil for other
// ops.
func (n *Node) ContractionSpec() *ContractionSpec { return n.spec }

func (n *Node) String() string {
	return fmt.Sprintf("%%%d=%s", n.id, n.op)
}

// Tensor is a handle to one output of a node; almost always output 0, except
// for the second output of prng. Tensors are what user code and the op
// builders pass around.
type Tensor struct {
	node *Node
	out  int
}

// Node returns the node producing this tensor.
func (t *Tensor) Node() *Node { return t.node }

// OutputIndex returns which of the node's outputs this tensor refers to.
func (t *Tensor) OutputIndex() int { return t.out }

// Graph returns the graph owning the tensor's node.
func (t *Tensor) Graph() *Graph { return t.node.g }

// Shape returns the tensor's resolved shape.
func (t *Tensor) Shape() shapes.Shape { return t.node.outputs[t.out] }

// DType returns the tensor's resolved dtype.
func (t *Tensor) DType() dtypes.DType { return t.Shape().DType }

func (t *Tensor) String() string {
	return fmt.Sprintf("%s:%s", t.node, t.Shape())
}

// isLiteral reports whether the tensor is a bare scalar literal, which makes
// it adopt the other operand's dtype instead of forcing a promotion join.
func (t *Tensor) isLiteral() bool {
	return t.node.op == OpConstant && t.node.lit != litNone
}

// BindDims unifies the tensor's shape with the given dimension slots, one per
// axis. An unbound dimension variable becomes bound to the axis extent; a
// bound variable or derived expression must already resolve to it. Binding is
// idempotent; a conflicting rebind panics with a ShapeError and an arity
// mismatch with a RankError.
func (t *Tensor) BindDims(dims ...Dim) {
	shape := t.Shape()
	if len(dims) != shape.Rank() {
		rankErrorf("BindDims got %d dimension slots for a rank-%d tensor %s", len(dims), shape.Rank(), shape)
	}
	for i, d := range dims {
		d.graphOK()
		if d.g != t.node.g {
			shapeErrorf("BindDims slot %d belongs to a different graph", i)
		}
		if !d.bindSym(int64(shape.Dimensions[i])) {
			shapeErrorf("BindDims slot %d: expression %s has unbound symbols and cannot be unified with extent %d",
				i, d.e.render(), shape.Dimensions[i])
		}
	}
}

// At fixes the tensor's coordinates to affine index expressions, producing a
// contraction source (or, for the output, a sink tuple passed to
// Contraction.At). The arity must match the tensor's rank.
func (t *Tensor) At(coords ...Idx) Access {
	if len(coords) != t.Shape().Rank() {
		rankErrorf("At got %d index expressions for a rank-%d tensor %s", len(coords), t.Shape().Rank(), t.Shape())
	}
	g := t.node.g
	for _, c := range coords {
		g = sameGraph(g, c.g)
	}
	return Access{t: t, coords: coords}
}

// Access is a tensor with its coordinates fixed to affine index expressions.
// An Access on its own is a contraction source with no combiner; Access.Mul
// and Cond build the combined forms.
type Access struct {
	t      *Tensor
	coords []Idx
}

// Tensor returns the accessed tensor.
func (a Access) Tensor() *Tensor { return a.t }

// Source is the right-hand side of a contraction: a single access, a product
// of two accesses, or a conditional over three. The set is closed.
type Source interface {
	parts() []Access
	combiner() CombineOp
}

func (a Access) parts() []Access     { return []Access{a} }
func (a Access) combiner() CombineOp { return CombineNone }

type mulSource struct{ a, b Access }

func (m mulSource) parts() []Access     { return []Access{m.a, m.b} }
func (m mulSource) combiner() CombineOp { return CombineMul }

// Mul combines two accesses multiplicatively: each domain point contributes
// a*b to the aggregation.
func (a Access) Mul(b Access) Source {
	sameGraph(a.t.node.g, b.t.node.g)
	return mulSource{a: a, b: b}
}

type condSource struct{ a, b, c Access }

func (s condSource) parts() []Access     { return []Access{s.a, s.b, s.c} }
func (s condSource) combiner() CombineOp { return CombineCond }

// Cond combines three accesses conditionally: a domain point contributes c
// where a == b and nothing elsewhere. Together with a max or min aggregation
// this builds index-of-extremum patterns.
func Cond(a, b, c Access) Source {
	g := sameGraph(a.t.node.g, b.t.node.g)
	sameGraph(g, c.t.node.g)
	return condSource{a: a, b: b, c: c}
}

// ContractionSpec is the finalized payload of a contraction node: everything
// symbolic has been resolved to concrete affine maps over the node's local
// index variables d0..dN-1, with dimension symbols folded into constants.
// Fields are exported for backends and must be treated as read-only.
type ContractionSpec struct {
	Agg     AggOp
	Combine CombineOp

	// Sink holds one affine coordinate per output axis.
	Sink []AffineExpr
	// Srcs holds one access per source operand, in combiner order. Operand
	// indexes refer to the node's Inputs; when HasDefault is set the default
	// tensor is the last input and is not listed here.
	Srcs []SourceAccess

	// NumIndices is the number of local index variables; Bounds has one
	// entry per variable.
	NumIndices int
	Bounds     []IndexBound

	// Constraints are the desugared rows, each meaning row >= 0.
	Constraints []AffineExpr

	NoReduce   bool
	HasDefault bool
}

// SourceAccess is one source operand of a contraction with its affine
// coordinate map.
type SourceAccess struct {
	Operand int
	Coords  []AffineExpr
}

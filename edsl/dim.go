// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package edsl

import (
	"fmt"

	"github.com/gomlx/exceptions"
)

// Dim is a symbolic tensor dimension: either a fresh variable created with
// Graph.NewDim (bound exactly once, usually by Tensor.BindDims) or an integer
// expression derived from other dimensions. All arithmetic is exact integer
// arithmetic; division is floor division and the divisor must resolve to a
// positive value.
//
// Dim is a value type: operations return new expressions and never mutate
// their receiver.
type Dim struct {
	g *Graph
	e *dimExpr
}

type dimOp int8

const (
	dimRef dimOp = iota
	dimLit
	dimAdd
	dimSub
	dimMul
	dimDiv
)

type dimExpr struct {
	op   dimOp
	id   int32 // dimRef: symbol id
	v    int64 // dimLit
	a, b *dimExpr
}

// NewDim returns a fresh unbound dimension variable.
func (g *Graph) NewDim() Dim {
	id := g.nextDimID
	g.nextDimID++
	return Dim{g: g, e: &dimExpr{op: dimRef, id: id}}
}

// NewDims returns n fresh unbound dimension variables.
func (g *Graph) NewDims(n int) []Dim {
	dims := make([]Dim, n)
	for i := range dims {
		dims[i] = g.NewDim()
	}
	return dims
}

// DimLit returns the constant dimension expression v. It is usable anywhere a
// Dim is, including as a contraction output size or a constraint bound.
func (g *Graph) DimLit(v int64) Dim {
	return Dim{g: g, e: &dimExpr{op: dimLit, v: v}}
}

func (d Dim) graphOK() {
	if d.g == nil {
		exceptions.Panicf("edsl: use of zero-valued Dim; create dimensions with Graph.NewDim")
	}
}

func dimBinary(op dimOp, a, b Dim) Dim {
	a.graphOK()
	b.graphOK()
	if a.g != b.g {
		exceptions.Panicf("edsl: cannot combine dimensions from different graphs")
	}
	return Dim{g: a.g, e: &dimExpr{op: op, a: a.e, b: b.e}}
}

// Add returns the dimension expression d + o.
func (d Dim) Add(o Dim) Dim { return dimBinary(dimAdd, d, o) }

// Sub returns the dimension expression d - o.
func (d Dim) Sub(o Dim) Dim { return dimBinary(dimSub, d, o) }

// Mul returns the dimension expression d * o.
func (d Dim) Mul(o Dim) Dim { return dimBinary(dimMul, d, o) }

// Div returns the dimension expression d / o, floor division. The divisor
// must resolve to a positive value when the expression is evaluated.
func (d Dim) Div(o Dim) Dim { return dimBinary(dimDiv, d, o) }

// AddN returns the dimension expression d + v.
func (d Dim) AddN(v int64) Dim {
	d.graphOK()
	return dimBinary(dimAdd, d, d.g.DimLit(v))
}

// SubN returns the dimension expression d - v.
func (d Dim) SubN(v int64) Dim {
	d.graphOK()
	return dimBinary(dimSub, d, d.g.DimLit(v))
}

// MulN returns the dimension expression d * v.
func (d Dim) MulN(v int64) Dim {
	d.graphOK()
	return dimBinary(dimMul, d, d.g.DimLit(v))
}

// DivN returns the dimension expression d / v, floor division by a positive
// literal.
func (d Dim) DivN(v int64) Dim {
	d.graphOK()
	if v <= 0 {
		shapeErrorf("dimension division requires a positive literal divisor, got %d", v)
	}
	return dimBinary(dimDiv, d, d.g.DimLit(v))
}

// Bound reports whether every symbol in the expression has been bound, i.e.
// whether Value would succeed.
func (d Dim) Bound() bool {
	d.graphOK()
	_, ok := d.g.evalDim(d.e)
	return ok
}

// Value returns the resolved size of the expression. It panics with a
// ShapeError if any symbol in the expression is still unbound.
func (d Dim) Value() int64 {
	d.graphOK()
	v, ok := d.g.evalDim(d.e)
	if !ok {
		shapeErrorf("dimension %s is not fully bound", d.e.render())
	}
	return v
}

func (d Dim) String() string {
	if d.g == nil {
		return "<zero Dim>"
	}
	if v, ok := d.g.evalDim(d.e); ok {
		return fmt.Sprintf("%d", v)
	}
	return d.e.render()
}

// bindSym binds the dimension to value if it is a bare unbound variable;
// otherwise it checks the expression resolves to value. Returns false when
// the expression contains unbound symbols and is not a bare variable.
func (d Dim) bindSym(value int64) bool {
	if d.e.op == dimRef {
		if bound, ok := d.g.dimBind[d.e.id]; ok {
			if bound != value {
				shapeErrorf("dimension D%d already bound to %d, cannot rebind to %d", d.e.id, bound, value)
			}
			return true
		}
		d.g.dimBind[d.e.id] = value
		return true
	}
	got, ok := d.g.evalDim(d.e)
	if !ok {
		return false
	}
	if got != value {
		shapeErrorf("dimension %s resolves to %d, want %d", d.e.render(), got, value)
	}
	return true
}

// resolve evaluates the expression to a concrete tensor size. Panics with a
// ShapeError when unbound or negative.
func (d Dim) resolve() int64 {
	v := d.Value()
	if v < 0 {
		shapeErrorf("dimension %s resolves to negative size %d", d.e.render(), v)
	}
	return v
}

func (g *Graph) evalDim(e *dimExpr) (int64, bool) {
	switch e.op {
	case dimRef:
		v, ok := g.dimBind[e.id]
		return v, ok
	case dimLit:
		return e.v, true
	}
	a, ok := g.evalDim(e.a)
	if !ok {
		return 0, false
	}
	b, ok := g.evalDim(e.b)
	if !ok {
		return 0, false
	}
	switch e.op {
	case dimAdd:
		return a + b, true
	case dimSub:
		return a - b, true
	case dimMul:
		return a * b, true
	case dimDiv:
		if b <= 0 {
			shapeErrorf("dimension division by non-positive value %d", b)
		}
		return floorDiv(a, b), true
	}
	exceptions.Panicf("edsl: unhandled dimension op %d", e.op)
	return 0, false
}

func (e *dimExpr) render() string {
	switch e.op {
	case dimRef:
		return fmt.Sprintf("D%d", e.id)
	case dimLit:
		return fmt.Sprintf("%d", e.v)
	case dimAdd:
		return fmt.Sprintf("(%s + %s)", e.a.render(), e.b.render())
	case dimSub:
		return fmt.Sprintf("(%s - %s)", e.a.render(), e.b.render())
	case dimMul:
		return fmt.Sprintf("(%s * %s)", e.a.render(), e.b.render())
	case dimDiv:
		return fmt.Sprintf("(%s / %s)", e.a.render(), e.b.render())
	}
	return "?"
}

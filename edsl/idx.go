// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package edsl

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomlx/exceptions"
)

// Idx is a symbolic index variable, or an affine expression over index
// variables: Σ cᵢ·idxᵢ + Σ dⱼ·dimⱼ + const, optionally wrapped in a single
// floor division by a positive literal. Index expressions only have meaning
// inside contraction sink/source coordinates and constraints.
//
// Like Dim, Idx is an immutable value type.
type Idx struct {
	g     *Graph
	terms []idxTerm // sorted by symbol id, no zero coefficients
	dim   *dimExpr  // optional dimension contribution, nil when zero
	c     int64
	div   int64 // floor-divisor applied to the whole expression; >= 1
}

type idxTerm struct {
	id   int32
	coef int64
}

// NewIdx returns a fresh index variable.
func (g *Graph) NewIdx() Idx {
	id := g.nextIdxID
	g.nextIdxID++
	return Idx{g: g, terms: []idxTerm{{id: id, coef: 1}}, div: 1}
}

// NewIdxs returns n fresh index variables.
func (g *Graph) NewIdxs(n int) []Idx {
	idxs := make([]Idx, n)
	for i := range idxs {
		idxs[i] = g.NewIdx()
	}
	return idxs
}

// Lit returns the constant index expression v, usable as a fixed sink or
// source coordinate.
func Lit(v int64) Idx {
	return Idx{c: v, div: 1}
}

func sameGraph(a, b *Graph) *Graph {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a != b {
		exceptions.Panicf("edsl: cannot combine index expressions from different graphs")
	}
	return a
}

func (x Idx) divisor() int64 {
	if x.div == 0 {
		return 1
	}
	return x.div
}

// scaled returns the expression with every component multiplied by f, valid
// only for undivided expressions.
func (x Idx) scaled(f int64) Idx {
	if f == 0 {
		return Idx{g: x.g, div: 1}
	}
	out := Idx{g: x.g, c: x.c * f, div: 1}
	if len(x.terms) > 0 {
		out.terms = make([]idxTerm, len(x.terms))
		for i, t := range x.terms {
			out.terms[i] = idxTerm{id: t.id, coef: t.coef * f}
		}
	}
	if x.dim != nil {
		out.dim = &dimExpr{op: dimMul, a: &dimExpr{op: dimLit, v: f}, b: x.dim}
	}
	return out
}

func mergeTerms(a, b []idxTerm) []idxTerm {
	merged := make([]idxTerm, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sort.Slice(merged, func(i, j int) bool { return merged[i].id < merged[j].id })
	out := merged[:0]
	for _, t := range merged {
		if n := len(out); n > 0 && out[n-1].id == t.id {
			out[n-1].coef += t.coef
		} else {
			out = append(out, t)
		}
	}
	// Drop cancelled terms.
	kept := out[:0]
	for _, t := range out {
		if t.coef != 0 {
			kept = append(kept, t)
		}
	}
	return append([]idxTerm(nil), kept...)
}

func addDims(a, b *dimExpr) *dimExpr {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &dimExpr{op: dimAdd, a: a, b: b}
}

// add combines two index expressions. When one side carries a floor division
// the other is scaled into its numerator, which is exact: floor(a/q) + b ==
// floor((a + q·b)/q) for integer b. Two divided expressions cannot be
// combined.
func (x Idx) add(y Idx) Idx {
	g := sameGraph(x.g, y.g)
	qx, qy := x.divisor(), y.divisor()
	switch {
	case qx == 1 && qy == 1:
		return Idx{g: g, terms: mergeTerms(x.terms, y.terms), dim: addDims(x.dim, y.dim), c: x.c + y.c, div: 1}
	case qy == 1:
		s := y.scaled(qx)
		return Idx{g: g, terms: mergeTerms(x.terms, s.terms), dim: addDims(x.dim, s.dim), c: x.c + s.c, div: qx}
	case qx == 1:
		s := x.scaled(qy)
		return Idx{g: g, terms: mergeTerms(s.terms, y.terms), dim: addDims(s.dim, y.dim), c: s.c + y.c, div: qy}
	}
	typeErrorf("index expressions support at most one floor division; cannot combine %s and %s", x, y)
	return Idx{}
}

// neg returns -x. For a divided expression the identity
// -floor(a/q) == floor((-a + q - 1)/q) keeps the result exact.
func (x Idx) neg() Idx {
	q := x.divisor()
	out := x.scaled(-1)
	if q != 1 {
		out.c += q - 1
		out.div = q
	}
	return out
}

// Add returns x + o.
func (x Idx) Add(o Idx) Idx { return x.add(o) }

// Sub returns x - o.
func (x Idx) Sub(o Idx) Idx { return x.add(o.neg()) }

// AddN returns x + v.
func (x Idx) AddN(v int64) Idx { return x.add(Lit(v)) }

// SubN returns x - v.
func (x Idx) SubN(v int64) Idx { return x.add(Lit(-v)) }

// AddDim returns x + d for a dimension expression d.
func (x Idx) AddDim(d Dim) Idx {
	d.graphOK()
	return x.add(Idx{g: d.g, dim: d.e, div: 1})
}

// SubDim returns x - d for a dimension expression d.
func (x Idx) SubDim(d Dim) Idx {
	d.graphOK()
	return x.add(Idx{g: d.g, dim: &dimExpr{op: dimMul, a: &dimExpr{op: dimLit, v: -1}, b: d.e}, div: 1})
}

// MulN returns x * v. Scaling an already floor-divided expression is only
// exact for v in {-1, 0, 1}; anything else is rejected.
func (x Idx) MulN(v int64) Idx {
	switch {
	case x.divisor() == 1:
		return x.scaled(v)
	case v == 1:
		return x
	case v == 0:
		return Idx{g: x.g, div: 1}
	case v == -1:
		return x.neg()
	}
	typeErrorf("cannot scale the floor-divided index expression %s by %d", x, v)
	return Idx{}
}

// DivN returns x / v, floor division by a positive literal. Nested divisions
// compose: floor(floor(a/p)/q) == floor(a/(p·q)).
func (x Idx) DivN(v int64) Idx {
	if v <= 0 {
		typeErrorf("index division requires a positive literal divisor, got %d", v)
	}
	out := x
	out.div = x.divisor() * v
	return out
}

func (x Idx) String() string {
	var sb strings.Builder
	printed := 0
	writePart := func(neg bool, body string) {
		if printed == 0 {
			if neg {
				sb.WriteByte('-')
			}
		} else if neg {
			sb.WriteString(" - ")
		} else {
			sb.WriteString(" + ")
		}
		sb.WriteString(body)
		printed++
	}
	for _, t := range x.terms {
		name := fmt.Sprintf("x%d", t.id)
		c := t.coef
		neg := c < 0
		if neg {
			c = -c
		}
		if c == 1 {
			writePart(neg, name)
		} else {
			writePart(neg, fmt.Sprintf("%d*%s", c, name))
		}
	}
	if x.dim != nil {
		writePart(false, x.dim.render())
	}
	if x.c != 0 || printed == 0 {
		c := x.c
		neg := c < 0
		if neg {
			c = -c
		}
		writePart(neg, fmt.Sprintf("%d", c))
	}
	body := sb.String()
	if q := x.divisor(); q != 1 {
		if printed > 1 {
			return fmt.Sprintf("(%s)/%d", body, q)
		}
		return fmt.Sprintf("%s/%d", body, q)
	}
	return body
}

// Constraint is an affine inequality restricting a contraction's index
// domain, built with Idx.Lt, Idx.LtN or Idx.NonNegative.
type Constraint struct {
	lhs   Idx
	bound *dimExpr // nil for a bare non-negativity constraint
	g     *Graph
}

// Lt constrains the expression to 0 <= x < bound.
func (x Idx) Lt(bound Dim) Constraint {
	bound.graphOK()
	return Constraint{lhs: x, bound: bound.e, g: sameGraph(x.g, bound.g)}
}

// LtN constrains the expression to 0 <= x < bound for a literal bound.
func (x Idx) LtN(bound int64) Constraint {
	return Constraint{lhs: x, bound: &dimExpr{op: dimLit, v: bound}, g: x.g}
}

// NonNegative constrains the expression to x >= 0.
func (x Idx) NonNegative() Constraint {
	return Constraint{lhs: x, g: x.g}
}

func (c Constraint) String() string {
	if c.bound == nil {
		return fmt.Sprintf("%s >= 0", c.lhs)
	}
	return fmt.Sprintf("%s < %s", c.lhs, c.bound.render())
}

// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package edsl

import (
	"github.com/gomlx/exceptions"
	"github.com/loom-ml/loom/types/shapes"
)

// AggOp is how multiple contributions to one output cell of a contraction
// are reduced.
type AggOp int32

//go:generate go tool enumer -type=AggOp -trimprefix=Agg -transform=snake -output=gen_aggop_enumer.go

const (
	AggInvalid AggOp = iota
	AggAssign
	AggAdd
	AggMax
	AggMin
)

// CombineOp is how the source operands of one contraction are merged at each
// domain point before reduction.
type CombineOp int32

//go:generate go tool enumer -type=CombineOp -trimprefix=Combine -transform=snake -output=gen_combineop_enumer.go

const (
	CombineNone CombineOp = iota
	CombineMul
	CombineCond
)

// Contraction accumulates the pieces of an indexed aggregation and finalizes
// into a contraction node when one of Sum, Max, Min or Assign supplies the
// source. A typical matrix multiply:
//
//	O := g.Contraction(I, J).At(i, j).Sum(A.At(i, k).Mul(B.At(k, j)))
//
// The builder is single-use; finalizing twice panics.
type Contraction struct {
	g        *Graph
	outDims  []Dim
	sink     []Idx
	cons     []Constraint
	noReduce bool
	def      *Tensor
	done     bool
}

// Contraction starts a contraction whose output has the given dimensions,
// which must all resolve to concrete sizes by the time the builder is
// finalized. No dimensions means a scalar output.
func (g *Graph) Contraction(outDims ...Dim) *Contraction {
	for _, d := range outDims {
		d.graphOK()
		sameGraph(g, d.g)
	}
	return &Contraction{g: g, outDims: outDims}
}

// At declares the sink affine coordinates, one per output dimension.
func (c *Contraction) At(coords ...Idx) *Contraction {
	for _, x := range coords {
		sameGraph(c.g, x.g)
	}
	c.sink = coords
	return c
}

// Constrain restricts the index domain with additional affine inequalities.
func (c *Contraction) Constrain(cons ...Constraint) *Contraction {
	for _, con := range cons {
		sameGraph(c.g, con.g)
	}
	c.cons = append(c.cons, cons...)
	return c
}

// NoReduce asserts every output cell receives at most one contribution and
// disables the implicit accumulation, allowing scatter-like writes whose sink
// map is not onto.
func (c *Contraction) NoReduce() *Contraction {
	c.noReduce = true
	return c
}

// UseDefault supplies the values of output cells the contraction never
// writes. The default must match the output's shape and dtype exactly.
func (c *Contraction) UseDefault(t *Tensor) *Contraction {
	sameGraph(c.g, t.node.g)
	c.def = t
	return c
}

// Sum finalizes with add-reduction.
func (c *Contraction) Sum(src Source) *Tensor { return c.finalize(AggAdd, src) }

// Max finalizes with max-reduction.
func (c *Contraction) Max(src Source) *Tensor { return c.finalize(AggMax, src) }

// Min finalizes with min-reduction.
func (c *Contraction) Min(src Source) *Tensor { return c.finalize(AggMin, src) }

// Assign finalizes with no reduction: each output cell must be written at
// most once. Writing a cell more than once, or leaving cells unwritten
// without a default, is flagged at program assembly.
func (c *Contraction) Assign(src Source) *Tensor { return c.finalize(AggAssign, src) }

// localIndices assigns the contraction-local variable numbering: sink
// coordinates left to right first, then source coordinates, each expression
// contributing its variables in term order at first appearance.
type localIndices struct {
	order []int32         // local -> graph symbol id
	local map[int32]int   // graph symbol id -> local
}

func newLocalIndices() *localIndices {
	return &localIndices{local: make(map[int32]int)}
}

func (li *localIndices) collect(x Idx) {
	for _, t := range x.terms {
		if _, ok := li.local[t.id]; !ok {
			li.local[t.id] = len(li.order)
			li.order = append(li.order, t.id)
		}
	}
}

// resolve folds an index expression into an affine map coordinate over the
// local variables, evaluating any dimension contribution into the constant.
func (li *localIndices) resolve(g *Graph, x Idx) AffineExpr {
	out := AffineExpr{Coefs: make([]int64, len(li.order)), Const: x.c, Div: x.divisor()}
	for _, t := range x.terms {
		pos, ok := li.local[t.id]
		if !ok {
			unboundIndexErrorf("index variable x%d appears only in a constraint, not in any sink or source coordinate", t.id)
		}
		out.Coefs[pos] += t.coef
	}
	if x.dim != nil {
		v, ok := g.evalDim(x.dim)
		if !ok {
			shapeErrorf("index expression %s uses an unbound dimension", x)
		}
		out.Const += v
	}
	return out.normalize()
}

func (c *Contraction) finalize(agg AggOp, src Source) *Tensor {
	if c.done {
		exceptions.Panicf("edsl: contraction already finalized")
	}
	c.done = true

	// Resolve the output shape.
	outDims := make([]int, len(c.outDims))
	for i, d := range c.outDims {
		v := d.resolve()
		if v < 1 {
			shapeErrorf("contraction output dimension %d resolves to %d, must be at least 1", i, v)
		}
		outDims[i] = int(v)
	}
	if len(c.sink) != len(outDims) {
		rankErrorf("contraction sink has %d coordinates for a rank-%d output", len(c.sink), len(outDims))
	}

	parts := src.parts()
	for _, p := range parts {
		sameGraph(c.g, p.t.node.g)
	}
	combine := src.combiner()

	// Result dtype: none takes the source's, mul the join of both factors,
	// cond the selected value's (third access).
	var dtype = parts[0].t.DType()
	switch combine {
	case CombineMul:
		dtype = join(parts[0].t.DType(), parts[1].t.DType())
	case CombineCond:
		join(parts[0].t.DType(), parts[1].t.DType()) // the compared pair must promote
		dtype = parts[2].t.DType()
	}

	if c.def != nil {
		if !c.def.Shape().EqualDimensions(shapes.Make(dtype, outDims...)) {
			shapeErrorf("contraction default has shape %s, want dimensions %v", c.def.Shape(), outDims)
		}
		if c.def.DType() != dtype {
			typeErrorf("contraction default dtype %s does not match result dtype %s", c.def.DType(), dtype)
		}
	}

	// Number the local index variables and resolve every coordinate.
	li := newLocalIndices()
	for _, x := range c.sink {
		li.collect(x)
	}
	for _, p := range parts {
		for _, x := range p.coords {
			li.collect(x)
		}
	}
	spec := &ContractionSpec{
		Agg:        agg,
		Combine:    combine,
		NumIndices: len(li.order),
		NoReduce:   c.noReduce,
		HasDefault: c.def != nil,
	}
	spec.Sink = make([]AffineExpr, len(c.sink))
	for i, x := range c.sink {
		spec.Sink[i] = li.resolve(c.g, x)
	}
	spec.Srcs = make([]SourceAccess, len(parts))
	for i, p := range parts {
		sa := SourceAccess{Operand: i, Coords: make([]AffineExpr, len(p.coords))}
		for j, x := range p.coords {
			sa.Coords[j] = li.resolve(c.g, x)
		}
		spec.Srcs[i] = sa
	}
	for _, con := range c.cons {
		lhs := li.resolve(c.g, con.lhs)
		// floor(a/q) >= 0 iff a >= 0, and floor(a/q) < b iff a < q*b, so the
		// rows are stated on the numerator and never carry a division.
		num := AffineExpr{Coefs: lhs.Coefs, Const: lhs.Const, Div: 1}
		spec.Constraints = append(spec.Constraints, num)
		if con.bound != nil {
			b, ok := c.g.evalDim(con.bound)
			if !ok {
				shapeErrorf("constraint bound %s is not fully bound", con.bound.render())
			}
			upper := AffineExpr{Coefs: make([]int64, len(lhs.Coefs)), Const: lhs.Div*b - 1 - lhs.Const, Div: 1}
			for i, cf := range lhs.Coefs {
				upper.Coefs[i] = -cf
			}
			spec.Constraints = append(spec.Constraints, upper)
		}
	}

	spec.Bounds = inferBounds(spec, outDims, parts)

	inputs := make([]*Tensor, 0, len(parts)+1)
	for _, p := range parts {
		inputs = append(inputs, p.t)
	}
	if c.def != nil {
		inputs = append(inputs, c.def)
	}
	n := c.g.newNode(OpContraction, inputs, shapes.Make(dtype, outDims...))
	n.spec = spec
	return &Tensor{node: n}
}

// span is a partially known closed interval used during bounds inference.
type span struct {
	lo, hi       int64
	hasLo, hasHi bool
}

// rangeFact states lo <= expr (and expr <= hi when bounded): the numerator
// form of "this coordinate stays inside its axis" and of explicit
// constraints.
type rangeFact struct {
	expr  AffineExpr
	lo    int64
	hi    int64
	hasHi bool
}

// inferBounds derives the half-open domain of every local index variable by
// interval propagation: each sink/source coordinate must stay inside its
// axis, each constraint row must stay non-negative, and the implied interval
// of each variable is tightened against the others' until fixpoint. A
// variable still unbounded afterwards has no determinable domain.
func inferBounds(spec *ContractionSpec, outDims []int, parts []Access) []IndexBound {
	n := spec.NumIndices
	facts := make([]rangeFact, 0, len(spec.Sink)+len(spec.Constraints)+8)
	addCoord := func(e AffineExpr, extent int64) {
		facts = append(facts, rangeFact{
			expr:  AffineExpr{Coefs: e.Coefs, Const: e.Const, Div: 1},
			lo:    0,
			hi:    extent*e.Div - 1,
			hasHi: true,
		})
	}
	for i, e := range spec.Sink {
		addCoord(e, int64(outDims[i]))
	}
	for si, sa := range spec.Srcs {
		shape := parts[si].t.Shape()
		for ax, e := range sa.Coords {
			addCoord(e, int64(shape.Dimensions[ax]))
		}
	}
	for _, row := range spec.Constraints {
		facts = append(facts, rangeFact{expr: row, lo: 0})
	}

	spans := make([]span, n)
	maxRounds := 4*n + 8
	for round := 0; round < maxRounds; round++ {
		changed := false
		for _, f := range facts {
			if propagate(f, spans) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	bounds := make([]IndexBound, n)
	for i, s := range spans {
		if !s.hasLo || !s.hasHi {
			unboundIndexErrorf("index variable d%d has no determinable domain; bind it to an axis or add a constraint", i)
		}
		bounds[i] = IndexBound{Lo: s.lo, Hi: s.hi + 1}
	}
	return bounds
}

// propagate tightens each variable's span using one fact, holding the other
// variables at their current intervals. Reports whether anything changed.
func propagate(f rangeFact, spans []span) bool {
	changed := false
	for i, coef := range f.expr.Coefs {
		if coef == 0 {
			continue
		}
		// Interval of the rest: const plus every other term.
		restLo, restHi := f.expr.Const, f.expr.Const
		okLo, okHi := true, true
		for j, cj := range f.expr.Coefs {
			if j == i || cj == 0 {
				continue
			}
			s := spans[j]
			tlo, thi, lok, hok := termRange(cj, s)
			restLo += tlo
			restHi += thi
			okLo = okLo && lok
			okHi = okHi && hok
		}
		s := &spans[i]
		if coef > 0 {
			// lo <= rest + coef*v: v >= ceil((lo - restHi)/coef).
			if okHi {
				changed = tightenLo(s, ceilDiv(f.lo-restHi, coef)) || changed
			}
			// rest + coef*v <= hi: v <= floor((hi - restLo)/coef).
			if f.hasHi && okLo {
				changed = tightenHi(s, floorDiv(f.hi-restLo, coef)) || changed
			}
		} else {
			p := -coef
			// lo <= rest - p*v: v <= floor((restHi - lo)/p).
			if okHi {
				changed = tightenHi(s, floorDiv(restHi-f.lo, p)) || changed
			}
			// rest - p*v <= hi: v >= ceil((restLo - hi)/p).
			if f.hasHi && okLo {
				changed = tightenLo(s, ceilDiv(restLo-f.hi, p)) || changed
			}
		}
	}
	return changed
}

// termRange returns the interval of coef*v given v's current span; an
// unbounded side stays unbounded (reported through the ok flags) and
// contributes zero.
func termRange(coef int64, s span) (lo, hi int64, okLo, okHi bool) {
	if coef > 0 {
		lo, okLo = coef*s.lo, s.hasLo
		hi, okHi = coef*s.hi, s.hasHi
	} else {
		lo, okLo = coef*s.hi, s.hasHi
		hi, okHi = coef*s.lo, s.hasLo
	}
	if !okLo {
		lo = 0
	}
	if !okHi {
		hi = 0
	}
	return
}

func tightenLo(s *span, v int64) bool {
	if !s.hasLo || v > s.lo {
		s.lo = v
		s.hasLo = true
		return true
	}
	return false
}

func tightenHi(s *span, v int64) bool {
	if !s.hasHi || v < s.hi {
		s.hi = v
		s.hasHi = true
		return true
	}
	return false
}

// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package edsl

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/loom-ml/loom/types/dtypes"
	"github.com/loom-ml/loom/types/shapes"
	"github.com/loom-ml/loom/types/xslices"
)

// Program is an assembled computation: the nodes reachable from a set of
// requested outputs, deduplicated, with inputs ordered and argument names
// made unique. Programs are immutable and safe for concurrent use; they
// reference graph nodes but do not own them.
type Program struct {
	name    string
	id      string
	outputs []*Tensor
	inputs  []*Tensor
	nodes   []*Node // constants first, then the rest in dependency order
	argName map[*Node]string

	floatx, intx dtypes.DType
	override     map[*Node]dtypes.DType // effective dtypes differing from build-time ones
}

type buildConfig struct {
	floatx, intx dtypes.DType
}

// BuildOption configures program assembly.
type BuildOption func(*buildConfig)

// FloatX elevates every floating-point constant literal below the given
// precision to it. Placeholder dtypes are never touched.
func FloatX(dt dtypes.DType) BuildOption {
	return func(cfg *buildConfig) { cfg.floatx = dt }
}

// IntX elevates every integer constant literal below the given precision to
// it. A negative literal against an unsigned precision is rejected.
func IntX(dt dtypes.DType) BuildOption {
	return func(cfg *buildConfig) { cfg.intx = dt }
}

// Build assembles the given outputs into a Program. The same tensor may be
// requested several times; it appears that many times in the output list but
// is computed once. Build panics with an AssemblyError when the outputs span
// graphs, the list is empty, or a reachable node cannot be fully resolved.
func Build(name string, outputs ...*Tensor) *Program {
	return BuildWith(name, outputs)
}

// BuildWith is Build with assembly options.
func BuildWith(name string, outputs []*Tensor, options ...BuildOption) *Program {
	var cfg buildConfig
	for _, opt := range options {
		opt(&cfg)
	}
	if len(outputs) == 0 {
		assemblyErrorf("program %q has no outputs", name)
	}
	g := outputs[0].node.g
	for _, o := range outputs {
		if o.node.g != g {
			assemblyErrorf("program %q mixes outputs from different graphs", name)
		}
	}

	p := &Program{
		name:    name,
		id:      uuid.NewString(),
		outputs: append([]*Tensor(nil), outputs...),
		argName: make(map[*Node]string),
		floatx:  cfg.floatx,
		intx:    cfg.intx,
	}

	// One depth-first walk from the outputs, descending operands last to
	// first: placeholders are collected in pre-order discovery (fixing the
	// argument order), everything else in post-order (fixing a dependency
	// order for emission and evaluation).
	visited := make(map[*Node]bool)
	var placeholders []*Tensor
	var postOrder []*Node
	var visit func(t *Tensor)
	visit = func(t *Tensor) {
		n := t.node
		if visited[n] {
			return
		}
		visited[n] = true
		if n.op == OpPlaceholder {
			placeholders = append(placeholders, t)
			return
		}
		for i := len(n.inputs) - 1; i >= 0; i-- {
			visit(n.inputs[i])
		}
		postOrder = append(postOrder, n)
	}
	for _, o := range outputs {
		visit(o)
	}
	p.inputs = placeholders

	// Constants float to the front; the remaining post-order is already
	// topological since constants have no operands.
	for _, n := range postOrder {
		if n.op == OpConstant {
			p.nodes = append(p.nodes, n)
		}
	}
	for _, n := range postOrder {
		if n.op != OpConstant {
			p.nodes = append(p.nodes, n)
		}
	}

	p.nameArguments()
	p.applyOverrides()
	p.validate()
	return p
}

// nameArguments assigns unique display names in discovery order: the
// user-supplied name where present (a positional one otherwise), suffixed
// with a counter on collision, so four placeholders named A,B,C,C become
// A, B, C and C_0.
func (p *Program) nameArguments() {
	used := make(map[string]bool, len(p.inputs))
	for i, in := range p.inputs {
		base := in.node.name
		if base == "" {
			base = fmt.Sprintf("X%d", i)
		}
		name := base
		for k := 0; used[name]; k++ {
			name = fmt.Sprintf("%s_%d", base, k)
		}
		used[name] = true
		p.argName[in.node] = name
	}
}

// applyOverrides computes the effective dtype of every node under the
// FloatX/IntX options. Elevated constants stop behaving as adaptive
// literals, so downstream dtypes are re-resolved with plain promotion joins.
func (p *Program) applyOverrides() {
	if p.floatx == dtypes.InvalidDType && p.intx == dtypes.InvalidDType {
		return
	}
	if p.floatx != dtypes.InvalidDType && !p.floatx.IsFloat() {
		typeErrorf("FloatX override %s is not a floating dtype", p.floatx)
	}
	if p.intx != dtypes.InvalidDType && !p.intx.IsInt() {
		typeErrorf("IntX override %s is not an integer dtype", p.intx)
	}
	p.override = make(map[*Node]dtypes.DType)

	eff := func(t *Tensor) dtypes.DType {
		if dt, ok := p.override[t.node]; ok {
			return dt
		}
		return t.DType()
	}

	// p.nodes is in dependency order, so operand dtypes resolve before use.
	for _, n := range p.nodes {
		var dt dtypes.DType
		switch {
		case n.op == OpConstant:
			dt = p.elevatedConstDType(n)
		case n.op.IsComparison():
			dt = dtypes.Bool
		case n.op.IsBinaryElementwise():
			dt = p.effBinaryDType(n.inputs[0], n.inputs[1], eff)
		case n.op == OpSelect:
			dt = p.effBinaryDType(n.inputs[1], n.inputs[2], eff)
		case floatUnaryOps.Has(n.op):
			dt = eff(n.inputs[0])
			if !dt.IsFloat() {
				dt = join(dtypes.Float32, dt)
			}
		case n.op == OpNeg || n.op == OpAbs || n.op == OpReshape || n.op == OpTrace:
			dt = eff(n.inputs[0])
		case n.op == OpNot:
			dt = dtypes.Bool
		case n.op == OpCast || n.op == OpShapeOf || n.op == OpIndexValues || n.op == OpPrng:
			continue // fixed dtypes, never affected by constant elevation
		case n.op == OpContraction:
			spec := n.spec
			switch spec.Combine {
			case CombineMul:
				dt = join(eff(n.inputs[spec.Srcs[0].Operand]), eff(n.inputs[spec.Srcs[1].Operand]))
			case CombineCond:
				dt = eff(n.inputs[spec.Srcs[2].Operand])
			default:
				dt = eff(n.inputs[spec.Srcs[0].Operand])
			}
			if spec.HasDefault {
				if def := eff(xslices.Last(n.inputs)); def != dt {
					typeErrorf("dtype override leaves contraction default as %s but result as %s", def, dt)
				}
			}
		default:
			continue
		}
		if dt != n.outputs[0].DType {
			p.override[n] = dt
		}
	}
}

// effBinaryDType re-resolves a binary operand pair under the override map.
// A literal the override left alone keeps adapting to the other operand's
// effective dtype; only an elevated literal stops adapting and contributes
// its own dtype to the promotion join.
func (p *Program) effBinaryDType(a, b *Tensor, eff func(*Tensor) dtypes.DType) dtypes.DType {
	_, aElevated := p.override[a.node]
	_, bElevated := p.override[b.node]
	aAdapts := a.isLiteral() && !aElevated
	bAdapts := b.isLiteral() && !bElevated
	switch {
	case aAdapts && !bAdapts:
		return literalAgainst(a.node, eff(b))
	case bAdapts && !aAdapts:
		return literalAgainst(b.node, eff(a))
	default:
		return join(eff(a), eff(b))
	}
}

func (p *Program) elevatedConstDType(n *Node) dtypes.DType {
	natural := n.outputs[0].DType
	switch n.lit {
	case litInt:
		if p.intx == dtypes.InvalidDType {
			return natural
		}
		ni, no := dtypes.PromotionRank(natural), dtypes.PromotionRank(p.intx)
		if no < ni {
			typeErrorf("IntX %s would narrow the %s literal %d", p.intx, natural, n.i64)
		}
		if n.i64 < 0 && p.intx.IsUnsigned() {
			typeErrorf("negative literal %d cannot take unsigned override %s", n.i64, p.intx)
		}
		return p.intx
	case litFloat:
		if p.floatx == dtypes.InvalidDType {
			return natural
		}
		ni, no := dtypes.PromotionRank(natural), dtypes.PromotionRank(p.floatx)
		if no < ni {
			typeErrorf("FloatX %s would narrow the %s literal %g", p.floatx, natural, n.f64)
		}
		return p.floatx
	}
	return natural
}

// validate runs the whole-DAG checks: everything reachable must have
// resolved shapes, and assign contractions must provably write every output
// cell exactly once unless a default or no_reduce says otherwise.
func (p *Program) validate() {
	check := func(n *Node) {
		for _, s := range n.outputs {
			if !s.Ok() {
				assemblyErrorf("node %s has unresolved shape %s", n, s)
			}
		}
	}
	for _, in := range p.inputs {
		check(in.node)
	}
	for _, n := range p.nodes {
		check(n)
		if n.op == OpContraction {
			p.checkAssignWrites(n)
		}
	}
}

func (p *Program) checkAssignWrites(n *Node) {
	spec := n.spec
	if spec.Agg != AggAssign || spec.NoReduce || spec.HasDefault {
		return
	}
	inSink := make([]bool, spec.NumIndices)
	seen := make([]bool, spec.NumIndices)
	for a, e := range spec.Sink {
		for i, c := range e.Coefs {
			if c != 0 {
				inSink[i] = true
			}
		}
		v, bare := e.IsBare()
		if !bare || seen[v] {
			assemblyErrorf("assign contraction %s cannot be shown to write every output cell; use UseDefault or NoReduce", n)
		}
		seen[v] = true
		b := spec.Bounds[v]
		if b.Lo != 0 || b.Hi != int64(n.outputs[0].Dimensions[a]) {
			assemblyErrorf("assign contraction %s leaves cells of output axis %d unwritten; use UseDefault or NoReduce", n, a)
		}
	}
	for i := 0; i < spec.NumIndices; i++ {
		if !inSink[i] && spec.Bounds[i].Size() > 1 {
			assemblyErrorf("assign contraction %s writes some output cells more than once; use Sum/Max/Min or NoReduce", n)
		}
	}
}

// Name returns the program's name as given to Build.
func (p *Program) Name() string { return p.name }

// ID returns the unique id assigned at assembly.
func (p *Program) ID() string { return p.id }

// Outputs returns the requested outputs in order, duplicates preserved. The
// returned slice is owned by the program.
func (p *Program) Outputs() []*Tensor { return p.outputs }

// Inputs returns the distinct placeholders reachable from the outputs, in
// signature order. The returned slice is owned by the program.
func (p *Program) Inputs() []*Tensor { return p.inputs }

// Nodes returns the non-placeholder nodes in evaluation order: constants
// first, then every other node after its operands. The returned slice is
// owned by the program.
func (p *Program) Nodes() []*Node { return p.nodes }

// ArgName returns the unique display name assigned to a placeholder input,
// or "" if the node is not one of the program's inputs.
func (p *Program) ArgName(n *Node) string { return p.argName[n] }

// TensorShape returns the effective shape of a tensor inside this program,
// with any FloatX/IntX dtype elevation applied. Dimensions never change.
func (p *Program) TensorShape(t *Tensor) shapes.Shape {
	return p.NodeShape(t.node, t.out)
}

// NodeShape returns the effective shape of a node's i-th output inside this
// program. Dtype elevation only ever applies to output 0; prng's state output
// keeps its build-time dtype.
func (p *Program) NodeShape(n *Node, i int) shapes.Shape {
	dt, ok := p.override[n]
	if !ok || i != 0 {
		return n.outputs[i]
	}
	return shapes.Shape{DType: dt, Dimensions: n.outputs[i].Dimensions}
}

// ConstantValue materializes a constant node's scalar as a Go value of its
// effective dtype in this program.
func (p *Program) ConstantValue(n *Node) any {
	dt := n.outputs[0].DType
	if o, ok := p.override[n]; ok {
		dt = o
	}
	switch n.lit {
	case litBool:
		return n.b
	case litInt:
		return intAsDType(n.i64, dt)
	case litFloat:
		return floatAsDType(n.f64, dt)
	}
	assemblyErrorf("node %s is not a constant", n)
	return nil
}

// NumOperations returns how many non-placeholder operations the program
// evaluates.
func (p *Program) NumOperations() int { return len(p.nodes) }

// MemoryEstimate returns the bytes needed to hold every input and output
// buffer once, a rough lower bound used for reporting.
func (p *Program) MemoryEstimate() uintptr {
	var total uintptr
	for _, in := range p.inputs {
		total += p.TensorShape(in).Memory()
	}
	for _, out := range p.outputs {
		total += p.TensorShape(out).Memory()
	}
	return total
}

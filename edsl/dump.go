// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package edsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loom-ml/loom/types/xslices"
)

// String renders the program as a deterministic textual dump: the signature
// in input discovery order, the body in evaluation order with constants
// hoisted to the top, one operation per line, terminated by the return of
// the output references. The same trace always produces the same text, which
// is what the golden tests pin down; the syntax itself has no compatibility
// promise.
func (p *Program) String() string {
	ref := make(map[*Node]string, len(p.nodes)+len(p.inputs))
	for _, in := range p.inputs {
		ref[in.node] = "%" + p.argName[in.node]
	}
	for i, n := range p.nodes {
		ref[n] = "%" + strconv.Itoa(i)
	}
	refOf := func(t *Tensor) string {
		if t.node.NumOutputs() > 1 {
			return fmt.Sprintf("%s#%d", ref[t.node], t.out)
		}
		return ref[t.node]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "program @%s(", p.name)
	if len(p.inputs) > 0 {
		sb.WriteByte('\n')
		for i, in := range p.inputs {
			fmt.Fprintf(&sb, "  %%%s: %s", p.argName[in.node], p.TensorShape(in))
			if i < len(p.inputs)-1 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\n')
		}
	}
	sb.WriteString(") -> (")
	sb.WriteString(strings.Join(xslices.Map(p.outputs, func(o *Tensor) string {
		return p.TensorShape(o).String()
	}), ", "))
	sb.WriteString(") {\n")
	for _, n := range p.nodes {
		p.writeNode(&sb, refOf, ref[n], n)
	}
	sb.WriteString("  return ")
	for i, o := range p.outputs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(refOf(o))
	}
	sb.WriteString("\n}\n")
	return sb.String()
}

func (p *Program) writeNode(sb *strings.Builder, refOf func(*Tensor) string, self string, n *Node) {
	sb.WriteString("  ")
	switch n.op {
	case OpConstant:
		fmt.Fprintf(sb, "%s = constant %s : %s", self, n.literalString(), p.TensorShape(&Tensor{node: n}))
	case OpPrng:
		fmt.Fprintf(sb, "%s:2 = prng(%s) : (%s, %s)",
			self, refOf(n.inputs[0]), n.outputs[0], n.outputs[1])
	case OpIndexValues:
		fmt.Fprintf(sb, "%s = index_values(%s, axis=%d) : %s",
			self, refOf(n.inputs[0]), n.axis, n.outputs[0])
	case OpTrace:
		fmt.Fprintf(sb, "%s = trace(%s, %q) : %s",
			self, refOf(n.inputs[0]), n.msg, p.TensorShape(&Tensor{node: n}))
	case OpContraction:
		p.writeContraction(sb, refOf, self, n)
	default:
		args := make([]string, len(n.inputs))
		for i, in := range n.inputs {
			args[i] = refOf(in)
		}
		fmt.Fprintf(sb, "%s = %s(%s) : %s",
			self, n.op, strings.Join(args, ", "), p.TensorShape(&Tensor{node: n}))
	}
	sb.WriteByte('\n')
}

func (p *Program) writeContraction(sb *strings.Builder, refOf func(*Tensor) string, self string, n *Node) {
	spec := n.spec
	fmt.Fprintf(sb, "%s = contract<%s, %s>[", self, spec.Agg, spec.Combine)
	for i, sa := range spec.Srcs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(refOf(n.inputs[sa.Operand]))
		sb.WriteByte('{')
		for j, e := range sa.Coords {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.String())
		}
		sb.WriteByte('}')
	}
	sb.WriteString("] -> {")
	for i, e := range spec.Sink {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteString("} bounds={")
	for i, b := range spec.Bounds {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "d%d: %s", i, b)
	}
	sb.WriteByte('}')
	if len(spec.Constraints) > 0 {
		sb.WriteString(" where {")
		for i, row := range spec.Constraints {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%s >= 0", row)
		}
		sb.WriteByte('}')
	}
	if spec.NoReduce {
		sb.WriteString(" no_reduce")
	}
	if spec.HasDefault {
		fmt.Fprintf(sb, " default=%s", refOf(n.inputs[len(n.inputs)-1]))
	}
	fmt.Fprintf(sb, " : %s", p.TensorShape(&Tensor{node: n}))
}

func (n *Node) literalString() string {
	switch n.lit {
	case litInt:
		return strconv.FormatInt(n.i64, 10)
	case litFloat:
		return strconv.FormatFloat(n.f64, 'g', -1, 64)
	case litBool:
		return strconv.FormatBool(n.b)
	}
	return "?"
}

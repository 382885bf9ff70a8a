// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package interp

import (
	"reflect"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/loom-ml/loom/backends"
	"github.com/loom-ml/loom/edsl"
	"github.com/loom-ml/loom/types/dtypes"
	"github.com/loom-ml/loom/types/shapes"
)

// Executable implements backends.Executable: one program with its bound
// argument and output buffers. Argument buffers are stable across runs;
// output buffers are rewritten by each Run.
type Executable struct {
	prog      *edsl.Program
	argNames  []string
	argShapes []shapes.Shape
	args      map[string]*buffer
	argByNode map[*edsl.Node]*buffer
	outputs   []*buffer
	finalized bool
}

func newExecutable(p *edsl.Program) *Executable {
	e := &Executable{
		prog:      p,
		args:      make(map[string]*buffer),
		argByNode: make(map[*edsl.Node]*buffer),
	}
	for _, in := range p.Inputs() {
		name := p.ArgName(in.Node())
		shape := p.TensorShape(in)
		buf := newBuffer(shape)
		e.argNames = append(e.argNames, name)
		e.argShapes = append(e.argShapes, shape)
		e.args[name] = buf
		e.argByNode[in.Node()] = buf
	}
	for _, out := range p.Outputs() {
		e.outputs = append(e.outputs, newBuffer(p.TensorShape(out)))
	}
	return e
}

// Inputs implements backends.Executable.
func (e *Executable) Inputs() (names []string, argShapes []shapes.Shape) {
	return e.argNames, e.argShapes
}

// Outputs implements backends.Executable.
func (e *Executable) Outputs() []shapes.Shape {
	out := make([]shapes.Shape, len(e.outputs))
	for i, b := range e.outputs {
		out[i] = b.shape
	}
	return out
}

// BindInput implements backends.Executable.
func (e *Executable) BindInput(name string) (backends.Buffer, error) {
	if e.finalized {
		return nil, errors.Errorf("executable %q already finalized", e.prog.Name())
	}
	buf, ok := e.args[name]
	if !ok {
		return nil, errors.Errorf("program %q has no input named %q; inputs are: %s",
			e.prog.Name(), name, strings.Join(e.argNames, ", "))
	}
	return buf, nil
}

// BindOutput implements backends.Executable.
func (e *Executable) BindOutput(i int) (backends.Buffer, error) {
	if e.finalized {
		return nil, errors.Errorf("executable %q already finalized", e.prog.Name())
	}
	if i < 0 || i >= len(e.outputs) {
		return nil, errors.Errorf("program %q has %d outputs, requested output #%d",
			e.prog.Name(), len(e.outputs), i)
	}
	return e.outputs[i], nil
}

// Finalize implements backends.Executable.
func (e *Executable) Finalize() {
	e.finalized = true
	e.args = nil
	e.argByNode = nil
	e.outputs = nil
}

// Run implements backends.Executable, evaluating every node in dependency
// order and copying the requested outputs into the bound output buffers.
// Runtime faults (integer division by zero, negative shift counts) surface
// as errors, not panics.
func (e *Executable) Run() (err error) {
	if e.finalized {
		return errors.Errorf("executable %q already finalized", e.prog.Name())
	}
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = errors.WithMessagef(rerr, "running program %q", e.prog.Name())
			} else {
				err = errors.Errorf("running program %q: %v", e.prog.Name(), r)
			}
		}
	}()

	vals := make(map[*edsl.Node][]*buffer, len(e.prog.Nodes())+len(e.argNames))
	for _, in := range e.prog.Inputs() {
		vals[in.Node()] = []*buffer{e.argByNode[in.Node()]}
	}
	for _, n := range e.prog.Nodes() {
		vals[n] = e.evalNode(n, vals)
	}
	for i, out := range e.prog.Outputs() {
		src := vals[out.Node()][out.OutputIndex()]
		reflect.Copy(reflect.ValueOf(e.outputs[i].data), reflect.ValueOf(src.data))
	}
	return nil
}

// evalNode computes one node's outputs. Operand buffers are never written,
// so pass-through ops may alias them.
func (e *Executable) evalNode(n *edsl.Node, vals map[*edsl.Node][]*buffer) []*buffer {
	get := func(t *edsl.Tensor) *buffer {
		bufs, ok := vals[t.Node()]
		if !ok {
			exceptions.Panicf("interp: node %s evaluated before its operand %s", n, t.Node())
		}
		return bufs[t.OutputIndex()]
	}
	out := e.prog.NodeShape(n, 0)

	switch op := n.Op(); {
	case op == edsl.OpConstant:
		b := newBuffer(out)
		b.fill(e.prog.ConstantValue(n))
		return []*buffer{b}

	case op == edsl.OpCast:
		dst := newBuffer(out)
		convert(get(n.Inputs()[0]), dst)
		return []*buffer{dst}

	case op == edsl.OpReshape:
		return []*buffer{get(n.Inputs()[0]).withShape(out)}

	case op == edsl.OpShapeOf:
		in := e.prog.TensorShape(n.Inputs()[0])
		b := newBuffer(out)
		d := b.data.([]int32)
		for i, dim := range in.Dimensions {
			d[i] = int32(dim)
		}
		return []*buffer{b}

	case op == edsl.OpIndexValues:
		return []*buffer{evalIndexValues(out, n.Axis())}

	case op == edsl.OpTrace:
		src := get(n.Inputs()[0])
		klog.Infof("trace %q: %s = %v", n.Message(), src.shape, src.data)
		return []*buffer{src}

	case op == edsl.OpPrng:
		values, state := evalPrng(get(n.Inputs()[0]), out, e.prog.NodeShape(n, 1))
		return []*buffer{values, state}

	case op == edsl.OpContraction:
		return []*buffer{e.evalContraction(n, get)}

	case op == edsl.OpSelect:
		return []*buffer{e.evalSelect(n, get)}

	case op.IsBinaryElementwise():
		return []*buffer{e.evalBinary(n, get)}

	case op.IsUnaryElementwise():
		return []*buffer{e.evalUnary(n, get)}
	}
	exceptions.Panicf("interp: op %s has no evaluator", n.Op())
	return nil
}

func evalIndexValues(out shapes.Shape, axis int) *buffer {
	b := newBuffer(out)
	d := b.data.([]int32)
	i := 0
	for idx := range out.Iter() {
		d[i] = int32(idx[axis])
		i++
	}
	return b
}

// comparisonDType mirrors graph-time operand resolution for comparisons,
// whose node only records the Bool result: a scalar constant adopts the other
// side's dtype, otherwise the pair promotes.
func (e *Executable) comparisonDType(n *edsl.Node) dtypes.DType {
	a, b := n.Inputs()[0], n.Inputs()[1]
	da := e.prog.TensorShape(a).DType
	db := e.prog.TensorShape(b).DType
	if da == db {
		return da
	}
	aConst := a.Node().Op() == edsl.OpConstant
	bConst := b.Node().Op() == edsl.OpConstant
	switch {
	case aConst && !bConst:
		return db
	case bConst && !aConst:
		return da
	}
	return dtypes.MustPromote(da, db)
}

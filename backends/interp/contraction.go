// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package interp

import (
	"github.com/gomlx/exceptions"

	"github.com/loom-ml/loom/edsl"
	"github.com/loom-ml/loom/types/dtypes"
	"github.com/loom-ml/loom/types/shapes"
	"github.com/loom-ml/loom/types/xslices"
)

// layout is the precomputed geometry of one contraction: the sink and source
// affine maps with the dimensions and row-major strides they index into. The
// inferred bounds box over-approximates the true domain, so evaluation must
// still drop points whose computed coordinates leave any axis, in addition
// to filtering by the explicit constraint rows.
type layout struct {
	bounds []edsl.IndexBound
	cons   []edsl.AffineExpr

	sink       []edsl.AffineExpr
	outDims    []int64
	outStrides []int64

	parts []partLayout
}

type partLayout struct {
	coords  []edsl.AffineExpr
	dims    []int64
	strides []int64
}

func rowMajor(dims []int) (d, s []int64) {
	d = make([]int64, len(dims))
	s = make([]int64, len(dims))
	stride := int64(1)
	for axis := len(dims) - 1; axis >= 0; axis-- {
		d[axis] = int64(dims[axis])
		s[axis] = stride
		stride *= d[axis]
	}
	return d, s
}

func buildLayout(spec *edsl.ContractionSpec, outShape shapes.Shape, srcs []*buffer) *layout {
	lay := &layout{
		bounds: spec.Bounds,
		cons:   spec.Constraints,
		sink:   spec.Sink,
	}
	lay.outDims, lay.outStrides = rowMajor(outShape.Dimensions)
	lay.parts = make([]partLayout, len(spec.Srcs))
	for i, sa := range spec.Srcs {
		p := partLayout{coords: sa.Coords}
		p.dims, p.strides = rowMajor(srcs[i].shape.Dimensions)
		lay.parts[i] = p
	}
	return lay
}

// offset evaluates an affine coordinate tuple at a point, returning the flat
// row-major offset, or ok=false when any coordinate leaves its axis.
func offset(coords []edsl.AffineExpr, dims, strides []int64, point []int64) (off int64, ok bool) {
	for a, expr := range coords {
		c := expr.Eval(point)
		if c < 0 || c >= dims[a] {
			return 0, false
		}
		off += c * strides[a]
	}
	return off, true
}

func (e *Executable) evalContraction(n *edsl.Node, get func(*edsl.Tensor) *buffer) *buffer {
	spec := n.ContractionSpec()
	outShape := e.prog.NodeShape(n, 0)
	inputs := n.Inputs()

	srcs := make([]*buffer, len(spec.Srcs))
	for i, sa := range spec.Srcs {
		srcs[i] = get(inputs[sa.Operand])
	}
	lay := buildLayout(spec, outShape, srcs)

	// Value operands compute in the result's kernel dtype; the compared pair
	// of a cond combiner computes in its own promoted dtype.
	kdt := kernelDType(outShape.DType)
	var vals []*buffer
	var condEq func(i, j int64) bool
	switch spec.Combine {
	case edsl.CombineCond:
		cmpDT := kernelDType(dtypes.MustPromote(srcs[0].shape.DType, srcs[1].shape.DType))
		condEq = eqFunc(cast(srcs[0], cmpDT), cast(srcs[1], cmpDT))
		vals = []*buffer{cast(srcs[2], kdt)}
	case edsl.CombineMul:
		vals = []*buffer{cast(srcs[0], kdt), cast(srcs[1], kdt)}
	default:
		vals = []*buffer{cast(srcs[0], kdt)}
	}

	var def *buffer
	if spec.HasDefault {
		def = cast(get(xslices.Last(inputs)), kdt)
	}

	work := newBuffer(shapes.Shape{DType: kdt, Dimensions: outShape.Dimensions})
	touched := make([]bool, outShape.Size())

	switch kdt {
	case dtypes.Int8:
		contractCase[int8](spec, lay, kdt, work, touched, vals, condEq, def)
	case dtypes.Int16:
		contractCase[int16](spec, lay, kdt, work, touched, vals, condEq, def)
	case dtypes.Int32:
		contractCase[int32](spec, lay, kdt, work, touched, vals, condEq, def)
	case dtypes.Int64:
		contractCase[int64](spec, lay, kdt, work, touched, vals, condEq, def)
	case dtypes.Uint8:
		contractCase[uint8](spec, lay, kdt, work, touched, vals, condEq, def)
	case dtypes.Uint16:
		contractCase[uint16](spec, lay, kdt, work, touched, vals, condEq, def)
	case dtypes.Uint32:
		contractCase[uint32](spec, lay, kdt, work, touched, vals, condEq, def)
	case dtypes.Uint64:
		contractCase[uint64](spec, lay, kdt, work, touched, vals, condEq, def)
	case dtypes.Float32:
		contractCase[float32](spec, lay, kdt, work, touched, vals, condEq, def)
	case dtypes.Float64:
		contractCase[float64](spec, lay, kdt, work, touched, vals, condEq, def)
	default:
		exceptions.Panicf("interp: contraction has no kernel for dtype %s", kdt)
	}

	if kdt == outShape.DType {
		return work
	}
	out := newBuffer(outShape)
	convert(work, out)
	return out
}

func contractCase[T dtypes.Number](spec *edsl.ContractionSpec, lay *layout, dt dtypes.DType,
	work *buffer, touched []bool, vals []*buffer, condEq func(i, j int64) bool, def *buffer) {
	tv := make([][]T, len(vals))
	for i, v := range vals {
		tv[i] = v.data.([]T)
	}
	var td []T
	if def != nil {
		td = def.data.([]T)
	}
	contractLoop(spec, lay, dt, work.data.([]T), touched, tv, condEq, td)
}

// contractLoop walks the inferred bounds box. At every surviving point the
// combined source value aggregates into its sink cell; cells no point ever
// reaches take the default when there is one, and the aggregation identity
// (zero for add and assign, the dtype's extremes for max and min) otherwise.
func contractLoop[T dtypes.Number](spec *edsl.ContractionSpec, lay *layout, dt dtypes.DType,
	work []T, touched []bool, vals [][]T, condEq func(i, j int64) bool, def []T) {
	nIdx := spec.NumIndices
	point := make([]int64, nIdx)
	empty := false
	for i := range point {
		point[i] = lay.bounds[i].Lo
		if lay.bounds[i].Size() <= 0 {
			empty = true
		}
	}

	offs := make([]int64, len(lay.parts))
	for !empty {
		if admits(lay.cons, point) {
			sinkOff, ok := offset(lay.sink, lay.outDims, lay.outStrides, point)
			for i := range lay.parts {
				if !ok {
					break
				}
				p := &lay.parts[i]
				offs[i], ok = offset(p.coords, p.dims, p.strides, point)
			}
			if ok {
				var v T
				contributes := true
				switch spec.Combine {
				case edsl.CombineCond:
					if condEq(offs[0], offs[1]) {
						v = vals[0][offs[2]]
					} else {
						contributes = false
					}
				case edsl.CombineMul:
					v = vals[0][offs[0]] * vals[1][offs[1]]
				default:
					v = vals[0][offs[0]]
				}
				if contributes {
					cur := work[sinkOff]
					switch spec.Agg {
					case edsl.AggAdd:
						work[sinkOff] = cur + v
					case edsl.AggMax:
						if !touched[sinkOff] || v > cur {
							work[sinkOff] = v
						}
					case edsl.AggMin:
						if !touched[sinkOff] || v < cur {
							work[sinkOff] = v
						}
					default: // assign
						work[sinkOff] = v
					}
					touched[sinkOff] = true
				}
			}
		}

		// Advance the point like an odometer over the bounds box.
		k := nIdx - 1
		for ; k >= 0; k-- {
			point[k]++
			if point[k] < lay.bounds[k].Hi {
				break
			}
			point[k] = lay.bounds[k].Lo
		}
		if k < 0 {
			break
		}
	}

	switch {
	case def != nil:
		for i := range work {
			if !touched[i] {
				work[i] = def[i]
			}
		}
	case spec.Agg == edsl.AggMax:
		fillUntouched(work, touched, dt.LowestValue())
	case spec.Agg == edsl.AggMin:
		fillUntouched(work, touched, dt.HighestValue())
	}
}

func fillUntouched[T dtypes.Number](work []T, touched []bool, identity any) {
	id := identity.(T)
	for i := range work {
		if !touched[i] {
			work[i] = id
		}
	}
}

func admits(cons []edsl.AffineExpr, point []int64) bool {
	for _, row := range cons {
		if row.Eval(point) < 0 {
			return false
		}
	}
	return true
}

// eqFunc builds the equality test of a cond combiner over the compared pair,
// already cast to a common kernel dtype.
func eqFunc(a, b *buffer) func(i, j int64) bool {
	switch x := a.data.(type) {
	case []int8:
		y := b.data.([]int8)
		return func(i, j int64) bool { return x[i] == y[j] }
	case []int16:
		y := b.data.([]int16)
		return func(i, j int64) bool { return x[i] == y[j] }
	case []int32:
		y := b.data.([]int32)
		return func(i, j int64) bool { return x[i] == y[j] }
	case []int64:
		y := b.data.([]int64)
		return func(i, j int64) bool { return x[i] == y[j] }
	case []uint8:
		y := b.data.([]uint8)
		return func(i, j int64) bool { return x[i] == y[j] }
	case []uint16:
		y := b.data.([]uint16)
		return func(i, j int64) bool { return x[i] == y[j] }
	case []uint32:
		y := b.data.([]uint32)
		return func(i, j int64) bool { return x[i] == y[j] }
	case []uint64:
		y := b.data.([]uint64)
		return func(i, j int64) bool { return x[i] == y[j] }
	case []float32:
		y := b.data.([]float32)
		return func(i, j int64) bool { return x[i] == y[j] }
	case []float64:
		y := b.data.([]float64)
		return func(i, j int64) bool { return x[i] == y[j] }
	}
	exceptions.Panicf("interp: cond comparison has no kernel for dtype %s", a.shape.DType)
	return nil
}

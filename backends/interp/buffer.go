// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package interp

import (
	"reflect"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/loom-ml/loom/types/dtypes"
	"github.com/loom-ml/loom/types/dtypes/bfloat16"
	"github.com/loom-ml/loom/types/shapes"
	"github.com/loom-ml/loom/types/xslices"
)

// buffer is the interpreter's tensor storage: a flat row-major slice typed
// per dtype. It implements backends.Buffer.
type buffer struct {
	shape shapes.Shape
	data  any
}

func newBuffer(shape shapes.Shape) *buffer {
	n := shape.Size()
	var data any
	switch shape.DType {
	case dtypes.Bool:
		data = make([]bool, n)
	case dtypes.Int8:
		data = make([]int8, n)
	case dtypes.Int16:
		data = make([]int16, n)
	case dtypes.Int32:
		data = make([]int32, n)
	case dtypes.Int64:
		data = make([]int64, n)
	case dtypes.Uint8:
		data = make([]uint8, n)
	case dtypes.Uint16:
		data = make([]uint16, n)
	case dtypes.Uint32:
		data = make([]uint32, n)
	case dtypes.Uint64:
		data = make([]uint64, n)
	case dtypes.Float16:
		data = make([]float16.Float16, n)
	case dtypes.BFloat16:
		data = make([]bfloat16.BFloat16, n)
	case dtypes.Float32:
		data = make([]float32, n)
	case dtypes.Float64:
		data = make([]float64, n)
	default:
		exceptions.Panicf("interp: cannot allocate buffer for dtype %s", shape.DType)
	}
	return &buffer{shape: shape, data: data}
}

// Shape implements backends.Buffer.
func (b *buffer) Shape() shapes.Shape { return b.shape }

// Flat implements backends.Buffer, returning the backing slice.
func (b *buffer) Flat() any { return b.data }

// CopyFrom implements backends.Buffer.
func (b *buffer) CopyFrom(flat any) error {
	src := reflect.ValueOf(flat)
	if err := b.checkFlat(src); err != nil {
		return err
	}
	reflect.Copy(reflect.ValueOf(b.data), src)
	return nil
}

// CopyTo implements backends.Buffer.
func (b *buffer) CopyTo(flat any) error {
	dst := reflect.ValueOf(flat)
	if err := b.checkFlat(dst); err != nil {
		return err
	}
	reflect.Copy(dst, reflect.ValueOf(b.data))
	return nil
}

func (b *buffer) checkFlat(v reflect.Value) error {
	if v.Kind() != reflect.Slice {
		return errors.Errorf("buffer of %s: flat data must be a slice, got %T", b.shape, v.Interface())
	}
	if dt := dtypes.FromGoType(v.Type().Elem()); dt != b.shape.DType {
		return errors.Errorf("buffer of %s: flat data has element type %s, want %s",
			b.shape, v.Type().Elem(), b.shape.DType)
	}
	if v.Len() != b.shape.Size() {
		return errors.Errorf("buffer of %s: flat data has %d elements, want %d",
			b.shape, v.Len(), b.shape.Size())
	}
	return nil
}

// withShape returns a view of the same storage under a different shape of
// equal size (reshape).
func (b *buffer) withShape(shape shapes.Shape) *buffer {
	return &buffer{shape: shape, data: b.data}
}

// fill sets every element to the given scalar, which must already have the
// buffer's Go type.
func (b *buffer) fill(v any) {
	switch s := b.data.(type) {
	case []bool:
		xslices.FillSlice(s, v.(bool))
	case []int8:
		xslices.FillSlice(s, v.(int8))
	case []int16:
		xslices.FillSlice(s, v.(int16))
	case []int32:
		xslices.FillSlice(s, v.(int32))
	case []int64:
		xslices.FillSlice(s, v.(int64))
	case []uint8:
		xslices.FillSlice(s, v.(uint8))
	case []uint16:
		xslices.FillSlice(s, v.(uint16))
	case []uint32:
		xslices.FillSlice(s, v.(uint32))
	case []uint64:
		xslices.FillSlice(s, v.(uint64))
	case []float16.Float16:
		xslices.FillSlice(s, v.(float16.Float16))
	case []bfloat16.BFloat16:
		xslices.FillSlice(s, v.(bfloat16.BFloat16))
	case []float32:
		xslices.FillSlice(s, v.(float32))
	case []float64:
		xslices.FillSlice(s, v.(float64))
	}
}

// convert fills dst from src, converting element by element. Integer
// narrowing is modular, float to integer truncates, anything to bool is
// v != 0, exactly Go's conversion semantics.
func convert(src, dst *buffer) {
	if src.shape.DType == dst.shape.DType {
		reflect.Copy(reflect.ValueOf(dst.data), reflect.ValueOf(src.data))
		return
	}
	switch s := src.data.(type) {
	case []bool:
		convertFromBool(s, dst)
	case []int8:
		convertFrom(s, dst)
	case []int16:
		convertFrom(s, dst)
	case []int32:
		convertFrom(s, dst)
	case []int64:
		convertFrom(s, dst)
	case []uint8:
		convertFrom(s, dst)
	case []uint16:
		convertFrom(s, dst)
	case []uint32:
		convertFrom(s, dst)
	case []uint64:
		convertFrom(s, dst)
	case []float16.Float16:
		convertVia(s, dst, float16.Float16.Float32)
	case []bfloat16.BFloat16:
		convertVia(s, dst, bfloat16.BFloat16.Float32)
	case []float32:
		convertFrom(s, dst)
	case []float64:
		convertFrom(s, dst)
	}
}

func convertSlice[S, D dtypes.Number](src []S, dst []D) {
	for i, v := range src {
		dst[i] = D(v)
	}
}

func convertFrom[S dtypes.Number](src []S, dst *buffer) {
	switch d := dst.data.(type) {
	case []bool:
		for i, v := range src {
			d[i] = v != 0
		}
	case []int8:
		convertSlice(src, d)
	case []int16:
		convertSlice(src, d)
	case []int32:
		convertSlice(src, d)
	case []int64:
		convertSlice(src, d)
	case []uint8:
		convertSlice(src, d)
	case []uint16:
		convertSlice(src, d)
	case []uint32:
		convertSlice(src, d)
	case []uint64:
		convertSlice(src, d)
	case []float16.Float16:
		for i, v := range src {
			d[i] = float16.Fromfloat32(float32(v))
		}
	case []bfloat16.BFloat16:
		for i, v := range src {
			d[i] = bfloat16.FromFloat32(float32(v))
		}
	case []float32:
		convertSlice(src, d)
	case []float64:
		convertSlice(src, d)
	}
}

func convertFromBool(src []bool, dst *buffer) {
	tmp := make([]int8, len(src))
	for i, v := range src {
		if v {
			tmp[i] = 1
		}
	}
	convertFrom(tmp, dst)
}

// convertVia converts from a 16-bit float representation through float32.
func convertVia[S any](src []S, dst *buffer, toF32 func(S) float32) {
	tmp := make([]float32, len(src))
	for i, v := range src {
		tmp[i] = toF32(v)
	}
	convertFrom(tmp, dst)
}

// cast returns src viewed in the given dtype, aliasing when it already
// matches.
func cast(src *buffer, dt dtypes.DType) *buffer {
	if src.shape.DType == dt {
		return src
	}
	dst := newBuffer(shapes.Shape{DType: dt, Dimensions: src.shape.Dimensions})
	convert(src, dst)
	return dst
}

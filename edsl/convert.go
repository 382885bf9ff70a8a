// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package edsl

import (
	"github.com/x448/float16"

	"github.com/loom-ml/loom/types/dtypes"
	"github.com/loom-ml/loom/types/dtypes/bfloat16"
)

func intAsDType(v int64, dt dtypes.DType) any {
	switch dt {
	case dtypes.Int8:
		return int8(v)
	case dtypes.Int16:
		return int16(v)
	case dtypes.Int32:
		return int32(v)
	case dtypes.Int64:
		return v
	case dtypes.Uint8:
		return uint8(v)
	case dtypes.Uint16:
		return uint16(v)
	case dtypes.Uint32:
		return uint32(v)
	case dtypes.Uint64:
		return uint64(v)
	case dtypes.Float16:
		return float16.Fromfloat32(float32(v))
	case dtypes.BFloat16:
		return bfloat16.FromFloat32(float32(v))
	case dtypes.Float32:
		return float32(v)
	case dtypes.Float64:
		return float64(v)
	}
	typeErrorf("integer literal %d cannot take dtype %s", v, dt)
	return nil
}

func floatAsDType(v float64, dt dtypes.DType) any {
	switch dt {
	case dtypes.Float16:
		return float16.Fromfloat32(float32(v))
	case dtypes.BFloat16:
		return bfloat16.FromFloat32(float32(v))
	case dtypes.Float32:
		return float32(v)
	case dtypes.Float64:
		return v
	}
	typeErrorf("floating literal %g cannot take dtype %s", v, dt)
	return nil
}

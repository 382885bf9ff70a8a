// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package edsl

import (
	"fmt"

	"github.com/pkg/errors"
)

// Building a graph raises errors eagerly, as panics carrying one of the typed
// errors below wrapped with a stack trace. They signal trace-time programming
// mistakes, not runtime failures: catch them with exceptions.Try and inspect
// with errors.As. Nothing here is deferred to execution.

// ShapeError reports a dimension mismatch: conflicting bindings, an unbound
// dimension at finalize time, a reshape size mismatch or a dimension that
// doesn't resolve to a non-negative size.
type ShapeError struct {
	Msg string
}

func (e *ShapeError) Error() string { return "shape error: " + e.Msg }

// RankError reports a wrong operand arity: BindDims with a slot count
// different from the tensor rank, or a contraction sink tuple whose arity
// doesn't match the declared output rank.
type RankError struct {
	Msg string
}

func (e *RankError) Error() string { return "rank error: " + e.Msg }

// TypeError reports an illegal dtype combination: bitwise ops on floats, a
// non-boolean select predicate, a negative literal against an unsigned dtype,
// or an incompatible build-time dtype override.
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string { return "type error: " + e.Msg }

// BroadcastError reports elementwise operands whose shapes cannot be
// broadcast together.
type BroadcastError struct {
	Msg string
}

func (e *BroadcastError) Error() string { return "broadcast error: " + e.Msg }

// UnboundIndexError reports an index variable used in a contraction with no
// derivable domain: no bare occurrence against a known axis and no bounding
// constraint.
type UnboundIndexError struct {
	Msg string
}

func (e *UnboundIndexError) Error() string { return "unbound index error: " + e.Msg }

// AssemblyError reports a program built from an unresolvable graph: no
// outputs, mixed graphs or a reachable node without a resolved shape/dtype.
type AssemblyError struct {
	Msg string
}

func (e *AssemblyError) Error() string { return "assembly error: " + e.Msg }

func shapeErrorf(format string, args ...any) {
	panic(errors.WithStack(&ShapeError{Msg: fmt.Sprintf(format, args...)}))
}

func rankErrorf(format string, args ...any) {
	panic(errors.WithStack(&RankError{Msg: fmt.Sprintf(format, args...)}))
}

func typeErrorf(format string, args ...any) {
	panic(errors.WithStack(&TypeError{Msg: fmt.Sprintf(format, args...)}))
}

func broadcastErrorf(format string, args ...any) {
	panic(errors.WithStack(&BroadcastError{Msg: fmt.Sprintf(format, args...)}))
}

func unboundIndexErrorf(format string, args ...any) {
	panic(errors.WithStack(&UnboundIndexError{Msg: fmt.Sprintf(format, args...)}))
}

func assemblyErrorf(format string, args ...any) {
	panic(errors.WithStack(&AssemblyError{Msg: fmt.Sprintf(format, args...)}))
}

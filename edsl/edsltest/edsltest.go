// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

// Package edsltest holds test utilities for packages that execute assembled
// programs: a lazily built shared backend and a build-run-compare helper.
package edsltest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loom-ml/loom/backends"
	_ "github.com/loom-ml/loom/backends/default"
	"github.com/loom-ml/loom/edsl"
)

// BuildFn traces a program under test: it creates its own placeholders on g
// and returns the outputs to assemble.
type BuildFn func(g *edsl.Graph) (outputs []*edsl.Tensor)

var (
	backendOnce   sync.Once
	cachedBackend backends.Backend
)

// BuildTestBackend returns the shared backend tests run against, defaulting
// to the interpreter. The LOOM_BACKEND environment variable overrides it.
func BuildTestBackend() backends.Backend {
	backends.DefaultConfig = "interp"
	backendOnce.Do(func() {
		cachedBackend = backends.MustNew()
		fmt.Printf("Backend: %s\n", cachedBackend.Description())
	})
	return cachedBackend
}

// RunTestProgram assembles the program traced by buildFn, feeds the named
// arguments from flat row-major slices, runs it on the test backend and
// compares every output against want (flat slices in output order; a nil
// entry checks only that the output exists, which threaded prng states use).
//
// delta is the acceptable difference on floating outputs; delta <= 0 demands
// exact equality.
func RunTestProgram(t *testing.T, name string, buildFn BuildFn, inputs map[string]any, want []any, delta float64) {
	t.Run(name, func(t *testing.T) {
		backend := BuildTestBackend()
		g := edsl.New()
		prog := edsl.Build(name, buildFn(g)...)
		exec, err := backend.Compile(prog)
		require.NoErrorf(t, err, "%s: compiling %s", name, prog.Name())
		defer exec.Finalize()

		for argName, flat := range inputs {
			buf, err := exec.BindInput(argName)
			require.NoErrorf(t, err, "%s: binding input %q", name, argName)
			require.NoErrorf(t, buf.CopyFrom(flat), "%s: filling input %q", name, argName)
		}
		require.NoErrorf(t, exec.Run(), "%s: running", name)

		outShapes := exec.Outputs()
		require.Equalf(t, len(want), len(outShapes),
			"%s: program has %d outputs, want lists %d", name, len(outShapes), len(want))
		for i := range outShapes {
			buf, err := exec.BindOutput(i)
			require.NoErrorf(t, err, "%s: binding output #%d", name, i)
			compareFlat(t, name, i, buf.Flat(), want[i], delta)
		}
	})
}

func compareFlat(t *testing.T, name string, i int, got, want any, delta float64) {
	if want == nil {
		return
	}
	if delta > 0 {
		switch got.(type) {
		case []float32, []float64:
			require.InDeltaSlicef(t, want, got, delta, "%s: output #%d", name, i)
			return
		}
	}
	require.Equalf(t, want, got, "%s: output #%d", name, i)
}

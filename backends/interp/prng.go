// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package interp

import "github.com/loom-ml/loom/types/shapes"

// The generator is a splitmix64 counter hashed from the state words: cheap,
// stateless between elements, and fully determined by the incoming state, so
// re-running a program with the same state reproduces its draws bit for bit.

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func foldState(words []uint32) uint64 {
	seed := uint64(len(words))
	for _, w := range words {
		seed = splitmix64(seed ^ uint64(w))
	}
	return seed
}

// evalPrng draws uniform [0, 1) float32 values and derives the updated state.
func evalPrng(state *buffer, valShape, stateShape shapes.Shape) (values, newState *buffer) {
	seed := foldState(state.data.([]uint32))

	values = newBuffer(valShape)
	vs := values.data.([]float32)
	for i := range vs {
		// The top 24 bits give every representable multiple of 2^-24.
		vs[i] = float32(splitmix64(seed+uint64(i))>>40) * (1.0 / (1 << 24))
	}

	newState = newBuffer(stateShape)
	ns := newState.data.([]uint32)
	base := splitmix64(seed ^ 0xda942042e4dd58b5)
	for i := range ns {
		ns[i] = uint32(splitmix64(base + uint64(i)))
	}
	return values, newState
}

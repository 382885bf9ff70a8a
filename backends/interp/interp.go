// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

// Package interp is the reference backend: a pure-Go interpreter that
// evaluates an assembled program node by node over flat row-major buffers.
// It favors obviousness over speed and is the semantic baseline other
// execution bridges are compared against.
//
// It registers itself as "interp"; importing the package is enough to make
// it available through the backends registry.
package interp

import (
	"github.com/pkg/errors"

	"github.com/loom-ml/loom/backends"
	"github.com/loom-ml/loom/edsl"
)

// BackendName is the name the interpreter registers under.
const BackendName = "interp"

func init() {
	backends.Register(BackendName, New)
}

// Backend implements backends.Backend.
type Backend struct {
	finalized bool
}

// New builds the interpreter backend. It takes no configuration.
func New(config string) (backends.Backend, error) {
	if config != "" {
		return nil, errors.Errorf("interp backend takes no configuration, got %q", config)
	}
	return &Backend{}, nil
}

// Name implements backends.Backend.
func (b *Backend) Name() string { return BackendName }

// Description implements backends.Backend.
func (b *Backend) Description() string {
	return "Pure-Go reference interpreter (slow, always available)"
}

// Compile implements backends.Backend. For the interpreter "compiling" is
// allocating the argument and output buffers; evaluation is deferred to Run.
func (b *Backend) Compile(p *edsl.Program) (backends.Executable, error) {
	if b.finalized {
		return nil, errors.Errorf("interp backend already finalized")
	}
	if p == nil {
		return nil, errors.Errorf("cannot compile a nil program")
	}
	return newExecutable(p), nil
}

// Finalize implements backends.Backend.
func (b *Backend) Finalize() {
	b.finalized = true
}

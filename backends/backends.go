// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

// Package backends defines the interface an execution bridge implements to
// compile and run assembled edsl programs, and the registry through which
// implementations announce themselves.
//
// Unlike graph construction, which panics eagerly with typed errors, backend
// operations report failures as plain error values: device and allocation
// problems are runtime conditions, not trace-time bugs.
package backends

import (
	"os"
	"strings"

	"github.com/janpfeifer/must"
	"github.com/pkg/errors"

	"github.com/loom-ml/loom/edsl"
	"github.com/loom-ml/loom/types/shapes"
	"github.com/loom-ml/loom/types/xslices"
)

// Backend compiles assembled programs into runnable executables.
type Backend interface {
	// Name returns the short name the backend was registered under, e.g.
	// "interp".
	Name() string

	// Description is a longer human-readable description, used by tooling.
	Description() string

	// Compile lowers an assembled program into an Executable.
	Compile(p *edsl.Program) (Executable, error)

	// Finalize releases the backend's resources; the backend is invalid
	// afterwards.
	Finalize()
}

// Executable is one compiled program with its bound input/output buffers.
// Run may be called repeatedly and is pure given identical inputs; any state
// must be threaded explicitly by the program (as prng does). An Executable
// is not safe for concurrent Run calls.
type Executable interface {
	// Inputs returns the argument names and shapes, in program signature
	// order.
	Inputs() (names []string, shapes []shapes.Shape)

	// Outputs returns the output shapes, in program output order.
	Outputs() []shapes.Shape

	// BindInput returns the writable buffer view backing the named argument.
	// The view is stable across runs: fill it once, run many times.
	BindInput(name string) (Buffer, error)

	// BindOutput returns the readable buffer view of the i-th output,
	// refreshed by each Run.
	BindOutput(i int) (Buffer, error)

	// Run executes the program over the currently bound inputs.
	Run() error

	// Finalize releases the executable's buffers.
	Finalize()
}

// Buffer is a typed flat view over one tensor's storage, in row-major order.
type Buffer interface {
	// Shape returns the buffer's shape.
	Shape() shapes.Shape

	// CopyFrom fills the buffer from a flat []T slice whose element type
	// matches the dtype and whose length matches the shape's size.
	CopyFrom(flat any) error

	// CopyTo copies the buffer out into a flat []T slice, same contract as
	// CopyFrom.
	CopyTo(flat any) error

	// Flat returns the backing flat []T slice itself.
	Flat() any
}

// Constructor builds a backend from a backend-specific configuration string,
// possibly empty.
type Constructor func(config string) (Backend, error)

var (
	registeredConstructors = make(map[string]Constructor)
	firstRegistered        string
)

// Register makes a backend constructor available under the given name,
// typically from the implementing package's init.
func Register(name string, constructor Constructor) {
	if len(registeredConstructors) == 0 {
		firstRegistered = name
	}
	registeredConstructors[name] = constructor
}

// DefaultConfig, when set, selects the backend configuration used by New if
// the environment variable is unset.
var DefaultConfig string

// LOOM_BACKEND is the environment variable naming the default backend
// configuration, formatted as "<name>" or "<name>:<config>".
const LOOM_BACKEND = "LOOM_BACKEND"

// New returns a Backend built from, in order of preference: the LOOM_BACKEND
// environment variable, DefaultConfig, or the first registered backend with
// an empty configuration.
func New() (Backend, error) {
	if config, found := os.LookupEnv(LOOM_BACKEND); found {
		return NewWithConfig(config)
	}
	if DefaultConfig != "" {
		return NewWithConfig(DefaultConfig)
	}
	return NewWithConfig("")
}

// MustNew is New, panicking on error.
func MustNew() Backend {
	return must.M1(New())
}

// NewWithConfig builds a backend from a "<name>" or "<name>:<config>"
// string; an empty name selects the first registered backend.
func NewWithConfig(config string) (Backend, error) {
	if len(registeredConstructors) == 0 {
		return nil, errors.Errorf(
			`no backends registered; import one, e.g. _ "github.com/loom-ml/loom/backends/default"`)
	}
	name := firstRegistered
	backendConfig := config
	if idx := strings.Index(config, ":"); idx != -1 {
		name = config[:idx]
		backendConfig = config[idx+1:]
	} else if config != "" {
		name = config
		backendConfig = ""
	}
	constructor, found := registeredConstructors[name]
	if !found {
		return nil, errors.Errorf("backend %q not registered (from configuration %q); registered: %s",
			name, config, strings.Join(List(), ", "))
	}
	return constructor(backendConfig)
}

// List returns the registered backend names, sorted.
func List() []string {
	return xslices.SortedKeys(registeredConstructors)
}

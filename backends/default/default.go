// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

// Package _default registers the default backends, currently the pure-Go
// interpreter.
//
// To use it simply include:
//
//	import _ "github.com/loom-ml/loom/backends/default"
package _default

import (
	_ "github.com/loom-ml/loom/backends/interp"
)

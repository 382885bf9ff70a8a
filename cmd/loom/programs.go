// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"strings"

	"k8s.io/klog/v2"

	"github.com/loom-ml/loom/edsl"
	"github.com/loom-ml/loom/types/dtypes"
	"github.com/loom-ml/loom/types/xslices"
)

// The canned programs cover the main trace shapes: a plain matmul, a
// constrained triangular reduction, a scatter-style no_reduce write and a
// windowed pooling. They double as smoke material for new backends.
var cannedPrograms = map[string]func() *edsl.Program{
	"dot": func() *edsl.Program {
		g := edsl.New()
		A := g.Placeholder(dtypes.Float32, []int{256, 256}, "A")
		B := g.Placeholder(dtypes.Float32, []int{256, 256}, "B")
		I, J, K := g.NewDim(), g.NewDim(), g.NewDim()
		i, j, k := g.NewIdx(), g.NewIdx(), g.NewIdx()
		A.BindDims(I, K)
		B.BindDims(K, J)
		O := g.Contraction(I, J).At(i, j).Sum(A.At(i, k).Mul(B.At(k, j)))
		return edsl.Build("dot", O)
	},
	"cumsum": func() *edsl.Program {
		g := edsl.New()
		X := g.Placeholder(dtypes.Float32, []int{4096}, "X")
		N := g.NewDim()
		X.BindDims(N)
		i, k := g.NewIdx(), g.NewIdx()
		O := g.Contraction(N).At(i).Constrain(i.Sub(k).Lt(N)).Sum(X.At(k))
		return edsl.Build("cumsum", O)
	},
	"upsample": func() *edsl.Program {
		g := edsl.New()
		X := g.Placeholder(dtypes.Float32, []int{8, 64, 64}, "X")
		N0, N1, N2 := g.NewDim(), g.NewDim(), g.NewDim()
		X.BindDims(N0, N1, N2)
		n0, n1, n2, k := g.NewIdx(), g.NewIdx(), g.NewIdx(), g.NewIdx()
		O := g.Contraction(N0, N1.MulN(3), N2).
			At(n0, n1.MulN(3).Add(k), n2).
			Constrain(k.LtN(3)).
			NoReduce().
			Assign(X.At(n0, n1, n2))
		return edsl.Build("upsample", O)
	},
	"maxpool": func() *edsl.Program {
		g := edsl.New()
		X := g.Placeholder(dtypes.Float32, []int{4, 128, 128, 16}, "X")
		B, H, W, C := g.NewDim(), g.NewDim(), g.NewDim(), g.NewDim()
		X.BindDims(B, H, W, C)
		b, h, w, c, kh, kw := g.NewIdx(), g.NewIdx(), g.NewIdx(), g.NewIdx(), g.NewIdx(), g.NewIdx()
		O := g.Contraction(B, H.DivN(2), W.DivN(2), C).
			At(b, h, w, c).
			Constrain(kh.LtN(2), kw.LtN(2)).
			Max(X.At(b, h.MulN(2).Add(kh), w.MulN(2).Add(kw), c))
		return edsl.Build("maxpool", O)
	},
}

func cannedNames() string {
	return strings.Join(xslices.SortedKeys(cannedPrograms), ", ")
}

func buildCanned(name string) *edsl.Program {
	build, ok := cannedPrograms[name]
	if !ok {
		klog.Errorf("No canned program named %q; available: %s", name, cannedNames())
		os.Exit(1)
	}
	return build()
}

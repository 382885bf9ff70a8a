// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/loom-ml/loom/backends"
)

// benchProgram compiles a canned program on the selected backend, fills its
// arguments with a deterministic pattern and times repeated runs.
func benchProgram(name string, iterations int) {
	backend := must.M1(backends.New())
	defer backend.Finalize()
	prog := buildCanned(name)
	klog.V(1).Infof("Benchmarking %s (id=%s) on backend %q", prog.Name(), prog.ID(), backend.Name())

	exec := must.M1(backend.Compile(prog))
	defer exec.Finalize()

	argNames, _ := exec.Inputs()
	for _, argName := range argNames {
		buf := must.M1(exec.BindInput(argName))
		fillPattern(buf)
	}

	// Warm-up run, outside the timed loop.
	must.M(exec.Run())

	output := termenv.NewOutput(os.Stdout)
	output.HideCursor()
	defer output.ShowCursor()
	bar := progressbar.NewOptions(iterations,
		progressbar.OptionSetDescription(fmt.Sprintf("bench %s", name)),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionShowIts())
	start := time.Now()
	for range iterations {
		must.M(exec.Run())
		_ = bar.Add(1)
	}
	elapsed := time.Since(start)
	_ = bar.Finish()
	fmt.Println()

	perRun := elapsed / time.Duration(iterations)
	fmt.Println(titleStyle.Render("Benchmark: " + name))
	table := newPlainTable(false)
	table.Row("backend", backend.Name())
	table.Row("iterations", humanize.Comma(int64(iterations)))
	table.Row("total", elapsed.Round(time.Millisecond).String())
	table.Row("per run", perRun.Round(time.Microsecond).String())
	table.Row("runs/sec", fmt.Sprintf("%.1f", float64(iterations)/elapsed.Seconds()))
	table.Row("buffers", humanize.Bytes(uint64(prog.MemoryEstimate())))
	fmt.Println(table)
}

// fillPattern writes a cheap deterministic wave into a float buffer; other
// dtypes keep their zero initialization.
func fillPattern(buf backends.Buffer) {
	switch data := buf.Flat().(type) {
	case []float32:
		for i := range data {
			data[i] = float32(i%17) * 0.25
		}
	case []float64:
		for i := range data {
			data[i] = float64(i%17) * 0.25
		}
	}
}

// Copyright 2025-2026 The Loom Authors. SPDX-License-Identifier: Apache-2.0

// loom is the maintainer command-line tool: it lists the available execution
// backends, dumps the textual form of canned programs and micro-benchmarks
// them on the selected backend.
//
// Usage:
//
//	loom backends
//	loom dump <program>
//	loom bench [-iterations=N] <program>
//
// The backend is picked the usual way, through the LOOM_BACKEND environment
// variable, defaulting to the pure-Go interpreter.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	"github.com/loom-ml/loom/backends"
	_ "github.com/loom-ml/loom/backends/default"
)

var flagIterations = flag.Int("iterations", 100, "Number of runs timed by the bench subcommand.")

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	switch cmd := args[0]; cmd {
	case "backends":
		listBackends()
	case "dump":
		requireProgramArg(args)
		dumpProgram(args[1])
	case "bench":
		requireProgramArg(args)
		benchProgram(args[1], *flagIterations)
	default:
		klog.Errorf("Unknown subcommand %q. See 'loom -help'.", cmd)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"Usage: loom [flags] backends | dump <program> | bench <program>\n\nPrograms: %s\n\nFlags:\n",
		cannedNames())
	flag.PrintDefaults()
}

func requireProgramArg(args []string) {
	if len(args) != 2 {
		klog.Errorf("Subcommand %q takes exactly one program name; available: %s", args[0], cannedNames())
		os.Exit(1)
	}
}

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)
	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 0, 4)
)

func newPlainTable(withHeader bool) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if withHeader && row == 1 {
				return headerRowStyle
			}
			if row%2 == 0 {
				s = oddRowStyle
			} else {
				s = evenRowStyle
			}
			if col == 0 {
				s = s.Align(lipgloss.Right)
			} else {
				s = s.Align(lipgloss.Left)
			}
			return
		})
}

// listBackends constructs every registered backend to report its description,
// marking the one New would pick.
func listBackends() {
	selected := must.M1(backends.New())
	defer selected.Finalize()

	fmt.Println(titleStyle.Render("Registered Backends"))
	table := newPlainTable(true)
	table.Row("Name", "Description", "Selected")
	for _, name := range backends.List() {
		mark := ""
		if name == selected.Name() {
			mark = "*"
		}
		if name == selected.Name() {
			table.Row(name, selected.Description(), mark)
			continue
		}
		b, err := backends.NewWithConfig(name)
		if err != nil {
			table.Row(name, fmt.Sprintf("error: %v", err), mark)
			continue
		}
		table.Row(name, b.Description(), mark)
		b.Finalize()
	}
	fmt.Println(table)
}

func dumpProgram(name string) {
	prog := buildCanned(name)
	klog.V(1).Infof("Assembled program %s (id=%s)", prog.Name(), prog.ID())
	fmt.Print(prog.String())
	fmt.Printf("\n%d operations, >= %s of argument/output buffers\n",
		prog.NumOperations(), humanize.Bytes(uint64(prog.MemoryEstimate())))
}

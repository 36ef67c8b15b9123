// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/kraklabs/isg/internal/isgerrors"
	"github.com/kraklabs/isg/internal/output"
	isgcontext "github.com/kraklabs/isg/pkg/context"
	"github.com/kraklabs/isg/pkg/graph"
	"github.com/kraklabs/isg/pkg/query"
)

// runQuery executes the 'query' CLI command, dispatching to one of the
// Query Engine's operations.
//
// Usage:
//
//	isg query what-implements <trait>
//	isg query blast-radius [--depth N] <entity>
//	isg query cycles [--max-depth N] [--max-cycles N] <entity>
//	isg query who-calls <function>
//	isg query called <function>
//	isg query execution-path <from> <to>
//	isg query context <entity>
func runQuery(args []string, configPath string, globals GlobalFlags) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: isg query <operation> [args...]")
		fmt.Fprintln(os.Stderr, "Operations: what-implements, blast-radius, cycles, who-calls, called, execution-path, context")
		os.Exit(1)
	}

	op := args[0]
	rest := args[1:]

	cfg, err := LoadConfig(configPath)
	if err != nil {
		isgerrors.Fatal(err, globals.JSON)
	}

	cwd, err := os.Getwd()
	if err != nil {
		isgerrors.Fatal(isgerrors.NewIoError("cannot get current directory", err), globals.JSON)
	}

	snapPath := SnapshotPath(cwd)
	if _, err := os.Stat(snapPath); os.IsNotExist(err) {
		isgerrors.Fatal(isgerrors.NewInvalidInput(fmt.Sprintf("project '%s' not ingested yet; run 'isg ingest' first", cfg.ProjectID)), globals.JSON)
	}

	store, err := loadStore(snapPath)
	if err != nil {
		isgerrors.Fatal(err, globals.JSON)
	}

	engine := query.New(store)
	assembler := isgcontext.New(store)

	switch op {
	case "what-implements":
		requireArgs(rest, 1, "isg query what-implements <trait>")
		nodes, err := engine.WhatImplements(rest[0])
		outputNodes(nodes, err, globals)
	case "blast-radius":
		fs := flag.NewFlagSet("blast-radius", flag.ExitOnError)
		depth := fs.Int("depth", cfg.Query.DefaultDepth, "Maximum hop count")
		parseOrExit(fs, rest)
		requireArgs(fs.Args(), 1, "isg query blast-radius [--depth N] <entity>")
		nodes, err := engine.BlastRadius(fs.Args()[0], *depth)
		outputNodes(nodes, err, globals)
	case "cycles":
		fs := flag.NewFlagSet("cycles", flag.ExitOnError)
		maxDepth := fs.Int("max-depth", cfg.Query.DefaultCycleDepth, "Maximum hop count per branch")
		maxCycles := fs.Int("max-cycles", cfg.Query.DefaultCycleLimit, "Maximum cycles to report")
		parseOrExit(fs, rest)
		requireArgs(fs.Args(), 1, "isg query cycles [--max-depth N] [--max-cycles N] <entity>")
		cycles, err := engine.FindCycles(fs.Args()[0], *maxDepth, *maxCycles)
		outputCycles(cycles, err, globals)
	case "who-calls":
		requireArgs(rest, 1, "isg query who-calls <function>")
		nodes, err := engine.WhoCalls(rest[0])
		outputNodes(nodes, err, globals)
	case "called":
		requireArgs(rest, 1, "isg query called <function>")
		nodes, err := engine.GetCalledFunctions(rest[0])
		outputNodes(nodes, err, globals)
	case "execution-path":
		requireArgs(rest, 2, "isg query execution-path <from> <to>")
		nodes, err := engine.ExecutionPath(rest[0], rest[1])
		outputNodes(nodes, err, globals)
	case "context":
		requireArgs(rest, 1, "isg query context <entity>")
		bundle, err := assembler.Assemble(rest[0])
		outputBundle(bundle, err, globals)
	default:
		isgerrors.Fatal(isgerrors.NewInvalidInput(fmt.Sprintf("unknown query operation %q", op)), globals.JSON)
	}
}

func requireArgs(args []string, n int, usage string) {
	if len(args) < n {
		fmt.Fprintf(os.Stderr, "Usage: %s\n", usage)
		os.Exit(1)
	}
}

func parseOrExit(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
}

func outputNodes(nodes []graph.Node, err error, globals GlobalFlags) {
	if err != nil {
		isgerrors.Fatal(err, globals.JSON)
	}
	if globals.JSON {
		_ = output.JSON(nodes)
		return
	}
	printNodeTable(nodes)
}

func outputCycles(cycles [][]graph.Node, err error, globals GlobalFlags) {
	if err != nil {
		isgerrors.Fatal(err, globals.JSON)
	}
	if globals.JSON {
		_ = output.JSON(cycles)
		return
	}
	if len(cycles) == 0 {
		fmt.Println("No cycles found")
		return
	}
	for i, cyc := range cycles {
		names := make([]string, 0, len(cyc))
		for _, n := range cyc {
			names = append(names, n.Name)
		}
		fmt.Printf("%d: %s\n", i+1, strings.Join(names, " -> "))
	}
}

func outputBundle(bundle isgcontext.Bundle, err error, globals GlobalFlags) {
	if err != nil {
		isgerrors.Fatal(err, globals.JSON)
	}
	if globals.JSON {
		_ = output.JSON(bundle)
		return
	}

	fmt.Printf("%s %s (%s:%d)\n", bundle.Target.Kind, bundle.Target.Name, bundle.Target.FilePath, bundle.Target.Line)
	fmt.Println(bundle.Target.Signature)
	fmt.Println()
	printNamedNodes("Dependencies", bundle.Dependencies)
	printNamedNodes("Dependents", bundle.Dependents)
	printNamedNodes("Implementors", bundle.Implementors)
	printNamedNodes("Implemented Traits", bundle.ImplementedTraits)
}

func printNamedNodes(label string, nodes []graph.Node) {
	if len(nodes) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, n := range nodes {
		fmt.Printf("  %s %s (%s:%d)\n", n.Kind, n.Name, n.FilePath, n.Line)
	}
}

func printNodeTable(nodes []graph.Node) {
	if len(nodes) == 0 {
		fmt.Println("No results")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tNAME\tFILE\tLINE")
	for _, n := range nodes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", n.Kind, n.Name, n.FilePath, n.Line)
	}
	_ = w.Flush()
	fmt.Printf("\n(%d rows)\n", len(nodes))
}

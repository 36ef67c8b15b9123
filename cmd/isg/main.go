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

// Package main implements the isg CLI for building and querying the
// Interface Signature Graph of a Rust repository.
//
// Usage:
//
//	isg init                        Create .isg/project.yaml configuration
//	isg ingest                      Ingest the current repository
//	isg status [--json]             Show graph statistics
//	isg query <op> [args...]        Answer an architectural question
//	isg reset                       Delete local graph state
//	isg watch                       Watch the repository and re-ingest on change
//	isg completion <shell>          Generate shell completion script
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kraklabs/isg/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags carries the CLI-wide output and verbosity switches every
// subcommand reads, independent of whichever flag.FlagSet it builds for
// its own arguments.
type GlobalFlags struct {
	JSON    bool
	Quiet   bool
	NoColor bool
	Verbose bool
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		jsonOutput  = flag.Bool("json", false, "Output machine-readable JSON")
		quiet       = flag.Bool("quiet", false, "Suppress progress output")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		configPath  = flag.String("config", "", "Path to .isg/project.yaml (default: ./.isg/project.yaml)")
	)
	flag.BoolVar(quiet, "q", false, "Suppress progress output (shorthand)")
	flag.BoolVar(verbose, "v", false, "Enable debug logging (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `isg - Interface Signature Graph CLI

Usage:
  isg <command> [options]

Commands:
  init          Create .isg/project.yaml configuration
  ingest        Ingest the current repository into the graph
  status        Show graph statistics
  query         Answer an architectural question about the graph
  reset         Delete local graph state (destructive!)
  watch         Watch the repository and re-ingest on file change
  completion    Generate a shell completion script

Global Options:
  --json        Output machine-readable JSON
  -q, --quiet   Suppress progress output
  --no-color    Disable colored output
  -v, --verbose Enable debug logging
  --config      Path to .isg/project.yaml
  --version     Show version and exit

Examples:
  isg init
  isg ingest
  isg status --json
  isg query blast-radius --depth 2 Circle
  isg watch

Graph state is stored locally in .isg/graph.snap under the current directory.
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("isg version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	globals := GlobalFlags{
		JSON:    *jsonOutput,
		Quiet:   *quiet || *jsonOutput,
		NoColor: *noColor,
		Verbose: *verbose,
	}
	ui.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "init":
		runInit(cmdArgs)
	case "ingest":
		runIngest(cmdArgs, *configPath, globals)
	case "status":
		runStatus(cmdArgs, *configPath, globals)
	case "query":
		runQuery(cmdArgs, *configPath, globals)
	case "reset":
		runReset(cmdArgs, *configPath, globals)
	case "watch":
		runWatch(cmdArgs, *configPath, globals)
	case "completion":
		runCompletion(cmdArgs, *configPath)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

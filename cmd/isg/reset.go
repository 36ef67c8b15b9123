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

	"github.com/kraklabs/isg/internal/isgerrors"
)

// runReset executes the 'reset' CLI command, deleting the local .isg
// directory (configuration and graph snapshot) for the current project.
//
// Flags:
//   - --yes: Confirm the reset (required)
func runReset(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	confirm := fs.Bool("yes", false, "Confirm the reset (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: isg reset [options]

Resets the local project state, deleting .isg/ (configuration and
graph snapshot) in the current directory.

WARNING: This operation is destructive and cannot be undone!

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if !*confirm {
		fmt.Fprintln(os.Stderr, "Error: you must pass --yes to confirm the reset")
		fmt.Fprintln(os.Stderr, "This will delete .isg/ in the current directory.")
		os.Exit(1)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		isgerrors.Fatal(err, globals.JSON)
	}

	cwd, err := os.Getwd()
	if err != nil {
		isgerrors.Fatal(isgerrors.NewIoError("cannot get current directory", err), globals.JSON)
	}

	dataDir := ConfigDir(cwd)
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "No local data found for project %s\n", cfg.ProjectID)
		os.Exit(0)
	}

	fmt.Printf("Resetting project %s (deleting %s)...\n", cfg.ProjectID, dataDir)

	if err := os.RemoveAll(dataDir); err != nil {
		isgerrors.Fatal(isgerrors.NewIoError("failed to delete .isg directory", err), globals.JSON)
	}

	fmt.Println("Reset complete. All local graph state has been deleted.")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  isg init          Recreate .isg/project.yaml")
	fmt.Println("  isg ingest        Rebuild the graph")
}

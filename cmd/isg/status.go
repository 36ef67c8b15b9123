// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kraklabs/isg/internal/isgerrors"
	"github.com/kraklabs/isg/internal/output"
	"github.com/kraklabs/isg/pkg/graph"
	"github.com/kraklabs/isg/pkg/snapshot"
)

// StatusResult represents the project status for JSON output.
type StatusResult struct {
	ProjectID    string    `json:"project_id"`
	SnapshotPath string    `json:"snapshot_path"`
	Ingested     bool      `json:"ingested"`
	Nodes        int       `json:"nodes"`
	Edges        int       `json:"edges"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// runStatus executes the 'status' CLI command, reporting the current
// graph's node and edge counts.
//
// Flags:
//   - --json: Output results as JSON (default: false)
func runStatus(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	jsonOutput := fs.Bool("json", globals.JSON, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: isg status [options]

Shows graph statistics for the current project.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		emitStatusError(*jsonOutput, err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		emitStatusError(*jsonOutput, isgerrors.NewIoError("cannot get current directory", err))
	}

	snapPath := SnapshotPath(cwd)
	result := &StatusResult{
		ProjectID:    cfg.ProjectID,
		SnapshotPath: snapPath,
		Timestamp:    time.Now(),
	}

	if _, err := os.Stat(snapPath); os.IsNotExist(err) {
		result.Ingested = false
		result.Error = "project not ingested yet; run 'isg ingest' first"
		if *jsonOutput {
			_ = output.JSON(result)
		} else {
			fmt.Printf("Project '%s' not ingested yet.\n", cfg.ProjectID)
			fmt.Println("Run 'isg ingest' to build the graph.")
		}
		return
	}

	store, lerr := loadStore(snapPath)
	if lerr != nil {
		result.Error = lerr.Error()
		emitStatusError(*jsonOutput, lerr)
		return
	}

	result.Ingested = true
	result.Nodes = store.NodeCount()
	result.Edges = store.EdgeCount()

	if *jsonOutput {
		_ = output.JSON(result)
	} else {
		printLocalStatus(result)
	}
}

func emitStatusError(jsonOutput bool, err error) {
	if jsonOutput {
		_ = output.JSONError(err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func printLocalStatus(result *StatusResult) {
	fmt.Println("isg Project Status")
	fmt.Println("===================")
	fmt.Printf("Project ID: %s\n", result.ProjectID)
	fmt.Printf("Snapshot:   %s\n", result.SnapshotPath)
	fmt.Println()
	fmt.Println("Graph:")
	fmt.Printf("  Nodes: %d\n", result.Nodes)
	fmt.Printf("  Edges: %d\n", result.Edges)
}

// loadStore opens the snapshot at path and restores it into a fresh
// graph.Store.
func loadStore(path string) (*graph.Store, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path derived from cwd
	if err != nil {
		return nil, isgerrors.NewIoError(fmt.Sprintf("cannot open %s", path), err)
	}
	defer func() { _ = f.Close() }()

	manifest, err := snapshot.Read(f)
	if err != nil {
		return nil, err
	}

	store := graph.New()
	if err := snapshot.Restore(store, manifest); err != nil {
		return nil, err
	}
	return store, nil
}

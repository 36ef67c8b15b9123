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
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kraklabs/isg/internal/isgerrors"
	"github.com/kraklabs/isg/internal/output"
	"github.com/kraklabs/isg/internal/ui"
	"github.com/kraklabs/isg/pkg/graph"
	"github.com/kraklabs/isg/pkg/ingestion"
	"github.com/kraklabs/isg/pkg/snapshot"
)

// runIngest executes the 'ingest' CLI command: it walks the repository
// for .rs files, runs them through the ingestion pipeline, and persists
// the resulting graph to .isg/graph.snap.
//
// Flags:
//   - --debug: Enable debug logging (default: false)
//   - --metrics-addr: HTTP address for Prometheus metrics (default: disabled)
func runIngest(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	debug := fs.Bool("debug", false, "Enable debug logging")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: isg ingest [options]

Walks the current repository for .rs files and ingests them into the
graph, using configuration from .isg/project.yaml. The resulting graph
is written to .isg/graph.snap.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		isgerrors.Fatal(err, globals.JSON)
	}

	logLevel := slog.LevelInfo
	if *debug || globals.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: *metricsAddr, Handler: mux}
			logger.Info("metrics.http.start", "addr", *metricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

	cwd, err := os.Getwd()
	if err != nil {
		isgerrors.Fatal(isgerrors.NewIoError("cannot get current directory", err), globals.JSON)
	}

	bundle, fileCount, err := buildBundle(cwd, cfg.Indexing.Exclude, cfg.Indexing.MaxFileSizeBytes)
	if err != nil {
		isgerrors.Fatal(err, globals.JSON)
	}

	if !globals.Quiet {
		ui.Infof("Found %d Rust files", fileCount)
	}

	progressCfg := NewProgressConfig(globals)
	bar := NewProgressBar(progressCfg, int64(fileCount), "Ingesting")

	store := graph.New()
	opts := []ingestion.PipelineOption{}
	if bar != nil {
		opts = append(opts, ingestion.WithProgress(func(done, total int, path string) {
			_ = bar.Set(done)
		}))
	}
	pipeline := ingestion.NewPipeline(store, logger, opts...)

	stats, err := pipeline.Ingest(ctx, bundle)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		isgerrors.Fatal(err, globals.JSON)
	}

	snapPath := SnapshotPath(cwd)
	if err := os.MkdirAll(filepath.Dir(snapPath), 0750); err != nil {
		isgerrors.Fatal(isgerrors.NewIoError("cannot create .isg directory", err), globals.JSON)
	}
	f, err := os.Create(snapPath) //nolint:gosec // G304: snapPath is derived from cwd
	if err != nil {
		isgerrors.Fatal(isgerrors.NewIoError(fmt.Sprintf("cannot create %s", snapPath), err), globals.JSON)
	}
	defer func() { _ = f.Close() }()
	if err := snapshot.Write(f, store); err != nil {
		isgerrors.Fatal(err, globals.JSON)
	}

	printIngestResult(stats, globals)
}

func printIngestResult(stats ingestion.IngestStats, globals GlobalFlags) {
	if globals.JSON {
		_ = output.JSON(stats)
		return
	}

	fmt.Println()
	fmt.Println("=== Ingestion Complete ===")
	fmt.Printf("Files Processed: %d\n", stats.FilesProcessed)
	fmt.Printf("Files Failed:    %d\n", stats.FilesFailed)
	fmt.Printf("Nodes Created:   %d\n", stats.NodesCreated)
	fmt.Printf("Edges Created:   %d\n", stats.EdgesCreated)

	if len(stats.Errors) > 0 {
		fmt.Println("\nParse Errors:")
		for _, e := range stats.Errors {
			fmt.Printf("  %s: %s\n", e.Path, e.Message)
		}
	}
	fmt.Println()
}

// buildBundle walks root for .rs files, skipping any path matched by an
// exclude glob or exceeding maxFileSize, and concatenates them into a
// single FILE:-delimited bundle suitable for ingestion.Pipeline.Ingest.
func buildBundle(root string, excludes []string, maxFileSize int64) (string, int, error) {
	var b strings.Builder
	count := 0

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return err
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if shouldExcludeDir(rel, excludes) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(rel, ".rs") {
			return nil
		}
		if shouldExclude(rel, excludes) {
			return nil
		}
		if maxFileSize > 0 && info.Size() > maxFileSize {
			return nil
		}

		content, rerr := os.ReadFile(path) //nolint:gosec // G304: path from repo walk
		if rerr != nil {
			return nil
		}

		b.WriteString("FILE: ")
		b.WriteString(rel)
		b.WriteString("\n")
		b.Write(content)
		if len(content) == 0 || content[len(content)-1] != '\n' {
			b.WriteString("\n")
		}
		count++
		return nil
	})
	if err != nil {
		return "", 0, isgerrors.NewIoError("failed to walk repository", err)
	}
	return b.String(), count, nil
}

func shouldExclude(path string, excludes []string) bool {
	for _, pattern := range excludes {
		if ingestion.MatchesGlob(path, pattern) {
			return true
		}
	}
	return false
}

func shouldExcludeDir(path string, excludes []string) bool {
	if path == "." {
		return false
	}
	base := filepath.Base(path)
	if base == ".git" {
		return true
	}
	return shouldExclude(path, excludes) || shouldExclude(path+"/", excludes)
}

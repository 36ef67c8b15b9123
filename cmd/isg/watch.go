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
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kraklabs/isg/internal/isgerrors"
	"github.com/kraklabs/isg/internal/ui"
	"github.com/kraklabs/isg/pkg/graph"
	"github.com/kraklabs/isg/pkg/snapshot"
	"github.com/kraklabs/isg/pkg/update"
)

// watchSkipDirs names directories never traversed while watching, to
// keep the descriptor count and event noise down.
var watchSkipDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
	"dist": true, "build": true, ".isg": true, "bin": true, "target": true,
}

const defaultWatchDebounce = 500 * time.Millisecond

// runWatch executes the 'watch' CLI command: it watches the repository
// for changes to .rs files and incrementally reindexes them through
// pkg/update.Protocol, persisting the updated graph to .isg/graph.snap
// after each debounced batch.
//
// Flags:
//   - --debounce: Quiet period after the last event before reindexing
func runWatch(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	debounce := fs.Duration("debounce", defaultWatchDebounce, "Debounce window before reindexing")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: isg watch [options]

Watches the current repository for changes to .rs files and
incrementally updates the graph, writing .isg/graph.snap after each
debounced batch of changes.

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

	cwd, err := os.Getwd()
	if err != nil {
		isgerrors.Fatal(isgerrors.NewIoError("cannot get current directory", err), globals.JSON)
	}

	logLevel := slog.LevelInfo
	if globals.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	store := graph.New()
	snapPath := SnapshotPath(cwd)
	if _, serr := os.Stat(snapPath); serr == nil {
		loaded, lerr := loadStore(snapPath)
		if lerr != nil {
			isgerrors.Fatal(lerr, globals.JSON)
		}
		store = loaded
	} else if !globals.Quiet {
		ui.Infof("No existing snapshot found; starting from an empty graph")
	}

	protocol := update.New(store, logger)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		isgerrors.Fatal(isgerrors.NewIoError("cannot start file watcher", err), globals.JSON)
	}
	defer func() { _ = watcher.Close() }()

	watchCount := addWatchedDirs(watcher, cwd, cfg.Indexing.Exclude)
	if !globals.Quiet {
		ui.Infof("Watching %d directories under %s", watchCount, cwd)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	var mu sync.Mutex
	pending := map[string]bool{}
	var timer *time.Timer
	var timerCh <-chan time.Time

	flush := func() {
		mu.Lock()
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = map[string]bool{}
		mu.Unlock()

		if len(paths) == 0 {
			return
		}
		reindexChangedFiles(ctx, protocol, paths, logger, globals)
		if err := writeSnapshot(snapPath, store); err != nil {
			logger.Warn("watch.snapshot.error", "err", err)
			return
		}
		if !globals.Quiet {
			ui.Infof("Reindexed %d file(s), nodes=%d edges=%d", len(paths), store.NodeCount(), store.EdgeCount())
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".rs") {
				continue
			}
			if shouldExclude(relOrSelf(cwd, event.Name), cfg.Indexing.Exclude) {
				continue
			}
			mu.Lock()
			pending[relOrSelf(cwd, event.Name)] = true
			mu.Unlock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(*debounce)
			timerCh = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch.fsnotify.error", "err", err)
		case <-timerCh:
			timerCh = nil
			flush()
		}
	}
}

// addWatchedDirs walks root, adding every directory not named in
// watchSkipDirs (or hidden) to watcher. Returns the count added.
func addWatchedDirs(watcher *fsnotify.Watcher, root string, excludes []string) int {
	count := 0
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if path != root && (watchSkipDirs[base] || (strings.HasPrefix(base, ".") && base != ".")) {
			return filepath.SkipDir
		}
		rel := relOrSelf(root, path)
		if rel != "." && shouldExcludeDir(rel, excludes) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err == nil {
			count++
		}
		return nil
	})
	return count
}

func relOrSelf(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func reindexChangedFiles(ctx context.Context, protocol *update.Protocol, paths []string, logger *slog.Logger, globals GlobalFlags) {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				if rerr := protocol.RemoveFile(path); rerr != nil {
					logger.Warn("watch.remove.error", "path", path, "err", rerr)
				}
			}
			continue
		}
		if info.IsDir() {
			continue
		}
		source, err := os.ReadFile(path) //nolint:gosec // G304: path observed from fsnotify under the watched tree
		if err != nil {
			logger.Warn("watch.read.error", "path", path, "err", err)
			continue
		}
		if _, _, err := protocol.UpdateFile(ctx, path, string(source)); err != nil {
			logger.Warn("watch.update.error", "path", path, "err", err)
		} else if globals.Verbose {
			logger.Debug("watch.update.ok", "path", path)
		}
	}
}

func writeSnapshot(path string, store *graph.Store) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return isgerrors.NewIoError("cannot create .isg directory", err)
	}
	f, err := os.Create(path) //nolint:gosec // G304: path derived from cwd
	if err != nil {
		return isgerrors.NewIoError(fmt.Sprintf("cannot create %s", path), err)
	}
	defer func() { _ = f.Close() }()
	return snapshot.Write(f, store)
}

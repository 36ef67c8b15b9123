// Copyright 2026 KrakLabs
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
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kraklabs/isg/pkg/graph"
)

// ParseError describes a single file that failed to parse during
// ingestion. A file-level error never aborts the rest of the batch.
type ParseError struct {
	Path    string
	Message string
}

// IngestStats summarizes one call to Pipeline.Ingest.
type IngestStats struct {
	FilesProcessed int
	FilesFailed    int
	NodesCreated   int
	EdgesCreated   int
	Errors         []ParseError
}

// ProgressFunc is called once per file as ingestion proceeds, so a CLI
// layer can drive a progress bar without the ingestor importing any
// terminal library itself.
type ProgressFunc func(done, total int, path string)

// Pipeline drives two-pass ingestion of a code bundle into a Graph
// Store. It owns no state beyond the store and logger it was built
// with; all per-ingest bookkeeping lives on the stack of Ingest.
type Pipeline struct {
	store   *graph.Store
	parser  *RustParser
	logger  *slog.Logger
	metrics *ingestMetrics

	perFileCommits bool
	onProgress     ProgressFunc
}

// PipelineOption configures a Pipeline at construction time.
type PipelineOption func(*Pipeline)

// WithPerFileCommits makes Ingest take and release the store's write
// lock once per file instead of once for the whole batch. Off by
// default: the default mode ingests an entire bundle as one atomic
// batch so that forward references across files always resolve, at
// the cost of holding the write lock for the whole ingest. Per-file
// commit mode trades that atomicity for reader responsiveness during
// very large ingests, at the cost of earlier files being unable to
// resolve names that only later files in the same batch declare.
func WithPerFileCommits() PipelineOption {
	return func(p *Pipeline) { p.perFileCommits = true }
}

// WithProgress registers a callback invoked after each file is parsed.
func WithProgress(fn ProgressFunc) PipelineOption {
	return func(p *Pipeline) { p.onProgress = fn }
}

// NewPipeline builds a Pipeline over store. A nil logger defaults to
// slog.Default().
func NewPipeline(store *graph.Store, logger *slog.Logger, opts ...PipelineOption) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		store:   store,
		parser:  NewRustParser(logger),
		logger:  logger,
		metrics: defaultIngestMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ExtractFile runs Pass 1 and Pass 2 over a single already-parsed file
// and returns its nodes and unresolved edge intents, without touching
// any Graph Store. pkg/update uses this to parse outside the lock
// before calling Store.ReplaceFile.
func ExtractFile(pf *ParsedFile) ([]graph.Node, []graph.EdgeIntent) {
	u := extractNodes(pf)
	return u.nodes, extractIntents(pf, u)
}

// Ingest parses a code bundle and commits its nodes and edges into the
// Graph Store. Per-file parse failures are recorded in IngestStats and
// never abort the rest of the batch.
func (p *Pipeline) Ingest(ctx context.Context, bundle string) (IngestStats, error) {
	units, err := ParseBundle(bundle)
	if err != nil {
		return IngestStats{}, err
	}

	var stats IngestStats
	var allNodes []graph.Node
	var allIntents []graph.EdgeIntent

	for i, fu := range units {
		start := time.Now()
		parsed, perr := p.parser.Parse(ctx, fu.Path, fu.Source)
		if perr != nil {
			stats.FilesFailed++
			stats.Errors = append(stats.Errors, ParseError{Path: fu.Path, Message: perr.Error()})
			p.metrics.observeFile(false, time.Since(start))
			if p.onProgress != nil {
				p.onProgress(i+1, len(units), fu.Path)
			}
			continue
		}

		if parsed.HasErrors && parsed.ErrorCount > 0 {
			stats.FilesFailed++
			stats.Errors = append(stats.Errors, ParseError{
				Path:    fu.Path,
				Message: fmt.Sprintf("syntax error: %d error node(s)", parsed.ErrorCount),
			})
			parsed.Close()
			p.metrics.observeFile(false, time.Since(start))
			if p.onProgress != nil {
				p.onProgress(i+1, len(units), fu.Path)
			}
			continue
		}

		n1 := extractNodes(parsed)
		intents := extractIntents(parsed, n1)
		parsed.Close()

		if p.perFileCommits {
			created, edgesCreated, aerr := p.store.ApplyBatch(n1.nodes, intents)
			if aerr != nil {
				stats.FilesFailed++
				stats.Errors = append(stats.Errors, ParseError{Path: fu.Path, Message: aerr.Error()})
				p.metrics.observeFile(false, time.Since(start))
				if p.onProgress != nil {
					p.onProgress(i+1, len(units), fu.Path)
				}
				continue
			}
			stats.NodesCreated += created
			stats.EdgesCreated += edgesCreated
		} else {
			allNodes = append(allNodes, n1.nodes...)
			allIntents = append(allIntents, intents...)
		}

		stats.FilesProcessed++
		p.metrics.observeFile(true, time.Since(start))
		if p.onProgress != nil {
			p.onProgress(i+1, len(units), fu.Path)
		}
	}

	if !p.perFileCommits && (len(allNodes) > 0 || len(allIntents) > 0) {
		created, edgesCreated, err := p.store.ApplyBatch(allNodes, allIntents)
		if err != nil {
			return stats, err
		}
		stats.NodesCreated = created
		stats.EdgesCreated = edgesCreated
	}

	p.metrics.observeBatch(stats)
	return stats, nil
}

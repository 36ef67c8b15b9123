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

package update

import (
	"context"
	"log/slog"

	"github.com/kraklabs/isg/pkg/graph"
	"github.com/kraklabs/isg/pkg/ingestion"
)

// Protocol drives single-file incremental updates against a Graph
// Store. It owns a RustParser so parsing always happens before any
// lock is taken, per the concurrency model's "no blocking I/O or
// parsing inside the write-lock section" rule.
type Protocol struct {
	store  *graph.Store
	parser *ingestion.RustParser
}

// New builds a Protocol over store. A nil logger defaults to
// slog.Default(), matching pkg/ingestion.NewPipeline's constructor
// shape.
func New(store *graph.Store, logger *slog.Logger) *Protocol {
	if logger == nil {
		logger = slog.Default()
	}
	return &Protocol{
		store:  store,
		parser: ingestion.NewRustParser(logger),
	}
}

// UpdateFile parses newSource outside the store's lock, then replaces
// path's nodes and edges atomically: remove_file(path) followed by
// Pass 1/Pass 2 restricted to this file, resolved against the current
// name map. It does not re-examine relationships owned by other files
// (spec.md's documented incompleteness of the update protocol).
func (p *Protocol) UpdateFile(ctx context.Context, path, newSource string) (nodesCreated, edgesCreated int, err error) {
	parsed, err := p.parser.Parse(ctx, path, newSource)
	if err != nil {
		return 0, 0, err
	}
	defer parsed.Close()

	nodes, intents := ingestion.ExtractFile(parsed)
	return p.store.ReplaceFile(path, nodes, intents)
}

// RemoveFile removes every node attributed to path and their incident
// edges. It is a no-op if path is not present.
func (p *Protocol) RemoveFile(path string) error {
	return p.store.RemoveFile(path)
}

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

// Package ingestion turns Rust source into Interface Signature Graph
// nodes and edges.
//
// # Two-pass ingestion
//
// A code bundle (ParseBundle) or a single file is parsed with
// tree-sitter's Rust grammar (RustParser). Pass 1 (pass1.go) walks the
// resulting tree and extracts one graph.Node per fn/struct/enum/trait/
// impl/const/static/macro_rules! item; its signature excludes bodies and
// collapses whitespace, and its id is derived from that signature via
// pkg/identity. Pass 2 (pass2.go) walks the same tree again and emits
// edge intents — Implements, Calls, Uses — by bare name, since resolving
// those names against the graph's global name map requires every file's
// Pass 1 to have already run. Pipeline.Ingest (pipeline.go) orchestrates
// both passes across a whole bundle and, by default, commits the result
// through graph.Store.ApplyBatch under a single write-lock acquisition
// (WithPerFileCommits calls ApplyBatch once per file instead).
//
// Per-file parse failures are recorded in IngestStats and never abort
// the rest of the batch.
package ingestion

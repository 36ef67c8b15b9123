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

package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/kraklabs/isg/internal/isgerrors"
	"github.com/kraklabs/isg/pkg/graph"
)

// SchemaVersion is bumped whenever Manifest's shape changes in a way
// that breaks backward compatibility with previously written
// snapshots.
const SchemaVersion = 1

// Manifest is the on-disk shape of a Graph Store snapshot: every node
// and edge, plus enough metadata to detect a schema mismatch on
// restore.
type Manifest struct {
	SchemaVersion int          `json:"schema_version"`
	CreatedAt     int64        `json:"created_at"`
	NodeCount     int          `json:"node_count"`
	EdgeCount     int          `json:"edge_count"`
	Nodes         []graph.Node `json:"nodes"`
	Edges         []graph.Edge `json:"edges"`
}

// Write encodes store's entire contents as gzip-compressed JSON to w.
func Write(w io.Writer, store *graph.Store) error {
	nodes, edges := store.Snapshot()
	m := Manifest{
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().Unix(),
		NodeCount:     len(nodes),
		EdgeCount:     len(edges),
		Nodes:         nodes,
		Edges:         edges,
	}

	gz := gzip.NewWriter(w)
	enc := json.NewEncoder(gz)
	if err := enc.Encode(m); err != nil {
		gz.Close()
		return isgerrors.NewSerdeError("failed to encode snapshot", err)
	}
	if err := gz.Close(); err != nil {
		return isgerrors.NewIoError("failed to flush snapshot writer", err)
	}
	return nil
}

// Read decodes a gzip-compressed JSON manifest previously produced by
// Write. It does not touch any Graph Store; call Restore with the
// result to populate one.
func Read(r io.Reader) (*Manifest, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, isgerrors.NewIoError("failed to open snapshot stream", err)
	}
	defer gz.Close()

	var m Manifest
	if err := json.NewDecoder(gz).Decode(&m); err != nil {
		return nil, isgerrors.NewSerdeError("failed to decode snapshot", err)
	}
	if m.SchemaVersion != SchemaVersion {
		return nil, isgerrors.NewSerdeError(
			fmt.Sprintf("snapshot schema version %d does not match supported version %d", m.SchemaVersion, SchemaVersion),
			nil)
	}
	return &m, nil
}

// Restore populates an empty store from a decoded Manifest.
func Restore(store *graph.Store, m *Manifest) error {
	return store.Restore(m.Nodes, m.Edges)
}

// SPDX-License-Identifier: AGPL-3.0-or-later

package snapshot

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/isg/internal/isgerrors"
	"github.com/kraklabs/isg/pkg/graph"
	"github.com/kraklabs/isg/pkg/identity"
)

func writeGzipString(t *testing.T, buf *bytes.Buffer, s string) {
	t.Helper()
	gz := gzip.NewWriter(buf)
	_, err := gz.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
}

func mkNode(kind graph.NodeKind, name, sig, file string, line int) graph.Node {
	return graph.Node{ID: identity.IDOf(sig), Kind: kind, Name: name, Signature: sig, FilePath: file, Line: line}
}

func seedStore(t *testing.T) *graph.Store {
	t.Helper()
	s := graph.New()
	a := mkNode(graph.KindFunction, "a", "fn a()", "x.rs", 1)
	b := mkNode(graph.KindFunction, "b", "fn b()", "x.rs", 2)
	require.NoError(t, s.UpsertNode(a))
	require.NoError(t, s.UpsertNode(b))
	require.NoError(t, s.UpsertEdge(graph.Edge{Kind: graph.KindCalls, From: a.ID, To: b.ID}))
	return s
}

func TestWriteReadRoundTripIsLossless(t *testing.T) {
	store := seedStore(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, store))

	m, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, m.SchemaVersion)
	assert.Equal(t, 2, m.NodeCount)
	assert.Equal(t, 1, m.EdgeCount)
	assert.Greater(t, m.CreatedAt, int64(0))

	restored := graph.New()
	require.NoError(t, Restore(restored, m))

	wantNodes, wantEdges := store.Snapshot()
	gotNodes, gotEdges := restored.Snapshot()
	assert.Equal(t, wantNodes, gotNodes)
	assert.Equal(t, wantEdges, gotEdges)
}

func TestReadRejectsSchemaVersionMismatch(t *testing.T) {
	store := seedStore(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, store))

	_, err := Read(&buf)
	require.NoError(t, err)

	badManifest := `{"schema_version": 999, "node_count": 0, "edge_count": 0, "nodes": [], "edges": []}`
	var gz bytes.Buffer
	writeGzipString(t, &gz, badManifest)

	_, err = Read(&gz)
	require.Error(t, err)
	var ie *isgerrors.IsgError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, isgerrors.Serde, ie.Kind)
}

func TestReadRejectsGarbageInput(t *testing.T) {
	_, err := Read(bytes.NewBufferString("not gzip at all"))
	require.Error(t, err)
	var ie *isgerrors.IsgError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, isgerrors.Io, ie.Kind)
}

func TestRestoreRejectsNonEmptyStore(t *testing.T) {
	store := seedStore(t)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, store))
	m, err := Read(&buf)
	require.NoError(t, err)

	err = Restore(store, m)
	require.Error(t, err)
}

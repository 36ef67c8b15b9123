// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/isg/internal/isgerrors"
	"github.com/kraklabs/isg/pkg/identity"
)

func mkNode(kind NodeKind, name, sig, file string, line int) Node {
	return Node{ID: identity.IDOf(sig), Kind: kind, Name: name, Signature: sig, FilePath: file, Line: line}
}

func TestUpsertNodeAndGet(t *testing.T) {
	s := New()
	n := mkNode(KindFunction, "foo", "fn foo()", "a.rs", 1)
	require.NoError(t, s.UpsertNode(n))

	got, err := s.GetNode(n.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got)
	assert.Equal(t, 1, s.NodeCount())
}

func TestUpsertNodeRejectsUnknownKind(t *testing.T) {
	s := New()
	n := Node{ID: 1, Name: "x"}
	err := s.UpsertNode(n)
	require.Error(t, err)
	var ie *isgerrors.IsgError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, isgerrors.InvalidInput, ie.Kind)
}

func TestUpsertNodeIdempotentReplace(t *testing.T) {
	s := New()
	n := mkNode(KindFunction, "foo", "fn foo()", "a.rs", 1)
	require.NoError(t, s.UpsertNode(n))
	n.Line = 5
	require.NoError(t, s.UpsertNode(n))
	assert.Equal(t, 1, s.NodeCount())
	got, err := s.GetNode(n.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Line)
}

func TestUpsertNodeReplaceClearsIncidentEdges(t *testing.T) {
	s := New()
	a := mkNode(KindFunction, "a", "fn a()", "x.rs", 1)
	b := mkNode(KindFunction, "b", "fn b()", "x.rs", 2)
	require.NoError(t, s.UpsertNode(a))
	require.NoError(t, s.UpsertNode(b))
	require.NoError(t, s.UpsertEdge(Edge{Kind: KindCalls, From: a.ID, To: b.ID}))
	require.Equal(t, 1, s.EdgeCount())

	a.Line = 9
	require.NoError(t, s.UpsertNode(a))

	assert.Equal(t, 0, s.EdgeCount())
	out, err := s.OutEdges(a.ID, KindEdgeUnknown)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGetNodeNotFound(t *testing.T) {
	s := New()
	_, err := s.GetNode(999)
	require.Error(t, err)
	var ie *isgerrors.IsgError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, isgerrors.NodeNotFound, ie.Kind)
}

func TestUpsertEdgeRequiresBothEndpoints(t *testing.T) {
	s := New()
	a := mkNode(KindFunction, "a", "fn a()", "x.rs", 1)
	require.NoError(t, s.UpsertNode(a))

	err := s.UpsertEdge(Edge{Kind: KindCalls, From: a.ID, To: 999})
	require.Error(t, err)
	var ie *isgerrors.IsgError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, isgerrors.NodeNotFound, ie.Kind)
}

func TestUpsertEdgeRejectsSelfImplements(t *testing.T) {
	s := New()
	a := mkNode(KindStruct, "A", "struct A", "x.rs", 1)
	require.NoError(t, s.UpsertNode(a))

	err := s.UpsertEdge(Edge{Kind: KindImplements, From: a.ID, To: a.ID})
	require.Error(t, err)
}

func TestUpsertEdgeRejectsImplementsOntoNonTrait(t *testing.T) {
	s := New()
	a := mkNode(KindStruct, "A", "struct A", "x.rs", 1)
	b := mkNode(KindStruct, "B", "struct B", "x.rs", 2)
	require.NoError(t, s.UpsertNode(a))
	require.NoError(t, s.UpsertNode(b))

	err := s.UpsertEdge(Edge{Kind: KindImplements, From: a.ID, To: b.ID})
	require.Error(t, err)
}

func TestApplyBatchResolvesIntentsAcrossFiles(t *testing.T) {
	s := New()
	trait := mkNode(KindTrait, "Display", "trait Display", "a.rs", 1)
	typ := mkNode(KindStruct, "User", "struct User", "b.rs", 1)

	nodesCreated, edgesCreated, err := s.ApplyBatch(
		[]Node{trait, typ},
		[]EdgeIntent{{FromID: typ.ID, ToName: "Display", Kind: KindImplements}},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, nodesCreated)
	assert.Equal(t, 1, edgesCreated)

	impls, err := s.OutEdges(typ.ID, KindImplements)
	require.NoError(t, err)
	require.Len(t, impls, 1)
	assert.Equal(t, trait.ID, impls[0].To)
}

func TestApplyBatchDropsUnresolvedIntents(t *testing.T) {
	s := New()
	fn := mkNode(KindFunction, "caller", "fn caller()", "a.rs", 1)
	_, edgesCreated, err := s.ApplyBatch([]Node{fn}, []EdgeIntent{{FromID: fn.ID, ToName: "missing", Kind: KindCalls}})
	require.NoError(t, err)
	assert.Equal(t, 0, edgesCreated)
}

func TestReplaceFileAtomicSwap(t *testing.T) {
	s := New()
	old := mkNode(KindFunction, "old", "fn old()", "x.rs", 1)
	require.NoError(t, s.UpsertNode(old))

	fresh := mkNode(KindFunction, "fresh", "fn fresh()", "x.rs", 1)
	nodesCreated, _, err := s.ReplaceFile("x.rs", []Node{fresh}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, nodesCreated)

	_, err = s.GetNode(old.ID)
	require.Error(t, err)
	got, err := s.GetNode(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Name)
}

func TestUpsertEdgeAllowsSelfCall(t *testing.T) {
	s := New()
	a := mkNode(KindFunction, "recurse", "fn recurse()", "x.rs", 1)
	require.NoError(t, s.UpsertNode(a))
	require.NoError(t, s.UpsertEdge(Edge{Kind: KindCalls, From: a.ID, To: a.ID}))
	assert.Equal(t, 1, s.EdgeCount())
}

func TestFindByNameInsertionOrder(t *testing.T) {
	s := New()
	first := mkNode(KindFunction, "dup", "fn dup() -> i32", "a.rs", 1)
	second := mkNode(KindFunction, "dup", "fn dup() -> u32", "b.rs", 1)
	require.NoError(t, s.UpsertNode(first))
	require.NoError(t, s.UpsertNode(second))

	matches := s.FindByName("dup")
	require.Len(t, matches, 2)
	assert.Equal(t, first.ID, matches[0].ID)
	assert.Equal(t, second.ID, matches[1].ID)
}

func TestRemoveFileClearsNodesAndEdges(t *testing.T) {
	s := New()
	a := mkNode(KindFunction, "a", "fn a()", "x.rs", 1)
	b := mkNode(KindFunction, "b", "fn b()", "x.rs", 2)
	require.NoError(t, s.UpsertNode(a))
	require.NoError(t, s.UpsertNode(b))
	require.NoError(t, s.UpsertEdge(Edge{Kind: KindCalls, From: a.ID, To: b.ID}))

	require.NoError(t, s.RemoveFile("x.rs"))
	assert.Equal(t, 0, s.NodeCount())
	assert.Equal(t, 0, s.EdgeCount())
	assert.Equal(t, 0, s.strings.size())
}

func TestRemoveFileNoOpForUnknownPath(t *testing.T) {
	s := New()
	require.NoError(t, s.RemoveFile("nope.rs"))
}

func TestBlastRadiusExcludesOriginAndRespectsDepth(t *testing.T) {
	s := New()
	a := mkNode(KindFunction, "a", "fn a()", "x.rs", 1)
	b := mkNode(KindFunction, "b", "fn b()", "x.rs", 2)
	c := mkNode(KindFunction, "c", "fn c()", "x.rs", 3)
	for _, n := range []Node{a, b, c} {
		require.NoError(t, s.UpsertNode(n))
	}
	require.NoError(t, s.UpsertEdge(Edge{Kind: KindCalls, From: a.ID, To: b.ID}))
	require.NoError(t, s.UpsertEdge(Edge{Kind: KindCalls, From: b.ID, To: c.ID}))

	depth1, err := s.BlastRadius(a.ID, 1)
	require.NoError(t, err)
	require.Len(t, depth1, 1)
	assert.Equal(t, b.ID, depth1[0].ID)

	depth2, err := s.BlastRadius(a.ID, 2)
	require.NoError(t, err)
	assert.Len(t, depth2, 2)

	_, err = s.BlastRadius(a.ID, 0)
	require.Error(t, err)
}

func TestFindCyclesFromDetectsSimpleCycle(t *testing.T) {
	s := New()
	a := mkNode(KindFunction, "a", "fn a()", "x.rs", 1)
	b := mkNode(KindFunction, "b", "fn b()", "x.rs", 2)
	require.NoError(t, s.UpsertNode(a))
	require.NoError(t, s.UpsertNode(b))
	require.NoError(t, s.UpsertEdge(Edge{Kind: KindCalls, From: a.ID, To: b.ID}))
	require.NoError(t, s.UpsertEdge(Edge{Kind: KindCalls, From: b.ID, To: a.ID}))

	cycles, err := s.FindCyclesFrom(a.ID, 10, 5)
	require.NoError(t, err)
	require.NotEmpty(t, cycles)
}

func TestFindCyclesFromNoCycle(t *testing.T) {
	s := New()
	a := mkNode(KindFunction, "a", "fn a()", "x.rs", 1)
	b := mkNode(KindFunction, "b", "fn b()", "x.rs", 2)
	require.NoError(t, s.UpsertNode(a))
	require.NoError(t, s.UpsertNode(b))
	require.NoError(t, s.UpsertEdge(Edge{Kind: KindCalls, From: a.ID, To: b.ID}))

	cycles, err := s.FindCyclesFrom(a.ID, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, cycles)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := New()
	a := mkNode(KindFunction, "a", "fn a()", "x.rs", 1)
	b := mkNode(KindFunction, "b", "fn b()", "x.rs", 2)
	require.NoError(t, s.UpsertNode(a))
	require.NoError(t, s.UpsertNode(b))
	require.NoError(t, s.UpsertEdge(Edge{Kind: KindCalls, From: a.ID, To: b.ID}))

	nodes, edges := s.Snapshot()

	restored := New()
	require.NoError(t, restored.Restore(nodes, edges))

	rNodes, rEdges := restored.Snapshot()
	assert.Equal(t, nodes, rNodes)
	assert.Equal(t, edges, rEdges)
}

func TestRestoreRejectsNonEmptyStore(t *testing.T) {
	s := New()
	require.NoError(t, s.UpsertNode(mkNode(KindFunction, "a", "fn a()", "x.rs", 1)))
	err := s.Restore(nil, nil)
	require.Error(t, err)
}

func TestShortestCallsPathFindsChainIgnoringOtherEdgeKinds(t *testing.T) {
	s := New()
	a := mkNode(KindFunction, "a", "fn a()", "x.rs", 1)
	b := mkNode(KindFunction, "b", "fn b()", "x.rs", 2)
	c := mkNode(KindFunction, "c", "fn c()", "x.rs", 3)
	d := mkNode(KindStruct, "D", "struct D", "x.rs", 4)
	for _, n := range []Node{a, b, c, d} {
		require.NoError(t, s.UpsertNode(n))
	}
	require.NoError(t, s.UpsertEdge(Edge{Kind: KindCalls, From: a.ID, To: b.ID}))
	require.NoError(t, s.UpsertEdge(Edge{Kind: KindCalls, From: b.ID, To: c.ID}))
	require.NoError(t, s.UpsertEdge(Edge{Kind: KindUses, From: a.ID, To: d.ID}))

	path, err := s.ShortestCallsPath(a.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, []uint64{a.ID, b.ID, c.ID}, []uint64{path[0].ID, path[1].ID, path[2].ID})
}

func TestShortestCallsPathUnreachableIsEntityNotFound(t *testing.T) {
	s := New()
	a := mkNode(KindFunction, "a", "fn a()", "x.rs", 1)
	b := mkNode(KindFunction, "b", "fn b()", "x.rs", 2)
	require.NoError(t, s.UpsertNode(a))
	require.NoError(t, s.UpsertNode(b))

	_, err := s.ShortestCallsPath(a.ID, b.ID)
	require.Error(t, err)
	var ie *isgerrors.IsgError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, isgerrors.EntityNotFound, ie.Kind)
}

func TestShortestCallsPathUnknownOriginIsNodeNotFound(t *testing.T) {
	s := New()
	require.NoError(t, s.UpsertNode(mkNode(KindFunction, "a", "fn a()", "x.rs", 1)))
	_, err := s.ShortestCallsPath(999, 1)
	require.Error(t, err)
	var ie *isgerrors.IsgError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, isgerrors.NodeNotFound, ie.Kind)
}

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

package graph

import (
	"sort"
	"strconv"
	"sync"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"

	"github.com/kraklabs/isg/internal/isgerrors"
)

// Store is the Interface Signature Graph: an in-memory, mutex-guarded
// graph of Rust code entities and the relationships between them. The
// zero value is not usable; construct one with New.
//
// Store is safe to share across goroutines. Every exported method except
// Restore takes the single mu lock for its full duration; reads release
// it before returning cloned data, writes hold it for the whole
// mutation. Restore takes the lock once for its emptiness check and then
// once per node and per edge it inserts, so it is not atomic with
// respect to concurrent callers.
type Store struct {
	mu sync.RWMutex

	g *core.Graph

	nodes     map[uint64]*nodeRecord
	nameMap   map[string]map[uint64]struct{}
	nameOrder map[string][]uint64
	fileIndex map[string]map[uint64]struct{}
	edgeMeta  map[string]edgeRecord

	strings *internPool
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		g:         core.NewGraph(core.WithDirected(true), core.WithMultiEdges(), core.WithLoops()),
		nodes:     make(map[uint64]*nodeRecord),
		nameMap:   make(map[string]map[uint64]struct{}),
		nameOrder: make(map[string][]uint64),
		fileIndex: make(map[string]map[uint64]struct{}),
		edgeMeta:  make(map[string]edgeRecord),
		strings:   newInternPool(),
	}
}

func vid(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// recoverStateCorrupted converts an internal panic into a
// isgerrors.StateCorrupted error without leaving the lock held. Callers
// defer it after deferring the unlock, so it runs first (defers run
// last-in first-out) and the deferred unlock still runs afterwards.
func recoverStateCorrupted(errOut *error) {
	if r := recover(); r != nil {
		*errOut = isgerrors.NewStateCorrupted(r)
	}
}

// UpsertNode inserts a node, or replaces it in place if a node with the
// same id already exists (content-identical re-ingestion of an unchanged
// declaration is idempotent). Returns isgerrors.InvalidInput if kind is
// KindUnknown.
func (s *Store) UpsertNode(n Node) (err error) {
	if n.Kind == KindUnknown {
		return isgerrors.NewInvalidInput("node kind must not be Unknown")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer recoverStateCorrupted(&err)

	s.upsertNodeLocked(n)
	return nil
}

// upsertNodeLocked inserts or replaces n. Callers must hold mu for
// writing.
func (s *Store) upsertNodeLocked(n Node) {
	if existing, ok := s.nodes[n.ID]; ok {
		s.removeNodeLocked(n.ID, existing)
	}

	rec := &nodeRecord{
		kind:      n.Kind,
		name:      s.strings.intern(n.Name),
		signature: s.strings.intern(n.Signature),
		filePath:  s.strings.intern(n.FilePath),
		line:      n.Line,
	}
	s.nodes[n.ID] = rec

	if err := s.g.AddVertex(vid(n.ID)); err != nil {
		panic(err)
	}

	if s.nameMap[n.Name] == nil {
		s.nameMap[n.Name] = make(map[uint64]struct{})
	}
	s.nameMap[n.Name][n.ID] = struct{}{}
	s.nameOrder[n.Name] = append(s.nameOrder[n.Name], n.ID)

	if s.fileIndex[n.FilePath] == nil {
		s.fileIndex[n.FilePath] = make(map[uint64]struct{})
	}
	s.fileIndex[n.FilePath][n.ID] = struct{}{}
}

// removeNodeLocked removes a node's vertex, indices, interned strings,
// and any edge incident to it. Callers must hold mu for writing.
func (s *Store) removeNodeLocked(id uint64, rec *nodeRecord) {
	for eid, erec := range s.edgeMeta {
		if erec.from == id || erec.to == id {
			_ = s.g.RemoveEdge(eid)
			delete(s.edgeMeta, eid)
		}
	}

	delete(s.nodes, id)

	if set, ok := s.nameMap[*rec.name]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(s.nameMap, *rec.name)
			delete(s.nameOrder, *rec.name)
		} else {
			order := s.nameOrder[*rec.name]
			for i, oid := range order {
				if oid == id {
					s.nameOrder[*rec.name] = append(order[:i], order[i+1:]...)
					break
				}
			}
		}
	}

	if set, ok := s.fileIndex[*rec.filePath]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(s.fileIndex, *rec.filePath)
		}
	}

	s.strings.release(rec.name)
	s.strings.release(rec.signature)
	s.strings.release(rec.filePath)

	_ = s.g.RemoveVertex(vid(id))
}

// UpsertEdge inserts an edge between two existing nodes. Returns
// isgerrors.NodeNotFound if either endpoint does not exist, and
// isgerrors.InvalidInput for a self-loop Implements edge (invariant 6:
// a type cannot implement itself).
func (s *Store) UpsertEdge(e Edge) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer recoverStateCorrupted(&err)

	if _, ok := s.nodes[e.From]; !ok {
		return isgerrors.NewNodeNotFound(e.From)
	}
	if _, ok := s.nodes[e.To]; !ok {
		return isgerrors.NewNodeNotFound(e.To)
	}
	if e.Kind == KindImplements && e.From == e.To {
		return isgerrors.NewInvalidInput("a type cannot implement itself")
	}
	if e.Kind == KindImplements {
		if s.nodes[e.From].kind == KindTrait || s.nodes[e.To].kind != KindTrait {
			return isgerrors.NewInvalidInput("Implements must go from a non-Trait node to a Trait node")
		}
	}

	eid, err2 := s.g.AddEdge(vid(e.From), vid(e.To), 0)
	if err2 != nil {
		panic(err2)
	}
	s.edgeMeta[eid] = edgeRecord{kind: e.Kind, from: e.From, to: e.To}
	return nil
}

// EdgeIntent names a source node id, a target name not yet resolved to
// an id, and an edge kind. Pass 2 of ingestion emits intents instead of
// resolved edges because global name resolution requires every file's
// Pass 1 to have already run.
type EdgeIntent struct {
	FromID uint64
	ToName string
	Kind   EdgeKind
}

// ApplyBatch upserts nodes and then resolves intents against the
// resulting name map, all under one write-lock acquisition. Name
// resolution is best-effort local: the first matching id in insertion
// order, per DESIGN.md's resolution of Open Question #1. Intents whose
// target name resolves to nothing, or whose resolved edge violates the
// Implements invariants, are silently dropped, matching spec.md's
// "unresolved names are silently dropped" rule.
func (s *Store) ApplyBatch(nodes []Node, intents []EdgeIntent) (nodesCreated, edgesCreated int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer recoverStateCorrupted(&err)

	for _, n := range nodes {
		if _, existed := s.nodes[n.ID]; !existed {
			nodesCreated++
		}
		s.upsertNodeLocked(n)
	}

	for _, in := range intents {
		targetID, ok := s.resolveNameLocked(in.ToName)
		if !ok {
			continue
		}
		if in.Kind == KindImplements && (s.nodes[in.FromID].kind == KindTrait || s.nodes[targetID].kind != KindTrait) {
			continue
		}
		if in.Kind == KindImplements && in.FromID == targetID {
			continue
		}
		eid, aerr := s.g.AddEdge(vid(in.FromID), vid(targetID), 0)
		if aerr != nil {
			continue
		}
		s.edgeMeta[eid] = edgeRecord{kind: in.Kind, from: in.FromID, to: targetID}
		edgesCreated++
	}

	return nodesCreated, edgesCreated, nil
}

// ReplaceFile atomically removes path's existing nodes/edges and applies
// its freshly parsed nodes and edge intents, resolving names against the
// now-current name map (which includes this file's new nodes but not a
// re-scan of any other file), per spec.md's update_file semantics.
func (s *Store) ReplaceFile(path string, nodes []Node, intents []EdgeIntent) (nodesCreated, edgesCreated int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer recoverStateCorrupted(&err)

	s.removeFileLocked(path)

	for _, n := range nodes {
		s.upsertNodeLocked(n)
		nodesCreated++
	}

	for _, in := range intents {
		targetID, ok := s.resolveNameLocked(in.ToName)
		if !ok {
			continue
		}
		if in.Kind == KindImplements && (s.nodes[in.FromID].kind == KindTrait || s.nodes[targetID].kind != KindTrait) {
			continue
		}
		if in.Kind == KindImplements && in.FromID == targetID {
			continue
		}
		eid, aerr := s.g.AddEdge(vid(in.FromID), vid(targetID), 0)
		if aerr != nil {
			continue
		}
		s.edgeMeta[eid] = edgeRecord{kind: in.Kind, from: in.FromID, to: targetID}
		edgesCreated++
	}

	return nodesCreated, edgesCreated, nil
}

// resolveNameLocked returns the first id registered under name, in
// insertion order. Callers must hold mu.
func (s *Store) resolveNameLocked(name string) (uint64, bool) {
	order := s.nameOrder[name]
	if len(order) == 0 {
		return 0, false
	}
	return order[0], true
}

// GetNode returns the node with the given id.
func (s *Store) GetNode(id uint64) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.nodes[id]
	if !ok {
		return Node{}, isgerrors.NewNodeNotFound(id)
	}
	return rec.toNode(id), nil
}

// FindByName returns every node with the given name, in insertion order
// (re-upserting an existing id removes it and appends it again, moving
// it to the end), per DESIGN.md's resolution of Open Question #1.
func (s *Store) FindByName(name string) []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order := s.nameOrder[name]
	out := make([]Node, 0, len(order))
	for _, id := range order {
		if rec, ok := s.nodes[id]; ok {
			out = append(out, rec.toNode(id))
		}
	}
	return out
}

// NodeCount returns the number of nodes currently in the graph.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeCount returns the number of edges currently in the graph.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edgeMeta)
}

// OutEdges returns every outgoing edge of kind filter from id. Pass
// KindEdgeUnknown to return edges of any kind.
func (s *Store) OutEdges(id uint64, filter EdgeKind) ([]Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outEdgesLocked(id, filter)
}

func (s *Store) outEdgesLocked(id uint64, filter EdgeKind) ([]Edge, error) {
	if _, ok := s.nodes[id]; !ok {
		return nil, isgerrors.NewNodeNotFound(id)
	}

	lvEdges, err := s.g.Neighbors(vid(id))
	if err != nil {
		return nil, isgerrors.New(isgerrors.StateCorrupted, "neighbor lookup failed", "", "", err)
	}

	out := make([]Edge, 0, len(lvEdges))
	for _, le := range lvEdges {
		rec, ok := s.edgeMeta[le.ID]
		if !ok || rec.from != id {
			continue
		}
		if filter != KindEdgeUnknown && rec.kind != filter {
			continue
		}
		out = append(out, Edge{Kind: rec.kind, From: rec.from, To: rec.to})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].Kind < out[j].Kind
	})
	return out, nil
}

// InEdges returns every incoming edge of kind filter into id. Pass
// KindEdgeUnknown to return edges of any kind.
func (s *Store) InEdges(id uint64, filter EdgeKind) ([]Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodes[id]; !ok {
		return nil, isgerrors.NewNodeNotFound(id)
	}

	var out []Edge
	for _, rec := range s.edgeMeta {
		if rec.to != id {
			continue
		}
		if filter != KindEdgeUnknown && rec.kind != filter {
			continue
		}
		out = append(out, Edge{Kind: rec.kind, From: rec.from, To: rec.to})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].Kind < out[j].Kind
	})
	return out, nil
}

// RemoveFile removes every node (and incident edge) that belongs to
// path. It is a no-op if path is not present.
func (s *Store) RemoveFile(path string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer recoverStateCorrupted(&err)

	s.removeFileLocked(path)
	return nil
}

func (s *Store) removeFileLocked(path string) {
	ids, ok := s.fileIndex[path]
	if !ok {
		return
	}
	idList := make([]uint64, 0, len(ids))
	for id := range ids {
		idList = append(idList, id)
	}

	for _, id := range idList {
		rec := s.nodes[id]
		s.removeNodeLocked(id, rec)
	}
}

// BlastRadius returns every node reachable from originID within maxDepth
// hops, regardless of edge kind, excluding the origin itself. Returns
// isgerrors.NodeNotFound if originID does not exist, and
// isgerrors.InvalidInput if maxDepth is less than 1.
func (s *Store) BlastRadius(originID uint64, maxDepth int) ([]Node, error) {
	if maxDepth < 1 {
		return nil, isgerrors.NewInvalidInput("maxDepth must be at least 1")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodes[originID]; !ok {
		return nil, isgerrors.NewNodeNotFound(originID)
	}

	result, err := bfs.BFS(s.g, vid(originID), bfs.WithMaxDepth(maxDepth))
	if err != nil {
		return nil, isgerrors.New(isgerrors.StateCorrupted, "blast radius traversal failed", "", "", err)
	}

	out := make([]Node, 0, len(result.Order))
	for _, v := range result.Order {
		if v == vid(originID) {
			continue
		}
		id, perr := strconv.ParseUint(v, 10, 64)
		if perr != nil {
			continue
		}
		if rec, ok := s.nodes[id]; ok {
			out = append(out, rec.toNode(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DFS three-color marking states, matching the idiom used by
// katalvlaran/lvlath's dfs.DetectCycles.
const (
	white = 0
	gray  = 1
	black = 2
)

// FindCyclesFrom runs a bounded, origin-scoped depth-first search for
// simple cycles that pass through originID, stopping once maxDepth hops
// have been explored on a branch or maxCycles cycles have been found.
// Unlike katalvlaran/lvlath's dfs.DetectCycles (which enumerates every
// cycle in the whole graph), this never explores outside originID's
// component and is cheap enough to run per query.
func (s *Store) FindCyclesFrom(originID uint64, maxDepth, maxCycles int) ([][]uint64, error) {
	if maxDepth < 0 {
		return nil, isgerrors.NewInvalidInput("maxDepth must not be negative")
	}
	if maxCycles <= 0 {
		maxCycles = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodes[originID]; !ok {
		return nil, isgerrors.NewNodeNotFound(originID)
	}

	state := make(map[uint64]int)
	var path []uint64
	var cycles [][]uint64

	var visit func(id uint64, depth int)
	visit = func(id uint64, depth int) {
		if len(cycles) >= maxCycles {
			return
		}
		if maxDepth > 0 && depth > maxDepth {
			return
		}
		state[id] = gray
		path = append(path, id)

		edges, err := s.outEdgesLocked(id, KindEdgeUnknown)
		if err == nil {
			for _, e := range edges {
				if len(cycles) >= maxCycles {
					break
				}
				switch state[e.To] {
				case white:
					visit(e.To, depth+1)
				case gray:
					if e.To == originID {
						cyc := make([]uint64, len(path))
						copy(cyc, path)
						cycles = append(cycles, cyc)
					}
				case black:
					// already fully explored, no new cycle through here
				}
			}
		}

		path = path[:len(path)-1]
		state[id] = black
	}

	visit(originID, 0)
	return cycles, nil
}

// ShortestCallsPath returns the shortest chain of nodes from fromID to
// toID following only Calls edges, inclusive of both endpoints. Returns
// isgerrors.NodeNotFound if either id does not exist, and
// isgerrors.EntityNotFound if toID is not reachable from fromID via
// Calls edges alone.
func (s *Store) ShortestCallsPath(fromID, toID uint64) ([]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodes[fromID]; !ok {
		return nil, isgerrors.NewNodeNotFound(fromID)
	}
	if _, ok := s.nodes[toID]; !ok {
		return nil, isgerrors.NewNodeNotFound(toID)
	}

	callsNeighbor := func(curr, neighbor string) bool {
		currID, err := strconv.ParseUint(curr, 10, 64)
		if err != nil {
			return false
		}
		neighborID, err := strconv.ParseUint(neighbor, 10, 64)
		if err != nil {
			return false
		}
		for _, rec := range s.edgeMeta {
			if rec.kind == KindCalls && rec.from == currID && rec.to == neighborID {
				return true
			}
		}
		return false
	}

	result, err := bfs.BFS(s.g, vid(fromID), bfs.WithFilterNeighbor(callsNeighbor))
	if err != nil {
		return nil, isgerrors.New(isgerrors.StateCorrupted, "execution path traversal failed", "", "", err)
	}

	path, perr := result.PathTo(vid(toID))
	if perr != nil {
		return nil, isgerrors.NewEntityNotFound(strconv.FormatUint(toID, 10))
	}

	out := make([]Node, 0, len(path))
	for _, v := range path {
		id, perr := strconv.ParseUint(v, 10, 64)
		if perr != nil {
			continue
		}
		if rec, ok := s.nodes[id]; ok {
			out = append(out, rec.toNode(id))
		}
	}
	return out, nil
}

// Snapshot returns every node and edge currently in the graph, in a form
// suitable for pkg/snapshot to encode. Nodes are sorted by id and edges
// by (from, to, kind) for deterministic output.
func (s *Store) Snapshot() ([]Node, []Edge) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]Node, 0, len(s.nodes))
	for id, rec := range s.nodes {
		nodes = append(nodes, rec.toNode(id))
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	edges := make([]Edge, 0, len(s.edgeMeta))
	for _, rec := range s.edgeMeta {
		edges = append(edges, Edge{Kind: rec.kind, From: rec.from, To: rec.to})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].Kind < edges[j].Kind
	})

	return nodes, edges
}

// Restore replaces the Store's entire contents with nodes and edges,
// typically loaded from a snapshot. The Store must be empty; Restore
// returns isgerrors.InvalidInput otherwise, to avoid silently merging
// two unrelated graphs.
func (s *Store) Restore(nodes []Node, edges []Edge) error {
	s.mu.RLock()
	empty := len(s.nodes) == 0
	s.mu.RUnlock()
	if !empty {
		return isgerrors.NewInvalidInput("Restore requires an empty store")
	}

	for _, n := range nodes {
		if err := s.UpsertNode(n); err != nil {
			return err
		}
	}
	for _, e := range edges {
		if err := s.UpsertEdge(e); err != nil {
			return err
		}
	}
	return nil
}

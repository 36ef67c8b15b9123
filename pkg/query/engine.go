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

package query

import (
	"strconv"

	"github.com/kraklabs/isg/internal/isgerrors"
	"github.com/kraklabs/isg/pkg/graph"
)

// DefaultBlastRadiusDepth is used when BlastRadius is called with
// maxDepth 0, per spec.md's "defaults to a small value (e.g. 3)".
const DefaultBlastRadiusDepth = 3

// DefaultCycleMaxDepth and DefaultCycleMaxCount bound FindCycles when
// called with zero values, keeping a single query cheap even on a large
// graph.
const (
	DefaultCycleMaxDepth = 10
	DefaultCycleMaxCount = 100
)

// Engine answers architectural questions about a graph.Store. It holds
// no state of its own beyond the store reference; every method is safe
// to call concurrently, since graph.Store already serializes access.
type Engine struct {
	store *graph.Store
}

// New returns an Engine backed by store.
func New(store *graph.Store) *Engine {
	return &Engine{store: store}
}

// resolve accepts either a decimal node id or an entity name and
// returns the single node id it identifies. A name that resolves to
// zero nodes is isgerrors.EntityNotFound; a name that resolves to more
// than one is isgerrors.AmbiguousName, per spec.md's failure modes.
func (e *Engine) resolve(nameOrID string) (uint64, error) {
	if id, err := strconv.ParseUint(nameOrID, 10, 64); err == nil {
		if _, gerr := e.store.GetNode(id); gerr != nil {
			return 0, gerr
		}
		return id, nil
	}

	matches := e.store.FindByName(nameOrID)
	switch len(matches) {
	case 0:
		return 0, isgerrors.NewEntityNotFound(nameOrID)
	case 1:
		return matches[0].ID, nil
	default:
		return 0, isgerrors.NewAmbiguousName(nameOrID, len(matches))
	}
}

func (e *Engine) cloneEdgeTargets(edges []graph.Edge, byFrom bool) ([]graph.Node, error) {
	out := make([]graph.Node, 0, len(edges))
	for _, edge := range edges {
		id := edge.To
		if byFrom {
			id = edge.From
		}
		n, err := e.store.GetNode(id)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// WhatImplements returns every node with an Implements edge into the
// trait named or identified by traitNameOrID.
func (e *Engine) WhatImplements(traitNameOrID string) ([]graph.Node, error) {
	id, err := e.resolve(traitNameOrID)
	if err != nil {
		return nil, err
	}
	edges, err := e.store.InEdges(id, graph.KindImplements)
	if err != nil {
		return nil, err
	}
	return e.cloneEdgeTargets(edges, true)
}

// BlastRadius returns every node reachable from nameOrID within
// maxDepth hops of any edge kind, excluding the origin. maxDepth of 0
// uses DefaultBlastRadiusDepth; a negative maxDepth is
// isgerrors.InvalidInput.
func (e *Engine) BlastRadius(nameOrID string, maxDepth int) ([]graph.Node, error) {
	if maxDepth < 0 {
		return nil, isgerrors.NewInvalidInput("maxDepth must not be negative")
	}
	if maxDepth == 0 {
		maxDepth = DefaultBlastRadiusDepth
	}
	id, err := e.resolve(nameOrID)
	if err != nil {
		return nil, err
	}
	return e.store.BlastRadius(id, maxDepth)
}

// FindCycles returns the simple cycles through nameOrID that a depth-first
// search from it finds, up to maxDepth hops and maxCycles results. Each
// node is expanded at most once, so a cycle that re-enters an already
// fully explored node is not reported. Zero values fall back to
// DefaultCycleMaxDepth and DefaultCycleMaxCount.
func (e *Engine) FindCycles(nameOrID string, maxDepth, maxCycles int) ([][]graph.Node, error) {
	if maxDepth < 0 {
		return nil, isgerrors.NewInvalidInput("maxDepth must not be negative")
	}
	if maxDepth == 0 {
		maxDepth = DefaultCycleMaxDepth
	}
	if maxCycles <= 0 {
		maxCycles = DefaultCycleMaxCount
	}

	id, err := e.resolve(nameOrID)
	if err != nil {
		return nil, err
	}
	cycles, err := e.store.FindCyclesFrom(id, maxDepth, maxCycles)
	if err != nil {
		return nil, err
	}

	out := make([][]graph.Node, 0, len(cycles))
	for _, cyc := range cycles {
		nodes := make([]graph.Node, 0, len(cyc))
		for _, cid := range cyc {
			n, gerr := e.store.GetNode(cid)
			if gerr != nil {
				continue
			}
			nodes = append(nodes, n)
		}
		out = append(out, nodes)
	}
	return out, nil
}

// WhoCalls returns every node with a Calls edge into functionNameOrID.
func (e *Engine) WhoCalls(functionNameOrID string) ([]graph.Node, error) {
	id, err := e.resolve(functionNameOrID)
	if err != nil {
		return nil, err
	}
	edges, err := e.store.InEdges(id, graph.KindCalls)
	if err != nil {
		return nil, err
	}
	return e.cloneEdgeTargets(edges, true)
}

// GetCalledFunctions returns every node functionNameOrID has a Calls
// edge to.
func (e *Engine) GetCalledFunctions(functionNameOrID string) ([]graph.Node, error) {
	id, err := e.resolve(functionNameOrID)
	if err != nil {
		return nil, err
	}
	edges, err := e.store.OutEdges(id, graph.KindCalls)
	if err != nil {
		return nil, err
	}
	return e.cloneEdgeTargets(edges, false)
}

// ExecutionPath returns the shortest chain of Calls edges from
// fromNameOrID to toNameOrID, inclusive of both endpoints.
func (e *Engine) ExecutionPath(fromNameOrID, toNameOrID string) ([]graph.Node, error) {
	fromID, err := e.resolve(fromNameOrID)
	if err != nil {
		return nil, err
	}
	toID, err := e.resolve(toNameOrID)
	if err != nil {
		return nil, err
	}
	return e.store.ShortestCallsPath(fromID, toID)
}

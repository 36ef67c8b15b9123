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

package context

import (
	"sort"
	"strconv"

	"github.com/kraklabs/isg/internal/isgerrors"
	"github.com/kraklabs/isg/pkg/graph"
)

// Bundle is the structured context returned for a single target entity:
// the target itself, its immediate dependencies and dependents, and
// its trait relationships. Every node is a full clone with signature
// and location, never a reference into the store.
type Bundle struct {
	Target            graph.Node
	Dependencies      []graph.Node
	Dependents        []graph.Node
	Implementors      []graph.Node
	ImplementedTraits []graph.Node
}

// Assembler assembles Bundles from a graph.Store.
type Assembler struct {
	store *graph.Store
}

// New returns an Assembler backed by store.
func New(store *graph.Store) *Assembler {
	return &Assembler{store: store}
}

// Assemble resolves nameOrID and builds its context Bundle. A name that
// resolves to zero nodes is isgerrors.EntityNotFound; more than one is
// isgerrors.AmbiguousName, matching pkg/query's resolution rules.
func (a *Assembler) Assemble(nameOrID string) (Bundle, error) {
	id, err := a.resolve(nameOrID)
	if err != nil {
		return Bundle{}, err
	}

	target, err := a.store.GetNode(id)
	if err != nil {
		return Bundle{}, err
	}

	deps, err := a.dependencies(id)
	if err != nil {
		return Bundle{}, err
	}
	dependents, err := a.dependents(id)
	if err != nil {
		return Bundle{}, err
	}

	bundle := Bundle{
		Target:       target,
		Dependencies: deps,
		Dependents:   dependents,
	}

	if target.Kind == graph.KindTrait {
		implementors, err := a.clonedEdgeEnds(id, graph.KindImplements, true)
		if err != nil {
			return Bundle{}, err
		}
		bundle.Implementors = implementors
	} else {
		traits, err := a.clonedEdgeEnds(id, graph.KindImplements, false)
		if err != nil {
			return Bundle{}, err
		}
		bundle.ImplementedTraits = traits
	}

	return bundle, nil
}

func (a *Assembler) resolve(nameOrID string) (uint64, error) {
	if id, err := strconv.ParseUint(nameOrID, 10, 64); err == nil {
		if _, gerr := a.store.GetNode(id); gerr != nil {
			return 0, gerr
		}
		return id, nil
	}

	matches := a.store.FindByName(nameOrID)
	switch len(matches) {
	case 0:
		return 0, isgerrors.NewEntityNotFound(nameOrID)
	case 1:
		return matches[0].ID, nil
	default:
		return 0, isgerrors.NewAmbiguousName(nameOrID, len(matches))
	}
}

// dependencies returns id's one-hop outgoing Uses and Calls neighbors,
// deduplicated by id and sorted for deterministic output.
func (a *Assembler) dependencies(id uint64) ([]graph.Node, error) {
	uses, err := a.clonedEdgeEnds(id, graph.KindUses, false)
	if err != nil {
		return nil, err
	}
	calls, err := a.clonedEdgeEnds(id, graph.KindCalls, false)
	if err != nil {
		return nil, err
	}
	return dedupeSorted(uses, calls), nil
}

// dependents returns id's one-hop incoming Calls neighbors.
func (a *Assembler) dependents(id uint64) ([]graph.Node, error) {
	calls, err := a.clonedEdgeEnds(id, graph.KindCalls, true)
	if err != nil {
		return nil, err
	}
	return dedupeSorted(calls), nil
}

// clonedEdgeEnds returns the clones of the node at the other end of
// each edge of kind filter touching id. incoming selects InEdges (the
// from-end of each edge); outgoing selects OutEdges (the to-end).
func (a *Assembler) clonedEdgeEnds(id uint64, filter graph.EdgeKind, incoming bool) ([]graph.Node, error) {
	var edges []graph.Edge
	var err error
	if incoming {
		edges, err = a.store.InEdges(id, filter)
	} else {
		edges, err = a.store.OutEdges(id, filter)
	}
	if err != nil {
		return nil, err
	}

	out := make([]graph.Node, 0, len(edges))
	for _, e := range edges {
		other := e.To
		if incoming {
			other = e.From
		}
		n, gerr := a.store.GetNode(other)
		if gerr != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func dedupeSorted(groups ...[]graph.Node) []graph.Node {
	seen := make(map[uint64]struct{})
	var out []graph.Node
	for _, group := range groups {
		for _, n := range group {
			if _, ok := seen[n.ID]; ok {
				continue
			}
			seen[n.ID] = struct{}{}
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SPDX-License-Identifier: AGPL-3.0-or-later

// Package graph implements the Interface Signature Graph store.
//
// Store holds Rust code entities (functions, structs, traits, enums,
// impls, modules, constants, statics, macros) and the Calls/Uses/
// Implements relationships between them, behind a single sync.RWMutex.
// Node identity is a caller-supplied 64-bit hash (see pkg/identity);
// Store never computes it itself.
//
// Topology is delegated to github.com/katalvlaran/lvlath/core, with
// blast-radius queries using lvlath/bfs and cycle detection borrowing
// the three-color idiom from lvlath/dfs. Store keeps its own id/name/
// file indices on top, since lvlath has no notion of named entities or
// file ownership.
package graph

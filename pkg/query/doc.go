// SPDX-License-Identifier: AGPL-3.0-or-later

// Package query implements the Interface Signature Graph's read-side
// operations: implementor lookup, blast radius, cycle detection,
// caller/callee lookup, and execution-path search. Every operation
// resolves a name-or-id argument once and then delegates the actual
// traversal to pkg/graph.Store, which already holds the lock discipline
// and the lvlath-backed topology.
package query

// SPDX-License-Identifier: AGPL-3.0-or-later

// Package update implements the incremental update protocol: parse a
// changed file outside the Graph Store's lock, then atomically swap
// its nodes and edges into the store under a single write-lock
// acquisition. This is the same two-pass extraction pkg/ingestion uses
// for a full bundle, scoped to one file.
package update

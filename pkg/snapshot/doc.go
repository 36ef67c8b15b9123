// SPDX-License-Identifier: AGPL-3.0-or-later

// Package snapshot persists a Graph Store's entire contents to and
// from a gzip-compressed JSON manifest, for restart-time reload
// without a full re-ingest.
package snapshot

// SPDX-License-Identifier: AGPL-3.0-or-later

// Package context assembles structured context bundles for downstream
// LLM consumers: a target node, its one-hop dependencies and
// dependents, and its trait/implementor relationships. It performs no
// text generation, templating, or summarization — every field is a
// clone of data already in pkg/graph.Store.
package context

// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/isg/pkg/graph"
)

func extractFixtureIntents(t *testing.T) ([]graph.Node, []graph.EdgeIntent) {
	t.Helper()
	p := NewRustParser(nil)
	pf, err := p.Parse(t.Context(), "lib.rs", fixtureSource)
	require.NoError(t, err)
	t.Cleanup(pf.Close)
	u := extractNodes(pf)
	return u.nodes, extractIntents(pf, u)
}

func hasIntent(intents []graph.EdgeIntent, from uint64, toName string, kind graph.EdgeKind) bool {
	for _, in := range intents {
		if in.FromID == from && in.ToName == toName && in.Kind == kind {
			return true
		}
	}
	return false
}

func TestExtractIntentsEmitsImplementsFromStructToTrait(t *testing.T) {
	nodes, intents := extractFixtureIntents(t)
	person, ok := findNode(nodes, "Person", graph.KindStruct)
	require.True(t, ok)
	assert.True(t, hasIntent(intents, person.ID, "Greeter", graph.KindImplements))
}

func TestExtractIntentsEmitsCallsForScopedAndMethodCalls(t *testing.T) {
	nodes, intents := extractFixtureIntents(t)
	main, ok := findNode(nodes, "main", graph.KindFunction)
	require.True(t, ok)
	assert.True(t, hasIntent(intents, main.ID, "new", graph.KindCalls))
	assert.True(t, hasIntent(intents, main.ID, "greet", graph.KindCalls))
}

func TestExtractIntentsSkipsBuiltinMethodCalls(t *testing.T) {
	nodes, intents := extractFixtureIntents(t)
	main, ok := findNode(nodes, "main", graph.KindFunction)
	require.True(t, ok)
	assert.False(t, hasIntent(intents, main.ID, "to_string", graph.KindCalls))
	assert.False(t, hasIntent(intents, main.ID, "println", graph.KindCalls))
	assert.False(t, hasIntent(intents, main.ID, "clone", graph.KindCalls))
}

func TestExtractIntentsEmitsUsesForFieldType(t *testing.T) {
	_, intents := extractFixtureIntents(t)
	var sawString bool
	for _, in := range intents {
		if in.Kind == graph.KindUses && in.ToName == "String" {
			sawString = true
		}
	}
	assert.True(t, sawString)
}

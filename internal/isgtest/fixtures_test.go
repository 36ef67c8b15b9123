// SPDX-License-Identifier: AGPL-3.0-or-later

package isgtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedStoreIngestsSampleBundle(t *testing.T) {
	store := SeedStore(t)
	require.Greater(t, store.NodeCount(), 0)

	circles := store.FindByName("Circle")
	require.NotEmpty(t, circles)
	assert.Greater(t, store.EdgeCount(), 0)
}

// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRustParserParsesCleanSource(t *testing.T) {
	p := NewRustParser(nil)
	pf, err := p.Parse(context.Background(), "a.rs", "pub fn add(a: i32, b: i32) -> i32 { a + b }")
	require.NoError(t, err)
	defer pf.Close()
	assert.False(t, pf.HasErrors)
	assert.Equal(t, 0, pf.ErrorCount)
}

func TestRustParserToleratesSyntaxErrors(t *testing.T) {
	p := NewRustParser(nil)
	pf, err := p.Parse(context.Background(), "bad.rs", "pub fn broken(a: i32 -> i32 { a }")
	require.NoError(t, err)
	defer pf.Close()
	assert.True(t, pf.HasErrors)
	assert.Greater(t, pf.ErrorCount, 0)
}

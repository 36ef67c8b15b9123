// SPDX-License-Identifier: AGPL-3.0-or-later

package obs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPassesWithinLimit(t *testing.T) {
	timer := StartTimer("test.fast")
	err := timer.Check(time.Second)
	require.NoError(t, err)
}

func TestCheckViolationIsWarningByDefault(t *testing.T) {
	t.Setenv(StrictEnv, "")
	timer := Timer{op: "test.slow", start: time.Now().Add(-time.Hour)}
	err := timer.Check(time.Millisecond)
	require.NoError(t, err)
}

func TestCheckViolationReturnsErrorInStrictMode(t *testing.T) {
	t.Setenv(StrictEnv, "1")
	timer := Timer{op: "test.slow", start: time.Now().Add(-time.Hour)}
	err := timer.Check(time.Millisecond)
	require.Error(t, err)
}

func TestStrictRecognizesFalsyValues(t *testing.T) {
	t.Setenv(StrictEnv, "0")
	assert.False(t, Strict())
	t.Setenv(StrictEnv, "false")
	assert.False(t, Strict())
	t.Setenv(StrictEnv, "1")
	assert.True(t, Strict())
}

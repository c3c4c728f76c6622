package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldApplyNewerWins(t *testing.T) {
	older := makeTask(taskID, at(0))
	newer := makeTask(taskID, at(1))

	apply, err := shouldApply(newer, older)
	require.NoError(t, err)
	assert.True(t, apply)

	apply, err = shouldApply(older, newer)
	require.NoError(t, err)
	assert.False(t, apply)
}

func TestShouldApplyEqualClockTieBreak(t *testing.T) {
	a := makeTask(taskID, at(0))
	a.Title = "Buy milk"
	b := makeTask(taskID, at(0))
	b.Title = "Buy oat milk"

	aOverB, err := shouldApply(a, b)
	require.NoError(t, err)
	bOverA, err := shouldApply(b, a)
	require.NoError(t, err)

	// Exactly one direction applies, so both arrival orders converge on
	// the same version.
	assert.NotEqual(t, aOverB, bOverA)
}

func TestShouldApplyIdenticalNoOp(t *testing.T) {
	a := makeTask(taskID, at(0))
	b := makeTask(taskID, at(0))

	apply, err := shouldApply(a, b)
	require.NoError(t, err)
	assert.False(t, apply)
}

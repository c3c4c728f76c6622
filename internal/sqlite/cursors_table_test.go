package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricardodantas/tickit-sync/pkg/types"
)

const deviceID = "44444444-4444-4444-8444-444444444444"

func TestCursorAbsentIsNil(t *testing.T) {
	tx := setupTx(t)

	cursor, err := tx.GetCursor(deviceID)
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestCursorSetAndAdvance(t *testing.T) {
	tx := setupTx(t)

	require.NoError(t, tx.SetCursor(deviceID, at(0)))
	require.NoError(t, tx.SetCursor(deviceID, at(5)))

	cursor, err := tx.GetCursor(deviceID)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.True(t, cursor.Equal(at(5)))
}

func TestCursorRegressionRejected(t *testing.T) {
	tx := setupTx(t)

	require.NoError(t, tx.SetCursor(deviceID, at(5)))
	err := tx.SetCursor(deviceID, at(1))
	assert.ErrorIs(t, err, types.ErrCursorRegression)

	cursor, err := tx.GetCursor(deviceID)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.True(t, cursor.Equal(at(5)))
}

func TestCursorSameTimestampAllowed(t *testing.T) {
	tx := setupTx(t)

	require.NoError(t, tx.SetCursor(deviceID, at(5)))
	assert.NoError(t, tx.SetCursor(deviceID, at(5)))
}

package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ricardodantas/tickit-sync/pkg/types"
)

// GetCursor returns the device's last-sync timestamp, or nil if the device
// has never synced.
func (t *Tx) GetCursor(deviceID string) (*time.Time, error) {
	var lastSync string
	err := t.tx.QueryRow(
		"SELECT last_sync FROM device_cursors WHERE device_id = ?", deviceID,
	).Scan(&lastSync)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cursor for device %s: %w", deviceID, err)
	}

	ts, err := parseTime(lastSync)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// SetCursor advances the device's cursor. Cursors only move forward; a
// strictly backward move returns types.ErrCursorRegression, which callers
// must treat as a fatal invariant violation.
func (t *Tx) SetCursor(deviceID string, ts time.Time) error {
	current, err := t.GetCursor(deviceID)
	if err != nil {
		return err
	}
	if current != nil && ts.Before(*current) {
		return fmt.Errorf("%w: device %s cursor %s -> %s",
			types.ErrCursorRegression, deviceID, storeTime(*current), storeTime(ts))
	}

	_, err = t.tx.Exec(
		"INSERT OR REPLACE INTO device_cursors (device_id, last_sync) VALUES (?, ?)",
		deviceID, storeTime(ts),
	)
	if err != nil {
		return fmt.Errorf("setting cursor for device %s: %w", deviceID, err)
	}
	return nil
}

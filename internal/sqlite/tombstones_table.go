package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ricardodantas/tickit-sync/pkg/types"
)

// GetTombstone returns the tombstone for (id, kind), or types.ErrNotFound.
func (t *Tx) GetTombstone(kind types.RecordKind, id string) (*types.Tombstone, error) {
	row := t.tx.QueryRow(
		"SELECT id, record_type, deleted_at FROM tombstones WHERE id = ? AND record_type = ?",
		id, string(kind),
	)
	ts, err := hydrateTombstone(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting tombstone %s/%s: %w", kind, id, err)
	}
	return ts, nil
}

// PutTombstone records a deletion marker, keeping the latest deleted_at per
// (id, kind). An incoming tombstone older than or equal to the stored one is
// a no-op, not an error. Reports whether the marker was written.
func (t *Tx) PutTombstone(ts *types.Tombstone) (bool, error) {
	existing, err := t.GetTombstone(ts.RecordType, ts.ID)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return false, err
	}
	if existing != nil && !ts.DeletedAt.After(existing.DeletedAt) {
		return false, nil
	}

	_, err = t.tx.Exec(
		"INSERT OR REPLACE INTO tombstones (id, record_type, deleted_at) VALUES (?, ?, ?)",
		ts.ID, string(ts.RecordType), storeTime(ts.DeletedAt),
	)
	if err != nil {
		return false, fmt.Errorf("writing tombstone %s/%s: %w", ts.RecordType, ts.ID, err)
	}
	return true, nil
}

// DeleteTombstone removes a tombstone. Used when a strictly newer upsert
// revives the record; state never holds both a live row and a blocking
// tombstone for one id.
func (t *Tx) DeleteTombstone(kind types.RecordKind, id string) error {
	_, err := t.tx.Exec("DELETE FROM tombstones WHERE id = ? AND record_type = ?", id, string(kind))
	if err != nil {
		return fmt.Errorf("deleting tombstone %s/%s: %w", kind, id, err)
	}
	return nil
}

// TombstonesChangedSince returns tombstones with deleted_at strictly after
// since. A nil since returns the full tombstone history.
func (t *Tx) TombstonesChangedSince(since *time.Time) ([]*types.Tombstone, error) {
	query := "SELECT id, record_type, deleted_at FROM tombstones"
	var args []any
	if since != nil {
		query += " WHERE deleted_at > ?"
		args = append(args, storeTime(*since))
	}
	query += " ORDER BY deleted_at ASC"

	rows, err := t.tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying changed tombstones: %w", err)
	}
	defer rows.Close()

	var tombstones []*types.Tombstone
	for rows.Next() {
		ts, err := hydrateTombstone(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("hydrating tombstone: %w", err)
		}
		tombstones = append(tombstones, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tombstones: %w", err)
	}
	return tombstones, nil
}

// hydrateTombstone converts one row into a *types.Tombstone.
func hydrateTombstone(scan func(...any) error) (*types.Tombstone, error) {
	var (
		ts         types.Tombstone
		recordType string
		deletedAt  string
	)
	if err := scan(&ts.ID, &recordType, &deletedAt); err != nil {
		return nil, err
	}
	ts.RecordType = types.RecordKind(recordType)
	var err error
	if ts.DeletedAt, err = parseTime(deletedAt); err != nil {
		return nil, err
	}
	return &ts, nil
}

// Package sqlite implements durable storage for the sync server: current
// rows for each syncable entity kind, the tombstone log, and the per-device
// sync cursors, all in a single SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store owns the SQLite database. All reads and writes performed by the sync
// engine go through a Tx so one sync call is one transaction.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path, applies connection pragmas,
// and ensures the schema exists. The parent directory is created if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	// _txlock=immediate makes every transaction take the write lock up
	// front, serializing sync calls at the storage layer.
	dsn := "file:" + path + "?_txlock=immediate" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schemaSQL()); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Tx wraps one storage transaction. Accessor methods for each table are
// defined in the *_table.go files of this package.
type Tx struct {
	tx *sql.Tx
}

// Begin starts a transaction. With _txlock=immediate the write lock is
// acquired here, not at the first write.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction. Safe to call after Commit.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// storeTimeLayout is RFC 3339 with a fixed-width nanosecond fraction, so the
// stored text orders lexicographically the same way the timestamps order
// chronologically. Plain RFC3339Nano trims trailing zeros and breaks that.
const storeTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// storeTime formats a timestamp for storage and range comparisons.
func storeTime(t time.Time) string {
	return t.UTC().Format(storeTimeLayout)
}

// parseTime parses a stored timestamp.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored timestamp %q: %w", s, err)
	}
	return t, nil
}

// nullableTime formats an optional timestamp for storage.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return storeTime(*t)
}

// parseNullableTime parses an optional stored timestamp.
func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

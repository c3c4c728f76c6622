package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ricardodantas/tickit-sync/pkg/types"
)

const listColumns = "id, name, description, icon, color, is_inbox, sort_order, created_at, updated_at"

// GetList returns the current row for a list, or types.ErrNotFound.
func (t *Tx) GetList(id string) (*types.List, error) {
	row := t.tx.QueryRow("SELECT "+listColumns+" FROM lists WHERE id = ?", id)
	list, err := hydrateList(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting list %s: %w", id, err)
	}
	return list, nil
}

// UpsertListIfNewer applies the incoming list if it wins the last-write-wins
// comparison. Reports whether the write was applied.
func (t *Tx) UpsertListIfNewer(list *types.List) (bool, error) {
	existing, err := t.GetList(list.ID)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return false, err
	}

	if existing != nil {
		apply, err := shouldApply(list, existing)
		if err != nil {
			return false, err
		}
		if !apply {
			return false, nil
		}
		_, err = t.tx.Exec(
			`UPDATE lists SET name = ?, description = ?, icon = ?, color = ?, is_inbox = ?,
			 sort_order = ?, updated_at = ? WHERE id = ?`,
			list.Name, list.Description, list.Icon, list.Color, boolToInt(list.IsInbox),
			list.SortOrder, storeTime(list.UpdatedAt), list.ID,
		)
		if err != nil {
			return false, fmt.Errorf("updating list %s: %w", list.ID, err)
		}
		return true, nil
	}

	_, err = t.tx.Exec(
		"INSERT INTO lists ("+listColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		list.ID, list.Name, list.Description, list.Icon, list.Color, boolToInt(list.IsInbox),
		list.SortOrder, storeTime(list.CreatedAt), storeTime(list.UpdatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("inserting list %s: %w", list.ID, err)
	}
	return true, nil
}

// ListsChangedSince returns lists with updated_at strictly after since.
// A nil since returns all lists.
func (t *Tx) ListsChangedSince(since *time.Time) ([]*types.List, error) {
	query := "SELECT " + listColumns + " FROM lists"
	var args []any
	if since != nil {
		query += " WHERE updated_at > ?"
		args = append(args, storeTime(*since))
	}
	query += " ORDER BY updated_at ASC"

	rows, err := t.tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying changed lists: %w", err)
	}
	defer rows.Close()

	var lists []*types.List
	for rows.Next() {
		list, err := hydrateList(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("hydrating list: %w", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lists: %w", err)
	}
	return lists, nil
}

// DeleteListRow removes a list's current row. Tasks referencing the list are
// left in place; orphan resolution is a client concern.
func (t *Tx) DeleteListRow(id string) error {
	if _, err := t.tx.Exec("DELETE FROM lists WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting list %s: %w", id, err)
	}
	return nil
}

// hydrateList converts one row into a *types.List.
func hydrateList(scan func(...any) error) (*types.List, error) {
	var (
		list                 types.List
		isInbox              int
		description, color   sql.NullString
		createdAt, updatedAt string
	)
	err := scan(&list.ID, &list.Name, &description, &list.Icon, &color, &isInbox,
		&list.SortOrder, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	list.IsInbox = isInbox != 0
	list.Description = nullableString(description)
	list.Color = nullableString(color)
	if list.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if list.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &list, nil
}

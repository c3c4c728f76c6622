package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ricardodantas/tickit-sync/pkg/types"
)

// GetLink returns the current row for a task-tag link, or types.ErrNotFound.
func (t *Tx) GetLink(taskID, tagID string) (*types.TaskTagLink, error) {
	row := t.tx.QueryRow(
		"SELECT task_id, tag_id, created_at FROM task_tags WHERE task_id = ? AND tag_id = ?",
		taskID, tagID,
	)
	link, err := hydrateLink(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting link %s: %w", types.LinkID(taskID, tagID), err)
	}
	return link, nil
}

// UpsertLinkIfNewer applies the incoming link if it wins the last-write-wins
// comparison keyed by the composite id, using created_at as the clock.
// Reports whether the write was applied.
func (t *Tx) UpsertLinkIfNewer(link *types.TaskTagLink) (bool, error) {
	existing, err := t.GetLink(link.TaskID, link.TagID)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return false, err
	}

	if existing != nil {
		apply, err := shouldApply(link, existing)
		if err != nil {
			return false, err
		}
		if !apply {
			return false, nil
		}
		_, err = t.tx.Exec(
			"UPDATE task_tags SET created_at = ? WHERE task_id = ? AND tag_id = ?",
			storeTime(link.CreatedAt), link.TaskID, link.TagID,
		)
		if err != nil {
			return false, fmt.Errorf("updating link %s: %w", link.RecordID(), err)
		}
		return true, nil
	}

	_, err = t.tx.Exec(
		"INSERT INTO task_tags (task_id, tag_id, created_at) VALUES (?, ?, ?)",
		link.TaskID, link.TagID, storeTime(link.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("inserting link %s: %w", link.RecordID(), err)
	}
	return true, nil
}

// LinksChangedSince returns links with created_at strictly after since.
// A nil since returns all links.
func (t *Tx) LinksChangedSince(since *time.Time) ([]*types.TaskTagLink, error) {
	query := "SELECT task_id, tag_id, created_at FROM task_tags"
	var args []any
	if since != nil {
		query += " WHERE created_at > ?"
		args = append(args, storeTime(*since))
	}
	query += " ORDER BY created_at ASC"

	rows, err := t.tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying changed links: %w", err)
	}
	defer rows.Close()

	var links []*types.TaskTagLink
	for rows.Next() {
		link, err := hydrateLink(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("hydrating link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating links: %w", err)
	}
	return links, nil
}

// DeleteLinkRow removes one task-tag link row.
func (t *Tx) DeleteLinkRow(taskID, tagID string) error {
	_, err := t.tx.Exec("DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?", taskID, tagID)
	if err != nil {
		return fmt.Errorf("deleting link %s: %w", types.LinkID(taskID, tagID), err)
	}
	return nil
}

// hydrateLink converts one row into a *types.TaskTagLink.
func hydrateLink(scan func(...any) error) (*types.TaskTagLink, error) {
	var (
		link      types.TaskTagLink
		createdAt string
	)
	if err := scan(&link.TaskID, &link.TagID, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if link.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &link, nil
}

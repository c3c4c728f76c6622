package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ricardodantas/tickit-sync/pkg/types"
)

const tagColumns = "id, name, color, created_at, updated_at"

// GetTag returns the current row for a tag, or types.ErrNotFound.
func (t *Tx) GetTag(id string) (*types.Tag, error) {
	row := t.tx.QueryRow("SELECT "+tagColumns+" FROM tags WHERE id = ?", id)
	tag, err := hydrateTag(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting tag %s: %w", id, err)
	}
	return tag, nil
}

// UpsertTagIfNewer applies the incoming tag if it wins the last-write-wins
// comparison. Reports whether the write was applied.
func (t *Tx) UpsertTagIfNewer(tag *types.Tag) (bool, error) {
	existing, err := t.GetTag(tag.ID)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return false, err
	}

	if existing != nil {
		apply, err := shouldApply(tag, existing)
		if err != nil {
			return false, err
		}
		if !apply {
			return false, nil
		}
		_, err = t.tx.Exec(
			"UPDATE tags SET name = ?, color = ?, updated_at = ? WHERE id = ?",
			tag.Name, tag.Color, storeTime(tag.UpdatedAt), tag.ID,
		)
		if err != nil {
			return false, fmt.Errorf("updating tag %s: %w", tag.ID, err)
		}
		return true, nil
	}

	_, err = t.tx.Exec(
		"INSERT INTO tags ("+tagColumns+") VALUES (?, ?, ?, ?, ?)",
		tag.ID, tag.Name, tag.Color, storeTime(tag.CreatedAt), storeTime(tag.UpdatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("inserting tag %s: %w", tag.ID, err)
	}
	return true, nil
}

// TagsChangedSince returns tags with updated_at strictly after since.
// A nil since returns all tags.
func (t *Tx) TagsChangedSince(since *time.Time) ([]*types.Tag, error) {
	query := "SELECT " + tagColumns + " FROM tags"
	var args []any
	if since != nil {
		query += " WHERE updated_at > ?"
		args = append(args, storeTime(*since))
	}
	query += " ORDER BY updated_at ASC"

	rows, err := t.tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying changed tags: %w", err)
	}
	defer rows.Close()

	var tags []*types.Tag
	for rows.Next() {
		tag, err := hydrateTag(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("hydrating tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}

// DeleteTagRow removes a tag's current row and any links referencing it.
func (t *Tx) DeleteTagRow(id string) error {
	if _, err := t.tx.Exec("DELETE FROM task_tags WHERE tag_id = ?", id); err != nil {
		return fmt.Errorf("deleting tag links for %s: %w", id, err)
	}
	if _, err := t.tx.Exec("DELETE FROM tags WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting tag %s: %w", id, err)
	}
	return nil
}

// hydrateTag converts one row into a *types.Tag.
func hydrateTag(scan func(...any) error) (*types.Tag, error) {
	var (
		tag                  types.Tag
		createdAt, updatedAt string
	)
	if err := scan(&tag.ID, &tag.Name, &tag.Color, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if tag.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if tag.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &tag, nil
}

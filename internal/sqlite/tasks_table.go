package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ricardodantas/tickit-sync/pkg/types"
)

const taskColumns = "id, title, description, url, priority, completed, list_id, created_at, updated_at, completed_at, due_date"

// GetTask returns the current row for a task, including its tag ids.
// Returns types.ErrNotFound if no row exists.
func (t *Tx) GetTask(id string) (*types.Task, error) {
	row := t.tx.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := hydrateTask(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	if err := t.hydrateTaskTags(task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpsertTaskIfNewer applies the incoming task if it wins the last-write-wins
// comparison against the stored row (or no row exists). On apply, the task's
// tag links are rewritten from TagIDs, timestamped with the task's clock.
// Reports whether the write was applied.
func (t *Tx) UpsertTaskIfNewer(task *types.Task) (bool, error) {
	existing, err := t.GetTask(task.ID)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return false, err
	}

	if existing != nil {
		apply, err := shouldApply(task, existing)
		if err != nil {
			return false, err
		}
		if !apply {
			return false, nil
		}
		_, err = t.tx.Exec(
			`UPDATE tasks SET title = ?, description = ?, url = ?, priority = ?, completed = ?,
			 list_id = ?, updated_at = ?, completed_at = ?, due_date = ? WHERE id = ?`,
			task.Title, task.Description, task.URL, string(task.Priority), boolToInt(task.Completed),
			task.ListID, storeTime(task.UpdatedAt), nullableTime(task.CompletedAt), nullableTime(task.DueDate),
			task.ID,
		)
		if err != nil {
			return false, fmt.Errorf("updating task %s: %w", task.ID, err)
		}
	} else {
		_, err = t.tx.Exec(
			"INSERT INTO tasks ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			task.ID, task.Title, task.Description, task.URL, string(task.Priority), boolToInt(task.Completed),
			task.ListID, storeTime(task.CreatedAt), storeTime(task.UpdatedAt),
			nullableTime(task.CompletedAt), nullableTime(task.DueDate),
		)
		if err != nil {
			return false, fmt.Errorf("inserting task %s: %w", task.ID, err)
		}
	}

	if err := t.rewriteTaskTags(task); err != nil {
		return false, err
	}
	return true, nil
}

// TasksChangedSince returns tasks with updated_at strictly after since.
// A nil since returns all tasks.
func (t *Tx) TasksChangedSince(since *time.Time) ([]*types.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	var args []any
	if since != nil {
		query += " WHERE updated_at > ?"
		args = append(args, storeTime(*since))
	}
	query += " ORDER BY updated_at ASC"

	rows, err := t.tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying changed tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*types.Task
	for rows.Next() {
		task, err := hydrateTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("hydrating task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}

	for _, task := range tasks {
		if err := t.hydrateTaskTags(task); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// DeleteTaskRow removes a task's current row and its tag links. Tombstone
// bookkeeping is the caller's responsibility.
func (t *Tx) DeleteTaskRow(id string) error {
	if _, err := t.tx.Exec("DELETE FROM task_tags WHERE task_id = ?", id); err != nil {
		return fmt.Errorf("deleting task links for %s: %w", id, err)
	}
	if _, err := t.tx.Exec("DELETE FROM tasks WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

// rewriteTaskTags replaces the task's links with the incoming TagIDs set,
// mirroring how clients embed tag membership in task payloads. Each rewritten
// link carries the task's clock, so the same tombstone rule applies as for
// individual link upserts: a tombstone at or after that clock blocks the
// link, a strictly older one is cleared by the revival.
func (t *Tx) rewriteTaskTags(task *types.Task) error {
	if _, err := t.tx.Exec("DELETE FROM task_tags WHERE task_id = ?", task.ID); err != nil {
		return fmt.Errorf("clearing task links for %s: %w", task.ID, err)
	}
	for _, tagID := range task.TagIDs {
		linkID := types.LinkID(task.ID, tagID)
		ts, err := t.GetTombstone(types.KindTaskTag, linkID)
		if err != nil && !errors.Is(err, types.ErrNotFound) {
			return err
		}
		if ts != nil {
			if !task.UpdatedAt.After(ts.DeletedAt) {
				continue
			}
			if err := t.DeleteTombstone(types.KindTaskTag, linkID); err != nil {
				return err
			}
		}
		_, err = t.tx.Exec(
			"INSERT OR IGNORE INTO task_tags (task_id, tag_id, created_at) VALUES (?, ?, ?)",
			task.ID, tagID, storeTime(task.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("inserting task link %s -> %s: %w", task.ID, tagID, err)
		}
	}
	return nil
}

// hydrateTaskTags loads the task's tag ids from task_tags.
func (t *Tx) hydrateTaskTags(task *types.Task) error {
	rows, err := t.tx.Query("SELECT tag_id FROM task_tags WHERE task_id = ? ORDER BY tag_id", task.ID)
	if err != nil {
		return fmt.Errorf("querying task links for %s: %w", task.ID, err)
	}
	defer rows.Close()

	tagIDs := []string{}
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			return fmt.Errorf("scanning task link: %w", err)
		}
		tagIDs = append(tagIDs, tagID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating task links: %w", err)
	}
	task.TagIDs = tagIDs
	return nil
}

// hydrateTask converts one row into a *types.Task. The scan argument lets
// the same helper serve sql.Row and sql.Rows.
func hydrateTask(scan func(...any) error) (*types.Task, error) {
	var (
		task                 types.Task
		completed            int
		createdAt, updatedAt string
		completedAt, dueDate sql.NullString
		description, url     sql.NullString
	)
	err := scan(&task.ID, &task.Title, &description, &url, &task.Priority, &completed,
		&task.ListID, &createdAt, &updatedAt, &completedAt, &dueDate)
	if err != nil {
		return nil, err
	}

	task.Completed = completed != 0
	task.Description = nullableString(description)
	task.URL = nullableString(url)
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if task.CompletedAt, err = parseNullableTime(completedAt); err != nil {
		return nil, err
	}
	if task.DueDate, err = parseNullableTime(dueDate); err != nil {
		return nil, err
	}
	return &task, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

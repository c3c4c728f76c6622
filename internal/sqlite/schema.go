package sqlite

import "strings"

// Schema DDL. Timestamps are stored as fixed-width RFC 3339 TEXT in UTC so
// range queries can compare them lexicographically. Foreign keys are
// declarative only: SQLite leaves enforcement off by default and sync
// batches may legitimately reference records the server has not seen yet.
const (
	createLists = `CREATE TABLE IF NOT EXISTS lists (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    icon TEXT NOT NULL DEFAULT '',
    color TEXT,
    is_inbox INTEGER NOT NULL DEFAULT 0,
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createTags = `CREATE TABLE IF NOT EXISTS tags (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    color TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createTasks = `CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    url TEXT,
    priority TEXT NOT NULL DEFAULT 'medium',
    completed INTEGER NOT NULL DEFAULT 0,
    list_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    completed_at TEXT,
    due_date TEXT,
    FOREIGN KEY (list_id) REFERENCES lists(id)
);`

	createTaskTags = `CREATE TABLE IF NOT EXISTS task_tags (
    task_id TEXT NOT NULL,
    tag_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY (task_id, tag_id),
    FOREIGN KEY (task_id) REFERENCES tasks(id),
    FOREIGN KEY (tag_id) REFERENCES tags(id)
);`

	createTombstones = `CREATE TABLE IF NOT EXISTS tombstones (
    id TEXT NOT NULL,
    record_type TEXT NOT NULL,
    deleted_at TEXT NOT NULL,
    PRIMARY KEY (id, record_type)
);`

	createDeviceCursors = `CREATE TABLE IF NOT EXISTS device_cursors (
    device_id TEXT PRIMARY KEY,
    last_sync TEXT NOT NULL
);`

	createIndexes = `CREATE INDEX IF NOT EXISTS idx_tasks_list ON tasks(list_id);
CREATE INDEX IF NOT EXISTS idx_tasks_updated ON tasks(updated_at);
CREATE INDEX IF NOT EXISTS idx_lists_updated ON lists(updated_at);
CREATE INDEX IF NOT EXISTS idx_tags_updated ON tags(updated_at);
CREATE INDEX IF NOT EXISTS idx_task_tags_created ON task_tags(created_at);
CREATE INDEX IF NOT EXISTS idx_tombstones_deleted ON tombstones(deleted_at);`
)

// schemaSQL returns the full DDL batch executed on Open.
func schemaSQL() string {
	return strings.Join([]string{
		createLists,
		createTags,
		createTasks,
		createTaskTags,
		createTombstones,
		createDeviceCursors,
		createIndexes,
	}, "\n")
}

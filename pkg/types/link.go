package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskTagLink records membership of a tag on a task. A link is either
// present or absent; created_at doubles as its last-write-wins clock, and
// removal is expressed as a tombstone on the composite id.
type TaskTagLink struct {
	TaskID    string    `json:"task_id"`
	TagID     string    `json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LinkID builds the composite identity used for task-tag links in the
// tombstone store and on the wire.
func LinkID(taskID, tagID string) string {
	return taskID + ":" + tagID
}

// SplitLinkID splits a composite link id back into its task and tag parts.
func SplitLinkID(id string) (taskID, tagID string, err error) {
	taskID, tagID, ok := strings.Cut(id, ":")
	if !ok {
		return "", "", fmt.Errorf("%w: link id %q", ErrInvalidID, id)
	}
	return taskID, tagID, nil
}

// RecordID implements Record.
func (l *TaskTagLink) RecordID() string { return LinkID(l.TaskID, l.TagID) }

// Kind implements Record.
func (l *TaskTagLink) Kind() RecordKind { return KindTaskTag }

// Clock implements Record.
func (l *TaskTagLink) Clock() time.Time { return l.CreatedAt }

// Validate checks the fields required of a link envelope.
func (l *TaskTagLink) Validate() error {
	if _, err := uuid.Parse(l.TaskID); err != nil {
		return fmt.Errorf("%w: link task id %q", ErrInvalidID, l.TaskID)
	}
	if _, err := uuid.Parse(l.TagID); err != nil {
		return fmt.Errorf("%w: link tag id %q", ErrInvalidID, l.TagID)
	}
	if l.CreatedAt.IsZero() {
		return fmt.Errorf("%w: link %s missing created_at", ErrInvalidEnvelope, l.RecordID())
	}
	return nil
}

package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Priority levels for tasks.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// validPriorities is the set of recognized priority values.
var validPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

// Valid reports whether p is a recognized priority.
func (p Priority) Valid() bool {
	return validPriorities[p]
}

// Task is a todo item. Every task belongs to exactly one list.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	URL         *string    `json:"url,omitempty"`
	Priority    Priority   `json:"priority"`
	Completed   bool       `json:"completed"`
	ListID      string     `json:"list_id"`
	TagIDs      []string   `json:"tag_ids"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// RecordID implements Record.
func (t *Task) RecordID() string { return t.ID }

// Kind implements Record.
func (t *Task) Kind() RecordKind { return KindTask }

// Clock implements Record.
func (t *Task) Clock() time.Time { return t.UpdatedAt }

// Validate checks the fields required of a task envelope.
func (t *Task) Validate() error {
	if _, err := uuid.Parse(t.ID); err != nil {
		return fmt.Errorf("%w: task id %q", ErrInvalidID, t.ID)
	}
	if t.Title == "" {
		return fmt.Errorf("%w: task %s missing title", ErrInvalidEnvelope, t.ID)
	}
	if _, err := uuid.Parse(t.ListID); err != nil {
		return fmt.Errorf("%w: task %s list id %q", ErrInvalidID, t.ID, t.ListID)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: task %s priority %q", ErrInvalidEnvelope, t.ID, t.Priority)
	}
	for _, tagID := range t.TagIDs {
		if _, err := uuid.Parse(tagID); err != nil {
			return fmt.Errorf("%w: task %s tag id %q", ErrInvalidID, t.ID, tagID)
		}
	}
	if t.CreatedAt.IsZero() || t.UpdatedAt.IsZero() {
		return fmt.Errorf("%w: task %s missing timestamps", ErrInvalidEnvelope, t.ID)
	}
	return nil
}

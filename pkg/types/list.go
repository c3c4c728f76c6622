package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// List is a project or collection that contains tasks. At most one list per
// server is the canonical inbox.
type List struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Icon        string    `json:"icon"`
	Color       *string   `json:"color,omitempty"`
	IsInbox     bool      `json:"is_inbox"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RecordID implements Record.
func (l *List) RecordID() string { return l.ID }

// Kind implements Record.
func (l *List) Kind() RecordKind { return KindList }

// Clock implements Record.
func (l *List) Clock() time.Time { return l.UpdatedAt }

// Validate checks the fields required of a list envelope.
func (l *List) Validate() error {
	if _, err := uuid.Parse(l.ID); err != nil {
		return fmt.Errorf("%w: list id %q", ErrInvalidID, l.ID)
	}
	if l.Name == "" {
		return fmt.Errorf("%w: list %s missing name", ErrInvalidEnvelope, l.ID)
	}
	if l.CreatedAt.IsZero() || l.UpdatedAt.IsZero() {
		return fmt.Errorf("%w: list %s missing timestamps", ErrInvalidEnvelope, l.ID)
	}
	return nil
}

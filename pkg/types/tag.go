package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tag is a label that can be attached to tasks.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordID implements Record.
func (t *Tag) RecordID() string { return t.ID }

// Kind implements Record.
func (t *Tag) Kind() RecordKind { return KindTag }

// Clock implements Record.
func (t *Tag) Clock() time.Time { return t.UpdatedAt }

// Validate checks the fields required of a tag envelope.
func (t *Tag) Validate() error {
	if _, err := uuid.Parse(t.ID); err != nil {
		return fmt.Errorf("%w: tag id %q", ErrInvalidID, t.ID)
	}
	if t.Name == "" {
		return fmt.Errorf("%w: tag %s missing name", ErrInvalidEnvelope, t.ID)
	}
	if t.CreatedAt.IsZero() || t.UpdatedAt.IsZero() {
		return fmt.Errorf("%w: tag %s missing timestamps", ErrInvalidEnvelope, t.ID)
	}
	return nil
}

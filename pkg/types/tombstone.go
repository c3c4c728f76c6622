package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tombstone is a permanent marker recording that a record was deleted. It
// prevents resurrection of the record by older, out-of-order upserts.
type Tombstone struct {
	ID         string     `json:"id"`
	RecordType RecordKind `json:"record_type"`
	DeletedAt  time.Time  `json:"deleted_at"`
}

// Validate checks the fields required of a deletion envelope.
func (t *Tombstone) Validate() error {
	if !t.RecordType.Valid() {
		return fmt.Errorf("%w: tombstone record_type %q", ErrUnknownRecordKind, t.RecordType)
	}
	if t.RecordType == KindTaskTag {
		taskID, tagID, err := SplitLinkID(t.ID)
		if err != nil {
			return err
		}
		if _, err := uuid.Parse(taskID); err != nil {
			return fmt.Errorf("%w: tombstone link task id %q", ErrInvalidID, taskID)
		}
		if _, err := uuid.Parse(tagID); err != nil {
			return fmt.Errorf("%w: tombstone link tag id %q", ErrInvalidID, tagID)
		}
	} else if _, err := uuid.Parse(t.ID); err != nil {
		return fmt.Errorf("%w: tombstone id %q", ErrInvalidID, t.ID)
	}
	if t.DeletedAt.IsZero() {
		return fmt.Errorf("%w: tombstone %s missing deleted_at", ErrInvalidEnvelope, t.ID)
	}
	return nil
}

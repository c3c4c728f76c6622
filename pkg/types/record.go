package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordKind identifies one of the four syncable entity kinds.
type RecordKind string

const (
	KindTask    RecordKind = "task"
	KindList    RecordKind = "list"
	KindTag     RecordKind = "tag"
	KindTaskTag RecordKind = "task_tag"
)

// validKinds is the set of recognized record kinds.
var validKinds = map[RecordKind]bool{
	KindTask:    true,
	KindList:    true,
	KindTag:     true,
	KindTaskTag: true,
}

// Valid reports whether k is a recognized record kind.
func (k RecordKind) Valid() bool {
	return validKinds[k]
}

// Record is implemented by every syncable entity. The storage layer uses it
// to run the same newer-wins comparison across all kinds.
type Record interface {
	// RecordID returns the entity's identity. For task-tag links this is
	// the composite "taskID:tagID" form.
	RecordID() string

	// Kind returns the entity's record kind.
	Kind() RecordKind

	// Clock returns the timestamp used for last-write-wins resolution:
	// updated_at for tasks, lists, and tags; created_at for links.
	Clock() time.Time
}

// Wire values for the envelope "type" discriminator. Entity kinds reuse
// their RecordKind string; deletions are tagged "deleted".
const envelopeDeleted = "deleted"

// SyncRecord is the change envelope: one upsert of a specific kind, or one
// deletion. Exactly one field is non-nil.
type SyncRecord struct {
	Task      *Task
	List      *List
	Tag       *Tag
	TaskTag   *TaskTagLink
	Tombstone *Tombstone
}

// IsDeletion reports whether the envelope carries a tombstone.
func (r SyncRecord) IsDeletion() bool {
	return r.Tombstone != nil
}

// Upsert returns the carried entity for upsert envelopes, or nil for
// deletions.
func (r SyncRecord) Upsert() Record {
	switch {
	case r.Task != nil:
		return r.Task
	case r.List != nil:
		return r.List
	case r.Tag != nil:
		return r.Tag
	case r.TaskTag != nil:
		return r.TaskTag
	}
	return nil
}

// Validate checks that the envelope carries exactly one well-formed payload.
func (r SyncRecord) Validate() error {
	set := 0
	if r.Task != nil {
		set++
	}
	if r.List != nil {
		set++
	}
	if r.Tag != nil {
		set++
	}
	if r.TaskTag != nil {
		set++
	}
	if r.Tombstone != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: expected exactly one payload, got %d", ErrInvalidEnvelope, set)
	}

	switch {
	case r.Task != nil:
		return r.Task.Validate()
	case r.List != nil:
		return r.List.Validate()
	case r.Tag != nil:
		return r.Tag.Validate()
	case r.TaskTag != nil:
		return r.TaskTag.Validate()
	default:
		return r.Tombstone.Validate()
	}
}

// MarshalJSON encodes the envelope in the internally tagged form used on the
// wire: the payload's fields inline, plus a "type" discriminator.
func (r SyncRecord) MarshalJSON() ([]byte, error) {
	switch {
	case r.Task != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			*Task
		}{string(KindTask), r.Task})
	case r.List != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			*List
		}{string(KindList), r.List})
	case r.Tag != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			*Tag
		}{string(KindTag), r.Tag})
	case r.TaskTag != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			*TaskTagLink
		}{string(KindTaskTag), r.TaskTag})
	case r.Tombstone != nil:
		return json.Marshal(struct {
			Type string `json:"type"`
			*Tombstone
		}{envelopeDeleted, r.Tombstone})
	}
	return nil, fmt.Errorf("%w: empty envelope", ErrInvalidEnvelope)
}

// UnmarshalJSON decodes an internally tagged envelope, dispatching on the
// "type" discriminator.
func (r *SyncRecord) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	*r = SyncRecord{}
	switch probe.Type {
	case string(KindTask):
		var t Task
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		r.Task = &t
	case string(KindList):
		var l List
		if err := json.Unmarshal(data, &l); err != nil {
			return err
		}
		r.List = &l
	case string(KindTag):
		var tg Tag
		if err := json.Unmarshal(data, &tg); err != nil {
			return err
		}
		r.Tag = &tg
	case string(KindTaskTag):
		var link TaskTagLink
		if err := json.Unmarshal(data, &link); err != nil {
			return err
		}
		r.TaskTag = &link
	case envelopeDeleted:
		var ts Tombstone
		if err := json.Unmarshal(data, &ts); err != nil {
			return err
		}
		r.Tombstone = &ts
	case "":
		return fmt.Errorf("%w: missing type discriminator", ErrInvalidEnvelope)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRecordKind, probe.Type)
	}
	return nil
}

package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SyncRequest is the body of POST /api/v1/sync: a device identity, the
// timestamp of the device's last successful sync (absent on first contact),
// and the batch of changes the device made since then.
type SyncRequest struct {
	DeviceID string       `json:"device_id"`
	LastSync *time.Time   `json:"last_sync,omitempty"`
	Changes  []SyncRecord `json:"changes"`
}

// Validate checks the device identity and every change envelope. A single
// malformed envelope refuses the whole batch.
func (r *SyncRequest) Validate() error {
	if _, err := uuid.Parse(r.DeviceID); err != nil {
		return fmt.Errorf("%w: device id %q", ErrInvalidID, r.DeviceID)
	}
	for i, c := range r.Changes {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("change %d: %w", i, err)
		}
	}
	return nil
}

// SyncResponse is the body returned from POST /api/v1/sync.
type SyncResponse struct {
	// ServerTime is the server's processing timestamp for this sync; the
	// client records it as its next last_sync value.
	ServerTime time.Time `json:"server_time"`

	// Changes holds everything other devices changed since the caller's
	// previous sync, excluding changes the caller just submitted.
	Changes []SyncRecord `json:"changes"`

	// Conflicts is reserved for granular conflict reporting and is always
	// empty; last-write-wins resolution is implicit.
	Conflicts []string `json:"conflicts"`
}

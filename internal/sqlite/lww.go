package sqlite

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ricardodantas/tickit-sync/pkg/types"
)

// shouldApply decides whether an incoming record replaces the stored version
// of the same id. Strictly newer clocks win. Equal clocks fall back to
// comparing the canonical JSON encodings of the two versions, so every
// replica that sees both versions converges on the same winner no matter
// which arrived first. Identical content compares equal and is a no-op.
func shouldApply(incoming, existing types.Record) (bool, error) {
	ic, ec := incoming.Clock(), existing.Clock()
	if ic.After(ec) {
		return true, nil
	}
	if ic.Before(ec) {
		return false, nil
	}

	ib, err := json.Marshal(incoming)
	if err != nil {
		return false, fmt.Errorf("encoding incoming %s %s: %w", incoming.Kind(), incoming.RecordID(), err)
	}
	eb, err := json.Marshal(existing)
	if err != nil {
		return false, fmt.Errorf("encoding stored %s %s: %w", existing.Kind(), existing.RecordID(), err)
	}
	return bytes.Compare(ib, eb) > 0, nil
}

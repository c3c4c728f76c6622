// Package engine implements the synchronization core: it merges batches of
// client changes into durable state under last-write-wins, records deletions
// as tombstones, advances per-device cursors, and computes the delta the
// requesting device has not yet seen.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ricardodantas/tickit-sync/internal/sqlite"
	"github.com/ricardodantas/tickit-sync/pkg/types"
)

// Engine orchestrates sync requests against an injected store. It holds no
// state of its own; one Sync call is one storage transaction.
type Engine struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// New creates an Engine. If logger is nil, slog.Default() is used.
func New(store *sqlite.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger}
}

// kindRank orders batch application so that referenced records land before
// records referencing them, and deletions land last.
func kindRank(r types.SyncRecord) int {
	switch {
	case r.List != nil:
		return 0
	case r.Tag != nil:
		return 1
	case r.Task != nil:
		return 2
	case r.TaskTag != nil:
		return 3
	default:
		return 4
	}
}

// Sync applies the request's changes as one atomic unit, advances the
// device's cursor, and returns the changes the device has not seen. The
// request must already be validated; a storage failure rolls the whole call
// back so an identical retry is safe.
func (e *Engine) Sync(ctx context.Context, req *types.SyncRequest) (*types.SyncResponse, error) {
	start := time.Now()

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Captured after the transaction holds the write lock, so no other
	// sync call can commit between this instant and our commit.
	serverTime := time.Now().UTC()

	cursor, err := tx.GetCursor(req.DeviceID)
	if err != nil {
		return nil, err
	}
	prev := previousCursor(req.LastSync, cursor)

	changes := make([]types.SyncRecord, len(req.Changes))
	copy(changes, req.Changes)
	sort.SliceStable(changes, func(i, j int) bool {
		return kindRank(changes[i]) < kindRank(changes[j])
	})

	applied := make(map[string]bool)
	for _, change := range changes {
		if change.IsDeletion() {
			err = e.applyDeletion(tx, change.Tombstone, applied)
		} else {
			err = e.applyUpsert(tx, change.Upsert(), applied)
		}
		if err != nil {
			return nil, err
		}
	}

	outgoing, err := e.collectDelta(tx, prev, applied)
	if err != nil {
		return nil, err
	}

	if err := tx.SetCursor(req.DeviceID, serverTime); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing sync for device %s: %w", req.DeviceID, err)
	}

	e.logger.InfoContext(ctx, "sync complete",
		"device_id", req.DeviceID,
		"incoming", len(req.Changes),
		"outgoing", len(outgoing),
		"first_sync", req.LastSync == nil,
		"duration", time.Since(start),
	)

	return &types.SyncResponse{
		ServerTime: serverTime,
		Changes:    outgoing,
		Conflicts:  []string{},
	}, nil
}

// previousCursor picks the delta baseline. An absent last_sync means the
// device has no local baseline and needs everything. When both the client
// baseline and the stored cursor exist, the earlier one wins: redelivering
// a few records is safe, skipping them is not.
func previousCursor(lastSync, cursor *time.Time) *time.Time {
	if lastSync == nil {
		return nil
	}
	if cursor != nil && cursor.Before(*lastSync) {
		return cursor
	}
	return lastSync
}

// applyDeletion records a tombstone and removes the superseded live row.
// A tombstone older than an already-stored one is a no-op; a tombstone older
// than the live row keeps the row (the row is the later logical event).
func (e *Engine) applyDeletion(tx *sqlite.Tx, ts *types.Tombstone, applied map[string]bool) error {
	written, err := tx.PutTombstone(ts)
	if err != nil {
		return err
	}
	if !written {
		return nil
	}

	switch ts.RecordType {
	case types.KindTask:
		task, err := tx.GetTask(ts.ID)
		if err == nil && !task.UpdatedAt.After(ts.DeletedAt) {
			if err := tx.DeleteTaskRow(ts.ID); err != nil {
				return err
			}
		} else if err != nil && err != types.ErrNotFound {
			return err
		}
	case types.KindList:
		list, err := tx.GetList(ts.ID)
		if err == nil && !list.UpdatedAt.After(ts.DeletedAt) {
			if err := tx.DeleteListRow(ts.ID); err != nil {
				return err
			}
		} else if err != nil && err != types.ErrNotFound {
			return err
		}
	case types.KindTag:
		tag, err := tx.GetTag(ts.ID)
		if err == nil && !tag.UpdatedAt.After(ts.DeletedAt) {
			if err := tx.DeleteTagRow(ts.ID); err != nil {
				return err
			}
		} else if err != nil && err != types.ErrNotFound {
			return err
		}
	case types.KindTaskTag:
		taskID, tagID, err := types.SplitLinkID(ts.ID)
		if err != nil {
			return err
		}
		link, err := tx.GetLink(taskID, tagID)
		if err == nil && !link.CreatedAt.After(ts.DeletedAt) {
			if err := tx.DeleteLinkRow(taskID, tagID); err != nil {
				return err
			}
		} else if err != nil && err != types.ErrNotFound {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", types.ErrUnknownRecordKind, ts.RecordType)
	}

	applied[tombstoneKey(ts.RecordType, ts.ID)] = true
	return nil
}

// applyUpsert runs the tombstone check and the newer-wins upsert for one
// incoming record. An upsert at or before the record's tombstone stays
// blocked; a strictly newer one is applied and clears the tombstone.
func (e *Engine) applyUpsert(tx *sqlite.Tx, rec types.Record, applied map[string]bool) error {
	ts, err := tx.GetTombstone(rec.Kind(), rec.RecordID())
	if err != nil && err != types.ErrNotFound {
		return err
	}
	if ts != nil && !rec.Clock().After(ts.DeletedAt) {
		return nil
	}

	var ok bool
	switch r := rec.(type) {
	case *types.Task:
		ok, err = tx.UpsertTaskIfNewer(r)
	case *types.List:
		ok, err = tx.UpsertListIfNewer(r)
	case *types.Tag:
		ok, err = tx.UpsertTagIfNewer(r)
	case *types.TaskTagLink:
		ok, err = tx.UpsertLinkIfNewer(r)
	default:
		return fmt.Errorf("%w: %T", types.ErrUnknownRecordKind, rec)
	}
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if ts != nil {
		if err := tx.DeleteTombstone(rec.Kind(), rec.RecordID()); err != nil {
			return err
		}
	}
	applied[recordKey(rec.Kind(), rec.RecordID())] = true

	// An applied task rewrites its tag links; those rows are part of the
	// same submission and must not be echoed back either.
	if task, isTask := rec.(*types.Task); isTask {
		for _, tagID := range task.TagIDs {
			applied[recordKey(types.KindTaskTag, types.LinkID(task.ID, tagID))] = true
		}
	}
	return nil
}

// collectDelta gathers every record and tombstone changed after prev,
// excluding the keys this call just applied so a device never receives an
// echo of its own submission. A nil prev returns the full live dataset plus
// the full tombstone history.
func (e *Engine) collectDelta(tx *sqlite.Tx, prev *time.Time, applied map[string]bool) ([]types.SyncRecord, error) {
	delta := []types.SyncRecord{}

	lists, err := tx.ListsChangedSince(prev)
	if err != nil {
		return nil, err
	}
	for _, l := range lists {
		if !applied[recordKey(types.KindList, l.ID)] {
			delta = append(delta, types.SyncRecord{List: l})
		}
	}

	tags, err := tx.TagsChangedSince(prev)
	if err != nil {
		return nil, err
	}
	for _, tg := range tags {
		if !applied[recordKey(types.KindTag, tg.ID)] {
			delta = append(delta, types.SyncRecord{Tag: tg})
		}
	}

	tasks, err := tx.TasksChangedSince(prev)
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		if !applied[recordKey(types.KindTask, task.ID)] {
			delta = append(delta, types.SyncRecord{Task: task})
		}
	}

	links, err := tx.LinksChangedSince(prev)
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		if !applied[recordKey(types.KindTaskTag, link.RecordID())] {
			delta = append(delta, types.SyncRecord{TaskTag: link})
		}
	}

	tombstones, err := tx.TombstonesChangedSince(prev)
	if err != nil {
		return nil, err
	}
	for _, ts := range tombstones {
		if !applied[tombstoneKey(ts.RecordType, ts.ID)] {
			delta = append(delta, types.SyncRecord{Tombstone: ts})
		}
	}

	return delta, nil
}

func recordKey(kind types.RecordKind, id string) string {
	return string(kind) + "/" + id
}

func tombstoneKey(kind types.RecordKind, id string) string {
	return "deleted/" + string(kind) + "/" + id
}

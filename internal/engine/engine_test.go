package engine

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricardodantas/tickit-sync/internal/sqlite"
	"github.com/ricardodantas/tickit-sync/pkg/types"
)

const (
	deviceA = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	deviceB = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"

	taskID = "11111111-1111-4111-8111-111111111111"
	listID = "22222222-2222-4222-8222-222222222222"
	tagID  = "33333333-3333-4333-8333-333333333333"
)

// past returns a deterministic timestamp safely in the past, sec seconds
// after a fixed base.
func past(sec int) time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(sec) * time.Second)
}

func setupEngine(t *testing.T) (*Engine, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "sync.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, logger), store
}

func runSync(t *testing.T, eng *Engine, device string, lastSync *time.Time, changes ...types.SyncRecord) *types.SyncResponse {
	t.Helper()
	resp, err := eng.Sync(context.Background(), &types.SyncRequest{
		DeviceID: device,
		LastSync: lastSync,
		Changes:  changes,
	})
	require.NoError(t, err)
	return resp
}

// peek runs read-only assertions inside a throwaway transaction.
func peek(t *testing.T, store *sqlite.Store, fn func(tx *sqlite.Tx)) {
	t.Helper()
	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()
	fn(tx)
}

func taskRec(title string, clock time.Time) types.SyncRecord {
	return types.SyncRecord{Task: &types.Task{
		ID:        taskID,
		Title:     title,
		Priority:  types.PriorityMedium,
		ListID:    listID,
		TagIDs:    []string{},
		CreatedAt: clock,
		UpdatedAt: clock,
	}}
}

func listRec(clock time.Time) types.SyncRecord {
	return types.SyncRecord{List: &types.List{
		ID:        listID,
		Name:      "Groceries",
		Icon:      "cart",
		CreatedAt: clock,
		UpdatedAt: clock,
	}}
}

func taskTombstone(clock time.Time) types.SyncRecord {
	return types.SyncRecord{Tombstone: &types.Tombstone{
		ID:         taskID,
		RecordType: types.KindTask,
		DeletedAt:  clock,
	}}
}

func TestFirstSyncReturnsFullDataset(t *testing.T) {
	eng, _ := setupEngine(t)

	runSync(t, eng, deviceA, nil, listRec(past(0)), taskRec("Buy milk", past(1)))

	resp := runSync(t, eng, deviceB, nil)
	require.Len(t, resp.Changes, 2)

	kinds := map[string]bool{}
	for _, c := range resp.Changes {
		require.NotNil(t, c.Upsert())
		kinds[string(c.Upsert().Kind())] = true
	}
	assert.True(t, kinds["list"])
	assert.True(t, kinds["task"])
}

func TestNoEchoOfOwnSubmission(t *testing.T) {
	eng, _ := setupEngine(t)

	resp := runSync(t, eng, deviceA, nil, listRec(past(0)), taskRec("Buy milk", past(1)))
	assert.Empty(t, resp.Changes)
	assert.Empty(t, resp.Conflicts)
	assert.False(t, resp.ServerTime.IsZero())
}

func TestRetrySameBatchLeavesStateUnchanged(t *testing.T) {
	eng, store := setupEngine(t)

	batch := []types.SyncRecord{listRec(past(0)), taskRec("Buy milk", past(1))}
	runSync(t, eng, deviceA, nil, batch...)
	runSync(t, eng, deviceA, nil, batch...)

	peek(t, store, func(tx *sqlite.Tx) {
		task, err := tx.GetTask(taskID)
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", task.Title)

		all, err := tx.TasksChangedSince(nil)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestLastWriteWinsBothArrivalOrders(t *testing.T) {
	older := taskRec("A", past(1))
	newer := taskRec("B", past(2))

	orders := map[string][2]types.SyncRecord{
		"older first": {older, newer},
		"newer first": {newer, older},
	}
	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			eng, store := setupEngine(t)
			runSync(t, eng, deviceA, nil, order[0])
			runSync(t, eng, deviceB, nil, order[1])

			peek(t, store, func(tx *sqlite.Tx) {
				task, err := tx.GetTask(taskID)
				require.NoError(t, err)
				assert.Equal(t, "B", task.Title)
			})
		})
	}
}

func TestEqualClockConvergesBothOrders(t *testing.T) {
	versionA := taskRec("Buy milk", past(1))
	versionB := taskRec("Buy oat milk", past(1))

	winner := func(first, second types.SyncRecord) string {
		eng, store := setupEngine(t)
		runSync(t, eng, deviceA, nil, first)
		runSync(t, eng, deviceB, nil, second)

		var title string
		peek(t, store, func(tx *sqlite.Tx) {
			task, err := tx.GetTask(taskID)
			require.NoError(t, err)
			title = task.Title
		})
		return title
	}

	assert.Equal(t, winner(versionA, versionB), winner(versionB, versionA))
}

func TestDeletionBlocksOlderUpsert(t *testing.T) {
	upsert := taskRec("Buy milk", past(3))
	deletion := taskTombstone(past(5))

	orders := map[string][2]types.SyncRecord{
		"deletion first": {deletion, upsert},
		"upsert first":   {upsert, deletion},
	}
	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			eng, store := setupEngine(t)
			runSync(t, eng, deviceA, nil, order[0])
			runSync(t, eng, deviceB, nil, order[1])

			peek(t, store, func(tx *sqlite.Tx) {
				_, err := tx.GetTask(taskID)
				assert.ErrorIs(t, err, types.ErrNotFound)

				ts, err := tx.GetTombstone(types.KindTask, taskID)
				require.NoError(t, err)
				assert.True(t, ts.DeletedAt.Equal(past(5)))
			})
		})
	}
}

func TestNewerUpsertRevivesDeletedRecord(t *testing.T) {
	eng, store := setupEngine(t)

	runSync(t, eng, deviceA, nil, taskTombstone(past(5)))
	runSync(t, eng, deviceB, nil, taskRec("Back again", past(9)))

	peek(t, store, func(tx *sqlite.Tx) {
		task, err := tx.GetTask(taskID)
		require.NoError(t, err)
		assert.Equal(t, "Back again", task.Title)

		// Revival clears the tombstone so state never holds both.
		_, err = tx.GetTombstone(types.KindTask, taskID)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestDeletionOlderThanRowKeepsRow(t *testing.T) {
	eng, store := setupEngine(t)

	runSync(t, eng, deviceA, nil, taskRec("Current", past(5)))
	runSync(t, eng, deviceB, nil, taskTombstone(past(3)))

	peek(t, store, func(tx *sqlite.Tx) {
		task, err := tx.GetTask(taskID)
		require.NoError(t, err)
		assert.Equal(t, "Current", task.Title)
	})
}

func TestListDeletionLeavesTasksDangling(t *testing.T) {
	eng, store := setupEngine(t)

	runSync(t, eng, deviceA, nil, listRec(past(0)), taskRec("Buy milk", past(4)))
	runSync(t, eng, deviceB, nil, types.SyncRecord{Tombstone: &types.Tombstone{
		ID:         listID,
		RecordType: types.KindList,
		DeletedAt:  past(2),
	}})

	peek(t, store, func(tx *sqlite.Tx) {
		_, err := tx.GetList(listID)
		assert.ErrorIs(t, err, types.ErrNotFound)

		// The task survives with its list_id pointing at the deleted
		// list; orphan handling is a client concern.
		task, err := tx.GetTask(taskID)
		require.NoError(t, err)
		assert.Equal(t, listID, task.ListID)
	})
}

func TestTaskUpsertLinksNotEchoed(t *testing.T) {
	eng, _ := setupEngine(t)

	rec := taskRec("Tagged", past(1))
	rec.Task.TagIDs = []string{tagID}

	resp := runSync(t, eng, deviceA, nil, listRec(past(0)), rec)
	assert.Empty(t, resp.Changes)
}

func TestLinkTombstoneBlocksStaleTaskRewrite(t *testing.T) {
	eng, store := setupEngine(t)

	runSync(t, eng, deviceA, nil, types.SyncRecord{Tombstone: &types.Tombstone{
		ID:         types.LinkID(taskID, tagID),
		RecordType: types.KindTaskTag,
		DeletedAt:  past(10),
	}})

	// The task itself is accepted, but its embedded tag membership is
	// older than the link tombstone and must not resurrect the link.
	stale := taskRec("Tagged", past(5))
	stale.Task.TagIDs = []string{tagID}
	runSync(t, eng, deviceB, nil, stale)

	peek(t, store, func(tx *sqlite.Tx) {
		task, err := tx.GetTask(taskID)
		require.NoError(t, err)
		assert.Equal(t, "Tagged", task.Title)
		assert.Empty(t, task.TagIDs)

		_, err = tx.GetLink(taskID, tagID)
		assert.ErrorIs(t, err, types.ErrNotFound)

		ts, err := tx.GetTombstone(types.KindTaskTag, types.LinkID(taskID, tagID))
		require.NoError(t, err)
		assert.True(t, ts.DeletedAt.Equal(past(10)))
	})
}

func TestIncrementalSyncDeliversOnlyNewChanges(t *testing.T) {
	eng, _ := setupEngine(t)

	runSync(t, eng, deviceA, nil, taskRec("First", time.Now().UTC()))

	respB := runSync(t, eng, deviceB, nil)
	require.Len(t, respB.Changes, 1)

	second := types.SyncRecord{Task: &types.Task{
		ID:        "11111111-1111-4111-8111-999999999999",
		Title:     "Second",
		Priority:  types.PriorityHigh,
		ListID:    listID,
		TagIDs:    []string{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}}
	runSync(t, eng, deviceA, nil, second)

	lastSync := respB.ServerTime
	respB2 := runSync(t, eng, deviceB, &lastSync)
	require.Len(t, respB2.Changes, 1)
	require.NotNil(t, respB2.Changes[0].Task)
	assert.Equal(t, "Second", respB2.Changes[0].Task.Title)
}

func TestTombstonesDeliveredToOtherDevices(t *testing.T) {
	eng, _ := setupEngine(t)

	runSync(t, eng, deviceA, nil, taskRec("Doomed", past(1)))
	runSync(t, eng, deviceA, nil, taskTombstone(past(2)))

	resp := runSync(t, eng, deviceB, nil)
	require.Len(t, resp.Changes, 1)
	require.True(t, resp.Changes[0].IsDeletion())
	assert.Equal(t, taskID, resp.Changes[0].Tombstone.ID)
}

func TestDeletionAppliedAfterUpsertsInOneBatch(t *testing.T) {
	eng, store := setupEngine(t)

	// Array order puts the deletion first; kind ordering applies it last,
	// and its newer clock removes the row either way.
	runSync(t, eng, deviceA, nil, taskTombstone(past(5)), taskRec("Buy milk", past(3)))

	peek(t, store, func(tx *sqlite.Tx) {
		_, err := tx.GetTask(taskID)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestCursorAdvancesPerDevice(t *testing.T) {
	eng, store := setupEngine(t)

	resp := runSync(t, eng, deviceA, nil, taskRec("Buy milk", past(1)))

	peek(t, store, func(tx *sqlite.Tx) {
		cursor, err := tx.GetCursor(deviceA)
		require.NoError(t, err)
		require.NotNil(t, cursor)
		assert.True(t, cursor.Equal(resp.ServerTime))

		other, err := tx.GetCursor(deviceB)
		require.NoError(t, err)
		assert.Nil(t, other)
	})
}

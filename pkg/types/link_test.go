package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkID(t *testing.T) {
	id := LinkID(testTaskID, testTagID)
	assert.Equal(t, testTaskID+":"+testTagID, id)

	taskID, tagID, err := SplitLinkID(id)
	require.NoError(t, err)
	assert.Equal(t, testTaskID, taskID)
	assert.Equal(t, testTagID, tagID)
}

func TestSplitLinkIDMalformed(t *testing.T) {
	_, _, err := SplitLinkID("no-separator")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestLinkRecord(t *testing.T) {
	link := &TaskTagLink{TaskID: testTaskID, TagID: testTagID, CreatedAt: testTime}
	assert.Equal(t, LinkID(testTaskID, testTagID), link.RecordID())
	assert.Equal(t, KindTaskTag, link.Kind())
	assert.Equal(t, testTime, link.Clock())
	assert.NoError(t, link.Validate())
}

func TestTombstoneValidate(t *testing.T) {
	tests := []struct {
		name    string
		ts      Tombstone
		wantErr error
	}{
		{
			name: "valid task tombstone",
			ts:   Tombstone{ID: testTaskID, RecordType: KindTask, DeletedAt: testTime},
		},
		{
			name: "valid link tombstone with composite id",
			ts:   Tombstone{ID: LinkID(testTaskID, testTagID), RecordType: KindTaskTag, DeletedAt: testTime},
		},
		{
			name:    "unknown record type",
			ts:      Tombstone{ID: testTaskID, RecordType: "widget", DeletedAt: testTime},
			wantErr: ErrUnknownRecordKind,
		},
		{
			name:    "link tombstone without composite id",
			ts:      Tombstone{ID: testTaskID, RecordType: KindTaskTag, DeletedAt: testTime},
			wantErr: ErrInvalidID,
		},
		{
			name:    "zero deleted_at",
			ts:      Tombstone{ID: testTaskID, RecordType: KindTask},
			wantErr: ErrInvalidEnvelope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ts.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

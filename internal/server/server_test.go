package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricardodantas/tickit-sync/internal/config"
	"github.com/ricardodantas/tickit-sync/internal/engine"
	"github.com/ricardodantas/tickit-sync/internal/sqlite"
	"github.com/ricardodantas/tickit-sync/pkg/types"
)

const (
	testToken  = "tks_testtokenplaintext"
	testDevice = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	testListID = "22222222-2222-4222-8222-222222222222"
)

func setupHandler(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "sync.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	cfg.Tokens = []config.TokenConfig{{Name: "test", TokenHash: testToken}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(cfg, engine.New(store, logger), logger, "test")
	return srv.Handler()
}

func postSync(t *testing.T, h http.Handler, token string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthNeedsNoAuth(t *testing.T) {
	h := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Status  string `json:"status"`
		Service string `json:"service"`
		Version string `json:"version"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload.Status)
	assert.Equal(t, "tickit-sync", payload.Service)
	assert.Equal(t, "test", payload.Version)
}

func TestSyncRejectsMissingToken(t *testing.T) {
	h := setupHandler(t)

	rec := postSync(t, h, "", []byte(`{}`))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var payload struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload.Error)
}

func TestSyncRejectsWrongToken(t *testing.T) {
	h := setupHandler(t)
	rec := postSync(t, h, "tks_wrong", []byte(`{}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSyncRoundTrip(t *testing.T) {
	h := setupHandler(t)

	now := time.Now().UTC()
	reqBody, err := json.Marshal(types.SyncRequest{
		DeviceID: testDevice,
		Changes: []types.SyncRecord{{List: &types.List{
			ID:        testListID,
			Name:      "Groceries",
			Icon:      "cart",
			CreatedAt: now,
			UpdatedAt: now,
		}}},
	})
	require.NoError(t, err)

	rec := postSync(t, h, testToken, reqBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp types.SyncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.ServerTime.IsZero())
	assert.Empty(t, resp.Changes)
	assert.NotNil(t, resp.Conflicts)

	// A second device with no baseline receives the list.
	otherBody, err := json.Marshal(types.SyncRequest{
		DeviceID: "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb",
	})
	require.NoError(t, err)

	rec = postSync(t, h, testToken, otherBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var other types.SyncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &other))
	require.Len(t, other.Changes, 1)
	require.NotNil(t, other.Changes[0].List)
	assert.Equal(t, "Groceries", other.Changes[0].List.Name)
}

func TestSyncMalformedBody(t *testing.T) {
	h := setupHandler(t)
	rec := postSync(t, h, testToken, []byte(`{not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncInvalidDeviceID(t *testing.T) {
	h := setupHandler(t)
	rec := postSync(t, h, testToken, []byte(`{"device_id":"laptop","changes":[]}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncRefusesBatchWithOneBadChange(t *testing.T) {
	h := setupHandler(t)

	now := time.Now().UTC()
	reqBody, err := json.Marshal(types.SyncRequest{
		DeviceID: testDevice,
		Changes: []types.SyncRecord{
			{List: &types.List{ID: testListID, Name: "Groceries", CreatedAt: now, UpdatedAt: now}},
			{List: &types.List{ID: "not-a-uuid", Name: "Bad", CreatedAt: now, UpdatedAt: now}},
		},
	})
	require.NoError(t, err)

	rec := postSync(t, h, testToken, reqBody)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Nothing from the batch was applied.
	otherBody, err := json.Marshal(types.SyncRequest{
		DeviceID: "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb",
	})
	require.NoError(t, err)
	rec = postSync(t, h, testToken, otherBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.SyncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Changes)
}

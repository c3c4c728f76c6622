package server

import (
	"encoding/json"
	"net/http"

	"github.com/ricardodantas/tickit-sync/pkg/types"
)

// healthPayload is the body of GET /health.
type healthPayload struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthPayload{
		Status:  "ok",
		Service: "tickit-sync",
		Version: s.version,
	})
}

// handleSync decodes a sync request, validates the whole batch, and runs it
// through the engine. Validation failures refuse the batch with 400; nothing
// is partially applied.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req types.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.engine.Sync(r.Context(), &req)
	if err != nil {
		s.logger.Error("sync failed", "device_id", req.DeviceID, "error", err)
		writeError(w, http.StatusInternalServerError, "sync failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type errorPayload struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Error: msg})
}

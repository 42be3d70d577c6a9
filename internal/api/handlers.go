package api

import (
	"encoding/json"
	"net/http"
)

// healthResponse is the body of GET /api/v1/health.
type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Session       string `json:"session"`
	FreeMemory    uint64 `json:"free_memory"`
	MinFreeMemory uint64 `json:"min_free_memory"`
	RSSI          int    `json:"rssi"`
	Uptime        uint64 `json:"uptime_seconds"`
}

// handleHealth reports host vitals and broker session state.
//
// The endpoint answers 200 even while the broker is unreachable: the agent
// process itself is healthy, and the session field carries the degraded
// state for tooling to act on.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, err := s.prober.Snapshot(r.Context(), s.session.IsConnected())
	if err != nil {
		s.logger.Error("health probe failed", "error", err)
		http.Error(w, "health probe failed", http.StatusInternalServerError)
		return
	}

	s.respondJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       s.version,
		Session:       s.session.State().String(),
		FreeMemory:    snap.FreeMemory,
		MinFreeMemory: snap.MinFreeMemory,
		RSSI:          snap.RSSI,
		Uptime:        snap.Uptime,
	})
}

// handleStats returns the session statistics snapshot.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, s.tracker.Snapshot())
}

// handleStatsReset clears the resettable counters.
//
// Disconnect count and accumulated downtime survive the reset; they
// describe the life of the connection, not of the counter window.
func (s *Server) handleStatsReset(w http.ResponseWriter, _ *http.Request) {
	s.tracker.Reset()
	s.logger.Info("statistics reset via ops API")
	w.WriteHeader(http.StatusNoContent)
}

// respondJSON writes a JSON response body.
func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("ops API response encoding failed", "error", err)
	}
}

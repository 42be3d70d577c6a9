package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nerrad567/gray-logic-agent/internal/health"
	"github.com/nerrad567/gray-logic-agent/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-agent/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-agent/internal/mqtt"
	"github.com/nerrad567/gray-logic-agent/internal/stats"
)

// fakeSession reports a fixed session state.
type fakeSession struct {
	state mqtt.State
}

func (f fakeSession) State() mqtt.State { return f.state }
func (f fakeSession) IsConnected() bool { return f.state == mqtt.StateConnected }

func newTestServer(t *testing.T, session SessionInfo, tracker *stats.Tracker) *Server {
	t.Helper()

	server, err := New(Deps{
		Config:  config.APIConfig{Host: "127.0.0.1", Port: 0},
		Logger:  logging.Default(),
		Tracker: tracker,
		Prober:  health.NewProber(nil),
		Session: session,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return server
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New() with no deps succeeded, want error")
	}
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t, fakeSession{state: mqtt.StateConnected}, stats.NewTracker())

	rec := httptest.NewRecorder()
	server.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Status != "ok" || body.Session != "connected" || body.Version != "test" {
		t.Errorf("body = %+v", body)
	}
	if body.FreeMemory == 0 || body.Uptime == 0 {
		t.Errorf("body = %+v, want live probe values", body)
	}
}

func TestHandleHealth_Disconnected(t *testing.T) {
	server := newTestServer(t, fakeSession{state: mqtt.StateConnecting}, stats.NewTracker())

	rec := httptest.NewRecorder()
	server.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	// The agent itself is healthy; the session field carries the degraded state.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Session != "connecting" {
		t.Errorf("session = %q, want connecting", body.Session)
	}
}

func TestHandleStats(t *testing.T) {
	tracker := stats.NewTracker()
	tracker.RecordPublish(true)
	tracker.RecordPublish(false)
	tracker.RecordReceive()

	server := newTestServer(t, fakeSession{state: mqtt.StateConnected}, tracker)

	rec := httptest.NewRecorder()
	server.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var snap stats.Statistics
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if snap.Published != 1 || snap.PublishFailures != 1 || snap.Received != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestHandleStatsReset(t *testing.T) {
	tracker := stats.NewTracker()
	tracker.RecordPublish(true)
	tracker.RecordDisconnect()

	server := newTestServer(t, fakeSession{state: mqtt.StateConnected}, tracker)

	rec := httptest.NewRecorder()
	server.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/stats/reset", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	snap := tracker.Snapshot()
	if snap.Published != 0 {
		t.Errorf("Published after reset = %d, want 0", snap.Published)
	}
	if snap.Disconnects != 1 {
		t.Errorf("Disconnects after reset = %d, want 1 (preserved)", snap.Disconnects)
	}
}

func TestUnknownRoute(t *testing.T) {
	server := newTestServer(t, fakeSession{state: mqtt.StateConnected}, stats.NewTracker())

	rec := httptest.NewRecorder()
	server.buildRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

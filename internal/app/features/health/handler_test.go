package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/groupsync/internal/app/features/health"
	"github.com/dalemusser/groupsync/internal/app/system/updater"
	"github.com/dalemusser/groupsync/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type fakeWorker updater.State

func (w fakeWorker) State() updater.State { return updater.State(w) }

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context, *readpref.ReadPref) error { return p.err }

type response struct {
	Status   string `json:"status"`
	Worker   string `json:"worker"`
	Database string `json:"database"`
	Message  string `json:"message"`
	Error    string `json:"error"`
}

func serve(t *testing.T, h *health.Handler) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/healthz", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec, resp
}

func TestServe_WorkerRunning(t *testing.T) {
	h := health.NewHandler(fakeWorker(updater.Running), nil, zap.NewNop())

	rec, resp := serve(t, h)
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if resp.Status != "ok" || resp.Worker != "running" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Database != "" {
		t.Errorf("database should be omitted without a pinger, got %q", resp.Database)
	}
}

func TestServe_WorkerStopped(t *testing.T) {
	h := health.NewHandler(fakeWorker(updater.Stopped), fakePinger{}, zap.NewNop())

	rec, resp := serve(t, h)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	if resp.Worker != "stopped" || resp.Message != "Update worker stopped" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Database != "connected" {
		t.Errorf("database: got %q", resp.Database)
	}
}

func TestServe_DatabaseUnreachable(t *testing.T) {
	h := health.NewHandler(fakeWorker(updater.Running), fakePinger{err: errors.New("no reachable servers")}, zap.NewNop())

	rec, resp := serve(t, h)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	if resp.Database != "disconnected" || resp.Error != "no reachable servers" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := health.NewHandler(fakeWorker(updater.Running), db.Client(), zap.NewNop())

	rec, resp := serve(t, h)
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if resp.Database != "connected" {
		t.Errorf("database: got %q, want %q", resp.Database, "connected")
	}
}

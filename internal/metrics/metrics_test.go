package metrics

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
)

func TestCheckSQLiteTracksHealth(t *testing.T) {
	h := NewHealthStatus()
	if !h.SQLiteOK {
		t.Fatal("SQLiteOK should default to true")
	}

	h.CheckSQLite(func() error { return errors.New("database is locked") })
	h.mu.RLock()
	ok := h.SQLiteOK
	checked := h.LastCheckAt
	h.mu.RUnlock()
	if ok {
		t.Error("failed ping left SQLiteOK true")
	}
	if checked.IsZero() {
		t.Error("LastCheckAt not recorded")
	}

	h.CheckSQLite(func() error { return nil })
	h.mu.RLock()
	ok = h.SQLiteOK
	h.mu.RUnlock()
	if !ok {
		t.Error("successful ping did not restore SQLiteOK")
	}
}

func TestHealthzReportsSQLiteFailure(t *testing.T) {
	h := NewHealthStatus()
	h.SetFeedConnected(true)
	h.CheckSQLite(func() error { return errors.New("disk I/O error") })

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != 503 {
		t.Errorf("status code = %d, want 503", rec.Code)
	}
	var body struct {
		Status   string `json:"status"`
		SQLiteOK bool   `json:"sqlite_ok"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal healthz body: %v", err)
	}
	if body.Status != "degraded" || body.SQLiteOK {
		t.Errorf("healthz = %+v, want degraded with sqlite_ok=false", body)
	}
}

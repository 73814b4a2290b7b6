package healthprobe

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealth(t *testing.T) {
	checker := New()
	checker.SetComponent("watch", true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	checker.Health()(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q", resp.Status)
	}
	if up, ok := resp.Components["watch"]; !ok || !up {
		t.Errorf("components = %v, want watch up", resp.Components)
	}
}

func TestReady(t *testing.T) {
	checker := New()

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	checker.Ready()(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status before ready = %d, want 503", rec.Code)
	}

	checker.SetReady(true)
	rec = httptest.NewRecorder()
	checker.Ready()(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status after ready = %d, want 200", rec.Code)
	}

	checker.SetReady(false)
	rec = httptest.NewRecorder()
	checker.Ready()(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status after unready = %d, want 503", rec.Code)
	}
}

package healthprobe

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HealthChecker provides health and readiness checks.
type HealthChecker struct {
	startTime time.Time
	ready     atomic.Bool

	mu         sync.RWMutex
	components map[string]bool
}

// New creates a new HealthChecker.
func New() *HealthChecker {
	return &HealthChecker{
		startTime:  time.Now(),
		components: make(map[string]bool),
	}
}

// SetReady marks the application as ready to serve traffic.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// SetComponent records the up/down state of a named component. Component
// state is informational; it does not gate readiness.
func (h *HealthChecker) SetComponent(name string, up bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.components[name] = up
}

func (h *HealthChecker) componentSnapshot() map[string]bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	snapshot := make(map[string]bool, len(h.components))
	for name, up := range h.components {
		snapshot[name] = up
	}
	return snapshot
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status     string          `json:"status"`
	Uptime     string          `json:"uptime"`
	Components map[string]bool `json:"components,omitempty"`
	Message    string          `json:"message,omitempty"`
}

// Health returns an HTTP handler for liveness checks.
// Always returns 200 OK if the application is running.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:     "healthy",
			Uptime:     time.Since(h.startTime).String(),
			Components: h.componentSnapshot(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// Ready returns an HTTP handler for readiness checks.
// Returns 200 OK if ready, 503 Service Unavailable if not.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			resp := HealthResponse{
				Status:  "not_ready",
				Message: "application is starting",
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(resp)
			return
		}

		resp := HealthResponse{
			Status: "ready",
			Uptime: time.Since(h.startTime).String(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mperativ/agentdir/pkg/config"
)

func newCatalogServer(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/agents", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"agents": []map[string]any{
				{"id": "a-1", "name": "router", "status": "ready"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		LogLevel:       "info",
		HTTPPort:       "0",
		CatalogBaseURL: baseURL,
		CatalogTimeout: 5 * time.Second,
		CacheCapacity:  10,
		CacheTTL:       time.Minute,
		ItemCacheSize:  100,
		ListLimit:      25,
	}
}

func TestNew_WiresComponents(t *testing.T) {
	var calls atomic.Int64
	srv := newCatalogServer(t, &calls)

	a, err := New(testConfig(srv.URL), zap.NewNop(), nil)
	require.NoError(t, err)

	assert.NotNil(t, a.httpServer)
	assert.NotNil(t, a.directory)
	assert.Nil(t, a.watcher, "watcher should be disabled without an events url")

	require.NoError(t, a.Shutdown())
}

func TestWarm_PrimesAgentsList(t *testing.T) {
	var calls atomic.Int64
	srv := newCatalogServer(t, &calls)

	a, err := New(testConfig(srv.URL), zap.NewNop(), nil)
	require.NoError(t, err)
	defer func() { _ = a.Shutdown() }()

	ctx := context.Background()
	require.NoError(t, a.warm(ctx))
	require.Equal(t, int64(1), calls.Load())

	// A caller asking for the same page hits the warmed cache.
	page, err := a.directory.ListAgents(ctx, 25, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a-1", page.Items[0].ID)
	assert.Equal(t, int64(1), calls.Load())
}

func TestNew_WatcherEnabledWithEventsURL(t *testing.T) {
	var calls atomic.Int64
	srv := newCatalogServer(t, &calls)

	cfg := testConfig(srv.URL)
	cfg.CatalogEventsURL = "ws://localhost:1/events"

	a, err := New(cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	assert.NotNil(t, a.watcher)

	require.NoError(t, a.Shutdown())
}

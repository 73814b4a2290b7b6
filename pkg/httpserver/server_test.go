package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mperativ/agentdir/pkg/healthprobe"
	"github.com/mperativ/agentdir/pkg/pagination"
	"github.com/mperativ/agentdir/pkg/types"
)

// stubDirectory serves canned pages and records the params it saw.
type stubDirectory struct {
	lastLimit  int
	lastCursor string
	getErr     error
}

func (s *stubDirectory) ListAgents(ctx context.Context, limit int, cursor string) (pagination.Page[types.AgentSummary], error) {
	s.lastLimit = limit
	s.lastCursor = cursor
	return pagination.Page[types.AgentSummary]{
		Items:  []types.AgentSummary{{ID: "a-1", Name: "router", Status: "ready"}},
		Cursor: "next-cursor",
	}, nil
}

func (s *stubDirectory) GetAgent(ctx context.Context, id string) (*types.Agent, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &types.Agent{ID: id, Name: "router", Status: "ready"}, nil
}

func (s *stubDirectory) ListVersions(ctx context.Context, agentID string, limit int, cursor string) (pagination.Page[types.AgentVersion], error) {
	return pagination.Page[types.AgentVersion]{Items: []types.AgentVersion{{AgentID: agentID, Version: "1"}}}, nil
}

func (s *stubDirectory) ListAliases(ctx context.Context, agentID string, limit int, cursor string) (pagination.Page[types.AgentAlias], error) {
	return pagination.Page[types.AgentAlias]{Items: []types.AgentAlias{{AgentID: agentID, ID: "al-1", Name: "live"}}}, nil
}

func newTestServer(t *testing.T, dir Directory) *Server {
	t.Helper()
	checker := healthprobe.New()
	checker.SetReady(true)
	return New(&Config{
		Port:          "0",
		Logger:        zap.NewNop(),
		HealthChecker: checker,
		Directory:     dir,
	})
}

func TestListAgentsEndpoint(t *testing.T) {
	dir := &stubDirectory{}
	srv := newTestServer(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/api/agents?limit=5&cursor=abc", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, dir.lastLimit)
	assert.Equal(t, "abc", dir.lastCursor)

	var page pagination.Page[types.AgentSummary]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "a-1", page.Items[0].ID)
	assert.Equal(t, "next-cursor", page.Cursor)
}

func TestListAgentsEndpoint_BadLimit(t *testing.T) {
	srv := newTestServer(t, &stubDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/api/agents?limit=bogus", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAgentEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/api/agents/a-7", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var agent types.Agent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agent))
	assert.Equal(t, "a-7", agent.ID)
}

func TestGetAgentEndpoint_UpstreamErrorMapping(t *testing.T) {
	dir := &stubDirectory{getErr: &types.APIError{Kind: types.ErrorNotFound, Status: 404, Message: "no such agent"}}
	srv := newTestServer(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/api/agents/missing", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no such agent", resp.Error)
}

func TestSubCollectionEndpoints(t *testing.T) {
	srv := newTestServer(t, &stubDirectory{})

	for _, path := range []string{"/api/agents/a-1/versions", "/api/agents/a-1/aliases"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestHealthAndReadyEndpoints(t *testing.T) {
	srv := newTestServer(t, &stubDirectory{})

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

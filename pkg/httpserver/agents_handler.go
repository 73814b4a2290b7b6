package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mperativ/agentdir/pkg/pagination"
	"github.com/mperativ/agentdir/pkg/types"
)

// Directory is the slice of the agent directory the HTTP surface serves.
type Directory interface {
	ListAgents(ctx context.Context, limit int, cursor string) (pagination.Page[types.AgentSummary], error)
	GetAgent(ctx context.Context, id string) (*types.Agent, error)
	ListVersions(ctx context.Context, agentID string, limit int, cursor string) (pagination.Page[types.AgentVersion], error)
	ListAliases(ctx context.Context, agentID string, limit int, cursor string) (pagination.Page[types.AgentAlias], error)
}

// AgentsHandler handles HTTP requests for the agent directory.
type AgentsHandler struct {
	directory Directory
	logger    *zap.Logger
}

// NewAgentsHandler creates a new agents handler.
func NewAgentsHandler(directory Directory, logger *zap.Logger) *AgentsHandler {
	return &AgentsHandler{
		directory: directory,
		logger:    logger,
	}
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleListAgents handles GET /api/agents?limit=<n>&cursor=<cursor>.
func (h *AgentsHandler) HandleListAgents(w http.ResponseWriter, r *http.Request) {
	limit, cursor, ok := h.pageParams(w, r)
	if !ok {
		return
	}

	page, err := h.directory.ListAgents(r.Context(), limit, cursor)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, page)
}

// HandleGetAgent handles GET /api/agents/{agentID}.
func (h *AgentsHandler) HandleGetAgent(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	agent, err := h.directory.GetAgent(r.Context(), agentID)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, agent)
}

// HandleListVersions handles GET /api/agents/{agentID}/versions.
func (h *AgentsHandler) HandleListVersions(w http.ResponseWriter, r *http.Request) {
	limit, cursor, ok := h.pageParams(w, r)
	if !ok {
		return
	}

	page, err := h.directory.ListVersions(r.Context(), chi.URLParam(r, "agentID"), limit, cursor)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, page)
}

// HandleListAliases handles GET /api/agents/{agentID}/aliases.
func (h *AgentsHandler) HandleListAliases(w http.ResponseWriter, r *http.Request) {
	limit, cursor, ok := h.pageParams(w, r)
	if !ok {
		return
	}

	page, err := h.directory.ListAliases(r.Context(), chi.URLParam(r, "agentID"), limit, cursor)
	if err != nil {
		h.writeUpstreamError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, page)
}

// pageParams parses the limit and cursor query parameters.
func (h *AgentsHandler) pageParams(w http.ResponseWriter, r *http.Request) (limit int, cursor string, ok bool) {
	cursor = r.URL.Query().Get("cursor")

	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, cursor, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		h.writeError(w, "limit must be a non-negative integer", http.StatusBadRequest)
		return 0, "", false
	}
	return limit, cursor, true
}

// writeUpstreamError renders an upstream failure with the status matching
// its taxonomy kind.
func (h *AgentsHandler) writeUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *types.APIError
	if errors.As(err, &apiErr) {
		h.writeError(w, apiErr.Message, types.StatusFromErrorKind(apiErr.Kind))
		return
	}

	h.logger.Error("directory-request-failed", zap.Error(err))
	h.writeError(w, "internal error", http.StatusInternalServerError)
}

func (h *AgentsHandler) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func (h *AgentsHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		h.logger.Error("encode-response-failed", zap.Error(err))
	}
}

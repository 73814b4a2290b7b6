// Package catalog is the HTTP client for the agent-platform control plane.
// It owns the wire shapes, the opaque-cursor pagination codec, client-side
// rate limiting, and the mapping of upstream failures onto the error
// taxonomy in pkg/types.
package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mperativ/agentdir/pkg/pagination"
	"github.com/mperativ/agentdir/pkg/types"
)

// MaxPageSize is the largest page the control plane serves per request.
const MaxPageSize = 100

// Client is an HTTP client for the control-plane API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// ClientConfig holds client configuration.
type ClientConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 disables client-side rate limiting
	Burst             int
	Logger            *zap.Logger
}

// NewClient creates a new control-plane client.
func NewClient(cfg *ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     logger,
	}
}

type listAgentsResponse struct {
	Agents    []types.AgentSummary `json:"agents"`
	NextToken string               `json:"nextToken,omitempty"`
}

type listVersionsResponse struct {
	Versions  []types.AgentVersion `json:"versions"`
	NextToken string               `json:"nextToken,omitempty"`
}

type listAliasesResponse struct {
	Aliases   []types.AgentAlias `json:"aliases"`
	NextToken string             `json:"nextToken,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// ListAgents fetches one page of agents. cursor is an opaque continuation
// cursor from a previous page, or empty for the first page.
func (c *Client) ListAgents(ctx context.Context, limit int, cursor string) (pagination.Page[types.AgentSummary], error) {
	var out listAgentsResponse
	err := c.list(ctx, "/v1/agents", limit, cursor, &out)
	if err != nil {
		return pagination.Page[types.AgentSummary]{}, err
	}
	return pagination.Page[types.AgentSummary]{
		Items:  out.Agents,
		Cursor: pagination.EncodeCursor(out.NextToken),
	}, nil
}

// ListAgentVersions fetches one page of an agent's versions.
func (c *Client) ListAgentVersions(ctx context.Context, agentID string, limit int, cursor string) (pagination.Page[types.AgentVersion], error) {
	var out listVersionsResponse
	err := c.list(ctx, "/v1/agents/"+url.PathEscape(agentID)+"/versions", limit, cursor, &out)
	if err != nil {
		return pagination.Page[types.AgentVersion]{}, err
	}
	return pagination.Page[types.AgentVersion]{
		Items:  out.Versions,
		Cursor: pagination.EncodeCursor(out.NextToken),
	}, nil
}

// ListAgentAliases fetches one page of an agent's aliases.
func (c *Client) ListAgentAliases(ctx context.Context, agentID string, limit int, cursor string) (pagination.Page[types.AgentAlias], error) {
	var out listAliasesResponse
	err := c.list(ctx, "/v1/agents/"+url.PathEscape(agentID)+"/aliases", limit, cursor, &out)
	if err != nil {
		return pagination.Page[types.AgentAlias]{}, err
	}
	return pagination.Page[types.AgentAlias]{
		Items:  out.Aliases,
		Cursor: pagination.EncodeCursor(out.NextToken),
	}, nil
}

// GetAgent fetches a single agent by id.
func (c *Client) GetAgent(ctx context.Context, id string) (*types.Agent, error) {
	var agent types.Agent
	err := c.do(ctx, http.MethodGet, "/v1/agents/"+url.PathEscape(id), nil, &agent)
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// CreateAgent creates a new agent.
func (c *Client) CreateAgent(ctx context.Context, req types.CreateAgentRequest) (*types.Agent, error) {
	var agent types.Agent
	err := c.do(ctx, http.MethodPost, "/v1/agents", req, &agent)
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// UpdateAgent applies a partial update to an agent.
func (c *Client) UpdateAgent(ctx context.Context, id string, req types.UpdateAgentRequest) (*types.Agent, error) {
	var agent types.Agent
	err := c.do(ctx, http.MethodPatch, "/v1/agents/"+url.PathEscape(id), req, &agent)
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// DeleteAgent deletes an agent.
func (c *Client) DeleteAgent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/agents/"+url.PathEscape(id), nil, nil)
}

// list performs a paginated GET, translating the opaque cursor into the
// upstream continuation token.
func (c *Client) list(ctx context.Context, path string, limit int, cursor string, out any) error {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	token, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return &types.APIError{
			Kind:    types.ErrorBadRequest,
			Message: fmt.Sprintf("invalid cursor: %v", err),
		}
	}

	params := url.Values{}
	params.Set("maxResults", strconv.Itoa(limit))
	if token != "" {
		params.Set("nextToken", token)
	}

	return c.do(ctx, http.MethodGet, path+"?"+params.Encode(), nil, out)
}

// do performs one request against the control plane: waits for the rate
// limiter, tags the request, and maps failures onto the error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	start := time.Now()
	defer func() {
		RequestDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	err := c.limiter.Wait(ctx)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("User-Agent", "agentdir/1.0")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("catalog-request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request-id", requestID))

	RequestsTotal.Inc()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		RequestErrorsTotal.Inc()
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		RequestErrorsTotal.Inc()
		return c.mapError(resp, requestID)
	}

	if out == nil {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	err = json.Unmarshal(raw, out)
	if err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// mapError converts a non-2xx response into an APIError.
func (c *Client) mapError(resp *http.Response, requestID string) error {
	raw, _ := io.ReadAll(resp.Body)

	var parsed errorResponse
	_ = json.Unmarshal(raw, &parsed)
	message := parsed.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	apiErr := &types.APIError{
		Kind:      types.ErrorKindFromStatus(resp.StatusCode),
		Status:    resp.StatusCode,
		Message:   message,
		RequestID: requestID,
	}

	c.logger.Debug("catalog-error",
		zap.Int("status", resp.StatusCode),
		zap.String("kind", string(apiErr.Kind)),
		zap.String("request-id", requestID))

	return apiErr
}

// Package directory is the read-through view of the agent catalog. List
// and first-page reads are memoized in pkg/cache, single-agent reads in
// pkg/itemcache, and mutations invalidate whatever they made stale.
package directory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mperativ/agentdir/internal/catalog"
	"github.com/mperativ/agentdir/pkg/cache"
	"github.com/mperativ/agentdir/pkg/itemcache"
	"github.com/mperativ/agentdir/pkg/pagination"
	"github.com/mperativ/agentdir/pkg/types"
)

// CatalogClient is the slice of the control-plane client the directory
// consumes. *catalog.Client satisfies it; tests substitute fakes.
type CatalogClient interface {
	ListAgents(ctx context.Context, limit int, cursor string) (pagination.Page[types.AgentSummary], error)
	ListAgentVersions(ctx context.Context, agentID string, limit int, cursor string) (pagination.Page[types.AgentVersion], error)
	ListAgentAliases(ctx context.Context, agentID string, limit int, cursor string) (pagination.Page[types.AgentAlias], error)
	GetAgent(ctx context.Context, id string) (*types.Agent, error)
	CreateAgent(ctx context.Context, req types.CreateAgentRequest) (*types.Agent, error)
	UpdateAgent(ctx context.Context, id string, req types.UpdateAgentRequest) (*types.Agent, error)
	DeleteAgent(ctx context.Context, id string) error
}

var _ CatalogClient = (*catalog.Client)(nil)

// Directory provides cached access to the agent catalog.
type Directory struct {
	client   CatalogClient
	agents   *cache.Cache[types.AgentSummary]
	versions *cache.Cache[types.AgentVersion]
	aliases  *cache.Cache[types.AgentAlias]
	items    itemcache.Cache
	itemTTL  time.Duration

	agentKeys   *keyset
	versionKeys *keyset
	aliasKeys   *keyset

	defaultLimit int
	logger       *zap.Logger
}

// Config holds directory configuration.
type Config struct {
	Client CatalogClient

	// CacheCapacity and CacheTTL configure each of the three list/page
	// caches (agents, versions, aliases). Zero capacity applies the cache
	// default; zero TTL disables list caching.
	CacheCapacity int
	CacheTTL      time.Duration

	// Items memoizes single-agent gets. Nil disables item caching.
	Items   itemcache.Cache
	ItemTTL time.Duration

	// DefaultLimit is the page size used when callers pass limit <= 0.
	DefaultLimit int

	Logger *zap.Logger
}

// New creates a Directory.
func New(cfg *Config) (*Directory, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("directory: client cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := cache.Options{Capacity: cfg.CacheCapacity, TTL: cfg.CacheTTL, Logger: logger}
	agents, err := cache.New[types.AgentSummary](opts)
	if err != nil {
		return nil, fmt.Errorf("agents cache: %w", err)
	}
	versions, err := cache.New[types.AgentVersion](opts)
	if err != nil {
		return nil, fmt.Errorf("versions cache: %w", err)
	}
	aliases, err := cache.New[types.AgentAlias](opts)
	if err != nil {
		return nil, fmt.Errorf("aliases cache: %w", err)
	}

	defaultLimit := cfg.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 50
	}

	itemTTL := cfg.ItemTTL
	if itemTTL == 0 {
		itemTTL = cfg.CacheTTL
	}

	return &Directory{
		client:       cfg.Client,
		agents:       agents,
		versions:     versions,
		aliases:      aliases,
		items:        cfg.Items,
		itemTTL:      itemTTL,
		agentKeys:    newKeyset(),
		versionKeys:  newKeyset(),
		aliasKeys:    newKeyset(),
		defaultLimit: defaultLimit,
		logger:       logger,
	}, nil
}

// rootParent scopes top-level agent list keys in the keysets.
const rootParent = "root"

// cacheKey builds the canonical cache key for one logical query. Keys must
// be unique per distinct query parameters; limit is part of the key because
// it changes the result set.
func cacheKey(kind, parentID, collection string, limit int) string {
	return fmt.Sprintf("%s_%s_%s_%d", kind, parentID, collection, limit)
}

// ListAgents returns one page of agents. Only first pages are served from
// the cache; a request carrying a cursor always goes to the control plane.
func (d *Directory) ListAgents(ctx context.Context, limit int, cursor string) (pagination.Page[types.AgentSummary], error) {
	if limit <= 0 {
		limit = d.defaultLimit
	}
	if cursor != "" {
		return d.client.ListAgents(ctx, limit, cursor)
	}

	key := cacheKey("agents", rootParent, "list", limit)
	d.agentKeys.add(rootParent, key)
	return d.agents.GetPage(ctx, key, func(fctx context.Context) (pagination.Page[types.AgentSummary], error) {
		return d.client.ListAgents(fctx, limit, "")
	})
}

// AllAgents returns the complete agent list, draining upstream pagination
// on a miss and caching the full snapshot.
func (d *Directory) AllAgents(ctx context.Context) ([]types.AgentSummary, error) {
	key := cacheKey("agents", rootParent, "all", 0)
	d.agentKeys.add(rootParent, key)
	return d.agents.GetList(ctx, key, func(fctx context.Context) ([]types.AgentSummary, error) {
		var all []types.AgentSummary
		cursor := ""
		for {
			page, err := d.client.ListAgents(fctx, catalog.MaxPageSize, cursor)
			if err != nil {
				return nil, err
			}
			all = append(all, page.Items...)
			if page.Cursor == "" {
				return all, nil
			}
			cursor = page.Cursor
		}
	})
}

// ListVersions returns one page of an agent's versions.
func (d *Directory) ListVersions(ctx context.Context, agentID string, limit int, cursor string) (pagination.Page[types.AgentVersion], error) {
	if limit <= 0 {
		limit = d.defaultLimit
	}
	if cursor != "" {
		return d.client.ListAgentVersions(ctx, agentID, limit, cursor)
	}

	key := cacheKey("agent", agentID, "versions", limit)
	d.versionKeys.add(agentID, key)
	return d.versions.GetPage(ctx, key, func(fctx context.Context) (pagination.Page[types.AgentVersion], error) {
		return d.client.ListAgentVersions(fctx, agentID, limit, "")
	})
}

// ListAliases returns one page of an agent's aliases.
func (d *Directory) ListAliases(ctx context.Context, agentID string, limit int, cursor string) (pagination.Page[types.AgentAlias], error) {
	if limit <= 0 {
		limit = d.defaultLimit
	}
	if cursor != "" {
		return d.client.ListAgentAliases(ctx, agentID, limit, cursor)
	}

	key := cacheKey("agent", agentID, "aliases", limit)
	d.aliasKeys.add(agentID, key)
	return d.aliases.GetPage(ctx, key, func(fctx context.Context) (pagination.Page[types.AgentAlias], error) {
		return d.client.ListAgentAliases(fctx, agentID, limit, "")
	})
}

// GetAgent returns a single agent, memoized in the item cache.
func (d *Directory) GetAgent(ctx context.Context, id string) (*types.Agent, error) {
	itemKey := "agent:" + id
	if d.items != nil {
		if cached, ok := d.items.Get(itemKey); ok {
			if agent, ok := cached.(*types.Agent); ok {
				return agent, nil
			}
		}
	}

	agent, err := d.client.GetAgent(ctx, id)
	if err != nil {
		return nil, err
	}

	if d.items != nil {
		d.items.Set(itemKey, agent, d.itemTTL)
	}
	return agent, nil
}

// CreateAgent creates an agent and invalidates the agent lists so the next
// read sees it.
func (d *Directory) CreateAgent(ctx context.Context, req types.CreateAgentRequest) (*types.Agent, error) {
	agent, err := d.client.CreateAgent(ctx, req)
	if err != nil {
		return nil, err
	}
	d.invalidateAgentLists()
	return agent, nil
}

// UpdateAgent applies a partial update and invalidates the agent's cached
// record and the agent lists.
func (d *Directory) UpdateAgent(ctx context.Context, id string, req types.UpdateAgentRequest) (*types.Agent, error) {
	agent, err := d.client.UpdateAgent(ctx, id, req)
	if err != nil {
		return nil, err
	}
	d.InvalidateAgent(id)
	return agent, nil
}

// DeleteAgent deletes an agent and invalidates everything cached under it.
func (d *Directory) DeleteAgent(ctx context.Context, id string) error {
	err := d.client.DeleteAgent(ctx, id)
	if err != nil {
		return err
	}
	d.InvalidateAgent(id)
	return nil
}

// InvalidateAgent drops the cached record, sub-collections, and list keys
// for one agent. Safe to call for agents that were never cached.
func (d *Directory) InvalidateAgent(id string) {
	if d.items != nil {
		d.items.Delete("agent:" + id)
	}
	for _, key := range d.versionKeys.take(id) {
		d.versions.Invalidate(key)
	}
	for _, key := range d.aliasKeys.take(id) {
		d.aliases.Invalidate(key)
	}
	d.invalidateAgentLists()

	d.logger.Debug("directory-invalidate-agent", zap.String("agent-id", id))
}

// invalidateAgentLists drops every cached top-level agent list and page.
func (d *Directory) invalidateAgentLists() {
	for _, key := range d.agentKeys.take(rootParent) {
		d.agents.Invalidate(key)
	}
}

package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mperativ/agentdir/internal/catalog"
	"github.com/mperativ/agentdir/internal/directory"
	"github.com/mperativ/agentdir/internal/watch"
	"github.com/mperativ/agentdir/pkg/config"
	"github.com/mperativ/agentdir/pkg/healthprobe"
	"github.com/mperativ/agentdir/pkg/httpserver"
	"github.com/mperativ/agentdir/pkg/itemcache"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	client := setupCatalogClient(cfg, logger)

	items, err := setupItemCache(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup item cache: %w", err)
	}

	dir, err := setupDirectory(cfg, logger, client, items)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup directory: %w", err)
	}

	watcher, err := setupWatcher(cfg, logger, dir)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup watcher: %w", err)
	}

	httpServer := setupHTTPServer(cfg, logger, healthChecker, dir)

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		client:        client,
		items:         items,
		directory:     dir,
		watcher:       watcher,
		warmOnStart:   opts.WarmOnStart,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupCatalogClient(cfg *config.Config, logger *zap.Logger) *catalog.Client {
	return catalog.NewClient(&catalog.ClientConfig{
		BaseURL:           cfg.CatalogBaseURL,
		Timeout:           cfg.CatalogTimeout,
		RequestsPerSecond: cfg.CatalogRPS,
		Burst:             cfg.CatalogBurst,
		Logger:            logger,
	})
}

func setupItemCache(cfg *config.Config, logger *zap.Logger) (itemcache.Cache, error) {
	return itemcache.NewRistrettoCache(&itemcache.RistrettoConfig{
		NumCounters: cfg.ItemCacheSize * 10,
		MaxItems:    cfg.ItemCacheSize,
		BufferItems: 64,
		Logger:      logger,
	})
}

func setupDirectory(cfg *config.Config, logger *zap.Logger, client *catalog.Client, items itemcache.Cache) (*directory.Directory, error) {
	return directory.New(&directory.Config{
		Client:        client,
		CacheCapacity: cfg.CacheCapacity,
		CacheTTL:      cfg.CacheTTL,
		Items:         items,
		ItemTTL:       cfg.ItemCacheTTL,
		DefaultLimit:  cfg.ListLimit,
		Logger:        logger,
	})
}

func setupWatcher(cfg *config.Config, logger *zap.Logger, dir *directory.Directory) (*watch.Watcher, error) {
	if cfg.CatalogEventsURL == "" {
		logger.Info("watcher-disabled",
			zap.String("reason", "no events url configured, caches expire by ttl only"))
		return nil, nil
	}

	return watch.New(&watch.Config{
		URL:                   cfg.CatalogEventsURL,
		Invalidator:           dir,
		DialTimeout:           cfg.WatchDialTimeout,
		ReconnectInitialDelay: cfg.WatchReconnectInitial,
		ReconnectMaxDelay:     cfg.WatchReconnectMax,
		ReconnectBackoffMult:  cfg.WatchReconnectMult,
		Logger:                logger,
	})
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	dir *directory.Directory,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Directory:     dir,
	})
}

// warm primes the agents list cache so the first caller does not pay the
// upstream round trip.
func (a *App) warm(ctx context.Context) error {
	_, err := a.directory.ListAgents(ctx, a.cfg.ListLimit, "")
	if err != nil {
		return fmt.Errorf("warm agents list: %w", err)
	}
	return nil
}

package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mperativ/agentdir/internal/catalog"
	"github.com/mperativ/agentdir/internal/directory"
	"github.com/mperativ/agentdir/internal/watch"
	"github.com/mperativ/agentdir/pkg/config"
	"github.com/mperativ/agentdir/pkg/healthprobe"
	"github.com/mperativ/agentdir/pkg/httpserver"
	"github.com/mperativ/agentdir/pkg/itemcache"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	client        *catalog.Client
	items         itemcache.Cache
	directory     *directory.Directory
	watcher       *watch.Watcher // nil when no events URL is configured
	warmOnStart   bool
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options holds application options.
type Options struct {
	WarmOnStart bool // Fetch the first agents page before marking ready
}

package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("catalog-url", a.cfg.CatalogBaseURL),
		zap.Int("cache-capacity", a.cfg.CacheCapacity),
		zap.Duration("cache-ttl", a.cfg.CacheTTL),
		zap.String("log-level", a.cfg.LogLevel))

	err := a.startComponents()
	if err != nil {
		return err
	}

	if a.warmOnStart {
		warmCtx, warmCancel := context.WithTimeout(a.ctx, a.cfg.CatalogTimeout)
		err = a.warm(warmCtx)
		warmCancel()
		if err != nil {
			a.logger.Warn("initial-warm-failed", zap.Error(err))
		}
	}

	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.Bool("watch-enabled", a.watcher != nil))

	return a.waitForShutdown()
}

func (a *App) startComponents() error {
	a.wg.Add(1)
	go a.runHTTPServer()

	// Give HTTP server a moment to start
	time.Sleep(100 * time.Millisecond)

	if a.watcher != nil {
		a.wg.Add(1)
		go a.runWatcher()
	}

	if a.cfg.WarmInterval > 0 {
		a.wg.Add(1)
		go a.runWarmer()
	}

	return nil
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) runWatcher() {
	defer a.wg.Done()
	err := a.watcher.Run(a.ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("watcher-error", zap.Error(err))
	}
}

// runWarmer periodically refreshes the first agents page and reports
// watcher liveness to the health checker.
func (a *App) runWarmer() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.WarmInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			warmCtx, warmCancel := context.WithTimeout(a.ctx, a.cfg.CatalogTimeout)
			err := a.warm(warmCtx)
			warmCancel()
			if err != nil {
				a.logger.Warn("cache-warm-failed", zap.Error(err))
			}

			if a.watcher != nil {
				a.healthChecker.SetComponent("watch", a.watcher.Connected())
			}
		}
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}

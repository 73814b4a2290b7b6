// Package watch subscribes to the control plane's change-notification
// stream and invalidates directory cache entries when agents are mutated
// by other processes. Without it, out-of-process changes are visible only
// after the cache TTL elapses.
package watch

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event is one change notification from the control plane.
type Event struct {
	Kind    string `json:"kind"` // "agent-created", "agent-updated", "agent-deleted"
	AgentID string `json:"agentId"`
}

// Invalidator is the slice of the directory the watcher drives.
type Invalidator interface {
	InvalidateAgent(id string)
}

// Watcher maintains a websocket subscription to the event stream with
// exponential-backoff reconnection.
type Watcher struct {
	url         string
	invalidator Invalidator
	logger      *zap.Logger

	dialTimeout    time.Duration
	initialBackoff time.Duration
	maxBackoff     time.Duration
	backoffMult    float64

	connected atomic.Bool
}

// Config holds watcher configuration.
type Config struct {
	URL                   string
	Invalidator           Invalidator
	DialTimeout           time.Duration
	ReconnectInitialDelay time.Duration
	ReconnectMaxDelay     time.Duration
	ReconnectBackoffMult  float64
	Logger                *zap.Logger
}

// New creates a new Watcher.
func New(cfg *Config) (*Watcher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("watch: url cannot be empty")
	}
	if cfg.Invalidator == nil {
		return nil, fmt.Errorf("watch: invalidator cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Watcher{
		url:            cfg.URL,
		invalidator:    cfg.Invalidator,
		logger:         logger,
		dialTimeout:    cfg.DialTimeout,
		initialBackoff: cfg.ReconnectInitialDelay,
		maxBackoff:     cfg.ReconnectMaxDelay,
		backoffMult:    cfg.ReconnectBackoffMult,
	}
	if w.dialTimeout == 0 {
		w.dialTimeout = 10 * time.Second
	}
	if w.initialBackoff == 0 {
		w.initialBackoff = time.Second
	}
	if w.maxBackoff == 0 {
		w.maxBackoff = 30 * time.Second
	}
	if w.backoffMult < 1.0 {
		w.backoffMult = 2.0
	}
	return w, nil
}

// Connected reports whether the event stream is currently up.
func (w *Watcher) Connected() bool {
	return w.connected.Load()
}

// Run subscribes to the event stream and blocks until ctx is cancelled,
// reconnecting with exponential backoff after every disconnect.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watcher-starting", zap.String("url", w.url))

	backoff := w.initialBackoff
	for {
		err := w.consume(ctx)
		w.connected.Store(false)
		if ctx.Err() != nil {
			w.logger.Info("watcher-stopping")
			return ctx.Err()
		}

		w.logger.Warn("event-stream-disconnected",
			zap.Error(err),
			zap.Duration("backoff", backoff))
		ReconnectsTotal.Inc()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * w.backoffMult)
		if backoff > w.maxBackoff {
			backoff = w.maxBackoff
		}
	}
}

// consume holds one connection open and dispatches its events. It returns
// when the connection drops or ctx is cancelled.
func (w *Watcher) consume(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: w.dialTimeout}

	conn, _, err := dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	w.connected.Store(true)
	w.logger.Info("event-stream-connected")

	// Unblock ReadMessage when ctx is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}

		var event Event
		err = json.Unmarshal(raw, &event)
		if err != nil {
			EventErrorsTotal.Inc()
			w.logger.Warn("malformed-event", zap.Error(err))
			continue
		}

		w.dispatch(event)
	}
}

func (w *Watcher) dispatch(event Event) {
	EventsTotal.Inc()

	if event.AgentID == "" {
		EventErrorsTotal.Inc()
		w.logger.Warn("event-missing-agent-id", zap.String("kind", event.Kind))
		return
	}

	w.logger.Debug("change-event",
		zap.String("kind", event.Kind),
		zap.String("agent-id", event.AgentID))

	w.invalidator.InvalidateAgent(event.AgentID)
}

package watch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingInvalidator) InvalidateAgent(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

func (r *recordingInvalidator) invalidated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

// newEventServer serves one websocket connection per request, writing the
// given payloads and then holding the connection open.
func newEventServer(t *testing.T, payloads ...any) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for _, payload := range payloads {
			var raw []byte
			switch v := payload.(type) {
			case string:
				raw = []byte(v)
			default:
				raw, _ = json.Marshal(v)
			}
			if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		}

		// Hold the connection until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestWatcher_DispatchesInvalidations(t *testing.T) {
	srv := newEventServer(t,
		Event{Kind: "agent-updated", AgentID: "a-1"},
		Event{Kind: "agent-deleted", AgentID: "a-2"},
	)

	inv := &recordingInvalidator{}
	w, err := New(&Config{
		URL:         wsURL(srv),
		Invalidator: inv,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	waitFor(t, func() bool { return len(inv.invalidated()) == 2 }, "events not dispatched")

	ids := inv.invalidated()
	if ids[0] != "a-1" || ids[1] != "a-2" {
		t.Errorf("invalidated = %v", ids)
	}
}

func TestWatcher_SkipsMalformedEvents(t *testing.T) {
	srv := newEventServer(t,
		"{not json",
		Event{Kind: "agent-updated"}, // missing agent id
		Event{Kind: "agent-updated", AgentID: "a-3"},
	)

	inv := &recordingInvalidator{}
	w, err := New(&Config{URL: wsURL(srv), Invalidator: inv, Logger: zap.NewNop()})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	waitFor(t, func() bool { return len(inv.invalidated()) == 1 }, "valid event not dispatched")
	if ids := inv.invalidated(); ids[0] != "a-3" {
		t.Errorf("invalidated = %v", ids)
	}
}

func TestWatcher_ReconnectsAfterDrop(t *testing.T) {
	var mu sync.Mutex
	connections := 0
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		mu.Lock()
		connections++
		n := connections
		mu.Unlock()

		raw, _ := json.Marshal(Event{Kind: "agent-updated", AgentID: "conn"})
		_ = conn.WriteMessage(websocket.TextMessage, raw)

		if n == 1 {
			// Drop the first connection immediately after one event.
			conn.Close()
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	inv := &recordingInvalidator{}
	w, err := New(&Config{
		URL:                   wsURL(srv),
		Invalidator:           inv,
		ReconnectInitialDelay: 10 * time.Millisecond,
		ReconnectMaxDelay:     50 * time.Millisecond,
		ReconnectBackoffMult:  2.0,
		Logger:                zap.NewNop(),
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	waitFor(t, func() bool { return len(inv.invalidated()) >= 2 }, "watcher did not reconnect")

	mu.Lock()
	defer mu.Unlock()
	if connections < 2 {
		t.Errorf("connections = %d, want >= 2", connections)
	}
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	srv := newEventServer(t)

	w, err := New(&Config{URL: wsURL(srv), Invalidator: &recordingInvalidator{}, Logger: zap.NewNop()})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, w.Connected, "watcher never connected")
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

package itemcache

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mperativ/agentdir/pkg/types"
)

func TestRistrettoCache(t *testing.T) {
	cacheInterface, err := NewRistrettoCache(&RistrettoConfig{
		NumCounters: 1000,
		MaxItems:    100,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	defer cacheInterface.Close()

	// Cast to RistrettoCache for Wait
	cache := cacheInterface.(*RistrettoCache)

	t.Run("set-and-get", func(t *testing.T) {
		agent := &types.Agent{ID: "agent-1", Name: "router"}

		success := cache.Set("agent:agent-1", agent, time.Hour)
		if !success {
			t.Error("expected Set to succeed")
		}

		// Ristretto buffers writes
		cache.Wait()

		retrieved, found := cache.Get("agent:agent-1")
		if !found {
			t.Fatal("expected key to be found")
		}
		got, ok := retrieved.(*types.Agent)
		if !ok || got.ID != "agent-1" {
			t.Errorf("retrieved %#v, want agent-1", retrieved)
		}
	})

	t.Run("get-missing-key", func(t *testing.T) {
		_, found := cache.Get("nonexistent")
		if found {
			t.Error("expected key to not be found")
		}
	})

	t.Run("delete", func(t *testing.T) {
		cache.Set("agent:gone", &types.Agent{ID: "gone"}, time.Hour)
		cache.Wait()

		_, found := cache.Get("agent:gone")
		if !found {
			t.Error("expected key to exist before delete")
		}

		cache.Delete("agent:gone")

		_, found = cache.Get("agent:gone")
		if found {
			t.Error("expected key to be deleted")
		}
	})

	t.Run("ttl-expiration", func(t *testing.T) {
		cache.Set("agent:brief", &types.Agent{ID: "brief"}, 200*time.Millisecond)
		cache.Wait()

		_, found := cache.Get("agent:brief")
		if !found {
			t.Error("expected key to exist before TTL expires")
		}

		time.Sleep(300 * time.Millisecond)

		_, found = cache.Get("agent:brief")
		if found {
			t.Error("expected key to be expired after TTL")
		}
	})

	t.Run("clear", func(t *testing.T) {
		cache.Set("agent:c1", &types.Agent{ID: "c1"}, time.Hour)
		cache.Set("agent:c2", &types.Agent{ID: "c2"}, time.Hour)
		cache.Wait()

		_, found1 := cache.Get("agent:c1")
		_, found2 := cache.Get("agent:c2")
		if !found1 || !found2 {
			t.Skip("ristretto probabilistic admission - some keys not admitted")
		}

		cache.Clear()

		_, found1 = cache.Get("agent:c1")
		_, found2 = cache.Get("agent:c2")
		if found1 || found2 {
			t.Error("expected all keys to be cleared")
		}
	})
}

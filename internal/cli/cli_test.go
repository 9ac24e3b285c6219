package cli

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ghorbit/pkg/cache"
	"github.com/matzehuels/ghorbit/pkg/connections"
)

func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	c := New(io.Discard, log.WarnLevel)
	c.Config.Cache.Dir = t.TempDir()
	return c
}

func TestWeightsFollowConfig(t *testing.T) {
	c := newTestCLI(t)
	c.Config.Weights.Collaborator = 7
	c.Config.Weights.Follower = 1.5

	w := c.weights()
	if w[connections.KindCollaborator] != 7 {
		t.Errorf("collaborator weight = %v, want 7", w[connections.KindCollaborator])
	}
	if w[connections.KindFollower] != 1.5 {
		t.Errorf("follower weight = %v, want 1.5", w[connections.KindFollower])
	}
	if w[connections.KindFollows] != c.Config.Weights.Follows {
		t.Errorf("follows weight = %v, want %v", w[connections.KindFollows], c.Config.Weights.Follows)
	}
}

func TestNewCacheNoCacheFlag(t *testing.T) {
	c := newTestCLI(t)

	store, err := c.newCache(context.Background(), true)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("got %T, want *cache.NullCache", store)
	}
}

func TestNewCacheNoneBackend(t *testing.T) {
	c := newTestCLI(t)
	c.Config.Cache.Backend = "none"

	store, err := c.newCache(context.Background(), false)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("got %T, want *cache.NullCache", store)
	}
}

func TestNewCacheFileBackend(t *testing.T) {
	c := newTestCLI(t)
	c.Config.Cache.Backend = "file"

	store, err := c.newCache(context.Background(), false)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	if _, ok := store.(*cache.FileCache); !ok {
		t.Errorf("got %T, want *cache.FileCache", store)
	}
}

func TestNewCacheRedisUnavailableDegrades(t *testing.T) {
	c := newTestCLI(t)
	c.Config.Cache.Backend = "redis"
	c.Config.Cache.RedisAddr = "127.0.0.1:1" // nothing listens here

	store, err := c.newCache(context.Background(), false)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("got %T, want *cache.NullCache", store)
	}
}

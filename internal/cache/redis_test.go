package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis tests need a Redis 7.4+ or Valkey 8+ server and are skipped unless
// REDIS_ADDRESS is set. They use database 15 and flush it first.

const redisTestDB = 15

func newTestRedisCache(t *testing.T, size int, onEvict EvictCallback) Cache {
	t.Helper()
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("Skipping Redis tests: set REDIS_ADDRESS to enable")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: redisTestDB})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	err := client.FlushDB(ctx).Err()
	cancel()
	_ = client.Close()
	if err != nil {
		t.Fatalf("Failed to flush Redis test DB: %v", err)
	}

	c, err := New("redis", ProviderConfig{
		Size:         size,
		TTL:          10 * time.Second,
		RedisAddress: addr,
		RedisDB:      redisTestDB,
		OnEvict:      onEvict,
	})
	if err != nil {
		t.Fatalf("New redis cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t, 10, nil)

	if _, ok := c.Get(ctx, "listing"); ok {
		t.Fatal("Expected a miss on a clean database")
	}
	c.Set(ctx, "listing", []byte("<html/>"))

	val, ok := c.Get(ctx, "listing")
	if !ok || string(val) != "<html/>" {
		t.Fatalf("Expected stored page, got %q, %v", val, ok)
	}
	if !c.Contains(ctx, "listing") {
		t.Error("Expected Contains to report the stored page")
	}
	if c.Len(ctx) != 1 {
		t.Errorf("Expected Len 1, got %d", c.Len(ctx))
	}
}

func TestRedisCache_LeastRecentlyUsedIsDropped(t *testing.T) {
	ctx := context.Background()
	var evicted []string
	c := newTestRedisCache(t, 2, func(key string, _ []byte) { evicted = append(evicted, key) })

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))
	_, _ = c.Get(ctx, "a")
	c.Set(ctx, "c", []byte("3"))

	if c.Contains(ctx, "b") {
		t.Error("Expected 'b' to be dropped after 'a' was read")
	}
	if !c.Contains(ctx, "a") || !c.Contains(ctx, "c") {
		t.Error("Expected 'a' and 'c' to remain")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("Expected eviction callback for 'b', got %v", evicted)
	}
}

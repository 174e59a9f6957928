package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"plantation-manager/backend/internal/config"
)

func TestDefaultCacheConfig(t *testing.T) {
	cfg := DefaultCacheConfig()

	if cfg.Addr != "localhost:6379" {
		t.Errorf("Expected Addr to be localhost:6379, got %s", cfg.Addr)
	}

	if cfg.PoolSize != 10 {
		t.Errorf("Expected PoolSize to be 10, got %d", cfg.PoolSize)
	}

	if cfg.DialTimeout != 5*time.Second {
		t.Errorf("Expected DialTimeout to be 5s, got %v", cfg.DialTimeout)
	}

	if cfg.KeyPrefix != "plantation:" {
		t.Errorf("Expected KeyPrefix 'plantation:', got %s", cfg.KeyPrefix)
	}
}

func TestConfigFromRedis(t *testing.T) {
	cfg := ConfigFromRedis("redis:6380", config.RedisConfig{
		Password: "secret",
		DB:       2,
		PoolSize: 4,
	})

	if cfg.Addr != "redis:6380" || cfg.Password != "secret" || cfg.DB != 2 || cfg.PoolSize != 4 {
		t.Errorf("Unexpected cache config %+v", cfg)
	}
	if cfg.KeyPrefix != "plantation:" {
		t.Errorf("Expected default prefix to survive, got %s", cfg.KeyPrefix)
	}
}

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	cfg := DefaultCacheConfig()
	cfg.Addr = mr.Addr()
	cfg.MaxRetries = -1
	cfg.Breaker = &CircuitBreakerConfig{MaxFailures: 2, Timeout: time.Minute, HalfOpenMaxCalls: 1}

	cache := NewRedisCache(cfg)
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestRedisCache_SetAndGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	type testData struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	original := testData{Name: "test", Value: 42}
	if err := cache.Set(ctx, "test:key", original, time.Minute); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	if !mr.Exists("plantation:test:key") {
		t.Error("Expected key to be stored under the prefix")
	}

	var retrieved testData
	if err := cache.Get(ctx, "test:key", &retrieved); err != nil {
		t.Fatalf("Failed to get from cache: %v", err)
	}

	if retrieved != original {
		t.Errorf("Expected %+v, got %+v", original, retrieved)
	}

	snap := cache.Metrics().Snapshot()
	if snap.Hits != 1 || snap.Sets != 1 {
		t.Errorf("Expected 1 hit and 1 set, got %+v", snap)
	}
}

func TestRedisCache_Get_CacheMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	var result string
	for i := 0; i < 3; i++ {
		if err := cache.Get(context.Background(), "non-existent-key", &result); err != ErrCacheMiss {
			t.Errorf("Expected ErrCacheMiss, got %v", err)
		}
	}

	if cache.Breaker().GetState() != CircuitBreakerClosed {
		t.Error("Cache misses must not trip the breaker")
	}
	if cache.Metrics().Snapshot().Misses != 3 {
		t.Errorf("Expected 3 misses, got %d", cache.Metrics().Snapshot().Misses)
	}
}

func TestRedisCache_Set_InvalidData(t *testing.T) {
	cache, _ := setupTestRedis(t)

	if err := cache.Set(context.Background(), "test:key", make(chan int), time.Minute); err == nil {
		t.Error("Expected error when setting unmarshalable data")
	}
}

func TestRedisCache_Get_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Set("plantation:test:invalid", "invalid-json")

	var result map[string]interface{}
	if err := cache.Get(context.Background(), "test:invalid", &result); err == nil {
		t.Error("Expected error when getting invalid JSON")
	}
}

func TestRedisCache_Delete(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "test:delete", "test-data", time.Minute); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	if err := cache.Delete(ctx, "test:delete"); err != nil {
		t.Fatalf("Failed to delete from cache: %v", err)
	}

	var retrieved string
	if err := cache.Get(ctx, "test:delete", &retrieved); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestRedisCache_DeletePattern(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	for _, k := range []string{"templates:all", "templates:variety:V1", "other:key"} {
		if err := cache.Set(ctx, k, "v", time.Minute); err != nil {
			t.Fatalf("Failed to set %s: %v", k, err)
		}
	}

	if err := cache.DeletePattern(ctx, "templates:*"); err != nil {
		t.Fatalf("Failed to delete pattern: %v", err)
	}

	if mr.Exists("plantation:templates:all") || mr.Exists("plantation:templates:variety:V1") {
		t.Error("Expected template keys to be deleted")
	}
	if !mr.Exists("plantation:other:key") {
		t.Error("Expected unrelated key to survive")
	}
}

func TestRedisCache_BreakerOpensWhenRedisIsDown(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	mr.Close()

	var out string
	for i := 0; i < 2; i++ {
		err := cache.Get(ctx, "k", &out)
		if err == nil || errors.Is(err, ErrCacheMiss) {
			t.Fatalf("Expected a connection error, got %v", err)
		}
	}

	if cache.Breaker().GetState() != CircuitBreakerOpen {
		t.Fatalf("Expected breaker to open, got %v", cache.Breaker().GetState())
	}

	if err := cache.Get(ctx, "k", &out); !errors.Is(err, ErrCacheDown) {
		t.Errorf("Expected ErrCacheDown while open, got %v", err)
	}
	if cache.Metrics().Snapshot().Errors < 3 {
		t.Errorf("Expected errors to be counted, got %+v", cache.Metrics().Snapshot())
	}
}

func TestRedisCache_Health(t *testing.T) {
	cache, mr := setupTestRedis(t)

	if err := cache.Health(context.Background()); err != nil {
		t.Errorf("Expected healthy cache, got %v", err)
	}

	mr.Close()
	if err := cache.Health(context.Background()); err == nil {
		t.Error("Expected health check to fail after Redis stops")
	}
}

func TestRedisCache_Stats(t *testing.T) {
	cache, _ := setupTestRedis(t)

	stats := cache.Stats()
	for _, key := range []string{"hits", "misses", "hit_rate", "breaker", "pool_total"} {
		if _, ok := stats[key]; !ok {
			t.Errorf("Expected stats key %s", key)
		}
	}
}

func TestCacheMetrics_HitRate(t *testing.T) {
	m := NewCacheMetrics()
	if m.HitRate() != 0 {
		t.Errorf("Expected 0 hit rate with no traffic, got %f", m.HitRate())
	}

	m.RecordHit()
	m.RecordHit()
	m.RecordHit()
	m.RecordMiss()
	if m.HitRate() != 75.0 {
		t.Errorf("Expected 75%% hit rate, got %f", m.HitRate())
	}

	m.Reset()
	if m.Snapshot().Hits != 0 {
		t.Error("Expected Reset to clear counters")
	}
}

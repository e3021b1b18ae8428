// AngelaMos | 2026
// viewcache_integration_test.go

package core

import (
	"context"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manufacto/booking/internal/config"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("integration test skipped with -short")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) }) //nolint:errcheck // best-effort
	_ = resource.Expire(120)                     //nolint:errcheck // safety net

	client := redis.NewClient(&redis.Options{Addr: resource.GetHostPort("6379/tcp")})
	pool.MaxWait = time.Minute
	require.NoError(t, pool.Retry(func() error {
		return client.Ping(context.Background()).Err()
	}))
	t.Cleanup(func() { _ = client.Close() }) //nolint:errcheck // test teardown

	return client
}

func newTestViewCache(t *testing.T) (*ViewCache, *redis.Client) {
	t.Helper()
	client := startRedis(t)
	c := NewViewCache(client, config.CacheConfig{
		Enabled: true,
		Prefix:  "test",
		ViewTTL: time.Minute,
	})
	require.NotNil(t, c)
	return c, client
}

func TestViewCacheServesStoredView(t *testing.T) {
	c, _ := newTestViewCache(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	for range 3 {
		v, err := CachedView(ctx, c, ViewAdmin, load)
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	}

	c.Revalidate(ctx, ViewAdmin)

	v, err := CachedView(ctx, c, ViewAdmin, load)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestViewCacheDropsLoadOverlappingRevalidation(t *testing.T) {
	c, client := newTestViewCache(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		path        string
		revalidated string
	}{
		{"same path", ViewAccount("u1"), ViewAccount("u1")},
		{"ancestor", ViewCatalog("a1") + "/sessions", ViewCatalog("a1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := CachedView(ctx, c, tt.path, func(ctx context.Context) (string, error) {
				c.Revalidate(ctx, tt.revalidated)
				return "stale", nil
			})
			require.NoError(t, err)
			assert.Equal(t, "stale", v)

			n, err := client.Exists(ctx, c.viewKey(tt.path)).Result()
			require.NoError(t, err)
			assert.Zero(t, n)

			v, err = CachedView(ctx, c, tt.path, func(context.Context) (string, error) {
				return "fresh", nil
			})
			require.NoError(t, err)
			assert.Equal(t, "fresh", v)

			n, err = client.Exists(ctx, c.viewKey(tt.path)).Result()
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
		})
	}
}

func TestViewCacheHonoursFreshness(t *testing.T) {
	c, client := newTestViewCache(t)
	ctx := context.Background()

	_, err := CachedViewFor(ctx, c, "/skipped", func(context.Context) (int, Freshness, error) {
		return 1, Freshness{Skip: true}, nil
	})
	require.NoError(t, err)
	n, err := client.Exists(ctx, c.viewKey("/skipped")).Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = CachedViewFor(ctx, c, "/bounded", func(context.Context) (int, Freshness, error) {
		return 1, Freshness{Until: time.Now().Add(5 * time.Second)}, nil
	})
	require.NoError(t, err)
	ttl, err := client.PTTL(ctx, c.viewKey("/bounded")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 5*time.Second)
}

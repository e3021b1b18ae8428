// AngelaMos | 2026
// viewcache.go

package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/manufacto/booking/internal/config"
)

// View paths. A mutation revalidates the paths whose rendering it changes;
// revalidating a path also drops every view below it.
const (
	ViewAdmin      = "/admin"
	ViewActivities = "/activities"
)

func ViewCatalog(activityID string) string {
	return ViewActivities + "/" + activityID
}

func ViewAccount(userID string) string {
	return "/account/" + userID
}

// versionRetention outlives any load in flight, so a bumped version is
// still there when a stale loader tries to store.
const versionRetention = 24 * time.Hour

// storeIfCurrent sets KEYS[1] only while every version key KEYS[2..]
// still holds the value read before the view was loaded.
var storeIfCurrent = redis.NewScript(`
for i = 2, #KEYS do
	local current = redis.call('GET', KEYS[i]) or ''
	if current ~= ARGV[i + 1] then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return 1
`)

// Freshness is what a loader knows about the lifetime of the view it
// built.
type Freshness struct {
	// Until is when the view goes stale with no write at all, such as the
	// start of the first listed session. Zero means only writes change it.
	Until time.Time
	// Skip serves the view without storing it.
	Skip bool
}

// ViewCache is a read-through JSON cache of rendered views. A nil
// *ViewCache is valid and caches nothing.
//
// Each path has a version counter that Revalidate bumps. A loader records
// the versions of its path and of every ancestor before reading the store,
// and its result is only written back if none of them moved meanwhile.
type ViewCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

func NewViewCache(client redis.UniversalClient, cfg config.CacheConfig) *ViewCache {
	if !cfg.Enabled || client == nil {
		return nil
	}

	return &ViewCache{
		client: client,
		prefix: cfg.Prefix + ":",
		ttl:    cfg.ViewTTL,
		now:    time.Now,
	}
}

func (c *ViewCache) viewKey(path string) string {
	return c.prefix + "view:" + path
}

func (c *ViewCache) versionKey(path string) string {
	return c.prefix + "ver:" + path
}

// lineage lists the ancestors of path and path itself, outermost first:
// "/activities/a1/sessions" gives "/activities", "/activities/a1" and the
// path.
func lineage(path string) []string {
	var paths []string
	for i := 1; i < len(path); i++ {
		if path[i] == '/' {
			paths = append(paths, path[:i])
		}
	}
	return append(paths, path)
}

// CachedView returns the cached value for path, or calls fn and caches the
// result. Cache failures never fail the read.
func CachedView[T any](
	ctx context.Context,
	c *ViewCache,
	path string,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	return CachedViewFor(ctx, c, path, func(ctx context.Context) (T, Freshness, error) {
		v, err := fn(ctx)
		return v, Freshness{}, err
	})
}

// CachedViewFor is CachedView for loaders that bound the lifetime of what
// they return.
func CachedViewFor[T any](
	ctx context.Context,
	c *ViewCache,
	path string,
	fn func(ctx context.Context) (T, Freshness, error),
) (T, error) {
	if c == nil {
		v, _, err := fn(ctx)
		return v, err
	}

	var cached T
	data, err := c.client.Get(ctx, c.viewKey(path)).Bytes()
	switch {
	case err == nil:
		if json.Unmarshal(data, &cached) == nil {
			return cached, nil
		}
	case !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "view cache read failed", "path", path, "error", err)
	}

	versionKeys, versions, verErr := c.versions(ctx, path)

	result, fresh, err := fn(ctx)
	if err != nil {
		return result, err
	}

	if verErr != nil {
		slog.WarnContext(ctx, "view cache version read failed", "path", path, "error", verErr)
		return result, nil
	}

	c.store(ctx, path, result, fresh, versionKeys, versions)
	return result, nil
}

func (c *ViewCache) versions(ctx context.Context, path string) ([]string, []any, error) {
	paths := lineage(path)
	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = c.versionKey(p)
	}

	raw, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("read versions: %w", err)
	}

	versions := make([]any, len(raw))
	for i, v := range raw {
		s, _ := v.(string)
		versions[i] = s
	}
	return keys, versions, nil
}

func (c *ViewCache) store(
	ctx context.Context,
	path string,
	value any,
	fresh Freshness,
	versionKeys []string,
	versions []any,
) {
	ttl := c.entryTTL(fresh)
	if ttl <= 0 {
		return
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return
	}

	keys := append([]string{c.viewKey(path)}, versionKeys...)
	args := append([]any{encoded, ttl.Milliseconds()}, versions...)

	if err := storeIfCurrent.Run(ctx, c.client, keys, args...).Err(); err != nil {
		slog.WarnContext(ctx, "view cache write failed", "path", path, "error", err)
	}
}

// entryTTL is the configured TTL, cut short by fresh.Until. Zero means the
// view is not stored.
func (c *ViewCache) entryTTL(fresh Freshness) time.Duration {
	if fresh.Skip {
		return 0
	}

	ttl := c.ttl
	if !fresh.Until.IsZero() {
		if left := fresh.Until.Sub(c.now()); left < ttl {
			ttl = left
		}
	}

	if ttl < time.Millisecond {
		return 0
	}
	return ttl
}

// Revalidate drops the cached views at and below each path, and makes any
// load of them already in flight discard its result.
func (c *ViewCache) Revalidate(ctx context.Context, paths ...string) {
	if c == nil {
		return
	}

	for _, path := range paths {
		if err := c.revalidate(ctx, path); err != nil {
			slog.WarnContext(ctx, "view cache revalidation failed", "path", path, "error", err)
		}
	}
}

func (c *ViewCache) revalidate(ctx context.Context, path string) error {
	verKey := c.versionKey(path)

	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, verKey)
	pipe.Expire(ctx, verKey, versionRetention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("bump %s: %w", path, err)
	}

	key := c.viewKey(path)
	keys := []string{key}

	iter := c.client.Scan(ctx, 0, key+"/*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}

	return nil
}

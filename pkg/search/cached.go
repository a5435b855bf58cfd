package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ai-search-be/internal/pkg/logger"
	"ai-search-be/pkg/cache"
	"ai-search-be/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

const cachedModule = "SEARCH_CACHE"

// CachedBackend wraps a Backend with a TTL cache. Identical concurrent
// lookups share one upstream call. Empty responses are never stored, so a
// failed call is retried next time.
type CachedBackend struct {
	inner  Backend
	store  cache.Store
	ttl    time.Duration
	group  singleflight.Group
	logger logger.ILogger
}

func NewCachedBackend(inner Backend, store cache.Store, ttl time.Duration, log logger.ILogger) *CachedBackend {
	return &CachedBackend{inner: inner, store: store, ttl: ttl, logger: log}
}

func (c *CachedBackend) Name() string { return c.inner.Name() }

// AcceptsTuning forwards the wrapped backend's capability.
func (c *CachedBackend) AcceptsTuning() bool { return acceptsTuning(c.inner) }

func (c *CachedBackend) Search(ctx context.Context, query string, opts Options) Response {
	key := cacheKey(c.inner.Name(), query, opts)

	var cached Response
	found, err := c.store.Get(ctx, key, &cached)
	if err != nil {
		c.logger.Warn(cachedModule, "Cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	if found {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		res := c.inner.Search(ctx, query, opts)
		if len(res.Results) > 0 {
			if err := c.store.Set(ctx, key, res, c.ttl); err != nil {
				c.logger.Warn(cachedModule, "Cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
			}
		}
		return res, nil
	})
	return v.(Response)
}

func cacheKey(backend, query string, opts Options) string {
	tuning := ""
	if opts.Tuning != nil {
		tuning = fmt.Sprintf("%d/%s", opts.Tuning.ResultCount, opts.Tuning.Depth)
	}
	return cache.Key("search",
		backend,
		strings.ToLower(strings.TrimSpace(query)),
		strings.Join(opts.Engines, ","),
		opts.Language,
		strconv.Itoa(opts.PageNo),
		strconv.FormatBool(opts.IncludeImages),
		strconv.Itoa(opts.MaxResults),
		tuning,
	)
}

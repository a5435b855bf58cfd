package search

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"ai-search-be/internal/pkg/logger"
	"ai-search-be/pkg/cache"

	"golang.org/x/sync/errgroup"
)

const (
	discoverModule   = "DISCOVER"
	discoverCacheKey = "discover:feed"
	discoverEngine   = "bing news"
)

// LocaleGroup is one section of the discovery feed.
type LocaleGroup struct {
	Key      string
	Language string
	Sites    []string
	Topics   []string
}

var DefaultLocaleGroups = []LocaleGroup{
	{
		Key:      "indonesian",
		Language: "id",
		Sites:    []string{"detik.com", "kompas.com", "tribunnews.com", "liputan6.com", "tempo.co"},
		Topics:   []string{"kecerdasan buatan", "teknologi"},
	},
	{
		Key:      "international",
		Language: "en",
		Sites:    []string{"yahoo.com", "www.exchangewire.com", "businessinsider.com", "theverge.com", "cnet.com"},
		Topics:   []string{"AI", "tech"},
	},
}

// Feed maps a locale group key to its shuffled results.
type Feed map[string][]Result

// Discoverer builds the news feed from site × topic queries on one backend.
type Discoverer struct {
	backend Backend
	groups  []LocaleGroup
	store   cache.Store
	ttl     time.Duration
	logger  logger.ILogger
	shuffle func(n int, swap func(i, j int))
}

func NewDiscoverer(backend Backend, store cache.Store, ttl time.Duration, log logger.ILogger) *Discoverer {
	return &Discoverer{
		backend: backend,
		groups:  DefaultLocaleGroups,
		store:   store,
		ttl:     ttl,
		logger:  log,
		shuffle: rand.Shuffle,
	}
}

func (d *Discoverer) Discover(ctx context.Context) (Feed, error) {
	ctx, span := tracer.Start(ctx, "search.Discover")
	defer span.End()

	if d.store != nil {
		var cached Feed
		found, err := d.store.Get(ctx, discoverCacheKey, &cached)
		if err != nil {
			d.logger.Warn(discoverModule, "Cache read failed", map[string]interface{}{"error": err.Error()})
		}
		if found {
			return cached, nil
		}
	}

	feed := make(Feed, len(d.groups))
	for _, group := range d.groups {
		results, err := d.discoverGroup(ctx, group)
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", group.Key, err)
		}
		feed[group.Key] = results
	}

	if d.store != nil {
		if err := d.store.Set(ctx, discoverCacheKey, feed, d.ttl); err != nil {
			d.logger.Warn(discoverModule, "Cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return feed, nil
}

// discoverGroup issues one query per (site, topic) pair, flattens the
// responses in pair order and shuffles the flattened list.
func (d *Discoverer) discoverGroup(ctx context.Context, group LocaleGroup) ([]Result, error) {
	type pair struct{ site, topic string }
	pairs := make([]pair, 0, len(group.Sites)*len(group.Topics))
	for _, site := range group.Sites {
		for _, topic := range group.Topics {
			pairs = append(pairs, pair{site, topic})
		}
	}

	responses := make([]Response, len(pairs))
	var g errgroup.Group
	for i, p := range pairs {
		g.Go(func() error {
			responses[i] = d.backend.Search(ctx, fmt.Sprintf("site:%s %s", p.site, p.topic), Options{
				Engines:  []string{discoverEngine},
				Language: group.Language,
				PageNo:   1,
			})
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]Result, 0)
	for _, res := range responses {
		results = append(results, res.Results...)
	}
	d.shuffle(len(results), func(i, j int) { results[i], results[j] = results[j], results[i] })

	d.logger.Debug(discoverModule, "Group discovered", map[string]interface{}{
		"group":   group.Key,
		"queries": len(pairs),
		"results": len(results),
	})
	return results, nil
}

package search

import (
	"context"

	"ai-search-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	mergerModule = "SEARCH_MERGER"

	// MaxMergedResults caps every merged list, document or image.
	MaxMergedResults = 10
)

// MergeMode selects which backends a retrieval fans out to.
type MergeMode string

const (
	MergeSingle   MergeMode = "single"   // primary only
	MergeAlt      MergeMode = "alt"      // alternate only
	MergeCombined MergeMode = "combined" // both, primary first
)

var imageEngines = []string{"bing images", "google images"}

var tracer = otel.Tracer("ai-search-be/search")

// Merger fans a query out to one or both backends and merges the results.
type Merger struct {
	primary Backend
	alt     Backend
	logger  logger.ILogger
}

func NewMerger(primary, alt Backend, log logger.ILogger) *Merger {
	return &Merger{primary: primary, alt: alt, logger: log}
}

func (m *Merger) backends(mode MergeMode) []Backend {
	switch mode {
	case MergeAlt:
		return []Backend{m.alt}
	case MergeCombined:
		return []Backend{m.primary, m.alt}
	default:
		return []Backend{m.primary}
	}
}

// Retrieve returns at most MaxMergedResults deduplicated results, in backend
// order. A failed backend contributes nothing.
func (m *Merger) Retrieve(ctx context.Context, query string, mode MergeMode, opts Options) []Result {
	ctx, span := tracer.Start(ctx, "search.Retrieve")
	defer span.End()
	span.SetAttributes(attribute.String("search.mode", string(mode)))

	responses := m.fanOut(ctx, query, mode, opts)
	merged := MergeResults(MaxMergedResults, responses...)

	span.SetAttributes(attribute.Int("search.results", len(merged)))
	m.logger.Debug(mergerModule, "Retrieval merged", map[string]interface{}{
		"mode":    mode,
		"query":   query,
		"results": len(merged),
	})
	return merged
}

// RetrieveImages searches image engines (or image inclusion, for backends
// that support it) and keeps results carrying an image, a URL and a title.
func (m *Merger) RetrieveImages(ctx context.Context, query string, mode MergeMode) []Result {
	ctx, span := tracer.Start(ctx, "search.RetrieveImages")
	defer span.End()

	opts := Options{
		Engines:       imageEngines,
		IncludeImages: true,
		MaxResults:    15,
	}
	responses := m.fanOut(ctx, query, mode, opts)

	images := make([]Response, len(responses))
	for i, res := range responses {
		kept := EmptyResponse()
		for _, r := range res.Results {
			if r.ImageURL != "" && r.URL != "" && r.Title != "" {
				kept.Results = append(kept.Results, r)
			}
		}
		images[i] = kept
	}

	merged := MergeResults(MaxMergedResults, images...)
	span.SetAttributes(attribute.Int("search.images", len(merged)))
	return merged
}

// fanOut calls every backend concurrently and waits for all of them.
// Responses are indexed in backend order.
func (m *Merger) fanOut(ctx context.Context, query string, mode MergeMode, opts Options) []Response {
	backends := m.backends(mode)
	responses := make([]Response, len(backends))

	var g errgroup.Group
	for i, b := range backends {
		if b == nil {
			responses[i] = EmptyResponse()
			continue
		}
		bo := opts
		bo.Tuning = nil
		if acceptsTuning(b) {
			params := Tune(query)
			bo.Tuning = &params
		}
		g.Go(func() error {
			responses[i] = b.Search(ctx, query, bo)
			return nil
		})
	}
	_ = g.Wait()

	return responses
}

// MergeResults concatenates responses in order, keeping the first result
// seen for each normalized URL, and truncates to limit.
func MergeResults(limit int, responses ...Response) []Result {
	seen := make(map[string]struct{})
	merged := make([]Result, 0, limit)

	for _, res := range responses {
		for _, r := range res.Results {
			key := NormalizeURL(r.URL)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, r)
			if len(merged) == limit {
				return merged
			}
		}
	}
	return merged
}

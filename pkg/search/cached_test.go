package search

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ai-search-be/internal/pkg/logger"
	"ai-search-be/pkg/cache"

	"github.com/stretchr/testify/assert"
)

type countingBackend struct {
	calls   atomic.Int32
	results []Result
	delay   time.Duration
}

func (c *countingBackend) Name() string { return "counting" }

func (c *countingBackend) Search(_ context.Context, _ string, _ Options) Response {
	c.calls.Add(1)
	time.Sleep(c.delay)
	if c.results == nil {
		return EmptyResponse()
	}
	return Response{Results: c.results, Suggestions: []string{}}
}

func TestCachedBackend_HitsCache(t *testing.T) {
	inner := &countingBackend{results: []Result{{URL: "https://a.example"}}}
	cb := NewCachedBackend(inner, cache.NewMemoryStore(time.Minute), time.Minute, logger.NewNopLogger())

	first := cb.Search(context.Background(), "Go", Options{})
	second := cb.Search(context.Background(), " go ", Options{})

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.calls.Load())

	cb.Search(context.Background(), "go", Options{PageNo: 2})
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedBackend_DoesNotCacheEmpty(t *testing.T) {
	inner := &countingBackend{}
	cb := NewCachedBackend(inner, cache.NewMemoryStore(time.Minute), time.Minute, logger.NewNopLogger())

	cb.Search(context.Background(), "go", Options{})
	cb.Search(context.Background(), "go", Options{})

	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedBackend_CollapsesConcurrentLookups(t *testing.T) {
	inner := &countingBackend{results: []Result{{URL: "https://a.example"}}, delay: 50 * time.Millisecond}
	cb := NewCachedBackend(inner, cache.NewMemoryStore(time.Minute), time.Minute, logger.NewNopLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := cb.Search(context.Background(), "go", Options{})
			assert.Len(t, res.Results, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestCachedBackend_ForwardsTuningCapability(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	assert.False(t, NewCachedBackend(&countingBackend{}, store, time.Minute, logger.NewNopLogger()).AcceptsTuning())
	assert.True(t, NewCachedBackend(NewTavily("k", logger.NewNopLogger()), store, time.Minute, logger.NewNopLogger()).AcceptsTuning())
}

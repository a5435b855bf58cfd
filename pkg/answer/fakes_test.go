package answer

import (
	"context"
	"errors"
	"strings"
	"sync"

	"ai-search-be/pkg/embedding"
	"ai-search-be/pkg/llm"
	"ai-search-be/pkg/search"
)

type fakeLLM struct {
	rephrased   string
	rephraseErr error
	tokens      []string
	streamErr   error

	mu       sync.Mutex
	prompts  []string
	streamed [][]llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	return f.Generate(ctx, history[len(history)-1].Content)
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.rephrased, f.rephraseErr
}

func (f *fakeLLM) ChatStream(_ context.Context, history []llm.Message, onToken llm.TokenHandler, _ ...llm.Option) error {
	f.mu.Lock()
	f.streamed = append(f.streamed, history)
	f.mu.Unlock()
	for _, t := range f.tokens {
		if err := onToken(t); err != nil {
			return err
		}
	}
	return f.streamErr
}

type fakeRetriever struct {
	results []search.Result

	mu      sync.Mutex
	queries []string
	modes   []search.MergeMode
	opts    []search.Options
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, mode search.MergeMode, opts search.Options) []search.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.modes = append(f.modes, mode)
	f.opts = append(f.opts, opts)
	return f.results
}

// keywordEmbedder maps text to a 2-d vector: texts mentioning "go" point
// along x, everything else along y.
type keywordEmbedder struct {
	fail bool
}

func (k keywordEmbedder) Generate(_ context.Context, text string, _ string) (*embedding.EmbeddingResponse, error) {
	if k.fail {
		return nil, errors.New("embedder down")
	}
	v := []float32{0, 1}
	if strings.Contains(strings.ToLower(text), "go") {
		v = []float32{1, 0}
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: v}}, nil
}

type fakeFileStore struct {
	chunks []FileChunk
	err    error
}

func (f fakeFileStore) SimilarChunks(_ context.Context, _ []string, _ []float32, limit int) ([]FileChunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.chunks) > limit {
		return f.chunks[:limit], nil
	}
	return f.chunks, nil
}

func collect(ch <-chan Event) []Event {
	var events []Event
	for e := range ch {
		events = append(events, e)
	}
	return events
}

func types(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

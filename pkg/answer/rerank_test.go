package answer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ai-search-be/internal/pkg/logger"
	"ai-search-be/pkg/search"

	"github.com/stretchr/testify/assert"
)

func webFocus() FocusConfig {
	cfg, _ := LookupFocus(string(FocusWebSearch))
	return cfg
}

func titles(docs []search.Result) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Title
	}
	return out
}

func TestReranker_Balanced(t *testing.T) {
	r := NewReranker(nil, logger.NewNopLogger())
	docs := []search.Result{
		{Title: "cooking", URL: "https://a", Content: "pasta recipes"},
		{Title: "go", URL: "https://b", Content: "go generics"},
		{Title: "empty", URL: "https://c"},
	}

	got := r.Rerank(context.Background(), rerankInput{
		Query:        "go",
		Docs:         docs,
		Focus:        webFocus(),
		Optimization: OptimizeBalanced,
		Embedder:     keywordEmbedder{},
	})

	assert.Equal(t, []string{"go"}, titles(got))
}

func TestReranker_ZeroThresholdKeepsAllSortedBySimilarity(t *testing.T) {
	r := NewReranker(nil, logger.NewNopLogger())
	focus, _ := LookupFocus(string(FocusAcademicSearch))

	got := r.Rerank(context.Background(), rerankInput{
		Query: "go",
		Docs: []search.Result{
			{Title: "cooking", URL: "https://a", Content: "pasta"},
			{Title: "go", URL: "https://b", Content: "go"},
		},
		Focus:        focus,
		Optimization: OptimizeQuality,
		Embedder:     keywordEmbedder{},
	})

	assert.Equal(t, []string{"go", "cooking"}, titles(got))
}

func TestReranker_SpeedKeepsOrderAndCaps(t *testing.T) {
	var docs []search.Result
	for i := 0; i < 20; i++ {
		docs = append(docs, search.Result{Title: fmt.Sprint(i), URL: fmt.Sprint("https://", i), Content: "x"})
	}
	r := NewReranker(nil, logger.NewNopLogger())

	got := r.Rerank(context.Background(), rerankInput{
		Query:        "go",
		Docs:         docs,
		Focus:        webFocus(),
		Optimization: OptimizeSpeed,
		Embedder:     keywordEmbedder{fail: true},
	})

	assert.Len(t, got, 15)
	assert.Equal(t, "0", got[0].Title)
}

func TestReranker_SpeedPutsAttachmentsFirst(t *testing.T) {
	files := fakeFileStore{chunks: []FileChunk{
		{FileID: "f1", FileName: "notes.pdf", Content: "go chunk", Score: 0.9},
		{FileID: "f1", FileName: "notes.pdf", Content: "unrelated", Score: 0.1},
	}}
	r := NewReranker(files, logger.NewNopLogger())

	got := r.Rerank(context.Background(), rerankInput{
		Query:        "go",
		Docs:         []search.Result{{Title: "web", URL: "https://w", Content: "c"}},
		FileIDs:      []string{"f1"},
		Focus:        webFocus(),
		Optimization: OptimizeSpeed,
		Embedder:     keywordEmbedder{},
	})

	assert.Equal(t, []string{"notes.pdf", "web"}, titles(got))
	assert.Equal(t, "file://f1#0", got[0].URL)
}

func TestReranker_SourcesHaveDistinctURLs(t *testing.T) {
	files := fakeFileStore{chunks: []FileChunk{
		{FileID: "f1", ChunkIndex: 0, FileName: "notes.pdf", Content: "go intro", Score: 0.9},
		{FileID: "f1", ChunkIndex: 3, FileName: "notes.pdf", Content: "go details", Score: 0.8},
	}}
	r := NewReranker(files, logger.NewNopLogger())

	for _, mode := range []OptimizationMode{OptimizeSpeed, OptimizeBalanced} {
		t.Run(string(mode), func(t *testing.T) {
			got := r.Rerank(context.Background(), rerankInput{
				Query: "go",
				Docs: []search.Result{
					{Title: "web", URL: "https://w", Content: "go"},
					{Title: "web again", URL: "https://W/", Content: "go"},
				},
				FileIDs:      []string{"f1"},
				Focus:        webFocus(),
				Optimization: mode,
				Embedder:     keywordEmbedder{},
			})

			seen := make(map[string]int)
			for _, d := range got {
				seen[search.NormalizeURL(d.URL)]++
			}
			for url, n := range seen {
				assert.Equal(t, 1, n, "duplicate source %s", url)
			}
			assert.Contains(t, seen, "file://f1#0")
			assert.Contains(t, seen, "file://f1#3")
		})
	}
}

func TestReranker_BalancedMergesAttachmentsBySimilarity(t *testing.T) {
	files := fakeFileStore{chunks: []FileChunk{
		{FileID: "f1", FileName: "half", Content: "half related", Score: 0.5},
	}}
	r := NewReranker(files, logger.NewNopLogger())

	got := r.Rerank(context.Background(), rerankInput{
		Query: "go",
		Docs: []search.Result{
			{Title: "exact", URL: "https://a", Content: "go"},
			{Title: "off", URL: "https://b", Content: "pasta"},
		},
		FileIDs:      []string{"f1"},
		Focus:        webFocus(),
		Optimization: OptimizeBalanced,
		Embedder:     keywordEmbedder{},
	})

	assert.Equal(t, []string{"exact", "half"}, titles(got))
}

func TestReranker_AttachmentsOnlyForNonRetrievingMode(t *testing.T) {
	files := fakeFileStore{chunks: []FileChunk{{FileID: "f", FileName: "draft.md", Content: "draft", Score: 0.2}}}
	focus, _ := LookupFocus(string(FocusWritingAssistant))

	got := NewReranker(files, logger.NewNopLogger()).Rerank(context.Background(), rerankInput{
		Query:        "polish my draft",
		FileIDs:      []string{"f"},
		Focus:        focus,
		Optimization: OptimizeBalanced,
		Embedder:     keywordEmbedder{},
	})

	assert.Equal(t, []string{"draft.md"}, titles(got))
}

func TestReranker_Degrades(t *testing.T) {
	docs := []search.Result{
		{Title: "a", URL: "https://a", Content: "pasta"},
		{Title: "b", URL: "https://b", Content: "go"},
	}

	t.Run("embedder failure keeps retrieval order", func(t *testing.T) {
		got := NewReranker(nil, logger.NewNopLogger()).Rerank(context.Background(), rerankInput{
			Query: "go", Docs: docs, Focus: webFocus(), Optimization: OptimizeBalanced, Embedder: keywordEmbedder{fail: true},
		})
		assert.Equal(t, []string{"a", "b"}, titles(got))
	})

	t.Run("file store failure is ignored", func(t *testing.T) {
		got := NewReranker(fakeFileStore{err: errors.New("db down")}, logger.NewNopLogger()).Rerank(context.Background(), rerankInput{
			Query: "go", Docs: docs, FileIDs: []string{"f"}, Focus: webFocus(), Optimization: OptimizeBalanced, Embedder: keywordEmbedder{},
		})
		assert.Equal(t, []string{"b"}, titles(got))
	})

	t.Run("rerank disabled keeps order", func(t *testing.T) {
		focus, _ := LookupFocus(string(FocusWolframAlphaSearch))
		got := NewReranker(nil, logger.NewNopLogger()).Rerank(context.Background(), rerankInput{
			Query: "go", Docs: docs, Focus: focus, Optimization: OptimizeBalanced, Embedder: keywordEmbedder{},
		})
		assert.Equal(t, []string{"a", "b"}, titles(got))
	})
}

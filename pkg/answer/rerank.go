package answer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"ai-search-be/internal/pkg/logger"
	"ai-search-be/pkg/embedding"
	"ai-search-be/pkg/search"

	"golang.org/x/sync/errgroup"
)

const (
	rerankModule = "RERANK"

	maxContextDocs = 15
	// speed mode keeps at most this many attachment chunks ahead of web results
	speedFileSlots = 8
	embedWorkers   = 4
)

// FileChunk is a slice of an attached file with its similarity to the query.
type FileChunk struct {
	FileID     string
	ChunkIndex int
	FileName   string
	Content    string
	Score      float64
}

// URL identifies the chunk among the sources; chunks of one file differ by fragment.
func (c FileChunk) URL() string {
	return fmt.Sprintf("file://%s#%d", c.FileID, c.ChunkIndex)
}

// FileStore looks up attachment chunks most similar to a query embedding.
type FileStore interface {
	SimilarChunks(ctx context.Context, fileIDs []string, query []float32, limit int) ([]FileChunk, error)
}

type rerankInput struct {
	Query        string
	Docs         []search.Result
	FileIDs      []string
	Focus        FocusConfig
	Optimization OptimizationMode
	Embedder     embedding.EmbeddingProvider
}

// Reranker orders retrieved documents and attachment chunks for the prompt.
type Reranker struct {
	files  FileStore
	logger logger.ILogger
}

func NewReranker(files FileStore, log logger.ILogger) *Reranker {
	return &Reranker{files: files, logger: log}
}

type scored struct {
	doc   search.Result
	score float64
}

func (r *Reranker) Rerank(ctx context.Context, in rerankInput) []search.Result {
	docs := withContent(in.Docs)

	if in.Query == "" || (len(docs) == 0 && len(in.FileIDs) == 0) {
		return capDocs(docs)
	}
	if !in.Focus.Rerank {
		return capDocs(docs)
	}
	if in.Embedder == nil {
		return capDocs(docs)
	}

	needEmbedding := len(in.FileIDs) > 0 || in.Optimization != OptimizeSpeed
	if !needEmbedding {
		return capDocs(docs)
	}

	queryVec, err := in.Embedder.Generate(ctx, in.Query, embedding.TaskRetrievalQuery)
	if err != nil {
		r.logger.Warn(rerankModule, "Query embedding failed, keeping retrieval order", map[string]interface{}{"error": err.Error()})
		return capDocs(docs)
	}

	files := r.fileCandidates(ctx, in, queryVec.Embedding.Values)

	if in.Optimization == OptimizeSpeed {
		if len(files) > speedFileSlots {
			files = files[:speedFileSlots]
		}
		out := make([]search.Result, 0, maxContextDocs)
		for _, f := range files {
			out = append(out, f.doc)
		}
		return capDocs(append(out, docs...))
	}

	webScored, err := r.scoreDocs(ctx, in.Embedder, queryVec.Embedding.Values, docs)
	if err != nil {
		r.logger.Warn(rerankModule, "Document embedding failed, keeping retrieval order", map[string]interface{}{"error": err.Error()})
		return capDocs(docs)
	}

	candidates := append(files, webScored...)
	kept := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if c.score >= in.Focus.RerankThreshold {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].score > kept[j].score })

	out := make([]search.Result, 0, min(len(kept), maxContextDocs))
	for _, k := range kept {
		out = append(out, k.doc)
	}
	return capDocs(out)
}

// fileCandidates returns attachment chunks above the focus threshold, most
// similar first. Lookup failures are logged and yield nothing.
func (r *Reranker) fileCandidates(ctx context.Context, in rerankInput, query []float32) []scored {
	if len(in.FileIDs) == 0 || r.files == nil {
		return nil
	}
	chunks, err := r.files.SimilarChunks(ctx, in.FileIDs, query, maxContextDocs)
	if err != nil {
		r.logger.Warn(rerankModule, "Attachment lookup failed", map[string]interface{}{
			"files": in.FileIDs,
			"error": err.Error(),
		})
		return nil
	}

	out := make([]scored, 0, len(chunks))
	for _, c := range chunks {
		if c.Score < in.Focus.RerankThreshold {
			continue
		}
		out = append(out, scored{
			doc:   search.Result{Title: c.FileName, URL: c.URL(), Content: c.Content},
			score: c.Score,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out
}

func (r *Reranker) scoreDocs(ctx context.Context, embedder embedding.EmbeddingProvider, query []float32, docs []search.Result) ([]scored, error) {
	out := make([]scored, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedWorkers)
	for i, d := range docs {
		g.Go(func() error {
			vec, err := embedder.Generate(gctx, d.Content, embedding.TaskRetrievalDocument)
			if err != nil {
				return fmt.Errorf("embed %s: %w", d.URL, err)
			}
			out[i] = scored{doc: d, score: embedding.CosineSimilarity(query, vec.Embedding.Values)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func withContent(docs []search.Result) []search.Result {
	out := make([]search.Result, 0, len(docs))
	for _, d := range docs {
		if strings.TrimSpace(d.Content) != "" {
			out = append(out, d)
		}
	}
	return out
}

// capDocs drops repeated URLs, keeping the first, and bounds the list.
func capDocs(docs []search.Result) []search.Result {
	return search.MergeResults(maxContextDocs, search.Response{Results: docs})
}

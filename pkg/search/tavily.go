package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-search-be/internal/pkg/logger"
	"ai-search-be/pkg/metrics"

	"github.com/tidwall/gjson"
)

const (
	tavilyModule      = "TAVILY"
	defaultTavilyURL  = "https://api.tavily.com/search"
	tavilyDepthBasic  = "basic"
	tavilyDepthDeeper = "advanced"
)

// Tavily calls the Tavily research-search API. It is ComplexityAware:
// result count and depth come from the Query Tuner.
type Tavily struct {
	APIKey   string
	Endpoint string
	client   *http.Client
	logger   logger.ILogger
}

func NewTavily(apiKey string, log logger.ILogger) *Tavily {
	return NewTavilyWithClient(apiKey, defaultTavilyURL, &http.Client{Timeout: 20 * time.Second}, log)
}

func NewTavilyWithClient(apiKey, endpoint string, client *http.Client, log logger.ILogger) *Tavily {
	if endpoint == "" {
		endpoint = defaultTavilyURL
	}
	return &Tavily{APIKey: apiKey, Endpoint: endpoint, client: client, logger: log}
}

func (t *Tavily) Name() string { return "tavily" }

func (t *Tavily) AcceptsTuning() bool { return true }

type tavilyRequest struct {
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth"`
	IncludeImages     bool   `json:"include_images"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilyResponse struct {
	Results []struct {
		Title    string  `json:"title"`
		URL      string  `json:"url"`
		Content  string  `json:"content"`
		Score    float64 `json:"score"`
		ImageURL string  `json:"image_url"`
	} `json:"results"`
}

func (t *Tavily) Search(ctx context.Context, query string, opts Options) Response {
	started := time.Now()
	defer func() {
		metrics.BackendLatency.WithLabelValues(t.Name()).Observe(time.Since(started).Seconds())
	}()

	res, err := t.search(ctx, query, opts)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(t.Name(), "error").Inc()
		t.logger.Warn(tavilyModule, "Search failed, returning empty result set", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return EmptyResponse()
	}

	outcome := "ok"
	if len(res.Results) == 0 {
		outcome = "empty"
	}
	metrics.BackendRequests.WithLabelValues(t.Name(), outcome).Inc()
	return res
}

// requestShape resolves count and depth: explicit MaxResults wins, then the
// attached tuning, then tuning computed from the query itself.
func requestShape(query string, opts Options) (int, string) {
	params := Tune(query)
	if opts.Tuning != nil {
		params = *opts.Tuning
	}
	count := params.ResultCount
	if opts.MaxResults > 0 {
		count = opts.MaxResults
	}
	depth := tavilyDepthBasic
	if params.Depth == DepthDeep {
		depth = tavilyDepthDeeper
	}
	return count, depth
}

func (t *Tavily) search(ctx context.Context, query string, opts Options) (Response, error) {
	if strings.TrimSpace(t.APIKey) == "" {
		return Response{}, fmt.Errorf("tavily: API key is not configured")
	}

	count, depth := requestShape(query, opts)
	payload, err := json.Marshal(tavilyRequest{
		Query:         query,
		MaxResults:    count,
		SearchDepth:   depth,
		IncludeImages: opts.IncludeImages,
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	t.logger.Debug(tavilyModule, "Searching", map[string]interface{}{
		"query":       query,
		"max_results": count,
		"depth":       depth,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("tavily http %d", resp.StatusCode)
	}

	var decoded tavilyResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Response{}, fmt.Errorf("tavily: malformed payload: %w", err)
	}

	// Tavily has no suggestions.
	out := EmptyResponse()
	for _, r := range decoded.Results {
		title := r.Title
		if title == "" {
			title = "No Title"
		}
		out.Results = append(out.Results, Result{
			Title:    title,
			URL:      r.URL,
			Content:  r.Content,
			ImageURL: r.ImageURL,
		})
	}

	if opts.IncludeImages {
		out.Results = append(out.Results, tavilyImages(body)...)
	}

	return out, nil
}

// tavilyImages reads the top-level images list, which is either a list of
// URLs or a list of {url, description} objects.
func tavilyImages(body []byte) []Result {
	var images []Result
	gjson.GetBytes(body, "images").ForEach(func(_, item gjson.Result) bool {
		imgURL := item.String()
		title := "Image result"
		if item.IsObject() {
			imgURL = item.Get("url").String()
			if d := item.Get("description").String(); d != "" {
				title = d
			}
		}
		if imgURL != "" {
			images = append(images, Result{Title: title, URL: imgURL, ImageURL: imgURL})
		}
		return true
	})
	return images
}

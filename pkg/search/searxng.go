package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ai-search-be/internal/pkg/logger"
	"ai-search-be/pkg/metrics"

	"github.com/tidwall/gjson"
)

const searxngModule = "SEARXNG"

// SearxNG queries a SearxNG instance through its JSON API.
// It honours engines, language and page hints and ignores tuning.
type SearxNG struct {
	BaseURL string
	client  *http.Client
	logger  logger.ILogger
}

func NewSearxNG(baseURL string, log logger.ILogger) *SearxNG {
	return NewSearxNGWithClient(baseURL, &http.Client{Timeout: 15 * time.Second}, log)
}

// NewSearxNGWithClient is used to override the default timeout (and by tests).
func NewSearxNGWithClient(baseURL string, client *http.Client, log logger.ILogger) *SearxNG {
	return &SearxNG{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  log,
	}
}

func (s *SearxNG) Name() string { return "searxng" }

func (s *SearxNG) Search(ctx context.Context, query string, opts Options) Response {
	started := time.Now()
	defer func() {
		metrics.BackendLatency.WithLabelValues(s.Name()).Observe(time.Since(started).Seconds())
	}()

	res, err := s.search(ctx, query, opts)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(s.Name(), "error").Inc()
		s.logger.Warn(searxngModule, "Search failed, returning empty result set", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return EmptyResponse()
	}

	outcome := "ok"
	if len(res.Results) == 0 {
		outcome = "empty"
	}
	metrics.BackendRequests.WithLabelValues(s.Name(), outcome).Inc()
	return res
}

func (s *SearxNG) search(ctx context.Context, query string, opts Options) (Response, error) {
	if s.BaseURL == "" {
		return Response{}, fmt.Errorf("searxng: base url is not configured")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	if len(opts.Engines) > 0 {
		params.Set("engines", strings.Join(opts.Engines, ","))
	}
	if opts.Language != "" {
		params.Set("language", opts.Language)
	}
	if opts.PageNo > 0 {
		params.Set("pageno", strconv.Itoa(opts.PageNo))
	}

	endpoint := s.BaseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("searxng request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("searxng http %d", resp.StatusCode)
	}

	return parseSearxNG(body)
}

// parseSearxNG tolerates missing fields; only a body that is not a JSON
// object is considered malformed.
func parseSearxNG(body []byte) (Response, error) {
	if !gjson.ValidBytes(body) {
		return Response{}, fmt.Errorf("searxng: malformed payload")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return Response{}, fmt.Errorf("searxng: unexpected payload type")
	}

	out := EmptyResponse()
	doc.Get("results").ForEach(func(_, item gjson.Result) bool {
		r := Result{
			Title:     item.Get("title").String(),
			URL:       item.Get("url").String(),
			Content:   item.Get("content").String(),
			ImageURL:  item.Get("img_src").String(),
			Thumbnail: firstNonEmpty(item.Get("thumbnail_src").String(), item.Get("thumbnail").String()),
			Author:    item.Get("author").String(),
		}
		if r.URL != "" {
			out.Results = append(out.Results, r)
		}
		return true
	})
	doc.Get("suggestions").ForEach(func(_, item gjson.Result) bool {
		out.Suggestions = append(out.Suggestions, item.String())
		return true
	})

	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package search

import (
	"context"
	"strings"
)

// Result is a single normalized retrieval hit.
// Identity is the normalized URL, see NormalizeURL.
type Result struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Content   string `json:"content"`
	ImageURL  string `json:"img_src,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Author    string `json:"author,omitempty"`
}

// Response is what every backend returns, even on failure.
type Response struct {
	Results     []Result `json:"results"`
	Suggestions []string `json:"suggestions"`
}

// EmptyResponse is returned by backends that failed soft.
func EmptyResponse() Response {
	return Response{Results: []Result{}, Suggestions: []string{}}
}

// Options carries provider hints. Backends read the fields they understand
// and ignore the rest.
type Options struct {
	Engines       []string
	Language      string
	PageNo        int
	IncludeImages bool
	MaxResults    int

	// Tuning is only attached for backends that report AcceptsTuning.
	Tuning *Params

	// Hints holds free-form provider extras. Unknown keys are ignored.
	Hints map[string]string
}

// Backend is a search provider adapter. Search never fails: transport,
// provider and decoding errors yield EmptyResponse and are recorded.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, opts Options) Response
}

// ComplexityAware is implemented by backends that can use Query Tuner output.
type ComplexityAware interface {
	AcceptsTuning() bool
}

func acceptsTuning(b Backend) bool {
	ca, ok := b.(ComplexityAware)
	return ok && ca.AcceptsTuning()
}

// NormalizeURL returns the dedup key for a result URL.
func NormalizeURL(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	return strings.TrimRight(u, "/")
}

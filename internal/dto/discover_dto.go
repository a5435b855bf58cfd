package dto

import "ai-search-be/pkg/search"

// DiscoverResponse is keyed by locale group, e.g. "indonesian".
type DiscoverResponse map[string][]search.Result

package search

import (
	"regexp"
	"strings"
)

type Depth string

const (
	DepthShallow Depth = "shallow"
	DepthDeep    Depth = "deep"
)

const (
	baseResultCount = 5
	minResultCount  = 5
	maxResultCount  = 20 // provider ceiling
)

// Params is the retrieval shape derived from a raw query.
type Params struct {
	ResultCount int   `json:"result_count"`
	Depth       Depth `json:"depth"`
}

var (
	comparisonTerms    = regexp.MustCompile(`(?i)\b(compare|difference|versus|vs|analysis|comprehensive|detailed|explain|list|multiple|alternatives)\b`)
	questionTerms      = regexp.MustCompile(`(?i)\b(how|what|why|when|where|who|which|implement|code|tutorial|example|steps|guide)\b`)
	comprehensiveTerms = regexp.MustCompile(`(?i)\b(comprehensive|detailed|thorough|in-depth|complete|academic|research|analyze|scholarly|expert)\b`)
	technicalSubjects  = regexp.MustCompile(`(?i)\b(programming|science|physics|chemistry|biology|mathematics|philosophy|history|medicine|engineering)\b`)
)

// Tune maps a query to a result count and a search depth.
// It is pure and deterministic.
func Tune(query string) Params {
	return Params{
		ResultCount: ResultCount(query),
		Depth:       SearchDepth(query),
	}
}

// ResultCount starts at 5 and grows with query complexity, clamped to [5, 20].
func ResultCount(query string) int {
	words := len(strings.Fields(query))

	count := baseResultCount
	if words > 8 {
		count += 3
	}
	if comparisonTerms.MatchString(query) {
		count += 5
	}
	if questionTerms.MatchString(query) {
		count += 4
	}

	return min(max(count, minResultCount), maxResultCount)
}

// SearchDepth reports whether the query needs a deep search.
func SearchDepth(query string) Depth {
	words := len(strings.Fields(query))

	switch {
	case comprehensiveTerms.MatchString(query):
		return DepthDeep
	case len(query) > 80:
		return DepthDeep
	case strings.Count(query, "?") > 2:
		return DepthDeep
	case words > 12 && technicalSubjects.MatchString(query):
		return DepthDeep
	}
	return DepthShallow
}

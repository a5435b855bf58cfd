package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTune(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantCount int
		wantDepth Depth
	}{
		{
			name:      "plain query stays at base",
			query:     "golang generics",
			wantCount: 5,
			wantDepth: DepthShallow,
		},
		{
			name:      "comparison without question words",
			query:     "compare the difference between TCP and UDP",
			wantCount: 10,
			wantDepth: DepthShallow,
		},
		{
			name:      "question word",
			query:     "how does dns work",
			wantCount: 9,
			wantDepth: DepthShallow,
		},
		{
			name:      "long comparison question",
			query:     "what is the difference between postgres and mysql for a small startup team",
			wantCount: 17,
			wantDepth: DepthShallow,
		},
		{
			name:      "comprehensive term goes deep",
			query:     "comprehensive overview of rust",
			wantCount: 10,
			wantDepth: DepthDeep,
		},
		{
			name:      "matching is case insensitive",
			query:     "EXPLAIN Raft",
			wantCount: 10,
			wantDepth: DepthShallow,
		},
		{
			name:      "word boundary is required",
			query:     "listing showcase",
			wantCount: 5,
			wantDepth: DepthShallow,
		},
		{
			name:      "three question marks go deep",
			query:     "go? rust? zig?",
			wantCount: 5,
			wantDepth: DepthDeep,
		},
		{
			name:      "two question marks stay shallow",
			query:     "go? rust?",
			wantCount: 5,
			wantDepth: DepthShallow,
		},
		{
			name:      "long technical query goes deep",
			query:     "the role of entropy in physics of closed systems over long periods and its consequences",
			wantCount: 8,
			wantDepth: DepthDeep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tune(tt.query)
			assert.Equal(t, tt.wantCount, got.ResultCount)
			assert.Equal(t, tt.wantDepth, got.Depth)
		})
	}
}

func TestTune_LongQueryGoesDeep(t *testing.T) {
	q := strings.Repeat("a", 81)
	assert.Equal(t, DepthDeep, SearchDepth(q))
	assert.Equal(t, DepthShallow, SearchDepth(q[:80]))
}

func TestResultCount_Bounds(t *testing.T) {
	queries := []string{
		"",
		"x",
		"compare explain list how what why implement code tutorial example steps guide",
		strings.Repeat("word ", 200),
		"vs vs vs vs vs vs",
	}
	for _, q := range queries {
		c := ResultCount(q)
		assert.GreaterOrEqual(t, c, 5, q)
		assert.LessOrEqual(t, c, 20, q)
	}
}

func TestResultCount_MonotonicPerSignal(t *testing.T) {
	base := "rust borrow checker"
	signals := []string{
		base + " compare",
		base + " how",
		base + " and some extra words to pass eight",
	}
	for _, q := range signals {
		assert.GreaterOrEqual(t, ResultCount(q), ResultCount(base), q)
	}
}

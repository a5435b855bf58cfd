package answer

import (
	"errors"
	"fmt"

	"ai-search-be/internal/constant"
	"ai-search-be/pkg/search"
)

var ErrInvalidFocusMode = errors.New("invalid focus mode")

type FocusMode string

const (
	FocusWebSearch          FocusMode = "webSearch"
	FocusWebSearchTavily    FocusMode = "webSearchTavily"
	FocusWebSearchBoth      FocusMode = "webSearchBoth"
	FocusAcademicSearch     FocusMode = "academicSearch"
	FocusWritingAssistant   FocusMode = "writingAssistant"
	FocusCodeAssistant      FocusMode = "codeAssistant"
	FocusWolframAlphaSearch FocusMode = "wolframAlphaSearch"
	FocusYoutubeSearch      FocusMode = "youtubeSearch"
	FocusRedditSearch       FocusMode = "redditSearch"
)

// FocusConfig is the static behaviour of one focus mode.
type FocusConfig struct {
	Mode       FocusMode
	Retrieving bool
	MergeMode  search.MergeMode
	Engines    []string

	// Rerank enables similarity filtering; RerankThreshold is the minimum
	// cosine similarity kept in balanced mode.
	Rerank          bool
	RerankThreshold float64

	RetrieverPrompt string // fmt: history, query
	ResponsePrompt  string // fmt: context, date
}

var focusModes = map[FocusMode]FocusConfig{
	FocusWebSearch: {
		Mode:            FocusWebSearch,
		Retrieving:      true,
		MergeMode:       search.MergeSingle,
		Rerank:          true,
		RerankThreshold: 0.3,
		RetrieverPrompt: constant.WebSearchRetrieverPrompt,
		ResponsePrompt:  constant.WebSearchResponsePrompt,
	},
	FocusWebSearchTavily: {
		Mode:            FocusWebSearchTavily,
		Retrieving:      true,
		MergeMode:       search.MergeAlt,
		Rerank:          true,
		RerankThreshold: 0.3,
		RetrieverPrompt: constant.WebSearchRetrieverPrompt,
		ResponsePrompt:  constant.WebSearchResponsePrompt,
	},
	FocusWebSearchBoth: {
		Mode:            FocusWebSearchBoth,
		Retrieving:      true,
		MergeMode:       search.MergeCombined,
		Rerank:          true,
		RerankThreshold: 0.3,
		RetrieverPrompt: constant.WebSearchRetrieverPrompt,
		ResponsePrompt:  constant.WebSearchResponsePrompt,
	},
	FocusAcademicSearch: {
		Mode:            FocusAcademicSearch,
		Retrieving:      true,
		MergeMode:       search.MergeSingle,
		Engines:         []string{"arxiv", "google scholar", "pubmed"},
		Rerank:          true,
		RerankThreshold: 0,
		RetrieverPrompt: constant.AcademicSearchRetrieverPrompt,
		ResponsePrompt:  constant.AcademicSearchResponsePrompt,
	},
	FocusWritingAssistant: {
		Mode:            FocusWritingAssistant,
		Rerank:          true,
		RerankThreshold: 0,
		ResponsePrompt:  constant.WritingAssistantPrompt,
	},
	FocusCodeAssistant: {
		Mode:            FocusCodeAssistant,
		Rerank:          true,
		RerankThreshold: 0,
		ResponsePrompt:  constant.CodeAssistantPrompt,
	},
	FocusWolframAlphaSearch: {
		Mode:            FocusWolframAlphaSearch,
		Retrieving:      true,
		MergeMode:       search.MergeSingle,
		Engines:         []string{"wolframalpha"},
		RetrieverPrompt: constant.WolframAlphaSearchRetrieverPrompt,
		ResponsePrompt:  constant.WolframAlphaSearchResponsePrompt,
	},
	FocusYoutubeSearch: {
		Mode:            FocusYoutubeSearch,
		Retrieving:      true,
		MergeMode:       search.MergeSingle,
		Engines:         []string{"youtube"},
		Rerank:          true,
		RerankThreshold: 0.3,
		RetrieverPrompt: constant.YoutubeSearchRetrieverPrompt,
		ResponsePrompt:  constant.YoutubeSearchResponsePrompt,
	},
	FocusRedditSearch: {
		Mode:            FocusRedditSearch,
		Retrieving:      true,
		MergeMode:       search.MergeSingle,
		Engines:         []string{"reddit"},
		Rerank:          true,
		RerankThreshold: 0.3,
		RetrieverPrompt: constant.RedditSearchRetrieverPrompt,
		ResponsePrompt:  constant.RedditSearchResponsePrompt,
	},
}

// LookupFocus returns the configuration for a focus mode key.
func LookupFocus(key string) (FocusConfig, error) {
	cfg, ok := focusModes[FocusMode(key)]
	if !ok {
		return FocusConfig{}, fmt.Errorf("%w: %q", ErrInvalidFocusMode, key)
	}
	return cfg, nil
}

// MergeModeFor picks the backend policy used for image search.
func MergeModeFor(key string) search.MergeMode {
	switch FocusMode(key) {
	case FocusWebSearchTavily:
		return search.MergeAlt
	case FocusWebSearchBoth:
		return search.MergeCombined
	default:
		return search.MergeSingle
	}
}

func FocusModes() []FocusMode {
	return []FocusMode{
		FocusWebSearch, FocusWebSearchTavily, FocusWebSearchBoth,
		FocusAcademicSearch, FocusWritingAssistant, FocusCodeAssistant,
		FocusWolframAlphaSearch, FocusYoutubeSearch, FocusRedditSearch,
	}
}

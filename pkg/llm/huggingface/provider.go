package huggingface

import (
	"ai-search-be/pkg/llm/openai"
)

// DefaultRouterURL is the OpenAI-compatible Hugging Face inference router.
const DefaultRouterURL = "https://router.huggingface.co/v1"

// NewHuggingFaceProvider returns a chat provider for models served by the
// Hugging Face router.
func NewHuggingFaceProvider(apiKey, baseURL, model string) *openai.Provider {
	if baseURL == "" {
		baseURL = DefaultRouterURL
	}
	return openai.NewProvider(apiKey, baseURL, model)
}

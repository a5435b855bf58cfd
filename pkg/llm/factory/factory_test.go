package factory

import (
	"testing"

	"ai-search-be/pkg/llm"
	"ai-search-be/pkg/llm/ollama"
	"ai-search-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() Settings {
	return Settings{
		DefaultProvider:   ProviderOllama,
		DefaultModel:      "llama3.1",
		OllamaBaseURL:     "http://localhost:11434",
		OllamaModels:      []string{"qwen2.5", "llama3.1"},
		CustomOpenAIURL:   "http://gateway.local/v1",
		CustomOpenAIKey:   "k",
		CustomOpenAIModel: "my-model",
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry(testSettings())

	tests := []struct {
		name     string
		ref      ModelRef
		wantRef  ModelRef
		wantErr  bool
		isOllama bool
	}{
		{
			name:     "defaults when empty",
			ref:      ModelRef{},
			wantRef:  ModelRef{Provider: ProviderOllama, Name: "llama3.1"},
			isOllama: true,
		},
		{
			name:     "explicit ollama model",
			ref:      ModelRef{Provider: ProviderOllama, Name: "qwen2.5"},
			wantRef:  ModelRef{Provider: ProviderOllama, Name: "qwen2.5"},
			isOllama: true,
		},
		{
			name:    "custom openai",
			ref:     ModelRef{Provider: ProviderCustomOpenAI},
			wantRef: ModelRef{Provider: ProviderCustomOpenAI, Name: "my-model"},
		},
		{
			name:    "unknown provider",
			ref:     ModelRef{Provider: "anthropic", Name: "x"},
			wantErr: true,
		},
		{
			name:    "unknown model",
			ref:     ModelRef{Provider: ProviderOllama, Name: "nope"},
			wantErr: true,
		},
		{
			name:    "unconfigured provider",
			ref:     ModelRef{Provider: ProviderOpenAI, Name: "gpt-4o-mini"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ref, err := r.Resolve(tt.ref)
			if tt.wantErr {
				assert.ErrorIs(t, err, llm.ErrUnknownModel)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRef, ref)
			if tt.isOllama {
				assert.IsType(t, &ollama.OllamaProvider{}, p)
			} else {
				assert.IsType(t, &openai.Provider{}, p)
			}
		})
	}
}

func TestRegistry_DefaultFallsBackToFirstProvider(t *testing.T) {
	s := testSettings()
	s.DefaultProvider = "openai"
	r := NewRegistry(s)

	_, ref, err := r.Resolve(ModelRef{})
	require.NoError(t, err)
	assert.Equal(t, ModelRef{Provider: ProviderOllama, Name: "qwen2.5"}, ref)
}

func TestRegistry_Available(t *testing.T) {
	got := NewRegistry(testSettings()).Available()
	assert.Equal(t, map[string][]string{
		ProviderOllama:       {"llama3.1", "qwen2.5"},
		ProviderCustomOpenAI: {"my-model"},
	}, got)
}

package factory

import (
	"fmt"
	"sort"

	"ai-search-be/pkg/llm"
	"ai-search-be/pkg/llm/huggingface"
	"ai-search-be/pkg/llm/ollama"
	"ai-search-be/pkg/llm/openai"
)

const (
	ProviderOllama       = "ollama"
	ProviderOpenAI       = "openai"
	ProviderHuggingFace  = "huggingface"
	ProviderCustomOpenAI = "custom_openai"
)

// Settings is the subset of configuration the factory needs.
type Settings struct {
	DefaultProvider string
	DefaultModel    string

	OllamaBaseURL string
	OllamaModels  []string

	OpenAIAPIKey string
	OpenAIModels []string

	HuggingFaceAPIKey string
	HuggingFaceModels []string

	CustomOpenAIURL   string
	CustomOpenAIKey   string
	CustomOpenAIModel string
}

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case ProviderOllama:
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case ProviderOpenAI, ProviderCustomOpenAI:
		return openai.NewProvider(apiKey, baseURL, modelName), nil
	case ProviderHuggingFace:
		return huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

// ModelRef names a chat model as sent by clients.
type ModelRef struct {
	Provider string `json:"provider"`
	Name     string `json:"name"`
}

type entry struct {
	models  []string
	baseURL string
	apiKey  string
}

// Registry resolves client model references to providers. Only configured
// providers are registered.
type Registry struct {
	entries  map[string]entry
	order    []string
	defaults ModelRef
}

func NewRegistry(s Settings) *Registry {
	r := &Registry{entries: make(map[string]entry)}

	if s.OllamaBaseURL != "" && len(s.OllamaModels) > 0 {
		r.register(ProviderOllama, entry{models: s.OllamaModels, baseURL: s.OllamaBaseURL})
	}
	if s.OpenAIAPIKey != "" && len(s.OpenAIModels) > 0 {
		r.register(ProviderOpenAI, entry{models: s.OpenAIModels, apiKey: s.OpenAIAPIKey})
	}
	if s.HuggingFaceAPIKey != "" && len(s.HuggingFaceModels) > 0 {
		r.register(ProviderHuggingFace, entry{models: s.HuggingFaceModels, apiKey: s.HuggingFaceAPIKey})
	}
	if s.CustomOpenAIURL != "" && s.CustomOpenAIModel != "" {
		r.register(ProviderCustomOpenAI, entry{
			models:  []string{s.CustomOpenAIModel},
			baseURL: s.CustomOpenAIURL,
			apiKey:  s.CustomOpenAIKey,
		})
	}

	r.defaults = ModelRef{Provider: s.DefaultProvider, Name: s.DefaultModel}
	return r
}

func (r *Registry) register(name string, e entry) {
	r.entries[name] = e
	r.order = append(r.order, name)
}

// Resolve fills in defaults for an empty reference and builds the provider.
// An unregistered provider or model yields llm.ErrUnknownModel.
func (r *Registry) Resolve(ref ModelRef) (llm.LLMProvider, ModelRef, error) {
	if ref.Provider == "" {
		ref.Provider = r.defaults.Provider
		if _, ok := r.entries[ref.Provider]; !ok && len(r.order) > 0 {
			ref.Provider = r.order[0]
		}
	}

	e, ok := r.entries[ref.Provider]
	if !ok {
		return nil, ref, fmt.Errorf("%w: provider %q", llm.ErrUnknownModel, ref.Provider)
	}

	if ref.Name == "" {
		ref.Name = e.models[0]
		if ref.Provider == r.defaults.Provider && contains(e.models, r.defaults.Name) {
			ref.Name = r.defaults.Name
		}
	}
	if !contains(e.models, ref.Name) {
		return nil, ref, fmt.Errorf("%w: %s/%s", llm.ErrUnknownModel, ref.Provider, ref.Name)
	}

	p, err := NewLLMProvider(ref.Provider, ref.Name, e.baseURL, e.apiKey)
	if err != nil {
		return nil, ref, fmt.Errorf("%w: %v", llm.ErrUnknownModel, err)
	}
	return p, ref, nil
}

// Available lists registered providers and their models.
func (r *Registry) Available() map[string][]string {
	out := make(map[string][]string, len(r.entries))
	for name, e := range r.entries {
		models := append([]string(nil), e.models...)
		sort.Strings(models)
		out[name] = models
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

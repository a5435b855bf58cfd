package embedding

import (
	"fmt"
	"sort"
)

// ModelRef names an embedding model as sent by clients.
type ModelRef struct {
	Provider string `json:"provider"`
	Name     string `json:"name"`
}

type builder func(model string) EmbeddingProvider

type registered struct {
	models []string
	build  builder
}

// Registry resolves client embedding model references.
type Registry struct {
	entries  map[string]registered
	order    []string
	fallback string
}

func NewRegistry(defaultProvider string) *Registry {
	return &Registry{entries: make(map[string]registered), fallback: defaultProvider}
}

// RegisterOllama exposes local models served at baseURL.
func (r *Registry) RegisterOllama(baseURL string, models ...string) *Registry {
	return r.register("ollama", models, func(model string) EmbeddingProvider {
		return NewOllamaProvider(baseURL, model)
	})
}

// RegisterOpenAI exposes models of an OpenAI-compatible endpoint.
func (r *Registry) RegisterOpenAI(apiKey, baseURL string, models ...string) *Registry {
	return r.register("openai", models, func(model string) EmbeddingProvider {
		return NewOpenAIProvider(apiKey, baseURL, model)
	})
}

func (r *Registry) register(name string, models []string, b builder) *Registry {
	if len(models) == 0 {
		return r
	}
	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = registered{models: models, build: b}
	return r
}

// Resolve fills in defaults for an empty reference. Unknown pairs yield ErrUnknownModel.
func (r *Registry) Resolve(ref ModelRef) (EmbeddingProvider, ModelRef, error) {
	if ref.Provider == "" {
		ref.Provider = r.fallback
		if _, ok := r.entries[ref.Provider]; !ok && len(r.order) > 0 {
			ref.Provider = r.order[0]
		}
	}
	e, ok := r.entries[ref.Provider]
	if !ok {
		return nil, ref, fmt.Errorf("%w: provider %q", ErrUnknownModel, ref.Provider)
	}
	if ref.Name == "" {
		ref.Name = e.models[0]
	}
	for _, m := range e.models {
		if m == ref.Name {
			return e.build(m), ref, nil
		}
	}
	return nil, ref, fmt.Errorf("%w: %s/%s", ErrUnknownModel, ref.Provider, ref.Name)
}

func (r *Registry) Available() map[string][]string {
	out := make(map[string][]string, len(r.entries))
	for name, e := range r.entries {
		models := append([]string(nil), e.models...)
		sort.Strings(models)
		out[name] = models
	}
	return out
}

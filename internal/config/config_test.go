package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_MODEL", "qwen2.5")
	t.Setenv("OLLAMA_MODELS", "")
	t.Setenv("SEARCH_CACHE_TTL", "")
	t.Setenv("DB_DRIVER", "")

	cfg := Load()

	assert.Equal(t, "qwen2.5", cfg.Ai.LLMModel)
	assert.Equal(t, []string{"qwen2.5"}, cfg.Ai.OllamaModels)
	assert.Equal(t, 10*time.Minute, cfg.Cache.SearchTTL)
	assert.Equal(t, "", cfg.Database.Driver)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("OLLAMA_MODELS", "llama3, mistral ,")
	t.Setenv("SEARCH_CACHE_TTL", "90")
	t.Setenv("DISCOVER_CACHE_TTL", "1h")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"llama3", "mistral"}, cfg.Ai.OllamaModels)
	assert.Equal(t, 90*time.Second, cfg.Cache.SearchTTL)
	assert.Equal(t, time.Hour, cfg.Cache.DiscoverTTL)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvAsDuration_Invalid(t *testing.T) {
	t.Setenv("SOME_TTL", "soon")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_TTL", time.Minute))
}

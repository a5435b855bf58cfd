package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Search   SearchConfig
	Cache    CacheConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	StreamLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	AssistantTurnTopic string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Connection string
}

type SearchConfig struct {
	SearxngURL string
}

type CacheConfig struct {
	Backend     string // "memory" or "redis"
	SearchTTL   time.Duration
	DiscoverTTL time.Duration
}

type APIKeys struct {
	Tavily            string
	OpenAI            string
	HuggingFace       string
	CustomOpenAIURL   string
	CustomOpenAIKey   string
	CustomOpenAIModel string
}

type AIConfig struct {
	LLMProvider          string // "ollama", "openai", "huggingface", "custom_openai"
	LLMModel             string
	OllamaBaseURL        string
	OllamaModels         []string
	OpenAIModels         []string
	HuggingFaceModels    []string
	EmbeddingProvider    string // "ollama" or "openai"
	OllamaEmbeddingModel string
	OpenAIEmbeddingModel string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	llmModel := getEnv("LLM_MODEL", "llama3")

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3001"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			StreamLogFilePath:  getEnv("STREAM_LOG_FILE_PATH", "logs/stream.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			AssistantTurnTopic: getEnv("ASSISTANT_TURN_TOPIC_NAME", "ASSISTANT_TURN_COMPLETED"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Search: SearchConfig{
			SearxngURL: getEnv("SEARXNG_API_URL", "http://localhost:8080"),
		},
		Cache: CacheConfig{
			Backend:     getEnv("CACHE_BACKEND", "memory"),
			SearchTTL:   getEnvAsDuration("SEARCH_CACHE_TTL", 10*time.Minute),
			DiscoverTTL: getEnvAsDuration("DISCOVER_CACHE_TTL", 30*time.Minute),
		},
		Keys: APIKeys{
			Tavily:            getEnv("TAVILY_API_KEY", ""),
			OpenAI:            getEnv("OPENAI_API_KEY", ""),
			HuggingFace:       getEnv("HUGGINGFACE_API_KEY", ""),
			CustomOpenAIURL:   getEnv("CUSTOM_OPENAI_API_URL", ""),
			CustomOpenAIKey:   getEnv("CUSTOM_OPENAI_API_KEY", ""),
			CustomOpenAIModel: getEnv("CUSTOM_OPENAI_MODEL_NAME", ""),
		},
		Ai: AIConfig{
			LLMProvider:          getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:             llmModel,
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModels:         getEnvAsList("OLLAMA_MODELS", []string{llmModel}),
			OpenAIModels:         getEnvAsList("OPENAI_MODELS", []string{"gpt-4o-mini", "gpt-4o"}),
			HuggingFaceModels:    getEnvAsList("HUGGINGFACE_MODELS", []string{"meta-llama/Llama-3.1-8B-Instruct"}),
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs := getEnvAsInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package dto

type ModelsResponse struct {
	ChatModelProviders      map[string][]string `json:"chatModelProviders"`
	EmbeddingModelProviders map[string][]string `json:"embeddingModelProviders"`
}

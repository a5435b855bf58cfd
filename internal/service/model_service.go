package service

import "ai-search-be/internal/dto"

type IModelService interface {
	Available() *dto.ModelsResponse
}

type modelService struct {
	chatModels      ChatModelResolver
	embeddingModels EmbeddingModelResolver
}

func NewModelService(chatModels ChatModelResolver, embeddingModels EmbeddingModelResolver) IModelService {
	return &modelService{chatModels: chatModels, embeddingModels: embeddingModels}
}

func (s *modelService) Available() *dto.ModelsResponse {
	res := &dto.ModelsResponse{
		ChatModelProviders:      map[string][]string{},
		EmbeddingModelProviders: map[string][]string{},
	}
	if s.chatModels != nil {
		res.ChatModelProviders = s.chatModels.Available()
	}
	if s.embeddingModels != nil {
		res.EmbeddingModelProviders = s.embeddingModels.Available()
	}
	return res
}

package service

import (
	"context"
	"fmt"
	"strings"

	"ai-search-be/internal/constant"
	"ai-search-be/internal/dto"
	"ai-search-be/internal/pkg/logger"
	"ai-search-be/pkg/answer"
	"ai-search-be/pkg/llm"
	"ai-search-be/pkg/llm/factory"
	"ai-search-be/pkg/search"
)

const imageModule = "IMAGE_SEARCH"

// ImageRetriever is implemented by search.Merger.
type ImageRetriever interface {
	RetrieveImages(ctx context.Context, query string, mode search.MergeMode) []search.Result
}

type IImageService interface {
	// Search errors wrap llm.ErrUnknownModel for an unresolvable model.
	Search(ctx context.Context, req *dto.ImageSearchRequest) (*dto.ImageSearchResponse, error)
}

type imageService struct {
	retriever  ImageRetriever
	chatModels ChatModelResolver
	logger     logger.ILogger
}

func NewImageService(retriever ImageRetriever, chatModels ChatModelResolver, log logger.ILogger) IImageService {
	return &imageService{
		retriever:  retriever,
		chatModels: chatModels,
		logger:     log,
	}
}

func (s *imageService) Search(ctx context.Context, req *dto.ImageSearchRequest) (*dto.ImageSearchResponse, error) {
	chatLLM, _, err := s.chatModels.Resolve(factory.ModelRef{
		Provider: req.ChatModel.Provider,
		Name:     req.ChatModel.Model,
	})
	if err != nil {
		return nil, err
	}

	pairs := make([][2]string, 0, len(req.ChatHistory))
	for _, m := range req.ChatHistory {
		pairs = append(pairs, [2]string{m.Role, m.Content})
	}
	history := answer.ConvertHistory(pairs)

	prompt := fmt.Sprintf(constant.ImageSearchRetrieverPrompt, answer.FormatHistory(history), req.Query)
	raw, err := chatLLM.Generate(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("rephrase image query: %w", err)
	}

	query := answer.StripThink(raw)
	if strings.TrimSpace(query) == "" {
		query = req.Query
	}

	mode := answer.MergeModeFor(req.FocusMode)
	results := s.retriever.RetrieveImages(ctx, query, mode)

	s.logger.Info(imageModule, "Image search completed", map[string]interface{}{
		"query":  query,
		"mode":   mode,
		"images": len(results),
	})

	images := make([]dto.ImageResult, 0, len(results))
	for _, r := range results {
		images = append(images, dto.ImageResult{
			ImgSrc: r.ImageURL,
			URL:    r.URL,
			Title:  r.Title,
		})
	}
	return &dto.ImageSearchResponse{Images: images}, nil
}

package service

import (
	"context"

	"ai-search-be/internal/dto"
	"ai-search-be/pkg/search"
)

// FeedSource is implemented by search.Discoverer.
type FeedSource interface {
	Discover(ctx context.Context) (search.Feed, error)
}

type IDiscoverService interface {
	Feed(ctx context.Context) (dto.DiscoverResponse, error)
}

type discoverService struct {
	source FeedSource
}

func NewDiscoverService(source FeedSource) IDiscoverService {
	return &discoverService{source: source}
}

func (s *discoverService) Feed(ctx context.Context) (dto.DiscoverResponse, error) {
	feed, err := s.source.Discover(ctx)
	if err != nil {
		return nil, err
	}
	res := make(dto.DiscoverResponse, len(feed))
	for group, results := range feed {
		if results == nil {
			results = []search.Result{}
		}
		res[group] = results
	}
	return res, nil
}

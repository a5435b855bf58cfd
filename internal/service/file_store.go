package service

import (
	"context"

	"ai-search-be/internal/repository/unitofwork"
	"ai-search-be/pkg/answer"
)

// fileStore adapts the file repository to the reranker.
type fileStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewFileStore(uowFactory unitofwork.RepositoryFactory) answer.FileStore {
	return &fileStore{uowFactory: uowFactory}
}

func (s *fileStore) SimilarChunks(ctx context.Context, fileIDs []string, query []float32, limit int) ([]answer.FileChunk, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.FileRepository().SimilarChunks(ctx, fileIDs, query, limit)
	if err != nil {
		return nil, err
	}

	chunks := make([]answer.FileChunk, 0, len(scored))
	for _, sc := range scored {
		chunks = append(chunks, answer.FileChunk{
			FileID:     sc.Chunk.FileId,
			ChunkIndex: sc.Chunk.ChunkIndex,
			FileName:   sc.FileName,
			Content:    sc.Chunk.Content,
			Score:      sc.Similarity,
		})
	}
	return chunks, nil
}

package contract

import (
	"context"

	"ai-search-be/internal/entity"
)

type FileRepository interface {
	CreateFile(ctx context.Context, file *entity.UploadedFile) error
	CreateChunks(ctx context.Context, chunks []*entity.FileChunk) error
	FindDetails(ctx context.Context, ids []string) ([]entity.FileDetails, error)
	SimilarChunks(ctx context.Context, fileIds []string, embedding []float32, limit int) ([]*entity.ScoredFileChunk, error)
}

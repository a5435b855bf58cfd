package contract

import (
	"context"

	"ai-search-be/internal/entity"
	"ai-search-be/internal/repository/specification"
)

type TurnRepository interface {
	Create(ctx context.Context, turn *entity.Turn) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Turn, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Turn, error)
	// DeleteAfter removes every turn of the conversation stored after seq.
	DeleteAfter(ctx context.Context, conversationId string, seq uint64) (int64, error)
	DeleteByConversationId(ctx context.Context, conversationId string) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

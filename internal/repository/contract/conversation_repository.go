package contract

import (
	"context"

	"ai-search-be/internal/entity"
	"ai-search-be/internal/repository/specification"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	CreateIfAbsent(ctx context.Context, conversation *entity.Conversation) (bool, error)
	Update(ctx context.Context, conversation *entity.Conversation) error
	Delete(ctx context.Context, id string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

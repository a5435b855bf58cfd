package unitofwork

import (
	"context"

	"ai-search-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationRepository() contract.ConversationRepository
	TurnRepository() contract.TurnRepository
	FileRepository() contract.FileRepository
}

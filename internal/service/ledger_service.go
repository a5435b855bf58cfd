package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-search-be/internal/dto"
	"ai-search-be/internal/entity"
	"ai-search-be/internal/pkg/logger"
	"ai-search-be/internal/repository/specification"
	"ai-search-be/internal/repository/unitofwork"
	"ai-search-be/pkg/cache"
	"ai-search-be/pkg/events"
	"ai-search-be/pkg/metrics"
	"ai-search-be/pkg/search"

	"gorm.io/gorm"
)

const (
	ledgerModule         = "LEDGER"
	conversationCacheTTL = 5 * time.Minute
)

// EventPublisher is satisfied by the NATS publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// HumanTurn is what a chat request contributes to the ledger before the
// answer is generated.
type HumanTurn struct {
	ConversationId string
	TurnId         string
	Content        string
	FocusMode      string
	FileIds        []string
}

type ILedgerService interface {
	EnsureConversation(ctx context.Context, id, title, focusMode string, fileIds []string) error
	RecordHuman(ctx context.Context, turnId, conversationId, content string) error
	// RecordHumanTurn runs EnsureConversation and RecordHuman in one transaction.
	RecordHumanTurn(ctx context.Context, turn HumanTurn) error
	RecordAssistant(ctx context.Context, turnId, conversationId, text string, sources []search.Result) error

	ListConversations(ctx context.Context) ([]*dto.ConversationResponse, error)
	GetConversation(ctx context.Context, id string) (*dto.ConversationDetailResponse, error)
	DeleteConversation(ctx context.Context, id string) (bool, error)
	InvalidateConversation(ctx context.Context, id string)
}

type ledgerService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher EventPublisher
	store          cache.Store
	logger         logger.ILogger
}

// NewLedgerService wires the ledger. eventPublisher and store may be nil.
func NewLedgerService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher EventPublisher,
	store cache.Store,
	log logger.ILogger,
) ILedgerService {
	return &ledgerService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		store:          store,
		logger:         log,
	}
}

func conversationKey(id string) string {
	return cache.Key("conversation", id)
}

func (s *ledgerService) EnsureConversation(ctx context.Context, id, title, focusMode string, fileIds []string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	_, err := s.ensureConversation(ctx, uow, id, title, focusMode, fileIds)
	s.countWrite("ensure_conversation", err)
	return err
}

func (s *ledgerService) ensureConversation(ctx context.Context, uow unitofwork.UnitOfWork, id, title, focusMode string, fileIds []string) (bool, error) {
	existing, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return false, fmt.Errorf("find conversation: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	attachments, err := uow.FileRepository().FindDetails(ctx, fileIds)
	if err != nil {
		return false, fmt.Errorf("resolve attachments: %w", err)
	}

	conversation := entity.Conversation{
		Id:          id,
		Title:       title,
		FocusMode:   focusMode,
		Attachments: attachments,
		CreatedAt:   time.Now(),
	}
	// a concurrent duplicate submission may have created it since FindOne
	created, err := uow.ConversationRepository().CreateIfAbsent(ctx, &conversation)
	if err != nil {
		return false, fmt.Errorf("create conversation: %w", err)
	}
	return created, nil
}

func (s *ledgerService) RecordHuman(ctx context.Context, turnId, conversationId, content string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	truncated, err := s.recordHuman(ctx, uow, turnId, conversationId, content)
	if err == nil {
		err = uow.Commit()
	}
	s.countWrite("record_human", err)
	if err != nil {
		return err
	}

	s.afterHumanTurn(ctx, conversationId, turnId, truncated)
	return nil
}

func (s *ledgerService) RecordHumanTurn(ctx context.Context, turn HumanTurn) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	var truncated int64
	_, err := s.ensureConversation(ctx, uow, turn.ConversationId, turn.Content, turn.FocusMode, turn.FileIds)
	if err == nil {
		truncated, err = s.recordHuman(ctx, uow, turn.TurnId, turn.ConversationId, turn.Content)
	}
	if err == nil {
		err = uow.Commit()
	}
	s.countWrite("record_human", err)
	if err != nil {
		return err
	}

	s.afterHumanTurn(ctx, turn.ConversationId, turn.TurnId, truncated)
	return nil
}

// recordHuman inserts the turn, or when the TurnId is already known (an edit
// or resend) drops every later turn of the conversation.
func (s *ledgerService) recordHuman(ctx context.Context, uow unitofwork.UnitOfWork, turnId, conversationId, content string) (int64, error) {
	existing, err := uow.TurnRepository().FindOne(ctx, specification.ByTurnID{TurnID: turnId})
	if err != nil {
		return 0, fmt.Errorf("find turn: %w", err)
	}

	if existing == nil {
		turn := entity.Turn{
			TurnId:         turnId,
			ConversationId: conversationId,
			Role:           entity.TurnRoleUser,
			Content:        content,
			CreatedAt:      time.Now(),
		}
		if err := uow.TurnRepository().Create(ctx, &turn); err != nil {
			return 0, fmt.Errorf("create human turn: %w", err)
		}
		return 0, nil
	}

	removed, err := uow.TurnRepository().DeleteAfter(ctx, conversationId, existing.Seq)
	if err != nil {
		return 0, fmt.Errorf("truncate conversation: %w", err)
	}
	return removed, nil
}

func (s *ledgerService) afterHumanTurn(ctx context.Context, conversationId, turnId string, truncated int64) {
	s.InvalidateConversation(ctx, conversationId)
	if truncated == 0 {
		return
	}

	s.logger.Info(ledgerModule, "Conversation truncated after resend", map[string]interface{}{
		"conversation_id": conversationId,
		"turn_id":         turnId,
		"removed":         truncated,
	})
	s.publish(ctx, events.ChatTruncated, map[string]interface{}{
		"conversationId": conversationId,
		"turnId":         turnId,
		"removed":        truncated,
	})
}

func (s *ledgerService) RecordAssistant(ctx context.Context, turnId, conversationId, text string, sources []search.Result) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.TurnRepository().FindOne(ctx, specification.ByTurnID{TurnID: turnId})
	if err != nil {
		s.countWrite("record_assistant", err)
		return fmt.Errorf("find turn: %w", err)
	}
	if existing != nil {
		metrics.LedgerWrites.WithLabelValues("record_assistant", "duplicate").Inc()
		return nil
	}

	if sources == nil {
		sources = []search.Result{}
	}
	turn := entity.Turn{
		TurnId:         turnId,
		ConversationId: conversationId,
		Role:           entity.TurnRoleAssistant,
		Content:        text,
		Sources:        sources,
		CreatedAt:      time.Now(),
	}
	if err := uow.TurnRepository().Create(ctx, &turn); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			metrics.LedgerWrites.WithLabelValues("record_assistant", "duplicate").Inc()
			return nil
		}
		s.countWrite("record_assistant", err)
		return fmt.Errorf("create assistant turn: %w", err)
	}

	s.countWrite("record_assistant", nil)
	s.InvalidateConversation(ctx, conversationId)
	return nil
}

func (s *ledgerService) ListConversations(ctx context.Context) ([]*dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversations, err := uow.ConversationRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		item := toConversationResponse(c)
		res = append(res, &item)
	}
	return res, nil
}

// GetConversation returns nil when the conversation does not exist.
func (s *ledgerService) GetConversation(ctx context.Context, id string) (*dto.ConversationDetailResponse, error) {
	if s.store != nil {
		var cached dto.ConversationDetailResponse
		if ok, err := s.store.Get(ctx, conversationKey(id), &cached); err == nil && ok {
			return &cached, nil
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, nil
	}

	turns, err := uow.TurnRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: id},
		specification.OrderBy{Field: "seq"},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.ConversationDetailResponse{
		Chat:     toConversationResponse(conversation),
		Messages: make([]dto.TurnResponse, 0, len(turns)),
	}
	for _, t := range turns {
		res.Messages = append(res.Messages, dto.TurnResponse{
			MessageId: t.TurnId,
			ChatId:    t.ConversationId,
			Role:      t.Role,
			Content:   t.Content,
			Sources:   t.Sources,
			CreatedAt: t.CreatedAt,
		})
	}

	if s.store != nil {
		if err := s.store.Set(ctx, conversationKey(id), res, conversationCacheTTL); err != nil {
			s.logger.Warn(ledgerModule, "Failed to cache conversation", map[string]interface{}{
				"conversation_id": id,
				"error":           err.Error(),
			})
		}
	}
	return res, nil
}

func (s *ledgerService) DeleteConversation(ctx context.Context, id string) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	existing, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	if err := uow.TurnRepository().DeleteByConversationId(ctx, id); err != nil {
		s.countWrite("delete_conversation", err)
		return false, err
	}
	if err := uow.ConversationRepository().Delete(ctx, id); err != nil {
		s.countWrite("delete_conversation", err)
		return false, err
	}
	if err := uow.Commit(); err != nil {
		s.countWrite("delete_conversation", err)
		return false, err
	}

	s.countWrite("delete_conversation", nil)
	s.InvalidateConversation(ctx, id)
	s.publish(ctx, events.ChatDeleted, map[string]interface{}{"conversationId": id})
	return true, nil
}

func (s *ledgerService) InvalidateConversation(ctx context.Context, id string) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, conversationKey(id)); err != nil {
		s.logger.Warn(ledgerModule, "Failed to invalidate cached conversation", map[string]interface{}{
			"conversation_id": id,
			"error":           err.Error(),
		})
	}
}

// publish is best effort; the ledger never fails because the bus is down.
func (s *ledgerService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn(ledgerModule, "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func (s *ledgerService) countWrite(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		s.logger.Error(ledgerModule, "Ledger write failed", map[string]interface{}{
			"operation": operation,
			"error":     err.Error(),
		})
	}
	metrics.LedgerWrites.WithLabelValues(operation, outcome).Inc()
}

func toConversationResponse(c *entity.Conversation) dto.ConversationResponse {
	files := make([]dto.FileDetailsResponse, 0, len(c.Attachments))
	for _, f := range c.Attachments {
		files = append(files, dto.FileDetailsResponse{FileId: f.FileId, Name: f.Name})
	}
	return dto.ConversationResponse{
		Id:        c.Id,
		Title:     c.Title,
		FocusMode: c.FocusMode,
		Files:     files,
		CreatedAt: c.CreatedAt,
	}
}

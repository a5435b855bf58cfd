package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-search-be/internal/dto"
	"ai-search-be/internal/pkg/logger"
	"ai-search-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const consumerModule = "ASSISTANT_CONSUMER"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber     message.Subscriber
	topicName      string
	ledger         ILedgerService
	eventPublisher EventPublisher
	logger         logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	ledger ILedgerService,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:     subscriber,
		topicName:      topicName,
		ledger:         ledger,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks: a persistence failure is logged and the
// answer is lost rather than retried against a stream that already ended.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.PublishAssistantTurnMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	err := cs.ledger.RecordAssistant(ctx, payload.TurnId, payload.ConversationId, payload.Content, payload.Sources)
	if err != nil {
		cs.logger.Error(consumerModule, "Failed to persist assistant turn", map[string]interface{}{
			"turn_id":         payload.TurnId,
			"conversation_id": payload.ConversationId,
			"error":           err.Error(),
		})
		return
	}

	cs.logger.Info(consumerModule, "Assistant turn persisted", map[string]interface{}{
		"turn_id":         payload.TurnId,
		"conversation_id": payload.ConversationId,
		"chars":           len(payload.Content),
		"sources":         len(payload.Sources),
		"partial":         payload.Partial,
	})

	if cs.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: events.ChatAnswered,
		Data: map[string]interface{}{
			"conversationId": payload.ConversationId,
			"turnId":         payload.TurnId,
			"sources":        len(payload.Sources),
			"partial":        payload.Partial,
		},
		OccurredAt: time.Now(),
	}
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn(consumerModule, "Failed to publish CHAT_ANSWERED event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

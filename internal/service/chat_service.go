package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"ai-search-be/internal/dto"
	"ai-search-be/internal/pkg/logger"
	"ai-search-be/pkg/answer"
	"ai-search-be/pkg/embedding"
	"ai-search-be/pkg/llm"
	"ai-search-be/pkg/llm/factory"
	"ai-search-be/pkg/stream"
)

const (
	chatModule = "CHAT"

	// a run is never cancelled by the client, only bounded
	answerTimeout = 5 * time.Minute
)

// ErrEmptyMessage is returned for a request without content.
var ErrEmptyMessage = errors.New("message content is empty")

// ChatModelResolver is implemented by factory.Registry.
type ChatModelResolver interface {
	Resolve(ref factory.ModelRef) (llm.LLMProvider, factory.ModelRef, error)
	Available() map[string][]string
}

// EmbeddingModelResolver is implemented by embedding.Registry.
type EmbeddingModelResolver interface {
	Resolve(ref embedding.ModelRef) (embedding.EmbeddingProvider, embedding.ModelRef, error)
	Available() map[string][]string
}

// AnswerRunner is implemented by answer.Machine.
type AnswerRunner interface {
	Run(ctx context.Context, in answer.Input) <-chan answer.Event
}

// PreparedChat is a validated request, ready to stream.
type PreparedChat struct {
	ConversationId string
	HumanTurnId    string
	AnswerId       string
	Content        string
	FocusMode      string
	Files          []string
	Input          answer.Input
}

type IChatService interface {
	// Prepare validates the request and resolves models. Its errors wrap
	// ErrEmptyMessage, answer.ErrInvalidFocusMode, llm.ErrUnknownModel or
	// embedding.ErrUnknownModel.
	Prepare(ctx context.Context, req *dto.ChatRequest) (*PreparedChat, error)
	// Stream records the human turn, runs the answer and writes it to sink.
	// It returns once the run has ended and the sink is closed.
	Stream(ctx context.Context, chat *PreparedChat, sink stream.Sink)
}

type chatService struct {
	runner           AnswerRunner
	chatModels       ChatModelResolver
	embeddingModels  EmbeddingModelResolver
	ledger           ILedgerService
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewChatService(
	runner AnswerRunner,
	chatModels ChatModelResolver,
	embeddingModels EmbeddingModelResolver,
	ledger ILedgerService,
	publisherService IPublisherService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		runner:           runner,
		chatModels:       chatModels,
		embeddingModels:  embeddingModels,
		ledger:           ledger,
		publisherService: publisherService,
		logger:           log,
	}
}

func (s *chatService) Prepare(ctx context.Context, req *dto.ChatRequest) (*PreparedChat, error) {
	if req.Message.Content == "" {
		return nil, ErrEmptyMessage
	}

	chatLLM, _, err := s.chatModels.Resolve(factory.ModelRef{
		Provider: req.ChatModel.Provider,
		Name:     req.ChatModel.Name,
	})
	if err != nil {
		return nil, err
	}

	embedder, err := s.resolveEmbedder(req.EmbeddingModel)
	if err != nil {
		return nil, err
	}

	focus, err := answer.LookupFocus(req.FocusMode)
	if err != nil {
		return nil, err
	}

	humanTurnId := req.Message.MessageId
	if humanTurnId == "" {
		humanTurnId = NewMessageID()
	}

	return &PreparedChat{
		ConversationId: req.Message.ChatId,
		HumanTurnId:    humanTurnId,
		AnswerId:       NewMessageID(),
		Content:        req.Message.Content,
		FocusMode:      string(focus.Mode),
		Files:          req.Files,
		Input: answer.Input{
			Query:        req.Message.Content,
			History:      answer.ConvertHistory(req.History),
			Focus:        focus.Mode,
			Optimization: answer.ParseOptimization(req.OptimizationMode),
			FileIDs:      req.Files,
			LLM:          chatLLM,
			Embedder:     embedder,
		},
	}, nil
}

// resolveEmbedder tolerates an unconfigured embedding stack when the client
// did not ask for a model; reranking then keeps retrieval order.
func (s *chatService) resolveEmbedder(sel dto.ModelSelection) (embedding.EmbeddingProvider, error) {
	if s.embeddingModels == nil {
		return nil, nil
	}
	embedder, _, err := s.embeddingModels.Resolve(embedding.ModelRef{Provider: sel.Provider, Name: sel.Name})
	if err != nil {
		if sel.Provider == "" && sel.Name == "" && len(s.embeddingModels.Available()) == 0 {
			return nil, nil
		}
		return nil, err
	}
	return embedder, nil
}

func (s *chatService) Stream(ctx context.Context, chat *PreparedChat, sink stream.Sink) {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), answerTimeout)
	defer cancel()

	err := s.ledger.RecordHumanTurn(runCtx, HumanTurn{
		ConversationId: chat.ConversationId,
		TurnId:         chat.HumanTurnId,
		Content:        chat.Content,
		FocusMode:      chat.FocusMode,
		FileIds:        chat.Files,
	})
	if err != nil {
		s.logger.Error(chatModule, "Failed to record human turn", map[string]interface{}{
			"conversation_id": chat.ConversationId,
			"turn_id":         chat.HumanTurnId,
			"error":           err.Error(),
		})
	}

	s.logger.Info(chatModule, "Answering", map[string]interface{}{
		"conversation_id": chat.ConversationId,
		"answer_id":       chat.AnswerId,
		"focus_mode":      chat.FocusMode,
		"optimization":    chat.Input.Optimization,
		"files":           len(chat.Files),
	})

	persist := func(c stream.Completion) {
		s.enqueueAssistantTurn(chat.ConversationId, c)
	}
	mux := stream.NewMultiplexer(sink, chat.AnswerId, persist, s.logger)
	mux.Run(s.runner.Run(runCtx, chat.Input))
}

// enqueueAssistantTurn hands the completion to the ledger consumer. It runs
// while the stream closes, so it must not block on the database.
func (s *chatService) enqueueAssistantTurn(conversationId string, c stream.Completion) {
	payload, err := json.Marshal(dto.PublishAssistantTurnMessage{
		TurnId:         c.MessageID,
		ConversationId: conversationId,
		Content:        c.Text,
		Sources:        c.Sources,
		Partial:        c.Partial,
	})
	if err != nil {
		s.logger.Error(chatModule, "Failed to encode assistant turn", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := s.publisherService.Publish(context.Background(), payload); err != nil {
		s.logger.Error(chatModule, "Failed to enqueue assistant turn", map[string]interface{}{
			"conversation_id": conversationId,
			"turn_id":         c.MessageID,
			"error":           err.Error(),
		})
	}
}

// NewMessageID returns 14 random hex characters.
func NewMessageID() string {
	var b [7]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

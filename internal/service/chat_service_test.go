package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"ai-search-be/internal/dto"
	"ai-search-be/internal/pkg/logger"
	"ai-search-be/internal/repository/unitofwork"
	"ai-search-be/pkg/answer"
	"ai-search-be/pkg/embedding"
	"ai-search-be/pkg/llm"
	"ai-search-be/pkg/llm/factory"
	"ai-search-be/pkg/search"
	"ai-search-be/pkg/stream"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	generated string
	err       error
}

func (s *stubLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return s.generated, s.err
}

func (s *stubLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	return s.generated, s.err
}

func (s *stubLLM) ChatStream(_ context.Context, _ []llm.Message, onToken llm.TokenHandler, _ ...llm.Option) error {
	if s.err != nil {
		return s.err
	}
	return onToken(s.generated)
}

type stubChatModels struct{ provider llm.LLMProvider }

func (s stubChatModels) Resolve(ref factory.ModelRef) (llm.LLMProvider, factory.ModelRef, error) {
	if ref.Provider == "bogus" {
		return nil, ref, fmt.Errorf("%w: provider %q", llm.ErrUnknownModel, ref.Provider)
	}
	return s.provider, ref, nil
}

func (s stubChatModels) Available() map[string][]string {
	return map[string][]string{"ollama": {"llama3"}}
}

type emptyEmbeddingModels struct{}

func (emptyEmbeddingModels) Resolve(ref embedding.ModelRef) (embedding.EmbeddingProvider, embedding.ModelRef, error) {
	return nil, ref, fmt.Errorf("%w: provider %q", embedding.ErrUnknownModel, ref.Provider)
}

func (emptyEmbeddingModels) Available() map[string][]string { return map[string][]string{} }

type scriptedRunner struct {
	events []answer.Event
	inputs []answer.Input
}

func (r *scriptedRunner) Run(_ context.Context, in answer.Input) <-chan answer.Event {
	r.inputs = append(r.inputs, in)
	out := make(chan answer.Event, len(r.events))
	for _, ev := range r.events {
		out <- ev
	}
	close(out)
	return out
}

func validChatRequest() *dto.ChatRequest {
	return &dto.ChatRequest{
		Message:          dto.ChatMessage{MessageId: "h1", ChatId: "c1", Content: "What is QUIC?"},
		OptimizationMode: "speed",
		FocusMode:        "webSearch",
		History:          [][2]string{{"human", "hi"}, {"assistant", "hello"}},
	}
}

func TestChatService_Prepare(t *testing.T) {
	svc := NewChatService(&scriptedRunner{}, stubChatModels{provider: &stubLLM{}}, emptyEmbeddingModels{}, nil, nil, logger.NewNopLogger())

	tests := []struct {
		name    string
		mutate  func(r *dto.ChatRequest)
		wantErr error
	}{
		{name: "valid", mutate: func(*dto.ChatRequest) {}},
		{name: "empty content", mutate: func(r *dto.ChatRequest) { r.Message.Content = "" }, wantErr: ErrEmptyMessage},
		{name: "whitespace content is a message", mutate: func(r *dto.ChatRequest) { r.Message.Content = "  " }},
		{name: "unknown chat model", mutate: func(r *dto.ChatRequest) { r.ChatModel.Provider = "bogus" }, wantErr: llm.ErrUnknownModel},
		{name: "explicit unknown embedding model", mutate: func(r *dto.ChatRequest) { r.EmbeddingModel.Provider = "nope" }, wantErr: embedding.ErrUnknownModel},
		{name: "unknown focus", mutate: func(r *dto.ChatRequest) { r.FocusMode = "tarotReading" }, wantErr: answer.ErrInvalidFocusMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validChatRequest()
			tt.mutate(req)

			chat, err := svc.Prepare(context.Background(), req)

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, chat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "c1", chat.ConversationId)
			assert.Equal(t, "h1", chat.HumanTurnId)
			assert.Equal(t, answer.OptimizeSpeed, chat.Input.Optimization)
			assert.Nil(t, chat.Input.Embedder)
			require.Len(t, chat.Input.History, 2)
			assert.Equal(t, llm.RoleUser, chat.Input.History[0].Role)
		})
	}
}

func TestChatService_PrepareGeneratesMissingIDs(t *testing.T) {
	svc := NewChatService(&scriptedRunner{}, stubChatModels{provider: &stubLLM{}}, emptyEmbeddingModels{}, nil, nil, logger.NewNopLogger())
	req := validChatRequest()
	req.Message.MessageId = ""

	chat, err := svc.Prepare(context.Background(), req)

	require.NoError(t, err)
	hex14 := regexp.MustCompile(`^[0-9a-f]{14}$`)
	assert.Regexp(t, hex14, chat.HumanTurnId)
	assert.Regexp(t, hex14, chat.AnswerId)
	assert.NotEqual(t, chat.HumanTurnId, chat.AnswerId)
}

func TestChatService_StreamPersistsAssistantTurn(t *testing.T) {
	db := newTestDB(t)
	log := logger.NewNopLogger()
	pub := &recordingPublisher{}
	ledger := NewLedgerService(unitofwork.NewRepositoryFactory(db), pub, nil, log)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	consumer := NewConsumerService(pubSub, AssistantTurnTopic, ledger, pub, log)
	require.NoError(t, consumer.Consume(ctx))

	sources := []search.Result{{Title: "QUIC", URL: "https://quic.dev", Content: "transport"}}
	runner := &scriptedRunner{events: []answer.Event{
		answer.SourcesEvent(sources),
		answer.TokenEvent("QUIC is "),
		answer.TokenEvent("a transport."),
		answer.EndEvent(),
	}}
	svc := NewChatService(runner, stubChatModels{provider: &stubLLM{}}, emptyEmbeddingModels{},
		ledger, NewPublisherService(AssistantTurnTopic, pubSub), log)

	chat, err := svc.Prepare(ctx, validChatRequest())
	require.NoError(t, err)

	var out bytes.Buffer
	svc.Stream(ctx, chat, stream.NewPlainSink(&out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	var last map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &last))
	assert.Equal(t, "messageEnd", last["type"])

	require.Eventually(t, func() bool {
		detail, err := ledger.GetConversation(ctx, "c1")
		return err == nil && detail != nil && len(detail.Messages) == 2
	}, 2*time.Second, 10*time.Millisecond)

	detail, err := ledger.GetConversation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "What is QUIC?", detail.Messages[0].Content)
	assistant := detail.Messages[1]
	assert.Equal(t, chat.AnswerId, assistant.MessageId)
	assert.Equal(t, "QUIC is a transport.", assistant.Content)
	require.Len(t, assistant.Sources, 1)
	assert.Equal(t, "https://quic.dev", assistant.Sources[0].URL)

	require.Eventually(t, func() bool {
		for _, typ := range pub.types() {
			if typ == "CHAT_ANSWERED" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestChatService_StreamErrorPersistsNothing(t *testing.T) {
	db := newTestDB(t)
	log := logger.NewNopLogger()
	ledger := NewLedgerService(unitofwork.NewRepositoryFactory(db), nil, nil, log)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, NewConsumerService(pubSub, AssistantTurnTopic, ledger, nil, log).Consume(ctx))

	runner := &scriptedRunner{events: []answer.Event{
		answer.TokenEvent("partial"),
		answer.ErrorEvent("An error occurred while generating the answer."),
	}}
	svc := NewChatService(runner, stubChatModels{provider: &stubLLM{}}, emptyEmbeddingModels{},
		ledger, NewPublisherService(AssistantTurnTopic, pubSub), log)

	chat, err := svc.Prepare(ctx, validChatRequest())
	require.NoError(t, err)

	var out bytes.Buffer
	svc.Stream(ctx, chat, stream.NewPlainSink(&out))
	assert.Contains(t, out.String(), `"type":"error"`)

	// give the consumer a chance to (wrongly) persist something
	time.Sleep(50 * time.Millisecond)
	detail, err := ledger.GetConversation(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Len(t, detail.Messages, 1)
}

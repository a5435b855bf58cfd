package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-search-be/internal/constant"
	"ai-search-be/internal/pkg/logger"
	"ai-search-be/pkg/embedding"
	"ai-search-be/pkg/llm"
	"ai-search-be/pkg/search"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const machineModule = "ANSWER"

// Messages surfaced to clients. Internal detail stays in the logs.
const (
	msgRephraseFailed   = "Failed to understand the question. Please try again."
	msgGenerationFailed = "An error occurred while generating the answer."
)

var tracer = otel.Tracer("ai-search-be/answer")

type State string

const (
	StateRephrasing State = "rephrasing"
	StateRetrieving State = "retrieving"
	StateGenerating State = "generating"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Retriever is the merged retrieval the machine depends on.
type Retriever interface {
	Retrieve(ctx context.Context, query string, mode search.MergeMode, opts search.Options) []search.Result
}

type Input struct {
	Query        string
	History      []llm.Message
	Focus        FocusMode
	Optimization OptimizationMode
	FileIDs      []string
	LLM          llm.LLMProvider
	Embedder     embedding.EmbeddingProvider
}

// Machine runs the rephrase, retrieve, generate sequence for one query.
type Machine struct {
	retriever Retriever
	reranker  *Reranker
	logger    logger.ILogger
	now       func() time.Time
}

func NewMachine(retriever Retriever, reranker *Reranker, log logger.ILogger) *Machine {
	return &Machine{
		retriever: retriever,
		reranker:  reranker,
		logger:    log,
		now:       time.Now,
	}
}

// Run starts a run and returns its event channel. The channel carries zero
// or more Sources/Token events followed by exactly one End or Error, and is
// closed afterwards. The caller must drain it.
func (m *Machine) Run(ctx context.Context, in Input) <-chan Event {
	out := make(chan Event, 32)
	go func() {
		defer close(out)
		r := &run{m: m, in: in, out: out, state: StateRephrasing}
		r.execute(ctx)
	}()
	return out
}

type run struct {
	m     *Machine
	in    Input
	out   chan<- Event
	state State
}

func (r *run) transition(to State) {
	r.m.logger.Debug(machineModule, "State transition", map[string]interface{}{
		"from":  r.state,
		"to":    to,
		"focus": r.in.Focus,
	})
	r.state = to
}

func (r *run) fail(message string, err error) {
	r.m.logger.Error(machineModule, "Answer run failed", map[string]interface{}{
		"state": r.state,
		"focus": r.in.Focus,
		"error": err.Error(),
	})
	r.transition(StateFailed)
	r.out <- ErrorEvent(message)
}

func (r *run) execute(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "answer.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("answer.focus", string(r.in.Focus)),
		attribute.String("answer.optimization", string(r.in.Optimization)),
	)

	focus, err := LookupFocus(string(r.in.Focus))
	if err != nil {
		r.fail("Invalid focus mode", err)
		return
	}
	if r.in.LLM == nil {
		r.fail(msgGenerationFailed, fmt.Errorf("no chat model"))
		return
	}

	query := r.in.Query
	var docs []search.Result

	if focus.Retrieving {
		rephrased, err := r.rephrase(ctx, focus)
		if err != nil {
			r.fail(msgRephraseFailed, err)
			return
		}

		if rephrased == constant.RephraseNotNeeded {
			r.m.logger.Debug(machineModule, "Retrieval not needed", map[string]interface{}{"query": query})
		} else {
			r.transition(StateRetrieving)
			docs = r.m.retriever.Retrieve(ctx, rephrased, focus.MergeMode, search.Options{Engines: focus.Engines})
			query = rephrased
		}
	}

	if r.m.reranker != nil && (len(docs) > 0 || len(r.in.FileIDs) > 0) {
		docs = r.m.reranker.Rerank(ctx, rerankInput{
			Query:        query,
			Docs:         docs,
			FileIDs:      r.in.FileIDs,
			Focus:        focus,
			Optimization: r.in.Optimization,
			Embedder:     r.in.Embedder,
		})
	}
	span.SetAttributes(attribute.Int("answer.sources", len(docs)))

	r.transition(StateGenerating)
	if len(docs) > 0 {
		r.out <- SourcesEvent(docs)
	}

	messages := r.generationMessages(focus, docs)
	err = r.in.LLM.ChatStream(ctx, messages, func(chunk string) error {
		r.out <- TokenEvent(chunk)
		return nil
	})
	if err != nil {
		r.fail(msgGenerationFailed, err)
		return
	}

	r.transition(StateCompleted)
	r.out <- EndEvent()
}

func (r *run) rephrase(ctx context.Context, focus FocusConfig) (string, error) {
	prompt := fmt.Sprintf(focus.RetrieverPrompt, FormatHistory(r.in.History), r.in.Query)
	raw, err := r.in.LLM.Generate(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("rephrase: %w", err)
	}

	rephrased := StripThink(raw)
	if rephrased == "" {
		return r.in.Query, nil
	}
	if strings.EqualFold(strings.Trim(rephrased, "`\"' "), constant.RephraseNotNeeded) {
		return constant.RephraseNotNeeded, nil
	}
	return rephrased, nil
}

func (r *run) generationMessages(focus FocusConfig, docs []search.Result) []llm.Message {
	system := fmt.Sprintf(focus.ResponsePrompt, BuildContext(docs), r.m.now().UTC().Format(time.RFC3339))

	messages := make([]llm.Message, 0, len(r.in.History)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	messages = append(messages, r.in.History...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: r.in.Query})
	return messages
}

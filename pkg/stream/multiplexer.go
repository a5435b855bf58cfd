package stream

import (
	"strings"
	"sync"
	"sync/atomic"

	"ai-search-be/internal/pkg/logger"
	"ai-search-be/pkg/answer"
	"ai-search-be/pkg/metrics"
	"ai-search-be/pkg/search"
)

const multiplexerModule = "STREAM"

// Completion is the assistant turn as accumulated by a Multiplexer.
type Completion struct {
	MessageID string
	Text      string
	Sources   []search.Result

	// Partial is set when the transport broke before the answer ended.
	Partial bool
}

// PersistFunc receives the completion at most once per stream.
type PersistFunc func(Completion)

// Multiplexer is the sole writer onto a Sink for one answer run.
type Multiplexer struct {
	sink      Sink
	messageID string
	persist   PersistFunc
	logger    logger.ILogger

	closed      atomic.Bool
	persistOnce sync.Once

	text    strings.Builder
	sources []search.Result
	dropped int
}

func NewMultiplexer(sink Sink, messageID string, persist PersistFunc, log logger.ILogger) *Multiplexer {
	return &Multiplexer{
		sink:      sink,
		messageID: messageID,
		persist:   persist,
		logger:    log,
	}
}

// Run consumes events until the channel closes. Events after the stream is
// closed are drained and dropped so the producer never blocks. A channel that
// closes before any terminal event closes the sink and persists a partial
// completion.
func (m *Multiplexer) Run(events <-chan answer.Event) {
	for ev := range events {
		m.Handle(ev)
	}
	// producer gave up without end or error
	if m.close() {
		m.persistCompletion(true)
	}
	if m.dropped > 0 {
		m.logger.Debug(multiplexerModule, "Dropped events after close", map[string]interface{}{
			"message_id": m.messageID,
			"dropped":    m.dropped,
		})
	}
}

// Handle processes a single event.
func (m *Multiplexer) Handle(ev answer.Event) {
	if m.closed.Load() {
		m.dropped++
		return
	}

	switch ev.Type {
	case answer.EventToken:
		m.text.WriteString(ev.Text)
		m.write(ev)
	case answer.EventSources:
		m.sources = ev.Sources
		m.write(ev)
	case answer.EventEnd:
		m.write(ev)
		m.close()
		m.persistCompletion(false)
	case answer.EventError:
		m.write(ev)
		m.close()
	}
}

// Closed reports whether the stream accepts no more writes.
func (m *Multiplexer) Closed() bool { return m.closed.Load() }

func (m *Multiplexer) write(ev answer.Event) {
	if m.closed.Load() {
		return
	}

	frame, err := Encode(frameFor(ev, m.messageID))
	if err != nil {
		m.logger.Error(multiplexerModule, "Failed to encode frame", map[string]interface{}{
			"message_id": m.messageID,
			"type":       ev.Type,
			"error":      err.Error(),
		})
		return
	}

	if err := m.sink.Write(frame); err != nil {
		m.transportFailure(err)
		return
	}
	metrics.StreamEvents.WithLabelValues(string(ev.Type)).Inc()
}

// transportFailure marks the stream closed and persists what was received
// so far.
func (m *Multiplexer) transportFailure(err error) {
	metrics.StreamTransportFailures.Inc()
	m.logger.Warn(multiplexerModule, "Client stream write failed", map[string]interface{}{
		"message_id": m.messageID,
		"error":      err.Error(),
	})
	if m.close() {
		m.persistCompletion(true)
	}
}

// close closes the sink once; it reports whether this call did the closing.
func (m *Multiplexer) close() bool {
	if !m.closed.CompareAndSwap(false, true) {
		return false
	}
	if err := m.sink.Close(); err != nil {
		m.logger.Warn(multiplexerModule, "Failed to close client stream", map[string]interface{}{
			"message_id": m.messageID,
			"error":      err.Error(),
		})
	}
	return true
}

func (m *Multiplexer) persistCompletion(partial bool) {
	if m.persist == nil {
		return
	}
	m.persistOnce.Do(func() {
		m.persist(Completion{
			MessageID: m.messageID,
			Text:      m.text.String(),
			Sources:   m.sources,
			Partial:   partial,
		})
	})
}

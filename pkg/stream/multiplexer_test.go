package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"ai-search-be/internal/pkg/logger"
	"ai-search-be/pkg/answer"
	"ai-search-be/pkg/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	frames   []string
	closes   int
	failFrom int // fail writes from this index on; 0 disables
}

func (s *recordingSink) Write(frame []byte) error {
	if s.failFrom > 0 && len(s.frames) >= s.failFrom-1 {
		return errors.New("broken pipe")
	}
	s.frames = append(s.frames, string(frame))
	return nil
}

func (s *recordingSink) Close() error {
	s.closes++
	return nil
}

type persisted struct {
	mu    sync.Mutex
	calls []Completion
}

func (p *persisted) fn(c Completion) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, c)
}

func feed(events ...answer.Event) <-chan answer.Event {
	ch := make(chan answer.Event, len(events))
	for _, e := range events {
		ch <- e
	}
	close(ch)
	return ch
}

func decode(t *testing.T, line string) map[string]interface{} {
	t.Helper()
	require.True(t, strings.HasSuffix(line, "\n"))
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &m))
	return m
}

func TestMultiplexer_NoWriteAfterEnd(t *testing.T) {
	sink := &recordingSink{}
	p := &persisted{}
	m := NewMultiplexer(sink, "abc", p.fn, logger.NewNopLogger())

	m.Run(feed(answer.TokenEvent("hello"), answer.EndEvent(), answer.TokenEvent("late")))

	require.Len(t, sink.frames, 2)
	assert.Equal(t, map[string]interface{}{"type": "message", "data": "hello", "messageId": "abc"}, decode(t, sink.frames[0]))
	assert.Equal(t, map[string]interface{}{"type": "messageEnd", "messageId": "abc"}, decode(t, sink.frames[1]))
	assert.Equal(t, 1, sink.closes)

	require.Len(t, p.calls, 1)
	assert.Equal(t, "hello", p.calls[0].Text)
	assert.False(t, p.calls[0].Partial)
}

func TestMultiplexer_FullRun(t *testing.T) {
	sink := &recordingSink{}
	p := &persisted{}
	sources := []search.Result{{Title: "Go", URL: "https://go.dev", Content: "c"}}

	NewMultiplexer(sink, "id1", p.fn, logger.NewNopLogger()).Run(feed(
		answer.SourcesEvent(sources),
		answer.TokenEvent("Go "),
		answer.TokenEvent("rocks"),
		answer.EndEvent(),
	))

	require.Len(t, sink.frames, 4)
	first := decode(t, sink.frames[0])
	assert.Equal(t, "sources", first["type"])
	assert.Equal(t, "id1", first["messageId"])
	data := first["data"].([]interface{})
	assert.Equal(t, "https://go.dev", data[0].(map[string]interface{})["url"])

	require.Len(t, p.calls, 1)
	assert.Equal(t, Completion{MessageID: "id1", Text: "Go rocks", Sources: sources}, p.calls[0])
}

func TestMultiplexer_ErrorClosesWithoutPersisting(t *testing.T) {
	sink := &recordingSink{}
	p := &persisted{}

	NewMultiplexer(sink, "id", p.fn, logger.NewNopLogger()).Run(feed(
		answer.TokenEvent("par"),
		answer.ErrorEvent("An error occurred"),
		answer.EndEvent(),
		answer.ErrorEvent("again"),
	))

	require.Len(t, sink.frames, 2)
	assert.Equal(t, map[string]interface{}{"type": "error", "data": "An error occurred"}, decode(t, sink.frames[1]))
	assert.Equal(t, 1, sink.closes)
	assert.Empty(t, p.calls)
}

func TestMultiplexer_TransportFailurePersistsPartial(t *testing.T) {
	sink := &recordingSink{failFrom: 2}
	p := &persisted{}
	m := NewMultiplexer(sink, "id", p.fn, logger.NewNopLogger())

	m.Run(feed(
		answer.TokenEvent("one "),
		answer.TokenEvent("two "),
		answer.TokenEvent("three"),
		answer.EndEvent(),
	))

	assert.True(t, m.Closed())
	assert.Len(t, sink.frames, 1)
	assert.Equal(t, 1, sink.closes)

	require.Len(t, p.calls, 1, "persisted exactly once")
	assert.Equal(t, "one two ", p.calls[0].Text)
	assert.True(t, p.calls[0].Partial)
}

func TestMultiplexer_ChannelClosedWithoutTerminalEvent(t *testing.T) {
	tests := []struct {
		name   string
		events []answer.Event
		text   string
	}{
		{name: "after tokens", events: []answer.Event{answer.TokenEvent("half an "), answer.TokenEvent("answer")}, text: "half an answer"},
		{name: "no events", events: nil, text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			p := &persisted{}
			m := NewMultiplexer(sink, "id", p.fn, logger.NewNopLogger())

			m.Run(feed(tt.events...))

			assert.True(t, m.Closed())
			assert.Equal(t, 1, sink.closes)
			assert.Len(t, sink.frames, len(tt.events))
			require.Len(t, p.calls, 1)
			assert.Equal(t, tt.text, p.calls[0].Text)
			assert.True(t, p.calls[0].Partial)
		})
	}
}

func TestMultiplexer_DrainsProducerAfterClose(t *testing.T) {
	sink := &recordingSink{}
	ch := make(chan answer.Event)
	done := make(chan struct{})

	go func() {
		defer close(done)
		NewMultiplexer(sink, "id", nil, logger.NewNopLogger()).Run(ch)
	}()

	ch <- answer.EndEvent()
	for i := 0; i < 100; i++ {
		ch <- answer.TokenEvent("x")
	}
	close(ch)
	<-done

	assert.Len(t, sink.frames, 1)
}

func TestWriterSink_FlushesEachFrame(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriterSize(&buf, 4096)
	sink := NewWriterSink(w)

	require.NoError(t, sink.Write([]byte("{\"type\":\"message\"}\n")))
	assert.Equal(t, "{\"type\":\"message\"}\n", buf.String())
	require.NoError(t, sink.Close())
}

func TestFrameFor_ErrorWithoutMessage(t *testing.T) {
	f := frameFor(answer.ErrorEvent(""), "id")
	assert.Equal(t, Frame{Type: FrameError, Data: "Error with no details"}, f)
}

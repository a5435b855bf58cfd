package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-search-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider_Chat(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"model":"m","message":{"role":"assistant","content":"hello"},"done":true}`)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "m")
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: "model", Content: "earlier"},
		{Role: llm.RoleUser, Content: "hi"},
	}, llm.WithMaxTokens(64))

	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.False(t, got.Stream)
	assert.Equal(t, llm.RoleAssistant, got.Messages[0].Role)
	assert.Equal(t, 64, got.Options.NumPredict)
}

func TestOllamaProvider_ChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lines := []string{
			`{"message":{"role":"assistant","content":"Hel"},"done":false}`,
			``,
			`{"message":{"role":"assistant","content":"lo"},"done":false}`,
			`{"message":{"role":"assistant","content":""},"done":true}`,
			`{"message":{"role":"assistant","content":"ignored"},"done":false}`,
		}
		_, _ = io.WriteString(w, strings.Join(lines, "\n"))
	}))
	defer srv.Close()

	var chunks []string
	err := NewOllamaProvider(srv.URL, "m").ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, func(c string) error {
		chunks = append(chunks, c)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo"}, chunks)
}

func TestOllamaProvider_ChatStreamErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "http error", body: `model not found`, code: http.StatusNotFound},
		{name: "stream error", body: `{"error":"out of memory"}`, code: http.StatusOK},
		{name: "bad chunk", body: `{not json`, code: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			err := NewOllamaProvider(srv.URL, "m").ChatStream(context.Background(), nil, func(string) error { return nil })
			assert.Error(t, err)
		})
	}
}

func TestOllamaProvider_ChatStreamHandlerStops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{\"message\":{\"content\":\"a\"}}\n{\"message\":{\"content\":\"b\"}}\n")
	}))
	defer srv.Close()

	stop := errors.New("stop")
	calls := 0
	err := NewOllamaProvider(srv.URL, "m").ChatStream(context.Background(), nil, func(string) error {
		calls++
		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

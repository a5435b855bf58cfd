package controller

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"ai-search-be/internal/dto"
	"ai-search-be/internal/service"
	"ai-search-be/pkg/search"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLedger struct {
	service.ILedgerService
	conversations map[string]*dto.ConversationDetailResponse
}

func (s *stubLedger) ListConversations(context.Context) ([]*dto.ConversationResponse, error) {
	out := make([]*dto.ConversationResponse, 0, len(s.conversations))
	for _, c := range s.conversations {
		chat := c.Chat
		out = append(out, &chat)
	}
	return out, nil
}

func (s *stubLedger) GetConversation(_ context.Context, id string) (*dto.ConversationDetailResponse, error) {
	return s.conversations[id], nil
}

func (s *stubLedger) DeleteConversation(_ context.Context, id string) (bool, error) {
	_, ok := s.conversations[id]
	delete(s.conversations, id)
	return ok, nil
}

func doRequest(t *testing.T, app *fiber.App, method, path string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestConversationController(t *testing.T) {
	ledger := &stubLedger{conversations: map[string]*dto.ConversationDetailResponse{
		"c1": {
			Chat:     dto.ConversationResponse{Id: "c1", Title: "What is QUIC?", FocusMode: "webSearch"},
			Messages: []dto.TurnResponse{{MessageId: "h1", ChatId: "c1", Role: "user", Content: "What is QUIC?", Sources: []search.Result{}}},
		},
	}}
	app := newTestApp(func(r fiber.Router) {
		NewConversationController(ledger).RegisterRoutes(r)
	})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "list", method: "GET", path: "/api/chats", wantStatus: 200, wantBody: `"title":"What is QUIC?"`},
		{name: "show", method: "GET", path: "/api/chats/c1", wantStatus: 200, wantBody: `"messageId":"h1"`},
		{name: "show unknown", method: "GET", path: "/api/chats/nope", wantStatus: 404, wantBody: `"message":"Chat not found"`},
		{name: "delete", method: "DELETE", path: "/api/chats/c1", wantStatus: 200, wantBody: `"success":true`},
		{name: "delete again", method: "DELETE", path: "/api/chats/c1", wantStatus: 404, wantBody: `"message":"Chat not found"`},
	}

	// cases run in order; delete depends on show
	for _, tt := range tests {
		status, body := doRequest(t, app, tt.method, tt.path)
		assert.Equal(t, tt.wantStatus, status, tt.name)
		assert.Contains(t, body, tt.wantBody, tt.name)
	}
}

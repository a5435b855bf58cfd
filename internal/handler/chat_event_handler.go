package handler

import (
	"context"
	"encoding/json"

	"ai-search-be/internal/pkg/logger"
	"ai-search-be/internal/service"
	internalWS "ai-search-be/internal/websocket"
	"ai-search-be/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const chatEventModule = "CHAT_EVENTS"

// ChatEventHandler turns ledger domain events into cache invalidation and
// pushes them to sockets watching the conversation.
type ChatEventHandler struct {
	ledger service.ILedgerService
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewChatEventHandler(ledger service.ILedgerService, hub *internalWS.Hub, log logger.ILogger) *ChatEventHandler {
	return &ChatEventHandler{
		ledger: ledger,
		hub:    hub,
		logger: log,
	}
}

func (h *ChatEventHandler) RegisterRoutes(r fiber.Router, middleware ...fiber.Handler) {
	g := r.Group("/chats", middleware...)
	g.Get("/:id/events", h.ServeWs)
}

// Subjects lists the bus subjects this handler consumes.
func (h *ChatEventHandler) Subjects() []string {
	return []string{
		events.Subject(events.ChatAnswered),
		events.Subject(events.ChatTruncated),
		events.Subject(events.ChatDeleted),
	}
}

// HandleEvent matches pktNats.EventHandler.
func (h *ChatEventHandler) HandleEvent(ctx context.Context, event events.Event) error {
	conversationID, _ := event.Payload()["conversationId"].(string)
	if conversationID == "" {
		h.logger.Warn(chatEventModule, "Event without conversationId", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	h.ledger.InvalidateConversation(ctx, conversationID)

	data, err := json.Marshal(map[string]interface{}{
		"type": event.EventType(),
		"data": event.Payload(),
	})
	if err != nil {
		return err
	}
	delivered := h.hub.Notify(conversationID, data)

	h.logger.Debug(chatEventModule, "Event dispatched", map[string]interface{}{
		"type":            event.EventType(),
		"conversation_id": conversationID,
		"delivered":       delivered,
	})
	return nil
}

// ServeWs lets a client watch one conversation for persisted answers,
// truncations and deletion.
func (h *ChatEventHandler) ServeWs(c *fiber.Ctx) error {
	conversationID := c.Params("id")
	if conversationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing chat id"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			internalWS.ServeWs(h.hub, conn, conversationID)
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

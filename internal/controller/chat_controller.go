package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"

	"ai-search-be/internal/dto"
	"ai-search-be/internal/pkg/logger"
	"ai-search-be/internal/pkg/serverutils"
	"ai-search-be/internal/service"
	internalWS "ai-search-be/internal/websocket"
	"ai-search-be/pkg/answer"
	"ai-search-be/pkg/embedding"
	"ai-search-be/pkg/llm"
	"ai-search-be/pkg/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const chatControllerModule = "CHAT_CONTROLLER"

type IChatController interface {
	RegisterRoutes(r fiber.Router, middleware ...fiber.Handler)
	Chat(ctx *fiber.Ctx) error
	ChatWs(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
	logger  logger.ILogger
}

func NewChatController(service service.IChatService, log logger.ILogger) IChatController {
	return &chatController{service: service, logger: log}
}

func (c *chatController) RegisterRoutes(r fiber.Router, middleware ...fiber.Handler) {
	h := r.Group("/chat", middleware...)
	h.Post("", c.Chat)
	h.Get("/ws", c.ChatWs)
}

// chatError maps domain errors to the 400 messages clients expect.
func chatError(err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		return serverutils.BadRequest("Please provide a message to process")
	case errors.Is(err, llm.ErrUnknownModel):
		return serverutils.BadRequest("Invalid chat model")
	case errors.Is(err, embedding.ErrUnknownModel):
		return serverutils.BadRequest("Invalid embedding model")
	case errors.Is(err, answer.ErrInvalidFocusMode):
		return serverutils.BadRequest("Invalid focus mode")
	}
	return err
}

func (c *chatController) prepare(ctx context.Context, req *dto.ChatRequest) (*service.PreparedChat, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	chat, err := c.service.Prepare(ctx, req)
	if err != nil {
		return nil, chatError(err)
	}
	return chat, nil
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}

	chat, err := c.prepare(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	// the fiber ctx is recycled once the handler returns
	runCtx := context.WithoutCancel(ctx.UserContext())
	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		c.service.Stream(runCtx, chat, stream.NewWriterSink(w))
	})
	return nil
}

// ChatWs reads one request frame and streams the answer as text frames.
func (c *chatController) ChatWs(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(c.serveChatWs)(ctx)
}

func (c *chatController) serveChatWs(conn *websocket.Conn) {
	sink := internalWS.NewConnSink(conn)
	defer sink.Close()

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return
	}

	var req dto.ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.rejectWs(sink, "Invalid request body")
		return
	}

	chat, err := c.prepare(context.Background(), &req)
	if err != nil {
		if msg, ok := serverutils.ClientMessage(err); ok {
			c.rejectWs(sink, msg)
			return
		}
		c.logger.Error(chatControllerModule, "Failed to prepare chat", map[string]interface{}{"error": err.Error()})
		c.rejectWs(sink, "An error occurred while processing chat request")
		return
	}

	c.service.Stream(context.Background(), chat, sink)
}

func (c *chatController) rejectWs(sink stream.Sink, message string) {
	frame, err := stream.Encode(stream.Frame{Type: stream.FrameError, Data: message})
	if err != nil {
		return
	}
	if err := sink.Write(frame); err != nil {
		c.logger.Warn(chatControllerModule, "Failed to write error frame", map[string]interface{}{"error": err.Error()})
	}
}

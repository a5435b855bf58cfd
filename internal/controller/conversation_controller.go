package controller

import (
	"ai-search-be/internal/pkg/serverutils"
	"ai-search-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router, middleware ...fiber.Handler)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type conversationController struct {
	service service.ILedgerService
}

func NewConversationController(service service.ILedgerService) IConversationController {
	return &conversationController{service: service}
}

func (c *conversationController) RegisterRoutes(r fiber.Router, middleware ...fiber.Handler) {
	h := r.Group("/chats", middleware...)
	h.Get("", c.GetAll)
	h.Get("/:id", c.Show)
	h.Delete("/:id", c.Delete)
}

func (c *conversationController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.ListConversations(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all chats", res))
}

func (c *conversationController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.GetConversation(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	if res == nil {
		return serverutils.NotFound("Chat not found")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show chat", res))
}

func (c *conversationController) Delete(ctx *fiber.Ctx) error {
	deleted, err := c.service.DeleteConversation(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	if !deleted {
		return serverutils.NotFound("Chat not found")
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete chat", nil))
}

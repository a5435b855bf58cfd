package controller

import (
	"ai-search-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IModelController interface {
	RegisterRoutes(r fiber.Router, middleware ...fiber.Handler)
	GetAll(ctx *fiber.Ctx) error
}

type modelController struct {
	service service.IModelService
}

func NewModelController(service service.IModelService) IModelController {
	return &modelController{service: service}
}

func (c *modelController) RegisterRoutes(r fiber.Router, middleware ...fiber.Handler) {
	r.Get("/models", append(middleware, c.GetAll)...)
}

func (c *modelController) GetAll(ctx *fiber.Ctx) error {
	return ctx.JSON(c.service.Available())
}

package controller

import (
	"errors"

	"ai-search-be/internal/dto"
	"ai-search-be/internal/pkg/serverutils"
	"ai-search-be/internal/service"
	"ai-search-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
)

type IImageController interface {
	RegisterRoutes(r fiber.Router, middleware ...fiber.Handler)
	Search(ctx *fiber.Ctx) error
}

type imageController struct {
	service service.IImageService
}

func NewImageController(service service.IImageService) IImageController {
	return &imageController{service: service}
}

func (c *imageController) RegisterRoutes(r fiber.Router, middleware ...fiber.Handler) {
	h := r.Group("/images", middleware...)
	h.Post("", c.Search)
}

func (c *imageController) Search(ctx *fiber.Ctx) error {
	var req dto.ImageSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Search(ctx.UserContext(), &req)
	if err != nil {
		if errors.Is(err, llm.ErrUnknownModel) {
			return serverutils.BadRequest("Invalid chat model")
		}
		return err
	}

	return ctx.JSON(res)
}

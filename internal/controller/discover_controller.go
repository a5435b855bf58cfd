package controller

import (
	"ai-search-be/internal/pkg/logger"
	"ai-search-be/internal/pkg/serverutils"
	"ai-search-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDiscoverController interface {
	RegisterRoutes(r fiber.Router, middleware ...fiber.Handler)
	Feed(ctx *fiber.Ctx) error
}

type discoverController struct {
	service service.IDiscoverService
	logger  logger.ILogger
}

func NewDiscoverController(service service.IDiscoverService, log logger.ILogger) IDiscoverController {
	return &discoverController{service: service, logger: log}
}

func (c *discoverController) RegisterRoutes(r fiber.Router, middleware ...fiber.Handler) {
	h := r.Group("/discover", middleware...)
	h.Get("", c.Feed)
}

func (c *discoverController) Feed(ctx *fiber.Ctx) error {
	res, err := c.service.Feed(ctx.UserContext())
	if err != nil {
		c.logger.Error("DISCOVER", "Failed to build discover feed", map[string]interface{}{"error": err.Error()})
		return serverutils.Internal("An error has occurred")
	}
	return ctx.JSON(res)
}

package identity

import (
	"go-negotiation/internal/common/api"
	"go-negotiation/internal/config"
	"go-negotiation/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type IdentityApi struct {
	controller *IdentityController
	config     *config.Config
}

func NewIdentityApi(controller *IdentityController, cfg *config.Config) api.Route {
	return &IdentityApi{
		controller: controller,
		config:     cfg,
	}
}

func (h *IdentityApi) Setup(app *fiber.App) {
	app.Get("/api/me", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.GetCurrentActor)
}

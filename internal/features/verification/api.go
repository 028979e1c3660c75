package verification

import (
	"go-negotiation/internal/common/api"
	"go-negotiation/internal/config"
	"go-negotiation/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type VerificationApi struct {
	controller *VerificationController
	config     *config.Config
}

func NewVerificationApi(controller *VerificationController, config *config.Config) api.Route {
	return &VerificationApi{
		controller: controller,
		config:     config,
	}
}

func (h *VerificationApi) Setup(app *fiber.App) {
	group := app.Group("/api/value-verifications", middleware.AuthMiddleware(h.config.SkipAuth))
	group.Get("/", h.controller.List)
	group.Post("/", h.controller.Submit)
	group.Get("/:id", h.controller.Get)
	group.Post("/:id/verify", h.controller.Verify)
	group.Post("/:id/reject", h.controller.Reject)
}

package scheduling

import (
	"go-negotiation/internal/common/api"
	"go-negotiation/internal/config"
	"go-negotiation/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SchedulingApi struct {
	controller *SchedulingController
	config     *config.Config
}

func NewSchedulingApi(controller *SchedulingController, config *config.Config) api.Route {
	return &SchedulingApi{
		controller: controller,
		config:     config,
	}
}

func (h *SchedulingApi) Setup(app *fiber.App) {
	group := app.Group("/api/scheduling-exceptions", middleware.AuthMiddleware(h.config.SkipAuth))
	group.Get("/", h.controller.List)
	group.Post("/", h.controller.Create)
	group.Get("/:id", h.controller.Get)
	group.Post("/:id/approve", h.controller.Approve)
	group.Post("/:id/reject", h.controller.Reject)
}

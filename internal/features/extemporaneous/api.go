package extemporaneous

import (
	"go-negotiation/internal/common/api"
	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/config"
	"go-negotiation/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ExtemporaneousApi struct {
	controller *ExtemporaneousController
	config     *config.Config
}

func NewExtemporaneousApi(controller *ExtemporaneousController, config *config.Config) api.Route {
	return &ExtemporaneousApi{
		controller: controller,
		config:     config,
	}
}

func (h *ExtemporaneousApi) Setup(app *fiber.App) {
	negotiator := middleware.RequireAnyRole(string(common_models.RoleNegotiator), string(common_models.RoleAdmin))

	group := app.Group("/api/extemporaneous-negotiations", middleware.AuthMiddleware(h.config.SkipAuth))
	group.Get("/", h.controller.List)
	group.Post("/", negotiator, h.controller.Create)
	group.Get("/:id", h.controller.Get)
	group.Post("/:id/approve", h.controller.Approve)
	group.Post("/:id/reject", h.controller.Reject)
	group.Post("/:id/formalize", negotiator, h.controller.Formalize)
	group.Post("/:id/cancel", negotiator, h.controller.Cancel)
}

package negotiation

import (
	"go-negotiation/internal/common/api"
	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/config"
	"go-negotiation/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type NegotiationApi struct {
	controller *NegotiationController
	config     *config.Config
}

func NewNegotiationApi(controller *NegotiationController, config *config.Config) api.Route {
	return &NegotiationApi{
		controller: controller,
		config:     config,
	}
}

func (h *NegotiationApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)
	negotiator := middleware.RequireAnyRole(string(common_models.RoleNegotiator), string(common_models.RoleAdmin))

	negotiations := app.Group("/api/negotiations", auth)
	negotiations.Get("/", h.controller.ListNegotiations)
	negotiations.Post("/", negotiator, h.controller.CreateNegotiation)
	negotiations.Get("/:id", h.controller.GetNegotiation)
	negotiations.Post("/:id/submit", negotiator, h.controller.SubmitNegotiation)
	negotiations.Post("/:id/approve", h.controller.ApproveNegotiation) // role checked by the engine
	negotiations.Post("/:id/cancel", negotiator, h.controller.CancelNegotiation)
	negotiations.Post("/:id/recompute", h.controller.RecomputeStatus)
	negotiations.Post("/:id/contract", negotiator, h.controller.GenerateContract)
	negotiations.Post("/:id/cycle", negotiator, h.controller.StartNewCycle)
	negotiations.Post("/:id/fork", negotiator, h.controller.ForkNegotiation)
	negotiations.Post("/:id/rollback", negotiator, h.controller.RollbackNegotiation)

	items := app.Group("/api/negotiation-items", auth)
	items.Post("/:id/respond", middleware.RequireAnyRole(string(common_models.RoleProvider), string(common_models.RoleNegotiator)), h.controller.RespondToItem)
}

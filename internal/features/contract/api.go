package contract

import (
	"go-negotiation/internal/common/api"
	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/config"
	"go-negotiation/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ContractApi struct {
	controller *ContractController
	config     *config.Config
}

func NewContractApi(controller *ContractController, config *config.Config) api.Route {
	return &ContractApi{
		controller: controller,
		config:     config,
	}
}

func (h *ContractApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)

	contracts := app.Group("/api/contracts", auth)
	contracts.Get("/", h.controller.ListContracts)
	contracts.Get("/:id", h.controller.GetContract)

	// Step roles are enforced by the pipeline.
	steps := app.Group("/api/contract-approval", auth)
	steps.Post("/:id/resubmit", middleware.RequireAnyRole(string(common_models.RoleNegotiator), string(common_models.RoleAdmin)), h.controller.Resubmit)
	steps.Post("/:id/:step", h.controller.ActOnStep)
}

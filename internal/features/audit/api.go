package audit

import (
	"go-negotiation/internal/common/api"
	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/config"
	"go-negotiation/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
}

func NewAuditApi(controller *AuditController, config *config.Config) api.Route {
	return &AuditApi{
		controller: controller,
		config:     config,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit-logs", middleware.AuthMiddleware(h.config.SkipAuth))

	audit.Get("/", middleware.RequireAnyRole(string(common_models.RoleAuditor), string(common_models.RoleAdmin)), h.controller.ListLogs)
}

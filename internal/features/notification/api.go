package notification

import (
	"go-negotiation/internal/common/api"
	"go-negotiation/internal/config"
	"go-negotiation/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type NotificationApi struct {
	controller *NotificationController
	config     *config.Config
}

func NewNotificationApi(controller *NotificationController, config *config.Config) api.Route {
	return &NotificationApi{
		controller: controller,
		config:     config,
	}
}

func (h *NotificationApi) Setup(app *fiber.App) {
	group := app.Group("/api/notifications", middleware.AuthMiddleware(h.config.SkipAuth))
	group.Get("/", h.controller.List)

	app.Get("/api/ws", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.Upgrade, websocket.New(h.controller.Stream))
}

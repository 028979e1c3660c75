package notification

import (
	"strconv"

	"go-negotiation/internal/common/api"
	common_models "go-negotiation/internal/common/models"
	"go-negotiation/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type NotificationController struct {
	service NotificationService
	hub     *Hub
	log     *zap.Logger
}

func NewNotificationController(service NotificationService, hub *Hub, log *zap.Logger) *NotificationController {
	return &NotificationController{
		service: service,
		hub:     hub,
		log:     log,
	}
}

// List godoc
// @Summary List my notifications
// @Tags notifications
// @Produce json
// @Router /api/notifications [get]
func (c *NotificationController) List(ctx *fiber.Ctx) error {
	actor, ok := api.Actor(ctx)
	if !ok {
		return api.Unauthorized(ctx)
	}

	page, _ := strconv.ParseInt(ctx.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(ctx.Query("limit", "10"), 10, 64)

	notifications, total, err := c.service.ListForActor(ctx.UserContext(), actor, common_models.Page{Page: page, Limit: limit})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"data":  notifications,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Upgrade rejects non-websocket requests before the handshake.
func (c *NotificationController) Upgrade(ctx *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(ctx) {
		return ctx.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Stream keeps the connection registered until the client goes away.
func (c *NotificationController) Stream(conn *websocket.Conn) {
	claims, ok := conn.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		_ = conn.Close()
		return
	}
	actor := common_models.Actor{ID: claims.UserID}
	for _, r := range claims.Roles {
		actor.Roles = append(actor.Roles, common_models.Role(r))
	}

	unregister := c.hub.Register(actor, conn)
	defer unregister()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			c.log.Debug("websocket closed", zap.String("actor_id", actor.ID), zap.Error(err))
			return
		}
	}
}

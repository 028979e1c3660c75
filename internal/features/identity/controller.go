package identity

import (
	"go-negotiation/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type IdentityController struct{}

func NewIdentityController() *IdentityController {
	return &IdentityController{}
}

// GetCurrentActor godoc
// @Summary Current actor
// @Description Returns the user id and roles resolved from the bearer token
// @Tags identity
// @Produce json
// @Success 200 {object} models.Actor
// @Router /api/me [get]
func (c *IdentityController) GetCurrentActor(ctx *fiber.Ctx) error {
	actor, ok := api.Actor(ctx)
	if !ok {
		return api.Unauthorized(ctx)
	}
	return ctx.JSON(actor)
}

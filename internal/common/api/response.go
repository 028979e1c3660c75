package api

import (
	"go-negotiation/internal/common/errs"
	"go-negotiation/internal/common/models"
	"go-negotiation/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

var kindStatus = map[errs.Kind]int{
	errs.KindValidation: fiber.StatusUnprocessableEntity,
	errs.KindState:      fiber.StatusConflict,
	errs.KindPermission: fiber.StatusForbidden,
	errs.KindOutOfOrder: fiber.StatusConflict,
	errs.KindLimit:      fiber.StatusUnprocessableEntity,
	errs.KindConflict:   fiber.StatusConflict,
	errs.KindNotFound:   fiber.StatusNotFound,
}

// StatusFor maps an error to the HTTP status the boundary should answer with.
func StatusFor(err error) int {
	if code, ok := kindStatus[errs.KindOf(err)]; ok {
		return code
	}
	return fiber.StatusInternalServerError
}

// Error writes err as {"error": ..., "kind": ...}. Overrides replace the
// default status for specific kinds.
func Error(ctx *fiber.Ctx, err error, overrides ...map[errs.Kind]int) error {
	kind := errs.KindOf(err)
	code := StatusFor(err)
	for _, o := range overrides {
		if c, ok := o[kind]; ok {
			code = c
		}
	}
	body := fiber.Map{"error": err.Error()}
	if kind != "" {
		body["kind"] = kind
		if errs.IsRetryable(err) {
			body["retryable"] = true
		}
	}
	return ctx.Status(code).JSON(body)
}

// BadRequest answers a body that could not be parsed.
func BadRequest(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
}

// Actor converts the JWT claims placed by the auth middleware into an explicit actor.
func Actor(ctx *fiber.Ctx) (models.Actor, bool) {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok || claims == nil {
		return models.Actor{}, false
	}
	actor := models.Actor{ID: claims.UserID}
	for _, r := range claims.Roles {
		actor.Roles = append(actor.Roles, models.Role(r))
	}
	return actor, true
}

// Unauthorized answers a request that reached a handler without claims.
func Unauthorized(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
}

package verification

import (
	"strconv"

	"go-negotiation/internal/common/api"
	common_models "go-negotiation/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

type VerificationController struct {
	Service VerificationService
}

func NewVerificationController(service VerificationService) *VerificationController {
	return &VerificationController{Service: service}
}

// Submit godoc
// @Summary Submit a value for verification
// @Tags verification
// @Accept json
// @Param body body SubmitInput true "Value"
// @Success 201 {object} ValueVerification
// @Router /api/value-verifications [post]
func (ctrl *VerificationController) Submit(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	var in SubmitInput
	if err := c.BodyParser(&in); err != nil {
		return api.BadRequest(c)
	}
	v, err := ctrl.Service.Submit(c.UserContext(), actor, in)
	if err != nil {
		return api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

// List godoc
// @Summary List value verifications
// @Tags verification
// @Param has_mismatch query bool false "Only mismatches"
// @Router /api/value-verifications [get]
func (ctrl *VerificationController) List(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	filter := ListFilter{
		Status:     Status(c.Query("status")),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		Page:       common_models.Page{Page: page, Limit: limit},
	}
	if raw := c.Query("has_mismatch"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			filter.HasMismatch = &b
		}
	}

	items, total, err := ctrl.Service.List(c.UserContext(), filter)
	if err != nil {
		return api.Error(c, err)
	}
	p := filter.Page.Normalize()
	return c.JSON(fiber.Map{"data": items, "total": total, "page": p.Page, "limit": p.Limit})
}

// Get godoc
// @Summary Get a value verification
// @Tags verification
// @Param id path string true "ID"
// @Router /api/value-verifications/{id} [get]
func (ctrl *VerificationController) Get(c *fiber.Ctx) error {
	v, err := ctrl.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(v)
}

// Verify godoc
// @Summary Verify a submitted value
// @Tags verification
// @Param id path string true "ID"
// @Param body body VerifyInput true "Verification"
// @Router /api/value-verifications/{id}/verify [post]
func (ctrl *VerificationController) Verify(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	var in VerifyInput
	if err := c.BodyParser(&in); err != nil {
		return api.BadRequest(c)
	}
	v, err := ctrl.Service.Verify(c.UserContext(), actor, c.Params("id"), in)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(v)
}

// Reject godoc
// @Summary Reject a submitted value
// @Tags verification
// @Param id path string true "ID"
// @Param body body RejectInput true "Rejection"
// @Router /api/value-verifications/{id}/reject [post]
func (ctrl *VerificationController) Reject(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	var in RejectInput
	if err := c.BodyParser(&in); err != nil {
		return api.BadRequest(c)
	}
	v, err := ctrl.Service.Reject(c.UserContext(), actor, c.Params("id"), in)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(v)
}

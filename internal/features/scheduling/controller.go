package scheduling

import (
	"strconv"

	"go-negotiation/internal/common/api"
	common_models "go-negotiation/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

type SchedulingController struct {
	Service SchedulingService
}

func NewSchedulingController(service SchedulingService) *SchedulingController {
	return &SchedulingController{Service: service}
}

type decisionRequest struct {
	Notes string `json:"notes"`
}

// Create godoc
// @Summary Request a scheduling exception
// @Tags scheduling
// @Accept json
// @Param body body CreateInput true "Request"
// @Success 201 {object} SchedulingException
// @Router /api/scheduling-exceptions [post]
func (ctrl *SchedulingController) Create(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	var in CreateInput
	if err := c.BodyParser(&in); err != nil {
		return api.BadRequest(c)
	}
	e, err := ctrl.Service.Create(c.UserContext(), actor, in)
	if err != nil {
		return api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(e)
}

// List godoc
// @Summary List scheduling exceptions
// @Tags scheduling
// @Router /api/scheduling-exceptions [get]
func (ctrl *SchedulingController) List(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	filter := ListFilter{
		Status:         Status(c.Query("status")),
		SolicitationID: c.Query("solicitation_id"),
		ProviderID:     c.Query("provider_id"),
		Page:           common_models.Page{Page: page, Limit: limit},
	}
	items, total, err := ctrl.Service.List(c.UserContext(), filter)
	if err != nil {
		return api.Error(c, err)
	}
	p := filter.Page.Normalize()
	return c.JSON(fiber.Map{"data": items, "total": total, "page": p.Page, "limit": p.Limit})
}

// Get godoc
// @Summary Get a scheduling exception
// @Tags scheduling
// @Param id path string true "ID"
// @Router /api/scheduling-exceptions/{id} [get]
func (ctrl *SchedulingController) Get(c *fiber.Ctx) error {
	e, err := ctrl.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(e)
}

func (ctrl *SchedulingController) decision(c *fiber.Ctx) (string, error) {
	var req decisionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return "", err
		}
	}
	return req.Notes, nil
}

// Approve godoc
// @Summary Approve a scheduling exception (director)
// @Tags scheduling
// @Param id path string true "ID"
// @Router /api/scheduling-exceptions/{id}/approve [post]
func (ctrl *SchedulingController) Approve(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	notes, err := ctrl.decision(c)
	if err != nil {
		return api.BadRequest(c)
	}
	e, err := ctrl.Service.Approve(c.UserContext(), actor, c.Params("id"), notes)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(e)
}

// Reject godoc
// @Summary Reject a scheduling exception (director)
// @Tags scheduling
// @Param id path string true "ID"
// @Router /api/scheduling-exceptions/{id}/reject [post]
func (ctrl *SchedulingController) Reject(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	notes, err := ctrl.decision(c)
	if err != nil {
		return api.BadRequest(c)
	}
	e, err := ctrl.Service.Reject(c.UserContext(), actor, c.Params("id"), notes)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(e)
}

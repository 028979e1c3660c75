package extemporaneous

import (
	"strconv"

	"go-negotiation/internal/common/api"
	common_models "go-negotiation/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

type ExtemporaneousController struct {
	Service ExtemporaneousService
}

func NewExtemporaneousController(service ExtemporaneousService) *ExtemporaneousController {
	return &ExtemporaneousController{Service: service}
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type formalizeRequest struct {
	AddendumNumber string `json:"addendum_number"`
}

// Create godoc
// @Summary Request an extemporaneous negotiation
// @Tags extemporaneous
// @Accept json
// @Produce json
// @Param body body CreateInput true "Request"
// @Success 201 {object} ExtemporaneousNegotiation
// @Router /api/extemporaneous-negotiations [post]
func (ctrl *ExtemporaneousController) Create(c *fiber.Ctx) error {
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
// @Summary List extemporaneous negotiations
// @Tags extemporaneous
// @Produce json
// @Param status query string false "Status"
// @Param urgency_level query string false "low, medium or high"
// @Router /api/extemporaneous-negotiations [get]
func (ctrl *ExtemporaneousController) List(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	filter := ListFilter{
		Status:       Status(c.Query("status")),
		NegotiableID: c.Query("negotiable_id"),
		Urgency:      Urgency(c.Query("urgency_level")),
		Page:         common_models.Page{Page: page, Limit: limit},
	}
	items, total, err := ctrl.Service.List(c.UserContext(), filter)
	if err != nil {
		return api.Error(c, err)
	}

	p := filter.Page.Normalize()
	return c.JSON(fiber.Map{"data": items, "total": total, "page": p.Page, "limit": p.Limit})
}

// Get godoc
// @Summary Get an extemporaneous negotiation
// @Tags extemporaneous
// @Param id path string true "ID"
// @Router /api/extemporaneous-negotiations/{id} [get]
func (ctrl *ExtemporaneousController) Get(c *fiber.Ctx) error {
	e, err := ctrl.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(e)
}

// Approve godoc
// @Summary Approve, optionally with a different value
// @Tags extemporaneous
// @Param id path string true "ID"
// @Param body body ApproveInput false "Decision"
// @Router /api/extemporaneous-negotiations/{id}/approve [post]
func (ctrl *ExtemporaneousController) Approve(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	var in ApproveInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return api.BadRequest(c)
		}
	}

	e, err := ctrl.Service.Approve(c.UserContext(), actor, c.Params("id"), in)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(e)
}

// Reject godoc
// @Summary Reject
// @Tags extemporaneous
// @Param id path string true "ID"
// @Router /api/extemporaneous-negotiations/{id}/reject [post]
func (ctrl *ExtemporaneousController) Reject(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	var req notesRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return api.BadRequest(c)
		}
	}

	e, err := ctrl.Service.Reject(c.UserContext(), actor, c.Params("id"), req.Notes)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(e)
}

// Formalize godoc
// @Summary Formalize an approved request with its contract addendum
// @Tags extemporaneous
// @Param id path string true "ID"
// @Router /api/extemporaneous-negotiations/{id}/formalize [post]
func (ctrl *ExtemporaneousController) Formalize(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	var req formalizeRequest
	if err := c.BodyParser(&req); err != nil {
		return api.BadRequest(c)
	}

	e, err := ctrl.Service.Formalize(c.UserContext(), actor, c.Params("id"), req.AddendumNumber)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(e)
}

// Cancel godoc
// @Summary Cancel
// @Tags extemporaneous
// @Param id path string true "ID"
// @Router /api/extemporaneous-negotiations/{id}/cancel [post]
func (ctrl *ExtemporaneousController) Cancel(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	e, err := ctrl.Service.Cancel(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(e)
}

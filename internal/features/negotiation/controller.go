package negotiation

import (
	"strconv"

	"go-negotiation/internal/common/api"
	"go-negotiation/internal/common/errs"
	common_models "go-negotiation/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

type NegotiationController struct {
	Service NegotiationService
}

func NewNegotiationController(service NegotiationService) *NegotiationController {
	return &NegotiationController{Service: service}
}

// rollbackStatus: a disallowed rollback target is reported as 422.
var rollbackStatus = map[errs.Kind]int{errs.KindState: fiber.StatusUnprocessableEntity}

type contractRequest struct {
	TemplateID string `json:"template_id"`
}

type cycleRequest struct {
	Notes string `json:"notes"`
}

type forkRequest struct {
	Groups []ForkGroup `json:"groups"`
}

type rollbackRequest struct {
	TargetStatus Status `json:"target_status"`
	Reason       string `json:"reason"`
}

// CreateNegotiation godoc
// @Summary Create a negotiation
// @Tags negotiations
// @Accept json
// @Produce json
// @Param negotiation body CreateInput true "Negotiation"
// @Success 201 {object} Negotiation
// @Router /api/negotiations [post]
func (ctrl *NegotiationController) CreateNegotiation(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	var in CreateInput
	if err := c.BodyParser(&in); err != nil {
		return api.BadRequest(c)
	}

	n, err := ctrl.Service.Create(c.UserContext(), actor, in)
	if err != nil {
		return api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(n)
}

// ListNegotiations godoc
// @Summary List negotiations
// @Tags negotiations
// @Produce json
// @Param status query string false "Status"
// @Param negotiable_type query string false "Negotiable type"
// @Param negotiable_id query string false "Negotiable ID"
// @Param parent_id query string false "Parent negotiation ID"
// @Router /api/negotiations [get]
func (ctrl *NegotiationController) ListNegotiations(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	filter := ListFilter{
		Status:         Status(c.Query("status")),
		NegotiableType: common_models.NegotiableType(c.Query("negotiable_type")),
		NegotiableID:   c.Query("negotiable_id"),
		ParentID:       c.Query("parent_id"),
		Page:           common_models.Page{Page: page, Limit: limit},
	}

	negotiations, total, err := ctrl.Service.List(c.UserContext(), filter)
	if err != nil {
		return api.Error(c, err)
	}

	p := filter.Page.Normalize()
	return c.JSON(fiber.Map{
		"data":  negotiations,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	})
}

// GetNegotiation godoc
// @Summary Get a negotiation
// @Tags negotiations
// @Produce json
// @Param id path string true "Negotiation ID"
// @Success 200 {object} Negotiation
// @Router /api/negotiations/{id} [get]
func (ctrl *NegotiationController) GetNegotiation(c *fiber.Ctx) error {
	n, err := ctrl.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(n)
}

type transitionFunc func(c *fiber.Ctx, actor common_models.Actor) (*Negotiation, error)

// transition wraps the status-changing endpoints that take no body.
func (ctrl *NegotiationController) transition(fn transitionFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := api.Actor(c)
		if !ok {
			return api.Unauthorized(c)
		}
		n, err := fn(c, actor)
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(n)
	}
}

// SubmitNegotiation godoc
// @Summary Submit a draft negotiation
// @Tags negotiations
// @Param id path string true "Negotiation ID"
// @Router /api/negotiations/{id}/submit [post]
func (ctrl *NegotiationController) SubmitNegotiation(c *fiber.Ctx) error {
	return ctrl.transition(func(c *fiber.Ctx, actor common_models.Actor) (*Negotiation, error) {
		return ctrl.Service.Submit(c.UserContext(), actor, c.Params("id"))
	})(c)
}

// ApproveNegotiation godoc
// @Summary Approve a complete or partially complete negotiation
// @Tags negotiations
// @Param id path string true "Negotiation ID"
// @Router /api/negotiations/{id}/approve [post]
func (ctrl *NegotiationController) ApproveNegotiation(c *fiber.Ctx) error {
	return ctrl.transition(func(c *fiber.Ctx, actor common_models.Actor) (*Negotiation, error) {
		return ctrl.Service.Approve(c.UserContext(), actor, c.Params("id"))
	})(c)
}

// CancelNegotiation godoc
// @Summary Cancel a negotiation
// @Tags negotiations
// @Param id path string true "Negotiation ID"
// @Router /api/negotiations/{id}/cancel [post]
func (ctrl *NegotiationController) CancelNegotiation(c *fiber.Ctx) error {
	return ctrl.transition(func(c *fiber.Ctx, actor common_models.Actor) (*Negotiation, error) {
		return ctrl.Service.Cancel(c.UserContext(), actor, c.Params("id"))
	})(c)
}

// RecomputeStatus godoc
// @Summary Recompute the aggregate status from item responses
// @Tags negotiations
// @Param id path string true "Negotiation ID"
// @Router /api/negotiations/{id}/recompute [post]
func (ctrl *NegotiationController) RecomputeStatus(c *fiber.Ctx) error {
	return ctrl.transition(func(c *fiber.Ctx, actor common_models.Actor) (*Negotiation, error) {
		return ctrl.Service.RecomputeStatus(c.UserContext(), actor, c.Params("id"))
	})(c)
}

// GenerateContract godoc
// @Summary Generate the contract of a complete or approved negotiation
// @Tags negotiations
// @Param id path string true "Negotiation ID"
// @Router /api/negotiations/{id}/contract [post]
func (ctrl *NegotiationController) GenerateContract(c *fiber.Ctx) error {
	var req contractRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return api.BadRequest(c)
		}
	}
	return ctrl.transition(func(c *fiber.Ctx, actor common_models.Actor) (*Negotiation, error) {
		return ctrl.Service.GenerateContract(c.UserContext(), actor, c.Params("id"), req.TemplateID)
	})(c)
}

// StartNewCycle godoc
// @Summary Start a new negotiation cycle
// @Tags negotiations
// @Param id path string true "Negotiation ID"
// @Failure 422 {object} map[string]interface{} "Cycle limit reached"
// @Router /api/negotiations/{id}/cycle [post]
func (ctrl *NegotiationController) StartNewCycle(c *fiber.Ctx) error {
	var req cycleRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return api.BadRequest(c)
		}
	}
	return ctrl.transition(func(c *fiber.Ctx, actor common_models.Actor) (*Negotiation, error) {
		return ctrl.Service.StartNewCycle(c.UserContext(), actor, c.Params("id"), req.Notes)
	})(c)
}

// ForkNegotiation godoc
// @Summary Split the items of a negotiation into child negotiations
// @Tags negotiations
// @Param id path string true "Negotiation ID"
// @Success 201 {array} Negotiation
// @Router /api/negotiations/{id}/fork [post]
func (ctrl *NegotiationController) ForkNegotiation(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	var req forkRequest
	if err := c.BodyParser(&req); err != nil {
		return api.BadRequest(c)
	}

	children, err := ctrl.Service.Fork(c.UserContext(), actor, c.Params("id"), req.Groups)
	if err != nil {
		return api.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(children)
}

// RollbackNegotiation godoc
// @Summary Revert a negotiation to an earlier status
// @Tags negotiations
// @Param id path string true "Negotiation ID"
// @Failure 422 {object} map[string]interface{} "Target not allowed"
// @Router /api/negotiations/{id}/rollback [post]
func (ctrl *NegotiationController) RollbackNegotiation(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	var req rollbackRequest
	if err := c.BodyParser(&req); err != nil {
		return api.BadRequest(c)
	}

	n, err := ctrl.Service.Rollback(c.UserContext(), actor, c.Params("id"), req.TargetStatus, req.Reason)
	if err != nil {
		return api.Error(c, err, rollbackStatus)
	}
	return c.JSON(n)
}

// RespondToItem godoc
// @Summary Answer one negotiation item
// @Tags negotiations
// @Param id path string true "Item ID"
// @Param response body ItemResponse true "Response"
// @Success 200 {object} NegotiationItem
// @Router /api/negotiation-items/{id}/respond [post]
func (ctrl *NegotiationController) RespondToItem(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	var in ItemResponse
	if err := c.BodyParser(&in); err != nil {
		return api.BadRequest(c)
	}

	item, err := ctrl.Service.RespondToItem(c.UserContext(), actor, c.Params("id"), in)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(item)
}

package contract

import (
	"strconv"

	"go-negotiation/internal/common/api"
	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/features/approval"

	"github.com/gofiber/fiber/v2"
)

type ContractController struct {
	Service ContractService
}

func NewContractController(service ContractService) *ContractController {
	return &ContractController{Service: service}
}

type resubmitRequest struct {
	Notes string `json:"notes"`
}

// ListContracts godoc
// @Summary List contracts
// @Tags contracts
// @Produce json
// @Param status query string false "in_review, rejected or approved"
// @Param negotiation_id query string false "Negotiation ID"
// @Router /api/contracts [get]
func (ctrl *ContractController) ListContracts(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	filter := ListFilter{
		Status:        approval.Phase(c.Query("status")),
		NegotiationID: c.Query("negotiation_id"),
		Page:          common_models.Page{Page: page, Limit: limit},
	}
	contracts, total, err := ctrl.Service.List(c.UserContext(), filter)
	if err != nil {
		return api.Error(c, err)
	}

	p := filter.Page.Normalize()
	return c.JSON(fiber.Map{
		"data":  contracts,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	})
}

// GetContract godoc
// @Summary Get a contract with its approval state
// @Tags contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} Contract
// @Router /api/contracts/{id} [get]
func (ctrl *ContractController) GetContract(c *fiber.Ctx) error {
	contract, err := ctrl.Service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(contract)
}

// ActOnStep godoc
// @Summary Approve or reject a contract approval step
// @Tags contracts
// @Accept json
// @Produce json
// @Param id path string true "Contract ID"
// @Param step path string true "Step name"
// @Param body body approval.ActInput true "Action"
// @Success 200 {object} approval.Step
// @Router /api/contract-approval/{id}/{step} [post]
func (ctrl *ContractController) ActOnStep(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	var in approval.ActInput
	if err := c.BodyParser(&in); err != nil {
		return api.BadRequest(c)
	}

	step, err := ctrl.Service.Act(c.UserContext(), actor, c.Params("id"), approval.StepName(c.Params("step")), in)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(step)
}

// Resubmit godoc
// @Summary Resubmit a rejected contract
// @Tags contracts
// @Param id path string true "Contract ID"
// @Success 200 {object} Contract
// @Router /api/contract-approval/{id}/resubmit [post]
func (ctrl *ContractController) Resubmit(c *fiber.Ctx) error {
	actor, ok := api.Actor(c)
	if !ok {
		return api.Unauthorized(c)
	}
	var req resubmitRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return api.BadRequest(c)
		}
	}

	contract, err := ctrl.Service.Resubmit(c.UserContext(), actor, c.Params("id"), req.Notes)
	if err != nil {
		return api.Error(c, err)
	}
	return c.JSON(contract)
}

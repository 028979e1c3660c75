package scheduling

import (
	"strings"
	"time"

	"go-negotiation/internal/common/errs"
	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/features/approval"
)

func New(in CreateInput, actor common_models.Actor, now time.Time) (*SchedulingException, error) {
	solicitation := strings.TrimSpace(in.SolicitationID)
	provider := strings.TrimSpace(in.ProviderID)
	if solicitation == "" || provider == "" {
		return nil, errs.Validation("solicitation_id and provider_id are required")
	}
	justification, err := approval.Justification(in.Justification)
	if err != nil {
		return nil, err
	}
	if in.RecommendedValue != nil && in.RecommendedValue.IsNegative() {
		return nil, errs.Validation("recommended_value must not be negative")
	}
	if in.ProviderValue != nil && in.ProviderValue.IsNegative() {
		return nil, errs.Validation("provider_value must not be negative")
	}
	if in.RecommendedValue != nil && in.ProviderValue != nil && !in.ProviderValue.GreaterThan(*in.RecommendedValue) {
		return nil, errs.Validation("provider_value (%s) must exceed recommended_value (%s)", in.ProviderValue, in.RecommendedValue)
	}

	return &SchedulingException{
		SolicitationID:   solicitation,
		ProviderID:       provider,
		Justification:    justification,
		RecommendedValue: in.RecommendedValue,
		ProviderValue:    in.ProviderValue,
		Status:           StatusPending,
		Approval:         Pipeline.NewState(),
		CreatedBy:        actor.ID,
		UpdatedBy:        actor.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Decide applies the single director decision. Both outcomes are terminal.
func (e *SchedulingException) Decide(action approval.Action, notes string, actor common_models.Actor, roles approval.RoleChecker, now time.Time) error {
	if e.Status != StatusPending {
		return errs.State("scheduling exception was already %s", e.Status)
	}
	if _, err := Pipeline.Act(&e.Approval, StepExceptionApproval, approval.ActInput{Action: action, Notes: notes}, actor, roles, now); err != nil {
		return err
	}
	if action == approval.ActionApprove {
		e.Status = StatusApproved
	} else {
		e.Status = StatusRejected
	}
	at := now
	e.DecidedBy = actor.ID
	e.DecidedAt = &at
	e.UpdatedBy = actor.ID
	e.UpdatedAt = now
	return nil
}

package extemporaneous

import (
	"strings"
	"time"

	"go-negotiation/internal/common/errs"
	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/features/approval"
)

func New(in CreateInput, actor common_models.Actor, now time.Time) (*ExtemporaneousNegotiation, error) {
	ref := common_models.NegotiableRef{Type: in.NegotiableType, ID: strings.TrimSpace(in.NegotiableID)}
	if ref.ID == "" || !ref.Type.Valid() {
		return nil, errs.Validation("a valid negotiable reference is required")
	}
	tuss := strings.TrimSpace(in.TussCode)
	if tuss == "" {
		return nil, errs.Validation("tuss_code is required")
	}
	if in.RequestedValue.IsNegative() {
		return nil, errs.Validation("requested_value must not be negative")
	}
	justification, err := approval.Justification(in.Justification)
	if err != nil {
		return nil, err
	}
	urgency := in.UrgencyLevel
	if urgency == "" {
		urgency = UrgencyMedium
	}
	if !urgency.Valid() {
		return nil, errs.Validation("urgency_level must be low, medium or high, got %q", urgency)
	}

	return &ExtemporaneousNegotiation{
		Negotiable:      ref,
		TussCode:        tuss,
		TussDescription: in.TussDescription,
		RequestedValue:  in.RequestedValue,
		Justification:   justification,
		UrgencyLevel:    urgency,
		Status:          StatusPendingApproval,
		Approval:        Pipeline.NewState(),
		CreatedBy:       actor.ID,
		UpdatedBy:       actor.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (e *ExtemporaneousNegotiation) touch(actor common_models.Actor, now time.Time) {
	e.UpdatedBy = actor.ID
	e.UpdatedAt = now
}

func (e *ExtemporaneousNegotiation) requirePending() error {
	if e.Status != StatusPendingApproval {
		return errs.State("extemporaneous negotiation is %s, not pending approval", e.Status)
	}
	return nil
}

// Approve accepts the request. The approved value defaults to the requested one.
func (e *ExtemporaneousNegotiation) Approve(in ApproveInput, actor common_models.Actor, roles approval.RoleChecker, now time.Time) error {
	if err := e.requirePending(); err != nil {
		return err
	}
	value := e.RequestedValue
	if in.ApprovedValue != nil {
		value = *in.ApprovedValue
	}
	if value.IsNegative() {
		return errs.Validation("approved_value must not be negative")
	}
	if _, err := Pipeline.Act(&e.Approval, StepCommercialApproval, approval.ActInput{Action: approval.ActionApprove, Notes: in.Notes}, actor, roles, now); err != nil {
		return err
	}
	e.ApprovedValue = &value
	e.Status = StatusApproved
	e.touch(actor, now)
	return nil
}

func (e *ExtemporaneousNegotiation) Reject(notes string, actor common_models.Actor, roles approval.RoleChecker, now time.Time) error {
	if err := e.requirePending(); err != nil {
		return err
	}
	if _, err := Pipeline.Act(&e.Approval, StepCommercialApproval, approval.ActInput{Action: approval.ActionReject, Notes: notes}, actor, roles, now); err != nil {
		return err
	}
	e.Status = StatusRejected
	e.touch(actor, now)
	return nil
}

// Formalize records the contract addendum that makes an approved price binding.
func (e *ExtemporaneousNegotiation) Formalize(addendum string, actor common_models.Actor, now time.Time) error {
	if e.Status != StatusApproved {
		return errs.State("only approved extemporaneous negotiations can be formalized (status is %s)", e.Status)
	}
	addendum = strings.TrimSpace(addendum)
	if addendum == "" {
		return errs.Validation("addendum_number is required")
	}
	at := now
	e.AddendumNumber = addendum
	e.FormalizedAt = &at
	e.FormalizedBy = actor.ID
	e.Status = StatusFormalized
	e.touch(actor, now)
	return nil
}

func (e *ExtemporaneousNegotiation) Cancel(actor common_models.Actor, now time.Time) error {
	if e.Status != StatusPendingApproval && e.Status != StatusApproved {
		return errs.State("a %s extemporaneous negotiation cannot be cancelled", e.Status)
	}
	e.Status = StatusCancelled
	e.touch(actor, now)
	return nil
}

package verification

import (
	"strings"
	"time"

	"go-negotiation/internal/common/errs"
	common_models "go-negotiation/internal/common/models"
)

type RoleChecker interface {
	HasRole(actor common_models.Actor, role common_models.Role) bool
}

func Submit(in SubmitInput, actor common_models.Actor, roles RoleChecker, now time.Time) (*ValueVerification, error) {
	entityType, entityID := strings.TrimSpace(in.EntityType), strings.TrimSpace(in.EntityID)
	if entityType == "" || entityID == "" {
		return nil, errs.Validation("entity_type and entity_id are required")
	}
	if in.OriginalValue.IsNegative() {
		return nil, errs.Validation("original_value must not be negative")
	}
	if !in.SubmitterRole.Valid() {
		return nil, errs.Validation("unknown submitter role %q", in.SubmitterRole)
	}
	if !roles.HasRole(actor, in.SubmitterRole) {
		return nil, errs.Permission("actor does not hold the %s role", in.SubmitterRole)
	}

	return &ValueVerification{
		EntityType:    entityType,
		EntityID:      entityID,
		OriginalValue: in.OriginalValue,
		Status:        StatusPending,
		SubmittedBy:   actor.ID,
		SubmitterRole: in.SubmitterRole,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// checkVerifier enforces dual control: the verifier acts under a role they
// hold, different from the submitter's role, and is not the submitter.
func (v *ValueVerification) checkVerifier(actor common_models.Actor, role common_models.Role, roles RoleChecker) error {
	if !role.Valid() {
		return errs.Validation("unknown verifier role %q", role)
	}
	if !roles.HasRole(actor, role) {
		return errs.Permission("actor does not hold the %s role", role)
	}
	if role == v.SubmitterRole {
		return errs.Permission("verifier role must differ from the submitter role %s", v.SubmitterRole)
	}
	if actor.ID == v.SubmittedBy {
		return errs.Permission("a value cannot be verified by the person who submitted it")
	}
	if v.Status != StatusPending {
		return errs.State("verification is already %s", v.Status)
	}
	return nil
}

func (v *ValueVerification) Verify(in VerifyInput, actor common_models.Actor, roles RoleChecker, now time.Time) error {
	if err := v.checkVerifier(actor, in.VerifierRole, roles); err != nil {
		return err
	}
	if in.VerifiedValue == nil {
		return errs.Validation("verified_value is required")
	}
	if in.VerifiedValue.IsNegative() {
		return errs.Validation("verified_value must not be negative")
	}

	verified := *in.VerifiedValue
	diff := verified.Sub(v.OriginalValue)
	v.VerifiedValue = &verified
	v.Difference = &diff
	v.HasMismatch = !diff.IsZero()
	v.Status = StatusVerified
	v.close(actor, in.VerifierRole, in.Notes, now)
	return nil
}

func (v *ValueVerification) Reject(in RejectInput, actor common_models.Actor, roles RoleChecker, now time.Time) error {
	if err := v.checkVerifier(actor, in.VerifierRole, roles); err != nil {
		return err
	}
	v.Status = StatusRejected
	v.close(actor, in.VerifierRole, in.Notes, now)
	return nil
}

func (v *ValueVerification) close(actor common_models.Actor, role common_models.Role, notes string, now time.Time) {
	at := now
	v.VerifiedBy = actor.ID
	v.VerifierRole = role
	v.VerificationNotes = notes
	v.VerifiedAt = &at
	v.UpdatedAt = now
}

package verification

import (
	"context"
	"fmt"
	"time"

	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/database"
	"go-negotiation/internal/features/audit"
	"go-negotiation/internal/features/notification"

	"go.uber.org/zap"
)

const auditModule = "value_verifications"

type VerificationService interface {
	Submit(ctx context.Context, actor common_models.Actor, in SubmitInput) (*ValueVerification, error)
	Verify(ctx context.Context, actor common_models.Actor, id string, in VerifyInput) (*ValueVerification, error)
	Reject(ctx context.Context, actor common_models.Actor, id string, in RejectInput) (*ValueVerification, error)
	Get(ctx context.Context, id string) (*ValueVerification, error)
	List(ctx context.Context, filter ListFilter) ([]ValueVerification, int64, error)
}

type VerificationServiceImpl struct {
	Repo     VerificationRepository
	Roles    RoleChecker
	Audit    audit.AuditService
	Notifier notification.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewVerificationService(
	repo VerificationRepository,
	roles RoleChecker,
	auditService audit.AuditService,
	notifier notification.Notifier,
	log *zap.Logger,
) VerificationService {
	return &VerificationServiceImpl{
		Repo:     repo,
		Roles:    roles,
		Audit:    auditService,
		Notifier: notifier,
		log:      log.Named("verification"),
		now:      time.Now,
	}
}

func (s *VerificationServiceImpl) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *VerificationServiceImpl) Submit(ctx context.Context, actor common_models.Actor, in SubmitInput) (*ValueVerification, error) {
	v, err := Submit(in, actor, s.Roles, s.timestamp())
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, v); err != nil {
		return nil, err
	}

	s.log.Info("value submitted for verification",
		zap.String("id", v.ID.Hex()),
		zap.String("entity", v.EntityType+"/"+v.EntityID),
		zap.String("value", v.OriginalValue.String()))
	_ = s.Audit.Record(ctx, audit.Entry{
		Action:   common_models.AuditActionCreate,
		Module:   auditModule,
		RecordID: v.ID.Hex(),
		Actor:    actor,
		Changes:  map[string]common_models.Change{"original_value": {Old: nil, New: v.OriginalValue.String()}},
	})
	return v, nil
}

func (s *VerificationServiceImpl) Get(ctx context.Context, id string) (*ValueVerification, error) {
	oid, err := database.ParseID("value verification", id)
	if err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, oid)
}

func (s *VerificationServiceImpl) List(ctx context.Context, filter ListFilter) ([]ValueVerification, int64, error) {
	return s.Repo.List(ctx, filter)
}

func (s *VerificationServiceImpl) Verify(ctx context.Context, actor common_models.Actor, id string, in VerifyInput) (*ValueVerification, error) {
	return s.close(ctx, actor, id, in.Notes, func(v *ValueVerification, now time.Time) error {
		return v.Verify(in, actor, s.Roles, now)
	})
}

func (s *VerificationServiceImpl) Reject(ctx context.Context, actor common_models.Actor, id string, in RejectInput) (*ValueVerification, error) {
	return s.close(ctx, actor, id, in.Notes, func(v *ValueVerification, now time.Time) error {
		return v.Reject(in, actor, s.Roles, now)
	})
}

func (s *VerificationServiceImpl) close(ctx context.Context, actor common_models.Actor, id, notes string, fn func(v *ValueVerification, now time.Time) error) (*ValueVerification, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(v, s.timestamp()); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, v); err != nil {
		return nil, err
	}

	changes := map[string]common_models.Change{"status": {Old: StatusPending, New: v.Status}}
	if v.VerifiedValue != nil {
		changes["verified_value"] = common_models.Change{Old: v.OriginalValue.String(), New: v.VerifiedValue.String()}
	}
	if v.HasMismatch {
		s.log.Warn("verified value differs from original",
			zap.String("id", v.ID.Hex()),
			zap.String("difference", v.Difference.String()))
	}
	_ = s.Audit.Record(ctx, audit.Entry{
		Action:   common_models.AuditActionVerify,
		Module:   auditModule,
		RecordID: v.ID.Hex(),
		Actor:    actor,
		Changes:  changes,
		Reason:   notes,
	})

	msg := fmt.Sprintf("Value for %s %s was %s", v.EntityType, v.EntityID, v.Status)
	if v.HasMismatch {
		msg += " with a difference of " + v.Difference.String()
	}
	s.Notifier.Notify(ctx, v.SubmittedBy, notification.Event{
		Type:     "value_verification." + string(v.Status),
		Title:    "Value verification " + string(v.Status),
		Message:  msg,
		Module:   auditModule,
		RecordID: v.ID.Hex(),
	})
	return v, nil
}

package scheduling

import (
	"context"
	"fmt"
	"time"

	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/database"
	"go-negotiation/internal/features/approval"
	"go-negotiation/internal/features/audit"
	"go-negotiation/internal/features/notification"

	"go.uber.org/zap"
)

const auditModule = "scheduling_exceptions"

type SchedulingService interface {
	Create(ctx context.Context, actor common_models.Actor, in CreateInput) (*SchedulingException, error)
	Get(ctx context.Context, id string) (*SchedulingException, error)
	List(ctx context.Context, filter ListFilter) ([]SchedulingException, int64, error)
	Approve(ctx context.Context, actor common_models.Actor, id, notes string) (*SchedulingException, error)
	Reject(ctx context.Context, actor common_models.Actor, id, notes string) (*SchedulingException, error)
}

type SchedulingServiceImpl struct {
	Repo     SchedulingRepository
	Roles    approval.RoleChecker
	Audit    audit.AuditService
	Notifier notification.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewSchedulingService(
	repo SchedulingRepository,
	roles approval.RoleChecker,
	auditService audit.AuditService,
	notifier notification.Notifier,
	log *zap.Logger,
) SchedulingService {
	return &SchedulingServiceImpl{
		Repo:     repo,
		Roles:    roles,
		Audit:    auditService,
		Notifier: notifier,
		log:      log.Named("scheduling"),
		now:      time.Now,
	}
}

func (s *SchedulingServiceImpl) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *SchedulingServiceImpl) Create(ctx context.Context, actor common_models.Actor, in CreateInput) (*SchedulingException, error) {
	e, err := New(in, actor, s.timestamp())
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, e); err != nil {
		return nil, err
	}

	fields := []zap.Field{zap.String("id", e.ID.Hex()), zap.String("solicitation", e.SolicitationID)}
	if surcharge, ok := e.Surcharge(); ok {
		fields = append(fields, zap.String("surcharge", surcharge.String()))
	}
	s.log.Info("scheduling exception requested", fields...)

	_ = s.Audit.Record(ctx, audit.Entry{
		Action:   common_models.AuditActionCreate,
		Module:   auditModule,
		RecordID: e.ID.Hex(),
		Actor:    actor,
		Changes:  map[string]common_models.Change{"status": {Old: nil, New: e.Status}},
		Reason:   e.Justification,
	})
	s.Notifier.Notify(ctx, notification.RoleRecipient(common_models.RoleDirector), notification.Event{
		Type:     "scheduling_exception.pending",
		Title:    "Scheduling exception awaiting decision",
		Message:  fmt.Sprintf("Solicitation %s asks for provider %s", e.SolicitationID, e.ProviderID),
		Module:   auditModule,
		RecordID: e.ID.Hex(),
	})
	return e, nil
}

func (s *SchedulingServiceImpl) Get(ctx context.Context, id string) (*SchedulingException, error) {
	oid, err := database.ParseID("scheduling exception", id)
	if err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, oid)
}

func (s *SchedulingServiceImpl) List(ctx context.Context, filter ListFilter) ([]SchedulingException, int64, error) {
	return s.Repo.List(ctx, filter)
}

func (s *SchedulingServiceImpl) Approve(ctx context.Context, actor common_models.Actor, id, notes string) (*SchedulingException, error) {
	return s.decide(ctx, actor, id, approval.ActionApprove, notes)
}

func (s *SchedulingServiceImpl) Reject(ctx context.Context, actor common_models.Actor, id, notes string) (*SchedulingException, error) {
	return s.decide(ctx, actor, id, approval.ActionReject, notes)
}

func (s *SchedulingServiceImpl) decide(ctx context.Context, actor common_models.Actor, id string, action approval.Action, notes string) (*SchedulingException, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.Decide(action, notes, actor, s.Roles, s.timestamp()); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, e); err != nil {
		return nil, err
	}

	s.log.Info("scheduling exception decided", zap.String("id", e.ID.Hex()), zap.String("status", string(e.Status)), zap.String("actor", actor.ID))
	_ = s.Audit.Record(ctx, audit.Entry{
		Action:   common_models.AuditActionApproval,
		Module:   auditModule,
		RecordID: e.ID.Hex(),
		Actor:    actor,
		Changes:  map[string]common_models.Change{"status": {Old: StatusPending, New: e.Status}},
		Reason:   notes,
	})
	s.Notifier.Notify(ctx, e.CreatedBy, notification.Event{
		Type:     "scheduling_exception." + string(e.Status),
		Title:    "Scheduling exception " + string(e.Status),
		Message:  fmt.Sprintf("The exception for solicitation %s was %s", e.SolicitationID, e.Status),
		Module:   auditModule,
		RecordID: e.ID.Hex(),
	})
	return e, nil
}

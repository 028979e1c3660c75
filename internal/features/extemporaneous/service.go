package extemporaneous

import (
	"context"
	"fmt"
	"time"

	"go-negotiation/internal/common/errs"
	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/database"
	"go-negotiation/internal/features/approval"
	"go-negotiation/internal/features/audit"
	"go-negotiation/internal/features/notification"

	"go.uber.org/zap"
)

const auditModule = "extemporaneous_negotiations"

type ExtemporaneousService interface {
	Create(ctx context.Context, actor common_models.Actor, in CreateInput) (*ExtemporaneousNegotiation, error)
	Get(ctx context.Context, id string) (*ExtemporaneousNegotiation, error)
	List(ctx context.Context, filter ListFilter) ([]ExtemporaneousNegotiation, int64, error)
	Approve(ctx context.Context, actor common_models.Actor, id string, in ApproveInput) (*ExtemporaneousNegotiation, error)
	Reject(ctx context.Context, actor common_models.Actor, id, notes string) (*ExtemporaneousNegotiation, error)
	Formalize(ctx context.Context, actor common_models.Actor, id, addendum string) (*ExtemporaneousNegotiation, error)
	Cancel(ctx context.Context, actor common_models.Actor, id string) (*ExtemporaneousNegotiation, error)
}

type ExtemporaneousServiceImpl struct {
	Repo     ExtemporaneousRepository
	Roles    approval.RoleChecker
	Audit    audit.AuditService
	Notifier notification.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewExtemporaneousService(
	repo ExtemporaneousRepository,
	roles approval.RoleChecker,
	auditService audit.AuditService,
	notifier notification.Notifier,
	log *zap.Logger,
) ExtemporaneousService {
	return &ExtemporaneousServiceImpl{
		Repo:     repo,
		Roles:    roles,
		Audit:    auditService,
		Notifier: notifier,
		log:      log.Named("extemporaneous"),
		now:      time.Now,
	}
}

func (s *ExtemporaneousServiceImpl) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *ExtemporaneousServiceImpl) load(ctx context.Context, id string) (*ExtemporaneousNegotiation, error) {
	oid, err := database.ParseID("extemporaneous negotiation", id)
	if err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, oid)
}

func (s *ExtemporaneousServiceImpl) notify(ctx context.Context, recipient string, e *ExtemporaneousNegotiation, title string) {
	s.Notifier.Notify(ctx, recipient, notification.Event{
		Type:     "extemporaneous." + string(e.Status),
		Title:    title,
		Message:  fmt.Sprintf("Extemporaneous negotiation for %s is %s", e.TussCode, e.Status),
		Module:   auditModule,
		RecordID: e.ID.Hex(),
	})
}

func (s *ExtemporaneousServiceImpl) transition(ctx context.Context, actor common_models.Actor, id string, action common_models.AuditAction, reason string, fn func(e *ExtemporaneousNegotiation, now time.Time) error) (*ExtemporaneousNegotiation, error) {
	e, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	before := e.Status
	if err := fn(e, s.timestamp()); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, e); err != nil {
		return nil, err
	}

	s.log.Info("extemporaneous transition",
		zap.String("id", e.ID.Hex()),
		zap.String("from", string(before)),
		zap.String("to", string(e.Status)),
		zap.String("actor", actor.ID))
	_ = s.Audit.Record(ctx, audit.Entry{
		Action:   action,
		Module:   auditModule,
		RecordID: e.ID.Hex(),
		Actor:    actor,
		Changes:  map[string]common_models.Change{"status": {Old: before, New: e.Status}},
		Reason:   reason,
	})
	return e, nil
}

func (s *ExtemporaneousServiceImpl) Create(ctx context.Context, actor common_models.Actor, in CreateInput) (*ExtemporaneousNegotiation, error) {
	e, err := New(in, actor, s.timestamp())
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, e); err != nil {
		return nil, err
	}

	s.log.Info("extemporaneous negotiation created", zap.String("id", e.ID.Hex()), zap.String("urgency", string(e.UrgencyLevel)))
	_ = s.Audit.Record(ctx, audit.Entry{
		Action:   common_models.AuditActionCreate,
		Module:   auditModule,
		RecordID: e.ID.Hex(),
		Actor:    actor,
		Changes:  map[string]common_models.Change{"status": {Old: nil, New: e.Status}},
		Reason:   e.Justification,
	})
	s.notify(ctx, notification.RoleRecipient(common_models.RoleCommercialManager), e, "Extemporaneous negotiation awaiting approval")
	return e, nil
}

func (s *ExtemporaneousServiceImpl) Get(ctx context.Context, id string) (*ExtemporaneousNegotiation, error) {
	return s.load(ctx, id)
}

func (s *ExtemporaneousServiceImpl) List(ctx context.Context, filter ListFilter) ([]ExtemporaneousNegotiation, int64, error) {
	if filter.Urgency != "" && !filter.Urgency.Valid() {
		return nil, 0, errs.Validation("unknown urgency level %q", filter.Urgency)
	}
	return s.Repo.List(ctx, filter)
}

func (s *ExtemporaneousServiceImpl) Approve(ctx context.Context, actor common_models.Actor, id string, in ApproveInput) (*ExtemporaneousNegotiation, error) {
	e, err := s.transition(ctx, actor, id, common_models.AuditActionApproval, in.Notes, func(e *ExtemporaneousNegotiation, now time.Time) error {
		return e.Approve(in, actor, s.Roles, now)
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, e.CreatedBy, e, "Extemporaneous negotiation approved")
	return e, nil
}

func (s *ExtemporaneousServiceImpl) Reject(ctx context.Context, actor common_models.Actor, id, notes string) (*ExtemporaneousNegotiation, error) {
	e, err := s.transition(ctx, actor, id, common_models.AuditActionApproval, notes, func(e *ExtemporaneousNegotiation, now time.Time) error {
		return e.Reject(notes, actor, s.Roles, now)
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, e.CreatedBy, e, "Extemporaneous negotiation rejected")
	return e, nil
}

func (s *ExtemporaneousServiceImpl) Formalize(ctx context.Context, actor common_models.Actor, id, addendum string) (*ExtemporaneousNegotiation, error) {
	return s.transition(ctx, actor, id, common_models.AuditActionFormalize, addendum, func(e *ExtemporaneousNegotiation, now time.Time) error {
		return e.Formalize(addendum, actor, now)
	})
}

func (s *ExtemporaneousServiceImpl) Cancel(ctx context.Context, actor common_models.Actor, id string) (*ExtemporaneousNegotiation, error) {
	return s.transition(ctx, actor, id, common_models.AuditActionCancel, "", func(e *ExtemporaneousNegotiation, now time.Time) error {
		return e.Cancel(actor, now)
	})
}

package contract

import (
	"context"
	"fmt"
	"time"

	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/database"
	"go-negotiation/internal/features/approval"
	"go-negotiation/internal/features/audit"
	"go-negotiation/internal/features/negotiation"
	"go-negotiation/internal/features/notification"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const auditModule = "contracts"

type ContractService interface {
	// StartApproval implements negotiation.ContractHandoff.
	StartApproval(ctx context.Context, req negotiation.ContractRequest) (string, error)
	Announce(ctx context.Context, contractID string)
	Act(ctx context.Context, actor common_models.Actor, id string, step approval.StepName, in approval.ActInput) (*approval.Step, error)
	Resubmit(ctx context.Context, actor common_models.Actor, id, notes string) (*Contract, error)
	Get(ctx context.Context, id string) (*Contract, error)
	List(ctx context.Context, filter ListFilter) ([]Contract, int64, error)
}

type ContractServiceImpl struct {
	Repo      ContractRepository
	Documents DocumentGenerator
	Roles     approval.RoleChecker
	Audit     audit.AuditService
	Notifier  notification.Notifier
	log       *zap.Logger
	now       func() time.Time
}

func NewContractService(
	repo ContractRepository,
	documents DocumentGenerator,
	roles approval.RoleChecker,
	auditService audit.AuditService,
	notifier notification.Notifier,
	log *zap.Logger,
) ContractService {
	return &ContractServiceImpl{
		Repo:      repo,
		Documents: documents,
		Roles:     roles,
		Audit:     auditService,
		Notifier:  notifier,
		log:       log.Named("contract"),
		now:       time.Now,
	}
}

func (s *ContractServiceImpl) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func linesOf(n *negotiation.Negotiation) ([]Line, decimal.Decimal) {
	lines := make([]Line, 0, len(n.Items))
	total := decimal.Zero
	for _, it := range n.Items {
		if it.ApprovedValue == nil {
			continue
		}
		lines = append(lines, Line{
			TussCode:        it.TussCode,
			TussDescription: it.TussDescription,
			Value:           *it.ApprovedValue,
		})
		total = total.Add(*it.ApprovedValue)
	}
	return lines, total
}

// StartApproval creates the contract with its submission step completed by
// the generating actor. It runs inside the negotiation's transaction and
// sends no notifications; see Announce.
func (s *ContractServiceImpl) StartApproval(ctx context.Context, req negotiation.ContractRequest) (string, error) {
	n := req.Negotiation
	number, err := s.Documents.Generate(ctx, n)
	if err != nil {
		return "", fmt.Errorf("generate contract number: %w", err)
	}

	now := s.timestamp()
	lines, total := linesOf(n)
	c := &Contract{
		Number:           number,
		NegotiationID:    n.ID,
		TemplateID:       req.TemplateID,
		Negotiable:       n.Negotiable,
		Lines:            lines,
		TotalValue:       total,
		NegotiationOwner: n.CreatedBy,
		Approval:         Pipeline.NewState(),
		CreatedBy:        req.Actor.ID,
		UpdatedBy:        req.Actor.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := Pipeline.Act(&c.Approval, StepSubmission, approval.ActInput{Action: approval.ActionApprove, Notes: "generated from negotiation " + n.ID.Hex()}, req.Actor, s.Roles, now); err != nil {
		return "", err
	}
	c.sync()

	if err := s.Repo.Create(ctx, c); err != nil {
		return "", err
	}

	s.log.Info("contract created", zap.String("id", c.ID.Hex()), zap.String("number", c.Number), zap.String("negotiation", n.ID.Hex()))
	_ = s.Audit.Record(ctx, audit.Entry{
		Action:   common_models.AuditActionCreate,
		Module:   auditModule,
		RecordID: c.ID.Hex(),
		Actor:    req.Actor,
		Changes:  map[string]common_models.Change{"status": {Old: nil, New: c.Status}},
	})
	return c.ID.Hex(), nil
}

// Announce notifies the first reviewer of a contract created by
// StartApproval. Callers invoke it after their transaction commits.
func (s *ContractServiceImpl) Announce(ctx context.Context, contractID string) {
	c, err := s.load(ctx, contractID)
	if err != nil {
		s.log.Warn("announce contract", zap.String("id", contractID), zap.Error(err))
		return
	}
	s.announce(ctx, c, StepSubmission, approval.ActionApprove)
}

func (s *ContractServiceImpl) load(ctx context.Context, id string) (*Contract, error) {
	oid, err := database.ParseID("contract", id)
	if err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, oid)
}

// announce tells the next audience what happened on step. Rejections and
// the final approval go to the negotiation owner, completed steps to the
// role of the following step.
func (s *ContractServiceImpl) announce(ctx context.Context, c *Contract, step approval.StepName, action approval.Action) {
	event := notification.Event{Module: auditModule, RecordID: c.ID.Hex()}
	switch {
	case action == approval.ActionReject:
		event.Type = "contract.rejected"
		event.Title = "Contract rejected"
		event.Message = fmt.Sprintf("Contract %s was rejected at %s", c.Number, step)
		s.Notifier.Notify(ctx, c.NegotiationOwner, event)
	case c.Status == approval.PhaseApproved:
		event.Type = "contract.approved"
		event.Title = "Contract approved"
		event.Message = fmt.Sprintf("Contract %s was fully approved", c.Number)
		s.Notifier.Notify(ctx, c.NegotiationOwner, event)
	default:
		next, ok := Pipeline.Next(step)
		if !ok {
			return
		}
		event.Type = "contract.awaiting_" + string(next.Name)
		event.Title = "Contract awaiting review"
		event.Message = fmt.Sprintf("Contract %s is waiting for %s", c.Number, next.Name)
		s.Notifier.Notify(ctx, notification.RoleRecipient(next.RequiredRole), event)
	}
}

func (s *ContractServiceImpl) Act(ctx context.Context, actor common_models.Actor, id string, stepName approval.StepName, in approval.ActInput) (*approval.Step, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	before, _ := c.Approval.Step(stepName)
	now := s.timestamp()
	step, err := Pipeline.Act(&c.Approval, stepName, in, actor, s.Roles, now)
	if err != nil {
		return nil, err
	}
	c.sync()
	c.UpdatedBy = actor.ID
	c.UpdatedAt = now

	if err := s.Repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info("contract step acted",
		zap.String("id", c.ID.Hex()),
		zap.String("step", string(stepName)),
		zap.String("action", string(in.Action)),
		zap.String("status", string(c.Status)),
		zap.String("actor", actor.ID))
	_ = s.Audit.Record(ctx, audit.Entry{
		Action:   common_models.AuditActionApproval,
		Module:   auditModule,
		RecordID: c.ID.Hex(),
		Actor:    actor,
		Changes:  map[string]common_models.Change{string(stepName): {Old: before.Status, New: step.Status}},
		Reason:   in.Notes,
	})
	s.announce(ctx, c, stepName, in.Action)
	return &step, nil
}

func (s *ContractServiceImpl) Resubmit(ctx context.Context, actor common_models.Actor, id, notes string) (*Contract, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	rejectedAt := c.CurrentStep
	now := s.timestamp()
	if err := Pipeline.Resubmit(&c.Approval, actor, notes, now); err != nil {
		return nil, err
	}
	c.sync()
	c.UpdatedBy = actor.ID
	c.UpdatedAt = now

	if err := s.Repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info("contract resubmitted", zap.String("id", c.ID.Hex()), zap.String("step", string(c.CurrentStep)), zap.Int("resubmissions", c.Approval.Resubmissions))
	_ = s.Audit.Record(ctx, audit.Entry{
		Action:   common_models.AuditActionSubmit,
		Module:   auditModule,
		RecordID: c.ID.Hex(),
		Actor:    actor,
		Changes:  map[string]common_models.Change{"status": {Old: approval.PhaseRejected, New: c.Status}},
		Reason:   notes,
	})
	if role, ok := Pipeline.RequiredRole(rejectedAt); ok {
		s.Notifier.Notify(ctx, notification.RoleRecipient(role), notification.Event{
			Type:     "contract.resubmitted",
			Title:    "Contract resubmitted",
			Message:  fmt.Sprintf("Contract %s is back for %s", c.Number, rejectedAt),
			Module:   auditModule,
			RecordID: c.ID.Hex(),
		})
	}
	return c, nil
}

func (s *ContractServiceImpl) Get(ctx context.Context, id string) (*Contract, error) {
	return s.load(ctx, id)
}

func (s *ContractServiceImpl) List(ctx context.Context, filter ListFilter) ([]Contract, int64, error) {
	return s.Repo.List(ctx, filter)
}

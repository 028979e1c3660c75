package negotiation

import (
	"context"
	"fmt"
	"time"

	"go-negotiation/internal/common/errs"
	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/config"
	"go-negotiation/internal/database"
	"go-negotiation/internal/features/audit"
	"go-negotiation/internal/features/notification"

	"go.uber.org/zap"
)

const auditModule = "negotiations"

// ContractRequest carries what contract generation needs from a negotiation.
type ContractRequest struct {
	Negotiation *Negotiation
	TemplateID  string
	Actor       common_models.Actor
}

// ContractHandoff creates a contract and starts its approval pipeline.
// StartApproval runs with the transaction context of the caller; Announce
// is called once that transaction has committed.
type ContractHandoff interface {
	StartApproval(ctx context.Context, req ContractRequest) (contractID string, err error)
	Announce(ctx context.Context, contractID string)
}

type NegotiationService interface {
	Create(ctx context.Context, actor common_models.Actor, in CreateInput) (*Negotiation, error)
	Get(ctx context.Context, id string) (*Negotiation, error)
	List(ctx context.Context, filter ListFilter) ([]Negotiation, int64, error)
	Submit(ctx context.Context, actor common_models.Actor, id string) (*Negotiation, error)
	RespondToItem(ctx context.Context, actor common_models.Actor, itemID string, in ItemResponse) (*NegotiationItem, error)
	RecomputeStatus(ctx context.Context, actor common_models.Actor, id string) (*Negotiation, error)
	Approve(ctx context.Context, actor common_models.Actor, id string) (*Negotiation, error)
	Cancel(ctx context.Context, actor common_models.Actor, id string) (*Negotiation, error)
	GenerateContract(ctx context.Context, actor common_models.Actor, id, templateID string) (*Negotiation, error)

	// Cycles
	StartNewCycle(ctx context.Context, actor common_models.Actor, id, notes string) (*Negotiation, error)
	Fork(ctx context.Context, actor common_models.Actor, id string, groups []ForkGroup) ([]*Negotiation, error)

	Rollback(ctx context.Context, actor common_models.Actor, id string, target Status, reason string) (*Negotiation, error)
}

type NegotiationServiceImpl struct {
	Repo      NegotiationRepository
	Tx        database.Transactor
	Contracts ContractHandoff
	Roles     RoleChecker
	Audit     audit.AuditService
	Notifier  notification.Notifier
	log       *zap.Logger
	now       func() time.Time

	defaultMaxCycles int
	maxForkGroups    int
	retries          int
}

func NewNegotiationService(
	repo NegotiationRepository,
	tx database.Transactor,
	contracts ContractHandoff,
	roles RoleChecker,
	auditService audit.AuditService,
	notifier notification.Notifier,
	cfg *config.Config,
	log *zap.Logger,
) NegotiationService {
	retries := cfg.RecomputeRetries
	if retries < 1 {
		retries = 1
	}
	return &NegotiationServiceImpl{
		Repo:             repo,
		Tx:               tx,
		Contracts:        contracts,
		Roles:            roles,
		Audit:            auditService,
		Notifier:         notifier,
		log:              log.Named("negotiation"),
		now:              time.Now,
		defaultMaxCycles: cfg.DefaultMaxCycles,
		maxForkGroups:    cfg.MaxForkGroups,
		retries:          retries,
	}
}

// timestamp is truncated to what Mongo stores so that values read back
// compare equal in guarded updates.
func (s *NegotiationServiceImpl) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *NegotiationServiceImpl) load(ctx context.Context, id string) (*Negotiation, error) {
	oid, err := database.ParseID("negotiation", id)
	if err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, oid)
}

// record writes an audit entry. Failures are logged by the audit service
// and do not undo the transition.
func (s *NegotiationServiceImpl) record(ctx context.Context, action common_models.AuditAction, n *Negotiation, actor common_models.Actor, changes map[string]common_models.Change, reason string) {
	_ = s.Audit.Record(ctx, audit.Entry{
		Action:   action,
		Module:   auditModule,
		RecordID: n.ID.Hex(),
		Actor:    actor,
		Changes:  changes,
		Reason:   reason,
	})
}

func statusChange(from, to Status) map[string]common_models.Change {
	return map[string]common_models.Change{"status": {Old: from, New: to}}
}

func (s *NegotiationServiceImpl) notify(ctx context.Context, recipient string, n *Negotiation, eventType, title string) {
	s.Notifier.Notify(ctx, recipient, notification.Event{
		Type:     eventType,
		Title:    title,
		Message:  fmt.Sprintf("%s is now %s", n.Title, n.Status),
		Module:   auditModule,
		RecordID: n.ID.Hex(),
	})
}

// transition loads the negotiation, applies fn and stores the result with
// a version guard. A concurrent write surfaces as ConflictError.
func (s *NegotiationServiceImpl) transition(ctx context.Context, actor common_models.Actor, id string, action common_models.AuditAction, reason string, fn func(n *Negotiation, now time.Time) error) (*Negotiation, error) {
	n, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	before := n.Status
	if err := fn(n, s.timestamp()); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, n); err != nil {
		return nil, err
	}

	s.log.Info("negotiation transition",
		zap.String("id", n.ID.Hex()),
		zap.String("action", string(action)),
		zap.String("from", string(before)),
		zap.String("to", string(n.Status)),
		zap.String("actor", actor.ID))
	s.record(ctx, action, n, actor, statusChange(before, n.Status), reason)
	return n, nil
}

func (s *NegotiationServiceImpl) Create(ctx context.Context, actor common_models.Actor, in CreateInput) (*Negotiation, error) {
	n, err := NewNegotiation(in, actor, s.defaultMaxCycles, s.timestamp())
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create negotiation: %w", err)
	}
	s.log.Info("negotiation created", zap.String("id", n.ID.Hex()), zap.Int("items", len(n.Items)), zap.String("actor", actor.ID))
	s.record(ctx, common_models.AuditActionCreate, n, actor, statusChange("", n.Status), "")
	return n, nil
}

func (s *NegotiationServiceImpl) Get(ctx context.Context, id string) (*Negotiation, error) {
	return s.load(ctx, id)
}

func (s *NegotiationServiceImpl) List(ctx context.Context, filter ListFilter) ([]Negotiation, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, errs.Validation("unknown status %q", filter.Status)
	}
	return s.Repo.List(ctx, filter)
}

func (s *NegotiationServiceImpl) Submit(ctx context.Context, actor common_models.Actor, id string) (*Negotiation, error) {
	n, err := s.transition(ctx, actor, id, common_models.AuditActionSubmit, "", func(n *Negotiation, now time.Time) error {
		return n.Submit(actor, now)
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, notification.RoleRecipient(common_models.RoleProvider), n, "negotiation.submitted", "Negotiation awaiting response")
	return n, nil
}

// RespondToItem stores the answer with an item-level guard and then
// recomputes the aggregate status. A failed recompute is logged; the
// response itself stands and the status can be recomputed later.
func (s *NegotiationServiceImpl) RespondToItem(ctx context.Context, actor common_models.Actor, itemID string, in ItemResponse) (*NegotiationItem, error) {
	oid, err := database.ParseID("negotiation item", itemID)
	if err != nil {
		return nil, err
	}
	n, err := s.Repo.GetByItemID(ctx, oid)
	if err != nil {
		return nil, err
	}

	var prev *time.Time
	prevStatus := ItemPending
	if current := n.Item(oid); current != nil {
		prevStatus = current.Status
		if current.RespondedAt != nil {
			t := *current.RespondedAt
			prev = &t
		}
	}

	item, err := n.RespondToItem(oid, in, actor, s.timestamp())
	if err != nil {
		return nil, err
	}
	answered := item.clone()
	if err := s.Repo.UpdateItem(ctx, n, answered, prev); err != nil {
		return nil, err
	}

	s.record(ctx, common_models.AuditActionRespond, n, actor, map[string]common_models.Change{
		"item." + oid.Hex() + ".status": {Old: prevStatus, New: answered.Status},
	}, answered.Notes)

	if _, err := s.recompute(ctx, actor, n.ID.Hex()); err != nil {
		s.log.Warn("recompute after item response failed",
			zap.String("negotiation", n.ID.Hex()),
			zap.String("item", itemID),
			zap.Error(err))
	}
	return &answered, nil
}

func (s *NegotiationServiceImpl) RecomputeStatus(ctx context.Context, actor common_models.Actor, id string) (*Negotiation, error) {
	return s.recompute(ctx, actor, id)
}

// recompute reloads and rewrites the derived status, retrying on conflict.
// The write is idempotent so a retry is always safe.
func (s *NegotiationServiceImpl) recompute(ctx context.Context, actor common_models.Actor, id string) (*Negotiation, error) {
	for attempt := 1; ; attempt++ {
		n, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		before := n.Status
		if !n.RecomputeStatus(s.timestamp()) {
			return n, nil
		}
		err = s.Repo.Update(ctx, n)
		if err == nil {
			s.log.Info("negotiation status recomputed",
				zap.String("id", n.ID.Hex()),
				zap.String("from", string(before)),
				zap.String("to", string(n.Status)),
				zap.Int("attempt", attempt))
			s.record(ctx, common_models.AuditActionStatus, n, actor, statusChange(before, n.Status), "")
			if n.Status != StatusPending {
				s.notify(ctx, n.CreatedBy, n, "negotiation."+string(n.Status), "Negotiation responses complete")
			}
			return n, nil
		}
		if !errs.IsRetryable(err) || attempt >= s.retries {
			return nil, err
		}
		s.log.Debug("recompute conflict, retrying", zap.String("id", id), zap.Int("attempt", attempt))
	}
}

func (s *NegotiationServiceImpl) Approve(ctx context.Context, actor common_models.Actor, id string) (*Negotiation, error) {
	n, err := s.transition(ctx, actor, id, common_models.AuditActionApprove, "", func(n *Negotiation, now time.Time) error {
		return n.Approve(actor, s.Roles, now)
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, n.CreatedBy, n, "negotiation.approved", "Negotiation approved")
	return n, nil
}

func (s *NegotiationServiceImpl) Cancel(ctx context.Context, actor common_models.Actor, id string) (*Negotiation, error) {
	n, err := s.transition(ctx, actor, id, common_models.AuditActionCancel, "", func(n *Negotiation, now time.Time) error {
		return n.Cancel(actor, now)
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, n.CreatedBy, n, "negotiation.cancelled", "Negotiation cancelled")
	return n, nil
}

// GenerateContract creates the contract and stores its id on the
// negotiation in one transaction. Reviewers are notified after commit.
func (s *NegotiationServiceImpl) GenerateContract(ctx context.Context, actor common_models.Actor, id, templateID string) (*Negotiation, error) {
	oid, err := database.ParseID("negotiation", id)
	if err != nil {
		return nil, err
	}

	var out *Negotiation
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		n, err := s.Repo.GetByID(ctx, oid)
		if err != nil {
			return err
		}
		if err := n.CanGenerateContract(); err != nil {
			return err
		}
		contractID, err := s.Contracts.StartApproval(ctx, ContractRequest{
			Negotiation: n.Clone(),
			TemplateID:  templateID,
			Actor:       actor,
		})
		if err != nil {
			return err
		}
		if err := n.AttachContract(contractID, actor, s.timestamp()); err != nil {
			return err
		}
		if err := s.Repo.Update(ctx, n); err != nil {
			return err
		}
		out = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Contracts.Announce(ctx, out.ContractID)
	s.log.Info("contract generated", zap.String("negotiation", out.ID.Hex()), zap.String("contract", out.ContractID))
	s.record(ctx, common_models.AuditActionContract, out, actor, map[string]common_models.Change{
		"contract_id": {Old: nil, New: out.ContractID},
	}, "")
	return out, nil
}

func (s *NegotiationServiceImpl) StartNewCycle(ctx context.Context, actor common_models.Actor, id, notes string) (*Negotiation, error) {
	var fromCycle int
	n, err := s.transition(ctx, actor, id, common_models.AuditActionCycle, notes, func(n *Negotiation, now time.Time) error {
		fromCycle = n.NegotiationCycle
		return n.StartNewCycle(notes, actor, now)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("negotiation cycle started", zap.String("id", n.ID.Hex()), zap.Int("from", fromCycle), zap.Int("to", n.NegotiationCycle))
	s.notify(ctx, notification.RoleRecipient(common_models.RoleProvider), n, "negotiation.cycle_started", "New negotiation cycle")
	return n, nil
}

// Fork stores the emptied parent and the children in one transaction.
func (s *NegotiationServiceImpl) Fork(ctx context.Context, actor common_models.Actor, id string, groups []ForkGroup) ([]*Negotiation, error) {
	oid, err := database.ParseID("negotiation", id)
	if err != nil {
		return nil, err
	}

	var parent *Negotiation
	var children []*Negotiation
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		n, err := s.Repo.GetByID(ctx, oid)
		if err != nil {
			return err
		}
		forked, err := n.Fork(groups, s.maxForkGroups, actor, s.timestamp())
		if err != nil {
			return err
		}
		if err := s.Repo.Update(ctx, n); err != nil {
			return err
		}
		if err := s.Repo.CreateMany(ctx, forked); err != nil {
			return fmt.Errorf("insert forks: %w", err)
		}
		parent, children = n, forked
		return nil
	})
	if err != nil {
		return nil, err
	}

	childIDs := make([]string, len(children))
	for i, c := range children {
		childIDs[i] = c.ID.Hex()
		s.record(ctx, common_models.AuditActionCreate, c, actor, map[string]common_models.Change{
			"parent_negotiation_id": {Old: nil, New: parent.ID.Hex()},
		}, "")
	}
	s.log.Info("negotiation forked", zap.String("id", parent.ID.Hex()), zap.Strings("children", childIDs))
	s.record(ctx, common_models.AuditActionFork, parent, actor, map[string]common_models.Change{
		"fork_count": {Old: parent.ForkCount - len(children), New: parent.ForkCount},
		"children":   {Old: nil, New: childIDs},
	}, "")
	s.notify(ctx, parent.CreatedBy, parent, "negotiation.forked", "Negotiation forked")
	return children, nil
}

func (s *NegotiationServiceImpl) Rollback(ctx context.Context, actor common_models.Actor, id string, target Status, reason string) (*Negotiation, error) {
	n, err := s.transition(ctx, actor, id, common_models.AuditActionRollback, reason, func(n *Negotiation, now time.Time) error {
		return n.Rollback(target, reason, actor, now)
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, n.CreatedBy, n, "negotiation.rolled_back", "Negotiation rolled back")
	return n, nil
}

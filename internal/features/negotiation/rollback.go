package negotiation

import (
	"slices"
	"strings"
	"time"

	"go-negotiation/internal/common/errs"
	common_models "go-negotiation/internal/common/models"
)

// rollbackTargets is the fixed table of permitted reversions. Statuses not
// listed have no valid target.
var rollbackTargets = map[Status][]Status{
	StatusPending:           {StatusSubmitted, StatusDraft},
	StatusApproved:          {StatusPending, StatusSubmitted},
	StatusPartiallyApproved: {StatusSubmitted},
}

// RollbackTargets lists the statuses from may revert to.
func RollbackTargets(from Status) []Status {
	return slices.Clone(rollbackTargets[from])
}

// Rollback reverts the status only. Items keep their responses, which is
// what distinguishes it from a new cycle.
func (n *Negotiation) Rollback(target Status, reason string, actor common_models.Actor, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.Validation("a reason is required to roll back a negotiation")
	}
	if !target.Valid() {
		return errs.Validation("unknown target status %q", target)
	}
	if !slices.Contains(rollbackTargets[n.Status], target) {
		return errs.State("rollback from %s to %s is not allowed", n.Status, target)
	}
	if n.ContractID != "" {
		return errs.State("negotiation already has contract %s and cannot be rolled back", n.ContractID)
	}

	n.RollbackHistory = append(n.RollbackHistory, RollbackEntry{
		From:    n.Status,
		To:      target,
		Reason:  reason,
		ActorID: actor.ID,
		At:      now,
	})
	n.Status = target
	n.touch(actor, now)
	return nil
}

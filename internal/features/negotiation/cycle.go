package negotiation

import (
	"fmt"
	"strings"
	"time"

	"go-negotiation/internal/common/errs"
	common_models "go-negotiation/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StartNewCycle archives the current round and sends every item back to
// pending. The limit is checked first so an exhausted negotiation always
// reports LimitError, whatever its status.
func (n *Negotiation) StartNewCycle(notes string, actor common_models.Actor, now time.Time) error {
	if n.NegotiationCycle >= n.MaxCyclesAllowed {
		return errs.Limit("negotiation already used %d of %d allowed cycles", n.NegotiationCycle, n.MaxCyclesAllowed)
	}
	switch n.Status {
	case StatusPending, StatusPartiallyComplete, StatusRejected, StatusPartiallyApproved:
	default:
		return errs.State("a new cycle cannot start from status %s", n.Status)
	}

	t := tally(n.Items)
	n.PreviousCyclesData = append(n.PreviousCyclesData, CycleSummary{
		Cycle:               n.NegotiationCycle,
		Status:              n.Status,
		TotalItems:          t.total,
		ApprovedItems:       t.approved,
		RejectedItems:       t.rejected,
		CounterOfferedItems: t.counterOffered,
		PendingItems:        t.pending,
		EndedAt:             now,
		Notes:               notes,
	})

	for i := range n.Items {
		n.Items[i].Reset(actor, now)
	}
	n.NegotiationCycle++
	n.Status = StatusSubmitted
	n.touch(actor, now)
	return nil
}

func (n *Negotiation) canFork() error {
	switch n.Status {
	case StatusCancelled, StatusApproved, StatusPartiallyApproved:
		return errs.State("a %s negotiation cannot be forked", n.Status)
	}
	if n.ContractID != "" {
		return errs.State("negotiation already has contract %s", n.ContractID)
	}
	return nil
}

// Fork moves the items of n into len(groups) new child negotiations. Every
// item must land in exactly one group. On success n keeps no items and its
// fork count grows by the number of children; the caller persists both
// sides atomically.
func (n *Negotiation) Fork(groups []ForkGroup, maxGroups int, actor common_models.Actor, now time.Time) ([]*Negotiation, error) {
	if err := n.canFork(); err != nil {
		return nil, err
	}
	if len(groups) < 2 {
		return nil, errs.Validation("a fork needs at least two groups, got %d", len(groups))
	}
	if maxGroups > 0 && len(groups) > maxGroups {
		return nil, errs.Limit("a fork may create at most %d negotiations, got %d", maxGroups, len(groups))
	}

	owner := make(map[primitive.ObjectID]int, len(n.Items))
	for gi, g := range groups {
		if len(g.ItemIDs) == 0 {
			return nil, errs.Validation("fork group %d has no items", gi+1)
		}
		for _, raw := range g.ItemIDs {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil || n.Item(id) == nil {
				return nil, errs.Validation("item %q does not belong to negotiation %s", raw, n.ID.Hex())
			}
			if prev, dup := owner[id]; dup {
				return nil, errs.Validation("item %s is assigned to groups %d and %d", raw, prev+1, gi+1)
			}
			owner[id] = gi
		}
	}
	if len(owner) != len(n.Items) {
		var missing []string
		for _, it := range n.Items {
			if _, ok := owner[it.ID]; !ok {
				missing = append(missing, it.ID.Hex())
			}
		}
		return nil, errs.Validation("items not assigned to any group: %s", strings.Join(missing, ", "))
	}

	parentID := n.ID
	forkedAt := now
	children := make([]*Negotiation, len(groups))
	for gi, g := range groups {
		title := strings.TrimSpace(g.Title)
		if title == "" {
			title = fmt.Sprintf("%s (fork %d)", n.Title, n.ForkCount+gi+1)
		}
		pid := parentID
		at := forkedAt
		children[gi] = &Negotiation{
			ID:                  primitive.NewObjectID(),
			Title:               title,
			Description:         n.Description,
			Negotiable:          n.Negotiable,
			Status:              n.Status,
			NegotiationCycle:    n.NegotiationCycle,
			MaxCyclesAllowed:    n.MaxCyclesAllowed,
			IsFork:              true,
			ParentNegotiationID: &pid,
			ForkedAt:            &at,
			PreviousCyclesData:  append([]CycleSummary{}, n.PreviousCyclesData...),
			RollbackHistory:     []RollbackEntry{},
			Items:               []NegotiationItem{},
			CreatedBy:           n.CreatedBy,
			UpdatedBy:           actor.ID,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
	}

	for _, it := range n.Items {
		child := children[owner[it.ID]]
		moved := it.clone()
		moved.UpdatedBy = actor.ID
		moved.UpdatedAt = now
		child.Items = append(child.Items, moved)
	}
	for _, child := range children {
		child.RecomputeStatus(now)
	}

	n.Items = []NegotiationItem{}
	n.ForkCount += len(children)
	n.touch(actor, now)
	return children, nil
}

package negotiation

import (
	"time"

	"go-negotiation/internal/common/errs"
	common_models "go-negotiation/internal/common/models"
)

// Item ledger: the response lifecycle of a single line.
// Invariant: ApprovedValue != nil exactly when Status is approved or counter_offered.

func (it *NegotiationItem) Responded() bool {
	return it.RespondedAt != nil
}

// Respond records the counterpart's answer for the item.
func (it *NegotiationItem) Respond(in ItemResponse, actor common_models.Actor, now time.Time) error {
	switch in.Status {
	case ItemApproved, ItemCounterOffered:
		if in.ApprovedValue == nil {
			return errs.Validation("approved_value is required when status is %s", in.Status)
		}
		if in.ApprovedValue.IsNegative() {
			return errs.Validation("approved_value must not be negative")
		}
		v := *in.ApprovedValue
		it.ApprovedValue = &v
	case ItemRejected:
		it.ApprovedValue = nil
	default:
		return errs.Validation("status must be approved, rejected or counter_offered, got %q", in.Status)
	}

	at := now
	it.Status = in.Status
	it.Notes = in.Notes
	it.RespondedAt = &at
	it.UpdatedBy = actor.ID
	it.UpdatedAt = now
	return nil
}

// Reset returns the item to pending for a new cycle. The proposed value is kept.
func (it *NegotiationItem) Reset(actor common_models.Actor, now time.Time) {
	it.Status = ItemPending
	it.ApprovedValue = nil
	it.RespondedAt = nil
	it.Notes = ""
	it.UpdatedBy = actor.ID
	it.UpdatedAt = now
}

func (it NegotiationItem) clone() NegotiationItem {
	c := it
	if it.ApprovedValue != nil {
		v := *it.ApprovedValue
		c.ApprovedValue = &v
	}
	if it.RespondedAt != nil {
		t := *it.RespondedAt
		c.RespondedAt = &t
	}
	return c
}

type itemTally struct {
	total, approved, rejected, counterOffered, pending, responded int
}

func tally(items []NegotiationItem) itemTally {
	var t itemTally
	for _, it := range items {
		t.total++
		if it.Responded() {
			t.responded++
		}
		switch it.Status {
		case ItemApproved:
			t.approved++
		case ItemRejected:
			t.rejected++
		case ItemCounterOffered:
			t.counterOffered++
		default:
			t.pending++
		}
	}
	return t
}

package negotiation

import (
	"strings"
	"time"

	"go-negotiation/internal/common/errs"
	common_models "go-negotiation/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleChecker resolves whether an actor holds a role.
type RoleChecker interface {
	HasRole(actor common_models.Actor, role common_models.Role) bool
}

// ApproverRole may approve a fully answered negotiation.
const ApproverRole = common_models.RoleCommercialManager

// NewNegotiation validates the input and returns a draft.
func NewNegotiation(in CreateInput, actor common_models.Actor, defaultMaxCycles int, now time.Time) (*Negotiation, error) {
	ref := common_models.NegotiableRef{Type: in.NegotiableType, ID: strings.TrimSpace(in.NegotiableID)}
	if ref.IsZero() {
		return nil, errs.Validation("negotiable reference is required")
	}
	if !ref.Type.Valid() {
		return nil, errs.Validation("unknown negotiable type %q", ref.Type)
	}
	if ref.ID == "" {
		return nil, errs.Validation("negotiable id is required")
	}
	if len(in.Items) == 0 {
		return nil, errs.Validation("a negotiation needs at least one item")
	}

	maxCycles := in.MaxCyclesAllowed
	if maxCycles == 0 {
		maxCycles = defaultMaxCycles
	}
	if maxCycles < 1 {
		return nil, errs.Validation("max_cycles_allowed must be at least 1")
	}

	items := make([]NegotiationItem, 0, len(in.Items))
	for i, item := range in.Items {
		if strings.TrimSpace(item.TussCode) == "" {
			return nil, errs.Validation("item %d: tuss_code is required", i+1)
		}
		if item.ProposedValue.IsNegative() {
			return nil, errs.Validation("item %d: proposed_value must not be negative", i+1)
		}
		items = append(items, NegotiationItem{
			ID:              primitive.NewObjectID(),
			TussCode:        strings.TrimSpace(item.TussCode),
			TussDescription: item.TussDescription,
			ProposedValue:   item.ProposedValue,
			Status:          ItemPending,
			CreatedBy:       actor.ID,
			UpdatedBy:       actor.ID,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "Negotiation " + string(ref.Type) + " " + ref.ID
	}

	return &Negotiation{
		Title:              title,
		Description:        in.Description,
		Negotiable:         ref,
		Status:             StatusDraft,
		NegotiationCycle:   1,
		MaxCyclesAllowed:   maxCycles,
		PreviousCyclesData: []CycleSummary{},
		RollbackHistory:    []RollbackEntry{},
		Items:              items,
		CreatedBy:          actor.ID,
		UpdatedBy:          actor.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

func (n *Negotiation) touch(actor common_models.Actor, now time.Time) {
	n.UpdatedBy = actor.ID
	n.UpdatedAt = now
}

// Submit sends a draft to the counterpart.
func (n *Negotiation) Submit(actor common_models.Actor, now time.Time) error {
	if n.Status != StatusDraft {
		return errs.State("only draft negotiations can be submitted (status is %s)", n.Status)
	}
	n.Status = StatusSubmitted
	n.touch(actor, now)
	return nil
}

// RespondToItem applies the counterpart's answer to one item.
func (n *Negotiation) RespondToItem(itemID primitive.ObjectID, in ItemResponse, actor common_models.Actor, now time.Time) (*NegotiationItem, error) {
	item := n.Item(itemID)
	if item == nil {
		return nil, errs.NotFound("item %s not found in negotiation %s", itemID.Hex(), n.ID.Hex())
	}
	if !n.Status.acceptsResponses() {
		return nil, errs.State("items can only be answered while the negotiation is submitted or pending (status is %s)", n.Status)
	}
	if err := item.Respond(in, actor, now); err != nil {
		return nil, err
	}
	return item, nil
}

// deriveStatus maps item outcomes to the aggregate status.
func deriveStatus(items []NegotiationItem) Status {
	t := tally(items)
	switch {
	case t.responded < t.total:
		return StatusPending
	case t.approved == t.total:
		return StatusComplete
	case t.rejected == t.total:
		return StatusRejected
	default:
		return StatusPartiallyComplete
	}
}

// RecomputeStatus is the only path to complete, partially_complete and
// rejected. It only acts on statuses it owns and reports whether the status
// changed; a second call without new responses is a no-op.
func (n *Negotiation) RecomputeStatus(now time.Time) bool {
	if !n.Status.derivable() || len(n.Items) == 0 {
		return false
	}
	next := deriveStatus(n.Items)
	if next == n.Status {
		return false
	}
	n.Status = next
	n.UpdatedAt = now
	return true
}

// Approve accepts the outcome of a fully answered negotiation.
func (n *Negotiation) Approve(actor common_models.Actor, roles RoleChecker, now time.Time) error {
	var next Status
	switch n.Status {
	case StatusComplete:
		next = StatusApproved
	case StatusPartiallyComplete:
		next = StatusPartiallyApproved
	default:
		return errs.State("only complete or partially complete negotiations can be approved (status is %s)", n.Status)
	}
	if !roles.HasRole(actor, ApproverRole) {
		return errs.Permission("approving a negotiation requires the %s role", ApproverRole)
	}
	n.Status = next
	n.touch(actor, now)
	return nil
}

// Cancel is allowed from every status except complete, rejected and cancelled.
func (n *Negotiation) Cancel(actor common_models.Actor, now time.Time) error {
	if n.Status.terminal() {
		return errs.State("a %s negotiation cannot be cancelled", n.Status)
	}
	n.Status = StatusCancelled
	n.touch(actor, now)
	return nil
}

// CanGenerateContract checks the preconditions for contract generation.
func (n *Negotiation) CanGenerateContract() error {
	if n.ContractID != "" {
		return errs.State("contract %s was already generated for this negotiation", n.ContractID)
	}
	if n.Status != StatusComplete && n.Status != StatusApproved {
		return errs.State("contracts can only be generated from complete or approved negotiations (status is %s)", n.Status)
	}
	return nil
}

// AttachContract stores the generated contract reference.
func (n *Negotiation) AttachContract(contractID string, actor common_models.Actor, now time.Time) error {
	if err := n.CanGenerateContract(); err != nil {
		return err
	}
	if contractID == "" {
		return errs.Validation("contract id is required")
	}
	n.ContractID = contractID
	n.touch(actor, now)
	return nil
}

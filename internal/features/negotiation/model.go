package negotiation

import (
	"slices"
	"time"

	common_models "go-negotiation/internal/common/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusDraft             Status = "draft"
	StatusSubmitted         Status = "submitted"
	StatusPending           Status = "pending"
	StatusComplete          Status = "complete"
	StatusPartiallyComplete Status = "partially_complete"
	StatusApproved          Status = "approved"
	StatusPartiallyApproved Status = "partially_approved"
	StatusRejected          Status = "rejected"
	StatusCancelled         Status = "cancelled"
)

var allStatuses = []Status{
	StatusDraft, StatusSubmitted, StatusPending, StatusComplete, StatusPartiallyComplete,
	StatusApproved, StatusPartiallyApproved, StatusRejected, StatusCancelled,
}

func (s Status) Valid() bool {
	return slices.Contains(allStatuses, s)
}

// acceptsResponses: items can be answered only while the negotiation is out with the counterpart.
func (s Status) acceptsResponses() bool {
	return s == StatusSubmitted || s == StatusPending
}

// derivable: statuses owned by the recompute step.
func (s Status) derivable() bool {
	switch s {
	case StatusSubmitted, StatusPending, StatusComplete, StatusPartiallyComplete, StatusRejected:
		return true
	}
	return false
}

// terminal for cancel purposes.
func (s Status) terminal() bool {
	return s == StatusComplete || s == StatusRejected || s == StatusCancelled
}

type ItemStatus string

const (
	ItemPending        ItemStatus = "pending"
	ItemApproved       ItemStatus = "approved"
	ItemRejected       ItemStatus = "rejected"
	ItemCounterOffered ItemStatus = "counter_offered"
)

func (s ItemStatus) carriesValue() bool {
	return s == ItemApproved || s == ItemCounterOffered
}

// NegotiationItem is one procedure line. Owned by exactly one Negotiation.
type NegotiationItem struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	TussCode        string             `bson:"tuss_code" json:"tuss_code"`
	TussDescription string             `bson:"tuss_description,omitempty" json:"tuss_description,omitempty"`
	ProposedValue   decimal.Decimal    `bson:"proposed_value" json:"proposed_value"`
	ApprovedValue   *decimal.Decimal   `bson:"approved_value" json:"approved_value"`
	Status          ItemStatus         `bson:"status" json:"status"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	RespondedAt     *time.Time         `bson:"responded_at" json:"responded_at"`
	CreatedBy       string             `bson:"created_by" json:"created_by"`
	UpdatedBy       string             `bson:"updated_by" json:"updated_by"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// CycleSummary is appended each time a new cycle starts.
type CycleSummary struct {
	Cycle               int       `bson:"cycle" json:"cycle"`
	Status              Status    `bson:"status" json:"status"`
	TotalItems          int       `bson:"total_items" json:"total_items"`
	ApprovedItems       int       `bson:"approved_items" json:"approved_items"`
	RejectedItems       int       `bson:"rejected_items" json:"rejected_items"`
	CounterOfferedItems int       `bson:"counter_offered_items" json:"counter_offered_items"`
	PendingItems        int       `bson:"pending_items" json:"pending_items"`
	EndedAt             time.Time `bson:"ended_at" json:"ended_at"`
	Notes               string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

type RollbackEntry struct {
	From    Status    `bson:"from" json:"from"`
	To      Status    `bson:"to" json:"to"`
	Reason  string    `bson:"reason" json:"reason"`
	ActorID string    `bson:"actor_id" json:"actor_id"`
	At      time.Time `bson:"at" json:"at"`
}

type Negotiation struct {
	ID          primitive.ObjectID          `bson:"_id,omitempty" json:"id"`
	Title       string                      `bson:"title" json:"title"`
	Description string                      `bson:"description,omitempty" json:"description,omitempty"`
	Negotiable  common_models.NegotiableRef `bson:"negotiable" json:"negotiable"`
	Status      Status                      `bson:"status" json:"status"`

	NegotiationCycle int `bson:"negotiation_cycle" json:"negotiation_cycle"`
	MaxCyclesAllowed int `bson:"max_cycles_allowed" json:"max_cycles_allowed"`

	IsFork              bool                `bson:"is_fork" json:"is_fork"`
	ParentNegotiationID *primitive.ObjectID `bson:"parent_negotiation_id,omitempty" json:"parent_negotiation_id,omitempty"`
	ForkCount           int                 `bson:"fork_count" json:"fork_count"`
	ForkedAt            *time.Time          `bson:"forked_at,omitempty" json:"forked_at,omitempty"`

	PreviousCyclesData []CycleSummary    `bson:"previous_cycles_data" json:"previous_cycles_data"`
	RollbackHistory    []RollbackEntry   `bson:"rollback_history" json:"rollback_history"`
	Items              []NegotiationItem `bson:"items" json:"items"`

	ContractID string `bson:"contract_id,omitempty" json:"contract_id,omitempty"`

	CreatedBy string    `bson:"created_by" json:"created_by"`
	UpdatedBy string    `bson:"updated_by" json:"updated_by"`
	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Item returns a pointer into n.Items.
func (n *Negotiation) Item(id primitive.ObjectID) *NegotiationItem {
	for i := range n.Items {
		if n.Items[i].ID == id {
			return &n.Items[i]
		}
	}
	return nil
}

// Clone returns a deep copy.
func (n *Negotiation) Clone() *Negotiation {
	c := *n
	if n.ParentNegotiationID != nil {
		id := *n.ParentNegotiationID
		c.ParentNegotiationID = &id
	}
	if n.ForkedAt != nil {
		t := *n.ForkedAt
		c.ForkedAt = &t
	}
	c.PreviousCyclesData = slices.Clone(n.PreviousCyclesData)
	c.RollbackHistory = slices.Clone(n.RollbackHistory)
	c.Items = make([]NegotiationItem, len(n.Items))
	for i, it := range n.Items {
		c.Items[i] = it.clone()
	}
	return &c
}

// Inputs

type ItemInput struct {
	TussCode        string          `json:"tuss_code"`
	TussDescription string          `json:"tuss_description"`
	ProposedValue   decimal.Decimal `json:"proposed_value"`
}

type CreateInput struct {
	Title            string                       `json:"title"`
	Description      string                       `json:"description"`
	NegotiableType   common_models.NegotiableType `json:"negotiable_type"`
	NegotiableID     string                       `json:"negotiable_id"`
	MaxCyclesAllowed int                          `json:"max_cycles_allowed"`
	Items            []ItemInput                  `json:"items"`
}

type ItemResponse struct {
	Status        ItemStatus       `json:"status"`
	ApprovedValue *decimal.Decimal `json:"approved_value"`
	Notes         string           `json:"notes"`
}

type ForkGroup struct {
	Title   string   `json:"title"`
	ItemIDs []string `json:"items"`
}

type ListFilter struct {
	Status         Status
	NegotiableType common_models.NegotiableType
	NegotiableID   string
	ParentID       string
	Page           common_models.Page
}

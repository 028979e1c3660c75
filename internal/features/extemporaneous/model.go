package extemporaneous

import (
	"time"

	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/features/approval"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusFormalized      Status = "formalized"
	StatusCancelled       Status = "cancelled"
)

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

func (u Urgency) Valid() bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}

const StepCommercialApproval approval.StepName = "commercial_approval"

var Pipeline = approval.Definition{
	Kind: "extemporaneous negotiation",
	Steps: []approval.StepDefinition{
		{Name: StepCommercialApproval, RequiredRole: common_models.RoleCommercialManager},
	},
}

// ExtemporaneousNegotiation is a single procedure priced outside the regular cycle.
type ExtemporaneousNegotiation struct {
	ID              primitive.ObjectID          `bson:"_id,omitempty" json:"id"`
	Negotiable      common_models.NegotiableRef `bson:"negotiable" json:"negotiable"`
	TussCode        string                      `bson:"tuss_code" json:"tuss_code"`
	TussDescription string                      `bson:"tuss_description,omitempty" json:"tuss_description,omitempty"`
	RequestedValue  decimal.Decimal             `bson:"requested_value" json:"requested_value"`
	ApprovedValue   *decimal.Decimal            `bson:"approved_value" json:"approved_value"`
	Justification   string                      `bson:"justification" json:"justification"`
	UrgencyLevel    Urgency                     `bson:"urgency_level" json:"urgency_level"`
	Status          Status                      `bson:"status" json:"status"`

	AddendumNumber string     `bson:"addendum_number,omitempty" json:"addendum_number,omitempty"`
	FormalizedAt   *time.Time `bson:"formalized_at,omitempty" json:"formalized_at,omitempty"`
	FormalizedBy   string     `bson:"formalized_by,omitempty" json:"formalized_by,omitempty"`

	Approval approval.State `bson:"approval" json:"approval"`

	CreatedBy string    `bson:"created_by" json:"created_by"`
	UpdatedBy string    `bson:"updated_by" json:"updated_by"`
	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type CreateInput struct {
	NegotiableType  common_models.NegotiableType `json:"negotiable_type"`
	NegotiableID    string                       `json:"negotiable_id"`
	TussCode        string                       `json:"tuss_code"`
	TussDescription string                       `json:"tuss_description"`
	RequestedValue  decimal.Decimal              `json:"requested_value"`
	Justification   string                       `json:"justification"`
	UrgencyLevel    Urgency                      `json:"urgency_level"`
}

type ApproveInput struct {
	ApprovedValue *decimal.Decimal `json:"approved_value"`
	Notes         string           `json:"notes"`
}

type ListFilter struct {
	Status       Status
	NegotiableID string
	Urgency      Urgency
	Page         common_models.Page
}

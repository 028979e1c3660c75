package scheduling

import (
	"time"

	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/features/approval"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

const StepExceptionApproval approval.StepName = "exception_approval"

var Pipeline = approval.Definition{
	Kind: "scheduling exception",
	Steps: []approval.StepDefinition{
		{Name: StepExceptionApproval, RequiredRole: common_models.RoleDirector},
	},
}

// SchedulingException lets a solicitation be scheduled with a provider
// outside the recommended one, usually at a higher price.
type SchedulingException struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SolicitationID   string             `bson:"solicitation_id" json:"solicitation_id"`
	ProviderID       string             `bson:"provider_id" json:"provider_id"`
	Justification    string             `bson:"justification" json:"justification"`
	RecommendedValue *decimal.Decimal   `bson:"recommended_value,omitempty" json:"recommended_value,omitempty"`
	ProviderValue    *decimal.Decimal   `bson:"provider_value,omitempty" json:"provider_value,omitempty"`
	Status           Status             `bson:"status" json:"status"`

	DecidedBy string     `bson:"decided_by,omitempty" json:"decided_by,omitempty"`
	DecidedAt *time.Time `bson:"decided_at,omitempty" json:"decided_at,omitempty"`

	Approval approval.State `bson:"approval" json:"approval"`

	CreatedBy string    `bson:"created_by" json:"created_by"`
	UpdatedBy string    `bson:"updated_by" json:"updated_by"`
	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Surcharge is provider_value minus recommended_value, when both are known.
func (e *SchedulingException) Surcharge() (decimal.Decimal, bool) {
	if e.RecommendedValue == nil || e.ProviderValue == nil {
		return decimal.Zero, false
	}
	return e.ProviderValue.Sub(*e.RecommendedValue), true
}

type CreateInput struct {
	SolicitationID   string           `json:"solicitation_id"`
	ProviderID       string           `json:"provider_id"`
	Justification    string           `json:"justification"`
	RecommendedValue *decimal.Decimal `json:"recommended_value"`
	ProviderValue    *decimal.Decimal `json:"provider_value"`
}

type ListFilter struct {
	Status         Status
	SolicitationID string
	ProviderID     string
	Page           common_models.Page
}

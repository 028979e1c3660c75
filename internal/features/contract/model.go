package contract

import (
	"time"

	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/features/approval"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StepSubmission       approval.StepName = "submission"
	StepLegalReview      approval.StepName = "legal_review"
	StepCommercialReview approval.StepName = "commercial_review"
	StepDirectorApproval approval.StepName = "director_approval"
)

// Pipeline is the contract review sequence.
var Pipeline = approval.Definition{
	Kind: "contract",
	Steps: []approval.StepDefinition{
		{Name: StepSubmission, RequiredRole: common_models.RoleNegotiator},
		{Name: StepLegalReview, RequiredRole: common_models.RoleLegal},
		{Name: StepCommercialReview, RequiredRole: common_models.RoleCommercialManager},
		{Name: StepDirectorApproval, RequiredRole: common_models.RoleDirector},
	},
}

// Line is the agreed price of one procedure at generation time.
type Line struct {
	TussCode        string          `bson:"tuss_code" json:"tuss_code"`
	TussDescription string          `bson:"tuss_description,omitempty" json:"tuss_description,omitempty"`
	Value           decimal.Decimal `bson:"value" json:"value"`
}

type Contract struct {
	ID            primitive.ObjectID          `bson:"_id,omitempty" json:"id"`
	Number        string                      `bson:"number" json:"number"`
	NegotiationID primitive.ObjectID          `bson:"negotiation_id" json:"negotiation_id"`
	TemplateID    string                      `bson:"template_id,omitempty" json:"template_id,omitempty"`
	Negotiable    common_models.NegotiableRef `bson:"negotiable" json:"negotiable"`
	Lines         []Line                      `bson:"lines" json:"lines"`
	TotalValue    decimal.Decimal             `bson:"total_value" json:"total_value"`

	// Owner of the negotiation; rejections and the final approval go back to them.
	NegotiationOwner string `bson:"negotiation_owner" json:"negotiation_owner"`

	Status      approval.Phase    `bson:"status" json:"status"`
	CurrentStep approval.StepName `bson:"current_step,omitempty" json:"current_step,omitempty"`
	Approval    approval.State    `bson:"approval" json:"approval"`

	CreatedBy string    `bson:"created_by" json:"created_by"`
	UpdatedBy string    `bson:"updated_by" json:"updated_by"`
	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// sync copies the derived pipeline status onto the indexed fields.
func (c *Contract) sync() {
	st := c.Approval.Status()
	c.Status = st.Phase
	c.CurrentStep = st.Step
}

type ListFilter struct {
	Status        approval.Phase
	NegotiationID string
	Page          common_models.Page
}

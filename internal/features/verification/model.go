package verification

import (
	"time"

	common_models "go-negotiation/internal/common/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

// ValueVerification is a second-person check of a monetary value entered
// elsewhere. A mismatch is recorded, never blocking.
type ValueVerification struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EntityType    string             `bson:"entity_type" json:"entity_type"`
	EntityID      string             `bson:"entity_id" json:"entity_id"`
	OriginalValue decimal.Decimal    `bson:"original_value" json:"original_value"`
	VerifiedValue *decimal.Decimal   `bson:"verified_value" json:"verified_value"`
	Difference    *decimal.Decimal   `bson:"difference" json:"difference"`
	HasMismatch   bool               `bson:"has_mismatch" json:"has_mismatch"`
	Status        Status             `bson:"status" json:"status"`

	SubmittedBy   string             `bson:"submitted_by" json:"submitted_by"`
	SubmitterRole common_models.Role `bson:"submitter_role" json:"submitter_role"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`

	VerifiedBy        string             `bson:"verified_by,omitempty" json:"verified_by,omitempty"`
	VerifierRole      common_models.Role `bson:"verifier_role,omitempty" json:"verifier_role,omitempty"`
	VerificationNotes string             `bson:"verification_notes,omitempty" json:"verification_notes,omitempty"`
	VerifiedAt        *time.Time         `bson:"verified_at,omitempty" json:"verified_at,omitempty"`

	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type SubmitInput struct {
	EntityType    string             `json:"entity_type"`
	EntityID      string             `json:"entity_id"`
	OriginalValue decimal.Decimal    `json:"original_value"`
	Notes         string             `json:"notes"`
	SubmitterRole common_models.Role `json:"submitter_role"`
}

type VerifyInput struct {
	VerifiedValue *decimal.Decimal   `json:"verified_value"`
	VerifierRole  common_models.Role `json:"verifier_role"`
	Notes         string             `json:"notes"`
}

type RejectInput struct {
	VerifierRole common_models.Role `json:"verifier_role"`
	Notes        string             `json:"notes"`
}

type ListFilter struct {
	Status      Status
	EntityType  string
	EntityID    string
	HasMismatch *bool
	Page        common_models.Page
}

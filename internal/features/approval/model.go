package approval

import (
	"time"

	"go-negotiation/internal/common/models"
)

type StepName string

type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepCompleted StepStatus = "completed"
	StepRejected  StepStatus = "rejected"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func (a Action) Valid() bool {
	return a == ActionApprove || a == ActionReject
}

// Phase is the entity-level status derived from the steps.
type Phase string

const (
	PhaseInReview Phase = "in_review"
	PhaseRejected Phase = "rejected"
	PhaseApproved Phase = "approved"
)

// StepDefinition is one position in a fixed sequence, gated by a role.
type StepDefinition struct {
	Name         StepName    `json:"name"`
	RequiredRole models.Role `json:"required_role"`
}

// Step is the persisted state of one step.
type Step struct {
	Name        StepName    `bson:"name" json:"name"`
	Status      StepStatus  `bson:"status" json:"status"`
	ActorID     string      `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	ActorRole   models.Role `bson:"actor_role,omitempty" json:"actor_role,omitempty"`
	CompletedAt *time.Time  `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	Notes       string      `bson:"notes,omitempty" json:"notes,omitempty"`
}

// HistoryEntry records every action taken on the pipeline, including resubmissions.
type HistoryEntry struct {
	Step      StepName  `bson:"step" json:"step"`
	Action    string    `bson:"action" json:"action"`
	ActorID   string    `bson:"actor_id" json:"actor_id"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// State is embedded in every aggregate that goes through a pipeline.
type State struct {
	Steps         []Step         `bson:"steps" json:"steps"`
	History       []HistoryEntry `bson:"history" json:"history"`
	Resubmissions int            `bson:"resubmissions" json:"resubmissions"`
}

// Status is the derived view of a State.
type Status struct {
	Phase Phase    `json:"phase"`
	Step  StepName `json:"step,omitempty"` // current step while in review, rejected step when rejected
}

type ActInput struct {
	Action Action `json:"action"`
	Notes  string `json:"notes"`
}

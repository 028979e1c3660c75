package models

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditAction string

const (
	AuditActionCreate    AuditAction = "CREATE"
	AuditActionSubmit    AuditAction = "SUBMIT"
	AuditActionRespond   AuditAction = "RESPOND"
	AuditActionStatus    AuditAction = "STATUS"
	AuditActionApprove   AuditAction = "APPROVE"
	AuditActionCancel    AuditAction = "CANCEL"
	AuditActionCycle     AuditAction = "CYCLE"
	AuditActionFork      AuditAction = "FORK"
	AuditActionRollback  AuditAction = "ROLLBACK"
	AuditActionContract  AuditAction = "CONTRACT"
	AuditActionApproval  AuditAction = "APPROVAL"
	AuditActionFormalize AuditAction = "FORMALIZE"
	AuditActionVerify    AuditAction = "VERIFY"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action    AuditAction        `bson:"action" json:"action"`
	Module    string             `bson:"module" json:"module"`                       // negotiations, contracts, ...
	RecordID  string             `bson:"record_id" json:"record_id"`                 // The ID of the aggregate
	ActorID   string             `bson:"actor_id" json:"actor_id"`                   // User ID who performed the action
	Changes   map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"` // field -> {old, new}
	Reason    string             `bson:"reason,omitempty" json:"reason,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// Role is a capability held by an acting user.
type Role string

const (
	RoleNegotiator        Role = "negotiator"
	RoleProvider          Role = "provider"
	RoleLegal             Role = "legal"
	RoleCommercialManager Role = "commercial_manager"
	RoleDirector          Role = "director"
	RoleFinancial         Role = "financial"
	RoleAuditor           Role = "auditor"
	RoleAdmin             Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleNegotiator, RoleProvider, RoleLegal, RoleCommercialManager,
		RoleDirector, RoleFinancial, RoleAuditor, RoleAdmin:
		return true
	}
	return false
}

// Actor is the user performing an operation. It is always passed explicitly.
type Actor struct {
	ID    string `json:"id"`
	Roles []Role `json:"roles"`
}

func (a Actor) Holds(role Role) bool {
	return slices.Contains(a.Roles, role)
}

// SystemActor is used for writes that no user triggered directly.
var SystemActor = Actor{ID: "system"}

// Negotiable types
type NegotiableType string

const (
	NegotiableHealthPlan   NegotiableType = "health_plan"
	NegotiableClinic       NegotiableType = "clinic"
	NegotiableProfessional NegotiableType = "professional"
)

func (t NegotiableType) Valid() bool {
	switch t {
	case NegotiableHealthPlan, NegotiableClinic, NegotiableProfessional:
		return true
	}
	return false
}

// NegotiableRef points at the counterparty of a negotiation.
type NegotiableRef struct {
	Type NegotiableType `bson:"type" json:"type"`
	ID   string         `bson:"id" json:"id"`
}

func (r NegotiableRef) IsZero() bool {
	return r.Type == "" && r.ID == ""
}

// Pagination
type Page struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
}

func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 200 {
		p.Limit = 200
	}
	return p
}

func (p Page) Offset() int64 {
	return (p.Page - 1) * p.Limit
}

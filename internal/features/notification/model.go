package notification

import (
	"strings"
	"time"

	common_models "go-negotiation/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
)

// Event is what the workflows announce on a status transition.
type Event struct {
	Type     string `bson:"type" json:"type"` // e.g. negotiation.submitted
	Title    string `bson:"title" json:"title"`
	Message  string `bson:"message" json:"message"`
	Module   string `bson:"module,omitempty" json:"module,omitempty"`
	RecordID string `bson:"record_id,omitempty" json:"record_id,omitempty"`
}

type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Recipient   string             `bson:"recipient" json:"recipient"` // user id or role:<role>
	Event       Event              `bson:"event" json:"event"`
	Status      DeliveryStatus     `bson:"status" json:"status"`
	Attempts    int                `bson:"attempts" json:"attempts"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	DeliveredAt *time.Time         `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
}

const rolePrefix = "role:"

// RoleRecipient addresses every user holding role.
func RoleRecipient(role common_models.Role) string {
	return rolePrefix + string(role)
}

// RecipientsFor lists every address that reaches actor.
func RecipientsFor(actor common_models.Actor) []string {
	out := []string{actor.ID}
	for _, r := range actor.Roles {
		out = append(out, RoleRecipient(r))
	}
	return out
}

func isRoleRecipient(recipient string) (common_models.Role, bool) {
	if strings.HasPrefix(recipient, rolePrefix) {
		return common_models.Role(strings.TrimPrefix(recipient, rolePrefix)), true
	}
	return "", false
}

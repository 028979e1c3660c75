package identity

import (
	"go-negotiation/internal/common/models"
)

// RoleChecker answers role questions from the actor's own role set. Admin
// does not imply any workflow role: every step names exactly one capability.
type RoleChecker struct{}

func NewRoleChecker() *RoleChecker {
	return &RoleChecker{}
}

func (r *RoleChecker) HasRole(actor models.Actor, role models.Role) bool {
	if actor.ID == "" || !role.Valid() {
		return false
	}
	return actor.Holds(role)
}

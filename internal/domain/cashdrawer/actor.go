package cashdrawer

import "github.com/google/uuid"

// Role identifies what an actor is allowed to do against a register
type Role string

const (
	RoleManager Role = "MANAGER"
	RoleCashier Role = "CASHIER"
	RoleDriver  Role = "DRIVER"
)

// IsValid checks if the role is a known value
func (r Role) IsValid() bool {
	switch r {
	case RoleManager, RoleCashier, RoleDriver:
		return true
	}
	return false
}

// Actor is the explicit identity performing an operation. It is always passed
// as a parameter; there is no ambient session state.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Validate checks the actor carries an identity and a known role
func (a Actor) Validate() error {
	if a.ID == uuid.Nil {
		return NewValidationError("actor ID is required")
	}
	if !a.Role.IsValid() {
		return NewValidationError("actor role is not valid")
	}
	return nil
}
